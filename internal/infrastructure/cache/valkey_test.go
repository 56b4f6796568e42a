package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go"

	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/domain"
)

func newTestValkeyClient(t *testing.T) valkey.Client {
	t.Helper()
	addr := os.Getenv("FOODTRACKER_TEST_VALKEY_ADDR")
	if addr == "" {
		t.Skip("FOODTRACKER_TEST_VALKEY_ADDR not set, skipping valkey tests")
	}
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestValkeyCache_RoundTrip(t *testing.T) {
	client := newTestValkeyClient(t)
	cache := NewValkeyCache(client, "test-"+uuid.NewString())
	ctx := context.Background()

	_, err := cache.Get(ctx, "product:1")
	assert.True(t, errors.Is(err, domain.ErrCacheMiss))

	value := map[string]interface{}{"barcode": "3017620422003", "strategy": "v2"}
	require.NoError(t, cache.Set(ctx, "product:1", value, time.Minute))

	exists, err := cache.Exists(ctx, "product:1")
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := cache.Get(ctx, "product:1")
	require.NoError(t, err)
	m, ok := got.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "3017620422003", m["barcode"])

	require.NoError(t, cache.Delete(ctx, "product:1"))
	exists, err = cache.Exists(ctx, "product:1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestValkeyCache_KeyPrefix(t *testing.T) {
	cache := NewValkeyCache(nil, "")
	assert.Equal(t, "foodtracker:cache:product:42", cache.key("product:42"))
}
