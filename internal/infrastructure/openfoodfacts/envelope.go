package openfoodfacts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/domain"
)

// productEnvelope is the response shape shared by the lookup endpoints
type productEnvelope struct {
	Code          string            `json:"code"`
	Status        json.RawMessage   `json:"status"`
	StatusVerbose string            `json:"status_verbose"`
	Product       domain.RawProduct `json:"product"`
}

// found reports whether the envelope carries a usable product. The v2
// endpoint additionally signals success with status == 1.
func (e *productEnvelope) found(requireStatus bool) bool {
	if len(e.Product) == 0 {
		return false
	}
	if requireStatus {
		return statusOK(e.Status)
	}
	return true
}

// statusOK accepts 1, "1", true and "success"
func statusOK(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch s := v.(type) {
	case float64:
		return s == 1
	case bool:
		return s
	case string:
		if s == "success" {
			return true
		}
		n, err := strconv.Atoi(s)
		return err == nil && n == 1
	}
	return false
}

// searchEnvelope is the response shape of the search endpoint
type searchEnvelope struct {
	Count    json.Number         `json:"count"`
	Page     json.Number         `json:"page"`
	PageSize json.Number         `json:"page_size"`
	Products []domain.RawProduct `json:"products"`
}

func (e *searchEnvelope) nonEmptyProducts() []domain.RawProduct {
	out := make([]domain.RawProduct, 0, len(e.Products))
	for _, p := range e.Products {
		if len(p) > 0 {
			out = append(out, p)
		}
	}
	return out
}

func (e *searchEnvelope) toResult(requestedPageSize int) *domain.SearchResult {
	products := e.nonEmptyProducts()
	result := &domain.SearchResult{
		Count:    numberOr(e.Count, len(products)),
		Page:     numberOr(e.Page, 1),
		PageSize: numberOr(e.PageSize, requestedPageSize),
		Products: products,
	}
	return result
}

func numberOr(n json.Number, fallback int) int {
	if n == "" {
		return fallback
	}
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	if f, err := n.Float64(); err == nil {
		return int(f)
	}
	return fallback
}

// decodeJSON decodes body keeping numbers as json.Number so large codes survive
func decodeJSON(body []byte, out interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("empty response body")
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	return dec.Decode(out)
}
