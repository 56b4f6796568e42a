// Package cli implements the foodtracker terminal client.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/vanshika2720/Sustainable-Food-Tracker/config"
	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/infrastructure/cache"
	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/infrastructure/ledgerstore"
	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/infrastructure/openfoodfacts"
	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/usecase"
)

// App bundles the services the commands run against
type App struct {
	Products  *usecase.ProductService
	Ledger    *usecase.LedgerService
	ProfileID string

	close func()
}

// Close releases resources held by the app
func (a *App) Close() {
	if a != nil && a.close != nil {
		a.close()
	}
}

type rootOptions struct {
	format     string
	ledgerPath string
	app        *App
}

// Execute runs the root command against the configured services
func Execute() {
	if err := NewRootCommand(nil).Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCommand builds the command tree. A nil app is built from
// configuration before the first command runs.
func NewRootCommand(app *App) *cobra.Command {
	opts := &rootOptions{app: app}

	root := &cobra.Command{
		Use:   "foodtracker",
		Short: "Look up food products and track their health and environmental impact",
		Long: `foodtracker looks products up by barcode or name in the Open Food Facts
database, grades them for nutrition and environmental impact, and keeps a
local history of your scans with points, levels and achievements.

History is stored in a JSON file (ledger.path, FOODTRACKER_LEDGER_PATH).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !validFormat(opts.format) {
				return fmt.Errorf("unknown format %q (text|json|yaml)", opts.format)
			}
			if opts.app != nil {
				return nil
			}
			built, err := buildApp(opts.ledgerPath)
			if err != nil {
				return err
			}
			opts.app = built
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app == nil {
				opts.app.Close()
			}
		},
	}

	root.PersistentFlags().StringVarP(&opts.format, "format", "f", FormatText, "Output format (text|json|yaml)")
	root.PersistentFlags().StringVar(&opts.ledgerPath, "ledger", "", "History file (overrides ledger.path)")

	root.AddCommand(
		newLookupCommand(opts),
		newHistoryCommand(opts),
		newProfileCommand(opts),
	)
	return root
}

// buildApp wires the services from configuration. The terminal client always
// keeps its history in the JSON file store.
func buildApp(ledgerPath string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}
	if ledgerPath == "" {
		ledgerPath = cfg.Ledger.Path
	}

	store, err := ledgerstore.NewFileStore(ledgerPath)
	if err != nil {
		return nil, fmt.Errorf("error opening history file: %w", err)
	}
	profileID, err := store.DefaultProfileID()
	if err != nil {
		return nil, err
	}

	client := openfoodfacts.NewClient(openfoodfacts.ClientConfig{
		BaseURL:           cfg.OpenFoodFacts.BaseURL,
		UserAgent:         cfg.OpenFoodFacts.UserAgent,
		MaxAttempts:       cfg.OpenFoodFacts.MaxAttempts,
		RequestsPerMinute: cfg.OpenFoodFacts.RequestsPerMinute,
		Timeout:           cfg.OpenFoodFacts.AttemptTimeout,
	})
	client.SetDebug(cfg.OpenFoodFacts.Debug)
	if !cfg.OpenFoodFacts.Debug {
		// component logs are for the server; keep the terminal clean
		log.SetOutput(io.Discard)
	}

	ledger := usecase.NewLedgerService(store, usecase.LedgerServiceConfig{
		HistoryLimit:        cfg.Ledger.HistoryLimit,
		IncludeEstimatedCO2: cfg.Scoring.IncludeEstimatedCO2,
	})

	productCache := cache.NewMemoryCache()
	products := usecase.NewProductService(
		productCache,
		usecase.NewResolver(client, usecase.ResolverConfig{
			AttemptTimeout: cfg.OpenFoodFacts.AttemptTimeout,
			SearchPageSize: cfg.OpenFoodFacts.SearchPageSize,
		}),
		usecase.NewScorer(usecase.ScorerConfig{IncludeEstimatedCO2: cfg.Scoring.IncludeEstimatedCO2}),
		ledger,
		usecase.ProductServiceConfig{
			CacheTTL:      cfg.Cache.TTL,
			FuzzyMatching: cfg.Scoring.FuzzyMatching,
		},
	)

	return &App{
		Products:  products,
		Ledger:    ledger,
		ProfileID: profileID,
		close:     func() { productCache.Close() },
	}, nil
}

// print renders v as JSON/YAML, or calls text for the text format
func (o *rootOptions) print(w io.Writer, v interface{}, text func(io.Writer)) error {
	if o.format == FormatText {
		text(w)
		return nil
	}
	return encode(w, o.format, v)
}
