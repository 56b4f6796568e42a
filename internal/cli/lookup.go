package cli

import (
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/domain"
)

func newLookupCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <barcode|name>...",
		Short: "Look up a product by barcode, or search by name",
		Long: `The lookup command resolves a barcode through every lookup strategy
(including zero-padding for EAN-8 codes) and shows the product's nutrition and
environment grades, CO2 footprint and impact score. Barcode hits are added to
your history and earn points.

Anything that is not all digits is searched as free text and lists candidates.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, opts, strings.Join(args, " "))
		},
	}
}

func runLookup(cmd *cobra.Command, opts *rootOptions, query string) error {
	out := cmd.OutOrStdout()
	app := opts.app

	result, err := app.Products.Lookup(cmd.Context(), app.ProfileID, query)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			if perr := opts.print(out, notFound, func(w io.Writer) { renderNotFound(w, notFound) }); perr != nil {
				return perr
			}
		}
		return err
	}

	if result.Product != nil {
		return opts.print(out, result, func(w io.Writer) { renderProduct(w, result.Product) })
	}
	return opts.print(out, result, func(w io.Writer) { renderSearch(w, result.Search) })
}
