package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/domain"
)

type historyOutput struct {
	Filter  domain.HistoryFilter  `json:"filter"`
	Count   int                   `json:"count"`
	History []domain.HistoryEntry `json:"history"`
}

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show your scan history",
		Long: `The history command lists scanned products, most recent first.

Filters:
- all: every scan
- healthy: nutrition grade A or B
- eco: environment grade A or B`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := opts.app
			f := domain.ParseHistoryFilter(filter)

			entries, err := app.Ledger.History(cmd.Context(), app.ProfileID, f)
			if err != nil {
				return err
			}

			output := historyOutput{Filter: f, Count: len(entries), History: entries}
			return opts.print(cmd.OutOrStdout(), output, func(w io.Writer) { renderHistory(w, f, entries) })
		},
	}
	cmd.Flags().StringVar(&filter, "filter", string(domain.FilterAll), "History filter (all|healthy|eco)")

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear your scan history (points and stats are kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := opts.app
			if err := app.Ledger.ClearHistory(cmd.Context(), app.ProfileID); err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), map[string]bool{"cleared": true}, func(w io.Writer) {
				fmt.Fprintln(w, "History cleared.")
			})
		},
	})

	return cmd
}
