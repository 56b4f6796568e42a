package cli

import (
	"io"

	"github.com/spf13/cobra"
)

func newProfileCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show points, level, achievements and overall impact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := opts.app

			summary, err := app.Ledger.Summary(cmd.Context(), app.ProfileID)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), summary, func(w io.Writer) { renderProfile(w, summary) })
		},
	}
}
