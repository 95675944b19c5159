package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List files stored across all backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			eng, _, err := newEngine(cmd.Context())
			if err != nil {
				return err
			}

			listing := eng.BuildListing(cmd.Context())
			if len(listing.Rows) == 0 {
				cmd.Println("No files found in backup storage.")
				return nil
			}
			return listing.Render(os.Stdout)
		},
	}
}
