package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <serials>",
		Short: "Download files by listing serial (comma-separated, e.g. 1,3)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			eng, _, err := newEngine(cmd.Context())
			if err != nil {
				return err
			}

			serials, err := parseSerials(args[0])
			if err != nil {
				return err
			}

			listing := eng.BuildListing(cmd.Context())
			if len(listing.Rows) == 0 {
				cmd.Println("No files available to download.")
				return nil
			}
			listing.Render(os.Stdout)

			downloadSerials(cmd.Context(), eng, listing, serials)
			return nil
		},
	}
}

// parseSerials parses a comma-separated serial list like "1,2,3".
func parseSerials(input string) ([]int, error) {
	input = strings.ReplaceAll(input, " ", "")
	if input == "" {
		return nil, fmt.Errorf("no serial numbers provided")
	}

	var serials []int
	for _, part := range strings.Split(input, ",") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid serial number %q: enter numbers like 1 or 1,2,3", part)
		}
		serials = append(serials, n)
	}
	return serials, nil
}
