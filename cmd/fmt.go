package cmd

import (
	"github.com/spf13/cobra"
)

func NewFmtCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "fmt <listing.json>",
		Short: "Normalize a listing: sort children and recount the report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, _, _, err := readListing(cmd, args[0])
			if err != nil {
				return err
			}

			return writeListing(cmd, parsed, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the normalized listing to this file instead of stdout")

	return cmd
}
