package cmd

import (
	"fmt"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"github.com/spf13/cobra"
)

func NewStatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <listing.json>",
		Short: "Summarize a listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, declared, length, err := readListing(cmd, args[0])
			if err != nil {
				return err
			}

			report := parsed.Report()
			extensions := parsed.ContentDescription().Sorted()
			for i, extension := range extensions {
				if extension == "" {
					extensions[i] = `""`
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "root:        %s\n", parsed.Name())
			fmt.Fprintf(out, "listing:     %s\n", bytefmt.ByteSize(uint64(length)))
			fmt.Fprintf(out, "nodes:       %d\n", parsed.Size())
			fmt.Fprintf(out, "directories: %d\n", report.Directories)
			fmt.Fprintf(out, "files:       %d\n", report.Files)
			fmt.Fprintf(out, "extensions:  %s\n", strings.Join(extensions, " "))

			if declared != nil && *declared != report {
				fmt.Fprintf(out, "declared:    %d directories, %d files (differs)\n", declared.Directories, declared.Files)
			}

			return nil
		},
	}
}
