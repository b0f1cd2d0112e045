package cmd

import (
	"fmt"
	"strings"

	"github.com/dreitier/treefactor/tree"
	"github.com/spf13/cobra"
)

func NewFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <listing.json> <path>",
		Short: "Describe the node at a full path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, _, _, err := readListing(cmd, args[0])
			if err != nil {
				return err
			}

			node := parsed.FindNode(args[1])
			if node == nil {
				return fmt.Errorf("node %#q does not exist", args[1])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", node.Kind(), node.FullPath())
			fmt.Fprintf(out, "size:       %d\n", node.Size())
			fmt.Fprintf(out, "extensions: %s\n", strings.Join(node.ContentDescription().Sorted(), " "))

			if dir, ok := node.(*tree.Directory); ok {
				fmt.Fprintln(out, dir.PrettyString())
			}

			return nil
		},
	}
}
