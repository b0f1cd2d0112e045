package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewMoveCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "move <listing.json> <from> <to> [<from> <to>...]",
		Short: "Apply moves to a listing and print the result",
		Long: `Apply one or more moves to a listing in order and print the resulting listing.

Every <from> is the full path of a file or directory (directories end with a slash),
every <to> the full path of the directory it is moved into.
A rejected move is reported and skipped; the command then exits with an error.

Examples:
  # move a file into a sibling directory
  treefactor move listing.json root/a/icon.svg root/b/

  # read from stdin, write to a file
  tree -J src | treefactor move - src/old/ src/new/ -o moved.json`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 3 || (len(args)-1)%2 != 0 {
				return fmt.Errorf("expected a listing followed by pairs of <from> <to>, got %d argument(s)", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, _, _, err := readListing(cmd, args[0])
			if err != nil {
				return err
			}

			rejected := 0
			for i := 1; i < len(args); i += 2 {
				from, to := args[i], args[i+1]

				newPath, rejection := parsed.TryMove(from, to)
				if rejection != "" {
					rejected++
					fmt.Fprintf(cmd.ErrOrStderr(), "cannot move %s to %s: %s\n", from, to, rejection)
					continue
				}
				log.Debugf("Moved %s to %s", from, newPath)
			}

			if err := writeListing(cmd, parsed, output); err != nil {
				return err
			}

			if rejected > 0 {
				return fmt.Errorf("%d of %d move(s) rejected", rejected, (len(args)-1)/2)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the resulting listing to this file instead of stdout")

	return cmd
}
