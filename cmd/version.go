package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// set by the linker
var (
	gitRepo   = "dreitier/treefactor"
	gitCommit = "unknown"
	gitTag    = "unknown"
)

func versionString() string {
	tag := gitTag
	if tag == "" {
		tag = "err-no-git-tag"
	}

	return fmt.Sprintf("%s (dist=%s; version=%s; commit=%s)", app, gitRepo, tag, gitCommit)
}

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), versionString())
			return err
		},
	}
}
