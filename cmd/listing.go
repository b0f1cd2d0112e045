package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/dreitier/treefactor/tree"
	"github.com/spf13/cobra"
)

const stdinName = "-"

// readListing decodes the listing in file name, or stdin if name is "-".
func readListing(cmd *cobra.Command, name string) (*tree.Tree, *tree.Report, int64, error) {
	var r io.Reader = cmd.InOrStdin()

	if name != stdinName {
		file, err := os.Open(name)
		if err != nil {
			return nil, nil, 0, err
		}
		defer file.Close()
		r = file
	}

	counter := &countingReader{r: r}
	parsed, declared, err := tree.Decode(counter)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%s: %w", name, err)
	}

	return parsed, declared, counter.n, nil
}

// writeListing writes t to output, or to stdout if output is empty.
func writeListing(cmd *cobra.Command, t *tree.Tree, output string) error {
	if output == "" {
		return tree.Encode(cmd.OutOrStdout(), t)
	}

	return os.WriteFile(output, tree.Serialize(t), 0o644)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
