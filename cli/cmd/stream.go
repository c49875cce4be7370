package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/draftyhq/chunkstream/cli/reader"
	"github.com/draftyhq/chunkstream/iox"
	"github.com/draftyhq/chunkstream/types"
)

// loadStream reads a recorded chunk stream from the command's first
// positional argument (- or absent for stdin), honoring --stream-format.
func loadStream(c *cli.Context) ([]*types.ChunkMessage, error) {
	path := c.Args().First()
	if path == "" {
		path = "-"
	}

	format, err := reader.ParseFormat(c.String("stream-format"))
	if err != nil {
		return nil, err
	}

	var in io.Reader
	if path == "-" {
		in = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open stream: %w", err)
		}
		defer iox.DiscardClose(f)
		in = f
	}

	r, err := reader.New(in, format)
	if err != nil {
		return nil, err
	}
	return r.ReadStream()
}
