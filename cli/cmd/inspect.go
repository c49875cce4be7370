package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/draftyhq/chunkstream/cli/reader"
	"github.com/draftyhq/chunkstream/cli/render"
)

// InspectCommand returns the inspect command.
// Inspect returns a deep, per-chunk view of a recorded stream.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Inspect the chunks of a recorded stream",
		ArgsUsage: "<stream-file>",
		Flags:     StreamReadFlags(),
		Action:    inspectAction,
	}
}

func inspectAction(c *cli.Context) error {
	msgs, err := loadStream(c)
	if err != nil {
		return fmt.Errorf("read chunk stream: %w", err)
	}
	if len(msgs) == 0 {
		return cli.Exit("stream is empty", 1)
	}

	stats := reader.Summarize(msgs)

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	if c.Bool("tui") {
		return r.RenderTUI("inspect_stream", stats)
	}

	return r.Render(stats.ChunkInfos)
}
