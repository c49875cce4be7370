package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/draftyhq/chunkstream/cli/reader"
	"github.com/draftyhq/chunkstream/cli/render"
)

// StatsCommand returns the stats command.
// Stats returns aggregate statistics for a recorded stream.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "Show aggregate statistics for a recorded stream",
		ArgsUsage: "<stream-file>",
		Flags:     StreamReadFlags(),
		Action:    statsAction,
	}
}

func statsAction(c *cli.Context) error {
	msgs, err := loadStream(c)
	if err != nil {
		return fmt.Errorf("read chunk stream: %w", err)
	}

	stats := reader.Summarize(msgs)

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	if c.Bool("tui") {
		return r.RenderTUI("stats_stream", stats)
	}

	// The per-chunk detail belongs to inspect.
	stats.ChunkInfos = nil
	return r.Render(stats)
}
