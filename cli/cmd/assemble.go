package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/draftyhq/chunkstream/codec"
)

// AssembleCommand returns the assemble command.
// Assemble reverses emit: it reconstructs the original widget output
// envelope from a recorded chunk stream.
func AssembleCommand() *cli.Command {
	return &cli.Command{
		Name:      "assemble",
		Usage:     "Reassemble a widget output envelope from a chunk stream",
		ArgsUsage: "<stream-file>",
		Flags: []cli.Flag{
			StreamFormatFlag,
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path for the envelope JSON (- for stdout)",
				Value:   "-",
			},
		},
		Action: assembleAction,
	}
}

func assembleAction(c *cli.Context) error {
	msgs, err := loadStream(c)
	if err != nil {
		return fmt.Errorf("read chunk stream: %w", err)
	}

	envelope, err := codec.Assemble(msgs)
	if err != nil {
		return cli.Exit(fmt.Sprintf("assemble failed: %v", err), 1)
	}

	out, closeOut, err := openOutput(c.String("output"))
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer closeOut()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(envelope); err != nil {
		return fmt.Errorf("write envelope: %w", err)
	}
	return nil
}
