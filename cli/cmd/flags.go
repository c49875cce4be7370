// Package cmd provides CLI commands for the chunkstream binary.
package cmd

import "github.com/urfave/cli/v2"

// Shared flags for read-only commands.
var (
	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// NoColorFlag disables colored output.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}

	// TUIFlag enables Bubble Tea interactive mode.
	// Only valid for select read-only commands (inspect, stats).
	TUIFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Enable interactive TUI mode (inspect, stats only)",
	}

	// StreamFormatFlag selects the recorded stream encoding.
	StreamFormatFlag = &cli.StringFlag{
		Name:  "stream-format",
		Usage: "Recorded stream encoding: ndjson, frames",
		Value: "ndjson",
	}
)

// ReadOnlyFlags returns the shared flags for all read-only commands.
// Includes --tui so that unsupported commands can provide explicit error
// messages instead of generic "flag not defined" errors.
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
		NoColorFlag,
		TUIFlag,
	}
}

// StreamReadFlags returns flags for commands that read a recorded
// chunk stream.
func StreamReadFlags() []cli.Flag {
	return append(ReadOnlyFlags(), StreamFormatFlag)
}
