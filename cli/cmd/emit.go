package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/draftyhq/chunkstream/cli/config"
	"github.com/draftyhq/chunkstream/codec"
	"github.com/draftyhq/chunkstream/iox"
	"github.com/draftyhq/chunkstream/log"
	"github.com/draftyhq/chunkstream/metrics"
	"github.com/draftyhq/chunkstream/sink"
	redissink "github.com/draftyhq/chunkstream/sink/redis"
	s3sink "github.com/draftyhq/chunkstream/sink/s3"
	"github.com/draftyhq/chunkstream/sink/webhook"
	"github.com/draftyhq/chunkstream/types"
	"github.com/draftyhq/chunkstream/wire"
)

// DefaultBudget is the per-chunk byte budget used when neither the
// --budget flag nor the config file sets one.
const DefaultBudget = 64 * 1024

// EmitCommand returns the emit command.
// This is the only command that writes to a transport sink.
func EmitCommand() *cli.Command {
	return &cli.Command{
		Name:  "emit",
		Usage: "Split a widget output envelope into chunk messages",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Path to envelope JSON file (- for stdin)",
				Value:   "-",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path for stdout/frames sinks (- for stdout)",
				Value:   "-",
			},
			&cli.IntFlag{
				Name:    "budget",
				Aliases: []string{"b"},
				Usage:   "Per-chunk byte budget for array data",
			},
			&cli.StringFlag{
				Name:  "sink",
				Usage: "Transport sink: stdout, frames, webhook, redis, s3",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to chunkstream.yaml config file",
			},
			&cli.StringFlag{
				Name:  "url",
				Usage: "Endpoint URL for webhook and redis sinks",
			},
			&cli.StringFlag{
				Name:  "channel",
				Usage: "Channel name for the redis sink",
			},
			&cli.StringFlag{
				Name:  "bucket",
				Usage: "Bucket name for the s3 sink",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Suppress the emission summary",
			},
		},
		Action: emitAction,
	}
}

// sinkChoice holds the resolved sink configuration after merging
// config file defaults with flag overrides.
type sinkChoice struct {
	typ     string
	url     string
	channel string
	headers map[string]string
	timeout time.Duration
	retries int
	storage config.StorageConfig
}

func emitAction(c *cli.Context) error {
	cfg := &config.Config{}
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	budget := cfg.Budget
	if c.IsSet("budget") {
		budget = c.Int("budget")
	}
	if budget == 0 {
		budget = DefaultBudget
	}
	if budget < 0 {
		return cli.Exit(fmt.Sprintf("invalid budget: %d", budget), 1)
	}

	choice := resolveSink(c, cfg)

	data, err := readInput(c.String("input"))
	if err != nil {
		return fmt.Errorf("read envelope: %w", err)
	}

	envelope, err := codec.DecodeEnvelope(data)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid envelope: %v", err), 1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	out, closeOut, err := openOutput(c.String("output"))
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer closeOut()

	snk, err := buildSink(ctx, choice, out)
	if err != nil {
		return fmt.Errorf("create %s sink: %w", choice.typ, err)
	}
	defer iox.DiscardClose(snk)

	meta := &types.StreamMeta{DraftyID: envelope.DraftyID, Command: envelope.Command}
	logger := log.NewLogger(meta).WithOutput(os.Stderr)
	collector := metrics.NewCollector(choice.typ, envelope.DraftyID)

	emitter, err := codec.New(snk, codec.Config{
		Budget:  budget,
		Logger:  logger,
		Metrics: collector,
	})
	if err != nil {
		return fmt.Errorf("create emitter: %w", err)
	}

	start := time.Now()
	if err := emitter.Emit(ctx, envelope); err != nil {
		return fmt.Errorf("emit failed: %w", err)
	}

	if !c.Bool("quiet") {
		printEmitSummary(collector.Snapshot(), time.Since(start))
	}

	return nil
}

// resolveSink merges sink settings, flags winning over config values.
func resolveSink(c *cli.Context, cfg *config.Config) sinkChoice {
	choice := sinkChoice{
		typ:     cfg.Sink.Type,
		url:     cfg.Sink.URL,
		channel: cfg.Sink.Channel,
		headers: cfg.Sink.Headers,
		timeout: cfg.Sink.Timeout.Duration,
		storage: cfg.Storage,
	}
	if cfg.Sink.Retries != nil {
		choice.retries = *cfg.Sink.Retries
	}

	if c.IsSet("sink") {
		choice.typ = c.String("sink")
	}
	if choice.typ == "" {
		choice.typ = "stdout"
	}
	if c.IsSet("url") {
		choice.url = c.String("url")
	}
	if c.IsSet("channel") {
		choice.channel = c.String("channel")
	}
	if c.IsSet("bucket") {
		choice.storage.Bucket = c.String("bucket")
	}
	return choice
}

func buildSink(ctx context.Context, choice sinkChoice, out io.Writer) (sink.Sink, error) {
	switch choice.typ {
	case "stdout":
		return sink.NewWriterSink(out), nil

	case "frames":
		return wire.NewSink(out), nil

	case "webhook":
		return webhook.New(webhook.Config{
			URL:     choice.url,
			Headers: choice.headers,
			Timeout: choice.timeout,
			Retries: choice.retries,
		})

	case "redis":
		return redissink.New(redissink.Config{
			URL:     choice.url,
			Channel: choice.channel,
			Timeout: choice.timeout,
			Retries: choice.retries,
		})

	case "s3":
		return s3sink.New(ctx, s3sink.Config{
			Bucket:       choice.storage.Bucket,
			Prefix:       choice.storage.Prefix,
			Region:       choice.storage.Region,
			Endpoint:     choice.storage.Endpoint,
			UsePathStyle: choice.storage.S3PathStyle,
		})

	default:
		return nil, fmt.Errorf("unknown sink: %s (must be stdout, frames, webhook, redis, or s3)", choice.typ)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func printEmitSummary(snap metrics.Snapshot, duration time.Duration) {
	fmt.Fprintf(os.Stderr, "drafty_id=%s, chunks=%d, fields=%d, split=%d, duration=%s\n",
		snap.DraftyID,
		snap.ChunksEmitted,
		snap.FieldsPlanned,
		snap.FieldsSplit,
		duration.Round(time.Millisecond),
	)
	if snap.OversizedSegments > 0 {
		fmt.Fprintf(os.Stderr, "oversized_segments=%d (elements larger than the byte budget)\n",
			snap.OversizedSegments)
	}
}
