// Package redis implements a Redis pub/sub chunk sink.
//
// Publishes each chunk message as JSON to a configurable channel, in
// order. Retries with exponential backoff on connection errors; a failed
// chunk blocks the stream, preserving delivery order.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/draftyhq/chunkstream/sink"
	"github.com/draftyhq/chunkstream/types"
)

// DefaultChannel is the default pub/sub channel name.
const DefaultChannel = "chunkstream:chunks"

// DefaultTimeout is the default per-publish timeout.
const DefaultTimeout = 5 * time.Second

// DefaultRetries is the default number of retry attempts.
const DefaultRetries = 3

// Config configures the Redis pub/sub sink.
type Config struct {
	// URL is the Redis connection URL (required).
	// Format: redis://[:password@]host:port[/db]
	URL string
	// Channel is the pub/sub channel name (default: chunkstream:chunks).
	Channel string
	// Timeout is the per-publish timeout (default 5s).
	Timeout time.Duration
	// Retries is the number of retry attempts per chunk (default 3).
	Retries int
}

// Sink publishes chunk messages via Redis PUBLISH.
type Sink struct {
	config Config
	client *goredis.Client
}

// New creates a Redis pub/sub sink from the given config.
// Returns an error if the URL is empty or invalid.
func New(cfg Config) (*Sink, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis sink requires a URL")
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis sink: invalid URL: %w", err)
	}

	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}

	return &Sink{
		config: cfg,
		client: goredis.NewClient(opts),
	}, nil
}

// WriteChunk publishes the chunk message as JSON to the configured channel.
// Retries with exponential backoff on failures.
func (s *Sink) WriteChunk(ctx context.Context, msg *types.ChunkMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("redis: marshal chunk: %w", err)
	}

	var lastErr error
	// attempts = 1 initial + retries
	attempts := 1 + s.config.Retries

	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("redis: context canceled: %w", err)
		}

		// Exponential backoff before retries (not before first attempt)
		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return fmt.Errorf("redis: context canceled during backoff: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}

		lastErr = s.publish(ctx, body)
		if lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("redis: failed after %d attempts: %w", attempts, lastErr)
}

// Close closes the Redis client.
func (s *Sink) Close() error {
	return s.client.Close()
}

// publish performs a single PUBLISH with the configured timeout.
func (s *Sink) publish(ctx context.Context, body []byte) error {
	publishCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	if err := s.client.Publish(publishCtx, s.config.Channel, body).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", s.config.Channel, err)
	}
	return nil
}

// Verify Sink implements sink.Sink.
var _ sink.Sink = (*Sink)(nil)
