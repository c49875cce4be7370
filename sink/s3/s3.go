// Package s3 implements an S3 archive chunk sink.
//
// Writes each chunk message as one JSON object under a per-stream prefix:
//
//	<prefix>/<drafty_id>/chunk_<index>.json
//
// Object keys carry the chunk index, so a consumer listing the prefix can
// replay the stream in order. Works against AWS S3 and S3-compatible
// providers (R2, MinIO) via the endpoint and path-style options.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/draftyhq/chunkstream/sink"
	"github.com/draftyhq/chunkstream/types"
)

// Config configures the S3 archive sink.
type Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string
	// Prefix is the key prefix within the bucket (optional).
	Prefix string
	// Region is the AWS region (optional, uses default chain if empty).
	Region string
	// Endpoint is a custom S3 endpoint URL for S3-compatible providers
	// (e.g. Cloudflare R2, MinIO). Empty uses the default AWS endpoint.
	Endpoint string
	// UsePathStyle forces path-style addressing (bucket in path, not
	// subdomain). Required by most S3-compatible providers.
	UsePathStyle bool
}

// Validate checks that required S3 configuration is present.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("S3 bucket is required")
	}
	return nil
}

// putObjectAPI is the slice of the S3 client the sink uses.
// Narrowed for test stubbing.
type putObjectAPI interface {
	PutObject(ctx context.Context, input *awss3.PutObjectInput, opts ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

// Sink archives chunk messages as S3 objects.
type Sink struct {
	config Config
	client putObjectAPI
}

// New creates an S3 sink using the AWS SDK default credential chain
// (env vars, shared config, IAM role).
func New(ctx context.Context, cfg Config) (*Sink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*awss3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *awss3.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *awss3.Options) {
			o.UsePathStyle = true
		})
	}

	return &Sink{
		config: cfg,
		client: awss3.NewFromConfig(awsCfg, s3Opts...),
	}, nil
}

// NewWithClient creates an S3 sink with a caller-supplied client.
// Used by tests to substitute a stub.
func NewWithClient(cfg Config, client putObjectAPI) (*Sink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Sink{config: cfg, client: client}, nil
}

// WriteChunk stores the chunk message as one JSON object.
func (s *Sink) WriteChunk(ctx context.Context, msg *types.ChunkMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("s3: marshal chunk: %w", err)
	}

	key := s.ObjectKey(msg)
	contentType := "application/json"
	input := &awss3.PutObjectInput{
		Bucket:      &s.config.Bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3: put %s: %w", key, err)
	}
	return nil
}

// Close is a no-op; the S3 client holds no connection state worth closing.
func (s *Sink) Close() error {
	return nil
}

// ObjectKey returns the object key for one chunk message. Indices are
// zero-padded so lexicographic listing matches chunk order up to 99999
// chunks per stream.
func (s *Sink) ObjectKey(msg *types.ChunkMessage) string {
	name := fmt.Sprintf("chunk_%05d.json", msg.Header.ChunkIndex)
	return path.Join(s.config.Prefix, msg.DraftyID, name)
}

// Verify Sink implements sink.Sink.
var _ sink.Sink = (*Sink)(nil)
