// Package config handles YAML config file loading for the chunkstream CLI.
package config

import (
	"fmt"
	"time"
)

// Config represents a chunkstream.yaml configuration file.
// All values are optional and act as defaults for chunkstream emit flags.
// CLI flags always override config values.
type Config struct {
	Budget  int           `yaml:"budget"`
	Sink    SinkConfig    `yaml:"sink"`
	Storage StorageConfig `yaml:"storage"`
}

// SinkConfig holds transport sink defaults from the config file.
type SinkConfig struct {
	Type    string            `yaml:"type"` // stdout, frames, webhook, redis, s3
	URL     string            `yaml:"url,omitempty"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// StorageConfig holds S3 archive defaults from the config file.
type StorageConfig struct {
	Bucket      string `yaml:"bucket"`
	Prefix      string `yaml:"prefix"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
