// Package config provides the configuration structure for the speech-service.
package config

import (
	"fmt"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// Fallbacks applied when the TOML leaves a field unset.
const (
	defaultHost = "0.0.0.0"
	defaultPort = 8000
)

// ServerConfig holds the HTTP listener settings. PublicURL is the external
// base location under which delivery artifacts are exposed.
type ServerConfig struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	PublicURL string `toml:"public_url"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	AudioDir    string `toml:"audio_dir"`
	ModelsDir   string `toml:"models_dir"`
	BaseLogsDir string `toml:"base_logs_dir"`
}

// EngineConfig holds the synthesis engine invocation settings.
type EngineConfig struct {
	BinaryPath       string `toml:"binary_path"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
	SampleIntervalMS int    `toml:"sample_interval_ms"`
}

// TranscoderConfig holds the external transcoder settings.
type TranscoderConfig struct {
	FFmpegPath  string `toml:"ffmpeg_path"`
	FFprobePath string `toml:"ffprobe_path"`
	Bitrate     string `toml:"bitrate"`
}

// ArtifactsConfig holds the artifact expiry settings.
type ArtifactsConfig struct {
	SweepIntervalSeconds int `toml:"sweep_interval_seconds"`
	ExpirySeconds        int `toml:"expiry_seconds"`
}

// Config is the root configuration structure. Languages maps language codes
// to model identifiers, resolved against ModelsDir at startup.
type Config struct {
	Server     ServerConfig      `toml:"server"`
	Paths      PathsConfig       `toml:"paths"`
	Engine     EngineConfig      `toml:"engine"`
	Transcoder TranscoderConfig  `toml:"transcoder"`
	Artifacts  ArtifactsConfig   `toml:"artifacts"`
	Languages  map[string]string `toml:"languages"`
}

// Load loads the configuration for the speech-service.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	return &cfg, nil
}

// Addr returns the listen address, with defaults applied.
func (c *Config) Addr() string {
	host := c.Server.Host
	if host == "" {
		host = defaultHost
	}

	return fmt.Sprintf("%s:%d", host, c.port())
}

// PublicBaseURL returns the configured public base location, falling back to
// a localhost URL on the listen port.
func (c *Config) PublicBaseURL() string {
	if c.Server.PublicURL != "" {
		return c.Server.PublicURL
	}

	return fmt.Sprintf("http://localhost:%d", c.port())
}

func (c *Config) port() int {
	if c.Server.Port == 0 {
		return defaultPort
	}

	return c.Server.Port
}
