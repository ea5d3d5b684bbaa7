// Package config_test tests the configuration loading for the speech-service.
package config_test

import (
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/speech-service/internal/config"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	tomlData := `
[server]
host = "0.0.0.0"
port = 8000
public_url = "https://speech.example.com"

[paths]
audio_dir = "/var/lib/speech-service/audio"
models_dir = "/var/lib/speech-service/models"
base_logs_dir = "/var/log/speech-service"

[engine]
binary_path = "/usr/local/bin/piper"
timeout_seconds = 45
sample_interval_ms = 100

[transcoder]
ffmpeg_path = "ffmpeg"
ffprobe_path = "ffprobe"
bitrate = "192k"

[artifacts]
sweep_interval_seconds = 300
expiry_seconds = 3600

[languages]
en = "en/en_GB-cori-high"
es = "es/es_MX-claude-high"
pt = "pt/pt_BR-cadu-medium"
`

	var cfg config.Config

	err := toml.Unmarshal([]byte(tomlData), &cfg)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "https://speech.example.com", cfg.Server.PublicURL)
	assert.Equal(t, "/var/lib/speech-service/audio", cfg.Paths.AudioDir)
	assert.Equal(t, "/var/lib/speech-service/models", cfg.Paths.ModelsDir)
	assert.Equal(t, "/var/log/speech-service", cfg.Paths.BaseLogsDir)
	assert.Equal(t, "/usr/local/bin/piper", cfg.Engine.BinaryPath)
	assert.Equal(t, 45, cfg.Engine.TimeoutSeconds)
	assert.Equal(t, 100, cfg.Engine.SampleIntervalMS)
	assert.Equal(t, "ffmpeg", cfg.Transcoder.FFmpegPath)
	assert.Equal(t, "ffprobe", cfg.Transcoder.FFprobePath)
	assert.Equal(t, "192k", cfg.Transcoder.Bitrate)
	assert.Equal(t, 300, cfg.Artifacts.SweepIntervalSeconds)
	assert.Equal(t, 3600, cfg.Artifacts.ExpirySeconds)
	assert.Equal(t, "en/en_GB-cori-high", cfg.Languages["en"])
	assert.Equal(t, "es/es_MX-claude-high", cfg.Languages["es"])
	assert.Equal(t, "pt/pt_BR-cadu-medium", cfg.Languages["pt"])

	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, "https://speech.example.com", cfg.PublicBaseURL())
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	var cfg config.Config

	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, "http://localhost:8000", cfg.PublicBaseURL())
}
