package audio

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/book-expert/logger"

	"github.com/book-expert/speech-service/internal/core"
)

// Defaults for the external transcoder binaries and delivery quality.
const (
	DefaultFFmpegPath  = "ffmpeg"
	DefaultFFprobePath = "ffprobe"
	DefaultBitrate     = "192k"
)

// FFmpegConfig holds the transcoder invocation settings.
type FFmpegConfig struct {
	FFmpegPath  string
	FFprobePath string
	Bitrate     string
}

// FFmpeg converts raw engine audio into the MP3 delivery format by invoking
// the external ffmpeg binary, and probes delivery artifacts with ffprobe.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	bitrate     string
	log         *logger.Logger
}

// NewFFmpeg creates a transcoder, applying defaults for unset fields.
func NewFFmpeg(cfg FFmpegConfig, log *logger.Logger) *FFmpeg {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = DefaultFFmpegPath
	}

	if cfg.FFprobePath == "" {
		cfg.FFprobePath = DefaultFFprobePath
	}

	if cfg.Bitrate == "" {
		cfg.Bitrate = DefaultBitrate
	}

	return &FFmpeg{
		ffmpegPath:  cfg.FFmpegPath,
		ffprobePath: cfg.FFprobePath,
		bitrate:     cfg.Bitrate,
		log:         log,
	}
}

// Transcode converts sourcePath into targetPath at the configured bitrate.
// Any failure maps to core.ErrTranscode; transcoding is request-fatal.
func (f *FFmpeg) Transcode(ctx context.Context, sourcePath, targetPath string) error {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", sourcePath,
		"-b:a", f.bitrate,
		targetPath,
	}

	// #nosec G204 -- both paths come from the artifact store, never a caller.
	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf(
			"%w: %s", core.ErrTranscode, transcodeDiagnostic(output, err),
		)
	}

	f.log.Info("Transcoded %s -> %s (%s)", sourcePath, targetPath, f.bitrate)

	return nil
}

// Duration decodes the duration in seconds of an audio file via ffprobe.
func (f *FFmpeg) Duration(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	// #nosec G204 -- the path comes from the artifact store, never a caller.
	cmd := exec.CommandContext(ctx, f.ffprobePath, args...)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to probe %s: %w", path, err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse probed duration for %s: %w", path, err)
	}

	return seconds, nil
}

func transcodeDiagnostic(output []byte, err error) string {
	diagnostic := strings.TrimSpace(string(output))
	if diagnostic == "" {
		return err.Error()
	}

	return diagnostic
}
