// Package engine invokes the external piper speech-synthesis binary and
// supervises it with a resource sampler and a hard wall-clock timeout.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/book-expert/logger"

	"github.com/book-expert/speech-service/internal/core"
)

// Defaults applied when the configuration leaves a field zero.
const (
	DefaultBinaryPath     = "piper"
	DefaultTimeout        = 45 * time.Second
	DefaultSampleInterval = 100 * time.Millisecond
)

// Engine command-line flags.
const (
	flagModel       = "--model"
	flagOutputFile  = "--output_file"
	flagLengthScale = "--length-scale"
	flagNoiseScale  = "--noise-scale"
	flagNoiseW      = "--noise-w"
)

// Voice parameter presets. Questions widen tonal (noise-scale) and rhythmic
// (noise-w) variation so they sound interrogative; speed is shared.
var (
	statementParams = core.VoiceParams{LengthScale: 1.15, NoiseScale: 0.55, NoiseW: 0.70}
	questionParams  = core.VoiceParams{LengthScale: 1.15, NoiseScale: 0.65, NoiseW: 0.85}
)

// ParamsFor resolves the voice-shaping preset for the given intonation.
func ParamsFor(interrogative bool) core.VoiceParams {
	if interrogative {
		return questionParams
	}

	return statementParams
}

// Config holds the engine invocation settings.
type Config struct {
	BinaryPath     string
	Timeout        time.Duration
	SampleInterval time.Duration
}

// Piper runs the piper binary as a subprocess, one per synthesis call. The
// orchestrator owns the subprocess for its entire lifetime: start, wait or
// timeout, terminate.
type Piper struct {
	binaryPath     string
	timeout        time.Duration
	sampleInterval time.Duration
	log            *logger.Logger
}

// NewPiper creates a piper orchestrator, applying defaults for unset fields.
func NewPiper(cfg Config, log *logger.Logger) *Piper {
	if cfg.BinaryPath == "" {
		cfg.BinaryPath = DefaultBinaryPath
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = DefaultSampleInterval
	}

	return &Piper{
		binaryPath:     cfg.BinaryPath,
		timeout:        cfg.Timeout,
		sampleInterval: cfg.SampleInterval,
		log:            log,
	}
}

// Synthesize writes text to the engine's stdin and waits for it to produce
// outputPath, sampling subprocess CPU and memory concurrently until exit.
// On timeout the subprocess is forcibly terminated.
func (p *Piper) Synthesize(
	ctx context.Context,
	text string,
	modelPath string,
	outputPath string,
	interrogative bool,
) (core.ResourceMetrics, error) {
	params := ParamsFor(interrogative)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	args := []string{
		flagModel, modelPath,
		flagOutputFile, outputPath,
		flagLengthScale, formatParam(params.LengthScale),
		flagNoiseScale, formatParam(params.NoiseScale),
		flagNoiseW, formatParam(params.NoiseW),
	}

	// #nosec G204 -- the model path comes from the validated registry and the
	// output path from the artifact store; neither is caller-controlled.
	cmd := exec.CommandContext(ctx, p.binaryPath, args...)
	cmd.Stdin = strings.NewReader(text)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	startedAt := time.Now()

	err := cmd.Start()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return core.ResourceMetrics{}, fmt.Errorf(
				"%w: %q", core.ErrEngineNotAvailable, p.binaryPath,
			)
		}

		return core.ResourceMetrics{}, fmt.Errorf("failed to start synthesis engine: %w", err)
	}

	sampler := newResourceSampler(p.sampleInterval)
	samplerStop := make(chan struct{})
	samplerDone := make(chan struct{})

	go func() {
		defer close(samplerDone)
		sampler.run(int32(cmd.Process.Pid), samplerStop)
	}()

	waitErr := cmd.Wait()

	close(samplerStop)
	<-samplerDone

	metrics := sampler.metrics(time.Since(startedAt))

	if waitErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return metrics, fmt.Errorf("%w after %s", core.ErrSynthesisTimeout, p.timeout)
		}

		return metrics, fmt.Errorf(
			"%w: %s", core.ErrSynthesisEngine, engineDiagnostic(&stderr, waitErr),
		)
	}

	_, statErr := os.Stat(outputPath)
	if statErr != nil {
		return metrics, fmt.Errorf("%w: %s", core.ErrSynthesisOutputMissing, outputPath)
	}

	p.log.Info(
		"Engine finished in %s (cpu avg %.1f%%, mem peak %.1f MB)",
		metrics.Duration.Round(time.Millisecond),
		metrics.CPUPercentAvg,
		metrics.MemoryMBPeak,
	)

	return metrics, nil
}

// engineDiagnostic prefers the engine's own stderr output over the bare exit
// error, since piper reports its failures there.
func engineDiagnostic(stderr *bytes.Buffer, waitErr error) string {
	diagnostic := strings.TrimSpace(stderr.String())
	if diagnostic == "" {
		return waitErr.Error()
	}

	return diagnostic
}

func formatParam(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
