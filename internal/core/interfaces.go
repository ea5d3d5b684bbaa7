// Package core defines the domain types and interfaces shared by the
// speech-service pipeline stages.
package core

import (
	"context"
	"time"
)

// SynthesisRequest carries one inbound synthesis job. It is immutable once
// accepted by the pipeline.
type SynthesisRequest struct {
	Text     string
	Language string
}

// VoiceParams holds the numeric voice-shaping parameters passed to the
// synthesis engine. LengthScale controls speed, NoiseScale tonal variation,
// NoiseW phoneme duration variation.
type VoiceParams struct {
	LengthScale float64
	NoiseScale  float64
	NoiseW      float64
}

// ResourceMetrics summarizes subprocess resource usage sampled while the
// synthesis engine was alive. All values are zero when no samples were taken.
type ResourceMetrics struct {
	CPUPercentAvg float64
	MemoryMBAvg   float64
	MemoryMBPeak  float64
	Duration      time.Duration
}

// AudioInfo carries metadata derived from the delivery artifact.
// DurationSeconds is zero when the artifact could not be probed.
type AudioInfo struct {
	DurationSeconds float64
	SizeBytes       int64
}

// SynthesisResult references the final delivery artifact for a successful
// request. It is immutable once produced.
type SynthesisResult struct {
	AudioURL string
	Filename string
	Format   string
	Language string
	Model    string
	Metrics  ResourceMetrics
	Audio    AudioInfo
}

// SynthesisEngine invokes the external speech-synthesis process. The engine
// reads text from its input channel and writes raw audio to outputPath. The
// returned metrics cover the lifetime of the subprocess.
type SynthesisEngine interface {
	Synthesize(
		ctx context.Context,
		text string,
		modelPath string,
		outputPath string,
		interrogative bool,
	) (ResourceMetrics, error)
}

// Transcoder converts raw engine audio into the delivery format and probes
// delivery artifacts for their decoded duration.
type Transcoder interface {
	Transcode(ctx context.Context, sourcePath, targetPath string) error
	Duration(ctx context.Context, path string) (float64, error)
}

// ModelRegistry resolves a language code to a registered model identifier and
// the on-disk model file backing it.
type ModelRegistry interface {
	Resolve(language string) (model string, modelPath string, err error)
	Languages() []string
}
