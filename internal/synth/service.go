// Package synth orchestrates the request pipeline: validate, normalize,
// enhance, synthesize, post-process, expose. Stages run strictly
// sequentially within one request; requests are independent and may run
// concurrently, each with its own subprocess and artifact set.
package synth

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/book-expert/logger"

	"github.com/book-expert/speech-service/internal/artifact"
	"github.com/book-expert/speech-service/internal/audio"
	"github.com/book-expert/speech-service/internal/core"
	"github.com/book-expert/speech-service/internal/text"
)

// DefaultPitchShiftSemitones is the upward shift applied to interrogative
// audio so question endings read with a perceptible rise.
const DefaultPitchShiftSemitones = 0.4

const deliveryFormat = "mp3"

const artifactFilePermissions = 0o600

// Service is the request-processing pipeline.
type Service struct {
	normalizer          *text.Normalizer
	enhancer            *text.Enhancer
	registry            core.ModelRegistry
	engine              core.SynthesisEngine
	transcoder          core.Transcoder
	store               *artifact.Store
	pitchShiftSemitones float64
	log                 *logger.Logger
}

// New wires the pipeline stages together. All collaborators are constructed
// by the caller; the service holds no ambient state.
func New(
	registry core.ModelRegistry,
	engine core.SynthesisEngine,
	transcoder core.Transcoder,
	store *artifact.Store,
	log *logger.Logger,
) *Service {
	return &Service{
		normalizer:          text.NewNormalizer(),
		enhancer:            text.NewEnhancer(),
		registry:            registry,
		engine:              engine,
		transcoder:          transcoder,
		store:               store,
		pitchShiftSemitones: DefaultPitchShiftSemitones,
		log:                 log,
	}
}

// Languages returns the language codes the service accepts.
func (s *Service) Languages() []string {
	return s.registry.Languages()
}

// Synthesize runs one request through the full pipeline and returns a
// reference to the delivery artifact. Invalid input and unresolvable models
// are rejected before any subprocess work.
func (s *Service) Synthesize(
	ctx context.Context,
	req core.SynthesisRequest,
) (*core.SynthesisResult, error) {
	model, modelPath, enhanced, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	_, rawPath := s.store.Allocate(artifact.RawExtension)

	metrics, err := s.engine.Synthesize(
		ctx, enhanced.Text, modelPath, rawPath, enhanced.Interrogative,
	)
	if err != nil {
		s.discardIfPresent(rawPath)

		return nil, err
	}

	if enhanced.Interrogative {
		rawPath = s.applyPitchShift(rawPath)
	}

	deliveryName, deliveryPath, err := s.transcode(ctx, rawPath)
	if err != nil {
		return nil, err
	}

	result := &core.SynthesisResult{
		AudioURL: s.store.URL(deliveryName),
		Filename: deliveryName,
		Format:   deliveryFormat,
		Language: req.Language,
		Model:    model,
		Metrics:  metrics,
		Audio:    s.deliveryInfo(ctx, deliveryPath),
	}

	return result, nil
}

// prepare validates the request and runs the text stages. Everything here
// happens before any subprocess is started.
func (s *Service) prepare(req core.SynthesisRequest) (
	model string,
	modelPath string,
	enhanced text.Enhanced,
	err error,
) {
	trimmed := strings.TrimSpace(req.Text)
	if trimmed == "" {
		return "", "", text.Enhanced{}, fmt.Errorf(
			"%w: text cannot be empty", core.ErrInvalidInput,
		)
	}

	if strings.TrimSpace(req.Language) == "" {
		return "", "", text.Enhanced{}, fmt.Errorf(
			"%w: language must be specified", core.ErrInvalidInput,
		)
	}

	model, modelPath, err = s.registry.Resolve(req.Language)
	if err != nil {
		return "", "", text.Enhanced{}, err
	}

	normalized := s.normalizer.Normalize(trimmed)
	if normalized == "" {
		return "", "", text.Enhanced{}, fmt.Errorf(
			"%w: text is empty after normalization", core.ErrInvalidInput,
		)
	}

	enhanced = s.enhancer.Enhance(normalized)
	if enhanced.Interrogative {
		s.log.Info("Question detected, applying enhanced prosody")
	}

	return model, modelPath, enhanced, nil
}

// applyPitchShift shifts interrogative audio up by the configured semitones
// into a fresh artifact, superseding the original. Best-effort: any failure
// is logged and the unshifted artifact is returned instead.
func (s *Service) applyPitchShift(rawPath string) string {
	rawData, err := os.ReadFile(rawPath)
	if err != nil {
		s.log.Warn("Pitch shift skipped, cannot read %s: %v", rawPath, err)

		return rawPath
	}

	shifted, err := audio.PitchShift(rawData, s.pitchShiftSemitones)
	if err != nil {
		s.log.Warn("Pitch shift failed, using original audio: %v", err)

		return rawPath
	}

	_, shiftedPath := s.store.Allocate(artifact.RawExtension)

	err = os.WriteFile(shiftedPath, shifted, artifactFilePermissions)
	if err != nil {
		s.log.Warn("Pitch shift failed, cannot write %s: %v", shiftedPath, err)

		return rawPath
	}

	removeErr := s.store.Remove(rawPath)
	if removeErr != nil {
		s.log.Warn("Could not remove superseded artifact: %v", removeErr)
	}

	return shiftedPath
}

// transcode converts the raw artifact into the delivery format and deletes
// the raw artifact once superseded. Transcoding failure is request-fatal and
// leaves no artifact behind.
func (s *Service) transcode(ctx context.Context, rawPath string) (string, string, error) {
	deliveryName, deliveryPath := s.store.Allocate(artifact.DeliveryExtension)

	err := s.transcoder.Transcode(ctx, rawPath, deliveryPath)
	if err != nil {
		s.discardIfPresent(rawPath)
		s.discardIfPresent(deliveryPath)

		return "", "", err
	}

	removeErr := s.store.Remove(rawPath)
	if removeErr != nil {
		s.log.Warn("Could not remove superseded artifact: %v", removeErr)
	}

	return deliveryName, deliveryPath, nil
}

// deliveryInfo computes the delivery artifact's metadata. A failed duration
// probe degrades to size-only metadata rather than failing the request.
func (s *Service) deliveryInfo(ctx context.Context, deliveryPath string) core.AudioInfo {
	info := core.AudioInfo{DurationSeconds: 0, SizeBytes: 0}

	stat, err := os.Stat(deliveryPath)
	if err == nil {
		info.SizeBytes = stat.Size()
	}

	seconds, err := s.transcoder.Duration(ctx, deliveryPath)
	if err != nil {
		s.log.Warn("Could not probe delivery duration for %s: %v", deliveryPath, err)

		return info
	}

	info.DurationSeconds = seconds

	return info
}

// discardIfPresent removes a possibly partial artifact after a failure so no
// partial output is ever exposed.
func (s *Service) discardIfPresent(path string) {
	_, err := os.Stat(path)
	if err != nil {
		return
	}

	removeErr := s.store.Remove(path)
	if removeErr != nil {
		s.log.Warn("Could not discard partial artifact: %v", removeErr)
	}
}
