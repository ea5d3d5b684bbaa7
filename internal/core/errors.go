package core

import (
	"errors"
	"fmt"
)

// Failure taxonomy for the synthesis pipeline. The HTTP layer classifies
// these with errors.Is; everything not listed here is reported as a generic
// internal error.
var (
	// ErrInvalidInput indicates empty or whitespace-only text, or text that
	// became empty after normalization. Rejected before any subprocess work.
	ErrInvalidInput = errors.New("invalid input")
	// ErrModelNotFound indicates a registered language whose model file is
	// missing on disk.
	ErrModelNotFound = errors.New("model not found")
	// ErrEngineNotAvailable indicates the synthesis engine binary is missing.
	ErrEngineNotAvailable = errors.New("synthesis engine not available")
	// ErrSynthesisTimeout indicates the engine exceeded the hard wall-clock
	// timeout and was terminated.
	ErrSynthesisTimeout = errors.New("synthesis timed out")
	// ErrSynthesisEngine indicates the engine exited with a nonzero code.
	ErrSynthesisEngine = errors.New("synthesis engine failed")
	// ErrSynthesisOutputMissing indicates the engine exited cleanly without
	// producing the expected output file.
	ErrSynthesisOutputMissing = errors.New("synthesis output file was not generated")
	// ErrTranscode indicates conversion to the delivery format failed.
	ErrTranscode = errors.New("audio transcoding failed")
)

// ErrUnsupportedLanguage indicates a language code with no registered model.
// It is a refinement of ErrInvalidInput, so errors.Is matches either.
var ErrUnsupportedLanguage = fmt.Errorf("%w: unsupported language", ErrInvalidInput)
