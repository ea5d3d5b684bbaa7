package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/book-expert/speech-service/internal/core"
)

// Machine-readable error classifications carried alongside the detail text.
const (
	codeInvalidInput      = "invalid_input"
	codeModelNotFound     = "model_not_found"
	codeEngineUnavailable = "engine_unavailable"
	codeSynthesisTimeout  = "synthesis_timeout"
	codeEngineError       = "engine_error"
	codeOutputMissing     = "output_missing"
	codeTranscodeError    = "transcode_error"
	codeInternalError     = "internal_error"
)

const statusSuccess = "success"

type synthesizeRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type synthesizeResponse struct {
	Status    string         `json:"status"`
	AudioURL  string         `json:"audio_url"`
	Filename  string         `json:"filename"`
	Format    string         `json:"format"`
	Language  string         `json:"language"`
	ModelUsed string         `json:"model_used"`
	Resources resourceReport `json:"resources"`
}

type resourceReport struct {
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
	CPUPercentAverage     float64 `json:"cpu_percent_average"`
	MemoryMBAverage       float64 `json:"memory_mb_average"`
	MemoryMBPeak          float64 `json:"memory_mb_peak"`
	AudioDurationSeconds  float64 `json:"audio_duration_seconds"`
	FileSizeBytes         int64   `json:"file_size_bytes"`
}

// errorResponse is the structured error payload; Detail is human-readable,
// ErrorCode machine-readable.
type errorResponse struct {
	Detail    string `json:"detail"`
	ErrorCode string `json:"error_code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "speech-service",
	})
}

func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	var req synthesizeRequest

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Detail:    "invalid request body",
			ErrorCode: codeInvalidInput,
		})

		return
	}

	result, err := s.service.Synthesize(r.Context(), core.SynthesisRequest{
		Text:     req.Text,
		Language: req.Language,
	})
	if err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, synthesizeResponse{
		Status:    statusSuccess,
		AudioURL:  result.AudioURL,
		Filename:  result.Filename,
		Format:    result.Format,
		Language:  result.Language,
		ModelUsed: result.Model,
		Resources: resourceReport{
			ProcessingTimeSeconds: result.Metrics.Duration.Seconds(),
			CPUPercentAverage:     result.Metrics.CPUPercentAvg,
			MemoryMBAverage:       result.Metrics.MemoryMBAvg,
			MemoryMBPeak:          result.Metrics.MemoryMBPeak,
			AudioDurationSeconds:  result.Audio.DurationSeconds,
			FileSizeBytes:         result.Audio.SizeBytes,
		},
	})
}

// writeError maps pipeline failures to the client-facing taxonomy. Rejected
// input carries the supported language set when relevant; uncategorized
// failures are logged in full and reported generically.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)

	detail := err.Error()
	if errors.Is(err, core.ErrUnsupportedLanguage) {
		detail += " (available: " + strings.Join(s.service.Languages(), ", ") + ")"
	}

	if code == codeInternalError {
		s.log.Error("Unexpected synthesis failure: %v", err)

		detail = "internal server error"
	}

	writeJSON(w, status, errorResponse{Detail: detail, ErrorCode: code})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrModelNotFound):
		return http.StatusBadRequest, codeModelNotFound
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest, codeInvalidInput
	case errors.Is(err, core.ErrEngineNotAvailable):
		return http.StatusInternalServerError, codeEngineUnavailable
	case errors.Is(err, core.ErrSynthesisTimeout):
		return http.StatusInternalServerError, codeSynthesisTimeout
	case errors.Is(err, core.ErrSynthesisEngine):
		return http.StatusInternalServerError, codeEngineError
	case errors.Is(err, core.ErrSynthesisOutputMissing):
		return http.StatusInternalServerError, codeOutputMissing
	case errors.Is(err, core.ErrTranscode):
		return http.StatusInternalServerError, codeTranscodeError
	default:
		return http.StatusInternalServerError, codeInternalError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
