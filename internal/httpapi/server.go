// Package httpapi exposes the synthesis pipeline over HTTP: one synthesize
// endpoint, static retrieval of delivery artifacts, and a health probe.
package httpapi

import (
	"context"
	"net/http"

	"github.com/book-expert/logger"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/book-expert/speech-service/internal/core"
)

// Synthesizer is the pipeline surface the HTTP layer depends on.
type Synthesizer interface {
	Synthesize(ctx context.Context, req core.SynthesisRequest) (*core.SynthesisResult, error)
	Languages() []string
}

// Server routes inbound requests to the synthesis pipeline.
type Server struct {
	router  chi.Router
	service Synthesizer
	log     *logger.Logger
}

// NewServer builds the router. Delivery artifacts are served read-only from
// audioDir under /audio/ until the sweep removes them.
func NewServer(service Synthesizer, audioDir string, log *logger.Logger) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		log:     log,
	}

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(corsAllowAll)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/synthesize", s.handleSynthesize)
	s.router.Handle(
		"/audio/*",
		http.StripPrefix("/audio/", http.FileServer(http.Dir(audioDir))),
	)

	return s
}

// ServeHTTP makes the server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
