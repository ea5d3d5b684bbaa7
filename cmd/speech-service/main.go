// main package for the speech-service
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/book-expert/logger"
	"github.com/book-expert/speech-service/internal/artifact"
	"github.com/book-expert/speech-service/internal/audio"
	"github.com/book-expert/speech-service/internal/config"
	"github.com/book-expert/speech-service/internal/engine"
	"github.com/book-expert/speech-service/internal/httpapi"
	"github.com/book-expert/speech-service/internal/registry"
	"github.com/book-expert/speech-service/internal/synth"
)

const (
	serverReadTimeout = 30 * time.Second
	// Synthesis can run up to the engine timeout plus transcoding, so the
	// write timeout has to leave room for the whole pipeline.
	serverWriteTimeout = 120 * time.Second
	serverIdleTimeout  = 60 * time.Second
	shutdownTimeout    = 30 * time.Second
)

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, "speech-service-bootstrap.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create bootstrap logger: %w", err)
	}

	return log, nil
}

func buildService(cfg *config.Config, log *logger.Logger) (*synth.Service, *artifact.Store, error) {
	models := registry.New(cfg.Languages, cfg.Paths.ModelsDir)

	err := models.Validate()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to validate model registry: %w", err)
	}

	store, err := artifact.NewStore(cfg.Paths.AudioDir, cfg.PublicBaseURL(), log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create artifact store: %w", err)
	}

	piper := engine.NewPiper(engine.Config{
		BinaryPath:     cfg.Engine.BinaryPath,
		Timeout:        time.Duration(cfg.Engine.TimeoutSeconds) * time.Second,
		SampleInterval: time.Duration(cfg.Engine.SampleIntervalMS) * time.Millisecond,
	}, log)

	transcoder := audio.NewFFmpeg(audio.FFmpegConfig{
		FFmpegPath:  cfg.Transcoder.FFmpegPath,
		FFprobePath: cfg.Transcoder.FFprobePath,
		Bitrate:     cfg.Transcoder.Bitrate,
	}, log)

	return synth.New(models, piper, transcoder, store, log), store, nil
}

func run() error {
	// 1. Create a temporary logger for the bootstrap process
	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		// If bootstrap logger fails, we can only print to stderr
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	bootstrapLog.Info("Bootstrap logger created.")

	// 2. Load configuration using the central configurator
	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	bootstrapLog.Info("Configuration loaded successfully.")

	// 3. Initialize the final logger based on the loaded configuration
	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	// 4. Build the synthesis pipeline and HTTP server
	service, store, err := buildService(cfg, finalLog)
	if err != nil {
		finalLog.Error("Failed to build synthesis service: %v", err)

		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go store.Run(
		ctx,
		time.Duration(cfg.Artifacts.SweepIntervalSeconds)*time.Second,
		time.Duration(cfg.Artifacts.ExpirySeconds)*time.Second,
	)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      httpapi.NewServer(service, cfg.Paths.AudioDir, finalLog),
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	finalLog.System("Speech-Service successfully initialized. Listening on %s", cfg.Addr())

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- server.ListenAndServe()
	}()

	// 5. Wait for termination and drain in-flight requests
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		finalLog.System("Received signal %v, shutting down.", sig)
	case err = <-serveErr:
		finalLog.Error("HTTP server failed: %v", err)

		return fmt.Errorf("http server failed: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		finalLog.Error("Graceful shutdown failed: %v", err)

		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	finalLog.System("Shutdown complete.")

	return nil
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
