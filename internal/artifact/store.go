// Package artifact manages generated audio files on local disk: collision-free
// naming, retrieval references, and periodic expiry sweeps.
//
// The store exclusively owns files in its directory. Pipeline stages create
// and delete artifacts only through it, and names are globally unique, so
// concurrent requests never touch each other's files.
package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/book-expert/logger"
	"github.com/google/uuid"
)

// Expiry defaults, overridable through configuration.
const (
	DefaultSweepInterval = 300 * time.Second
	DefaultMaxAge        = 3600 * time.Second
)

const dirPermissions = 0o750

// DeliveryExtension marks delivery artifacts; only these are subject to the
// expiry sweep. Raw artifacts are deleted inline by the pipeline as soon as
// they are superseded.
const DeliveryExtension = ".mp3"

// RawExtension marks raw engine output awaiting post-processing.
const RawExtension = ".wav"

const servePathPrefix = "/audio/"

// Store is the artifact lifecycle manager for one storage directory.
type Store struct {
	dir           string
	publicBaseURL string
	log           *logger.Logger
}

// NewStore creates the storage directory if needed and returns a store whose
// retrieval references are rooted at publicBaseURL.
func NewStore(dir, publicBaseURL string, log *logger.Logger) (*Store, error) {
	err := os.MkdirAll(dir, dirPermissions)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact directory %s: %w", dir, err)
	}

	return &Store{
		dir:           dir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		log:           log,
	}, nil
}

// Dir returns the storage directory the store owns.
func (s *Store) Dir() string {
	return s.dir
}

// Allocate returns a collision-free artifact name with the given extension
// and its path inside the storage directory.
func (s *Store) Allocate(extension string) (name, path string) {
	name = uuid.NewString() + extension

	return name, filepath.Join(s.dir, name)
}

// URL returns the stable retrieval reference callers use to fetch a delivery
// artifact's bytes until it is swept.
func (s *Store) URL(name string) string {
	return s.publicBaseURL + servePathPrefix + name
}

// Remove deletes an artifact. Superseded intermediates go through here so
// file deletion stays inside the store.
func (s *Store) Remove(path string) error {
	err := os.Remove(path)
	if err != nil {
		return fmt.Errorf("failed to remove artifact %s: %w", path, err)
	}

	return nil
}

// Sweep deletes every delivery artifact whose last-modified age exceeds
// maxAge and reports how many were deleted. Failures on individual artifacts
// are logged and never abort the cycle.
func (s *Store) Sweep(maxAge time.Duration) int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.log.Error("Sweep could not list artifact directory %s: %v", s.dir, err)

		return 0
	}

	now := time.Now()
	deleted := 0

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != DeliveryExtension {
			continue
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			s.log.Warn("Sweep could not stat %s: %v", entry.Name(), infoErr)

			continue
		}

		if now.Sub(info.ModTime()) <= maxAge {
			continue
		}

		removeErr := os.Remove(filepath.Join(s.dir, entry.Name()))
		if removeErr != nil {
			s.log.Warn("Sweep could not delete %s: %v", entry.Name(), removeErr)

			continue
		}

		deleted++
	}

	if deleted > 0 {
		s.log.Info("Sweep deleted %d expired artifact(s)", deleted)
	}

	return deleted
}

// Run sweeps on a fixed interval until ctx is cancelled at process shutdown.
// There is no other cancellation path.
func (s *Store) Run(ctx context.Context, interval, maxAge time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(maxAge)
		}
	}
}
