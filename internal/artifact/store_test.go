// Package artifact_test tests artifact naming, references and expiry.
package artifact_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/book-expert/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/speech-service/internal/artifact"
)

func newTestStore(t *testing.T, publicBaseURL string) *artifact.Store {
	t.Helper()

	log, err := logger.New(t.TempDir(), "test.log")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = log.Close()
	})

	store, err := artifact.NewStore(t.TempDir(), publicBaseURL, log)
	require.NoError(t, err)

	return store
}

// writeArtifact creates a delivery artifact with the given last-modified age.
func writeArtifact(t *testing.T, store *artifact.Store, extension string, age time.Duration) string {
	t.Helper()

	_, path := store.Allocate(extension)

	err := os.WriteFile(path, []byte("audio"), 0o600)
	require.NoError(t, err)

	stamp := time.Now().Add(-age)

	err = os.Chtimes(path, stamp, stamp)
	require.NoError(t, err)

	return path
}

func TestStore_Allocate_UniqueNames(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, "http://localhost:8000")

	nameA, pathA := store.Allocate(artifact.DeliveryExtension)
	nameB, pathB := store.Allocate(artifact.DeliveryExtension)

	assert.NotEqual(t, nameA, nameB)
	assert.NotEqual(t, pathA, pathB)
	assert.True(t, strings.HasSuffix(nameA, artifact.DeliveryExtension))
	assert.Equal(t, filepath.Join(store.Dir(), nameA), pathA)
}

func TestStore_URL(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, "https://speech.example.com/")

	url := store.URL("abc.mp3")
	assert.Equal(t, "https://speech.example.com/audio/abc.mp3", url)
}

func TestStore_Sweep_DeletesOnlyExpiredDeliveryArtifacts(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, "http://localhost:8000")

	expired := writeArtifact(t, store, artifact.DeliveryExtension, 3601*time.Second)
	fresh := writeArtifact(t, store, artifact.DeliveryExtension, 3599*time.Second)
	raw := writeArtifact(t, store, artifact.RawExtension, 5000*time.Second)

	deleted := store.Sweep(artifact.DefaultMaxAge)

	assert.Equal(t, 1, deleted)
	assert.NoFileExists(t, expired)
	assert.FileExists(t, fresh)
	assert.FileExists(t, raw)
}

func TestStore_Sweep_EmptyDirectory(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, "http://localhost:8000")

	assert.Equal(t, 0, store.Sweep(artifact.DefaultMaxAge))
}

func TestStore_Remove(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, "http://localhost:8000")
	path := writeArtifact(t, store, artifact.RawExtension, 0)

	require.NoError(t, store.Remove(path))
	assert.NoFileExists(t, path)

	err := store.Remove(path)
	require.Error(t, err)
}
