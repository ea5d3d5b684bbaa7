// Package engine_test tests subprocess supervision around the synthesis
// engine using stand-in binaries, since piper itself is not present in CI.
package engine_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/book-expert/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/speech-service/internal/core"
	"github.com/book-expert/speech-service/internal/engine"
)

func createTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(t.TempDir(), "test.log")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = log.Close()
	})

	return log
}

// writeStubEngine writes an executable shell script standing in for the
// engine binary. The script receives the same flags piper would.
func writeStubEngine(t *testing.T, script string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stub-engine")

	err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o700) // #nosec G306
	require.NoError(t, err)

	return path
}

func TestParamsFor(t *testing.T) {
	t.Parallel()

	statement := engine.ParamsFor(false)
	assert.InEpsilon(t, 1.15, statement.LengthScale, 0.001)
	assert.InEpsilon(t, 0.55, statement.NoiseScale, 0.001)
	assert.InEpsilon(t, 0.70, statement.NoiseW, 0.001)

	question := engine.ParamsFor(true)
	assert.InEpsilon(t, 1.15, question.LengthScale, 0.001)
	assert.InEpsilon(t, 0.65, question.NoiseScale, 0.001)
	assert.InEpsilon(t, 0.85, question.NoiseW, 0.001)
}

func TestPiper_Synthesize_MissingBinary(t *testing.T) {
	t.Parallel()

	piper := engine.NewPiper(engine.Config{
		BinaryPath:     filepath.Join(t.TempDir(), "no-such-binary"),
		Timeout:        time.Second,
		SampleInterval: 10 * time.Millisecond,
	}, createTestLogger(t))

	outputPath := filepath.Join(t.TempDir(), "out.wav")

	_, err := piper.Synthesize(context.Background(), "hello", "model.onnx", outputPath, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrEngineNotAvailable)
}

func TestPiper_Synthesize_Success(t *testing.T) {
	t.Parallel()

	// $4 is the --output_file value; drain stdin like the real engine.
	binary := writeStubEngine(t, `cat > /dev/null; printf 'RIFF' > "$4"`)

	piper := engine.NewPiper(engine.Config{
		BinaryPath:     binary,
		Timeout:        5 * time.Second,
		SampleInterval: 10 * time.Millisecond,
	}, createTestLogger(t))

	outputPath := filepath.Join(t.TempDir(), "out.wav")

	metrics, err := piper.Synthesize(context.Background(), "hello", "model.onnx", outputPath, false)
	require.NoError(t, err)

	assert.FileExists(t, outputPath)
	assert.Positive(t, metrics.Duration)
}

func TestPiper_Synthesize_EngineFailure(t *testing.T) {
	t.Parallel()

	binary := writeStubEngine(t, `echo "voice load failed" >&2; exit 3`)

	piper := engine.NewPiper(engine.Config{
		BinaryPath:     binary,
		Timeout:        5 * time.Second,
		SampleInterval: 10 * time.Millisecond,
	}, createTestLogger(t))

	outputPath := filepath.Join(t.TempDir(), "out.wav")

	_, err := piper.Synthesize(context.Background(), "hello", "model.onnx", outputPath, false)
	require.Error(t, err)

	assert.ErrorIs(t, err, core.ErrSynthesisEngine)
	assert.Contains(t, err.Error(), "voice load failed")
}

func TestPiper_Synthesize_MissingOutput(t *testing.T) {
	t.Parallel()

	binary := writeStubEngine(t, `cat > /dev/null; exit 0`)

	piper := engine.NewPiper(engine.Config{
		BinaryPath:     binary,
		Timeout:        5 * time.Second,
		SampleInterval: 10 * time.Millisecond,
	}, createTestLogger(t))

	outputPath := filepath.Join(t.TempDir(), "out.wav")

	_, err := piper.Synthesize(context.Background(), "hello", "model.onnx", outputPath, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSynthesisOutputMissing)
}

func TestPiper_Synthesize_Timeout(t *testing.T) {
	t.Parallel()

	binary := writeStubEngine(t, `sleep 5`)

	piper := engine.NewPiper(engine.Config{
		BinaryPath:     binary,
		Timeout:        200 * time.Millisecond,
		SampleInterval: 10 * time.Millisecond,
	}, createTestLogger(t))

	outputPath := filepath.Join(t.TempDir(), "out.wav")

	_, err := piper.Synthesize(context.Background(), "hello", "model.onnx", outputPath, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSynthesisTimeout)
}
