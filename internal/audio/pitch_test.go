package audio_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/speech-service/internal/audio"
)

func TestPitchShift_KeepsFramingAndShortensClip(t *testing.T) {
	t.Parallel()

	const (
		sampleRate = 22050
		frames     = 4096
		semitones  = 0.4
	)

	raw := audio.EncodeWAV(sineClip(sampleRate, 1, frames))

	shifted, err := audio.PitchShift(raw, semitones)
	require.NoError(t, err)

	clip, err := audio.DecodeWAV(shifted)
	require.NoError(t, err)

	assert.Equal(t, sampleRate, clip.SampleRate)
	assert.Equal(t, 1, clip.Channels)
	assert.Equal(t, 16, clip.BitsPerSample)

	// Raising pitch without stretching shortens the clip by the pitch ratio.
	pitchRatio := math.Pow(2, semitones/12.0)
	expectedFrames := float64(frames) / pitchRatio
	actualFrames := float64(len(clip.Data) / 2)

	assert.InDelta(t, expectedFrames, actualFrames, 2)
	assert.Less(t, len(clip.Data), frames*2)
}

func TestPitchShift_ZeroSemitonesIsIdentity(t *testing.T) {
	t.Parallel()

	original := sineClip(22050, 2, 1024)

	shifted, err := audio.PitchShift(audio.EncodeWAV(original), 0)
	require.NoError(t, err)

	clip, err := audio.DecodeWAV(shifted)
	require.NoError(t, err)

	assert.Equal(t, original.Data, clip.Data)
}

func TestPitchShift_RejectsNonWAV(t *testing.T) {
	t.Parallel()

	_, err := audio.PitchShift([]byte("noise"), 0.4)
	require.Error(t, err)
	assert.ErrorIs(t, err, audio.ErrNotWAV)
}

func TestPitchShift_RejectsNon16BitSamples(t *testing.T) {
	t.Parallel()

	clip := &audio.Clip{
		SampleRate:    8000,
		Channels:      1,
		BitsPerSample: 8,
		Data:          make([]byte, 64),
	}

	_, err := audio.PitchShift(audio.EncodeWAV(clip), 0.4)
	require.Error(t, err)
	assert.ErrorIs(t, err, audio.ErrUnsupportedEncoding)
}
