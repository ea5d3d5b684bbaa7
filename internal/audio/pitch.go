package audio

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	semitonesPerOctave = 12.0
	bytesPerSample     = 2
)

// PitchShift raises (or lowers) the perceived pitch of a 16-bit PCM WAV
// stream by the given number of semitones without an engine round trip.
//
// The shift is the frame-rate reinterpretation trick: declare the clip's
// frame rate scaled by 2^(semitones/12), which plays the same samples faster
// and higher, then linearly resample back to the original rate so the stream
// stays valid at its native rate. The result is shorter by the pitch ratio;
// for the sub-semitone shifts used on questions that is inaudible.
func PitchShift(raw []byte, semitones float64) ([]byte, error) {
	clip, err := DecodeWAV(raw)
	if err != nil {
		return nil, err
	}

	if clip.BitsPerSample != 16 {
		return nil, fmt.Errorf("%w: %d bits per sample", ErrUnsupportedEncoding, clip.BitsPerSample)
	}

	pitchRatio := math.Pow(2, semitones/semitonesPerOctave)
	shiftedRate := int(float64(clip.SampleRate) * pitchRatio)

	shifted := &Clip{
		SampleRate:    clip.SampleRate,
		Channels:      clip.Channels,
		BitsPerSample: clip.BitsPerSample,
		Data:          resample(clip.Data, clip.Channels, shiftedRate, clip.SampleRate),
	}

	return EncodeWAV(shifted), nil
}

// resample converts interleaved 16-bit PCM between frame rates using linear
// interpolation. Input and output are little-endian signed 16-bit samples.
func resample(in []byte, channels, fromRate, toRate int) []byte {
	frameBytes := channels * bytesPerSample

	inFrames := len(in) / frameBytes
	if inFrames < 2 {
		return nil
	}

	outFrames := int(float64(inFrames) * float64(toRate) / float64(fromRate))
	out := make([]byte, outFrames*frameBytes)

	for frame := 0; frame < outFrames; frame++ {
		// Source position in the input stream (fractional).
		srcPos := float64(frame) * float64(fromRate) / float64(toRate)
		frame0 := int(srcPos)
		frac := srcPos - float64(frame0)

		// Clamp the interpolation pair to the final input frame.
		frame1 := frame0 + 1
		if frame1 >= inFrames {
			frame1 = inFrames - 1
		}

		for ch := 0; ch < channels; ch++ {
			s0 := readSample(in, frame0*channels+ch)
			s1 := readSample(in, frame1*channels+ch)

			sample := int16(float64(s0) + frac*(float64(s1)-float64(s0)))
			binary.LittleEndian.PutUint16(
				out[(frame*channels+ch)*bytesPerSample:],
				uint16(sample),
			)
		}
	}

	return out
}

func readSample(buf []byte, idx int) int16 {
	return int16(binary.LittleEndian.Uint16(buf[idx*bytesPerSample:]))
}
