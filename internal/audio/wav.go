// Package audio provides the post-processing stage of the synthesis
// pipeline: prosodic pitch adjustment of raw engine output and transcoding
// into the delivery format.
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Common errors for the audio package.
var (
	ErrNotWAV              = errors.New("data is not a RIFF/WAVE stream")
	ErrMalformedWAV        = errors.New("malformed WAV chunk layout")
	ErrUnsupportedEncoding = errors.New("unsupported WAV encoding")
)

// WAV chunk identifiers and sizes.
const (
	riffChunkID    = "RIFF"
	waveFormatID   = "WAVE"
	fmtChunkID     = "fmt "
	dataChunkID    = "data"
	riffHeaderLen  = 12
	chunkHeaderLen = 8
	fmtChunkLen    = 16
	pcmFormatTag   = 1
)

// Clip is decoded PCM audio: the raw interleaved samples plus the framing
// parameters needed to reinterpret or re-encode them.
type Clip struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	Data          []byte
}

// DecodeWAV parses a PCM WAV stream into a Clip. Only uncompressed PCM is
// supported; the synthesis engine produces nothing else.
func DecodeWAV(raw []byte) (*Clip, error) {
	if len(raw) < riffHeaderLen ||
		string(raw[0:4]) != riffChunkID ||
		string(raw[8:12]) != waveFormatID {
		return nil, ErrNotWAV
	}

	clip := &Clip{SampleRate: 0, Channels: 0, BitsPerSample: 0, Data: nil}

	offset := riffHeaderLen
	for offset+chunkHeaderLen <= len(raw) {
		chunkID := string(raw[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(raw[offset+4 : offset+8]))
		body := offset + chunkHeaderLen

		if body+chunkSize > len(raw) {
			return nil, fmt.Errorf("%w: chunk %q overruns stream", ErrMalformedWAV, chunkID)
		}

		switch chunkID {
		case fmtChunkID:
			err := clip.parseFormatChunk(raw[body : body+chunkSize])
			if err != nil {
				return nil, err
			}
		case dataChunkID:
			clip.Data = raw[body : body+chunkSize]
		}

		// Chunks are word-aligned; odd sizes carry a padding byte.
		offset = body + chunkSize + chunkSize%2
	}

	if clip.SampleRate == 0 || clip.Data == nil {
		return nil, fmt.Errorf("%w: missing fmt or data chunk", ErrMalformedWAV)
	}

	return clip, nil
}

func (c *Clip) parseFormatChunk(chunk []byte) error {
	if len(chunk) < fmtChunkLen {
		return fmt.Errorf("%w: fmt chunk too short", ErrMalformedWAV)
	}

	formatTag := binary.LittleEndian.Uint16(chunk[0:2])
	if formatTag != pcmFormatTag {
		return fmt.Errorf("%w: format tag %d", ErrUnsupportedEncoding, formatTag)
	}

	c.Channels = int(binary.LittleEndian.Uint16(chunk[2:4]))
	c.SampleRate = int(binary.LittleEndian.Uint32(chunk[4:8]))
	c.BitsPerSample = int(binary.LittleEndian.Uint16(chunk[14:16]))

	return nil
}

// EncodeWAV serializes a Clip back into a minimal RIFF/WAVE stream with a
// single fmt and data chunk.
func EncodeWAV(clip *Clip) []byte {
	bytesPerFrame := clip.Channels * clip.BitsPerSample / 8
	byteRate := clip.SampleRate * bytesPerFrame

	var buf bytes.Buffer

	buf.WriteString(riffChunkID)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(4+chunkHeaderLen+fmtChunkLen+chunkHeaderLen+len(clip.Data)))
	buf.WriteString(waveFormatID)

	buf.WriteString(fmtChunkID)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(fmtChunkLen))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(pcmFormatTag))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(clip.Channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(clip.SampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bytesPerFrame))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(clip.BitsPerSample))

	buf.WriteString(dataChunkID)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(clip.Data)))
	buf.Write(clip.Data)

	return buf.Bytes()
}
