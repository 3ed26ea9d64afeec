// Package wav decodes raw WAV-style PCM16 audio into normalized float32
// samples for the transcription pipeline.
//
// The input contract is deliberately narrow: a 44-byte header followed by
// little-endian 16-bit PCM mono samples at 16 kHz. Anything else must be
// converted upstream (see pkg/audio/resampler) before reaching this package.
//
// Reads are chunked so peak memory stays proportional to the chunk size,
// not the file size. A sample split across a chunk boundary is carried
// over to the next chunk, so chunking never tears a sample in half.
package wav

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// SampleRate is the fixed sample rate the pipeline operates at.
const SampleRate = 16000

// HeaderSize is the fixed WAV header length skipped before PCM data.
const HeaderSize = 44

// chunkSize bounds how much raw PCM is read per iteration.
const chunkSize = 32 * 1024

// ErrInvalidData indicates the source is not valid PCM16 audio
// (typically a short or missing header).
var ErrInvalidData = errors.New("wav: invalid audio data")

// ReadPCM16 decodes a 44-byte-header PCM16 mono stream into normalized
// float32 samples in [-1, 1]. The sizeHint, when positive, pre-reserves
// the output buffer capacity (in bytes of source data, header included).
func ReadPCM16(r io.Reader, sizeHint int64) ([]float32, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: short header: %v", ErrInvalidData, err)
	}

	var samples []float32
	if sizeHint > HeaderSize {
		samples = make([]float32, 0, (sizeHint-HeaderSize)/2)
	}
	return readSamples(r, samples)
}

// ReadRaw decodes a headerless PCM16 mono stream, as produced by the
// resampling front-end.
func ReadRaw(r io.Reader) ([]float32, error) {
	return readSamples(r, nil)
}

// DecodeFile reads a PCM16 WAV file from disk, pre-reserving the output
// buffer from the file size.
func DecodeFile(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wav: open: %w", err)
	}
	defer f.Close()

	var sizeHint int64
	if info, err := f.Stat(); err == nil {
		sizeHint = info.Size()
	}
	return ReadPCM16(f, sizeHint)
}

func readSamples(r io.Reader, samples []float32) ([]float32, error) {
	buf := make([]byte, chunkSize)
	var carry byte
	haveCarry := false

	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if haveCarry {
				// Prefix the leftover byte from the previous chunk.
				chunk = append([]byte{carry}, chunk...)
				haveCarry = false
			}
			if len(chunk)%2 != 0 {
				carry = chunk[len(chunk)-1]
				haveCarry = true
				chunk = chunk[:len(chunk)-1]
			}
			samples = appendSamples(samples, chunk)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("wav: read samples: %w", err)
		}
	}

	return samples, nil
}

// appendSamples converts little-endian int16 pairs to normalized floats.
// len(chunk) must be even.
func appendSamples(dst []float32, chunk []byte) []float32 {
	for i := 0; i+1 < len(chunk); i += 2 {
		s := int16(chunk[i]) | int16(chunk[i+1])<<8
		v := float32(s) / 32767.0
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		dst = append(dst, v)
	}
	return dst
}
