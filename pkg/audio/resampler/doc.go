// Package resampler converts arbitrary PCM16 audio to the fixed format the
// transcription pipeline consumes.
//
// It supports:
//   - Sample rate conversion (e.g., 44100Hz or 48000Hz to 16000Hz)
//   - Channel conversion (stereo to mono and back)
//   - Streaming interface via io.Reader
//
// The implementation is pure Go and handles 16-bit signed integer audio
// samples.
//
// Example usage:
//
//	src := resampler.Format{SampleRate: 44100, Stereo: true}
//	r, err := resampler.To16kMono(audioReader, src)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// Read 16 kHz mono PCM16 from r
//	io.Copy(output, r)
package resampler
