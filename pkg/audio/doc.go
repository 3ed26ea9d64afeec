// Package audio provides audio processing utilities.
//
// This package serves as an umbrella for audio-related sub-packages:
//
//   - wav: PCM16 WAV decoding into normalized float32 samples
//   - fbank: log mel filterbank feature extraction
//   - resampler: sample rate and channel conversion to 16 kHz mono
//
// Example usage:
//
//	import (
//	    "github.com/tmm22/VoiceInk-sub003/pkg/audio/fbank"
//	    "github.com/tmm22/VoiceInk-sub003/pkg/audio/wav"
//	)
//
//	samples, err := wav.DecodeFile("recording.wav")
//	features := fbank.New(fbank.DefaultConfig()).Extract(samples)
package audio
