// Package fbank computes log mel filterbank features from PCM audio.
//
// This is the acoustic front-end for the on-device speech recognition
// models (FastConformer, SenseVoice, Parakeet). The output is a
// [T][numMels] float32 matrix suitable for direct tensor input.
//
// Default parameters match the models' training front-end:
//
//	SampleRate: 16000
//	WindowSize: 400 (25 ms)
//	HopSize:    160 (10 ms)
//	FFTSize:    512
//	NumMels:    80
//	Floor:      1e-6
//
// The models are trained on mean-normalized features; callers must apply
// [MeanNormalize] before inference. Omitting it does not fail — it silently
// degrades recognition quality — so the orchestrator always applies it.
package fbank

import (
	"math"
)

// Config controls mel filterbank extraction parameters.
type Config struct {
	SampleRate int     // audio sample rate in Hz (default 16000)
	WindowSize int     // window length in samples (default 400 = 25ms)
	HopSize    int     // hop length in samples (default 160 = 10ms)
	FFTSize    int     // FFT size (default 512)
	NumMels    int     // number of mel bins (default 80)
	Floor      float64 // energy floor before the log (default 1e-6)
}

// DefaultConfig returns the standard config for the 16 kHz recognition models.
func DefaultConfig() Config {
	return Config{
		SampleRate: 16000,
		WindowSize: 400,
		HopSize:    160,
		FFTSize:    512,
		NumMels:    80,
		Floor:      1e-6,
	}
}

// Extractor computes log mel filterbank features from PCM samples.
type Extractor struct {
	cfg     Config
	window  []float64 // Hann window
	melBank [][]float64
}

// New creates a new fbank Extractor with the given config.
func New(cfg Config) *Extractor {
	e := &Extractor{cfg: cfg}
	e.window = hannWindow(cfg.WindowSize)
	e.melBank = melFilterBank(cfg.NumMels, cfg.FFTSize, cfg.SampleRate)
	return e
}

// Extract computes log mel filterbank features from normalized float32
// samples in [-1, 1].
// Output: [T][numMels] where T = (len(pcm) - windowSize) / hopSize + 1.
// Returns nil when pcm holds fewer samples than one full window.
func (e *Extractor) Extract(pcm []float32) [][]float32 {
	cfg := e.cfg
	n := len(pcm)
	if n < cfg.WindowSize {
		return nil
	}

	numFrames := (n-cfg.WindowSize)/cfg.HopSize + 1
	nfft := cfg.FFTSize
	halfFFT := nfft / 2

	features := make([][]float32, numFrames)

	// Working buffers shared across frames.
	re := make([]float64, nfft)
	im := make([]float64, nfft)
	power := make([]float64, halfFFT)

	for t := 0; t < numFrames; t++ {
		start := t * cfg.HopSize

		// Window and zero-pad to FFT size.
		for i := 0; i < cfg.WindowSize; i++ {
			re[i] = float64(pcm[start+i]) * e.window[i]
		}
		for i := cfg.WindowSize; i < nfft; i++ {
			re[i] = 0
		}
		for i := range im {
			im[i] = 0
		}

		fft(re, im)

		// Squared magnitude of the first FFTSize/2 bins.
		for k := 0; k < halfFFT; k++ {
			power[k] = re[k]*re[k] + im[k]*im[k]
		}

		// Mel filterbank, then natural log with floor.
		mel := make([]float32, cfg.NumMels)
		for m := 0; m < cfg.NumMels; m++ {
			sum := 0.0
			for k, w := range e.melBank[m] {
				sum += w * power[k]
			}
			if sum < cfg.Floor {
				sum = cfg.Floor
			}
			mel[m] = float32(math.Log(sum))
		}
		features[t] = mel
	}

	return features
}

// MeanNormalize subtracts the per-band mean across all frames, in place.
// The models are trained on zero-mean features; this must run once per
// utterance before inference.
func MeanNormalize(features [][]float32) {
	if len(features) == 0 {
		return
	}
	numMels := len(features[0])
	T := float64(len(features))

	for m := 0; m < numMels; m++ {
		sum := 0.0
		for _, f := range features {
			sum += float64(f[m])
		}
		mean := sum / T
		for _, f := range features {
			f[m] = float32(float64(f[m]) - mean)
		}
	}
}

// Flatten converts [T][numMels] to a flat row-major [T*numMels] slice
// suitable for tensor creation.
func Flatten(features [][]float32) []float32 {
	if len(features) == 0 {
		return nil
	}
	cols := len(features[0])
	flat := make([]float32, len(features)*cols)
	for t, row := range features {
		copy(flat[t*cols:], row)
	}
	return flat
}
