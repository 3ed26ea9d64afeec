// Package vad provides voice-activity-based segmentation of audio buffers.
//
// The transcription orchestrator consumes this package only through the
// narrow [Segmenter] contract and treats it as a best-effort optimization:
// any error falls back to transcribing the full unsegmented buffer.
//
// Two implementations are provided: [WebRTC], backed by the WebRTC voice
// activity detector, and [Energy], a dependency-free RMS threshold detector
// usable when the WebRTC library is unavailable.
package vad

import "math"

// SampleRate is the fixed sample rate segmenters operate at.
const SampleRate = 16000

// frameSize is the per-classification window: 30 ms at 16 kHz.
const frameSize = 480

// Segmenter partitions an audio buffer into speech-only segments.
type Segmenter interface {
	// Segment returns the sub-slices of samples classified as speech,
	// in order. An empty result means no speech was detected.
	Segment(samples []float32) ([][]float32, error)
}

// group collects runs of speech-flagged frames into segments. Runs
// separated by at most hangover silent frames are merged, which keeps
// short intra-word pauses inside one segment. Each returned segment is a
// sub-slice of samples.
func group(samples []float32, speech []bool, hangover int) [][]float32 {
	var segs [][]float32
	start := -1 // first frame of the current run, -1 when idle
	silent := 0

	flush := func(end int) {
		lo := start * frameSize
		hi := end * frameSize
		if hi > len(samples) {
			hi = len(samples)
		}
		segs = append(segs, samples[lo:hi])
		start = -1
	}

	for i, s := range speech {
		switch {
		case s && start < 0:
			start = i
			silent = 0
		case s:
			silent = 0
		case start >= 0:
			silent++
			if silent > hangover {
				flush(i - silent + 1)
			}
		}
	}
	if start >= 0 {
		flush(len(speech))
	}
	return segs
}

// rms computes the root mean square of a frame.
func rms(frame []float32) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, v := range frame {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(frame)))
}

// Energy is a threshold-based segmenter using per-frame RMS energy.
// It is less selective than the WebRTC detector but has no native
// dependency.
type Energy struct {
	// Threshold is the RMS level above which a frame counts as speech.
	// Zero means the default of 0.01 (about -40 dBFS).
	Threshold float64

	// Hangover is how many consecutive silent frames end a segment.
	// Zero means the default of 10 (300 ms).
	Hangover int
}

// Segment implements [Segmenter].
func (e Energy) Segment(samples []float32) ([][]float32, error) {
	threshold := e.Threshold
	if threshold == 0 {
		threshold = 0.01
	}
	hangover := e.Hangover
	if hangover == 0 {
		hangover = 10
	}

	n := len(samples) / frameSize
	speech := make([]bool, n)
	for i := 0; i < n; i++ {
		frame := samples[i*frameSize : (i+1)*frameSize]
		speech[i] = rms(frame) >= threshold
	}
	return group(samples, speech, hangover), nil
}
