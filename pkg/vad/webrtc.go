package vad

import (
	"fmt"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"
)

// WebRTC segments audio using the WebRTC voice activity detector.
//
// The detector classifies 30 ms frames of 16 kHz PCM16 audio. Aggressiveness
// runs from 0 (least filtering) to 3 (most); higher modes reject more
// borderline audio as non-speech.
//
// A WebRTC instance is not safe for concurrent use; the orchestrator calls
// Segment from one transcription at a time or creates one per call.
type WebRTC struct {
	vad      *webrtcvad.VAD
	mode     int
	hangover int
}

// WebRTCOption configures a WebRTC segmenter.
type WebRTCOption func(*WebRTC)

// WithMode sets the detector aggressiveness (0-3, default 2).
func WithMode(mode int) WebRTCOption {
	return func(w *WebRTC) {
		if mode >= 0 && mode <= 3 {
			w.mode = mode
		}
	}
}

// WithHangover sets how many consecutive silent frames end a segment
// (default 10, i.e. 300 ms).
func WithHangover(n int) WebRTCOption {
	return func(w *WebRTC) {
		if n > 0 {
			w.hangover = n
		}
	}
}

// NewWebRTC creates a WebRTC segmenter.
func NewWebRTC(opts ...WebRTCOption) (*WebRTC, error) {
	w := &WebRTC{mode: 2, hangover: 10}
	for _, opt := range opts {
		opt(w)
	}

	v, err := webrtcvad.New()
	if err != nil {
		return nil, fmt.Errorf("vad: create detector: %w", err)
	}
	if err := v.SetMode(w.mode); err != nil {
		return nil, fmt.Errorf("vad: set mode %d: %w", w.mode, err)
	}
	w.vad = v
	return w, nil
}

// Segment implements [Segmenter].
func (w *WebRTC) Segment(samples []float32) ([][]float32, error) {
	n := len(samples) / frameSize
	speech := make([]bool, n)
	buf := make([]byte, frameSize*2)

	for i := 0; i < n; i++ {
		frame := samples[i*frameSize : (i+1)*frameSize]
		frameToPCM16(frame, buf)
		active, err := w.vad.Process(SampleRate, buf)
		if err != nil {
			return nil, fmt.Errorf("vad: process frame %d: %w", i, err)
		}
		speech[i] = active
	}
	return group(samples, speech, w.hangover), nil
}

// frameToPCM16 converts normalized floats to little-endian PCM16 bytes.
func frameToPCM16(frame []float32, dst []byte) {
	for i, v := range frame {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		s := int16(v * 32767)
		dst[i*2] = byte(s)
		dst[i*2+1] = byte(s >> 8)
	}
}
