package asr

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/tmm22/VoiceInk-sub003/pkg/audio/fbank"
	"github.com/tmm22/VoiceInk-sub003/pkg/audio/wav"
	"github.com/tmm22/VoiceInk-sub003/pkg/vad"
)

// DefaultSegmentThreshold is the audio duration above which the recognizer
// segments the buffer with voice activity detection before transcribing.
// Shorter clips go through the model whole; segmentation overhead only pays
// off on long recordings.
const DefaultSegmentThreshold = 20 * time.Second

// Recognizer runs the full transcription pipeline for any registered model
// family. It is safe for concurrent use; concurrent calls for the same model
// share one cached session.
type Recognizer struct {
	cache     *SessionCache
	extractor *fbank.Extractor
	segmenter vad.Segmenter
	threshold time.Duration
	logger    *slog.Logger
}

// Option configures a [Recognizer].
type Option func(*Recognizer)

// WithSegmenter enables voice-activity segmentation of long recordings.
// Segmentation is best effort: if the segmenter fails the recognizer logs a
// warning and transcribes the full buffer instead.
func WithSegmenter(s vad.Segmenter) Option {
	return func(r *Recognizer) { r.segmenter = s }
}

// WithSegmentThreshold sets the minimum audio duration before the segmenter
// is consulted. Zero restores [DefaultSegmentThreshold].
func WithSegmentThreshold(d time.Duration) Option {
	return func(r *Recognizer) { r.threshold = d }
}

// WithLogger sets the logger. The default is [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(r *Recognizer) { r.logger = l }
}

// NewRecognizer creates a recognizer backed by the given session factory.
func NewRecognizer(factory SessionFactory, opts ...Option) *Recognizer {
	r := &Recognizer{
		cache:     NewSessionCache(factory),
		extractor: fbank.New(fbank.DefaultConfig()),
		threshold: DefaultSegmentThreshold,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	if r.threshold == 0 {
		r.threshold = DefaultSegmentThreshold
	}
	return r
}

// Transcribe reads a complete WAV stream (PCM16 mono 16 kHz) from r and
// returns its transcription. Audio with no recognizable speech yields an
// empty string and no error; failures surface as one of the package's
// sentinel errors.
func (r *Recognizer) Transcribe(ctx context.Context, src io.Reader, m Model) (string, error) {
	samples, err := wav.ReadPCM16(src, 0)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAudioData, err)
	}
	return r.TranscribeSamples(ctx, samples, m)
}

// TranscribeFile transcribes a WAV file from disk.
func (r *Recognizer) TranscribeFile(ctx context.Context, path string, m Model) (string, error) {
	samples, err := wav.DecodeFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAudioData, err)
	}
	return r.TranscribeSamples(ctx, samples, m)
}

// TranscribeSamples transcribes normalized float32 samples at 16 kHz.
func (r *Recognizer) TranscribeSamples(ctx context.Context, samples []float32, m Model) (string, error) {
	if len(samples) == 0 {
		return "", fmt.Errorf("%w: no samples", ErrInvalidAudioData)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	cached, err := r.cache.Get(m)
	if err != nil {
		return "", err
	}

	return r.transcribe(r.speech(samples), m, cached)
}

// speech strips non-speech audio from long buffers by concatenating the
// segments the configured segmenter detects. Any failure or an empty result
// falls back to the whole buffer, so segmentation can only shrink the audio,
// never lose speech. The trimmed buffer then goes through feature extraction
// and inference as a single utterance.
func (r *Recognizer) speech(samples []float32) []float32 {
	if r.segmenter == nil {
		return samples
	}
	dur := time.Duration(len(samples)) * time.Second / wav.SampleRate
	if dur < r.threshold {
		return samples
	}

	segs, err := r.segmenter.Segment(samples)
	if err != nil {
		r.logger.Warn("vad segmentation failed, transcribing unsegmented",
			"error", err, "duration", dur)
		return samples
	}
	if len(segs) == 0 {
		return samples
	}
	if len(segs) == 1 && len(segs[0]) == len(samples) {
		return samples
	}

	total := 0
	for _, seg := range segs {
		total += len(seg)
	}
	speech := make([]float32, 0, total)
	for _, seg := range segs {
		speech = append(speech, seg...)
	}
	r.logger.Debug("vad trimmed audio",
		"segments", len(segs), "kept", total, "samples", len(samples))
	return speech
}

func (r *Recognizer) transcribe(samples []float32, m Model, cached *CachedModel) (string, error) {
	features := r.extractor.Extract(samples)
	if len(features) == 0 {
		return "", fmt.Errorf("%w: audio shorter than one feature window", ErrTranscriptionFailed)
	}
	fbank.MeanNormalize(features)

	if size, stride := m.Family.Stacking(); size > 0 {
		features = fbank.Stack(features, size, stride)
	}

	inputs, err := m.Family.PrepareInputs(features)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}

	outputs, err := cached.Session.Run(inputs, cached.OutputNames)
	if err != nil {
		return "", fmt.Errorf("%w: inference: %v", ErrTranscriptionFailed, err)
	}

	text, err := m.Family.Decode(outputs, cached.Tokenizer)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}
	return text, nil
}

// Invalidate drops the cached session for a model key. The next request for
// that key reloads the model from disk. Call after replacing or deleting
// model files.
func (r *Recognizer) Invalidate(key string) {
	r.cache.Invalidate(key)
}

// Cleanup drops every cached session, releasing the memory held by loaded
// models.
func (r *Recognizer) Cleanup() {
	r.cache.InvalidateAll()
}

// CachedModels returns the number of models currently cached.
func (r *Recognizer) CachedModels() int {
	return r.cache.Len()
}
