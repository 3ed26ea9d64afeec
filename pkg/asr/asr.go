// Package asr implements the on-device speech recognition pipeline: audio
// samples in, transcribed text out.
//
// # Architecture
//
// A transcription call flows strictly left to right:
//
//	samples → (optional VAD segmentation) → fbank features →
//	cached inference session → greedy CTC decode → text
//
// The pipeline pieces live in their own packages (pkg/audio/wav,
// pkg/audio/fbank, pkg/ctc, pkg/tokenizer, pkg/vad); this package owns the
// [Recognizer] orchestrator, the [SessionCache], and the per-family input
// preparation and output decoding strategies ([FastConformer], [SenseVoice],
// [Parakeet]).
//
// The inference engine itself is opaque: it is reached only through the
// named-tensor [Session] contract, with pkg/asr/ort providing the ONNX
// Runtime implementation and tests substituting in-memory fakes.
//
// # Concurrency
//
// Each transcription call is a synchronous, potentially long-running
// operation; run it off any latency-sensitive goroutine. The only shared
// mutable state is the session/tokenizer cache, guarded by a single lock
// scoped to map access. Calls are not individually cancellable — cancel at
// a higher level by abandoning the caller.
package asr

import "errors"

// Error taxonomy. Lower-level failures (tensor shape mismatches,
// engine-internal errors) are wrapped into one of these three kinds at the
// orchestrator boundary; callers never see engine-specific error types.
var (
	// ErrInvalidAudioData indicates malformed input audio (short header,
	// unreadable samples).
	ErrInvalidAudioData = errors.New("asr: invalid audio data")

	// ErrModelLoadFailed indicates a missing model file or a failed
	// session or tokenizer construction.
	ErrModelLoadFailed = errors.New("asr: model load failed")

	// ErrTranscriptionFailed indicates the pipeline produced nothing
	// usable: empty features, failed inference, or an undecodable output.
	ErrTranscriptionFailed = errors.New("asr: transcription failed")
)

// Model describes one model variant to transcribe with.
type Model struct {
	// Key identifies the variant in the session cache. Requests with the
	// same key share one session; different keys get independent ones.
	Key string

	// Dir is the on-disk model directory, holding the model file and a
	// tokens.txt vocabulary.
	Dir string

	// Family selects the input/output conventions of the model.
	Family Family
}
