package asr

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"log/slog"
	"testing"

	"github.com/tmm22/VoiceInk-sub003/pkg/audio/wav"
	"github.com/tmm22/VoiceInk-sub003/pkg/vad"
)

// pcm16WAV wraps int16 samples in the minimal header the decoder expects.
func pcm16WAV(samples []int16) []byte {
	var buf bytes.Buffer
	buf.Write(make([]byte, wav.HeaderSize))
	for _, s := range samples {
		binary.Write(&buf, binary.LittleEndian, s)
	}
	return buf.Bytes()
}

// blankOnlyOutputs is a canned model output whose argmax is the blank id on
// every frame, decoding to an empty transcription.
func blankOnlyOutputs(frames, vocab int) map[string]Tensor {
	data := make([]float32, frames*vocab)
	for t := 0; t < frames; t++ {
		data[t*vocab] = 10
	}
	return map[string]Tensor{
		"logprobs": FloatTensor([]int64{1, int64(frames), int64(vocab)}, data),
	}
}

// helloOutputs decodes to "hello world" against the writeModelDir vocab.
func helloOutputs() map[string]Tensor {
	data := make([]float32, 4*5)
	for t, id := range []int{3, 3, 0, 4} {
		data[t*5+id] = 10
	}
	return map[string]Tensor{
		"logprobs": FloatTensor([]int64{1, 4, 5}, data),
	}
}

func TestTranscribeSilenceReturnsEmpty(t *testing.T) {
	factory := &fakeFactory{outputs: blankOnlyOutputs(98, 5)}
	r := NewRecognizer(factory)
	m := Model{Key: "fc", Dir: writeModelDir(t, "model.onnx"), Family: FastConformer{}}

	// One second of digital silence.
	audio := pcm16WAV(make([]int16, wav.SampleRate))
	text, err := r.Transcribe(context.Background(), bytes.NewReader(audio), m)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "" {
		t.Errorf("text = %q, want empty for silence", text)
	}
}

func TestTranscribePipeline(t *testing.T) {
	factory := &fakeFactory{outputs: helloOutputs()}
	r := NewRecognizer(factory)
	m := Model{Key: "fc", Dir: writeModelDir(t, "model.onnx"), Family: FastConformer{}}

	audio := pcm16WAV(make([]int16, wav.SampleRate))
	text, err := r.Transcribe(context.Background(), bytes.NewReader(audio), m)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hello world" {
		t.Errorf("text = %q, want %q", text, "hello world")
	}

	// The model input must be the prepared feature tensors.
	session := factory.sessions[0]
	if _, ok := session.lastInput["audio_signal"]; !ok {
		t.Error("session did not receive the audio_signal tensor")
	}
	if got := session.lastInput["length"].Ints[0]; got != 98 {
		t.Errorf("length = %d, want 98 frames for one second", got)
	}
}

func TestTranscribeShortHeader(t *testing.T) {
	r := NewRecognizer(&fakeFactory{})
	m := Model{Key: "fc", Dir: writeModelDir(t, "model.onnx"), Family: FastConformer{}}

	_, err := r.Transcribe(context.Background(), bytes.NewReader([]byte{1, 2, 3}), m)
	if !errors.Is(err, ErrInvalidAudioData) {
		t.Errorf("err = %v, want ErrInvalidAudioData", err)
	}
}

func TestTranscribeTooShortForWindow(t *testing.T) {
	factory := &fakeFactory{outputs: blankOnlyOutputs(1, 5)}
	r := NewRecognizer(factory)
	m := Model{Key: "fc", Dir: writeModelDir(t, "model.onnx"), Family: FastConformer{}}

	// 100 samples is under the 400-sample feature window.
	audio := pcm16WAV(make([]int16, 100))
	_, err := r.Transcribe(context.Background(), bytes.NewReader(audio), m)
	if !errors.Is(err, ErrTranscriptionFailed) {
		t.Errorf("err = %v, want ErrTranscriptionFailed", err)
	}
}

func TestTranscribeInferenceFailure(t *testing.T) {
	factory := &fakeFactory{outputs: blankOnlyOutputs(98, 5)}
	r := NewRecognizer(factory)
	m := Model{Key: "fc", Dir: writeModelDir(t, "model.onnx"), Family: FastConformer{}}

	audio := pcm16WAV(make([]int16, wav.SampleRate))
	if _, err := r.Transcribe(context.Background(), bytes.NewReader(audio), m); err != nil {
		t.Fatal(err)
	}
	factory.sessions[0].runErr = errors.New("engine exploded")
	_, err := r.Transcribe(context.Background(), bytes.NewReader(audio), m)
	if !errors.Is(err, ErrTranscriptionFailed) {
		t.Errorf("err = %v, want ErrTranscriptionFailed", err)
	}
}

func TestTranscribeCancelledContext(t *testing.T) {
	factory := &fakeFactory{outputs: blankOnlyOutputs(98, 5)}
	r := NewRecognizer(factory)
	m := Model{Key: "fc", Dir: writeModelDir(t, "model.onnx"), Family: FastConformer{}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	audio := pcm16WAV(make([]int16, wav.SampleRate))
	_, err := r.Transcribe(ctx, bytes.NewReader(audio), m)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestInvalidateForcesReload(t *testing.T) {
	factory := &fakeFactory{outputs: blankOnlyOutputs(98, 5)}
	r := NewRecognizer(factory)
	m := Model{Key: "fc", Dir: writeModelDir(t, "model.onnx"), Family: FastConformer{}}

	audio := pcm16WAV(make([]int16, wav.SampleRate))
	for i := 0; i < 2; i++ {
		if _, err := r.Transcribe(context.Background(), bytes.NewReader(audio), m); err != nil {
			t.Fatal(err)
		}
	}
	if n := factory.loadCount(); n != 1 {
		t.Fatalf("loads = %d before invalidate, want 1", n)
	}

	r.Invalidate(m.Key)
	if _, err := r.Transcribe(context.Background(), bytes.NewReader(audio), m); err != nil {
		t.Fatal(err)
	}
	if n := factory.loadCount(); n != 2 {
		t.Errorf("loads = %d after invalidate, want 2", n)
	}
}

func TestCleanupDropsAllSessions(t *testing.T) {
	factory := &fakeFactory{outputs: blankOnlyOutputs(98, 5)}
	r := NewRecognizer(factory)
	dir := writeModelDir(t, "model.onnx")
	audio := pcm16WAV(make([]int16, wav.SampleRate))

	for _, key := range []string{"a", "b"} {
		m := Model{Key: key, Dir: dir, Family: FastConformer{}}
		if _, err := r.Transcribe(context.Background(), bytes.NewReader(audio), m); err != nil {
			t.Fatal(err)
		}
	}
	if r.CachedModels() != 2 {
		t.Fatalf("cached = %d, want 2", r.CachedModels())
	}
	r.Cleanup()
	if r.CachedModels() != 0 {
		t.Errorf("cached = %d after Cleanup, want 0", r.CachedModels())
	}
}

// failingSegmenter always errors, exercising the unsegmented fallback.
type failingSegmenter struct{}

func (failingSegmenter) Segment([]float32) ([][]float32, error) {
	return nil, errors.New("detector unavailable")
}

func TestSegmenterFailureFallsBack(t *testing.T) {
	factory := &fakeFactory{outputs: helloOutputs()}
	r := NewRecognizer(factory,
		WithSegmenter(failingSegmenter{}),
		WithSegmentThreshold(1), // always consult the segmenter
		WithLogger(slog.New(slog.DiscardHandler)),
	)
	m := Model{Key: "fc", Dir: writeModelDir(t, "model.onnx"), Family: FastConformer{}}

	audio := pcm16WAV(make([]int16, wav.SampleRate))
	text, err := r.Transcribe(context.Background(), bytes.NewReader(audio), m)
	if err != nil {
		t.Fatalf("Transcribe must not propagate segmenter errors: %v", err)
	}
	if text != "hello world" {
		t.Errorf("text = %q, want %q", text, "hello world")
	}
}

func TestSegmenterConcatenatesSpeech(t *testing.T) {
	factory := &fakeFactory{outputs: helloOutputs()}
	r := NewRecognizer(factory,
		WithSegmenter(vad.Energy{}),
		WithSegmentThreshold(1),
	)
	m := Model{Key: "fc", Dir: writeModelDir(t, "model.onnx"), Family: FastConformer{}}

	// Two loud bursts separated by silence. The detector keeps the bursts
	// (plus hangover) and drops the rest; the trimmed audio goes through
	// feature extraction and the model once, as a single buffer.
	samples := make([]int16, 3*wav.SampleRate)
	for i := 0; i < 8000; i++ {
		samples[i] = 16000
		samples[2*wav.SampleRate+i] = 16000
	}
	text, err := r.Transcribe(context.Background(), bytes.NewReader(pcm16WAV(samples)), m)
	if err != nil {
		t.Fatal(err)
	}
	if text != "hello world" {
		t.Errorf("text = %q, want %q", text, "hello world")
	}

	session := factory.sessions[0]
	if session.runs != 1 {
		t.Errorf("runs = %d, want a single inference over the concatenated speech", session.runs)
	}
	// The two kept segments total 16800 samples (8160 + 8640 with the
	// detector's 300 ms hangover), which is 103 feature frames. A length
	// of 298 would mean the silence was not trimmed.
	if got := session.lastInput["length"].Ints[0]; got != 103 {
		t.Errorf("length = %d frames, want 103 for the trimmed buffer", got)
	}
}
