package asr

import (
	"fmt"

	"github.com/tmm22/VoiceInk-sub003/pkg/ctc"
	"github.com/tmm22/VoiceInk-sub003/pkg/tokenizer"
)

// Parakeet is the NVIDIA Parakeet CTC family.
//
// Inputs: "audio_signal" [1, T, D] float32 (time-major, unlike
// [FastConformer]) and "length" [1] int64. Exports of this family differ in
// what they emit: some produce raw log-probabilities [1, T', V], others bake
// the argmax into the graph and emit per-frame ids [1, T'] directly. Decode
// dispatches on the output's rank and dtype rather than on export metadata,
// which the files do not carry reliably.
type Parakeet struct {
	// Continuation overrides the piece-joining convention. Empty means the
	// sentencepiece "▁" word-boundary convention; "@@" selects BPE-style
	// continuation markers.
	Continuation string
}

func (Parakeet) Name() string { return "parakeet" }

func (Parakeet) ModelFile(dir string) (string, error) {
	return firstModelFile(dir)
}

func (Parakeet) Stacking() (int, int) { return 0, 0 }

func (Parakeet) PrepareInputs(features [][]float32) (map[string]Tensor, error) {
	frames, dim, err := featureDims(features)
	if err != nil {
		return nil, err
	}

	data := make([]float32, 0, frames*dim)
	for _, row := range features {
		data = append(data, row...)
	}

	return map[string]Tensor{
		"audio_signal": FloatTensor([]int64{1, int64(frames), int64(dim)}, data),
		"length":       Int64Tensor([]int64{1}, []int64{int64(frames)}),
	}, nil
}

func (p Parakeet) Decode(outputs map[string]Tensor, tok *tokenizer.Tokenizer) (string, error) {
	out, err := logitsOutput(outputs, "logprobs", "logits", "tokens")
	if err != nil {
		return "", err
	}

	var ids []int
	switch {
	case out.DType == Float32 && out.Rank() == 3:
		frames := int(out.Shape[1])
		vocab := int(out.Shape[2])
		ids = ctc.Decode(out.Floats, frames, vocab, tok.BlankID(), tok.StartID(), tok.EndID())
	case out.DType != Float32 && out.Rank() == 2:
		// Pre-decoded per-frame ids; only the collapse remains.
		frame := make([]int, len(out.Ints))
		for i, v := range out.Ints {
			frame[i] = int(v)
		}
		ids = ctc.Collapse(frame, tok.BlankID(), tok.StartID(), tok.EndID())
	default:
		return "", fmt.Errorf("unexpected output: rank %d dtype %s", out.Rank(), out.DType)
	}

	opts := tokenizer.RenderOptions{WordBoundary: "▁"}
	if p.Continuation != "" {
		opts = tokenizer.RenderOptions{Continuation: p.Continuation}
	}
	return tok.Render(ids, opts), nil
}

var _ Family = Parakeet{}
