package asr

import (
	"fmt"

	"github.com/tmm22/VoiceInk-sub003/pkg/ctc"
	"github.com/tmm22/VoiceInk-sub003/pkg/tokenizer"
)

// FastConformer is the NVIDIA FastConformer-CTC family.
//
// Inputs: "audio_signal" [1, D, T] float32 (features transposed to
// channel-major) and "length" [1] int64. Output: log-probabilities
// [1, T', V] decoded greedily with the tokenizer's blank id.
type FastConformer struct{}

func (FastConformer) Name() string { return "fastconformer" }

func (FastConformer) ModelFile(dir string) (string, error) {
	return firstModelFile(dir)
}

func (FastConformer) Stacking() (int, int) { return 0, 0 }

func (FastConformer) PrepareInputs(features [][]float32) (map[string]Tensor, error) {
	frames, dim, err := featureDims(features)
	if err != nil {
		return nil, err
	}

	// Transpose [T][D] to channel-major [D*T].
	data := make([]float32, dim*frames)
	for t, row := range features {
		for d, v := range row {
			data[d*frames+t] = v
		}
	}

	return map[string]Tensor{
		"audio_signal": FloatTensor([]int64{1, int64(dim), int64(frames)}, data),
		"length":       Int64Tensor([]int64{1}, []int64{int64(frames)}),
	}, nil
}

func (FastConformer) Decode(outputs map[string]Tensor, tok *tokenizer.Tokenizer) (string, error) {
	out, err := logitsOutput(outputs, "logprobs", "logits")
	if err != nil {
		return "", err
	}
	if out.Rank() != 3 || out.DType != Float32 {
		return "", fmt.Errorf("unexpected output: rank %d dtype %s", out.Rank(), out.DType)
	}

	frames := int(out.Shape[1])
	vocab := int(out.Shape[2])
	ids := ctc.Decode(out.Floats, frames, vocab, tok.BlankID(), tok.StartID(), tok.EndID())

	return tok.Render(ids, tokenizer.RenderOptions{WordBoundary: "▁"}), nil
}

var _ Family = FastConformer{}
