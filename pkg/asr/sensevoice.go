package asr

import (
	"fmt"

	"github.com/tmm22/VoiceInk-sub003/pkg/audio/fbank"
	"github.com/tmm22/VoiceInk-sub003/pkg/ctc"
	"github.com/tmm22/VoiceInk-sub003/pkg/tokenizer"
)

// SenseVoice language selector values understood by the model's language
// scalar input.
const (
	senseVoiceLangAuto = 0
	senseVoiceLangZH   = 3
	senseVoiceLangEN   = 4
	senseVoiceLangYue  = 7
	senseVoiceLangJA   = 11
	senseVoiceLangKO   = 12
)

// SenseVoice text normalization selector values.
const (
	senseVoiceWithTextNorm    = 14
	senseVoiceWithoutTextNorm = 15
)

// SenseVoice is the FunASR SenseVoice-small family.
//
// The model consumes low-frame-rate stacked features ([1, T', D×7]) plus
// int32 scalars for the frame count, language and text normalization mode.
// Its vocabulary is heavy with bracketed meta-tokens (<|zh|>, <|HAPPY|>,
// event markers), which are suppressed during rendering.
//
// The export ships under a fixed name, so discovery uses the exact file
// rather than the first-match convention.
type SenseVoice struct {
	// Language is the ISO hint ("zh", "en", "yue", "ja", "ko") or empty
	// for automatic detection.
	Language string

	// SkipTextNorm disables inverse text normalization in the model.
	SkipTextNorm bool
}

func (SenseVoice) Name() string { return "sensevoice" }

func (SenseVoice) ModelFile(dir string) (string, error) {
	return exactModelFile(dir, "model.int8.onnx")
}

func (SenseVoice) Stacking() (int, int) {
	return fbank.DefaultStackSize, fbank.DefaultStackStride
}

func (s SenseVoice) PrepareInputs(features [][]float32) (map[string]Tensor, error) {
	frames, dim, err := featureDims(features)
	if err != nil {
		return nil, err
	}

	textNorm := int64(senseVoiceWithTextNorm)
	if s.SkipTextNorm {
		textNorm = senseVoiceWithoutTextNorm
	}

	return map[string]Tensor{
		"speech":         FloatTensor([]int64{1, int64(frames), int64(dim)}, fbank.Flatten(features)),
		"speech_lengths": Int32Tensor([]int64{1}, []int64{int64(frames)}),
		"language":       Int32Tensor([]int64{1}, []int64{s.languageID()}),
		"textnorm":       Int32Tensor([]int64{1}, []int64{textNorm}),
	}, nil
}

func (s SenseVoice) languageID() int64 {
	switch s.Language {
	case "zh":
		return senseVoiceLangZH
	case "en":
		return senseVoiceLangEN
	case "yue":
		return senseVoiceLangYue
	case "ja":
		return senseVoiceLangJA
	case "ko":
		return senseVoiceLangKO
	default:
		return senseVoiceLangAuto
	}
}

func (SenseVoice) Decode(outputs map[string]Tensor, tok *tokenizer.Tokenizer) (string, error) {
	out, err := logitsOutput(outputs, "ctc_logits", "logits")
	if err != nil {
		return "", err
	}
	if out.Rank() != 3 || out.DType != Float32 {
		return "", fmt.Errorf("unexpected output: rank %d dtype %s", out.Rank(), out.DType)
	}

	frames := int(out.Shape[1])
	vocab := int(out.Shape[2])
	ids := ctc.Decode(out.Floats, frames, vocab, tok.BlankID(), tok.StartID(), tok.EndID())

	return tok.Render(ids, tokenizer.RenderOptions{
		WordBoundary: "▁",
		SkipMeta:     true,
	}), nil
}

var _ Family = SenseVoice{}
