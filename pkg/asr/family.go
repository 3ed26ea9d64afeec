package asr

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tmm22/VoiceInk-sub003/pkg/tokenizer"
)

// Family is the strategy for one model family. Families share the sample
// reader, feature extractor and cache infrastructure and differ only in
// tensor naming, frame stacking and token conventions.
type Family interface {
	// Name identifies the family (for logging and the CLI).
	Name() string

	// ModelFile locates the model file inside a model directory.
	ModelFile(dir string) (string, error)

	// Stacking returns the low-frame-rate stacking parameters, or (0, 0)
	// when the family consumes unstacked frames.
	Stacking() (size, stride int)

	// PrepareInputs builds the named input tensors for one utterance of
	// already-normalized (and, when applicable, stacked) features.
	PrepareInputs(features [][]float32) (map[string]Tensor, error)

	// Decode converts the engine outputs into text via the tokenizer.
	Decode(outputs map[string]Tensor, tok *tokenizer.Tokenizer) (string, error)
}

// firstModelFile returns the lexically first *.onnx file in dir. Model
// directories are re-downloadable and their exact file names vary by
// export, so discovery is by convention rather than fixed name.
func firstModelFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read model dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".onnx") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no model file in %s", dir)
	}
	sort.Strings(names)
	return filepath.Join(dir, names[0]), nil
}

// exactModelFile requires a specific file name inside dir.
func exactModelFile(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("model file %s: %w", name, err)
	}
	return path, nil
}

// logitsOutput picks the output tensor to decode: the preferred names in
// order, then the single output if there is exactly one.
func logitsOutput(outputs map[string]Tensor, preferred ...string) (Tensor, error) {
	for _, name := range preferred {
		if t, ok := outputs[name]; ok {
			return t, nil
		}
	}
	if len(outputs) == 1 {
		for _, t := range outputs {
			return t, nil
		}
	}
	return Tensor{}, fmt.Errorf("no decodable output among %d outputs", len(outputs))
}

// featureDims validates a feature matrix and returns (frames, dim).
func featureDims(features [][]float32) (int, int, error) {
	if len(features) == 0 {
		return 0, 0, fmt.Errorf("empty feature matrix")
	}
	return len(features), len(features[0]), nil
}
