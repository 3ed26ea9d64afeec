// Package ort adapts the ONNX Runtime bindings in pkg/onnx to the engine
// contract of pkg/asr. It is the only package that touches CGo on the
// transcription path; everything above it moves plain Go slices.
package ort

import (
	"fmt"
	"sync"

	"github.com/tmm22/VoiceInk-sub003/pkg/asr"
	"github.com/tmm22/VoiceInk-sub003/pkg/onnx"
)

var (
	envOnce sync.Once
	env     *onnx.Env
	envErr  error
)

// sharedEnv returns the process-wide ONNX Runtime environment, created on
// first use.
func sharedEnv() (*onnx.Env, error) {
	envOnce.Do(func() {
		env, envErr = onnx.NewEnv("voiceink")
	})
	return env, envErr
}

// Factory creates ONNX Runtime sessions from model files.
type Factory struct{}

// NewSession implements [asr.SessionFactory].
func (Factory) NewSession(modelPath string) (asr.Session, error) {
	e, err := sharedEnv()
	if err != nil {
		return nil, fmt.Errorf("ort: environment: %w", err)
	}
	raw, err := e.NewSessionFromFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("ort: load %s: %w", modelPath, err)
	}
	outputs, err := raw.OutputNames()
	if err != nil {
		raw.Close()
		return nil, fmt.Errorf("ort: output names: %w", err)
	}
	return &session{raw: raw, outputs: outputs}, nil
}

type session struct {
	raw     *onnx.Session
	outputs []string
}

func (s *session) OutputNames() []string {
	return s.outputs
}

func (s *session) Run(inputs map[string]asr.Tensor, outputNames []string) (map[string]asr.Tensor, error) {
	names := make([]string, 0, len(inputs))
	tensors := make([]*onnx.Tensor, 0, len(inputs))
	defer func() {
		for _, t := range tensors {
			t.Close()
		}
	}()

	for name, in := range inputs {
		t, err := toEngine(in)
		if err != nil {
			return nil, fmt.Errorf("ort: input %s: %w", name, err)
		}
		names = append(names, name)
		tensors = append(tensors, t)
	}

	raw, err := s.raw.Run(names, tensors, outputNames)
	if err != nil {
		return nil, fmt.Errorf("ort: run: %w", err)
	}

	out := make(map[string]asr.Tensor, len(raw))
	for i, t := range raw {
		converted, err := fromEngine(t)
		t.Close()
		if err != nil {
			return nil, fmt.Errorf("ort: output %s: %w", outputNames[i], err)
		}
		out[outputNames[i]] = converted
	}
	return out, nil
}

func (s *session) Close() error {
	return s.raw.Close()
}

// toEngine converts a value tensor into an engine tensor, narrowing int32
// payloads from their int64 carrier.
func toEngine(t asr.Tensor) (*onnx.Tensor, error) {
	switch t.DType {
	case asr.Float32:
		return onnx.NewTensor(t.Shape, t.Floats)
	case asr.Int32:
		narrowed := make([]int32, len(t.Ints))
		for i, v := range t.Ints {
			narrowed[i] = int32(v)
		}
		return onnx.NewInt32Tensor(t.Shape, narrowed)
	case asr.Int64:
		return onnx.NewInt64Tensor(t.Shape, t.Ints)
	default:
		return nil, fmt.Errorf("unsupported dtype %s", t.DType)
	}
}

// fromEngine copies an engine output into a value tensor, widening int32
// payloads into the int64 carrier.
func fromEngine(t *onnx.Tensor) (asr.Tensor, error) {
	shape, err := t.Shape()
	if err != nil {
		return asr.Tensor{}, err
	}
	dtype, err := t.ElementType()
	if err != nil {
		return asr.Tensor{}, err
	}

	switch dtype {
	case onnx.ElementFloat32:
		data, err := t.FloatData()
		if err != nil {
			return asr.Tensor{}, err
		}
		return asr.FloatTensor(shape, data), nil
	case onnx.ElementInt32:
		data, err := t.Int32Data()
		if err != nil {
			return asr.Tensor{}, err
		}
		widened := make([]int64, len(data))
		for i, v := range data {
			widened[i] = int64(v)
		}
		return asr.Int32Tensor(shape, widened), nil
	case onnx.ElementInt64:
		data, err := t.Int64Data()
		if err != nil {
			return asr.Tensor{}, err
		}
		return asr.Int64Tensor(shape, data), nil
	default:
		return asr.Tensor{}, fmt.Errorf("unsupported element type %d", dtype)
	}
}

var _ asr.SessionFactory = Factory{}
