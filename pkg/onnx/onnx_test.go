package onnx

import (
	"testing"
)

func TestNewEnv(t *testing.T) {
	env, err := NewEnv("test")
	if err != nil {
		t.Fatal(err)
	}
	defer env.Close()
	t.Log("created ONNX Runtime environment")
}

func TestNewTensor(t *testing.T) {
	data := []float32{1, 2, 3, 4, 5, 6}
	tensor, err := NewTensor([]int64{2, 3}, data)
	if err != nil {
		t.Fatal(err)
	}
	defer tensor.Close()

	shape, err := tensor.Shape()
	if err != nil {
		t.Fatal(err)
	}
	if len(shape) != 2 || shape[0] != 2 || shape[1] != 3 {
		t.Errorf("shape = %v, want [2,3]", shape)
	}

	dtype, err := tensor.ElementType()
	if err != nil {
		t.Fatal(err)
	}
	if dtype != ElementFloat32 {
		t.Errorf("dtype = %v, want float32", dtype)
	}

	out, err := tensor.FloatData()
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 6 {
		t.Fatalf("len = %d, want 6", len(out))
	}
	for i, v := range out {
		if v != data[i] {
			t.Errorf("[%d] = %f, want %f", i, v, data[i])
		}
	}
}

func TestNewInt32Tensor(t *testing.T) {
	tensor, err := NewInt32Tensor([]int64{1}, []int32{4})
	if err != nil {
		t.Fatal(err)
	}
	defer tensor.Close()

	dtype, err := tensor.ElementType()
	if err != nil {
		t.Fatal(err)
	}
	if dtype != ElementInt32 {
		t.Errorf("dtype = %v, want int32", dtype)
	}

	out, err := tensor.Int32Data()
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0] != 4 {
		t.Errorf("data = %v, want [4]", out)
	}
}

func TestNewInt64Tensor(t *testing.T) {
	data := []int64{98}
	tensor, err := NewInt64Tensor([]int64{1}, data)
	if err != nil {
		t.Fatal(err)
	}
	defer tensor.Close()

	dtype, err := tensor.ElementType()
	if err != nil {
		t.Fatal(err)
	}
	if dtype != ElementInt64 {
		t.Errorf("dtype = %v, want int64", dtype)
	}

	out, err := tensor.Int64Data()
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0] != 98 {
		t.Errorf("data = %v, want [98]", out)
	}
}

func TestTensorEmptyData(t *testing.T) {
	_, err := NewTensor([]int64{0}, nil)
	if err == nil {
		t.Error("expected error for empty data")
	}
}

func TestTensorShortData(t *testing.T) {
	_, err := NewTensor([]int64{2, 3}, []float32{1, 2, 3})
	if err == nil {
		t.Error("expected error for short data")
	}
}

func TestSessionFromMissingFile(t *testing.T) {
	env, err := NewEnv("test")
	if err != nil {
		t.Fatal(err)
	}
	defer env.Close()

	if _, err := env.NewSessionFromFile("/nonexistent/model.onnx"); err == nil {
		t.Error("expected error for a missing model file")
	}
}

func TestEnvDoubleClose(t *testing.T) {
	env, err := NewEnv("test")
	if err != nil {
		t.Fatal(err)
	}
	env.Close()
	env.Close()
}
