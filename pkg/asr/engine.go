package asr

// DType identifies a tensor element type crossing the engine boundary.
type DType int

const (
	Float32 DType = iota
	Int32
	Int64
)

func (d DType) String() string {
	switch d {
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	default:
		return "unknown"
	}
}

// Tensor is a named-tensor value exchanged with the inference engine.
// Exactly one payload slice is populated, matching DType: Floats for
// Float32, Ints for Int32 and Int64.
type Tensor struct {
	Shape  []int64
	DType  DType
	Floats []float32
	Ints   []int64
}

// FloatTensor builds a float32 tensor.
func FloatTensor(shape []int64, data []float32) Tensor {
	return Tensor{Shape: shape, DType: Float32, Floats: data}
}

// Int32Tensor builds an int32 tensor. Values are carried as int64 and
// narrowed by the engine adapter.
func Int32Tensor(shape []int64, data []int64) Tensor {
	return Tensor{Shape: shape, DType: Int32, Ints: data}
}

// Int64Tensor builds an int64 tensor.
func Int64Tensor(shape []int64, data []int64) Tensor {
	return Tensor{Shape: shape, DType: Int64, Ints: data}
}

// Rank returns the number of tensor dimensions.
func (t Tensor) Rank() int { return len(t.Shape) }

// Elements returns the total element count implied by the shape.
func (t Tensor) Elements() int {
	n := 1
	for _, d := range t.Shape {
		n *= int(d)
	}
	return n
}

// Session is a loaded, ready-to-run model instance bound to one on-disk
// model file. Sessions are stateless views of the model bytes: two sessions
// for the same file are interchangeable. Implementations must be safe for
// concurrent Run calls.
type Session interface {
	// Run executes inference. Inputs are keyed by the engine's declared
	// input names; the result maps each requested output name to its
	// tensor.
	Run(inputs map[string]Tensor, outputNames []string) (map[string]Tensor, error)

	// OutputNames returns the model's declared output tensor names.
	OutputNames() []string

	// Close releases the session's resources. In-flight Run calls on
	// other goroutines must not be torn down; Close only drops this
	// handle's reference.
	Close() error
}

// SessionFactory constructs sessions from on-disk model files. The
// production implementation is pkg/asr/ort; tests use counting fakes.
type SessionFactory interface {
	NewSession(modelPath string) (Session, error)
}
