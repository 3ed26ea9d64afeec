// Package onnx provides Go bindings for the ONNX Runtime C API.
//
// ONNX Runtime is a cross-platform inference engine for ONNX models.
// This package wraps the C API, providing Go-native types for
// Environment, Session, and Tensor.
//
// # Architecture
//
// The package exposes three core types:
//
//   - [Env] — global environment (one per process)
//   - [Session] — loads and holds a model (.onnx file)
//   - [Tensor] — N-dimensional tensor for input/output data
//
// Usage flow:
//
//	env, _ := onnx.NewEnv("myapp")
//	defer env.Close()
//
//	session, _ := env.NewSessionFromFile("model.onnx")
//	defer session.Close()
//
//	input, _ := onnx.NewTensor([]int64{1, 80, 98}, data)
//	defer input.Close()
//
//	outputs, _ := session.Run([]string{"in0"}, []*onnx.Tensor{input}, []string{"out0"})
//	result, _ := outputs[0].FloatData()
//
// Sessions report their declared input and output tensor names
// ([Session.InputNames], [Session.OutputNames]) so callers can bind
// tensors without hard-coding graph metadata.
//
// # Dynamic Linking
//
// ONNX Runtime is dynamically linked (.dylib/.so) via CGo.
//
// # Thread Safety
//
// Env is safe for concurrent use. Session.Run is thread-safe
// (ONNX Runtime uses internal locking).
package onnx

/*
#include <onnxruntime_c_api.h>
#include <stdlib.h>
#include <string.h>

// Helper: get the ORT API pointer.
static const OrtApi* ort_api() {
    return OrtGetApiBase()->GetApi(ORT_API_VERSION);
}

// Helper: create environment.
static OrtStatus* ort_create_env(const OrtApi* api, const char* name, OrtEnv** out) {
    return api->CreateEnv(ORT_LOGGING_LEVEL_WARNING, name, out);
}

// Helper: create session options.
static OrtStatus* ort_create_session_options(const OrtApi* api, OrtSessionOptions** out) {
    return api->CreateSessionOptions(out);
}

// Helper: create session from a model file on disk.
static OrtStatus* ort_create_session_from_file(const OrtApi* api, OrtEnv* env,
    const char* model_path, OrtSessionOptions* opts, OrtSession** out) {
    return api->CreateSession(env, model_path, opts, out);
}

// Helper: create session from memory.
static OrtStatus* ort_create_session_from_memory(const OrtApi* api, OrtEnv* env,
    const void* model_data, size_t model_data_len, OrtSessionOptions* opts, OrtSession** out) {
    return api->CreateSessionFromArray(env, model_data, model_data_len, opts, out);
}

// Helper: input/output counts.
static OrtStatus* ort_session_input_count(const OrtApi* api, OrtSession* s, size_t* out) {
    return api->SessionGetInputCount(s, out);
}
static OrtStatus* ort_session_output_count(const OrtApi* api, OrtSession* s, size_t* out) {
    return api->SessionGetOutputCount(s, out);
}

// Helper: input/output names. The returned string is owned by the
// allocator and must be freed with ort_allocator_free.
static OrtStatus* ort_session_input_name(const OrtApi* api, OrtSession* s,
    size_t i, OrtAllocator* alloc, char** out) {
    return api->SessionGetInputName(s, i, alloc, out);
}
static OrtStatus* ort_session_output_name(const OrtApi* api, OrtSession* s,
    size_t i, OrtAllocator* alloc, char** out) {
    return api->SessionGetOutputName(s, i, alloc, out);
}
static OrtStatus* ort_default_allocator(const OrtApi* api, OrtAllocator** out) {
    return api->GetAllocatorWithDefaultOptions(out);
}
static void ort_allocator_free(OrtAllocator* alloc, void* p) {
    alloc->Free(alloc, p);
}

// Helper: create a tensor over caller-owned data of a given element type.
static OrtStatus* ort_create_tensor(const OrtApi* api, OrtMemoryInfo* info,
    void* data, size_t data_bytes, int64_t* shape, size_t shape_len,
    ONNXTensorElementDataType dtype, OrtValue** out) {
    return api->CreateTensorWithDataAsOrtValue(info, data, data_bytes,
        shape, shape_len, dtype, out);
}

// Helper: create CPU memory info.
static OrtStatus* ort_create_cpu_memory_info(const OrtApi* api, OrtMemoryInfo** out) {
    return api->CreateCpuMemoryInfo(OrtArenaAllocator, OrtMemTypeDefault, out);
}

// Helper: run session.
static OrtStatus* ort_run(const OrtApi* api, OrtSession* session,
    const char** input_names, const OrtValue* const* inputs, size_t num_inputs,
    const char** output_names, size_t num_outputs, OrtValue** outputs) {
    return api->Run(session, NULL, input_names, inputs, num_inputs,
        output_names, num_outputs, outputs);
}

// Helper: get raw tensor data pointer.
static OrtStatus* ort_get_tensor_data(const OrtApi* api, OrtValue* value, void** out) {
    return api->GetTensorMutableData(value, out);
}

// Helper: get tensor element type.
static OrtStatus* ort_get_tensor_dtype(const OrtApi* api, OrtValue* value,
    ONNXTensorElementDataType* out) {
    OrtTensorTypeAndShapeInfo* info;
    OrtStatus* status = api->GetTensorTypeAndShape(value, &info);
    if (status) return status;
    status = api->GetTensorElementType(info, out);
    api->ReleaseTensorTypeAndShapeInfo(info);
    return status;
}

// Helper: get tensor shape info.
static OrtStatus* ort_get_tensor_shape(const OrtApi* api, OrtValue* value,
    int64_t* shape, size_t shape_len) {
    OrtTensorTypeAndShapeInfo* info;
    OrtStatus* status = api->GetTensorTypeAndShape(value, &info);
    if (status) return status;
    status = api->GetDimensions(info, shape, shape_len);
    api->ReleaseTensorTypeAndShapeInfo(info);
    return status;
}

// Helper: get tensor shape dimension count.
static OrtStatus* ort_get_tensor_ndim(const OrtApi* api, OrtValue* value, size_t* ndim) {
    OrtTensorTypeAndShapeInfo* info;
    OrtStatus* status = api->GetTensorTypeAndShape(value, &info);
    if (status) return status;
    status = api->GetDimensionsCount(info, ndim);
    api->ReleaseTensorTypeAndShapeInfo(info);
    return status;
}

// Helper: get error message.
static const char* ort_error_message(const OrtApi* api, OrtStatus* status) {
    return api->GetErrorMessage(status);
}

// Helper: release status.
static void ort_release_status(const OrtApi* api, OrtStatus* status) {
    api->ReleaseStatus(status);
}

// Release helpers.
static void ort_release_env(const OrtApi* api, OrtEnv* env) { api->ReleaseEnv(env); }
static void ort_release_session(const OrtApi* api, OrtSession* s) { api->ReleaseSession(s); }
static void ort_release_session_options(const OrtApi* api, OrtSessionOptions* o) { api->ReleaseSessionOptions(o); }
static void ort_release_memory_info(const OrtApi* api, OrtMemoryInfo* i) { api->ReleaseMemoryInfo(i); }
static void ort_release_value(const OrtApi* api, OrtValue* v) { api->ReleaseValue(v); }
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"
)

// ElementType identifies a tensor element type.
type ElementType int

const (
	ElementFloat32 ElementType = ElementType(C.ONNX_TENSOR_ELEMENT_DATA_TYPE_FLOAT)
	ElementInt32   ElementType = ElementType(C.ONNX_TENSOR_ELEMENT_DATA_TYPE_INT32)
	ElementInt64   ElementType = ElementType(C.ONNX_TENSOR_ELEMENT_DATA_TYPE_INT64)
)

// api returns the global ORT API pointer.
func api() *C.OrtApi {
	return C.ort_api()
}

// checkStatus converts an OrtStatus to a Go error.
func checkStatus(status *C.OrtStatus) error {
	if status == nil {
		return nil
	}
	msg := C.GoString(C.ort_error_message(api(), status))
	C.ort_release_status(api(), status)
	return fmt.Errorf("onnx: %s", msg)
}

// --------------------------------------------------------------------------
// Env
// --------------------------------------------------------------------------

// Env is the ONNX Runtime environment. Create one per process.
type Env struct {
	env *C.OrtEnv
}

// NewEnv creates a new ONNX Runtime environment.
func NewEnv(name string) (*Env, error) {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	var env *C.OrtEnv
	if err := checkStatus(C.ort_create_env(api(), cName, &env)); err != nil {
		return nil, err
	}

	e := &Env{env: env}
	runtime.SetFinalizer(e, (*Env).Close)
	return e, nil
}

// NewSessionFromFile creates a session from an .onnx model file on disk.
// The runtime memory-maps the file, so large models do not need to pass
// through a Go byte slice.
func (e *Env) NewSessionFromFile(path string) (*Session, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	var opts *C.OrtSessionOptions
	if err := checkStatus(C.ort_create_session_options(api(), &opts)); err != nil {
		return nil, err
	}
	defer C.ort_release_session_options(api(), opts)

	var session *C.OrtSession
	if err := checkStatus(C.ort_create_session_from_file(
		api(), e.env, cPath, opts, &session,
	)); err != nil {
		return nil, err
	}

	s := &Session{session: session}
	runtime.SetFinalizer(s, (*Session).Close)
	return s, nil
}

// NewSession creates a session from in-memory ONNX model data.
func (e *Env) NewSession(modelData []byte) (*Session, error) {
	if len(modelData) == 0 {
		return nil, fmt.Errorf("onnx: empty model data")
	}

	var opts *C.OrtSessionOptions
	if err := checkStatus(C.ort_create_session_options(api(), &opts)); err != nil {
		return nil, err
	}
	defer C.ort_release_session_options(api(), opts)

	var session *C.OrtSession
	if err := checkStatus(C.ort_create_session_from_memory(
		api(), e.env,
		unsafe.Pointer(&modelData[0]), C.size_t(len(modelData)),
		opts, &session,
	)); err != nil {
		return nil, err
	}

	s := &Session{session: session, pinned: modelData}
	runtime.SetFinalizer(s, (*Session).Close)
	return s, nil
}

// Close releases the environment.
func (e *Env) Close() error {
	if e.env != nil {
		C.ort_release_env(api(), e.env)
		e.env = nil
		runtime.SetFinalizer(e, nil)
	}
	return nil
}

// --------------------------------------------------------------------------
// Session
// --------------------------------------------------------------------------

// Session holds a loaded ONNX model.
type Session struct {
	session *C.OrtSession
	pinned  any // prevents GC of model data
}

// InputNames returns the model's declared input tensor names, in graph order.
func (s *Session) InputNames() ([]string, error) {
	return s.ioNames(true)
}

// OutputNames returns the model's declared output tensor names, in graph order.
func (s *Session) OutputNames() ([]string, error) {
	return s.ioNames(false)
}

func (s *Session) ioNames(input bool) ([]string, error) {
	var alloc *C.OrtAllocator
	if err := checkStatus(C.ort_default_allocator(api(), &alloc)); err != nil {
		return nil, err
	}

	var count C.size_t
	var status *C.OrtStatus
	if input {
		status = C.ort_session_input_count(api(), s.session, &count)
	} else {
		status = C.ort_session_output_count(api(), s.session, &count)
	}
	if err := checkStatus(status); err != nil {
		return nil, err
	}

	names := make([]string, 0, int(count))
	for i := C.size_t(0); i < count; i++ {
		var cName *C.char
		if input {
			status = C.ort_session_input_name(api(), s.session, i, alloc, &cName)
		} else {
			status = C.ort_session_output_name(api(), s.session, i, alloc, &cName)
		}
		if err := checkStatus(status); err != nil {
			return nil, err
		}
		names = append(names, C.GoString(cName))
		C.ort_allocator_free(alloc, unsafe.Pointer(cName))
	}
	return names, nil
}

// Run executes inference with the given inputs and output names.
// Returns output tensors. The caller must close each output tensor.
func (s *Session) Run(inputNames []string, inputs []*Tensor, outputNames []string) ([]*Tensor, error) {
	if len(inputNames) != len(inputs) {
		return nil, fmt.Errorf("onnx: input names/tensors length mismatch: %d vs %d", len(inputNames), len(inputs))
	}

	// Prepare C input names
	cInputNames := make([]*C.char, len(inputNames))
	for i, name := range inputNames {
		cInputNames[i] = C.CString(name)
		defer C.free(unsafe.Pointer(cInputNames[i]))
	}

	// Prepare C input values
	cInputs := make([]*C.OrtValue, len(inputs))
	for i, t := range inputs {
		cInputs[i] = t.value
	}

	// Prepare C output names
	cOutputNames := make([]*C.char, len(outputNames))
	for i, name := range outputNames {
		cOutputNames[i] = C.CString(name)
		defer C.free(unsafe.Pointer(cOutputNames[i]))
	}

	// Allocate output values
	cOutputs := make([]*C.OrtValue, len(outputNames))

	status := C.ort_run(api(), s.session,
		&cInputNames[0], &cInputs[0], C.size_t(len(inputs)),
		&cOutputNames[0], C.size_t(len(outputNames)), &cOutputs[0],
	)
	if err := checkStatus(status); err != nil {
		return nil, err
	}

	// Wrap outputs
	outputs := make([]*Tensor, len(outputNames))
	for i, val := range cOutputs {
		outputs[i] = &Tensor{value: val, owned: true}
		runtime.SetFinalizer(outputs[i], (*Tensor).Close)
	}
	return outputs, nil
}

// Close releases the session.
func (s *Session) Close() error {
	if s.session != nil {
		C.ort_release_session(api(), s.session)
		s.session = nil
		runtime.SetFinalizer(s, nil)
	}
	return nil
}

// --------------------------------------------------------------------------
// Tensor
// --------------------------------------------------------------------------

// Tensor is an N-dimensional tensor (OrtValue).
type Tensor struct {
	value  *C.OrtValue
	pinned any  // prevents GC of external data
	owned  bool // if true, Close releases the OrtValue
}

// NewTensor creates a float32 tensor with the given shape and data.
// The data slice must remain valid for the lifetime of the Tensor.
func NewTensor(shape []int64, data []float32) (*Tensor, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("onnx: empty tensor data")
	}
	if err := validateShape(shape, len(data)); err != nil {
		return nil, err
	}
	return newTensor(shape, unsafe.Pointer(&data[0]), len(data)*4,
		C.ONNX_TENSOR_ELEMENT_DATA_TYPE_FLOAT, data)
}

// NewInt32Tensor creates an int32 tensor with the given shape and data.
func NewInt32Tensor(shape []int64, data []int32) (*Tensor, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("onnx: empty tensor data")
	}
	if err := validateShape(shape, len(data)); err != nil {
		return nil, err
	}
	return newTensor(shape, unsafe.Pointer(&data[0]), len(data)*4,
		C.ONNX_TENSOR_ELEMENT_DATA_TYPE_INT32, data)
}

// NewInt64Tensor creates an int64 tensor with the given shape and data.
func NewInt64Tensor(shape []int64, data []int64) (*Tensor, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("onnx: empty tensor data")
	}
	if err := validateShape(shape, len(data)); err != nil {
		return nil, err
	}
	return newTensor(shape, unsafe.Pointer(&data[0]), len(data)*8,
		C.ONNX_TENSOR_ELEMENT_DATA_TYPE_INT64, data)
}

func validateShape(shape []int64, dataLen int) error {
	total := int64(1)
	for _, d := range shape {
		total *= d
	}
	if int64(dataLen) < total {
		return fmt.Errorf("onnx: tensor data too short: got %d, need %d", dataLen, total)
	}
	return nil
}

func newTensor(shape []int64, data unsafe.Pointer, dataBytes int,
	dtype C.ONNXTensorElementDataType, pinned any) (*Tensor, error) {

	var memInfo *C.OrtMemoryInfo
	if err := checkStatus(C.ort_create_cpu_memory_info(api(), &memInfo)); err != nil {
		return nil, err
	}
	defer C.ort_release_memory_info(api(), memInfo)

	var value *C.OrtValue
	if err := checkStatus(C.ort_create_tensor(
		api(), memInfo,
		data, C.size_t(dataBytes),
		(*C.int64_t)(unsafe.Pointer(&shape[0])),
		C.size_t(len(shape)),
		dtype,
		&value,
	)); err != nil {
		return nil, err
	}

	t := &Tensor{value: value, pinned: pinned, owned: true}
	runtime.SetFinalizer(t, (*Tensor).Close)
	return t, nil
}

// ElementType returns the tensor's element type.
func (t *Tensor) ElementType() (ElementType, error) {
	var dtype C.ONNXTensorElementDataType
	if err := checkStatus(C.ort_get_tensor_dtype(api(), t.value, &dtype)); err != nil {
		return 0, err
	}
	return ElementType(dtype), nil
}

// FloatData copies the tensor data into a new float32 slice.
func (t *Tensor) FloatData() ([]float32, error) {
	ptr, total, err := t.rawData()
	if err != nil || total == 0 {
		return nil, err
	}
	out := make([]float32, total)
	C.memcpy(unsafe.Pointer(&out[0]), ptr, C.size_t(total*4))
	return out, nil
}

// Int32Data copies the tensor data into a new int32 slice.
func (t *Tensor) Int32Data() ([]int32, error) {
	ptr, total, err := t.rawData()
	if err != nil || total == 0 {
		return nil, err
	}
	out := make([]int32, total)
	C.memcpy(unsafe.Pointer(&out[0]), ptr, C.size_t(total*4))
	return out, nil
}

// Int64Data copies the tensor data into a new int64 slice.
func (t *Tensor) Int64Data() ([]int64, error) {
	ptr, total, err := t.rawData()
	if err != nil || total == 0 {
		return nil, err
	}
	out := make([]int64, total)
	C.memcpy(unsafe.Pointer(&out[0]), ptr, C.size_t(total*8))
	return out, nil
}

func (t *Tensor) rawData() (unsafe.Pointer, int, error) {
	var ptr unsafe.Pointer
	if err := checkStatus(C.ort_get_tensor_data(api(), t.value, &ptr)); err != nil {
		return nil, 0, err
	}
	shape, err := t.Shape()
	if err != nil {
		return nil, 0, err
	}
	total := 1
	for _, d := range shape {
		total *= int(d)
	}
	if total <= 0 {
		return nil, 0, nil
	}
	return ptr, total, nil
}

// Shape returns the tensor dimensions.
func (t *Tensor) Shape() ([]int64, error) {
	var ndim C.size_t
	if err := checkStatus(C.ort_get_tensor_ndim(api(), t.value, &ndim)); err != nil {
		return nil, err
	}

	if ndim == 0 {
		return nil, nil
	}

	shape := make([]int64, int(ndim))
	if err := checkStatus(C.ort_get_tensor_shape(api(), t.value, (*C.int64_t)(unsafe.Pointer(&shape[0])), ndim)); err != nil {
		return nil, err
	}
	return shape, nil
}

// Close releases the tensor.
func (t *Tensor) Close() error {
	if t.value != nil && t.owned {
		C.ort_release_value(api(), t.value)
		t.value = nil
		runtime.SetFinalizer(t, nil)
	}
	return nil
}
