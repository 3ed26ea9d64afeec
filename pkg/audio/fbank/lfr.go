package fbank

// Stack combines size consecutive frames into one super-frame, advancing by
// stride frames per output (low-frame-rate stacking). When a stack window
// runs past the end of the input, the final frame is repeated to fill it.
//
// Some model families (SenseVoice) expect D×size inputs at a reduced frame
// rate; this trades temporal resolution for the feature width the model was
// trained on. Stack only concatenates — any normalization must already have
// been applied to the input frames.
func Stack(features [][]float32, size, stride int) [][]float32 {
	if len(features) == 0 || size <= 0 || stride <= 0 {
		return nil
	}
	dim := len(features[0])
	numOut := (len(features) + stride - 1) / stride

	out := make([][]float32, numOut)
	for i := 0; i < numOut; i++ {
		super := make([]float32, 0, dim*size)
		for j := 0; j < size; j++ {
			idx := i*stride + j
			if idx >= len(features) {
				idx = len(features) - 1
			}
			super = append(super, features[idx]...)
		}
		out[i] = super
	}
	return out
}

// Default low-frame-rate stacking parameters.
const (
	DefaultStackSize   = 7
	DefaultStackStride = 6
)
