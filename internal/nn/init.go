package nn

import (
	"math"
	"math/rand"

	"github.com/anchor-ml/anchor/internal/tensor"
)

// Xavier returns a tensor initialized with Glorot uniform values:
// U(-b, b) with b = sqrt(6 / (fanIn + fanOut)). Keeps activation variance
// stable across layers.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	t := tensor.Zeros[float32](shape, backend)
	data := t.Data()
	for i := range data {
		//nolint:gosec // G404: weight initialization, not security-critical
		data[i] = float32((rand.Float64()*2 - 1) * bound)
	}
	return t
}

// Zeros creates a zero-filled float32 tensor. Common for bias initialization.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}

// Ones creates a one-filled float32 tensor.
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Ones[float32](shape, backend)
}

// Randn creates a float32 tensor with samples from N(0, 1).
func Randn[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Randn[float32](shape, backend)
}
