package cpu

import (
	"fmt"
	"math"

	"github.com/ajroetker/go-highway/hwy/contrib/vec"

	"github.com/anchor-ml/anchor/internal/tensor"
)

// Exp computes the element-wise exponential.
func (cpu *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.mapFloat(x, "exp", math.Exp)
}

// Log computes the element-wise natural logarithm.
// Panics on non-positive values.
func (cpu *CPUBackend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.mapFloat(x, "log", func(v float64) float64 {
		if v <= 0 {
			panic(fmt.Sprintf("log: non-positive value %f", v))
		}
		return math.Log(v)
	})
}

// Sqrt computes the element-wise square root.
func (cpu *CPUBackend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.mapFloat(x, "sqrt", math.Sqrt)
}

// Abs computes the element-wise absolute value.
func (cpu *CPUBackend) Abs(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.mapFloat(x, "abs", math.Abs)
}

// mapFloat applies f element-wise to a float tensor.
func (cpu *CPUBackend) mapFloat(x *tensor.RawTensor, name string, f func(float64) float64) *tensor.RawTensor {
	result := mustNewRaw(x.Shape(), x.DType(), cpu.device, name)
	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		for i, v := range src {
			dst[i] = float32(f(float64(v)))
		}
	case tensor.Float64:
		src, dst := x.AsFloat64(), result.AsFloat64()
		for i, v := range src {
			dst[i] = f(v)
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s (only float32/float64 supported)", name, x.DType()))
	}
	return result
}

// Softmax applies softmax along dim of a 2D tensor, with max-shifting for
// numerical stability.
func (cpu *CPUBackend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("softmax: only 2D tensors supported, got %dD", len(shape)))
	}
	if dim < 0 {
		dim += 2
	}
	if dim != 0 && dim != 1 {
		panic(fmt.Sprintf("softmax: invalid dim %d for 2D tensor", dim))
	}

	result := mustNewRaw(shape, x.DType(), cpu.device, "softmax")
	switch x.DType() {
	case tensor.Float32:
		softmax2D(result.AsFloat32(), x.AsFloat32(), shape, dim)
	case tensor.Float64:
		softmax2D(result.AsFloat64(), x.AsFloat64(), shape, dim)
	default:
		panic(fmt.Sprintf("softmax: unsupported dtype %s", x.DType()))
	}
	return result
}

func softmax2D[T float32 | float64](dst, src []T, shape tensor.Shape, dim int) {
	rows, cols := shape[0], shape[1]

	if dim == 1 {
		for r := 0; r < rows; r++ {
			row := src[r*cols : (r+1)*cols]
			out := dst[r*cols : (r+1)*cols]
			maxVal := vec.BaseMax(row)
			var sum T
			for i, v := range row {
				e := T(math.Exp(float64(v - maxVal)))
				out[i] = e
				sum += e
			}
			vec.BaseScaleTo(out, 1/sum, out)
		}
		return
	}

	// dim == 0: strided columns
	for c := 0; c < cols; c++ {
		maxVal := src[c]
		for r := 1; r < rows; r++ {
			if v := src[r*cols+c]; v > maxVal {
				maxVal = v
			}
		}
		var sum T
		for r := 0; r < rows; r++ {
			e := T(math.Exp(float64(src[r*cols+c] - maxVal)))
			dst[r*cols+c] = e
			sum += e
		}
		for r := 0; r < rows; r++ {
			dst[r*cols+c] /= sum
		}
	}
}
