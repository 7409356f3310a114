package cpu

import (
	"fmt"

	"github.com/ajroetker/go-highway/hwy/contrib/vec"

	"github.com/anchor-ml/anchor/internal/tensor"
)

// Sum reduces all elements to a single-element tensor of shape [1].
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := mustNewRaw(tensor.Shape{1}, x.DType(), cpu.device, "sum")
	switch x.DType() {
	case tensor.Float32:
		result.AsFloat32()[0] = vec.BaseSum(x.AsFloat32())
	case tensor.Float64:
		result.AsFloat64()[0] = vec.BaseSum(x.AsFloat64())
	case tensor.Int32:
		result.AsInt32()[0] = sumSlice(x.AsInt32())
	case tensor.Int64:
		result.AsInt64()[0] = sumSlice(x.AsInt64())
	}
	return result
}

// Mean reduces all elements to their mean, shape [1]. Float dtypes only.
func (cpu *CPUBackend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	n := x.NumElements()
	result := mustNewRaw(tensor.Shape{1}, x.DType(), cpu.device, "mean")
	switch x.DType() {
	case tensor.Float32:
		result.AsFloat32()[0] = vec.BaseSum(x.AsFloat32()) / float32(n)
	case tensor.Float64:
		result.AsFloat64()[0] = vec.BaseSum(x.AsFloat64()) / float64(n)
	default:
		panic(fmt.Sprintf("mean: unsupported dtype %s (only float32/float64 supported)", x.DType()))
	}
	return result
}

// SumDim sums along dim. Negative dims index from the end. With keepDim the
// reduced dimension stays as size 1, otherwise it is removed.
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	dim = normalizeDimIndex(dim, len(shape), "sumdim")

	result := mustNewRaw(reducedShape(shape, dim, keepDim), x.DType(), cpu.device, "sumdim")
	switch x.DType() {
	case tensor.Float32:
		sumAlongDim(x.AsFloat32(), result.AsFloat32(), shape, dim)
	case tensor.Float64:
		sumAlongDim(x.AsFloat64(), result.AsFloat64(), shape, dim)
	case tensor.Int32:
		sumAlongDim(x.AsInt32(), result.AsInt32(), shape, dim)
	case tensor.Int64:
		sumAlongDim(x.AsInt64(), result.AsInt64(), shape, dim)
	}
	return result
}

// MeanDim averages along dim. Float dtypes only.
func (cpu *CPUBackend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	dim = normalizeDimIndex(dim, len(shape), "meandim")
	n := shape[dim]

	summed := cpu.SumDim(x, dim, keepDim)
	switch x.DType() {
	case tensor.Float32:
		return cpu.MulScalar(summed, 1/float32(n))
	case tensor.Float64:
		return cpu.MulScalar(summed, 1/float64(n))
	default:
		panic(fmt.Sprintf("meandim: unsupported dtype %s (only float32/float64 supported)", x.DType()))
	}
}

// Argmax returns int32 indices of the maximum along dim of a 2D tensor.
// Ties break toward the lower index.
func (cpu *CPUBackend) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("argmax: only 2D tensors supported, got %dD", len(shape)))
	}
	dim = normalizeDimIndex(dim, 2, "argmax")

	result := mustNewRaw(reducedShape(shape, dim, false), tensor.Int32, cpu.device, "argmax")
	switch x.DType() {
	case tensor.Float32:
		argmax2D(x.AsFloat32(), result.AsInt32(), shape, dim)
	case tensor.Float64:
		argmax2D(x.AsFloat64(), result.AsInt32(), shape, dim)
	default:
		panic(fmt.Sprintf("argmax: unsupported dtype %s", x.DType()))
	}
	return result
}

func normalizeDimIndex(dim, ndim int, op string) int {
	if dim < 0 {
		dim += ndim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("%s: dimension out of range for %dD tensor", op, ndim))
	}
	return dim
}

func reducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	if keepDim {
		out := shape.Clone()
		out[dim] = 1
		return out
	}
	out := make(tensor.Shape, 0, len(shape)-1)
	for i, d := range shape {
		if i != dim {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		out = tensor.Shape{1}
	}
	return out
}

func sumSlice[T tensor.DType](s []T) T {
	var sum T
	for _, v := range s {
		sum += v
	}
	return sum
}

// sumAlongDim accumulates src into dst with the reduced dimension collapsed.
// Iterates src once; outer × inner indexing avoids per-element coordinate
// decomposition.
func sumAlongDim[T tensor.DType](src, dst []T, shape tensor.Shape, dim int) {
	outer, inner := 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	n := shape[dim]

	for i := range dst {
		dst[i] = 0
	}
	for o := 0; o < outer; o++ {
		for d := 0; d < n; d++ {
			base := (o*n + d) * inner
			dstBase := o * inner
			for in := 0; in < inner; in++ {
				dst[dstBase+in] += src[base+in]
			}
		}
	}
}

func argmax2D[T float32 | float64](src []T, dst []int32, shape tensor.Shape, dim int) {
	rows, cols := shape[0], shape[1]
	if dim == 1 {
		for r := 0; r < rows; r++ {
			best, bestIdx := src[r*cols], 0
			for c := 1; c < cols; c++ {
				if src[r*cols+c] > best {
					best, bestIdx = src[r*cols+c], c
				}
			}
			dst[r] = int32(bestIdx)
		}
		return
	}
	for c := 0; c < cols; c++ {
		best, bestIdx := src[c], 0
		for r := 1; r < rows; r++ {
			if src[r*cols+c] > best {
				best, bestIdx = src[r*cols+c], r
			}
		}
		dst[c] = int32(bestIdx)
	}
}
