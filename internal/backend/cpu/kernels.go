package cpu

import (
	"github.com/ajroetker/go-highway/hwy/contrib/vec"

	"github.com/anchor-ml/anchor/internal/tensor"
)

// SIMD kernels for the element-wise float paths, scalar fallbacks for
// the integer and broadcast paths.

var addKernel = binaryKernel{
	inplaceF32: vec.BaseAdd[float32],
	inplaceF64: vec.BaseAdd[float64],
	vecF32:     vec.BaseAddTo[float32],
	vecF64:     vec.BaseAddTo[float64],
	scalarF32:  func(a, b float32) float32 { return a + b },
	scalarF64:  func(a, b float64) float64 { return a + b },
	scalarI32:  func(a, b int32) int32 { return a + b },
	scalarI64:  func(a, b int64) int64 { return a + b },
}

var subKernel = binaryKernel{
	inplaceF32: vec.BaseSub[float32],
	inplaceF64: vec.BaseSub[float64],
	vecF32:     vec.BaseSubTo[float32],
	vecF64:     vec.BaseSubTo[float64],
	scalarF32:  func(a, b float32) float32 { return a - b },
	scalarF64:  func(a, b float64) float64 { return a - b },
	scalarI32:  func(a, b int32) int32 { return a - b },
	scalarI64:  func(a, b int64) int64 { return a - b },
}

var mulKernel = binaryKernel{
	inplaceF32: vec.BaseMul[float32],
	inplaceF64: vec.BaseMul[float64],
	vecF32:     vec.BaseMulTo[float32],
	vecF64:     vec.BaseMulTo[float64],
	scalarF32:  func(a, b float32) float32 { return a * b },
	scalarF64:  func(a, b float64) float64 { return a * b },
	scalarI32:  func(a, b int32) int32 { return a * b },
	scalarI64:  func(a, b int64) int64 { return a * b },
}

var divKernel = binaryKernel{
	inplaceF32: vec.BaseDiv[float32],
	inplaceF64: vec.BaseDiv[float64],
	vecF32:     vec.BaseDivTo[float32],
	vecF64:     vec.BaseDivTo[float64],
	scalarF32:  func(a, b float32) float32 { return a / b },
	scalarF64:  func(a, b float64) float64 { return a / b },
	scalarI32:  func(a, b int32) int32 { return a / b },
	scalarI64:  func(a, b int64) int64 { return a / b },
}

// mapPairs applies op element-wise: dst[i] = op(a[i], b[i]).
func mapPairs[T tensor.DType](dst, a, b []T, op func(T, T) T) {
	for i := range dst {
		dst[i] = op(a[i], b[i])
	}
}

// broadcastBinary applies op with NumPy broadcasting. Dimensions of size 1
// get stride 0 so the same element repeats along the broadcast axis.
func broadcastBinary[T tensor.DType](dst, a, b []T, aShape, bShape, outShape tensor.Shape, op func(T, T) T) {
	outStrides := outShape.ComputeStrides()
	aStrides := broadcastStrides(aShape, outShape)
	bStrides := broadcastStrides(bShape, outShape)

	n := outShape.NumElements()
	for i := 0; i < n; i++ {
		dst[i] = op(a[flatIndex(i, outStrides, aStrides)], b[flatIndex(i, outStrides, bStrides)])
	}
}

// broadcastStrides computes source strides for broadcasting inShape to
// outShape: padded and size-1 dimensions get stride 0.
func broadcastStrides(inShape, outShape tensor.Shape) []int {
	outDim := len(outShape)
	strides := make([]int, outDim)
	offset := outDim - len(inShape)
	origStrides := inShape.ComputeStrides()

	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		switch {
		case inIdx < 0:
			strides[i] = 0
		case inShape[inIdx] == 1:
			strides[i] = 0
		default:
			strides[i] = origStrides[inIdx]
		}
	}
	return strides
}

// flatIndex converts an output flat index to a source flat index using the
// broadcast-adjusted strides.
func flatIndex(outIdx int, outStrides, inStrides []int) int {
	idx := 0
	for i := range outStrides {
		coord := outIdx / outStrides[i]
		outIdx %= outStrides[i]
		idx += coord * inStrides[i]
	}
	return idx
}
