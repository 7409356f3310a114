package cpu

import (
	"fmt"
	"math"

	"github.com/ajroetker/go-highway/hwy/contrib/vec"

	"github.com/anchor-ml/anchor/internal/tensor"
)

// normEps guards against division by zero for degenerate inputs,
// matching the epsilon conventionally used for L2 normalization.
const normEps = 1e-12

// NormalizeDim rescales slices along dim of a 2D tensor to unit L2 norm.
// dim=0 normalizes every column, dim=1 every row.
func (cpu *CPUBackend) NormalizeDim(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("normalize: only 2D tensors supported, got %dD", len(shape)))
	}
	dim = normalizeDimIndex(dim, 2, "normalize")

	result := mustNewRaw(shape, x.DType(), cpu.device, "normalize")
	switch x.DType() {
	case tensor.Float32:
		normalize2D(result.AsFloat32(), x.AsFloat32(), shape, dim)
	case tensor.Float64:
		normalize2D(result.AsFloat64(), x.AsFloat64(), shape, dim)
	default:
		panic(fmt.Sprintf("normalize: unsupported dtype %s", x.DType()))
	}
	return result
}

func normalize2D[T float32 | float64](dst, src []T, shape tensor.Shape, dim int) {
	rows, cols := shape[0], shape[1]

	if dim == 1 {
		for r := 0; r < rows; r++ {
			row := src[r*cols : (r+1)*cols]
			n := T(math.Sqrt(float64(vec.BaseSquaredNorm(row))))
			if n < normEps {
				n = normEps
			}
			vec.BaseScaleTo(dst[r*cols:(r+1)*cols], 1/n, row)
		}
		return
	}

	// dim == 0: column slices are strided, accumulate norms per column.
	norms := make([]T, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := src[r*cols+c]
			norms[c] += v * v
		}
	}
	for c := range norms {
		n := T(math.Sqrt(float64(norms[c])))
		if n < normEps {
			n = normEps
		}
		norms[c] = 1 / n
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			dst[r*cols+c] = src[r*cols+c] * norms[c]
		}
	}
}
