package ops

import (
	"fmt"

	"github.com/anchor-ml/anchor/internal/tensor"
)

// reduceBroadcast shrinks a gradient back to the shape of an input that was
// broadcast during the forward pass: broadcast axes are summed out.
//
// Example:
//
//	forward:  a[3,1] * b[3,4] -> c[3,4]   (a broadcast along dim 1)
//	backward: grad_c[3,4] -> grad_a[3,1]  (sum along dim 1)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	gradShape := grad.Shape()

	// Clone when shapes already match so later inplace kernels cannot
	// corrupt a gradient shared between operations.
	if gradShape.Equal(targetShape) {
		return grad.Clone()
	}

	// Sum out leading dimensions the target never had.
	result := grad
	for len(result.Shape()) > len(targetShape) {
		result = backend.SumDim(result, 0, false)
	}

	// Sum dimensions where the target is 1.
	resShape := result.Shape()
	for i := 0; i < len(targetShape); i++ {
		if targetShape[i] == 1 && resShape[i] > 1 {
			result = backend.SumDim(result, i, true)
			resShape = result.Shape()
		}
	}

	if !result.Shape().Equal(targetShape) {
		result = backend.Reshape(result, targetShape)
	}
	return result
}

// onesLike returns a tensor of ones with the same shape/dtype as t.
func onesLike(t *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(t.Shape(), t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("onesLike: %v", err))
	}
	fillFloat(result, 1)
	return result
}

// fillFloat sets every element of a float tensor to v.
func fillFloat(t *tensor.RawTensor, v float64) {
	switch t.DType() {
	case tensor.Float32:
		data := t.AsFloat32()
		for i := range data {
			data[i] = float32(v)
		}
	case tensor.Float64:
		data := t.AsFloat64()
		for i := range data {
			data[i] = v
		}
	default:
		panic(fmt.Sprintf("fillFloat: unsupported dtype %s", t.DType()))
	}
}

// negate returns -t without going through the tape.
func negate(t *tensor.RawTensor, backend tensor.Backend) *tensor.RawTensor {
	switch t.DType() {
	case tensor.Float32:
		return backend.MulScalar(t, float32(-1))
	case tensor.Float64:
		return backend.MulScalar(t, float64(-1))
	default:
		panic(fmt.Sprintf("negate: unsupported dtype %s", t.DType()))
	}
}

// scalarOfDType converts v to the scalar type matching dtype, for feeding
// backend scalar ops.
func scalarOfDType(v float64, dtype tensor.DataType) any {
	switch dtype {
	case tensor.Float32:
		return float32(v)
	case tensor.Float64:
		return v
	default:
		panic(fmt.Sprintf("scalarOfDType: unsupported dtype %s", dtype))
	}
}
