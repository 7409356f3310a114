package cpu

import (
	"fmt"

	"github.com/ajroetker/go-highway/hwy/contrib/vec"

	"github.com/anchor-ml/anchor/internal/tensor"
)

// MulScalar multiplies every element by scalar.
// The scalar's dynamic type must match the tensor's dtype.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	result := mustNewRaw(x.Shape(), x.DType(), cpu.device, "mulScalar")
	switch x.DType() {
	case tensor.Float32:
		vec.BaseScaleTo(result.AsFloat32(), toScalar[float32](scalar, "mulScalar"), x.AsFloat32())
	case tensor.Float64:
		vec.BaseScaleTo(result.AsFloat64(), toScalar[float64](scalar, "mulScalar"), x.AsFloat64())
	case tensor.Int32:
		mapScalar(result.AsInt32(), x.AsInt32(), toScalar[int32](scalar, "mulScalar"), func(v, s int32) int32 { return v * s })
	case tensor.Int64:
		mapScalar(result.AsInt64(), x.AsInt64(), toScalar[int64](scalar, "mulScalar"), func(v, s int64) int64 { return v * s })
	}
	return result
}

// AddScalar adds scalar to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	result := mustNewRaw(x.Shape(), x.DType(), cpu.device, "addScalar")
	switch x.DType() {
	case tensor.Float32:
		mapScalar(result.AsFloat32(), x.AsFloat32(), toScalar[float32](scalar, "addScalar"), func(v, s float32) float32 { return v + s })
	case tensor.Float64:
		mapScalar(result.AsFloat64(), x.AsFloat64(), toScalar[float64](scalar, "addScalar"), func(v, s float64) float64 { return v + s })
	case tensor.Int32:
		mapScalar(result.AsInt32(), x.AsInt32(), toScalar[int32](scalar, "addScalar"), func(v, s int32) int32 { return v + s })
	case tensor.Int64:
		mapScalar(result.AsInt64(), x.AsInt64(), toScalar[int64](scalar, "addScalar"), func(v, s int64) int64 { return v + s })
	}
	return result
}

// SubScalar subtracts scalar from every element.
func (cpu *CPUBackend) SubScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	result := mustNewRaw(x.Shape(), x.DType(), cpu.device, "subScalar")
	switch x.DType() {
	case tensor.Float32:
		mapScalar(result.AsFloat32(), x.AsFloat32(), toScalar[float32](scalar, "subScalar"), func(v, s float32) float32 { return v - s })
	case tensor.Float64:
		mapScalar(result.AsFloat64(), x.AsFloat64(), toScalar[float64](scalar, "subScalar"), func(v, s float64) float64 { return v - s })
	case tensor.Int32:
		mapScalar(result.AsInt32(), x.AsInt32(), toScalar[int32](scalar, "subScalar"), func(v, s int32) int32 { return v - s })
	case tensor.Int64:
		mapScalar(result.AsInt64(), x.AsInt64(), toScalar[int64](scalar, "subScalar"), func(v, s int64) int64 { return v - s })
	}
	return result
}

// DivScalar divides every element by scalar.
// Float dtypes multiply by the reciprocal so the SIMD scale kernel applies.
func (cpu *CPUBackend) DivScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	switch x.DType() {
	case tensor.Float32:
		return cpu.MulScalar(x, 1/toScalar[float32](scalar, "divScalar"))
	case tensor.Float64:
		return cpu.MulScalar(x, 1/toScalar[float64](scalar, "divScalar"))
	}

	result := mustNewRaw(x.Shape(), x.DType(), cpu.device, "divScalar")
	switch x.DType() {
	case tensor.Int32:
		mapScalar(result.AsInt32(), x.AsInt32(), toScalar[int32](scalar, "divScalar"), func(v, s int32) int32 { return v / s })
	case tensor.Int64:
		mapScalar(result.AsInt64(), x.AsInt64(), toScalar[int64](scalar, "divScalar"), func(v, s int64) int64 { return v / s })
	}
	return result
}

func toScalar[T tensor.DType](scalar any, op string) T {
	v, ok := scalar.(T)
	if !ok {
		panic(fmt.Sprintf("%s: scalar type %T does not match tensor dtype", op, scalar))
	}
	return v
}

func mapScalar[T tensor.DType](dst, src []T, s T, op func(T, T) T) {
	for i := range dst {
		dst[i] = op(src[i], s)
	}
}
