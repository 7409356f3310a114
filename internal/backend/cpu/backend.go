// Package cpu implements the CPU compute backend.
//
// Float kernels are built on the go-highway SIMD slice primitives
// (hwy/contrib/vec); integer dtypes fall back to plain loops.
package cpu

import (
	"fmt"

	"github.com/anchor-ml/anchor/internal/tensor"
)

// CPUBackend implements tensor.Backend on the host CPU.
type CPUBackend struct {
	device tensor.Device
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{device: tensor.CPU}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string { return "CPU" }

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device { return cpu.device }

// Add performs element-wise addition with broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b, addKernel)
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b, subKernel)
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b, mulKernel)
}

// Div performs element-wise division with broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("div", a, b, divKernel)
}

// binaryKernel bundles the dtype-specific implementations of one
// element-wise operation.
type binaryKernel struct {
	inplaceF32 func(a, b []float32)
	inplaceF64 func(a, b []float64)
	vecF32     func(dst, a, b []float32)
	vecF64     func(dst, a, b []float64)
	scalarF32  func(a, b float32) float32
	scalarF64  func(a, b float64) float64
	scalarI32  func(a, b int32) int32
	scalarI64  func(a, b int64) int64
}

// binary runs one element-wise op: inplace fast path when the left operand
// uniquely owns its buffer, vectorized path for equal shapes, strided slow
// path when broadcasting.
func (cpu *CPUBackend) binary(name string, a, b *tensor.RawTensor, k binaryKernel) *tensor.RawTensor {
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", name, a.DType(), b.DType()))
	}

	if !needsBroadcast && a.Shape().Equal(b.Shape()) {
		if a.IsUnique() {
			switch a.DType() {
			case tensor.Float32:
				k.inplaceF32(a.AsFloat32(), b.AsFloat32())
				return a
			case tensor.Float64:
				k.inplaceF64(a.AsFloat64(), b.AsFloat64())
				return a
			}
			// Integer dtypes take the out-of-place path below.
		}
		result := mustNewRaw(outShape, a.DType(), cpu.device, name)
		switch a.DType() {
		case tensor.Float32:
			k.vecF32(result.AsFloat32(), a.AsFloat32(), b.AsFloat32())
		case tensor.Float64:
			k.vecF64(result.AsFloat64(), a.AsFloat64(), b.AsFloat64())
		case tensor.Int32:
			mapPairs(result.AsInt32(), a.AsInt32(), b.AsInt32(), k.scalarI32)
		case tensor.Int64:
			mapPairs(result.AsInt64(), a.AsInt64(), b.AsInt64(), k.scalarI64)
		}
		return result
	}

	result := mustNewRaw(outShape, a.DType(), cpu.device, name)
	switch a.DType() {
	case tensor.Float32:
		broadcastBinary(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), a.Shape(), b.Shape(), outShape, k.scalarF32)
	case tensor.Float64:
		broadcastBinary(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), a.Shape(), b.Shape(), outShape, k.scalarF64)
	case tensor.Int32:
		broadcastBinary(result.AsInt32(), a.AsInt32(), b.AsInt32(), a.Shape(), b.Shape(), outShape, k.scalarI32)
	case tensor.Int64:
		broadcastBinary(result.AsInt64(), a.AsInt64(), b.AsInt64(), a.Shape(), b.Shape(), outShape, k.scalarI64)
	}
	return result
}

func mustNewRaw(shape tensor.Shape, dtype tensor.DataType, device tensor.Device, op string) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return result
}
