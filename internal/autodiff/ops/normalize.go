package ops

import "github.com/anchor-ml/anchor/internal/tensor"

// NormalizeOp: output = input rescaled to unit L2 norm along dim.
//
// With v a slice along dim, n = ‖v‖ and v̂ = v/n the forward output, the
// gradient of v̂ with respect to v projects out the radial component:
//
//	grad_v = (g - (g·v̂)·v̂) / n
type NormalizeOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
	dim    int
}

// NewNormalizeOp creates a NormalizeOp. dim must already be normalized.
func NewNormalizeOp(input, output *tensor.RawTensor, dim int) *NormalizeOp {
	return &NormalizeOp{inputs: []*tensor.RawTensor{input}, output: output, dim: dim}
}

func (op *NormalizeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	input, unit := op.inputs[0], op.output

	norm := backend.Sqrt(backend.SumDim(backend.Mul(input, input), op.dim, true))
	dot := backend.SumDim(backend.Mul(outputGrad, unit), op.dim, true)

	tangent := backend.Sub(outputGrad, backend.Mul(dot, unit))
	return []*tensor.RawTensor{backend.Div(tangent, norm)}
}

func (op *NormalizeOp) Inputs() []*tensor.RawTensor { return op.inputs }
func (op *NormalizeOp) Output() *tensor.RawTensor   { return op.output }
