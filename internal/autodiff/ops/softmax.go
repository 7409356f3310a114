package ops

import "github.com/anchor-ml/anchor/internal/tensor"

// SoftmaxOp: output = softmax(input, dim).
//
// With s = softmax(x) and g the output gradient:
//
//	grad_x = s * (g - sum(g * s, dim))
type SoftmaxOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
	dim    int
}

// NewSoftmaxOp creates a SoftmaxOp. dim must already be normalized.
func NewSoftmaxOp(input, output *tensor.RawTensor, dim int) *SoftmaxOp {
	return &SoftmaxOp{inputs: []*tensor.RawTensor{input}, output: output, dim: dim}
}

func (op *SoftmaxOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	s := op.output
	gs := backend.Mul(outputGrad, s)
	dot := backend.SumDim(gs, op.dim, true)
	grad := backend.Mul(s, backend.Sub(outputGrad, dot))
	return []*tensor.RawTensor{grad}
}

func (op *SoftmaxOp) Inputs() []*tensor.RawTensor { return op.inputs }
func (op *SoftmaxOp) Output() *tensor.RawTensor   { return op.output }
