package regularizers

import "github.com/anchor-ml/anchor/internal/tensor"

// ZeroMean penalizes rows whose components do not sum to zero, pushing each
// vector's mean toward the origin.
type ZeroMean[B tensor.Backend] struct{}

// NewZeroMean creates a ZeroMean regularizer.
func NewZeroMean[B tensor.Backend]() *ZeroMean[B] {
	return &ZeroMean[B]{}
}

// Loss returns mean over rows of |Σ_j row_j|.
func (r *ZeroMean[B]) Loss(m *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return m.SumDim(1, false).Abs().Mean()
}
