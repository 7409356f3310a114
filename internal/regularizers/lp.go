package regularizers

import (
	"fmt"

	"github.com/anchor-ml/anchor/internal/tensor"
)

// Lp penalizes the mean Lp norm of the rows of a matrix. P=2 discourages
// large prototype vectors; P=1 additionally pushes entries toward zero.
type Lp[B tensor.Backend] struct {
	P int
}

// NewLp creates an Lp regularizer. Only p=1 and p=2 are supported.
func NewLp[B tensor.Backend](p int) (*Lp[B], error) {
	if p != 1 && p != 2 {
		return nil, fmt.Errorf("lp regularizer: p must be 1 or 2, got %d", p)
	}
	return &Lp[B]{P: p}, nil
}

// Loss returns mean over rows of ‖row‖_p.
func (r *Lp[B]) Loss(m *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	switch r.P {
	case 1:
		return m.Abs().SumDim(1, false).Mean()
	case 2:
		return m.Mul(m).SumDim(1, false).Sqrt().Mean()
	default:
		panic(fmt.Sprintf("lp regularizer: unsupported p=%d", r.P))
	}
}
