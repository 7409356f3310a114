// Package losses implements metric-learning loss functions.
//
// A loss maps a batch of embeddings and integer labels to a scalar. Losses
// with learnable state (such as class prototypes) expose their parameters
// for optimization alongside the embedding model's own.
package losses

import "github.com/anchor-ml/anchor/internal/tensor"

// Loss is a metric-learning objective over embeddings and labels.
type Loss[B tensor.Backend] interface {
	// Forward returns a single-element loss tensor for the batch.
	// embeddings is [batch, dim] and labels is [batch].
	Forward(embeddings *tensor.Tensor[float32, B], labels *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B]
}
