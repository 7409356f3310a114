// Copyright 2026 The Anchor Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package losses provides metric-learning loss functions.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//
//	loss, err := losses.NewNormalizedSoftmax(128, 10, backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out := loss.Forward(embeddings, labels)
//	grads := autodiff.Backward(out, backend)
package losses

import (
	"github.com/anchor-ml/anchor/internal/losses"
	"github.com/anchor-ml/anchor/internal/regularizers"
	"github.com/anchor-ml/anchor/internal/tensor"
)

// Regularizer computes a scalar penalty over a prototype matrix.
type Regularizer[B tensor.Backend] = regularizers.Regularizer[B]

// Loss is a metric-learning objective over embeddings and labels.
type Loss[B tensor.Backend] = losses.Loss[B]

// NormalizedSoftmax classifies embeddings against learned class prototypes
// on the unit hypersphere. See Zhai & Wu, "Classification is a Strong
// Baseline for Deep Metric Learning" (2019).
type NormalizedSoftmax[B tensor.Backend] = losses.NormalizedSoftmax[B]

// Option configures a NormalizedSoftmax loss.
type Option[B tensor.Backend] = losses.Option[B]

// DefaultTemperature is the softmax temperature used when none is configured.
const DefaultTemperature = losses.DefaultTemperature

// NewNormalizedSoftmax creates the loss with a [dim, numClasses] prototype
// matrix. Returns an error for non-positive sizes or temperature.
func NewNormalizedSoftmax[B tensor.Backend](dim, numClasses int, backend B, opts ...Option[B]) (*NormalizedSoftmax[B], error) {
	return losses.NewNormalizedSoftmax(dim, numClasses, backend, opts...)
}

// WithTemperature sets the softmax temperature.
func WithTemperature[B tensor.Backend](t float32) Option[B] {
	return losses.WithTemperature[B](t)
}

// WithRegularizer attaches a prototype regularizer scaled by regWeight.
func WithRegularizer[B tensor.Backend](r Regularizer[B], regWeight float32) Option[B] {
	return losses.WithRegularizer[B](r, regWeight)
}
