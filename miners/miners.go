// Copyright 2026 The Anchor Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package miners provides example mining for metric learning.
//
// Example:
//
//	miner := miners.NewPairMargin()
//	ix := miner.Mine(embeddings.Raw(), labels.Raw())
//	loss := nsLoss.ForwardMined(embeddings, labels, ix)
package miners

import (
	"github.com/anchor-ml/anchor/internal/miners"
)

// Indices holds mined pair indices into a batch.
type Indices = miners.Indices

// PairMargin mines pairs by cosine similarity thresholds.
type PairMargin = miners.PairMargin

// NewPairMargin creates a PairMargin miner with the standard margins.
func NewPairMargin() *PairMargin {
	return miners.NewPairMargin()
}

// ConvertToWeights turns mined indices into per-sample loss weights of
// length numSamples. With no mining, every sample gets weight 1.
func ConvertToWeights(ix *Indices, numSamples int) []float32 {
	return miners.ConvertToWeights(ix, numSamples)
}
