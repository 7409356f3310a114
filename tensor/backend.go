// Copyright 2026 The Anchor Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/anchor-ml/anchor/internal/tensor"

// Backend is the interface compute backends implement. See the cpu package
// for the reference implementation and the autodiff package for the
// gradient-tracking decorator.
type Backend = tensor.Backend

// RawTensor is the low-level untyped tensor: a shaped, reference-counted
// buffer plus runtime dtype and device information.
type RawTensor = tensor.RawTensor

// BroadcastShapes computes the NumPy-style broadcast result of two shapes.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}
