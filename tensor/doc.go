// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor exposes the generic tensor type used by ptrnet.
//
// # Overview
//
// Tensors are typed by element and backend: Tensor[float32, *cpu.Backend]
// holds float32 data computed on the CPU backend. Operations follow NumPy
// broadcasting rules and always return new tensors; inputs are never
// modified in place.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/ptrnet/backend/cpu"
//	    "github.com/born-ml/ptrnet/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    scores := tensor.MustFromSlice([]float32{0.1, 2, -1}, tensor.Shape{1, 3}, backend)
//	    mask := tensor.MustFromSlice([]bool{true, true, false}, tensor.Shape{1, 3}, backend)
//
//	    masked := tensor.Where(mask, scores, tensor.Scalar[float32](-1e9, backend))
//	    logProbs := masked.LogSoftmax(-1)
//	}
//
// # Supported Data Types
//
//   - float32, float64 (floating-point)
//   - int32, int64 (signed integers; indices are int64)
//   - bool (masks)
//
// # Errors
//
// Shape mismatches and invalid arguments inside operations panic with a
// message prefixed by the operation name, e.g. "matmul: shape mismatch".
// Constructors that take user data, such as FromSlice, return errors.
package tensor
