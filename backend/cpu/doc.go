// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU backend.
//
// # Overview
//
//   - Pure Go element-wise kernels with NumPy-compatible broadcasting
//   - Matrix multiplication through gonum BLAS (float32 and float64)
//   - Row-parallel softmax and log-softmax over independent rows
//   - Masks and indices as bool and int64 tensors
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
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	    y := x.Add(tensor.Ones[float32](tensor.Shape{2, 3}, backend))
//	}
//
// # Thread Safety
//
// The backend holds no mutable state and is safe for concurrent use.
// Every operation allocates its result.
package cpu
