// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/ptrnet/internal/backend/cpu"
	"github.com/born-ml/ptrnet/internal/parallel"
	"github.com/born-ml/ptrnet/tensor"
)

// Backend is the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// Option configures New.
type Option = internalcpu.Option

// ParallelConfig controls row-parallel kernels.
type ParallelConfig = parallel.Config

// DefaultParallelConfig uses one worker per CPU.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// Sequential disables parallel kernels.
func Sequential() ParallelConfig {
	return parallel.Sequential()
}

// WithParallel sets the parallel execution policy.
func WithParallel(cfg ParallelConfig) Option {
	return internalcpu.WithParallel(cfg)
}

// New creates a new CPU backend.
//
// Example:
//
//	backend := cpu.New()
//	single := cpu.New(cpu.WithParallel(cpu.Sequential()))
func New(opts ...Option) *Backend {
	return internalcpu.New(opts...)
}
