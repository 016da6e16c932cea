// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/ptrnet/internal/nn"
	"github.com/born-ml/ptrnet/internal/tensor"
)

// Module is the interface of single-input layers.
type Module[B tensor.Backend] = nn.Module[B]

// StateDicter is implemented by layers with exportable weights.
type StateDicter = nn.StateDicter

// Parameter is a named learned tensor.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// CountParameters returns the number of scalar weights in params.
func CountParameters[B tensor.Backend](params []*Parameter[B]) int {
	return nn.CountParameters(params)
}

// NewRNG returns a seeded random source; seed 0 selects a time-based seed.
func NewRNG(seed int64) *rand.Rand {
	return nn.NewRNG(seed)
}

// Linear is a fully connected layer.
type Linear[B tensor.Backend] = nn.Linear[B]

// LinearOption configures NewLinear.
type LinearOption = nn.LinearOption

// WithoutBias disables the bias term.
func WithoutBias() LinearOption {
	return nn.WithoutBias()
}

// WithRNG sets the initialisation random source.
func WithRNG(rng *rand.Rand) LinearOption {
	return nn.WithRNG(rng)
}

// NewLinear creates a linear layer with Xavier initialisation.
//
// Example:
//
//	backend := cpu.New()
//	embed := nn.NewLinear(2, 64, backend, nn.WithoutBias())
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B, opts ...LinearOption) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, backend, opts...)
}

// Tanh is the hyperbolic tangent activation.
type Tanh[B tensor.Backend] = nn.Tanh[B]

// NewTanh creates a Tanh activation.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return nn.NewTanh[B]()
}

// LSTMState is the (hidden, cell) pair of an LSTM.
type LSTMState[B tensor.Backend] = nn.LSTMState[B]

// ZeroState returns an all-zero state.
func ZeroState[B tensor.Backend](batch, hidden int, backend B) LSTMState[B] {
	return nn.ZeroState(batch, hidden, backend)
}

// LSTMCell is a single-step LSTM unit.
type LSTMCell[B tensor.Backend] = nn.LSTMCell[B]

// NewLSTMCell creates an LSTM cell.
func NewLSTMCell[B tensor.Backend](inputSize, hiddenSize int, backend B, rng *rand.Rand) *LSTMCell[B] {
	return nn.NewLSTMCell(inputSize, hiddenSize, backend, rng)
}

// LSTMConfig describes a stacked LSTM.
type LSTMConfig = nn.LSTMConfig

// LSTM is a stacked, optionally bidirectional LSTM over padded batches.
type LSTM[B tensor.Backend] = nn.LSTM[B]

// NewLSTM creates a stacked LSTM.
func NewLSTM[B tensor.Backend](cfg LSTMConfig, backend B, rng *rand.Rand) *LSTM[B] {
	return nn.NewLSTM(cfg, backend, rng)
}

// ErrInvalidLengths is returned by LSTM.Forward for lengths outside [1, L].
var ErrInvalidLengths = nn.ErrInvalidLengths
