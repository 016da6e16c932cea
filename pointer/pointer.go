// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package pointer is the public API of the Pointer Network.
//
// A Model embeds raw per-position features, encodes them with an LSTM and
// decodes a sequence of pointers into its own input. Each decode step yields
// a log-probability distribution over positions and the masked argmax of
// that distribution.
//
// Example:
//
//	backend := cpu.New()
//	cfg := pointer.DefaultConfig()
//	cfg.ExcludeVisited = true
//
//	model, err := pointer.NewModel(cfg, backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	x := tensor.MustFromSlice([]float32{0.3, 0.1, 0.2}, tensor.Shape{1, 3, 1}, backend)
//	out, err := model.Forward(ctx, x, []int{3})
//	order := out.Sequences([]int{3})[0]
package pointer

import (
	"math/rand"

	"github.com/born-ml/ptrnet/internal/logger"
	"github.com/born-ml/ptrnet/internal/pointer"
	"github.com/born-ml/ptrnet/internal/tensor"
)

// Errors returned by Model.Forward.
var (
	ErrEmptyBatch    = pointer.ErrEmptyBatch
	ErrInvalidLength = pointer.ErrInvalidLength
	ErrShapeMismatch = pointer.ErrShapeMismatch
)

// Config holds the model hyperparameters.
type Config = pointer.Config

// DefaultConfig returns the default hyperparameters.
func DefaultConfig() Config {
	return pointer.DefaultConfig()
}

// Model is a complete Pointer Network.
type Model[B tensor.Backend] = pointer.Model[B]

// ModelOption configures NewModel.
type ModelOption = pointer.ModelOption

// Logger is the structured logger accepted by WithLogger.
type Logger = logger.Logger

// WithLogger sets the model logger.
func WithLogger(l Logger) ModelOption {
	return pointer.WithLogger(l)
}

// NewModel creates a model with freshly initialised weights.
func NewModel[B tensor.Backend](cfg Config, backend B, opts ...ModelOption) (*Model[B], error) {
	return pointer.NewModel(cfg, backend, opts...)
}

// Output is the result of a decode pass.
type Output[B tensor.Backend] = pointer.Output[B]

// StepDecoder advances the decoder state by one step.
type StepDecoder[B tensor.Backend] = pointer.StepDecoder[B]

// Attention is the pointer scorer.
type Attention[B tensor.Backend] = pointer.Attention[B]

// NewAttention creates an attention scorer over hidden size H.
func NewAttention[B tensor.Backend](hiddenSize int, backend B, rng *rand.Rand) *Attention[B] {
	return pointer.NewAttention(hiddenSize, backend, rng)
}

// Decoder runs the pointer decode loop.
type Decoder[B tensor.Backend] = pointer.Decoder[B]

// DecoderOption configures NewDecoder.
type DecoderOption = pointer.DecoderOption

// WithVisitedExclusion removes already selected positions from later steps.
func WithVisitedExclusion(enabled bool) DecoderOption {
	return pointer.WithVisitedExclusion(enabled)
}

// NewDecoder creates a decode loop from a step decoder and a scorer.
//
// Example:
//
//	cell := nn.NewLSTMCell(h, h, backend, rng)
//	dec := pointer.NewDecoder[*cpu.Backend](cell, pointer.NewAttention(h, backend, rng))
//	out := dec.Decode(encoderOutputs, lengths, initialState)
func NewDecoder[B tensor.Backend](step StepDecoder[B], attention *Attention[B], opts ...DecoderOption) *Decoder[B] {
	return pointer.NewDecoder(step, attention, opts...)
}

// LengthMask builds the (B, L, L) validity mask for a padded batch.
func LengthMask[B tensor.Backend](lengths []int, maxLen int, backend B) *tensor.Tensor[bool, B] {
	return pointer.LengthMask(lengths, maxLen, backend)
}

// MaskedLogSoftmax computes a log-softmax restricted to masked-in positions.
func MaskedLogSoftmax[B tensor.Backend](scores *tensor.Tensor[float32, B], mask *tensor.Tensor[bool, B], dim int) *tensor.Tensor[float32, B] {
	return pointer.MaskedLogSoftmax(scores, mask, dim)
}

// MaskedMax returns the max and argmax along dim over masked-in positions.
func MaskedMax[B tensor.Backend](scores *tensor.Tensor[float32, B], mask *tensor.Tensor[bool, B], dim int, keepDim bool) (*tensor.Tensor[float32, B], *tensor.Tensor[int64, B]) {
	return pointer.MaskedMax(scores, mask, dim, keepDim)
}

// SequenceAccuracy returns the fraction of fully correct sequences.
func SequenceAccuracy[B tensor.Backend](indices, targets *tensor.Tensor[int64, B], lengths []int) float64 {
	return pointer.SequenceAccuracy(indices, targets, lengths)
}

// StepAccuracy returns the fraction of correct valid steps.
func StepAccuracy[B tensor.Backend](indices, targets *tensor.Tensor[int64, B], lengths []int) float64 {
	return pointer.StepAccuracy(indices, targets, lengths)
}

// IsPermutation reports whether seq is a permutation of [0, len(seq)).
func IsPermutation(seq []int64) bool {
	return pointer.IsPermutation(seq)
}
