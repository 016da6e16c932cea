// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the neural network layers of the pointer network.
//
// # Overview
//
//   - Linear: fully connected layer with optional bias
//   - Tanh: activation module
//   - LSTMCell: single-step LSTM, used as the pointer decoder
//   - LSTM: stacked, optionally bidirectional encoder over padded batches
//
// All layers are inference-only and generic over the backend. Weights are
// exchanged through in-memory state dicts keyed by parameter name.
//
// # Basic Usage
//
//	backend := cpu.New()
//	rng := nn.NewRNG(42)
//
//	encoder := nn.NewLSTM(nn.LSTMConfig{
//	    InputSize:     32,
//	    HiddenSize:    32,
//	    NumLayers:     1,
//	    Bidirectional: true,
//	}, backend, rng)
//	outputs, finals, err := encoder.Forward(embedded, lengths)
package nn
