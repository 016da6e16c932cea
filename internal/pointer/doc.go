// Package pointer implements a Pointer Network.
//
// At every decode step the network emits a log-probability distribution over
// the positions of its own input and follows the masked argmax of that
// distribution to pick the next position. Batches of variable-length
// sequences are padded to a common length L; correctness under padding rests
// entirely on a (B, L, L) validity mask built from the sequence lengths.
//
// The building blocks, leaves first:
//
//   - MaskedLogSoftmax and MaskedMax: numerically safe masked primitives.
//   - Attention: additive attention vᵀ·tanh(W1·e + W2·d) followed by the
//     masked log-softmax over candidate positions.
//   - StepDecoder: a single-step recurrent unit (nn.LSTMCell).
//   - Decoder: the fixed-length decode loop producing an Output.
//   - Model: embedding, LSTM encoder and Decoder wired together.
//
// Example:
//
//	backend := cpu.New()
//	model, err := pointer.NewModel(pointer.DefaultConfig(), backend)
//	if err != nil {
//	    return err
//	}
//	out, err := model.Forward(ctx, features, []int{4, 2})
//	// out.LogScores: [2, 4, 4], out.Indices: [2, 4], out.Mask: [2, 4, 4]
package pointer
