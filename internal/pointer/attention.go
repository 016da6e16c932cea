package pointer

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/ptrnet/internal/nn"
	"github.com/born-ml/ptrnet/internal/tensor"
)

// Attention is the pointer scorer:
//
//	u[b, j] = vᵀ · tanh(W1 · e[b, j] + W2 · d[b])
//	scores  = MaskedLogSoftmax(u, mask)
//
// W1, W2 and v carry no bias.
type Attention[B tensor.Backend] struct {
	hiddenSize int
	w1         *nn.Linear[B] // encoder projection
	w2         *nn.Linear[B] // decoder projection
	vt         *nn.Linear[B] // [H] → scalar
	tanh       *nn.Tanh[B]
}

// NewAttention creates an attention scorer over hidden size H.
func NewAttention[B tensor.Backend](hiddenSize int, backend B, rng *rand.Rand) *Attention[B] {
	if rng == nil {
		rng = nn.NewRNG(0)
	}
	return &Attention[B]{
		hiddenSize: hiddenSize,
		w1:         nn.NewLinear(hiddenSize, hiddenSize, backend, nn.WithoutBias(), nn.WithRNG(rng)),
		w2:         nn.NewLinear(hiddenSize, hiddenSize, backend, nn.WithoutBias(), nn.WithRNG(rng)),
		vt:         nn.NewLinear(hiddenSize, 1, backend, nn.WithoutBias(), nn.WithRNG(rng)),
		tanh:       nn.NewTanh[B](),
	}
}

// Forward scores every encoder position against the decoder state.
//
// decoderState is (B, H), encoderOutputs (B, L, H), mask (B, L) or nil.
// Returns log-scores (B, L).
func (a *Attention[B]) Forward(
	decoderState *tensor.Tensor[float32, B],
	encoderOutputs *tensor.Tensor[float32, B],
	mask *tensor.Tensor[bool, B],
) *tensor.Tensor[float32, B] {
	return a.Score(a.Project(encoderOutputs), decoderState, mask)
}

// Project applies W1 to the encoder outputs. The result does not depend on
// the decode step and can be reused by Score across a whole decode.
func (a *Attention[B]) Project(encoderOutputs *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := encoderOutputs.Shape()
	if len(shape) != 3 || shape[2] != a.hiddenSize {
		panic(fmt.Sprintf("attention: expected encoder outputs [batch, seq, %d], got %v", a.hiddenSize, shape))
	}
	return a.w1.Forward(encoderOutputs)
}

// Score computes log-scores from projected encoder outputs (see Project).
func (a *Attention[B]) Score(
	projected *tensor.Tensor[float32, B],
	decoderState *tensor.Tensor[float32, B],
	mask *tensor.Tensor[bool, B],
) *tensor.Tensor[float32, B] {
	query := a.w2.Forward(decoderState).Unsqueeze(1) // [B, 1, H]
	u := a.vt.Forward(a.tanh.Forward(projected.Add(query))).Squeeze(-1)
	return MaskedLogSoftmax(u, mask, -1)
}

// HiddenSize returns H.
func (a *Attention[B]) HiddenSize() int {
	return a.hiddenSize
}

// Parameters returns [W1, W2, vt] weights.
func (a *Attention[B]) Parameters() []*nn.Parameter[B] {
	params := make([]*nn.Parameter[B], 0, 3)
	params = append(params, a.w1.Parameters()...)
	params = append(params, a.w2.Parameters()...)
	params = append(params, a.vt.Parameters()...)
	return params
}

// StateDict returns W1.weight, W2.weight and vt.weight.
func (a *Attention[B]) StateDict() map[string]*tensor.RawTensor {
	sd := make(map[string]*tensor.RawTensor, 3)
	nn.PrefixStateDict(sd, "W1", a.w1.StateDict())
	nn.PrefixStateDict(sd, "W2", a.w2.StateDict())
	nn.PrefixStateDict(sd, "vt", a.vt.StateDict())
	return sd
}

// LoadStateDict loads weights produced by StateDict.
func (a *Attention[B]) LoadStateDict(sd map[string]*tensor.RawTensor) error {
	layers := []struct {
		name  string
		layer *nn.Linear[B]
	}{
		{"W1", a.w1},
		{"W2", a.w2},
		{"vt", a.vt},
	}
	for _, l := range layers {
		if err := l.layer.LoadStateDict(nn.SubStateDict(sd, l.name)); err != nil {
			return fmt.Errorf("attention %s: %w", l.name, err)
		}
	}
	return nil
}
