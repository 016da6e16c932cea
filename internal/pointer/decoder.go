package pointer

import (
	"fmt"

	"github.com/born-ml/ptrnet/internal/nn"
	"github.com/born-ml/ptrnet/internal/tensor"
)

// StepDecoder advances the decoder state by one step.
//
// input is (B, H): the encoder representation of the previously selected
// position, or zeros on the first step. Implementations must not modify
// input or state; *nn.LSTMCell satisfies this interface.
type StepDecoder[B tensor.Backend] interface {
	Step(input *tensor.Tensor[float32, B], state nn.LSTMState[B]) nn.LSTMState[B]
}

// Output is the result of a decode pass.
type Output[B tensor.Backend] struct {
	// LogScores holds one log-probability distribution per step, ordered
	// (batch, step, candidate): (B, L, L).
	LogScores *tensor.Tensor[float32, B]

	// Indices holds the selected position of each step: (B, L).
	Indices *tensor.Tensor[int64, B]

	// Mask is the (B, L, L) validity mask. Steps and candidates where it is
	// false were computed but carry no meaning.
	Mask *tensor.Tensor[bool, B]
}

// Decoder runs the pointer decode loop.
type Decoder[B tensor.Backend] struct {
	step           StepDecoder[B]
	attention      *Attention[B]
	excludeVisited bool
}

// DecoderOption configures NewDecoder.
type DecoderOption func(*decoderOptions)

type decoderOptions struct {
	excludeVisited bool
}

// WithVisitedExclusion removes already selected positions from each step's
// candidates, so every valid prefix of Output.Indices is a permutation.
// Without it the same position may be selected more than once.
func WithVisitedExclusion(enabled bool) DecoderOption {
	return func(o *decoderOptions) { o.excludeVisited = enabled }
}

// NewDecoder creates a decode loop around a step decoder and a scorer.
func NewDecoder[B tensor.Backend](step StepDecoder[B], attention *Attention[B], opts ...DecoderOption) *Decoder[B] {
	var o decoderOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Decoder[B]{
		step:           step,
		attention:      attention,
		excludeVisited: o.excludeVisited,
	}
}

// ExcludesVisited reports whether visited positions are masked out.
func (d *Decoder[B]) ExcludesVisited() bool {
	return d.excludeVisited
}

// Decode runs exactly L steps over encoderOutputs (B, L, H), starting from
// initial (B, H) hidden and cell states.
//
// Each step i:
//  1. takes row i of the validity mask as the candidate mask,
//  2. advances the step decoder,
//  3. scores all positions with the new hidden state,
//  4. selects the masked argmax,
//  5. gathers the selected encoder row as the next input.
//
// Every lengths[b] must be in [1, L]; Decode does not check this.
func (d *Decoder[B]) Decode(
	encoderOutputs *tensor.Tensor[float32, B],
	lengths []int,
	initial nn.LSTMState[B],
) *Output[B] {
	shape := encoderOutputs.Shape()
	if len(shape) != 3 || shape[2] != d.attention.HiddenSize() {
		panic(fmt.Sprintf("decode: expected encoder outputs [batch, seq, %d], got %v", d.attention.HiddenSize(), shape))
	}
	batch, maxLen, hidden := shape[0], shape[1], shape[2]
	backend := encoderOutputs.Backend()

	mask := LengthMask(lengths, maxLen, backend)
	projected := d.attention.Project(encoderOutputs)

	var visited *tensor.Tensor[bool, B]
	if d.excludeVisited {
		visited = tensor.Zeros[bool](tensor.Shape{batch, maxLen}, backend)
	}

	input := tensor.Zeros[float32](tensor.Shape{batch, hidden}, backend)
	state := initial
	scores := make([]*tensor.Tensor[float32, B], maxLen)
	indices := make([]*tensor.Tensor[int64, B], maxLen)

	for i := 0; i < maxLen; i++ {
		stepMask := mask.Select(1, i) // [B, L]
		if visited != nil {
			stepMask = tensor.And(stepMask, tensor.Not(visited))
		}

		state = d.step.Step(input, state)
		logScores := d.attention.Score(projected, state.H, stepMask)
		_, selected := MaskedMax(logScores, stepMask, 1, false) // [B]

		scores[i] = logScores
		indices[i] = selected

		gather := selected.Reshape(batch, 1, 1).Expand(tensor.Shape{batch, 1, hidden})
		input = encoderOutputs.Gather(1, gather).Squeeze(1)

		if visited != nil {
			visited = markVisited(visited, selected)
		}
	}

	return &Output[B]{
		LogScores: tensor.Stack(scores, 1),
		Indices:   tensor.Stack(indices, 1),
		Mask:      mask,
	}
}

// markVisited returns a copy of visited with visited[b, selected[b]] set.
func markVisited[B tensor.Backend](visited *tensor.Tensor[bool, B], selected *tensor.Tensor[int64, B]) *tensor.Tensor[bool, B] {
	next := visited.Clone()
	for b, j := range selected.Data() {
		next.Set(true, b, int(j))
	}
	return next
}
