package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/ptrnet/internal/tensor"
)

// LSTMState is the (hidden, cell) pair carried by an LSTM, each [batch, hidden].
type LSTMState[B tensor.Backend] struct {
	H *tensor.Tensor[float32, B]
	C *tensor.Tensor[float32, B]
}

// ZeroState returns an all-zero state for batch sequences.
func ZeroState[B tensor.Backend](batch, hidden int, backend B) LSTMState[B] {
	return LSTMState[B]{
		H: tensor.Zeros[float32](tensor.Shape{batch, hidden}, backend),
		C: tensor.Zeros[float32](tensor.Shape{batch, hidden}, backend),
	}
}

// LSTMCell is a single-step LSTM unit.
//
// Gates are laid out as [input, forget, cell, output] along the 4*hidden
// dimension of the weights:
//
//	gates = x @ W_ih.T + b_ih + h @ W_hh.T + b_hh
//	c' = σ(f) * c + σ(i) * tanh(g)
//	h' = σ(o) * tanh(c')
type LSTMCell[B tensor.Backend] struct {
	inputSize  int
	hiddenSize int

	weightIH *Parameter[B] // [4*hidden, input]
	weightHH *Parameter[B] // [4*hidden, hidden]
	biasIH   *Parameter[B] // [4*hidden]
	biasHH   *Parameter[B] // [4*hidden]
}

// NewLSTMCell creates an LSTM cell with weights drawn from
// U(-1/sqrt(hidden), 1/sqrt(hidden)).
func NewLSTMCell[B tensor.Backend](inputSize, hiddenSize int, backend B, rng *rand.Rand) *LSTMCell[B] {
	return newLSTMCell(inputSize, hiddenSize, "", backend, rng)
}

func newLSTMCell[B tensor.Backend](inputSize, hiddenSize int, suffix string, backend B, rng *rand.Rand) *LSTMCell[B] {
	if rng == nil {
		rng = NewRNG(0)
	}
	gates := 4 * hiddenSize
	return &LSTMCell[B]{
		inputSize:  inputSize,
		hiddenSize: hiddenSize,
		weightIH:   NewParameter("weight_ih"+suffix, UniformFanIn(rng, hiddenSize, tensor.Shape{gates, inputSize}, backend)),
		weightHH:   NewParameter("weight_hh"+suffix, UniformFanIn(rng, hiddenSize, tensor.Shape{gates, hiddenSize}, backend)),
		biasIH:     NewParameter("bias_ih"+suffix, UniformFanIn(rng, hiddenSize, tensor.Shape{gates}, backend)),
		biasHH:     NewParameter("bias_hh"+suffix, UniformFanIn(rng, hiddenSize, tensor.Shape{gates}, backend)),
	}
}

// Step advances the cell by one time step.
//
// x has shape [batch, input]; state holds [batch, hidden] tensors. The
// returned state is freshly allocated; the input state is not modified.
func (c *LSTMCell[B]) Step(x *tensor.Tensor[float32, B], state LSTMState[B]) LSTMState[B] {
	xShape, hShape := x.Shape(), state.H.Shape()
	if len(xShape) != 2 || xShape[1] != c.inputSize {
		panic(fmt.Sprintf("LSTMCell.Step: expected input [batch, %d], got %v", c.inputSize, xShape))
	}
	if len(hShape) != 2 || hShape[0] != xShape[0] || hShape[1] != c.hiddenSize {
		panic(fmt.Sprintf("LSTMCell.Step: expected state [%d, %d], got %v", xShape[0], c.hiddenSize, hShape))
	}

	h := c.hiddenSize
	gates := x.MatMul(c.weightIH.Tensor().Transpose()).
		Add(state.H.MatMul(c.weightHH.Tensor().Transpose())).
		Add(c.biasIH.Tensor().Reshape(1, 4*h)).
		Add(c.biasHH.Tensor().Reshape(1, 4*h))

	in := gates.Narrow(1, 0, h).Sigmoid()
	forget := gates.Narrow(1, h, h).Sigmoid()
	cand := gates.Narrow(1, 2*h, h).Tanh()
	out := gates.Narrow(1, 3*h, h).Sigmoid()

	cell := forget.Mul(state.C).Add(in.Mul(cand))
	return LSTMState[B]{
		H: out.Mul(cell.Tanh()),
		C: cell,
	}
}

// InputSize returns the expected input feature size.
func (c *LSTMCell[B]) InputSize() int {
	return c.inputSize
}

// HiddenSize returns the hidden state size.
func (c *LSTMCell[B]) HiddenSize() int {
	return c.hiddenSize
}

// Parameters returns [weight_ih, weight_hh, bias_ih, bias_hh].
func (c *LSTMCell[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{c.weightIH, c.weightHH, c.biasIH, c.biasHH}
}

// StateDict returns a map of parameter names to raw tensors.
func (c *LSTMCell[B]) StateDict() map[string]*tensor.RawTensor {
	return stateDict(c.Parameters())
}

// LoadStateDict loads parameters from a state dictionary.
func (c *LSTMCell[B]) LoadStateDict(sd map[string]*tensor.RawTensor) error {
	return loadStateDict(c.Parameters(), sd)
}
