package nn

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/born-ml/ptrnet/internal/tensor"
)

// ErrInvalidLengths is returned when sequence lengths do not fit the batch.
var ErrInvalidLengths = errors.New("invalid sequence lengths")

// LSTMConfig describes a stacked LSTM.
type LSTMConfig struct {
	InputSize     int
	HiddenSize    int
	NumLayers     int
	Bidirectional bool
}

// LSTM is a stacked, optionally bidirectional LSTM over padded batches.
//
// Sequences shorter than the batch's padded length are handled the way a
// packed-sequence RNN handles them: steps past a sequence's length neither
// update its state nor emit output (outputs there are zero), and the reverse
// direction begins at each sequence's own last element.
//
// Example:
//
//	enc := nn.NewLSTM(nn.LSTMConfig{InputSize: 64, HiddenSize: 128, NumLayers: 1, Bidirectional: true}, backend, rng)
//	out, final, err := enc.Forward(embedded, []int{4, 2}) // out: [B, L, 256]
type LSTM[B tensor.Backend] struct {
	cfg     LSTMConfig
	cells   []*LSTMCell[B] // indexed layer*directions + direction
	backend B
}

// NewLSTM creates a stacked LSTM.
func NewLSTM[B tensor.Backend](cfg LSTMConfig, backend B, rng *rand.Rand) *LSTM[B] {
	if cfg.NumLayers <= 0 {
		cfg.NumLayers = 1
	}
	if rng == nil {
		rng = NewRNG(0)
	}

	dirs := cfg.directions()
	cells := make([]*LSTMCell[B], 0, cfg.NumLayers*dirs)
	for layer := 0; layer < cfg.NumLayers; layer++ {
		in := cfg.InputSize
		if layer > 0 {
			in = cfg.HiddenSize * dirs
		}
		for dir := 0; dir < dirs; dir++ {
			suffix := fmt.Sprintf("_l%d", layer)
			if dir == 1 {
				suffix += "_reverse"
			}
			cells = append(cells, newLSTMCell(in, cfg.HiddenSize, suffix, backend, rng))
		}
	}

	return &LSTM[B]{cfg: cfg, cells: cells, backend: backend}
}

func (cfg LSTMConfig) directions() int {
	if cfg.Bidirectional {
		return 2
	}
	return 1
}

// Config returns the LSTM configuration.
func (l *LSTM[B]) Config() LSTMConfig {
	return l.cfg
}

// Forward runs the LSTM over a batch-first padded input.
//
// input has shape [batch, seq, input_size]; lengths holds each sequence's
// true length in [1, seq]. Returns outputs [batch, seq, hidden*directions]
// and the final state of every (layer, direction), ordered
// layer*directions + direction.
func (l *LSTM[B]) Forward(input *tensor.Tensor[float32, B], lengths []int) (*tensor.Tensor[float32, B], []LSTMState[B], error) {
	shape := input.Shape()
	if len(shape) != 3 || shape[2] != l.cfg.InputSize {
		return nil, nil, fmt.Errorf("LSTM.Forward: expected input [batch, seq, %d], got %v", l.cfg.InputSize, shape)
	}
	batch, seqLen := shape[0], shape[1]
	if err := validateLengths(lengths, batch, seqLen); err != nil {
		return nil, nil, err
	}

	active := l.activeMasks(lengths, seqLen)

	dirs := l.cfg.directions()
	finals := make([]LSTMState[B], 0, len(l.cells))
	layerInput := input
	for layer := 0; layer < l.cfg.NumLayers; layer++ {
		outputs := make([]*tensor.Tensor[float32, B], dirs)
		for dir := 0; dir < dirs; dir++ {
			cell := l.cells[layer*dirs+dir]
			out, final := l.runDirection(cell, layerInput, active, dir == 1)
			outputs[dir] = out
			finals = append(finals, final)
		}
		layerInput = tensor.Cat(outputs, 2)
	}

	return layerInput, finals, nil
}

// activeMasks returns, per time step t, a [batch, 1] mask of t < length.
func (l *LSTM[B]) activeMasks(lengths []int, seqLen int) []*tensor.Tensor[bool, B] {
	lens := make([]int64, len(lengths))
	for i, n := range lengths {
		lens[i] = int64(n)
	}
	lensT := tensor.MustFromSlice(lens, tensor.Shape{len(lens), 1}, l.backend)

	masks := make([]*tensor.Tensor[bool, B], seqLen)
	for t := range masks {
		masks[t] = tensor.Scalar(int64(t), l.backend).Lower(lensT)
	}
	return masks
}

func (l *LSTM[B]) runDirection(
	cell *LSTMCell[B],
	input *tensor.Tensor[float32, B],
	active []*tensor.Tensor[bool, B],
	reverse bool,
) (*tensor.Tensor[float32, B], LSTMState[B]) {
	batch, seqLen := input.Shape()[0], input.Shape()[1]
	state := ZeroState(batch, l.cfg.HiddenSize, l.backend)
	zeros := tensor.Scalar[float32](0, l.backend)

	outputs := make([]*tensor.Tensor[float32, B], seqLen)
	for i := 0; i < seqLen; i++ {
		t := i
		if reverse {
			t = seqLen - 1 - i
		}

		next := cell.Step(input.Select(1, t), state)
		state = LSTMState[B]{
			H: tensor.Where(active[t], next.H, state.H),
			C: tensor.Where(active[t], next.C, state.C),
		}
		outputs[t] = tensor.Where(active[t], next.H, zeros)
	}

	return tensor.Stack(outputs, 1), state
}

func validateLengths(lengths []int, batch, seqLen int) error {
	if len(lengths) != batch {
		return fmt.Errorf("%w: got %d lengths for batch of %d", ErrInvalidLengths, len(lengths), batch)
	}
	for i, n := range lengths {
		if n < 1 || n > seqLen {
			return fmt.Errorf("%w: length[%d] = %d outside [1, %d]", ErrInvalidLengths, i, n, seqLen)
		}
	}
	return nil
}

// Parameters returns the parameters of every cell.
func (l *LSTM[B]) Parameters() []*Parameter[B] {
	params := make([]*Parameter[B], 0, 4*len(l.cells))
	for _, c := range l.cells {
		params = append(params, c.Parameters()...)
	}
	return params
}

// StateDict returns a map of parameter names to raw tensors.
func (l *LSTM[B]) StateDict() map[string]*tensor.RawTensor {
	return stateDict(l.Parameters())
}

// LoadStateDict loads parameters from a state dictionary.
func (l *LSTM[B]) LoadStateDict(sd map[string]*tensor.RawTensor) error {
	return loadStateDict(l.Parameters(), sd)
}
