package nn_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ptrnet/internal/backend/cpu"
	"github.com/born-ml/ptrnet/internal/nn"
	"github.com/born-ml/ptrnet/internal/tensor"
)

func zeroParams(params []*nn.Parameter[*cpu.CPUBackend]) {
	for _, p := range params {
		data := p.Tensor().Data()
		for i := range data {
			data[i] = 0
		}
	}
}

func TestLSTMCell_ZeroWeights(t *testing.T) {
	backend := cpu.New()
	cell := nn.NewLSTMCell(3, 2, backend, nn.NewRNG(1))
	zeroParams(cell.Parameters())

	// All gates are zero: i = f = o = 0.5, g = 0.
	x := tensor.Ones[float32](tensor.Shape{1, 3}, backend)
	state := nn.LSTMState[*cpu.CPUBackend]{
		H: tensor.Zeros[float32](tensor.Shape{1, 2}, backend),
		C: tensor.MustFromSlice([]float32{1, -2}, tensor.Shape{1, 2}, backend),
	}

	next := cell.Step(x, state)

	assert.InDeltaSlice(t, []float32{0.5, -1}, next.C.Data(), 1e-6)
	want := []float32{
		float32(0.5 * math.Tanh(0.5)),
		float32(0.5 * math.Tanh(-1)),
	}
	assert.InDeltaSlice(t, want, next.H.Data(), 1e-6)

	// Input state is untouched.
	assert.Equal(t, []float32{1, -2}, state.C.Data())
}

func TestLSTMCell_InputGate(t *testing.T) {
	backend := cpu.New()
	cell := nn.NewLSTMCell(1, 1, backend, nn.NewRNG(1))
	zeroParams(cell.Parameters())

	// Large candidate bias saturates g at 1; large input bias opens i.
	sd := cell.StateDict()
	bias := sd["bias_ih"].AsFloat32()
	bias[0] = 20  // i
	bias[1] = -20 // f
	bias[2] = 20  // g
	bias[3] = 20  // o

	x := tensor.Zeros[float32](tensor.Shape{1, 1}, backend)
	next := cell.Step(x, nn.ZeroState(1, 1, backend))

	assert.InDelta(t, 1, next.C.At(0, 0), 1e-5)
	assert.InDelta(t, math.Tanh(1), next.H.At(0, 0), 1e-5)
}

func TestLSTMCell_PanicsOnShape(t *testing.T) {
	backend := cpu.New()
	cell := nn.NewLSTMCell(3, 2, backend, nil)

	x := tensor.Zeros[float32](tensor.Shape{1, 4}, backend)
	assert.Panics(t, func() { cell.Step(x, nn.ZeroState(1, 2, backend)) })

	x = tensor.Zeros[float32](tensor.Shape{1, 3}, backend)
	assert.Panics(t, func() { cell.Step(x, nn.ZeroState(2, 2, backend)) })
}

func TestLSTMCell_StateDictNames(t *testing.T) {
	backend := cpu.New()
	cell := nn.NewLSTMCell(3, 4, backend, nil)

	sd := cell.StateDict()
	require.Len(t, sd, 4)
	assert.Equal(t, tensor.Shape{16, 3}, sd["weight_ih"].Shape())
	assert.Equal(t, tensor.Shape{16, 4}, sd["weight_hh"].Shape())
	assert.Equal(t, tensor.Shape{16}, sd["bias_ih"].Shape())
	assert.Equal(t, tensor.Shape{16}, sd["bias_hh"].Shape())
}

func TestLSTM_Shapes(t *testing.T) {
	backend := cpu.New()

	tests := []struct {
		name          string
		layers        int
		bidirectional bool
		wantFeatures  int
		wantFinals    int
	}{
		{"single", 1, false, 8, 1},
		{"bidirectional", 1, true, 16, 2},
		{"stacked", 2, false, 8, 2},
		{"stacked bidirectional", 2, true, 16, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lstm := nn.NewLSTM(nn.LSTMConfig{
				InputSize:     3,
				HiddenSize:    8,
				NumLayers:     tt.layers,
				Bidirectional: tt.bidirectional,
			}, backend, nn.NewRNG(42))

			x := tensor.Randn[float32](tensor.Shape{2, 5, 3}, nn.NewRNG(1), backend)
			out, finals, err := lstm.Forward(x, []int{5, 3})
			require.NoError(t, err)

			assert.Equal(t, tensor.Shape{2, 5, tt.wantFeatures}, out.Shape())
			require.Len(t, finals, tt.wantFinals)
			for _, s := range finals {
				assert.Equal(t, tensor.Shape{2, 8}, s.H.Shape())
				assert.Equal(t, tensor.Shape{2, 8}, s.C.Shape())
			}
		})
	}
}

func TestLSTM_PaddingIsIgnored(t *testing.T) {
	backend := cpu.New()
	lstm := nn.NewLSTM(nn.LSTMConfig{InputSize: 2, HiddenSize: 4, NumLayers: 1, Bidirectional: true},
		backend, nn.NewRNG(3))

	// Row 1 has length 2; its padded tail is garbage that must not leak.
	padded := tensor.MustFromSlice([]float32{
		0.1, 0.2, 0.3, 0.4, 0.5, 0.6,
		0.7, 0.8, 0.9, 1.0, 9, 9,
	}, tensor.Shape{2, 3, 2}, backend)
	out, finals, err := lstm.Forward(padded, []int{3, 2})
	require.NoError(t, err)

	// Same row alone, unpadded.
	alone := tensor.MustFromSlice([]float32{0.7, 0.8, 0.9, 1.0}, tensor.Shape{1, 2, 2}, backend)
	ref, refFinals, err := lstm.Forward(alone, []int{2})
	require.NoError(t, err)

	for step := 0; step < 2; step++ {
		for f := 0; f < 8; f++ {
			assert.InDelta(t, ref.At(0, step, f), out.At(1, step, f), 1e-5, "step %d feature %d", step, f)
		}
	}
	for f := 0; f < 8; f++ {
		assert.Equal(t, float32(0), out.At(1, 2, f), "padded output must be zero")
	}
	for i, s := range finals {
		for f := 0; f < 4; f++ {
			assert.InDelta(t, refFinals[i].H.At(0, f), s.H.At(1, f), 1e-5)
			assert.InDelta(t, refFinals[i].C.At(0, f), s.C.At(1, f), 1e-5)
		}
	}
}

func TestLSTM_ForwardErrors(t *testing.T) {
	backend := cpu.New()
	lstm := nn.NewLSTM(nn.LSTMConfig{InputSize: 2, HiddenSize: 4, NumLayers: 1}, backend, nil)
	x := tensor.Zeros[float32](tensor.Shape{2, 3, 2}, backend)

	_, _, err := lstm.Forward(x, []int{3})
	require.ErrorIs(t, err, nn.ErrInvalidLengths)

	_, _, err = lstm.Forward(x, []int{3, 0})
	require.ErrorIs(t, err, nn.ErrInvalidLengths)

	_, _, err = lstm.Forward(x, []int{4, 1})
	require.ErrorIs(t, err, nn.ErrInvalidLengths)

	_, _, err = lstm.Forward(tensor.Zeros[float32](tensor.Shape{2, 3, 5}, backend), []int{3, 3})
	require.Error(t, err)
}

func TestLSTM_StateDict(t *testing.T) {
	backend := cpu.New()
	cfg := nn.LSTMConfig{InputSize: 2, HiddenSize: 3, NumLayers: 2, Bidirectional: true}
	src := nn.NewLSTM(cfg, backend, nn.NewRNG(1))

	sd := src.StateDict()
	assert.Len(t, sd, 16)
	assert.Equal(t, tensor.Shape{12, 2}, sd["weight_ih_l0"].Shape())
	assert.Equal(t, tensor.Shape{12, 2}, sd["weight_ih_l0_reverse"].Shape())
	assert.Equal(t, tensor.Shape{12, 6}, sd["weight_ih_l1"].Shape())
	assert.Equal(t, tensor.Shape{12, 3}, sd["weight_hh_l1_reverse"].Shape())

	dst := nn.NewLSTM(cfg, backend, nn.NewRNG(2))
	require.NoError(t, dst.LoadStateDict(sd))

	x := tensor.Randn[float32](tensor.Shape{1, 4, 2}, nn.NewRNG(5), backend)
	a, _, err := src.Forward(x, []int{4})
	require.NoError(t, err)
	b, _, err := dst.Forward(x, []int{4})
	require.NoError(t, err)
	assert.Equal(t, a.Data(), b.Data())
}
