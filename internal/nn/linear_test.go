package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ptrnet/internal/backend/cpu"
	"github.com/born-ml/ptrnet/internal/nn"
	"github.com/born-ml/ptrnet/internal/tensor"
)

func TestLinear_Forward(t *testing.T) {
	backend := cpu.New()
	layer := nn.NewLinear(2, 3, backend, nn.WithRNG(nn.NewRNG(1)))

	// W = [[1,0],[0,1],[1,1]], b = [0.5, 0, -1]
	copy(layer.Weight().Tensor().Data(), []float32{1, 0, 0, 1, 1, 1})
	copy(layer.Bias().Tensor().Data(), []float32{0.5, 0, -1})

	x := tensor.MustFromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	y := layer.Forward(x)

	assert.Equal(t, tensor.Shape{2, 3}, y.Shape())
	assert.InDeltaSlice(t, []float32{1.5, 2, 2, 3.5, 4, 6}, y.Data(), 1e-6)
}

func TestLinear_Forward3D(t *testing.T) {
	backend := cpu.New()
	layer := nn.NewLinear(4, 5, backend, nn.WithoutBias(), nn.WithRNG(nn.NewRNG(1)))

	x := tensor.Ones[float32](tensor.Shape{2, 3, 4}, backend)
	y := layer.Forward(x)
	assert.Equal(t, tensor.Shape{2, 3, 5}, y.Shape())

	// Every row of x is identical, so every output row must be too.
	data := y.Data()
	for r := 1; r < 6; r++ {
		assert.InDeltaSlice(t, data[:5], data[r*5:(r+1)*5], 1e-6)
	}
}

func TestLinear_WithoutBias(t *testing.T) {
	backend := cpu.New()
	layer := nn.NewLinear(3, 2, backend, nn.WithoutBias())

	assert.Nil(t, layer.Bias())
	require.Len(t, layer.Parameters(), 1)
	assert.Equal(t, 6, nn.CountParameters(layer.Parameters()))
}

func TestLinear_PanicsOnFeatureMismatch(t *testing.T) {
	backend := cpu.New()
	layer := nn.NewLinear(3, 2, backend)
	x := tensor.Zeros[float32](tensor.Shape{1, 4}, backend)

	assert.Panics(t, func() { layer.Forward(x) })
}

func TestLinear_StateDictRoundTrip(t *testing.T) {
	backend := cpu.New()
	src := nn.NewLinear(3, 2, backend, nn.WithRNG(nn.NewRNG(7)))
	dst := nn.NewLinear(3, 2, backend, nn.WithRNG(nn.NewRNG(8)))

	require.NoError(t, dst.LoadStateDict(src.StateDict()))
	assert.Equal(t, src.Weight().Tensor().Data(), dst.Weight().Tensor().Data())
	assert.Equal(t, src.Bias().Tensor().Data(), dst.Bias().Tensor().Data())
}

func TestLinear_LoadStateDictErrors(t *testing.T) {
	backend := cpu.New()
	layer := nn.NewLinear(3, 2, backend)

	err := layer.LoadStateDict(map[string]*tensor.RawTensor{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing weight")

	wrong := nn.NewLinear(2, 2, backend).StateDict()
	err = layer.LoadStateDict(wrong)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shape mismatch")
}

func TestStateDictPrefixes(t *testing.T) {
	backend := cpu.New()
	layer := nn.NewLinear(2, 2, backend)

	all := make(map[string]*tensor.RawTensor)
	nn.PrefixStateDict(all, "embedding", layer.StateDict())
	assert.Contains(t, all, "embedding.weight")
	assert.Contains(t, all, "embedding.bias")

	sub := nn.SubStateDict(all, "embedding")
	assert.Len(t, sub, 2)
	assert.Contains(t, sub, "weight")
	assert.Empty(t, nn.SubStateDict(all, "embed"))
}

func TestTanh(t *testing.T) {
	backend := cpu.New()
	act := nn.NewTanh[*cpu.CPUBackend]()

	x := tensor.MustFromSlice([]float32{0, 1, -1}, tensor.Shape{3}, backend)
	y := act.Forward(x)

	assert.InDelta(t, 0, y.At(0), 1e-6)
	assert.InDelta(t, 0.7615942, y.At(1), 1e-6)
	assert.InDelta(t, -0.7615942, y.At(2), 1e-6)
	assert.Empty(t, act.Parameters())
}
