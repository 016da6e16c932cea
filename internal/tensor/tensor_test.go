package tensor_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ptrnet/internal/backend/cpu"
	"github.com/born-ml/ptrnet/internal/tensor"
)

func TestFromSlice(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)
	assert.Equal(t, float32(6), x.At(1, 2))

	x.Set(9, 0, 1)
	assert.Equal(t, []float32{1, 9, 3, 4, 5, 6}, x.Data())

	_, err = tensor.FromSlice([]float32{1, 2}, tensor.Shape{3}, backend)
	assert.Error(t, err)

	assert.Panics(t, func() { x.At(2, 0) })
}

func TestCreation(t *testing.T) {
	backend := cpu.New()

	assert.Equal(t, []int64{0, 1, 2, 3}, tensor.Arange[int64](4, backend).Data())
	assert.Equal(t, []bool{true, true}, tensor.Ones[bool](tensor.Shape{2}, backend).Data())
	assert.Equal(t, []float32{-1e9}, tensor.Scalar[float32](-1e9, backend).Data())

	rng := rand.New(rand.NewSource(1))
	u := tensor.Uniform[float32](tensor.Shape{100}, -0.5, 0.5, rng, backend)
	for _, v := range u.Data() {
		assert.GreaterOrEqual(t, v, float32(-0.5))
		assert.Less(t, v, float32(0.5))
	}

	// Same seed, same values.
	a := tensor.Randn[float32](tensor.Shape{8}, rand.New(rand.NewSource(7)), backend)
	b := tensor.Randn[float32](tensor.Shape{8}, rand.New(rand.NewSource(7)), backend)
	assert.Equal(t, a.Data(), b.Data())
}

func TestStackAndSelect(t *testing.T) {
	backend := cpu.New()

	r0 := tensor.MustFromSlice([]float32{1, 2}, tensor.Shape{2}, backend)
	r1 := tensor.MustFromSlice([]float32{3, 4}, tensor.Shape{2}, backend)

	s := tensor.Stack([]*tensor.Tensor[float32, *cpu.CPUBackend]{r0, r1}, 1)
	assert.Equal(t, tensor.Shape{2, 2}, s.Shape())
	assert.Equal(t, []float32{1, 3, 2, 4}, s.Data())

	assert.Equal(t, []float32{3, 4}, s.Select(1, 1).Data())
	assert.Equal(t, tensor.Shape{2}, s.Select(-1, 0).Shape())
}

func TestWhereAndBooleans(t *testing.T) {
	backend := cpu.New()

	mask := tensor.MustFromSlice([]bool{true, false, true}, tensor.Shape{3}, backend)
	x := tensor.MustFromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend)

	out := tensor.Where(mask, x, tensor.Scalar[float32](0, backend))
	assert.Equal(t, []float32{1, 0, 3}, out.Data())

	assert.Equal(t, []bool{false, true, false}, tensor.Not(mask).Data())
	assert.Equal(t, []bool{false, false, true},
		tensor.And(mask, tensor.MustFromSlice([]bool{false, true, true}, tensor.Shape{3}, backend)).Data())
}

func TestNew_DTypeMismatchPanics(t *testing.T) {
	backend := cpu.New()
	raw, err := tensor.NewRaw(tensor.Shape{1}, tensor.Int64, tensor.CPU)
	require.NoError(t, err)
	assert.Panics(t, func() { tensor.New[float32](raw, backend) })
}
