// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ptrnet/backend/cpu"
	"github.com/born-ml/ptrnet/nn"
	"github.com/born-ml/ptrnet/tensor"
)

func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = cpu.New()
}

func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{2, 3}, raw.Shape())
	assert.Equal(t, tensor.Float32, raw.DType())
	assert.Equal(t, tensor.CPU, raw.Device())
	assert.Len(t, raw.AsFloat32(), 6)

	_, err = tensor.NewRaw(tensor.Shape{2, 0}, tensor.Float32, tensor.CPU)
	require.Error(t, err)
}

func TestCreationFunctions(t *testing.T) {
	backend := cpu.New()

	assert.Equal(t, []float32{0, 0, 0}, tensor.Zeros[float32](tensor.Shape{3}, backend).Data())
	assert.Equal(t, []int64{1, 1}, tensor.Ones[int64](tensor.Shape{2}, backend).Data())
	assert.Equal(t, []bool{true, true}, tensor.Full(tensor.Shape{2}, true, backend).Data())
	assert.Equal(t, []int64{0, 1, 2, 3}, tensor.Arange[int64](4, backend).Data())
	assert.Equal(t, tensor.Shape{1}, tensor.Scalar[float32](2, backend).Shape())

	u := tensor.Uniform[float32](tensor.Shape{100}, -0.5, 0.5, nn.NewRNG(1), backend)
	for _, v := range u.Data() {
		assert.GreaterOrEqual(t, v, float32(-0.5))
		assert.Less(t, v, float32(0.5))
	}

	_, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{2, 2}, backend)
	require.Error(t, err)
}

func TestMaskOperations(t *testing.T) {
	backend := cpu.New()
	a := tensor.MustFromSlice([]bool{true, true, false}, tensor.Shape{3}, backend)
	b := tensor.MustFromSlice([]bool{true, false, false}, tensor.Shape{3}, backend)

	assert.Equal(t, []bool{true, false, false}, tensor.And(a, b).Data())
	assert.Equal(t, []bool{false, false, true}, tensor.Not(a).Data())

	x := tensor.MustFromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend)
	y := tensor.Scalar[float32](-1, backend)
	assert.Equal(t, []float32{1, 2, -1}, tensor.Where(a, x, y).Data())
}

func TestStackAndCat(t *testing.T) {
	backend := cpu.New()
	a := tensor.MustFromSlice([]int64{1, 2}, tensor.Shape{2}, backend)
	b := tensor.MustFromSlice([]int64{3, 4}, tensor.Shape{2}, backend)

	stacked := tensor.Stack([]*tensor.Tensor[int64, *cpu.Backend]{a, b}, 1)
	assert.Equal(t, tensor.Shape{2, 2}, stacked.Shape())
	assert.Equal(t, []int64{1, 3, 2, 4}, stacked.Data())

	cat := tensor.Cat([]*tensor.Tensor[int64, *cpu.Backend]{a, b}, 0)
	assert.Equal(t, []int64{1, 2, 3, 4}, cat.Data())
}

func TestBroadcastShapes(t *testing.T) {
	out, needs, err := tensor.BroadcastShapes(tensor.Shape{2, 1, 4}, tensor.Shape{3, 1})
	require.NoError(t, err)
	assert.True(t, needs)
	assert.Equal(t, tensor.Shape{2, 3, 4}, out)

	_, _, err = tensor.BroadcastShapes(tensor.Shape{2, 3}, tensor.Shape{4, 3})
	require.Error(t, err)
}
