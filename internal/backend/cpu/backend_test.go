package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ptrnet/internal/tensor"
)

func rawF32(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), data)
	return raw
}

func rawI64(t *testing.T, data []int64, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Int64, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsInt64(), data)
	return raw
}

func rawBool(t *testing.T, data []bool, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Bool, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsBool(), data)
	return raw
}

func TestCPUBackend_Metadata(t *testing.T) {
	backend := New()
	assert.Equal(t, "CPU", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
}

func TestAdd_Broadcast(t *testing.T) {
	backend := New()

	// [2, 3, 1] + [3, 2] → [2, 3, 2]
	a := rawF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3, 1})
	b := rawF32(t, []float32{10, 20, 30, 40, 50, 60}, tensor.Shape{3, 2})

	out := backend.Add(a, b)
	require.Equal(t, tensor.Shape{2, 3, 2}, out.Shape())
	assert.Equal(t, []float32{
		11, 21, 32, 42, 53, 63,
		14, 24, 35, 45, 56, 66,
	}, out.AsFloat32())
}

func TestBinary_SameShape(t *testing.T) {
	backend := New()
	a := rawF32(t, []float32{6, 8}, tensor.Shape{2})
	b := rawF32(t, []float32{2, 4}, tensor.Shape{2})

	assert.Equal(t, []float32{4, 4}, backend.Sub(a, b).AsFloat32())
	assert.Equal(t, []float32{12, 32}, backend.Mul(a, b).AsFloat32())
	assert.Equal(t, []float32{3, 2}, backend.Div(a, b).AsFloat32())

	// Inputs are never modified in place.
	assert.Equal(t, []float32{6, 8}, a.AsFloat32())
}

func TestScalarOps(t *testing.T) {
	backend := New()
	x := rawF32(t, []float32{1, -2}, tensor.Shape{2})

	assert.Equal(t, []float32{3, 0}, backend.AddScalar(x, float32(2)).AsFloat32())
	assert.Equal(t, []float32{-3, 6}, backend.MulScalar(x, float32(-3)).AsFloat32())
}

func TestAdd_IncompatibleShapesPanics(t *testing.T) {
	backend := New()
	a := rawF32(t, []float32{1, 2, 3}, tensor.Shape{3})
	b := rawF32(t, []float32{1, 2}, tensor.Shape{2})
	assert.Panics(t, func() { backend.Add(a, b) })
}

func TestMatMul(t *testing.T) {
	backend := New()

	a := rawF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := rawF32(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	out := backend.MatMul(a, b)
	require.Equal(t, tensor.Shape{2, 2}, out.Shape())
	assert.Equal(t, []float32{58, 64, 139, 154}, out.AsFloat32())
}

func TestMatMul_Int64(t *testing.T) {
	backend := New()
	a := rawI64(t, []int64{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := rawI64(t, []int64{1, 0, 0, 1}, tensor.Shape{2, 2})
	assert.Equal(t, []int64{1, 2, 3, 4}, backend.MatMul(a, b).AsInt64())
}

func TestMatMul_ShapeMismatchPanics(t *testing.T) {
	backend := New()
	a := rawF32(t, make([]float32, 6), tensor.Shape{2, 3})
	b := rawF32(t, make([]float32, 4), tensor.Shape{2, 2})
	assert.PanicsWithValue(t, "matmul: shape mismatch [2,3] @ [2,2]", func() { backend.MatMul(a, b) })
}

func TestBatchMatMul(t *testing.T) {
	backend := New()

	a := rawF32(t, []float32{1, 2, 3, 4, 1, 0, 0, 1}, tensor.Shape{2, 2, 2})
	b := rawF32(t, []float32{1, 0, 0, 1, 5, 6, 7, 8}, tensor.Shape{2, 2, 2})

	out := backend.BatchMatMul(a, b)
	require.Equal(t, tensor.Shape{2, 2, 2}, out.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, out.AsFloat32())
}

func TestLogSoftmax_MatchesLogOfSoftmax(t *testing.T) {
	backend := New()
	x := rawF32(t, []float32{1, 2, 3, -1, 0, 1}, tensor.Shape{2, 3})

	logProbs := backend.LogSoftmax(x, -1).AsFloat32()
	probs := backend.Softmax(x, -1).AsFloat32()

	for i := range probs {
		assert.InDelta(t, math.Log(float64(probs[i])), float64(logProbs[i]), 1e-5)
	}

	for row := 0; row < 2; row++ {
		sum := 0.0
		for j := 0; j < 3; j++ {
			sum += math.Exp(float64(logProbs[row*3+j]))
		}
		assert.InDelta(t, 1.0, sum, 1e-6)
	}
}

func TestLogSoftmax_LargeMagnitudesStayFinite(t *testing.T) {
	backend := New()
	x := rawF32(t, []float32{-1e9, -1e9, 0, -1e9, -1e9, -1e9}, tensor.Shape{2, 3})

	out := backend.LogSoftmax(x, 1).AsFloat32()
	for i, v := range out {
		assert.False(t, math.IsNaN(float64(v)) || math.IsInf(float64(v), 0), "element %d = %v", i, v)
	}
	assert.InDelta(t, 0, out[2], 1e-6)
	assert.InDelta(t, -math.Log(3), out[3], 1e-6)
}

func TestSoftmax_MiddleDimension(t *testing.T) {
	backend := New()
	// [1, 2, 2]: softmax over dim 1 pairs (0,2) and (1,3).
	x := rawF32(t, []float32{0, 0, 0, 100}, tensor.Shape{1, 2, 2})

	out := backend.Softmax(x, 1).AsFloat32()
	assert.InDelta(t, 0.5, out[0], 1e-6)
	assert.InDelta(t, 0.5, out[2], 1e-6)
	assert.InDelta(t, 1.0, out[3], 1e-6)
}

func TestMaxDim_TiesResolveToFirst(t *testing.T) {
	backend := New()
	x := rawF32(t, []float32{3, 7, 7, 1, -5, -5, -5, -5}, tensor.Shape{2, 4})

	values, indices := backend.MaxDim(x, 1, false)
	assert.Equal(t, tensor.Shape{2}, values.Shape())
	assert.Equal(t, []float32{7, -5}, values.AsFloat32())
	assert.Equal(t, []int64{1, 0}, indices.AsInt64())

	_, kept := backend.MaxDim(x, 1, true)
	assert.Equal(t, tensor.Shape{2, 1}, kept.Shape())

	assert.Equal(t, []int64{1, 0}, backend.Argmax(x, -1).AsInt64())
}

func TestSumDim(t *testing.T) {
	backend := New()
	x := rawF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	assert.Equal(t, []float32{5, 7, 9}, backend.SumDim(x, 0, false).AsFloat32())
	rows := backend.SumDim(x, 1, true)
	assert.Equal(t, tensor.Shape{2, 1}, rows.Shape())
	assert.Equal(t, []float32{6, 15}, rows.AsFloat32())
}

func TestGather(t *testing.T) {
	backend := New()

	// [B=2, L=3, H=2], pick one position per batch element.
	x := rawF32(t, []float32{
		0, 1, 2, 3, 4, 5,
		10, 11, 12, 13, 14, 15,
	}, tensor.Shape{2, 3, 2})
	idx := rawI64(t, []int64{2, 2, 0, 0}, tensor.Shape{2, 1, 2})

	out := backend.Gather(x, 1, idx)
	require.Equal(t, tensor.Shape{2, 1, 2}, out.Shape())
	assert.Equal(t, []float32{4, 5, 10, 11}, out.AsFloat32())
}

func TestGather_OutOfBoundsPanics(t *testing.T) {
	backend := New()
	x := rawF32(t, []float32{1, 2}, tensor.Shape{1, 2})
	idx := rawI64(t, []int64{2}, tensor.Shape{1, 1})
	assert.Panics(t, func() { backend.Gather(x, 1, idx) })
}

func TestWhere_Broadcast(t *testing.T) {
	backend := New()
	cond := rawBool(t, []bool{true, false, true}, tensor.Shape{3})
	x := rawF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	y := rawF32(t, []float32{-9}, tensor.Shape{1})

	out := backend.Where(cond, x, y)
	assert.Equal(t, tensor.Shape{2, 3}, out.Shape())
	assert.Equal(t, []float32{1, -9, 3, 4, -9, 6}, out.AsFloat32())
}

func TestLowerAndNot(t *testing.T) {
	backend := New()
	pos := rawI64(t, []int64{0, 1, 2}, tensor.Shape{1, 3})
	lengths := rawI64(t, []int64{3, 1}, tensor.Shape{2, 1})

	valid := backend.Lower(pos, lengths)
	assert.Equal(t, tensor.Shape{2, 3}, valid.Shape())
	assert.Equal(t, []bool{true, true, true, true, false, false}, valid.AsBool())

	both := backend.And(valid, rawBool(t, []bool{true, false, true}, tensor.Shape{3}))
	assert.Equal(t, []bool{true, false, true, true, false, false}, both.AsBool())

	assert.Equal(t, []bool{false, false, false, false, true, true}, backend.Not(valid).AsBool())
}

func TestTranspose(t *testing.T) {
	backend := New()
	x := rawF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	out := backend.Transpose(x)
	assert.Equal(t, tensor.Shape{3, 2}, out.Shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, out.AsFloat32())

	// [L=2, B=1, D=3] → [B, L, D]
	seq := rawF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 1, 3})
	bm := backend.Transpose(seq, 1, 0, 2)
	assert.Equal(t, tensor.Shape{1, 2, 3}, bm.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, bm.AsFloat32())
}

func TestExpandNarrowCat(t *testing.T) {
	backend := New()

	row := rawBool(t, []bool{true, false}, tensor.Shape{1, 2})
	expanded := backend.Expand(row, tensor.Shape{3, 2})
	assert.Equal(t, []bool{true, false, true, false, true, false}, expanded.AsBool())

	x := rawF32(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, tensor.Shape{2, 4})
	left := backend.Narrow(x, 1, 0, 2)
	right := backend.Narrow(x, 1, 2, 2)
	assert.Equal(t, []float32{1, 2, 5, 6}, left.AsFloat32())
	assert.Equal(t, []float32{3, 4, 7, 8}, right.AsFloat32())

	joined := backend.Cat([]*tensor.RawTensor{left, right}, 1)
	assert.Equal(t, x.AsFloat32(), joined.AsFloat32())

	stacked := backend.Cat([]*tensor.RawTensor{left, right}, 0)
	assert.Equal(t, tensor.Shape{4, 2}, stacked.Shape())
	assert.Equal(t, []float32{1, 2, 5, 6, 3, 4, 7, 8}, stacked.AsFloat32())
}

func TestReshapeSqueezeUnsqueeze(t *testing.T) {
	backend := New()
	x := rawF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	r := backend.Reshape(x, tensor.Shape{3, -1})
	assert.Equal(t, tensor.Shape{3, 2}, r.Shape())

	u := backend.Unsqueeze(x, 1)
	assert.Equal(t, tensor.Shape{2, 1, 3}, u.Shape())
	assert.Equal(t, tensor.Shape{2, 3}, backend.Squeeze(u, 1).Shape())

	// Reshape copies, so writes to the result leave the source untouched.
	r.AsFloat32()[0] = 100
	assert.Equal(t, float32(1), x.AsFloat32()[0])

	assert.Panics(t, func() { backend.Squeeze(x, 0) })
}

func TestCast(t *testing.T) {
	backend := New()

	b := rawBool(t, []bool{true, false}, tensor.Shape{2})
	assert.Equal(t, []float32{1, 0}, backend.Cast(b, tensor.Float32).AsFloat32())

	f := rawF32(t, []float32{2.7, -1.2, 0}, tensor.Shape{3})
	assert.Equal(t, []int64{2, -1, 0}, backend.Cast(f, tensor.Int64).AsInt64())
	assert.Equal(t, []bool{true, true, false}, backend.Cast(f, tensor.Bool).AsBool())
}

func TestUnaryMath(t *testing.T) {
	backend := New()
	x := rawF32(t, []float32{0, 1, -1000, 1000}, tensor.Shape{4})

	sig := backend.Sigmoid(x).AsFloat32()
	assert.InDelta(t, 0.5, sig[0], 1e-7)
	assert.InDelta(t, 0.7310586, sig[1], 1e-6)
	assert.InDelta(t, 0, sig[2], 1e-7)
	assert.InDelta(t, 1, sig[3], 1e-7)

	th := backend.Tanh(x).AsFloat32()
	assert.InDelta(t, math.Tanh(1), th[1], 1e-6)

	e := backend.Exp(rawF32(t, []float32{0, 1}, tensor.Shape{2})).AsFloat32()
	assert.InDelta(t, math.E, e[1], 1e-6)

	l := backend.Log(rawF32(t, []float32{1, float32(math.E)}, tensor.Shape{2})).AsFloat32()
	assert.InDelta(t, 1, l[1], 1e-6)

	assert.Panics(t, func() { backend.Exp(rawI64(t, []int64{1}, tensor.Shape{1})) })
}
