package cpu

import (
	"fmt"

	"github.com/born-ml/ptrnet/internal/tensor"
)

// Gather selects elements along dim using an int64 index tensor.
//
// The index tensor must have the same rank as x and match x on every
// dimension except dim. The result has the index tensor's shape:
//
//	out[..., i, ...] = x[..., index[..., i, ...], ...]
func (cpu *CPUBackend) Gather(x *tensor.RawTensor, dim int, index *tensor.RawTensor) *tensor.RawTensor {
	xShape, idxShape := x.Shape(), index.Shape()
	dim = tensor.NormalizeDim(dim, len(xShape))

	if index.DType() != tensor.Int64 {
		panic(fmt.Sprintf("gather: index must be int64, got %s", index.DType()))
	}
	if len(idxShape) != len(xShape) {
		panic(fmt.Sprintf("gather: index rank %d does not match input rank %d", len(idxShape), len(xShape)))
	}
	for d := range xShape {
		if d != dim && idxShape[d] != xShape[d] {
			panic(fmt.Sprintf("gather: index shape %v incompatible with input %v at dimension %d", idxShape, xShape, d))
		}
	}

	result := tensor.MustNewRaw("gather", idxShape, x.DType(), cpu.device)

	// Walk the index tensor; the x offset ignores dim, which comes from the index value.
	xStrides := append([]int(nil), x.Strides()...)
	dimStride := xStrides[dim]
	xStrides[dim] = 0

	size := x.DType().Size()
	out, in, idx := result.Data(), x.Data(), index.AsInt64()
	walk(idxShape, [][]int{xStrides}, nil, func(i int, offs []int) {
		j := idx[i]
		if j < 0 || int(j) >= xShape[dim] {
			panic(fmt.Sprintf("gather: index %d out of bounds for dimension %d (size %d)", j, dim, xShape[dim]))
		}
		src := offs[0] + int(j)*dimStride
		copy(out[i*size:(i+1)*size], in[src*size:(src+1)*size])
	})
	return result
}

// Where selects from x where condition is true and from y otherwise.
// All three operands broadcast to a common shape.
func (cpu *CPUBackend) Where(condition, x, y *tensor.RawTensor) *tensor.RawTensor {
	if condition.DType() != tensor.Bool {
		panic(fmt.Sprintf("where: condition must be bool, got %s", condition.DType()))
	}
	if x.DType() != y.DType() {
		panic(fmt.Sprintf("where: dtype mismatch %s vs %s", x.DType(), y.DType()))
	}

	shape, _, err := tensor.BroadcastShapes(condition.Shape(), x.Shape())
	if err == nil {
		shape, _, err = tensor.BroadcastShapes(shape, y.Shape())
	}
	if err != nil {
		panic(fmt.Sprintf("where: %v", err))
	}

	result := tensor.MustNewRaw("where", shape, x.DType(), cpu.device)

	size := x.DType().Size()
	out, cond := result.Data(), condition.AsBool()
	xData, yData := x.Data(), y.Data()
	strides := [][]int{
		tensor.BroadcastStrides(condition.Shape(), shape),
		tensor.BroadcastStrides(x.Shape(), shape),
		tensor.BroadcastStrides(y.Shape(), shape),
	}
	walk(shape, strides, nil, func(i int, offs []int) {
		src, off := yData, offs[2]
		if cond[offs[0]] {
			src, off = xData, offs[1]
		}
		copy(out[i*size:(i+1)*size], src[off*size:(off+1)*size])
	})
	return result
}
