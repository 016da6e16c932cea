package cpu

import (
	"fmt"

	"github.com/born-ml/ptrnet/internal/tensor"
)

// Lower returns a bool tensor holding a < b, with broadcasting.
func (cpu *CPUBackend) Lower(a, b *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("lower: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}
	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("lower: %v", err))
	}

	result := tensor.MustNewRaw("lower", outShape, tensor.Bool, cpu.device)
	switch a.DType() {
	case tensor.Float32:
		lowerKernel[float32](result, a, b)
	case tensor.Float64:
		lowerKernel[float64](result, a, b)
	case tensor.Int32:
		lowerKernel[int32](result, a, b)
	case tensor.Int64:
		lowerKernel[int64](result, a, b)
	default:
		panic(fmt.Sprintf("lower: unsupported dtype %s", a.DType()))
	}
	return result
}

func lowerKernel[T number](dst, a, b *tensor.RawTensor) {
	out := dst.AsBool()
	av, bv := view[T](a), view[T](b)
	strides := [][]int{
		tensor.BroadcastStrides(a.Shape(), dst.Shape()),
		tensor.BroadcastStrides(b.Shape(), dst.Shape()),
	}
	walk(dst.Shape(), strides, nil, func(i int, offs []int) {
		out[i] = av[offs[0]] < bv[offs[1]]
	})
}

// And computes the logical AND of two bool tensors, with broadcasting.
func (cpu *CPUBackend) And(a, b *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() != tensor.Bool || b.DType() != tensor.Bool {
		panic(fmt.Sprintf("and: expected bool tensors, got %s and %s", a.DType(), b.DType()))
	}
	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("and: %v", err))
	}

	result := tensor.MustNewRaw("and", outShape, tensor.Bool, cpu.device)
	out, av, bv := result.AsBool(), a.AsBool(), b.AsBool()
	strides := [][]int{
		tensor.BroadcastStrides(a.Shape(), outShape),
		tensor.BroadcastStrides(b.Shape(), outShape),
	}
	walk(outShape, strides, nil, func(i int, offs []int) {
		out[i] = av[offs[0]] && bv[offs[1]]
	})
	return result
}

// Not computes the logical NOT of a bool tensor.
func (cpu *CPUBackend) Not(x *tensor.RawTensor) *tensor.RawTensor {
	if x.DType() != tensor.Bool {
		panic(fmt.Sprintf("not: expected bool tensor, got %s", x.DType()))
	}

	result := tensor.MustNewRaw("not", x.Shape(), tensor.Bool, cpu.device)
	out := result.AsBool()
	for i, v := range x.AsBool() {
		out[i] = !v
	}
	return result
}
