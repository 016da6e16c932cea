package cpu

import (
	"fmt"

	"github.com/born-ml/ptrnet/internal/tensor"
)

// reducedShape drops dim from shape, or keeps it with size 1.
func reducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	if keepDim {
		out := shape.Clone()
		out[dim] = 1
		return out
	}
	out := make(tensor.Shape, 0, len(shape)-1)
	out = append(out, shape[:dim]...)
	return append(out, shape[dim+1:]...)
}

// SumDim sums along dim.
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape))

	result := tensor.MustNewRaw("sumdim", reducedShape(shape, dim, keepDim), x.DType(), cpu.device)
	l := lanesAlong(shape, dim)

	switch x.DType() {
	case tensor.Float32:
		sumKernel(view[float32](result), view[float32](x), l)
	case tensor.Float64:
		sumKernel(view[float64](result), view[float64](x), l)
	case tensor.Int32:
		sumKernel(view[int32](result), view[int32](x), l)
	case tensor.Int64:
		sumKernel(view[int64](result), view[int64](x), l)
	default:
		panic(fmt.Sprintf("sumdim: unsupported dtype %s", x.DType()))
	}
	return result
}

func sumKernel[T number](dst, src []T, l lanes) {
	for r := range l.count() {
		base := l.base(r)
		var sum T
		for j := 0; j < l.size; j++ {
			sum += src[base+j*l.inner]
		}
		dst[r] = sum
	}
}

// Argmax returns int64 indices of the maximum along dim (dim removed).
func (cpu *CPUBackend) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	_, indices := cpu.MaxDim(x, dim, false)
	return indices
}

// MaxDim returns the maximum values along dim and their int64 indices.
// Ties resolve to the first (lowest) index.
func (cpu *CPUBackend) MaxDim(x *tensor.RawTensor, dim int, keepDim bool) (values, indices *tensor.RawTensor) {
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape))

	outShape := reducedShape(shape, dim, keepDim)
	values = tensor.MustNewRaw("maxdim", outShape, x.DType(), cpu.device)
	indices = tensor.MustNewRaw("maxdim", outShape, tensor.Int64, cpu.device)
	l := lanesAlong(shape, dim)

	switch x.DType() {
	case tensor.Float32:
		maxKernel(view[float32](values), indices.AsInt64(), view[float32](x), l)
	case tensor.Float64:
		maxKernel(view[float64](values), indices.AsInt64(), view[float64](x), l)
	case tensor.Int32:
		maxKernel(view[int32](values), indices.AsInt64(), view[int32](x), l)
	case tensor.Int64:
		maxKernel(view[int64](values), indices.AsInt64(), view[int64](x), l)
	default:
		panic(fmt.Sprintf("maxdim: unsupported dtype %s", x.DType()))
	}
	return values, indices
}

func maxKernel[T number](values []T, indices []int64, src []T, l lanes) {
	for r := range l.count() {
		base := l.base(r)
		best, bestIdx := src[base], 0
		for j := 1; j < l.size; j++ {
			if v := src[base+j*l.inner]; v > best {
				best, bestIdx = v, j
			}
		}
		values[r] = best
		indices[r] = int64(bestIdx)
	}
}
