package cpu

import (
	"fmt"

	"github.com/born-ml/ptrnet/internal/tensor"
)

// walk visits every element of shape in row-major order. For each operand k
// it tracks offs[k] = base[k] + sum(coord[d] * strides[k][d]), updating the
// offsets incrementally instead of recomputing them per element.
func walk(shape tensor.Shape, strides [][]int, base []int, fn func(i int, offs []int)) {
	offs := make([]int, len(strides))
	copy(offs, base)

	rank := len(shape)
	coords := make([]int, rank)
	n := shape.NumElements()

	for i := 0; i < n; i++ {
		fn(i, offs)
		for d := rank - 1; d >= 0; d-- {
			coords[d]++
			for k := range offs {
				offs[k] += strides[k][d]
			}
			if coords[d] < shape[d] {
				break
			}
			for k := range offs {
				offs[k] -= strides[k][d] * shape[d]
			}
			coords[d] = 0
		}
	}
}

// copyStrided fills dst (contiguous) from src read through strides and base,
// treating elements as opaque byte blocks so any dtype is supported.
func copyStrided(dst, src *tensor.RawTensor, strides []int, base int) {
	size := src.DType().Size()
	out, in := dst.Data(), src.Data()
	walk(dst.Shape(), [][]int{strides}, []int{base}, func(i int, offs []int) {
		copy(out[i*size:(i+1)*size], in[offs[0]*size:(offs[0]+1)*size])
	})
}

// Reshape returns a copy of t with a new shape of the same element count.
// A single -1 dimension is inferred.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	shape := newShape.Clone()
	infer := -1
	known := 1
	for i, d := range shape {
		if d == -1 {
			if infer >= 0 {
				panic("reshape: only one dimension can be inferred")
			}
			infer = i
			continue
		}
		known *= d
	}
	if infer >= 0 && known > 0 {
		shape[infer] = t.NumElements() / known
	}

	result, err := t.Clone().View(shape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return result
}

// Transpose permutes dimensions. With no axes, all dimensions are reversed.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	rank := len(shape)

	if len(axes) == 0 {
		axes = make([]int, rank)
		for i := range axes {
			axes[i] = rank - 1 - i
		}
	}
	if len(axes) != rank {
		panic(fmt.Sprintf("transpose: expected %d axes, got %d", rank, len(axes)))
	}

	seen := make([]bool, rank)
	outShape := make(tensor.Shape, rank)
	strides := make([]int, rank)
	srcStrides := t.Strides()
	for i, ax := range axes {
		ax = tensor.NormalizeDim(ax, rank)
		if seen[ax] {
			panic(fmt.Sprintf("transpose: axis %d repeated in %v", ax, axes))
		}
		seen[ax] = true
		outShape[i] = shape[ax]
		strides[i] = srcStrides[ax]
	}

	result := tensor.MustNewRaw("transpose", outShape, t.DType(), cpu.device)
	copyStrided(result, t, strides, 0)
	return result
}

// Expand broadcasts x to shape, materialising the repeated elements.
func (cpu *CPUBackend) Expand(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	out, _, err := tensor.BroadcastShapes(x.Shape(), shape)
	if err != nil || !out.Equal(shape) {
		panic(fmt.Sprintf("expand: cannot expand %v to %v", x.Shape(), shape))
	}

	result := tensor.MustNewRaw("expand", shape, x.DType(), cpu.device)
	copyStrided(result, x, tensor.BroadcastStrides(x.Shape(), shape), 0)
	return result
}

// Unsqueeze inserts a dimension of size 1 at dim.
func (cpu *CPUBackend) Unsqueeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape)+1)

	newShape := make(tensor.Shape, 0, len(shape)+1)
	newShape = append(newShape, shape[:dim]...)
	newShape = append(newShape, 1)
	newShape = append(newShape, shape[dim:]...)
	return cpu.Reshape(x, newShape)
}

// Squeeze removes a dimension of size 1 at dim.
func (cpu *CPUBackend) Squeeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape))
	if shape[dim] != 1 {
		panic(fmt.Sprintf("squeeze: dimension %d has size %d, expected 1", dim, shape[dim]))
	}

	newShape := make(tensor.Shape, 0, len(shape)-1)
	newShape = append(newShape, shape[:dim]...)
	newShape = append(newShape, shape[dim+1:]...)
	return cpu.Reshape(x, newShape)
}

// Narrow copies the slice [start, start+length) along dim.
func (cpu *CPUBackend) Narrow(x *tensor.RawTensor, dim, start, length int) *tensor.RawTensor {
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape))
	if start < 0 || length <= 0 || start+length > shape[dim] {
		panic(fmt.Sprintf("narrow: range [%d, %d) out of bounds for dimension %d (size %d)",
			start, start+length, dim, shape[dim]))
	}

	outShape := shape.Clone()
	outShape[dim] = length

	result := tensor.MustNewRaw("narrow", outShape, x.DType(), cpu.device)
	copyStrided(result, x, x.Strides(), start*x.Strides()[dim])
	return result
}

// Cat concatenates tensors along dim.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}

	first := tensors[0]
	rank := len(first.Shape())
	dim = tensor.NormalizeDim(dim, rank)

	outShape := first.Shape().Clone()
	outShape[dim] = 0
	for _, t := range tensors {
		if t.DType() != first.DType() || len(t.Shape()) != rank {
			panic(fmt.Sprintf("cat: incompatible tensor %s%v with %s%v",
				t.DType(), t.Shape(), first.DType(), first.Shape()))
		}
		for d := range rank {
			if d != dim && t.Shape()[d] != first.Shape()[d] {
				panic(fmt.Sprintf("cat: shape mismatch %v vs %v at dimension %d", t.Shape(), first.Shape(), d))
			}
		}
		outShape[dim] += t.Shape()[dim]
	}

	result := tensor.MustNewRaw("cat", outShape, first.DType(), cpu.device)

	// Each input occupies a contiguous block of inner*size bytes per outer index.
	size := first.DType().Size()
	outer := outShape[:dim].NumElements()
	inner := outShape[dim+1:].NumElements()
	out := result.Data()
	rowBytes := outShape[dim] * inner * size

	offset := 0
	for _, t := range tensors {
		block := t.Shape()[dim] * inner * size
		in := t.Data()
		for o := range outer {
			copy(out[o*rowBytes+offset:o*rowBytes+offset+block], in[o*block:(o+1)*block])
		}
		offset += block
	}
	return result
}
