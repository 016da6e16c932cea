package tensor

// Cat concatenates tensors along dim.
//
// All tensors must have the same shape except along the concatenation
// dimension. Supports negative dim indexing (-1 = last dimension).
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}

	raws := make([]*RawTensor, len(tensors))
	for i, t := range tensors {
		raws[i] = t.raw
	}

	backend := tensors[0].backend
	return New[T, B](backend.Cat(raws, dim), backend)
}

// Stack joins same-shaped tensors along a new dimension inserted at dim.
//
// Example:
//
//	// L tensors of shape [B, L] → [B, L, L] (batch, step, candidate)
//	scores := tensor.Stack(perStep, 1)
func Stack[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	if len(tensors) == 0 {
		panic("stack: at least one tensor required")
	}

	rank := len(tensors[0].Shape()) + 1
	if dim < 0 {
		dim += rank
	}

	expanded := make([]*Tensor[T, B], len(tensors))
	for i, t := range tensors {
		expanded[i] = t.Unsqueeze(dim)
	}
	return Cat(expanded, dim)
}

// Where selects elements from x where cond is true and from y elsewhere.
// All three operands broadcast against each other.
//
// Example:
//
//	masked := tensor.Where(mask, scores, tensor.Scalar[float32](-1e9, backend))
func Where[T DType, B Backend](cond *Tensor[bool, B], x, y *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](x.backend.Where(cond.raw, x.raw, y.raw), x.backend)
}

// And computes the element-wise logical AND of two bool tensors.
func And[B Backend](a, b *Tensor[bool, B]) *Tensor[bool, B] {
	return New[bool, B](a.backend.And(a.raw, b.raw), a.backend)
}

// Not computes the element-wise logical NOT of a bool tensor.
func Not[B Backend](x *Tensor[bool, B]) *Tensor[bool, B] {
	return New[bool, B](x.backend.Not(x.raw), x.backend)
}
