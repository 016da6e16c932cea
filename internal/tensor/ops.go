package tensor

// Add performs element-wise addition with broadcasting.
//
// Example:
//
//	enc := tensor.Zeros[float32](Shape{2, 4, 8}, backend) // [B, L, H]
//	dec := tensor.Zeros[float32](Shape{2, 1, 8}, backend) // [B, 1, H]
//	sum := enc.Add(dec)                                 // [2, 4, 8]
func (t *Tensor[T, B]) Add(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Add(t.raw, other.raw), t.backend)
}

// Sub performs element-wise subtraction with broadcasting.
func (t *Tensor[T, B]) Sub(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Sub(t.raw, other.raw), t.backend)
}

// Mul performs element-wise multiplication with broadcasting.
func (t *Tensor[T, B]) Mul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Mul(t.raw, other.raw), t.backend)
}

// Div performs element-wise division with broadcasting.
func (t *Tensor[T, B]) Div(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Div(t.raw, other.raw), t.backend)
}

// MatMul performs 2D matrix multiplication: (M, K) @ (K, N) → (M, N).
func (t *Tensor[T, B]) MatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.MatMul(t.raw, other.raw), t.backend)
}

// BatchMatMul performs batched matrix multiplication:
// (B, M, K) @ (B, K, N) → (B, M, N).
func (t *Tensor[T, B]) BatchMatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.BatchMatMul(t.raw, other.raw), t.backend)
}

// Reshape returns a tensor with the same data but a different shape.
// The new shape must have the same number of elements.
func (t *Tensor[T, B]) Reshape(newShape ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Reshape(t.raw, Shape(newShape)), t.backend)
}

// Transpose permutes the tensor's dimensions.
//
// If axes is empty, all dimensions are reversed.
//
// Example:
//
//	seqMajor := tensor.Zeros[float32](Shape{5, 2, 3}, backend) // [L, B, D]
//	batchMajor := seqMajor.Transpose(1, 0, 2)                 // [B, L, D]
func (t *Tensor[T, B]) Transpose(axes ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Transpose(t.raw, axes...), t.backend)
}

// Expand broadcasts the tensor to a larger shape following NumPy rules.
func (t *Tensor[T, B]) Expand(shape Shape) *Tensor[T, B] {
	return New[T, B](t.backend.Expand(t.raw, shape), t.backend)
}

// Unsqueeze inserts a dimension of size 1 at dim.
func (t *Tensor[T, B]) Unsqueeze(dim int) *Tensor[T, B] {
	return New[T, B](t.backend.Unsqueeze(t.raw, dim), t.backend)
}

// Squeeze removes a dimension of size 1 at dim.
func (t *Tensor[T, B]) Squeeze(dim int) *Tensor[T, B] {
	return New[T, B](t.backend.Squeeze(t.raw, dim), t.backend)
}

// Narrow returns the slice [start, start+length) along dim as a new tensor.
//
// Example:
//
//	out := tensor.Zeros[float32](Shape{2, 4, 16}, backend)
//	forward := out.Narrow(2, 0, 8)  // [2, 4, 8]
//	backward := out.Narrow(2, 8, 8) // [2, 4, 8]
func (t *Tensor[T, B]) Narrow(dim, start, length int) *Tensor[T, B] {
	return New[T, B](t.backend.Narrow(t.raw, dim, start, length), t.backend)
}

// Select picks index along dim and removes that dimension.
func (t *Tensor[T, B]) Select(dim, index int) *Tensor[T, B] {
	dim = NormalizeDim(dim, len(t.Shape()))
	return t.Narrow(dim, index, 1).Squeeze(dim)
}

// AddScalar adds a scalar to every element.
func (t *Tensor[T, B]) AddScalar(scalar T) *Tensor[T, B] {
	return New[T, B](t.backend.AddScalar(t.raw, scalar), t.backend)
}

// MulScalar multiplies every element by a scalar.
func (t *Tensor[T, B]) MulScalar(scalar T) *Tensor[T, B] {
	return New[T, B](t.backend.MulScalar(t.raw, scalar), t.backend)
}

// Exp computes e^x element-wise.
func (t *Tensor[T, B]) Exp() *Tensor[T, B] {
	return New[T, B](t.backend.Exp(t.raw), t.backend)
}

// Log computes the natural logarithm element-wise.
func (t *Tensor[T, B]) Log() *Tensor[T, B] {
	return New[T, B](t.backend.Log(t.raw), t.backend)
}

// Tanh computes the hyperbolic tangent element-wise.
func (t *Tensor[T, B]) Tanh() *Tensor[T, B] {
	return New[T, B](t.backend.Tanh(t.raw), t.backend)
}

// Sigmoid computes 1 / (1 + e^-x) element-wise.
func (t *Tensor[T, B]) Sigmoid() *Tensor[T, B] {
	return New[T, B](t.backend.Sigmoid(t.raw), t.backend)
}

// Softmax normalises along dim so values sum to one.
// Supports negative dimension indexing (-1 = last dimension).
func (t *Tensor[T, B]) Softmax(dim int) *Tensor[T, B] {
	return New[T, B](t.backend.Softmax(t.raw, dim), t.backend)
}

// LogSoftmax computes log(softmax(x)) along dim in a numerically stable way.
func (t *Tensor[T, B]) LogSoftmax(dim int) *Tensor[T, B] {
	return New[T, B](t.backend.LogSoftmax(t.raw, dim), t.backend)
}

// Lower returns a boolean tensor holding t < other, with broadcasting.
//
// Example:
//
//	positions := tensor.Arange[int64](4, backend).Reshape(1, 4) // [[0 1 2 3]]
//	lengths := tensor.MustFromSlice([]int64{4, 2}, Shape{2, 1}, backend)
//	valid := positions.Lower(lengths)                          // [2, 4]
func (t *Tensor[T, B]) Lower(other *Tensor[T, B]) *Tensor[bool, B] {
	return New[bool, B](t.backend.Lower(t.raw, other.raw), t.backend)
}

// SumDim sums along dim, optionally keeping it with size 1.
func (t *Tensor[T, B]) SumDim(dim int, keepDim bool) *Tensor[T, B] {
	return New[T, B](t.backend.SumDim(t.raw, dim, keepDim), t.backend)
}

// Argmax returns the index of the maximum value along dim.
// The dimension is removed from the result.
func (t *Tensor[T, B]) Argmax(dim int) *Tensor[int64, B] {
	return New[int64, B](t.backend.Argmax(t.raw, dim), t.backend)
}

// MaxDim returns the maximum values and their indices along dim.
// Ties resolve to the lowest index.
func (t *Tensor[T, B]) MaxDim(dim int, keepDim bool) (*Tensor[T, B], *Tensor[int64, B]) {
	values, indices := t.backend.MaxDim(t.raw, dim, keepDim)
	return New[T, B](values, t.backend), New[int64, B](indices, t.backend)
}

// Gather selects elements along dim using an index tensor of the same rank.
// out[i][j][k] = t[index[i][j][k]][j][k] for dim 0, and so on.
func (t *Tensor[T, B]) Gather(dim int, index *Tensor[int64, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Gather(t.raw, dim, index.raw), t.backend)
}

// Float32 casts the tensor to float32.
func (t *Tensor[T, B]) Float32() *Tensor[float32, B] {
	return New[float32, B](t.backend.Cast(t.raw, Float32), t.backend)
}

// Float64 casts the tensor to float64.
func (t *Tensor[T, B]) Float64() *Tensor[float64, B] {
	return New[float64, B](t.backend.Cast(t.raw, Float64), t.backend)
}

// Int64 casts the tensor to int64.
func (t *Tensor[T, B]) Int64() *Tensor[int64, B] {
	return New[int64, B](t.backend.Cast(t.raw, Int64), t.backend)
}

// Bool casts the tensor to bool (non-zero is true).
func (t *Tensor[T, B]) Bool() *Tensor[bool, B] {
	return New[bool, B](t.backend.Cast(t.raw, Bool), t.backend)
}
