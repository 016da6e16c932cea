package tensor

// Backend defines the operations a compute backend must implement.
// Backends handle the actual computation for tensor operations; the generic
// Tensor type only carries type information and delegates here.
//
// Backends report shape and dtype violations by panicking with a message
// prefixed by the operation name.
type Backend interface {
	// Element-wise binary operations with broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// MatMul multiplies 2D matrices: [M, K] @ [K, N] -> [M, N].
	MatMul(a, b *RawTensor) *RawTensor

	// BatchMatMul multiplies batched matrices: [B, M, K] @ [B, K, N] -> [B, M, N].
	BatchMatMul(a, b *RawTensor) *RawTensor

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor
	Expand(x *RawTensor, shape Shape) *RawTensor
	Unsqueeze(x *RawTensor, dim int) *RawTensor
	Squeeze(x *RawTensor, dim int) *RawTensor
	Cat(tensors []*RawTensor, dim int) *RawTensor
	Narrow(x *RawTensor, dim, start, length int) *RawTensor

	// Scalar operations
	AddScalar(x *RawTensor, scalar any) *RawTensor
	MulScalar(x *RawTensor, scalar any) *RawTensor

	// Element-wise math
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor
	Tanh(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor

	// Normalisation along a dimension
	Softmax(x *RawTensor, dim int) *RawTensor
	LogSoftmax(x *RawTensor, dim int) *RawTensor

	// Comparison and boolean operations (bool results)
	Lower(a, b *RawTensor) *RawTensor
	And(a, b *RawTensor) *RawTensor
	Not(x *RawTensor) *RawTensor

	// Reductions
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	Argmax(x *RawTensor, dim int) *RawTensor
	MaxDim(x *RawTensor, dim int, keepDim bool) (values, indices *RawTensor)

	// Indexing
	Gather(x *RawTensor, dim int, index *RawTensor) *RawTensor
	Where(condition, x, y *RawTensor) *RawTensor

	// Type conversion
	Cast(x *RawTensor, dtype DataType) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
