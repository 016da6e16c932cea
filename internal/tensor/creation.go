package tensor

import (
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	backend := cpu.New()
//	h := tensor.Zeros[float32](Shape{batch, hidden}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	raw, err := NewRaw(shape, DataTypeOf[T](), b.Device())
	if err != nil {
		panic(err)
	}
	return New[T, B](raw, b)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	sentinel := tensor.Full[float32](Shape{1}, -1e9, backend)
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Scalar creates a one-element tensor of shape [1], suitable for broadcasting.
func Scalar[T DType, B Backend](value T, b B) *Tensor[T, B] {
	return Full[T, B](Shape{1}, value, b)
}

// Ones creates a tensor filled with ones (true for bool tensors).
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	var one T
	switch p := any(&one).(type) {
	case *float32:
		*p = 1
	case *float64:
		*p = 1
	case *int32:
		*p = 1
	case *int64:
		*p = 1
	case *bool:
		*p = true
	}
	return Full[T, B](shape, one, b)
}

// Arange creates a 1D integer tensor holding 0, 1, ..., n-1.
//
// Example:
//
//	positions := tensor.Arange[int64](4, backend) // [0, 1, 2, 3]
func Arange[T ~int32 | ~int64, B Backend](n int, b B) *Tensor[T, B] {
	if n <= 0 {
		panic("arange: n must be positive")
	}
	t := Zeros[T, B](Shape{n}, b)
	data := t.Data()
	for i := range data {
		data[i] = T(i)
	}
	return t
}

// Uniform creates a float tensor with values drawn from U(low, high) using rng.
// Passing an explicit source keeps parameter initialisation reproducible.
func Uniform[T ~float32 | ~float64, B Backend](shape Shape, low, high float64, rng *rand.Rand, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = T(low + (high-low)*rng.Float64())
	}
	return t
}

// Randn creates a float tensor with values from N(0, 1) using rng.
func Randn[T ~float32 | ~float64, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = T(rng.NormFloat64())
	}
	return t
}
