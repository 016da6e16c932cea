// Package cpu implements the CPU backend, with gonum BLAS for matrix products.
package cpu

import (
	"fmt"

	"github.com/born-ml/ptrnet/internal/parallel"
	"github.com/born-ml/ptrnet/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
type CPUBackend struct {
	device   tensor.Device
	parallel parallel.Config
}

// Option configures a CPUBackend.
type Option func(*CPUBackend)

// WithParallel sets the row-parallel execution config used by row-wise kernels.
func WithParallel(cfg parallel.Config) Option {
	return func(cpu *CPUBackend) {
		cpu.parallel = cfg
	}
}

// New creates a new CPU backend.
func New(opts ...Option) *CPUBackend {
	cpu := &CPUBackend{
		device:   tensor.CPU,
		parallel: parallel.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(cpu)
	}
	return cpu
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

type number interface {
	~float32 | ~float64 | ~int32 | ~int64
}

type float interface {
	~float32 | ~float64
}

// view returns the typed element slice of r.
func view[T tensor.DType](r *tensor.RawTensor) []T {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return any(r.AsFloat32()).([]T)
	case float64:
		return any(r.AsFloat64()).([]T)
	case int32:
		return any(r.AsInt32()).([]T)
	case int64:
		return any(r.AsInt64()).([]T)
	case bool:
		return any(r.AsBool()).([]T)
	default:
		panic("unsupported type")
	}
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b, binaryAdd)
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b, binarySub)
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b, binaryMul)
}

// Div performs element-wise division with broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("div", a, b, binaryDiv)
}

type binaryOp int

const (
	binaryAdd binaryOp = iota
	binarySub
	binaryMul
	binaryDiv
)

func (cpu *CPUBackend) binary(name string, a, b *tensor.RawTensor, op binaryOp) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", name, a.DType(), b.DType()))
	}
	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result := tensor.MustNewRaw(name, outShape, a.DType(), cpu.device)

	switch a.DType() {
	case tensor.Float32:
		binaryKernel[float32](result, a, b, op)
	case tensor.Float64:
		binaryKernel[float64](result, a, b, op)
	case tensor.Int32:
		binaryKernel[int32](result, a, b, op)
	case tensor.Int64:
		binaryKernel[int64](result, a, b, op)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
	}
	return result
}

func apply[T number](op binaryOp, x, y T) T {
	switch op {
	case binaryAdd:
		return x + y
	case binarySub:
		return x - y
	case binaryMul:
		return x * y
	default:
		return x / y
	}
}

func binaryKernel[T number](dst, a, b *tensor.RawTensor, op binaryOp) {
	out := view[T](dst)
	av, bv := view[T](a), view[T](b)

	// Fast path: same shape, flat iteration.
	if a.Shape().Equal(dst.Shape()) && b.Shape().Equal(dst.Shape()) {
		for i := range out {
			out[i] = apply(op, av[i], bv[i])
		}
		return
	}

	strides := [][]int{
		tensor.BroadcastStrides(a.Shape(), dst.Shape()),
		tensor.BroadcastStrides(b.Shape(), dst.Shape()),
	}
	walk(dst.Shape(), strides, nil, func(i int, offs []int) {
		out[i] = apply(op, av[offs[0]], bv[offs[1]])
	})
}

// AddScalar adds a scalar to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return cpu.binary("add_scalar", x, cpu.scalarLike("add_scalar", x, scalar), binaryAdd)
}

// MulScalar multiplies every element by a scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return cpu.binary("mul_scalar", x, cpu.scalarLike("mul_scalar", x, scalar), binaryMul)
}

// scalarLike builds a [1] tensor of x's dtype holding scalar.
func (cpu *CPUBackend) scalarLike(name string, x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := tensor.MustNewRaw(name, tensor.Shape{1}, x.DType(), cpu.device)
	switch x.DType() {
	case tensor.Float32:
		s.AsFloat32()[0] = toFloat32(name, scalar)
	case tensor.Float64:
		s.AsFloat64()[0] = float64(scalarFloat64(name, scalar))
	case tensor.Int32:
		s.AsInt32()[0] = int32(scalarFloat64(name, scalar))
	case tensor.Int64:
		s.AsInt64()[0] = int64(scalarFloat64(name, scalar))
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}
	return s
}

func toFloat32(name string, v any) float32 {
	if f, ok := v.(float32); ok {
		return f
	}
	return float32(scalarFloat64(name, v))
}

func scalarFloat64(name string, v any) float64 {
	switch s := v.(type) {
	case float32:
		return float64(s)
	case float64:
		return s
	case int32:
		return float64(s)
	case int64:
		return float64(s)
	case int:
		return float64(s)
	default:
		panic(fmt.Sprintf("%s: unsupported scalar type %T", name, v))
	}
}
