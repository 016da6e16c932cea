package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/born-ml/ptrnet/internal/tensor"
)

// MatMul performs matrix multiplication: (M, K) @ (K, N) -> (M, N).
// Float types go through gonum BLAS GEMM; integer types use a plain loop.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: only 2D tensors supported, got %dD and %dD", len(aShape), len(bShape)))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("matmul: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}

	m, k := aShape[0], aShape[1]
	kAlt, n := bShape[0], bShape[1]
	if k != kAlt {
		panic(fmt.Sprintf("matmul: shape mismatch [%d,%d] @ [%d,%d]", m, k, kAlt, n))
	}

	result := tensor.MustNewRaw("matmul", tensor.Shape{m, n}, a.DType(), cpu.device)
	gemm(result, a, b, 0, 0, 0, m, k, n)
	return result
}

// BatchMatMul performs batched matrix multiplication:
// (B, M, K) @ (B, K, N) -> (B, M, N).
func (cpu *CPUBackend) BatchMatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 3 || len(bShape) != 3 {
		panic(fmt.Sprintf("batchmatmul: expected 3D tensors, got %dD and %dD", len(aShape), len(bShape)))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("batchmatmul: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}

	batch, m, k := aShape[0], aShape[1], aShape[2]
	if bShape[0] != batch || bShape[1] != k {
		panic(fmt.Sprintf("batchmatmul: shape mismatch %v @ %v", aShape, bShape))
	}
	n := bShape[2]

	result := tensor.MustNewRaw("batchmatmul", tensor.Shape{batch, m, n}, a.DType(), cpu.device)
	for i := range batch {
		gemm(result, a, b, i*m*n, i*m*k, i*k*n, m, k, n)
	}
	return result
}

// gemm computes c[cOff:] = a[aOff:] @ b[bOff:] for row-major blocks.
func gemm(c, a, b *tensor.RawTensor, cOff, aOff, bOff, m, k, n int) {
	switch a.DType() {
	case tensor.Float32:
		blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
			blas32.General{Rows: m, Cols: k, Stride: k, Data: a.AsFloat32()[aOff : aOff+m*k]},
			blas32.General{Rows: k, Cols: n, Stride: n, Data: b.AsFloat32()[bOff : bOff+k*n]},
			0,
			blas32.General{Rows: m, Cols: n, Stride: n, Data: c.AsFloat32()[cOff : cOff+m*n]},
		)
	case tensor.Float64:
		blas64.Gemm(blas.NoTrans, blas.NoTrans, 1,
			blas64.General{Rows: m, Cols: k, Stride: k, Data: a.AsFloat64()[aOff : aOff+m*k]},
			blas64.General{Rows: k, Cols: n, Stride: n, Data: b.AsFloat64()[bOff : bOff+k*n]},
			0,
			blas64.General{Rows: m, Cols: n, Stride: n, Data: c.AsFloat64()[cOff : cOff+m*n]},
		)
	case tensor.Int32:
		matmulLoop(view[int32](c)[cOff:], view[int32](a)[aOff:], view[int32](b)[bOff:], m, k, n)
	case tensor.Int64:
		matmulLoop(view[int64](c)[cOff:], view[int64](a)[aOff:], view[int64](b)[bOff:], m, k, n)
	default:
		panic(fmt.Sprintf("matmul: unsupported dtype %s", a.DType()))
	}
}

func matmulLoop[T number](c, a, b []T, m, k, n int) {
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var sum T
			for p := 0; p < k; p++ {
				sum += a[i*k+p] * b[p*n+j]
			}
			c[i*n+j] = sum
		}
	}
}
