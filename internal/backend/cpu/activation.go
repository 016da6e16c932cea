package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/ptrnet/internal/parallel"
	"github.com/born-ml/ptrnet/internal/tensor"
)

// Softmax computes softmax along the specified dimension.
// Softmax(x_i) = exp(x_i - max) / sum(exp(x_j - max)) for all j in dimension.
func (cpu *CPUBackend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return cpu.normalize("softmax", x, dim, false)
}

// LogSoftmax computes log(softmax(x)) along the specified dimension as
// x_i - max - log(sum(exp(x_j - max))), which stays finite for any finite input.
func (cpu *CPUBackend) LogSoftmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return cpu.normalize("log_softmax", x, dim, true)
}

func (cpu *CPUBackend) normalize(name string, x *tensor.RawTensor, dim int, logDomain bool) *tensor.RawTensor {
	shape := x.Shape()
	dim = tensor.NormalizeDim(dim, len(shape))

	result := tensor.MustNewRaw(name, shape, x.DType(), cpu.device)
	l := lanesAlong(shape, dim)

	switch x.DType() {
	case tensor.Float32:
		normalizeKernel(view[float32](result), view[float32](x), l, logDomain, cpu.parallel)
	case tensor.Float64:
		normalizeKernel(view[float64](result), view[float64](x), l, logDomain, cpu.parallel)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s (only float32/float64 supported)", name, x.DType()))
	}
	return result
}

// lanes describes the 1-D slices ("lanes") of a tensor along one dimension:
// lane r covers elements base(r) + j*stride for j in [0, size).
type lanes struct {
	outer, size, inner int
}

func lanesAlong(shape tensor.Shape, dim int) lanes {
	return lanes{
		outer: shape[:dim].NumElements(),
		size:  shape[dim],
		inner: shape[dim+1:].NumElements(),
	}
}

func (l lanes) count() int { return l.outer * l.inner }

func (l lanes) base(r int) int {
	return (r/l.inner)*l.size*l.inner + r%l.inner
}

func normalizeKernel[T float](dst, src []T, l lanes, logDomain bool, cfg parallel.Config) {
	parallel.For(l.count(), func(r int) {
		base := l.base(r)

		maxVal := math.Inf(-1)
		for j := 0; j < l.size; j++ {
			maxVal = math.Max(maxVal, float64(src[base+j*l.inner]))
		}

		sum := 0.0
		for j := 0; j < l.size; j++ {
			sum += math.Exp(float64(src[base+j*l.inner]) - maxVal)
		}

		if logDomain {
			logSum := math.Log(sum)
			for j := 0; j < l.size; j++ {
				idx := base + j*l.inner
				dst[idx] = T(float64(src[idx]) - maxVal - logSum)
			}
			return
		}
		for j := 0; j < l.size; j++ {
			idx := base + j*l.inner
			dst[idx] = T(math.Exp(float64(src[idx])-maxVal) / sum)
		}
	}, cfg)
}
