package cpu

import (
	"fmt"

	"github.com/born-ml/ptrnet/internal/tensor"
)

// Cast converts x to dtype. Bool converts to 1/0; numbers convert to bool
// as value != 0. Float to integer truncates toward zero.
func (cpu *CPUBackend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	if x.DType() == dtype {
		return x.Clone()
	}

	result := tensor.MustNewRaw("cast", x.Shape(), dtype, cpu.device)
	n := x.NumElements()
	get := reader(x)

	switch dtype {
	case tensor.Float32:
		out := result.AsFloat32()
		for i := range n {
			f, _ := get(i)
			out[i] = float32(f)
		}
	case tensor.Float64:
		out := result.AsFloat64()
		for i := range n {
			out[i], _ = get(i)
		}
	case tensor.Int32:
		out := result.AsInt32()
		for i := range n {
			_, v := get(i)
			out[i] = int32(v) //nolint:gosec // G115: narrowing is the requested conversion.
		}
	case tensor.Int64:
		out := result.AsInt64()
		for i := range n {
			_, out[i] = get(i)
		}
	case tensor.Bool:
		out := result.AsBool()
		for i := range n {
			f, v := get(i)
			out[i] = f != 0 || v != 0
		}
	default:
		panic(fmt.Sprintf("cast: unsupported target dtype %s", dtype))
	}
	return result
}

// reader returns an accessor yielding element i as both float64 and int64,
// so integer-to-integer casts never round-trip through float64.
func reader(x *tensor.RawTensor) func(i int) (float64, int64) {
	switch x.DType() {
	case tensor.Float32:
		data := x.AsFloat32()
		return func(i int) (float64, int64) { return float64(data[i]), int64(data[i]) }
	case tensor.Float64:
		data := x.AsFloat64()
		return func(i int) (float64, int64) { return data[i], int64(data[i]) }
	case tensor.Int32:
		data := x.AsInt32()
		return func(i int) (float64, int64) { return float64(data[i]), int64(data[i]) }
	case tensor.Int64:
		data := x.AsInt64()
		return func(i int) (float64, int64) { return float64(data[i]), data[i] }
	case tensor.Bool:
		data := x.AsBool()
		return func(i int) (float64, int64) {
			if data[i] {
				return 1, 1
			}
			return 0, 0
		}
	default:
		panic(fmt.Sprintf("cast: unsupported source dtype %s", x.DType()))
	}
}
