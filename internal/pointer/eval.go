package pointer

import (
	"fmt"

	"github.com/born-ml/ptrnet/internal/tensor"
)

// Sequences returns the valid prefix of every row of Indices: the first
// lengths[b] selected positions of sequence b.
func (o *Output[B]) Sequences(lengths []int) [][]int64 {
	shape := o.Indices.Shape()
	data := o.Indices.Data()
	out := make([][]int64, shape[0])
	for b := range out {
		row := data[b*shape[1] : (b+1)*shape[1]]
		out[b] = append([]int64(nil), row[:lengths[b]]...)
	}
	return out
}

// SequenceAccuracy returns the fraction of sequences whose selected indices
// match targets on every valid step. Both tensors are (B, L); steps at or
// beyond lengths[b] are ignored.
func SequenceAccuracy[B tensor.Backend](indices, targets *tensor.Tensor[int64, B], lengths []int) float64 {
	batch, maxLen := checkEvalShapes(indices, targets, lengths)
	if batch == 0 {
		return 0
	}

	got, want := indices.Data(), targets.Data()
	correct := 0
	for b := 0; b < batch; b++ {
		match := true
		for i := 0; i < lengths[b]; i++ {
			if got[b*maxLen+i] != want[b*maxLen+i] {
				match = false
				break
			}
		}
		if match {
			correct++
		}
	}
	return float64(correct) / float64(batch)
}

// StepAccuracy returns the fraction of valid steps whose selected index
// matches the target.
func StepAccuracy[B tensor.Backend](indices, targets *tensor.Tensor[int64, B], lengths []int) float64 {
	batch, maxLen := checkEvalShapes(indices, targets, lengths)

	got, want := indices.Data(), targets.Data()
	correct, total := 0, 0
	for b := 0; b < batch; b++ {
		for i := 0; i < lengths[b]; i++ {
			total++
			if got[b*maxLen+i] == want[b*maxLen+i] {
				correct++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

func checkEvalShapes[B tensor.Backend](indices, targets *tensor.Tensor[int64, B], lengths []int) (int, int) {
	shape := indices.Shape()
	if len(shape) != 2 || !shape.Equal(targets.Shape()) {
		panic(fmt.Sprintf("accuracy: indices %v and targets %v must both be [batch, seq]", shape, targets.Shape()))
	}
	if len(lengths) != shape[0] {
		panic(fmt.Sprintf("accuracy: %d lengths for batch of %d", len(lengths), shape[0]))
	}
	for b, n := range lengths {
		if n < 0 || n > shape[1] {
			panic(fmt.Sprintf("accuracy: lengths[%d] = %d out of range [0, %d]", b, n, shape[1]))
		}
	}
	return shape[0], shape[1]
}

// IsPermutation reports whether seq holds every value of [0, len(seq))
// exactly once.
func IsPermutation(seq []int64) bool {
	seen := make([]bool, len(seq))
	for _, v := range seq {
		if v < 0 || int(v) >= len(seq) || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
