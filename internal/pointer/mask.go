package pointer

import (
	"github.com/born-ml/ptrnet/internal/tensor"
)

// LengthMask builds the (B, L, L) validity mask for a padded batch.
//
// mask[b, i, j] is true iff i < lengths[b] and j < lengths[b]: row i is the
// candidate mask of decode step i, and steps past a sequence's end have an
// all-false row.
func LengthMask[B tensor.Backend](lengths []int, maxLen int, backend B) *tensor.Tensor[bool, B] {
	lens := make([]int64, len(lengths))
	for i, n := range lengths {
		lens[i] = int64(n)
	}
	lensT := tensor.MustFromSlice(lens, tensor.Shape{len(lens), 1, 1}, backend)

	positions := tensor.Arange[int64](maxLen, backend)
	rows := positions.Reshape(1, maxLen, 1).Lower(lensT) // [B, L, 1]
	cols := positions.Reshape(1, 1, maxLen).Lower(lensT) // [B, 1, L]

	return tensor.And(rows, cols)
}
