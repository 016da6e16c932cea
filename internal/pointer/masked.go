package pointer

import (
	"github.com/born-ml/ptrnet/internal/tensor"
)

const (
	// maskedScore replaces masked scores before the log-softmax. It is finite,
	// so a fully masked row normalizes to a uniform distribution instead of NaN,
	// and far enough below any real score that exp underflows to zero.
	maskedScore = -1e9

	// maskedMaxValue replaces masked entries before taking the max. Real scores
	// are assumed to stay well above it.
	maskedMaxValue = -1e7
)

// MaskedLogSoftmax computes a log-softmax along dim over the positions where
// mask is true.
//
// Masked positions get a log-probability far below any unmasked one, so the
// exponentiated unmasked entries sum to 1. A fully masked row yields a finite
// but meaningless result that the caller must ignore. A nil mask gives a plain
// log-softmax.
//
// mask must broadcast against scores. A mask of lower rank is unsqueezed at
// dimension 1 until the ranks match, so a (B, L) mask applies to every row of
// (B, K, L) scores.
func MaskedLogSoftmax[B tensor.Backend](scores *tensor.Tensor[float32, B], mask *tensor.Tensor[bool, B], dim int) *tensor.Tensor[float32, B] {
	if mask == nil {
		return scores.LogSoftmax(dim)
	}

	mask = alignMask(mask, len(scores.Shape()))
	fill := tensor.Scalar[float32](maskedScore, scores.Backend())
	return tensor.Where(mask, scores, fill).LogSoftmax(dim)
}

// MaskedMax returns the maximum value along dim and its index, considering
// only positions where mask is true.
//
// Ties resolve to the lowest index. A fully masked row returns index 0.
func MaskedMax[B tensor.Backend](
	scores *tensor.Tensor[float32, B],
	mask *tensor.Tensor[bool, B],
	dim int,
	keepDim bool,
) (*tensor.Tensor[float32, B], *tensor.Tensor[int64, B]) {
	mask = alignMask(mask, len(scores.Shape()))
	fill := tensor.Scalar[float32](maskedMaxValue, scores.Backend())
	return tensor.Where(mask, scores, fill).MaxDim(dim, keepDim)
}

func alignMask[B tensor.Backend](mask *tensor.Tensor[bool, B], rank int) *tensor.Tensor[bool, B] {
	for len(mask.Shape()) < rank {
		mask = mask.Unsqueeze(1)
	}
	return mask
}
