package pointer

import "errors"

var (
	// ErrEmptyBatch is returned when a request holds no sequences.
	ErrEmptyBatch = errors.New("empty batch")

	// ErrInvalidLength is returned when a sequence length is outside [1, L]
	// or the number of lengths does not match the batch size.
	ErrInvalidLength = errors.New("invalid sequence length")

	// ErrShapeMismatch is returned when an input tensor does not have the
	// shape the model was configured for.
	ErrShapeMismatch = errors.New("shape mismatch")
)
