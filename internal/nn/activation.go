package nn

import (
	"github.com/born-ml/ptrnet/internal/tensor"
)

// Tanh is a hyperbolic tangent activation module.
//
// Tanh squashes values to (-1, 1). It is the bounded nonlinearity of the
// additive pointer attention.
type Tanh[B tensor.Backend] struct{}

// NewTanh creates a new Tanh activation module.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return &Tanh[B]{}
}

// Forward applies tanh element-wise.
func (t *Tanh[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.Tanh()
}

// Parameters returns nil (Tanh has no parameters).
func (t *Tanh[B]) Parameters() []*Parameter[B] {
	return nil
}
