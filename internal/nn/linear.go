package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/ptrnet/internal/tensor"
)

// Linear implements a fully connected layer: y = x @ W.T + b.
//
// Input may be 2D [batch, in_features] or 3D [batch, seq, in_features]; the
// transformation is applied to the last dimension.
//
// Weights use Xavier/Glorot initialisation. The bias, when enabled, starts at
// zero. Pointer attention projections are built without a bias.
//
// Example:
//
//	backend := cpu.New()
//	w1 := nn.NewLinear(128, 128, backend, nn.WithoutBias())
//	enc := w1.Forward(encoderOutputs) // [B, L, 128]
type Linear[B tensor.Backend] struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter[B] // [out_features, in_features]
	bias        *Parameter[B] // [out_features], nil when disabled
}

type linearConfig struct {
	bias bool
	rng  *rand.Rand
}

// LinearOption configures NewLinear.
type LinearOption func(*linearConfig)

// WithoutBias disables the bias term.
func WithoutBias() LinearOption {
	return func(c *linearConfig) { c.bias = false }
}

// WithRNG sets the random source used for weight initialisation.
func WithRNG(rng *rand.Rand) LinearOption {
	return func(c *linearConfig) { c.rng = rng }
}

// NewLinear creates a new Linear layer.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B, opts ...LinearOption) *Linear[B] {
	cfg := linearConfig{bias: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.rng == nil {
		cfg.rng = NewRNG(0)
	}

	l := &Linear[B]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight: NewParameter("weight",
			Xavier(cfg.rng, inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures}, backend)),
	}
	if cfg.bias {
		l.bias = NewParameter("bias", tensor.Zeros[float32](tensor.Shape{outFeatures}, backend))
	}
	return l
}

// Forward applies the layer to the last dimension of input.
func (l *Linear[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) != 2 && len(shape) != 3 {
		panic(fmt.Sprintf("Linear.Forward: expected 2D or 3D input, got shape %v", shape))
	}
	if shape[len(shape)-1] != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input with %d features, got %d", l.inFeatures, shape[len(shape)-1]))
	}

	flat := input
	if len(shape) == 3 {
		flat = input.Reshape(shape[0]*shape[1], l.inFeatures)
	}

	output := flat.MatMul(l.weight.Tensor().Transpose())
	if l.bias != nil {
		output = output.Add(l.bias.Tensor().Reshape(1, l.outFeatures))
	}

	if len(shape) == 3 {
		output = output.Reshape(shape[0], shape[1], l.outFeatures)
	}
	return output
}

// Parameters returns [weight, bias], or [weight] without a bias.
func (l *Linear[B]) Parameters() []*Parameter[B] {
	if l.bias != nil {
		return []*Parameter[B]{l.weight, l.bias}
	}
	return []*Parameter[B]{l.weight}
}

// Weight returns the weight parameter.
func (l *Linear[B]) Weight() *Parameter[B] {
	return l.weight
}

// Bias returns the bias parameter, or nil.
func (l *Linear[B]) Bias() *Parameter[B] {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear[B]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear[B]) OutFeatures() int {
	return l.outFeatures
}

// StateDict returns a map of parameter names to raw tensors.
func (l *Linear[B]) StateDict() map[string]*tensor.RawTensor {
	return stateDict(l.Parameters())
}

// LoadStateDict loads parameters from a state dictionary.
func (l *Linear[B]) LoadStateDict(sd map[string]*tensor.RawTensor) error {
	return loadStateDict(l.Parameters(), sd)
}
