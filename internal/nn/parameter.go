package nn

import (
	"fmt"

	"github.com/born-ml/ptrnet/internal/tensor"
)

// Parameter is a named learned tensor of a module.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	w := weight.Tensor()
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
}

// NewParameter creates a new parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Load copies raw into the parameter after validating shape and dtype.
func (p *Parameter[B]) Load(raw *tensor.RawTensor) error {
	if want := p.tensor.Shape(); !raw.Shape().Equal(want) {
		return fmt.Errorf("%s shape mismatch: expected %v, got %v", p.name, want, raw.Shape())
	}
	if raw.DType() != tensor.Float32 {
		return fmt.Errorf("%s dtype mismatch: expected float32, got %v", p.name, raw.DType())
	}
	copy(p.tensor.Data(), raw.AsFloat32())
	return nil
}

// stateDict maps each parameter's name to its raw tensor.
func stateDict[B tensor.Backend](params []*Parameter[B]) map[string]*tensor.RawTensor {
	out := make(map[string]*tensor.RawTensor, len(params))
	for _, p := range params {
		out[p.name] = p.tensor.Raw()
	}
	return out
}

// loadStateDict loads every parameter from sd by name.
func loadStateDict[B tensor.Backend](params []*Parameter[B], sd map[string]*tensor.RawTensor) error {
	for _, p := range params {
		raw, ok := sd[p.name]
		if !ok {
			return fmt.Errorf("missing %s in state dict", p.name)
		}
		if err := p.Load(raw); err != nil {
			return err
		}
	}
	return nil
}

// PrefixStateDict copies sd into dst with every key prefixed by prefix + ".".
func PrefixStateDict(dst map[string]*tensor.RawTensor, prefix string, sd map[string]*tensor.RawTensor) {
	for name, raw := range sd {
		dst[prefix+"."+name] = raw
	}
}

// SubStateDict extracts the entries of sd under prefix + ".", with the prefix removed.
func SubStateDict(sd map[string]*tensor.RawTensor, prefix string) map[string]*tensor.RawTensor {
	out := make(map[string]*tensor.RawTensor)
	p := prefix + "."
	for name, raw := range sd {
		if len(name) > len(p) && name[:len(p)] == p {
			out[name[len(p):]] = raw
		}
	}
	return out
}
