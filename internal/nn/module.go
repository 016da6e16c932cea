// Package nn implements the neural network building blocks of the pointer
// network: parameters, initialisers, linear projections and LSTM units.
//
// Layers are generic over the compute backend, following the same pattern as
// tensor.Tensor. All layers are inference-only; they carry learned weights but
// no gradient state.
package nn

import (
	"github.com/born-ml/ptrnet/internal/tensor"
)

// Module is the interface for single-input neural network components.
//
// Modules can be composed to build larger architectures:
//
//	embed := nn.NewLinear(2, 64, backend, nn.WithoutBias())
//	act := nn.NewTanh[*cpu.CPUBackend]()
//	out := act.Forward(embed.Forward(x))
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all learned parameters of this module.
	// Returns an empty slice for modules without parameters.
	Parameters() []*Parameter[B]
}

// StateDicter is implemented by modules whose parameters can be exported to
// and restored from a flat name → tensor map.
type StateDicter interface {
	StateDict() map[string]*tensor.RawTensor
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}

// CountParameters returns the total number of scalar weights in params.
func CountParameters[B tensor.Backend](params []*Parameter[B]) int {
	n := 0
	for _, p := range params {
		n += p.Tensor().NumElements()
	}
	return n
}
