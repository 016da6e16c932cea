package nn

import (
	"math"
	"math/rand"
	"time"

	"github.com/born-ml/ptrnet/internal/tensor"
)

// Xavier (Glorot) initialisation for weights.
//
// Values are drawn from U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out))),
// which keeps activation variance roughly constant across layers.
func Xavier[B tensor.Backend](rng *rand.Rand, fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return tensor.Uniform[float32](shape, -bound, bound, rng, backend)
}

// UniformFanIn draws values from U(-1/sqrt(n), 1/sqrt(n)), the usual
// initialisation for recurrent weights and biases with hidden size n.
func UniformFanIn[B tensor.Backend](rng *rand.Rand, n int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	bound := 1.0 / math.Sqrt(float64(n))
	return tensor.Uniform[float32](shape, -bound, bound, rng, backend)
}

// NewRNG returns a random source for parameter initialisation. A zero seed
// selects a time-based seed.
func NewRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	//nolint:gosec // G404: weight initialisation is not security sensitive
	return rand.New(rand.NewSource(seed))
}
