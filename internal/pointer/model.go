package pointer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/born-ml/ptrnet/internal/logger"
	"github.com/born-ml/ptrnet/internal/nn"
	"github.com/born-ml/ptrnet/internal/tensor"
)

// Config holds the model hyperparameters.
type Config struct {
	InputDim       int   // raw feature size per position
	EmbeddingDim   int   // encoder input size
	HiddenSize     int   // encoder, decoder and attention size H
	NumLayers      int   // encoder layers
	Bidirectional  bool  // bidirectional encoder, directions summed to H
	BatchFirst     bool  // inputs are (B, L, D); otherwise (L, B, D)
	ExcludeVisited bool  // mask out already selected positions
	Seed           int64 // initialisation seed, 0 for time-based
}

// DefaultConfig returns the configuration of the sorting setup: scalar
// inputs, a single bidirectional encoder layer and batch-first tensors.
func DefaultConfig() Config {
	return Config{
		InputDim:      1,
		EmbeddingDim:  32,
		HiddenSize:    32,
		NumLayers:     1,
		Bidirectional: true,
		BatchFirst:    true,
		Seed:          1,
	}
}

// Validate checks that every dimension is positive.
func (c Config) Validate() error {
	dims := []struct {
		name  string
		value int
	}{
		{"input_dim", c.InputDim},
		{"embedding_dim", c.EmbeddingDim},
		{"hidden_size", c.HiddenSize},
		{"num_layers", c.NumLayers},
	}
	for _, d := range dims {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", d.name, d.value)
		}
	}
	return nil
}

func (c Config) directions() int {
	if c.Bidirectional {
		return 2
	}
	return 1
}

// Model is a complete Pointer Network: a bias-free linear embedding, an LSTM
// encoder and the pointer Decoder.
type Model[B tensor.Backend] struct {
	cfg       Config
	embedding *nn.Linear[B]
	encoder   *nn.LSTM[B]
	cell      *nn.LSTMCell[B]
	attention *Attention[B]
	decoder   *Decoder[B]
	log       logger.Logger
}

// ModelOption configures NewModel.
type ModelOption func(*modelOptions)

type modelOptions struct {
	log logger.Logger
}

// WithLogger sets the logger used for construction and decode events.
func WithLogger(l logger.Logger) ModelOption {
	return func(o *modelOptions) { o.log = l }
}

// NewModel creates a model with freshly initialised weights.
func NewModel[B tensor.Backend](cfg Config, backend B, opts ...ModelOption) (*Model[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pointer: invalid config: %w", err)
	}

	o := modelOptions{log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	rng := nn.NewRNG(cfg.Seed)
	cell := nn.NewLSTMCell(cfg.HiddenSize, cfg.HiddenSize, backend, rng)
	attention := NewAttention(cfg.HiddenSize, backend, rng)

	m := &Model[B]{
		cfg:       cfg,
		embedding: nn.NewLinear(cfg.InputDim, cfg.EmbeddingDim, backend, nn.WithoutBias(), nn.WithRNG(rng)),
		encoder: nn.NewLSTM(nn.LSTMConfig{
			InputSize:     cfg.EmbeddingDim,
			HiddenSize:    cfg.HiddenSize,
			NumLayers:     cfg.NumLayers,
			Bidirectional: cfg.Bidirectional,
		}, backend, rng),
		cell:      cell,
		attention: attention,
		decoder:   NewDecoder[B](cell, attention, WithVisitedExclusion(cfg.ExcludeVisited)),
		log:       o.log,
	}

	m.log.Debug("pointer model created",
		"parameters", m.NumParameters(),
		"hidden_size", cfg.HiddenSize,
		"layers", cfg.NumLayers,
		"bidirectional", cfg.Bidirectional,
		"exclude_visited", cfg.ExcludeVisited,
	)
	return m, nil
}

// Config returns the model configuration.
func (m *Model[B]) Config() Config {
	return m.cfg
}

// Forward decodes a padded batch of raw features.
//
// input is (B, L, InputDim), or (L, B, InputDim) when BatchFirst is false.
// lengths holds each sequence's true length in [1, L]. The returned Output is
// always batch-first.
func (m *Model[B]) Forward(ctx context.Context, input *tensor.Tensor[float32, B], lengths []int) (*Output[B], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	shape := input.Shape()
	if len(shape) != 3 {
		return nil, fmt.Errorf("%w: expected rank-3 input, got %v", ErrShapeMismatch, shape)
	}
	if !m.cfg.BatchFirst {
		input = input.Transpose(1, 0, 2)
		shape = input.Shape()
	}
	batch, maxLen := shape[0], shape[1]

	if shape[2] != m.cfg.InputDim {
		return nil, fmt.Errorf("%w: expected %d input features, got %d", ErrShapeMismatch, m.cfg.InputDim, shape[2])
	}
	if err := checkLengths(lengths, batch, maxLen); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	m.log.Debug("decoding batch", "run_id", runID, "batch", batch, "max_len", maxLen)

	encoded, finals, err := m.encoder.Forward(m.embedding.Forward(input), lengths)
	if err != nil {
		return nil, fmt.Errorf("pointer: encode: %w", err)
	}

	h := m.cfg.HiddenSize
	if m.cfg.Bidirectional {
		encoded = encoded.Narrow(2, 0, h).Add(encoded.Narrow(2, h, h))
	}

	// Decoder starts from the last layer's forward direction.
	initial := finals[(m.cfg.NumLayers-1)*m.cfg.directions()]

	out := m.decoder.Decode(encoded, lengths, initial)
	m.log.Debug("batch decoded", "run_id", runID)
	return out, nil
}

func checkLengths(lengths []int, batch, maxLen int) error {
	if len(lengths) != batch {
		return fmt.Errorf("%w: %d lengths for batch of %d", ErrInvalidLength, len(lengths), batch)
	}
	for i, n := range lengths {
		if n < 1 || n > maxLen {
			return fmt.Errorf("%w: lengths[%d] = %d, want 1..%d", ErrInvalidLength, i, n, maxLen)
		}
	}
	return nil
}

// Parameters returns every learned parameter of the model.
func (m *Model[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	params = append(params, m.embedding.Parameters()...)
	params = append(params, m.encoder.Parameters()...)
	params = append(params, m.cell.Parameters()...)
	params = append(params, m.attention.Parameters()...)
	return params
}

// NumParameters returns the total number of scalar weights.
func (m *Model[B]) NumParameters() int {
	return nn.CountParameters(m.Parameters())
}

// StateDict returns all weights keyed by dotted names, e.g.
// "encoder.weight_ih_l0_reverse" or "attn.W1.weight".
func (m *Model[B]) StateDict() map[string]*tensor.RawTensor {
	sd := make(map[string]*tensor.RawTensor)
	nn.PrefixStateDict(sd, "embedding", m.embedding.StateDict())
	nn.PrefixStateDict(sd, "encoder", m.encoder.StateDict())
	nn.PrefixStateDict(sd, "decoding_rnn", m.cell.StateDict())
	nn.PrefixStateDict(sd, "attn", m.attention.StateDict())
	return sd
}

// LoadStateDict copies weights from sd into the model. Every parameter must
// be present with a matching shape.
func (m *Model[B]) LoadStateDict(sd map[string]*tensor.RawTensor) error {
	parts := []struct {
		prefix string
		module nn.StateDicter
	}{
		{"embedding", m.embedding},
		{"encoder", m.encoder},
		{"decoding_rnn", m.cell},
		{"attn", m.attention},
	}
	for _, p := range parts {
		if err := p.module.LoadStateDict(nn.SubStateDict(sd, p.prefix)); err != nil {
			return fmt.Errorf("pointer: load %s: %w", p.prefix, err)
		}
	}
	return nil
}
