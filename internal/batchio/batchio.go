// Package batchio reads decode requests and writes decode results as JSON.
//
// A request is a batch of variable-length sequences of feature vectors:
//
//	{"sequences": [[[0.3], [0.1], [0.5]], [[0.2], [0.4]]]}
//
// Scalar inputs may use the shorter "values" form:
//
//	{"values": [[0.3, 0.1, 0.5], [0.2, 0.4]], "targets": [[1, 0, 2], [0, 1]]}
//
// Pad turns a request into the dense tensor and length vector consumed by
// pointer.Model.
package batchio

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"

	"github.com/born-ml/ptrnet/internal/pointer"
	"github.com/born-ml/ptrnet/internal/tensor"
)

// Request is a batch of sequences to decode.
type Request struct {
	Sequences [][][]float32 `json:"sequences,omitempty"`
	Values    [][]float32   `json:"values,omitempty"`
	Targets   [][]int64     `json:"targets,omitempty"`
}

// Decode parses a request from r.
func Decode(r io.Reader) (*Request, error) {
	var req Request
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	return &req, nil
}

// ReadFile parses the request stored at path.
func ReadFile(path string) (*Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	req, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return req, nil
}

// Features returns the request's sequences, expanding the "values" form into
// one-feature steps.
func (r *Request) Features() [][][]float32 {
	if len(r.Sequences) > 0 {
		return r.Sequences
	}
	out := make([][][]float32, len(r.Values))
	for b, seq := range r.Values {
		out[b] = make([][]float32, len(seq))
		for i, v := range seq {
			out[b][i] = []float32{v}
		}
	}
	return out
}

// Lengths returns the true length of every sequence.
func (r *Request) Lengths() []int {
	seqs := r.Features()
	lengths := make([]int, len(seqs))
	for b, seq := range seqs {
		lengths[b] = len(seq)
	}
	return lengths
}

// Validate checks the request against the model's input size.
func (r *Request) Validate(inputDim int) error {
	if len(r.Sequences) > 0 && len(r.Values) > 0 {
		return fmt.Errorf("request sets both sequences and values")
	}
	seqs := r.Features()
	if len(seqs) == 0 {
		return pointer.ErrEmptyBatch
	}
	for b, seq := range seqs {
		if len(seq) == 0 {
			return fmt.Errorf("%w: sequence %d is empty", pointer.ErrInvalidLength, b)
		}
		for i, step := range seq {
			if len(step) != inputDim {
				return fmt.Errorf("%w: sequence %d step %d has %d features, want %d",
					pointer.ErrShapeMismatch, b, i, len(step), inputDim)
			}
		}
	}
	if r.Targets != nil {
		if len(r.Targets) != len(seqs) {
			return fmt.Errorf("%w: %d targets for %d sequences", pointer.ErrShapeMismatch, len(r.Targets), len(seqs))
		}
		for b, target := range r.Targets {
			if len(target) != len(seqs[b]) {
				return fmt.Errorf("%w: target %d has %d steps, want %d",
					pointer.ErrInvalidLength, b, len(target), len(seqs[b]))
			}
		}
	}
	return nil
}

// Pad builds the zero-padded input tensor and the length vector.
//
// The tensor is (B, L, inputDim) when batchFirst is set and
// (L, B, inputDim) otherwise, L being the longest sequence.
func Pad[B tensor.Backend](r *Request, inputDim int, batchFirst bool, backend B) (*tensor.Tensor[float32, B], []int, error) {
	if err := r.Validate(inputDim); err != nil {
		return nil, nil, err
	}

	seqs := r.Features()
	lengths := r.Lengths()
	batch, maxLen := len(seqs), maxOf(lengths)

	data := make([]float32, batch*maxLen*inputDim)
	for b, seq := range seqs {
		for i, step := range seq {
			off := (b*maxLen + i) * inputDim
			if !batchFirst {
				off = (i*batch + b) * inputDim
			}
			copy(data[off:off+inputDim], step)
		}
	}

	shape := tensor.Shape{batch, maxLen, inputDim}
	if !batchFirst {
		shape = tensor.Shape{maxLen, batch, inputDim}
	}
	t, err := tensor.FromSlice(data, shape, backend)
	if err != nil {
		return nil, nil, err
	}
	return t, lengths, nil
}

// TargetTensor pads the request targets into a (B, L) tensor. It returns nil
// when the request carries no targets.
func TargetTensor[B tensor.Backend](r *Request, backend B) (*tensor.Tensor[int64, B], error) {
	if r.Targets == nil {
		return nil, nil
	}
	lengths := r.Lengths()
	batch, maxLen := len(lengths), maxOf(lengths)

	data := make([]int64, batch*maxLen)
	for b, target := range r.Targets {
		copy(data[b*maxLen:], target)
	}
	return tensor.FromSlice(data, tensor.Shape{batch, maxLen}, backend)
}

func maxOf(lengths []int) int {
	m := 0
	for _, n := range lengths {
		if n > m {
			m = n
		}
	}
	return m
}
