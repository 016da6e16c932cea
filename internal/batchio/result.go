package batchio

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/born-ml/ptrnet/internal/pointer"
	"github.com/born-ml/ptrnet/internal/tensor"
)

// Result is the JSON form of one decoded batch.
type Result struct {
	RunID  string `json:"run_id"`
	Source string `json:"source,omitempty"`

	// Indices holds the selected positions of each sequence, trimmed to its
	// true length.
	Indices [][]int64 `json:"indices"`

	// Permutation reports, per sequence, whether Indices is a permutation.
	Permutation []bool `json:"permutation"`

	// LogScores holds the valid (step, candidate) block of each sequence's
	// log-scores when requested.
	LogScores [][][]float32 `json:"log_scores,omitempty"`

	SequenceAccuracy *float64 `json:"sequence_accuracy,omitempty"`
	StepAccuracy     *float64 `json:"step_accuracy,omitempty"`
}

// NewResult converts a decode output into a Result. targets may be nil.
func NewResult[B tensor.Backend](
	runID string,
	out *pointer.Output[B],
	lengths []int,
	targets *tensor.Tensor[int64, B],
	withScores bool,
) *Result {
	res := &Result{
		RunID:   runID,
		Indices: out.Sequences(lengths),
	}

	res.Permutation = make([]bool, len(res.Indices))
	for b, seq := range res.Indices {
		res.Permutation[b] = pointer.IsPermutation(seq)
	}

	if withScores {
		res.LogScores = validScores(out.LogScores, lengths)
	}

	if targets != nil {
		seqAcc := pointer.SequenceAccuracy(out.Indices, targets, lengths)
		stepAcc := pointer.StepAccuracy(out.Indices, targets, lengths)
		res.SequenceAccuracy = &seqAcc
		res.StepAccuracy = &stepAcc
	}
	return res
}

func validScores[B tensor.Backend](scores *tensor.Tensor[float32, B], lengths []int) [][][]float32 {
	maxLen := scores.Shape()[1]
	data := scores.Data()

	out := make([][][]float32, len(lengths))
	for b, n := range lengths {
		out[b] = make([][]float32, n)
		for i := 0; i < n; i++ {
			off := (b*maxLen + i) * maxLen
			out[b][i] = append([]float32(nil), data[off:off+n]...)
		}
	}
	return out
}

// Encode writes v as indented JSON.
func Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
