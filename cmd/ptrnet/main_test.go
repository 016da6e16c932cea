package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ptrnet/internal/batchio"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run(context.Background(), append([]string{"ptrnet"}, args...))
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDecodeCommand(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a.json", `{"values": [[0.5, 0.1, 0.3, 0.2], [0.9, 0.4]]}`)
	second := writeFile(t, dir, "b.json", `{"values": [[0.7, 0.6, 0.8]], "targets": [[1, 0, 2]]}`)

	stdout, _, err := run(t, "decode", "--exclude-visited", "--seed", "5", first, second)
	require.NoError(t, err)

	dec := json.NewDecoder(strings.NewReader(stdout))
	var results []batchio.Result
	for dec.More() {
		var res batchio.Result
		require.NoError(t, dec.Decode(&res))
		results = append(results, res)
	}
	require.Len(t, results, 2)

	assert.Equal(t, first, results[0].Source)
	require.Len(t, results[0].Indices, 2)
	assert.Len(t, results[0].Indices[0], 4)
	assert.Len(t, results[0].Indices[1], 2)
	assert.Equal(t, []bool{true, true}, results[0].Permutation)
	assert.NotEmpty(t, results[0].RunID)
	assert.Nil(t, results[0].LogScores)

	assert.Equal(t, second, results[1].Source)
	require.NotNil(t, results[1].StepAccuracy)
	assert.NotEqual(t, results[0].RunID, results[1].RunID)
}

func TestDecodeCommand_Scores(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.json", `{"values": [[0.5, 0.1]]}`)

	stdout, _, err := run(t, "decode", "--scores", path)
	require.NoError(t, err)

	var res batchio.Result
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	require.Len(t, res.LogScores, 1)
	assert.Len(t, res.LogScores[0], 2)
}

func TestDecodeCommand_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "ptrnet.yaml", "input_dim: 2\nhidden_size: 8\nembedding_dim: 4\nlog_level: debug\nlog_format: json\n")
	batch := writeFile(t, dir, "batch.json", `{"sequences": [[[1, 2], [3, 4], [5, 6]]]}`)

	stdout, stderr, err := run(t, "decode", "--config", cfg, batch)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"indices"`)
	assert.Contains(t, stderr, `"msg":"pointer model created"`)

	// A flag overrides the file.
	_, _, err = run(t, "decode", "--config", cfg, "--input-dim", "3", batch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shape mismatch")
}

func TestDecodeCommand_Errors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := run(t, "decode", filepath.Join(dir, "missing.json"))
	require.Error(t, err)

	empty := writeFile(t, dir, "empty.json", `{"values": []}`)
	_, _, err = run(t, "decode", empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty batch")

	_, _, err = run(t, "decode", "--hidden-size", "0", empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hidden_size")
}

func TestInspectCommand(t *testing.T) {
	stdout, _, err := run(t, "inspect", "--hidden-size", "4", "--embedding-dim", "4")
	require.NoError(t, err)

	for _, want := range []string{
		"hidden_size",
		"embedding.weight",
		"encoder.weight_ih_l0_reverse",
		"decoding_rnn.bias_hh",
		"attn.vt.weight",
		"[16, 4]",
		"TOTAL",
	} {
		assert.Contains(t, stdout, want)
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "ptrnet "+version)
}
