package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenariosDir = "../harness/testdata/scenarios"

func TestTestCommand_Scenarios(t *testing.T) {
	out, _, err := runCLI(t, "", "test", scenariosDir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ steve_ah")
	assert.Contains(t, out, "✓ resolve_catch_all")
	assert.Contains(t, out, "0 failed")
	assert.Contains(t, out, "All scenarios passed")
}

func TestTestCommand_Filter(t *testing.T) {
	out, _, err := runCLI(t, "", "--format", "json", "test", scenariosDir, "--filter", "steve_*")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	for _, s := range resp.Data.Scenarios {
		assert.True(t, s.Pass, s.Name)
	}
}

func TestTestCommand_Failure(t *testing.T) {
	dir := t.TempDir()
	scenario := `name: wrong_count
description: expects the wrong count
setup:
  categories: ["Ah", "Other"]
  speakers: ["Steve"]
steps:
  - op: increment
    speaker: Steve
    category: Ah
    expect:
      count: 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong_count.yaml"), []byte(scenario), 0644))

	out, _, err := runCLI(t, "", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_count")
	assert.Contains(t, out, "expected count 2, got 1")
}

func TestTestCommand_FailureJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: broken\n"), 0644))

	out, _, err := runCLI(t, "", "--format", "json", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeTestFailed, resp.Error.Code)
}

func TestTestCommand_Update(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "scenarios")
	require.NoError(t, os.MkdirAll(dir, 0755))
	scenario := `name: one_ah
description: a single increment
setup:
  categories: ["Ah", "Other"]
  speakers: ["Steve"]
steps:
  - op: increment
    speaker: Steve
    category: Ah
assertions:
  - type: grand_total
    value: 1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one_ah.yaml"), []byte(scenario), 0644))

	out, _, err := runCLI(t, "", "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "golden updated")

	golden := filepath.Join(root, "golden", "one_ah.golden")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario_name": "one_ah"`)

	// A second run compares against the file just written.
	out, _, err = runCLI(t, "", "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ one_ah\n")

	require.NoError(t, os.WriteFile(golden, []byte("{}\n"), 0644))
	out, _, err = runCLI(t, "", "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "does not match golden")
}

func TestTestCommand_MissingPath(t *testing.T) {
	_, _, err := runCLI(t, "", "test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFilterScenarioFiles(t *testing.T) {
	files := []string{"a/steve_ah.yaml", "a/reset_all.yml", "a/steve_ah_totals.yaml"}

	kept, err := filterScenarioFiles(files, "steve_*")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/steve_ah.yaml", "a/steve_ah_totals.yaml"}, kept)

	kept, err = filterScenarioFiles(files, "")
	require.NoError(t, err)
	assert.Equal(t, files, kept)

	_, err = filterScenarioFiles(files, "[")
	assert.Error(t, err)
}
