package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with args and returns stdout and stderr.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// testDB returns a database path in a fresh temp dir and clears
// environment overrides.
func testDB(t *testing.T) string {
	t.Helper()
	t.Setenv("TALLY_CONFIG", "")
	t.Setenv("TALLY_DB", "")
	return filepath.Join(t.TempDir(), "tally.db")
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "tally", cmd.Use)
	assert.Contains(t, cmd.Long, "filler words")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"init"}, {"show"}, {"summary"}, {"reset"}, {"session"}, {"test"},
		{"speaker", "add"}, {"speaker", "rm"}, {"speaker", "list"},
		{"category", "add"}, {"category", "rm"}, {"category", "list"},
	}

	for _, path := range commands {
		name := strings.Join(path, " ")
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %s should exist", name)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("db"))
}

func TestInvalidFormat(t *testing.T) {
	db := testDB(t)
	_, _, err := runCLI(t, "", "--db", db, "--format", "yaml", "show")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
}

func TestConfigFile(t *testing.T) {
	t.Setenv("TALLY_CONFIG", "")
	t.Setenv("TALLY_DB", "")
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "meeting.cue")
	db := filepath.Join(dir, "meeting.db")
	content := `database: "` + db + `"
default_speakers: ["Ana", "Ben"]
default_categories: ["Er", "Other"]
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))

	out, _, err := runCLI(t, "", "--config", cfgPath, "speaker", "list")
	require.NoError(t, err)
	assert.Equal(t, "Ana\nBen\n", out)

	_, err = os.Stat(db)
	assert.NoError(t, err, "database is created at the configured path")
}

func TestConfigFromEnv(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "env.cue")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`default_categories: ["Hmm"]`), 0644))
	t.Setenv("TALLY_CONFIG", cfgPath)
	t.Setenv("TALLY_DB", filepath.Join(dir, "env.db"))

	out, _, err := runCLI(t, "", "category", "list")
	require.NoError(t, err)
	assert.Equal(t, "Hmm\nOther\n", out)

	_, err = os.Stat(filepath.Join(dir, "env.db"))
	assert.NoError(t, err, "TALLY_DB sets the database path")
}

func TestConfigInvalid(t *testing.T) {
	t.Setenv("TALLY_CONFIG", "")
	cfgPath := filepath.Join(t.TempDir(), "bad.cue")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`persist_counts: "yes"`), 0644))

	_, _, err := runCLI(t, "", "--config", cfgPath, "show")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), CodeConfig)
}

func TestConfigMissingExplicitPath(t *testing.T) {
	t.Setenv("TALLY_CONFIG", "")
	_, _, err := runCLI(t, "", "--config", filepath.Join(t.TempDir(), "nope.cue"), "show")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
