package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quilldb/quill/internal/document"
)

func TestParseVersionFlag(t *testing.T) {
	v, err := parseVersionFlag("1234.7")
	require.NoError(t, err)
	assert.Equal(t, document.Version{Major: 1234, Minor: 7}, v)

	v, err = parseVersionFlag("0.0")
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	for _, bad := range []string{"", "12", "a.b", "1.", "1.2.3"} {
		_, err := parseVersionFlag(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

// runCommand executes the CLI against a database file under dir.
func runCommand(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--db", dbPath, "--format", "json"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSetGetRemoveRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "quill.db")

	_, err := runCommand(t, dbPath, "set", "a", `{"n": 1}`)
	require.NoError(t, err)

	// Creating the same key again fails with the refusal exit code.
	_, err = runCommand(t, dbPath, "set", "a", `{"n": 2}`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, err = runCommand(t, dbPath, "get", "a")
	require.NoError(t, err)

	_, err = runCommand(t, dbPath, "rm", "a")
	require.NoError(t, err)

	_, err = runCommand(t, dbPath, "get", "a")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestQueryCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "quill.db")

	for key, v := range map[string]string{"1": `{"age": 10}`, "2": `{"age": 30}`} {
		_, err := runCommand(t, dbPath, "set", key, v)
		require.NoError(t, err)
	}

	out, err := runCommand(t, dbPath, "query",
		`{"filter": {"operator": "gt", "path": ["age"], "value": 15}}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"2"`)
	assert.NotContains(t, out, `"1"`)
}

func TestRootCommand_RejectsBadFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "yaml", "get", "a"})
	assert.Error(t, cmd.Execute())
}
