package cli

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Text(t *testing.T) {
	out, err := execute(t, "run", worldPath("door"),
		"--script", filepath.Join("testdata", "play.yaml"),
		"--session", "s1")
	require.NoError(t, err)

	assert.Contains(t, out, "Session s1 on world door")
	assert.Contains(t, out, "[1] Door.IsLocked=false  node 0 → 1 (new)")
	assert.Contains(t, out, "Door.IsLocked is now false")
	assert.Contains(t, out, "[2] Door.IsOpen=true  node 1 → 1")
	assert.Contains(t, out, "Door.IsOpen is now true")
	assert.Contains(t, out, "★ goals satisfied")
	assert.Contains(t, out, "Nodes: 2, current: 1, won: true")
	assert.NotContains(t, out, "Fingerprint:")
}

func TestRun_JSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "run", worldPath("door"),
		"--script", filepath.Join("testdata", "play.yaml"),
		"--session", "s1")
	require.NoError(t, err)

	var result RunResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "s1", result.Session)
	assert.Equal(t, "door", result.World)
	require.Len(t, result.Steps, 2)

	first := result.Steps[0]
	assert.Equal(t, "Door.IsLocked", first.Fact)
	assert.True(t, first.NodeCreated)
	assert.False(t, first.Won)
	assert.Equal(t, []Note{{Name: "Door.IsLocked", Value: "false"}}, first.Changes)

	assert.True(t, result.Steps[1].Won)
	assert.True(t, result.Won)
	assert.Equal(t, 2, result.NodeCount)
	assert.Equal(t, map[string]bool{"Door.IsLocked": false, "Door.IsOpen": true}, result.Final)
	assert.NotEmpty(t, result.Fingerprint)
	assert.Zero(t, result.Failed)
}

func TestRun_Deterministic(t *testing.T) {
	args := []string{"--format", "json", "run", worldPath("door"),
		"--script", filepath.Join("testdata", "play.yaml"),
		"--session", "same"}

	out1, err := execute(t, args...)
	require.NoError(t, err)
	out2, err := execute(t, args...)
	require.NoError(t, err)
	assert.Equal(t, out1, out2)
}

func TestRun_Stdin(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader("facts:\n  - report: Door.IsLocked\n    value: false\n"))
	cmd.SetArgs([]string{"run", worldPath("door"), "--session", "stdin"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Nodes: 2, current: 1, won: false")
}

func TestRun_BadScript(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"missing value", "facts:\n  - report: Door.IsOpen\n"},
		{"missing report", "facts:\n  - value: true\n"},
		{"unknown field", "facts:\n  - report: Door.IsOpen\n    value: true\n    when: later\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := writeFile(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".yaml", tt.content)
			_, err := execute(t, "run", worldPath("door"), "--script", script)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), "failed to read script")
		})
	}
}

func TestRun_InvalidQuota(t *testing.T) {
	_, err := execute(t, "run", worldPath("door"),
		"--script", filepath.Join("testdata", "play.yaml"),
		"--max-transitions", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRun_QuotaExhausted(t *testing.T) {
	out, err := execute(t, "run", worldPath("flipflop.cue"),
		"--script", filepath.Join("testdata", "quota.yaml"),
		"--max-transitions", "1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "error: report X.G exceeded transition quota")
}

func TestRun_QuotaExhaustedJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "run", worldPath("flipflop.cue"),
		"--script", filepath.Join("testdata", "quota.yaml"),
		"--max-transitions", "1")
	require.Error(t, err)

	var result RunResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_REPORT_FAILED", resp.Error.Code)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Steps, 2)
	assert.Empty(t, result.Steps[0].Error)
	assert.Contains(t, result.Steps[1].Error, "quota")
}

func TestRun_WorldNotFound(t *testing.T) {
	_, err := execute(t, "run", worldPath("missing"),
		"--script", filepath.Join("testdata", "play.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRun_Journal(t *testing.T) {
	db := playDoor(t)

	out, err := execute(t, "trace", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "s1")
	assert.Contains(t, out, "won")
}
