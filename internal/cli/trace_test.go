package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/verity/internal/store"
)

func TestTrace_MissingDatabase(t *testing.T) {
	_, err := execute(t, "trace", "--db", filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
}

func TestTrace_ListSessions(t *testing.T) {
	db := playDoor(t)

	out, err := execute(t, "trace", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "s1  door             won          nodes=2")

	out, err = execute(t, "--format", "json", "trace", "--db", db)
	require.NoError(t, err)
	var sessions []store.Session
	decodeResponse(t, out, &sessions)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s1", sessions[0].ID)
	assert.True(t, sessions[0].Won)
}

func TestTrace_Session(t *testing.T) {
	db := playDoor(t)

	out, err := execute(t, "trace", "--db", db, "--session", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "Session s1 (world door)")
	assert.Contains(t, out, "node 0 (root)")
	assert.Contains(t, out, "Door.IsLocked=false at node 0")
	assert.Contains(t, out, "0 → 1 (new) by Door.IsLocked=false")
	assert.Contains(t, out, "rule open_needs_unlocked mentions Door.IsLocked")
	assert.Contains(t, out, "goals_satisfied=1")
	assert.Contains(t, out, "fact_reported=2")
}

func TestTrace_SessionJSON(t *testing.T) {
	db := playDoor(t)

	out, err := execute(t, "--format", "json", "--verbose", "trace", "--db", db, "--session", "s1")
	require.NoError(t, err)

	var result TraceResult
	decodeResponse(t, out, &result)
	assert.Equal(t, "s1", result.Session.ID)
	require.NotEmpty(t, result.Timeline)

	for i, ev := range result.Timeline {
		assert.Equal(t, int64(i+1), ev.Seq, "timeline is seq ordered")
	}
	assert.Equal(t, 1, result.Stats["goals_satisfied"])
	assert.Equal(t, 2, result.Stats["fact_reported"])

	var created []TraceEvent
	for _, ev := range result.Timeline {
		if ev.Kind == "node_created" {
			created = append(created, ev)
		}
	}
	require.Len(t, created, 2)
	assert.Equal(t, false, created[1].State["Door.IsLocked"])
}

func TestTrace_KindFilter(t *testing.T) {
	db := playDoor(t)

	out, err := execute(t, "--format", "json", "trace", "--db", db, "--session", "s1", "--kind", "transition")
	require.NoError(t, err)

	var result TraceResult
	decodeResponse(t, out, &result)
	require.Len(t, result.Timeline, 1)
	assert.Equal(t, "transition", result.Timeline[0].Kind)
	assert.True(t, result.Timeline[0].Created)
	assert.Equal(t, 2, result.Stats["fact_reported"], "stats cover every kind")
}

func TestTrace_UnknownSession(t *testing.T) {
	db := playDoor(t)

	out, err := execute(t, "trace", "--db", db, "--session", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "session not found: nope")
}
