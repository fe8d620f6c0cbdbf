package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/verity/internal/engine"
)

// playDoor records a winning door session into j.
func playDoor(t *testing.T, j *Journal, session string) *engine.Engine {
	t.Helper()
	ctx := context.Background()

	e := newDoorEngine(t, session, engine.WithListener(j))
	require.NoError(t, j.BeginSession(ctx, SessionInfo{
		ID:             e.Session(),
		World:          "door",
		WorldHash:      "hash-1",
		MaxTransitions: engine.DefaultMaxTransitions,
	}))

	for _, f := range []engine.Fact{
		{Name: "Door.IsLocked", Value: true},
		{Name: "Door.IsLocked", Value: false},
		{Name: "Door.IsOpen", Value: true},
	} {
		_, err := e.ReportFact(f.Name, f.Value)
		require.NoError(t, err)
	}

	require.NoError(t, j.EndSession(ctx, e.Session(), SessionResult{
		Fingerprint: e.Fingerprint(),
		Node:        e.CurrentNode(),
		NodeCount:   e.NodeCount(),
		Won:         e.Won(),
	}))
	require.NoError(t, j.Err())
	return e
}

func TestJournal_RecordsSession(t *testing.T) {
	j := createTestJournal(t)
	e := playDoor(t, j, "s1")
	ctx := context.Background()

	s, err := j.ReadSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, Session{
		ID:               "s1",
		World:            "door",
		WorldHash:        "hash-1",
		MaxTransitions:   engine.DefaultMaxTransitions,
		FinalFingerprint: e.Fingerprint(),
		FinalNode:        e.CurrentNode(),
		NodeCount:        3,
		Won:              true,
	}, s)
}

func TestJournal_ReadFacts(t *testing.T) {
	j := createTestJournal(t)
	playDoor(t, j, "s1")

	facts, err := j.ReadFacts(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, []engine.Fact{
		{Name: "Door.IsLocked", Value: true},
		{Name: "Door.IsLocked", Value: false},
		{Name: "Door.IsOpen", Value: true},
	}, facts)
}

func TestJournal_ReadEvents(t *testing.T) {
	j := createTestJournal(t)
	playDoor(t, j, "s1")

	events, err := j.ReadEvents(context.Background(), "s1")
	require.NoError(t, err)
	require.NotEmpty(t, events)

	assert.Equal(t, engine.EventNodeCreated, events[0].Kind, "root node comes first")
	assert.Equal(t, 0, events[0].To)

	counts := make(map[engine.EventKind]int)
	for i, ev := range events {
		counts[ev.Kind]++
		assert.Equal(t, "s1", ev.Session)
		if i > 0 {
			assert.Greater(t, ev.Seq, events[i-1].Seq, "events are in seq order")
		}
	}
	assert.Equal(t, 3, counts[engine.EventFactReported])
	assert.Equal(t, 3, counts[engine.EventNodeCreated])
	assert.Equal(t, 2, counts[engine.EventTransition])
	assert.Equal(t, 1, counts[engine.EventGoalsSatisfied])
}

func TestJournal_NodeSnapshots(t *testing.T) {
	j := createTestJournal(t)
	playDoor(t, j, "s1")
	ctx := context.Background()

	root, err := j.ReadNodeState(ctx, "s1", 0)
	require.NoError(t, err)
	assert.Empty(t, root)

	// Locking drove IsOpen false before the unlock created node 1.
	node, err := j.ReadNodeState(ctx, "s1", 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"Door.IsLocked": false, "Door.IsOpen": false}, node)

	_, err = j.ReadNodeState(ctx, "s1", 9)
	assert.Error(t, err)
}

func TestJournal_StatesSharedAcrossSessions(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	playDoor(t, j, "s1")
	n1, err := j.CountStates(ctx)
	require.NoError(t, err)

	playDoor(t, j, "s2")
	n2, err := j.CountStates(ctx)
	require.NoError(t, err)
	assert.Equal(t, n1, n2)

	sessions, err := j.ReadSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "s1", sessions[0].ID)
	assert.Equal(t, "s2", sessions[1].ID)
}

func TestJournal_VerifySession(t *testing.T) {
	j := createTestJournal(t)
	playDoor(t, j, "s1")
	ctx := context.Background()

	v, err := j.VerifySession(ctx, "s1", newDoorEngine(t, "replay"))
	require.NoError(t, err)
	assert.True(t, v.Match)
	assert.Equal(t, 3, v.Facts)
	assert.Zero(t, v.Failures)

	diverged := newDoorEngine(t, "replay")
	_, err = diverged.ReportFact("Door.Extra", true)
	require.NoError(t, err)
	v, err = j.VerifySession(ctx, "s1", diverged)
	require.NoError(t, err)
	assert.False(t, v.Match)
	assert.NotEqual(t, v.Expected, v.Actual)
}

func TestJournal_VerifyNeedsEndState(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	newDoorEngine(t, "open", engine.WithListener(j))

	_, err := j.VerifySession(ctx, "open", newDoorEngine(t, "replay"))
	assert.ErrorContains(t, err, "no recorded end state")
}

func TestJournal_UnknownSession(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	_, err := j.ReadSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, j.EndSession(ctx, "missing", SessionResult{}), sql.ErrNoRows)

	sessions, err := j.ReadSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestJournal_KeepsFirstWriteError(t *testing.T) {
	j := createTestJournal(t)
	e := newDoorEngine(t, "s1", engine.WithListener(j))
	require.NoError(t, j.Err())

	require.NoError(t, j.Close())
	_, err := e.ReportFact("Door.IsOpen", true)
	require.NoError(t, err, "journal failures do not fail the engine")

	first := j.Err()
	require.Error(t, first)
	_, _ = e.ReportFact("Door.IsOpen", false)
	assert.Equal(t, first, j.Err())
}
