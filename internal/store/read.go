package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/verity/internal/engine"
	"github.com/roach88/verity/internal/logic"
)

// Session is a journalled session row.
type Session struct {
	ID               string `json:"id"`
	World            string `json:"world"`
	WorldHash        string `json:"world_hash"`
	Fixpoint         bool   `json:"fixpoint"`
	MaxTransitions   int    `json:"max_transitions"`
	FinalFingerprint string `json:"final_fingerprint,omitempty"`
	FinalNode        int    `json:"final_node"`
	NodeCount        int    `json:"node_count"`
	Won              bool   `json:"won"`
}

// ErrSessionNotFound is returned when a session id is not in the journal.
var ErrSessionNotFound = errors.New("session not found")

const sessionColumns = `id, world, world_hash, fixpoint, max_transitions,
	final_fingerprint, final_node, node_count, won`

// ReadSession returns one session.
func (j *Journal) ReadSession(ctx context.Context, id string) (Session, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("read session %s: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session %s: %w", id, err)
	}
	return s, nil
}

// ReadSessions returns every session in insertion order.
// Returns an empty slice (not nil) for an empty journal.
func (j *Journal) ReadSessions(ctx context.Context) ([]Session, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (Session, error) {
	var s Session
	var fixpoint, won int
	err := row.Scan(&s.ID, &s.World, &s.WorldHash, &fixpoint, &s.MaxTransitions,
		&s.FinalFingerprint, &s.FinalNode, &s.NodeCount, &won)
	s.Fixpoint = fixpoint != 0
	s.Won = won != 0
	return s, err
}

// ReadEvents returns a session's events ordered by seq.
// State is not stored per event; see ReadNodeState.
func (j *Journal) ReadEvents(ctx context.Context, session string) ([]engine.Event, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, kind, name, value, from_node, to_node, created, rule
		FROM events
		WHERE session_id = ?
		ORDER BY seq ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []engine.Event{}
	for rows.Next() {
		ev := engine.Event{Session: session}
		var kind, value string
		var created int
		if err := rows.Scan(&ev.Seq, &kind, &ev.Name, &value, &ev.From, &ev.To, &created, &ev.Rule); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Kind = engine.EventKind(kind)
		ev.Value = logic.TruthOf(value)
		ev.Created = created != 0
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// ReadFacts returns the facts reported in a session, in report order.
// They are all a replay needs to rebuild the session.
func (j *Journal) ReadFacts(ctx context.Context, session string) ([]engine.Fact, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT name, value
		FROM events
		WHERE session_id = ? AND kind = ?
		ORDER BY seq ASC
	`, session, string(engine.EventFactReported))
	if err != nil {
		return nil, fmt.Errorf("query facts: %w", err)
	}
	defer rows.Close()

	facts := []engine.Fact{}
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		v, ok := logic.TruthOf(value).Bool()
		if !ok {
			return nil, fmt.Errorf("scan fact %s: value %q is not known", name, value)
		}
		facts = append(facts, engine.Fact{Name: name, Value: v})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate facts: %w", err)
	}
	return facts, nil
}

// ReadNodeState returns the snapshot of a node taken when it was created.
func (j *Journal) ReadNodeState(ctx context.Context, session string, node int) (map[string]bool, error) {
	var data string
	err := j.db.QueryRowContext(ctx, `
		SELECT s.assignment
		FROM nodes n JOIN states s ON s.fingerprint = n.fingerprint
		WHERE n.session_id = ? AND n.node_id = ?
	`, session, node).Scan(&data)
	if err != nil {
		return nil, fmt.Errorf("read node %d: %w", node, err)
	}
	return unmarshalState(data)
}

// CountStates returns the number of distinct world-states journalled
// across all sessions.
func (j *Journal) CountStates(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM states`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count states: %w", err)
	}
	return n, nil
}
