package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/verity/internal/engine"
)

// SessionInfo describes how a session's engine was configured.
type SessionInfo struct {
	ID             string
	World          string
	WorldHash      string
	Fixpoint       bool
	MaxTransitions int
}

// SessionResult is the state a session ended in.
type SessionResult struct {
	Fingerprint string
	Node        int
	NodeCount   int
	Won         bool
}

// BeginSession records the configuration of a session.
//
// An engine emits its root node from engine.New, before the caller can
// know the session id, so events may already have created the row; its
// configuration columns are updated in place.
func (j *Journal) BeginSession(ctx context.Context, info SessionInfo) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO sessions (id, world, world_hash, fixpoint, max_transitions)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			world = excluded.world,
			world_hash = excluded.world_hash,
			fixpoint = excluded.fixpoint,
			max_transitions = excluded.max_transitions
	`,
		info.ID,
		info.World,
		info.WorldHash,
		boolToInt(info.Fixpoint),
		info.MaxTransitions,
	)
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	return nil
}

// EndSession records the final state of a session.
func (j *Journal) EndSession(ctx context.Context, id string, result SessionResult) error {
	res, err := j.db.ExecContext(ctx, `
		UPDATE sessions
		SET final_fingerprint = ?, final_node = ?, node_count = ?, won = ?
		WHERE id = ?
	`,
		result.Fingerprint,
		result.Node,
		result.NodeCount,
		boolToInt(result.Won),
		id,
	)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("end session: %w", sql.ErrNoRows)
	}
	return nil
}

// OnEvent implements engine.Listener.
func (j *Journal) OnEvent(ev engine.Event) {
	if j.Err() != nil {
		return
	}
	if err := j.writeEvent(context.Background(), ev); err != nil {
		j.fail(err)
	}
}

// writeEvent appends ev in one transaction, together with the node
// snapshot when ev creates a node.
func (j *Journal) writeEvent(ctx context.Context, ev engine.Event) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id) VALUES (?)
		ON CONFLICT(id) DO NOTHING
	`, ev.Session); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO events
		(session_id, seq, kind, name, value, from_node, to_node, created, rule)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		ev.Session,
		ev.Seq,
		string(ev.Kind),
		ev.Name,
		ev.Value.String(),
		ev.From,
		ev.To,
		boolToInt(ev.Created),
		ev.Rule,
	); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	if ev.Kind == engine.EventNodeCreated {
		if err := writeNode(ctx, tx, ev.Session, ev.To, ev.State); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

func writeNode(ctx context.Context, tx *sql.Tx, session string, node int, state map[string]bool) error {
	data, fp, err := marshalState(state)
	if err != nil {
		return fmt.Errorf("write node: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO states (fingerprint, assignment) VALUES (?, ?)
		ON CONFLICT(fingerprint) DO NOTHING
	`, fp, data); err != nil {
		return fmt.Errorf("write node: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO nodes (session_id, node_id, fingerprint) VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING
	`, session, node, fp); err != nil {
		return fmt.Errorf("write node: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
