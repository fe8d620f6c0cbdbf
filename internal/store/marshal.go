package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/verity/internal/logic"
)

// marshalState serializes a node snapshot to canonical JSON and returns it
// with its fingerprint. The fingerprint equals logic.Fingerprint of the
// same assignment.
func marshalState(state map[string]bool) (data, fingerprint string, err error) {
	if state == nil {
		state = map[string]bool{}
	}
	b, err := logic.MarshalCanonical(state)
	if err != nil {
		return "", "", fmt.Errorf("marshal state: %w", err)
	}
	return string(b), logic.HashWithDomain(logic.DomainAssignment, b), nil
}

// unmarshalState deserializes a node snapshot.
func unmarshalState(data string) (map[string]bool, error) {
	state := map[string]bool{}
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	return state, nil
}
