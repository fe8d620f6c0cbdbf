// Package store provides a SQLite-backed journal of game sessions.
//
// The journal is an append-only trace, not a save format:
//   - Sessions: engine configuration, world hash and final state
//   - Events: every engine.Event in seq order
//   - States: content-addressed world-state snapshots, shared across sessions
//   - Nodes: which state each graph node held when it was created
//
// # Critical Patterns
//
// Logical Identity and Time
//   - All ordering uses seq INTEGER (the engine's logical clock), never
//     timestamps
//   - Enables deterministic replay regardless of wall time
//
// Replay From Facts
//   - The engine is deterministic, so the fact_reported events alone
//     rebuild a session
//   - VerifySession compares the rebuilt fingerprint with the journalled one
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// State fingerprints are computed with logic.MarshalCanonical (RFC 8785)
// and SHA-256 with domain separation.
package store
