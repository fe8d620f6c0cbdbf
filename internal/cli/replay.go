package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/verity/internal/compiler"
	"github.com/roach88/verity/internal/engine"
	"github.com/roach88/verity/internal/logic"
	"github.com/roach88/verity/internal/store"
	"github.com/roach88/verity/internal/world"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string // optional - specific session only
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	store.Verification
	WorldMatch bool   `json:"world_match"`
	Skipped    string `json:"skipped,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions         []ReplaySessionResult `json:"sessions"`
	TotalSessions    int                   `json:"total_sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <world>",
		Short: "Replay journalled sessions and verify determinism",
		Long: `Rebuild journalled sessions from their reported facts and check that
each reaches the same final world-state.

Every session recorded for the world is rebuilt on a fresh engine with the
same fixpoint and quota settings. The rebuilt state's fingerprint must
equal the journalled one. Sessions of other worlds are skipped. A session
recorded against a different version of the world is reported.

Exit codes:
  0 - All sessions are deterministic
  1 - A session diverged (different fingerprint or world hash)
  2 - Command error (database not found, etc.)

Examples:
  verity replay ./worlds/door --db ./verity.db
  verity replay ./worlds/door --db ./verity.db --session 0190a4c3-...`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay specific session only")

	return cmd
}

func runReplay(opts *ReplayOptions, path string, cmd *cobra.Command) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	spec, err := loadWorld(path)
	if err != nil {
		return loadExitError(err)
	}
	hash, err := compiler.WorldHash(spec)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash world", err)
	}

	journal, err := openJournal(opts.Database)
	if err != nil {
		return err
	}
	defer journal.Close()

	var sessions []store.Session
	if opts.Session != "" {
		s, err := journal.ReadSession(ctx, opts.Session)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read session", err)
		}
		sessions = []store.Session{s}
	} else {
		sessions, err = journal.ReadSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
	}

	result := ReplayResult{
		Sessions:         make([]ReplaySessionResult, 0, len(sessions)),
		AllDeterministic: true,
	}
	for _, s := range sessions {
		if s.World != spec.Name {
			slog.Debug("skipping session of another world", "session", s.ID, "world", s.World)
			continue
		}
		r, err := replaySession(ctx, journal, spec, s)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", s.ID), err)
		}
		r.WorldMatch = s.WorldHash == hash
		if r.Skipped == "" && (!r.Match || !r.WorldMatch) {
			result.AllDeterministic = false
		}
		result.Sessions = append(result.Sessions, r)
	}
	result.TotalSessions = len(result.Sessions)

	return outputReplay(opts, cmd, result)
}

// replaySession rebuilds one session on a fresh, silent engine.
func replaySession(ctx context.Context, journal *store.Journal, spec *compiler.WorldSpec, s store.Session) (ReplaySessionResult, error) {
	if s.FinalFingerprint == "" {
		return ReplaySessionResult{
			Verification: store.Verification{Session: s.ID},
			Skipped:      "session has no recorded end state",
		}, nil
	}

	opts := []engine.Option{
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		engine.WithSessionIDs(engine.NewFixedGenerator(s.ID)),
	}
	if s.MaxTransitions > 0 {
		opts = append(opts, engine.WithMaxTransitions(s.MaxTransitions))
	}
	if s.Fixpoint {
		opts = append(opts, engine.WithFixpoint())
	}

	w, err := world.Build(spec, opts...)
	if err != nil {
		return ReplaySessionResult{}, err
	}
	// run listens to every entity, and listening decides whether labelled
	// rules store their value.
	w.ListenAll(func(string, logic.Truth) {})

	v, err := journal.VerifySession(ctx, s.ID, w.Engine)
	if err != nil {
		return ReplaySessionResult{}, err
	}
	return ReplaySessionResult{Verification: v}, nil
}

func outputReplay(opts *ReplayOptions, cmd *cobra.Command, result ReplayResult) error {
	var exitErr error
	if !result.AllDeterministic {
		exitErr = NewExitError(ExitFailure, "determinism verification failed")
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		resp := CLIResponse{Status: "ok", Data: result}
		if exitErr != nil {
			resp.Status = "error"
			resp.Error = &CLIError{Code: "E_NONDETERMINISTIC", Message: "determinism verification failed"}
		}
		if err := formatter.Respond(resp); err != nil {
			return err
		}
		return exitErr
	}

	w := cmd.OutOrStdout()
	if result.TotalSessions == 0 {
		fmt.Fprintln(w, "No sessions found for this world.")
		return nil
	}

	for _, s := range result.Sessions {
		switch {
		case s.Skipped != "":
			fmt.Fprintf(w, "- %s skipped: %s\n", s.Session, s.Skipped)
		case !s.WorldMatch:
			fmt.Fprintf(w, "✗ %s recorded against a different world hash\n", s.Session)
		case !s.Match:
			fmt.Fprintf(w, "✗ %s diverged after %d fact(s)\n", s.Session, s.Facts)
			if opts.Verbose {
				fmt.Fprintf(w, "    expected %s\n    actual   %s\n", s.Expected, s.Actual)
			}
		default:
			fmt.Fprintf(w, "✓ %s (%d facts)\n", s.Session, s.Facts)
		}
	}

	fmt.Fprintln(w)
	if exitErr != nil {
		fmt.Fprintln(w, "✗ Determinism verification failed")
		return exitErr
	}
	fmt.Fprintf(w, "✓ All %d session(s) deterministic\n", result.TotalSessions)
	return nil
}
