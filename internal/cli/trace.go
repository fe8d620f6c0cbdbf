package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/verity/internal/engine"
	"github.com/roach88/verity/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string
	Kind     string // optional - filter to one event kind
}

// TraceEvent represents a single event in the trace timeline.
type TraceEvent struct {
	Seq     int64           `json:"seq"`
	Kind    string          `json:"kind"`
	Name    string          `json:"name,omitempty"`
	Value   string          `json:"value,omitempty"`
	From    int             `json:"from"`
	To      int             `json:"to"`
	Created bool            `json:"created,omitempty"`
	Rule    string          `json:"rule,omitempty"`
	State   map[string]bool `json:"state,omitempty"`
}

// TraceResult holds the complete trace output for one session.
type TraceResult struct {
	Session  store.Session  `json:"session"`
	Timeline []TraceEvent   `json:"timeline"`
	Stats    map[string]int `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show journalled sessions and their event timelines",
		Long: `Query the session journal written by "run --db".

Without --session, lists every journalled session. With --session, shows
the session's events in seq order: reported facts, created nodes,
transitions, rule cues, notifications and the moment the goals were
satisfied. With --verbose, node creations include the node's state.

Examples:
  verity trace --db ./verity.db
  verity trace --db ./verity.db --session 0190a4c3-...
  verity trace --db ./verity.db --session 0190a4c3-... --kind transition
  verity trace --db ./verity.db --session 0190a4c3-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id to trace")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter to one event kind")

	return cmd
}

// openJournal opens an existing journal; a missing file is a command error
// rather than a new empty database.
func openJournal(path string) (*store.Journal, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
	}
	j, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return j, nil
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	journal, err := openJournal(opts.Database)
	if err != nil {
		return err
	}
	defer journal.Close()

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	if opts.Session == "" {
		sessions, err := journal.ReadSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		if opts.Format == "json" {
			return formatter.Success(sessions)
		}
		return outputSessionsText(cmd, sessions)
	}

	session, err := journal.ReadSession(ctx, opts.Session)
	if errors.Is(err, store.ErrSessionNotFound) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("session not found: %s", opts.Session), nil)
		return WrapExitError(ExitCommandError, "session not found", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}

	events, err := journal.ReadEvents(ctx, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	result := TraceResult{
		Session:  session,
		Timeline: []TraceEvent{},
		Stats:    make(map[string]int),
	}
	for _, ev := range events {
		result.Stats[string(ev.Kind)]++
		if opts.Kind != "" && string(ev.Kind) != opts.Kind {
			continue
		}
		te := toTraceEvent(ev)
		if opts.Verbose && ev.Kind == engine.EventNodeCreated {
			state, err := journal.ReadNodeState(ctx, opts.Session, ev.To)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read node state", err)
			}
			te.State = state
		}
		result.Timeline = append(result.Timeline, te)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return outputTraceText(cmd, result)
}

func toTraceEvent(ev engine.Event) TraceEvent {
	te := TraceEvent{
		Seq:     ev.Seq,
		Kind:    string(ev.Kind),
		Name:    ev.Name,
		From:    ev.From,
		To:      ev.To,
		Created: ev.Created,
		Rule:    ev.Rule,
	}
	if ev.Name != "" {
		te.Value = ev.Value.String()
	}
	return te
}

func outputSessionsText(cmd *cobra.Command, sessions []store.Session) error {
	w := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions found in database.")
		return nil
	}
	for _, s := range sessions {
		status := "in progress"
		switch {
		case s.FinalFingerprint != "" && s.Won:
			status = "won"
		case s.FinalFingerprint != "":
			status = "ended"
		}
		fmt.Fprintf(w, "%s  %-16s %-12s nodes=%d\n", s.ID, s.World, status, s.NodeCount)
	}
	return nil
}

func outputTraceText(cmd *cobra.Command, result TraceResult) error {
	w := cmd.OutOrStdout()
	s := result.Session
	fmt.Fprintf(w, "Session %s (world %s)\n", s.ID, s.World)
	fmt.Fprintf(w, "  fixpoint=%t max_transitions=%d nodes=%d won=%t\n\n", s.Fixpoint, s.MaxTransitions, s.NodeCount, s.Won)

	for _, ev := range result.Timeline {
		fmt.Fprintf(w, "%4d  %-16s %s\n", ev.Seq, ev.Kind, describeEvent(ev))
		if len(ev.State) > 0 {
			fmt.Fprintf(w, "      state: %s\n", formatState(ev.State))
		}
	}

	kinds := make([]string, 0, len(result.Stats))
	for k := range result.Stats {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = fmt.Sprintf("%s=%d", k, result.Stats[k])
	}
	fmt.Fprintf(w, "\nStats: %s\n", strings.Join(parts, " "))
	return nil
}

func describeEvent(ev TraceEvent) string {
	switch engine.EventKind(ev.Kind) {
	case engine.EventFactReported:
		return fmt.Sprintf("%s=%s at node %d", ev.Name, ev.Value, ev.From)
	case engine.EventNodeCreated:
		if ev.From < 0 {
			return fmt.Sprintf("node %d (root)", ev.To)
		}
		return fmt.Sprintf("node %d from %d by %s=%s", ev.To, ev.From, ev.Name, ev.Value)
	case engine.EventTransition:
		created := ""
		if ev.Created {
			created = " (new)"
		}
		return fmt.Sprintf("%d → %d%s by %s=%s", ev.From, ev.To, created, ev.Name, ev.Value)
	case engine.EventRuleCue:
		return fmt.Sprintf("rule %s mentions %s", ev.Rule, ev.Name)
	case engine.EventNotified:
		return fmt.Sprintf("%s=%s", ev.Name, ev.Value)
	case engine.EventGoalsSatisfied:
		return fmt.Sprintf("at node %d", ev.To)
	default:
		return ""
	}
}

func formatState(state map[string]bool) string {
	names := make([]string, 0, len(state))
	for n := range state {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s=%t", n, state[n])
	}
	return strings.Join(parts, " ")
}
