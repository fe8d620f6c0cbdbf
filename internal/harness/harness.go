package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/verity/internal/compiler"
	"github.com/roach88/verity/internal/engine"
	"github.com/roach88/verity/internal/logic"
	"github.com/roach88/verity/internal/testutil"
	"github.com/roach88/verity/internal/world"
)

// Harness executes scenarios against a real engine.
type Harness struct {
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger passed to every engine. Defaults to discarding.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// New creates a harness.
func New(opts ...Option) *Harness {
	h := &Harness{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default harness.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(scenario)
}

// Run loads the scenario's world and executes it.
//
// Execution flow:
//  1. Load and compile the world
//  2. Build it on a fresh engine with a fixed session id, recording every
//     event and every callback delivery
//  3. Report each step's fact and check its expect clause
//  4. Evaluate the assertions against the final state and trace
//
// The returned error covers setup failures only. Expect and assertion
// failures are recorded on the result.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	spec, err := compiler.LoadWorld(scenario.World)
	if err != nil {
		return nil, fmt.Errorf("failed to load world: %w", err)
	}
	return h.RunWorld(scenario, spec)
}

// RunWorld executes scenario against an already compiled world.
func (h *Harness) RunWorld(scenario *Scenario, spec *compiler.WorldSpec) (*Result, error) {
	result := NewResult()

	opts := []engine.Option{
		engine.WithLogger(h.logger),
		engine.WithListener(result),
		engine.WithSessionIDs(testutil.NewFixedSessionGenerator(scenario.Session)),
	}
	if scenario.Fixpoint {
		opts = append(opts, engine.WithFixpoint())
	}
	if scenario.MaxTransitions > 0 {
		opts = append(opts, engine.WithMaxTransitions(scenario.MaxTransitions))
	}

	w, err := world.Build(spec, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build world: %w", err)
	}
	w.ListenAll(func(name string, value logic.Truth) {
		result.Notes = append(result.Notes, Note{Name: name, Value: value.String()})
	})
	result.Session = w.Engine.Session()

	for i, step := range scenario.Steps {
		report, err := w.Report(step.Report, *step.Value)
		for _, msg := range checkExpect(i, step, report, err) {
			result.AddError(msg)
		}
		h.logger.Info("step completed",
			"step", i,
			"fact", step.Report,
			"value", *step.Value,
			"from", report.From,
			"to", report.To,
			"transitions", report.Transitions,
		)
	}

	result.Final = w.Engine.Current().Snapshot()
	result.NodeCount = w.Engine.NodeCount()
	result.Won = w.Engine.Won()

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// checkExpect compares one report against its step's expect clause.
func checkExpect(i int, step Step, report engine.Report, err error) []string {
	var want string
	if step.Expect != nil {
		want = step.Expect.Error
	}

	var failures []string
	if got := errorKind(err); got != want {
		if err != nil && want == "" {
			failures = append(failures, fmt.Sprintf("steps[%d]: report %s: unexpected error: %v", i, step.Report, err))
		} else {
			failures = append(failures, fmt.Sprintf("steps[%d]: report %s: expected error %q, got %q", i, step.Report, want, got))
		}
	}
	if step.Expect == nil {
		return failures
	}

	checks := []struct {
		field string
		want  *bool
		got   bool
	}{
		{"changed", step.Expect.Changed, report.Changed},
		{"node_created", step.Expect.NodeCreated, report.NodeCreated},
		{"satisfied", step.Expect.Satisfied, report.Satisfied},
		{"won", step.Expect.Won, report.Won},
	}
	for _, c := range checks {
		if c.want != nil && *c.want != c.got {
			failures = append(failures, fmt.Sprintf("steps[%d]: report %s: expected %s=%t, got %t", i, step.Report, c.field, *c.want, c.got))
		}
	}
	return failures
}

func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case engine.IsQuotaError(err):
		return ErrorQuota
	case engine.IsOscillationError(err):
		return ErrorOscillation
	default:
		return err.Error()
	}
}
