package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/verity/internal/logic"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nReported facts:\n")
	for _, event := range e.Trace {
		if event.Kind == "fact_reported" {
			fmt.Fprintf(&buf, "  [%d] %s=%s\n", event.Seq, event.Name, event.Value)
		}
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion against result and returns the
// failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertFact:
			err = assertFact(result, a)
		case AssertWon:
			err = assertWon(result, a)
		case AssertNodeCount:
			err = assertCount(result, a.Type, "nodes", result.NodeCount, a.Count)
		case AssertNotified:
			err = assertCount(result, a.Type, a.Name+" deliveries", countNotes(result.Notes, a.Name), a.Count)
		case AssertEventCount:
			err = assertCount(result, a.Type, a.Name+" events", countEvents(result.Trace, a.Name), a.Count)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

// finalValue reads name from the final world-state; absent names are unknown.
func finalValue(result *Result, name string) logic.Truth {
	v, ok := result.Final[name]
	if !ok {
		return logic.Unknown
	}
	return logic.FromBool(v)
}

func assertFact(result *Result, a Assertion) error {
	got := finalValue(result, a.Name)
	if got.String() == a.Value {
		return nil
	}
	return &AssertionError{
		Type:     AssertFact,
		Expected: fmt.Sprintf("%s=%s", a.Name, a.Value),
		Actual:   fmt.Sprintf("%s=%s", a.Name, got),
		Trace:    result.Trace,
	}
}

func assertWon(result *Result, a Assertion) error {
	want := a.Value == "true"
	if result.Won == want {
		return nil
	}
	return &AssertionError{
		Type:     AssertWon,
		Expected: fmt.Sprintf("won=%t", want),
		Actual:   fmt.Sprintf("won=%t", result.Won),
		Trace:    result.Trace,
	}
}

func assertCount(result *Result, typ, what string, got, want int) error {
	if got == want {
		return nil
	}
	return &AssertionError{
		Type:     typ,
		Expected: fmt.Sprintf("%d %s", want, what),
		Actual:   fmt.Sprintf("%d %s", got, what),
		Trace:    result.Trace,
	}
}

func countNotes(notes []Note, name string) int {
	n := 0
	for _, note := range notes {
		if note.Name == name {
			n++
		}
	}
	return n
}

func countEvents(trace []TraceEvent, kind string) int {
	n := 0
	for _, ev := range trace {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
