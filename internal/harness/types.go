package harness

import (
	"github.com/roach88/verity/internal/engine"
)

// TraceEvent is the golden-friendly form of an engine.Event.
type TraceEvent struct {
	Seq     int64  `json:"seq"`
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Value   string `json:"value"`
	From    int    `json:"from"`
	To      int    `json:"to"`
	Created bool   `json:"created"`
	Rule    string `json:"rule"`
}

// Note is one callback delivery to an entity listener.
type Note struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Session is the engine session id stamped on every event.
	Session string `json:"session"`

	// Trace contains every engine event in seq order.
	Trace []TraceEvent `json:"trace"`

	// Notes are the callback deliveries, in delivery order.
	Notes []Note `json:"notes"`

	// Errors contains expect and assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the world-state current after the last step. Names absent
	// from it are unknown.
	Final map[string]bool `json:"final"`

	NodeCount int  `json:"node_count"`
	Won       bool `json:"won"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Notes:  []Note{},
		Errors: []string{},
		Final:  make(map[string]bool),
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// OnEvent implements engine.Listener by appending ev to the trace.
func (r *Result) OnEvent(ev engine.Event) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:     ev.Seq,
		Kind:    string(ev.Kind),
		Name:    ev.Name,
		Value:   ev.Value.String(),
		From:    ev.From,
		To:      ev.To,
		Created: ev.Created,
		Rule:    ev.Rule,
	})
}
