package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: a world, a sequence of
// reported facts with expected outcomes, and assertions on the final state
// and trace.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// World is the CUE package directory or .cue file defining the world.
	// Relative paths are resolved against the scenario file's directory.
	World string `yaml:"world"`

	// Session is the fixed session id. If empty, testutil.DefaultSession
	// is used so golden files stay byte-identical.
	Session string `yaml:"session,omitempty"`

	// Fixpoint enables repeated propagation sweeps until the state settles.
	Fixpoint bool `yaml:"fixpoint,omitempty"`

	// MaxTransitions overrides the per-report transition quota.
	MaxTransitions int `yaml:"max_transitions,omitempty"`

	// Steps are the facts reported, in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state and trace.
	Assertions []Assertion `yaml:"assertions"`
}

// Step reports one fact and optionally checks what the report did.
type Step struct {
	// Report is the qualified fact name (e.g. "Door.IsOpen").
	Report string `yaml:"report"`

	// Value is the reported value. Required.
	Value *bool `yaml:"value"`

	// Expect checks the engine.Report. Nil fields are not checked.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies expected report outcomes.
type ExpectClause struct {
	Changed     *bool `yaml:"changed,omitempty"`
	NodeCreated *bool `yaml:"node_created,omitempty"`
	Satisfied   *bool `yaml:"satisfied,omitempty"`
	Won         *bool `yaml:"won,omitempty"`

	// Error is the expected failure kind: "quota" or "oscillation".
	// Empty means the report must succeed.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the final state or the trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "fact": Name holds Value ("true", "false" or "unknown") at the end
	// - "won": the session was (Value "true") or was not won
	// - "node_count": the graph holds exactly Count nodes
	// - "notified": Name was delivered to its listener exactly Count times
	// - "event_count": events of kind Name occur exactly Count times
	Type string `yaml:"type"`

	Name  string `yaml:"name,omitempty"`
	Value string `yaml:"value,omitempty"`
	Count int    `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFact       = "fact"
	AssertWon        = "won"
	AssertNodeCount  = "node_count"
	AssertNotified   = "notified"
	AssertEventCount = "event_count"
)

// Expected error kinds.
const (
	ErrorQuota       = "quota"
	ErrorOscillation = "oscillation"
)

// LoadScenario reads and parses a scenario YAML file. The world path is
// resolved against the scenario's directory.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.World != "" && !filepath.IsAbs(scenario.World) {
		scenario.World = filepath.Join(filepath.Dir(path), scenario.World)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file in dir, sorted by file
// name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to list scenarios: %w", err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.World == "" {
		return fmt.Errorf("world is required")
	}
	if _, err := os.Stat(s.World); os.IsNotExist(err) {
		return fmt.Errorf("world not found: %s", s.World)
	}

	if s.MaxTransitions < 0 {
		return fmt.Errorf("max_transitions must be non-negative")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Report == "" {
			return fmt.Errorf("steps[%d]: report is required", i)
		}
		if step.Value == nil {
			return fmt.Errorf("steps[%d]: value is required", i)
		}
		if step.Expect != nil {
			switch step.Expect.Error {
			case "", ErrorQuota, ErrorOscillation:
			default:
				return fmt.Errorf("steps[%d].expect: unknown error kind %q", i, step.Expect.Error)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFact:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for fact", index)
		}
		switch a.Value {
		case "true", "false", "unknown":
		default:
			return fmt.Errorf("assertions[%d]: value must be true, false or unknown for fact", index)
		}
	case AssertWon:
		if a.Value != "true" && a.Value != "false" {
			return fmt.Errorf("assertions[%d]: value must be true or false for won", index)
		}
	case AssertNodeCount:
		if a.Count < 1 {
			return fmt.Errorf("assertions[%d]: count must be positive for node_count", index)
		}
	case AssertNotified, AssertEventCount:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for %s", index, a.Type)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
