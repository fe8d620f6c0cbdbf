// Package harness provides conformance testing for world definitions.
//
// The harness loads a CUE world, plays a scripted sequence of reported
// facts against a real engine, and validates the outcome as an executable
// contract test.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	world: ../worlds/door        # CUE package dir or .cue file
//	session: golden-door         # optional fixed session id
//	fixpoint: false              # optional
//	max_transitions: 100         # optional
//	steps:
//	  - report: Door.IsLocked
//	    value: false
//	    expect:
//	      changed: true
//	      node_created: true
//	  - report: Door.IsOpen
//	    value: true
//	    expect:
//	      won: true
//	assertions:
//	  - type: fact
//	    name: Door.IsOpen
//	    value: "true"
//	  - type: node_count
//	    count: 2
//
// # Assertion Types
//
//   - fact: a name holds true, false or unknown in the final world-state
//   - won: whether the goals were ever satisfied
//   - node_count: the exact number of world-state nodes
//   - notified: how many times a name was delivered to its listener
//   - event_count: how many events of a kind the trace holds
//
// # Deterministic Testing
//
// Every scenario runs on a fresh engine with a fixed session id
// (testutil.FixedSessionGenerator) and the engine's own logical clock, so
// the same scenario always yields a byte-identical trace for golden
// comparison.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/door_unlock.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
