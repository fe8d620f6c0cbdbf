package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_DoorUnlock(t *testing.T) {
	require.NoError(t, RunWithGolden(t, loadTestScenario(t, "door_unlock")))
}

func TestTraceSnapshot_Canonical(t *testing.T) {
	result := NewResult()
	result.Session = "s"
	result.Trace = []TraceEvent{{Seq: 1, Kind: "node_created", Value: "unknown", From: -1}}
	result.NodeCount = 1

	snap := NewTraceSnapshot("tiny", result)
	data, err := snap.MarshalCanonical()
	require.NoError(t, err)
	assert.Equal(t,
		`{"node_count":1,"scenario_name":"tiny","session":"s","trace":[{"created":false,"from":-1,"kind":"node_created","name":"","rule":"","seq":1,"to":0,"value":"unknown"}],"won":false}`,
		string(data))
}

func TestTraceSnapshot_StableAcrossRuns(t *testing.T) {
	s := loadTestScenario(t, "door_unlock")

	var outputs []string
	for i := 0; i < 3; i++ {
		result, err := Run(s)
		require.NoError(t, err)
		snap := NewTraceSnapshot(s.Name, result)
		data, err := snap.MarshalCanonical()
		require.NoError(t, err)
		outputs = append(outputs, string(data))
	}
	assert.Equal(t, outputs[0], outputs[1])
	assert.Equal(t, outputs[1], outputs[2])
}
