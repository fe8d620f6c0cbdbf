package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes content to a scenario file next to a copy of the
// door world and returns its path.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()

	worldDir := filepath.Join(dir, "door")
	require.NoError(t, os.MkdirAll(worldDir, 0o755))
	src, err := os.ReadFile(filepath.Join("testdata", "worlds", "door", "door.cue"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(worldDir, "door.cue"), src, 0o644))

	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "door_unlock.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "door_unlock", s.Name)
	assert.Equal(t, filepath.Join("testdata", "worlds", "door"), s.World, "world resolves against the scenario dir")
	assert.Equal(t, "golden-door", s.Session)
	require.Len(t, s.Steps, 2)
	assert.Equal(t, "Door.IsLocked", s.Steps[0].Report)
	require.NotNil(t, s.Steps[0].Value)
	assert.False(t, *s.Steps[0].Value)
	require.NotNil(t, s.Steps[1].Expect)
	require.NotNil(t, s.Steps[1].Expect.Won)
	assert.True(t, *s.Steps[1].Expect.Won)
	assert.Nil(t, s.Steps[1].Expect.NodeCreated)
	assert.Len(t, s.Assertions, 7)
}

func TestLoadScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown field",
			content: "name: x\ndescription: d\nworld: door\nstep: []\n",
			wantErr: "field step not found",
		},
		{
			name:    "missing name",
			content: "description: d\nworld: door\nsteps: [{report: Door.IsOpen, value: true}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: x\nworld: door\nsteps: [{report: Door.IsOpen, value: true}]\n",
			wantErr: "description is required",
		},
		{
			name:    "missing world",
			content: "name: x\ndescription: d\nsteps: [{report: Door.IsOpen, value: true}]\n",
			wantErr: "world is required",
		},
		{
			name:    "world not found",
			content: "name: x\ndescription: d\nworld: nowhere\nsteps: [{report: Door.IsOpen, value: true}]\n",
			wantErr: "world not found",
		},
		{
			name:    "no steps",
			content: "name: x\ndescription: d\nworld: door\nsteps: []\n",
			wantErr: "steps list is required",
		},
		{
			name:    "step without value",
			content: "name: x\ndescription: d\nworld: door\nsteps: [{report: Door.IsOpen}]\n",
			wantErr: "steps[0]: value is required",
		},
		{
			name:    "step without report",
			content: "name: x\ndescription: d\nworld: door\nsteps: [{value: true}]\n",
			wantErr: "steps[0]: report is required",
		},
		{
			name:    "unknown error kind",
			content: "name: x\ndescription: d\nworld: door\nsteps: [{report: Door.IsOpen, value: true, expect: {error: boom}}]\n",
			wantErr: `unknown error kind "boom"`,
		},
		{
			name:    "negative quota",
			content: "name: x\ndescription: d\nworld: door\nmax_transitions: -1\nsteps: [{report: Door.IsOpen, value: true}]\n",
			wantErr: "max_transitions must be non-negative",
		},
		{
			name:    "unknown assertion",
			content: "name: x\ndescription: d\nworld: door\nsteps: [{report: Door.IsOpen, value: true}]\nassertions: [{type: vibes}]\n",
			wantErr: `unknown assertion type "vibes"`,
		},
		{
			name:    "fact value",
			content: "name: x\ndescription: d\nworld: door\nsteps: [{report: Door.IsOpen, value: true}]\nassertions: [{type: fact, name: Door.IsOpen, value: maybe}]\n",
			wantErr: "value must be true, false or unknown",
		},
		{
			name:    "node count",
			content: "name: x\ndescription: d\nworld: door\nsteps: [{report: Door.IsOpen, value: true}]\nassertions: [{type: node_count}]\n",
			wantErr: "count must be positive",
		},
		{
			name:    "notified name",
			content: "name: x\ndescription: d\nworld: door\nsteps: [{report: Door.IsOpen, value: true}]\nassertions: [{type: notified, count: 1}]\n",
			wantErr: "name is required for notified",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join("testdata", "scenarios", "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestLoadScenarios(t *testing.T) {
	scenarios, err := LoadScenarios(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "door_unlock", scenarios[0].Name)
	assert.Equal(t, "flipflop_oscillates", scenarios[1].Name)
}
