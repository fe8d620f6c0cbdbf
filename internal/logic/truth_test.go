package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruth_ZeroValueIsUnknown(t *testing.T) {
	var v Truth
	assert.Equal(t, Unknown, v)
	assert.False(t, v.IsKnown())
	assert.False(t, v.IsDesignated())
}

func TestTruth_Negate(t *testing.T) {
	assert.Equal(t, False, True.Negate())
	assert.Equal(t, True, False.Negate())
	assert.Equal(t, Unknown, Unknown.Negate())
}

func TestTruth_Bool(t *testing.T) {
	v, ok := True.Bool()
	assert.True(t, v)
	assert.True(t, ok)

	v, ok = False.Bool()
	assert.False(t, v)
	assert.True(t, ok)

	_, ok = Unknown.Bool()
	assert.False(t, ok)
}

func TestTruthOf(t *testing.T) {
	yes := true
	tests := []struct {
		name string
		in   any
		want Truth
	}{
		{"bool true", true, True},
		{"bool false", false, False},
		{"truth passthrough", False, False},
		{"pointer", &yes, True},
		{"nil pointer", (*bool)(nil), Unknown},
		{"string", " TRUE ", True},
		{"string false", "false", False},
		{"string unknown", "maybe", Unknown},
		{"nil", nil, Unknown},
		{"int", 1, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruthOf(tt.in))
		})
	}
}

func TestTruth_String(t *testing.T) {
	assert.Equal(t, "true", True.String())
	assert.Equal(t, "false", False.String())
	assert.Equal(t, "unknown", Unknown.String())
}
