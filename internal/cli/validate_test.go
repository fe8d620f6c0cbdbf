package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	out, err := execute(t, "validate", worldPath("door"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ World door valid")
	assert.NotContains(t, out, "⚠")
}

func TestValidate_ValidJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "validate", worldPath("door"))
	require.NoError(t, err)

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, result.Valid)
	assert.Equal(t, "door", result.World)
	assert.Len(t, result.WorldHash, 64)
	assert.Equal(t, true, result.Witness["Door.IsOpen"])
	assert.Equal(t, false, result.Witness["Door.IsLocked"])
}

func TestValidate_CycleWarning(t *testing.T) {
	out, err := execute(t, "validate", worldPath("loop.cue"))
	require.NoError(t, err, "cycles warn but do not fail")
	assert.Contains(t, out, "⚠ Potential cycle detected: a_b → b_a → a_b")
	assert.Contains(t, out, "✓ World loop.cue valid")
}

func TestValidate_Unwinnable(t *testing.T) {
	out, err := execute(t, "validate", worldPath("unwinnable.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "E209")
	assert.Contains(t, out, "game can never be won")
}

func TestValidate_UnknownReference(t *testing.T) {
	out, err := execute(t, "--format", "json", "validate", worldPath("dangling.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E203", resp.Error.Code)
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0].Message, "Door.IsAjar")
}

func TestValidate_BrokenCUE(t *testing.T) {
	out, err := execute(t, "validate", worldPath("broken.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeCompile)
}

func TestValidate_NotFound(t *testing.T) {
	out, err := execute(t, "validate", worldPath("missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}
