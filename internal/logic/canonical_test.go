package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortedKeys(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{"b": true, "a": 1, "c": "x"})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":true,"c":"x"}`, string(got))
}

func TestMarshalCanonical_UTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes as surrogates 0xD83D..., which sorts before U+FF61
	// in UTF-16 but after it in UTF-8.
	got, err := MarshalCanonical(map[string]any{"\uff61": true, "\U0001F600": false})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":false,\"\uff61\":true}", string(got))
}

func TestMarshalCanonical_NoHTMLEscape(t *testing.T) {
	got, err := MarshalCanonical("<a&b>")
	require.NoError(t, err)
	assert.Equal(t, `"<a&b>"`, string(got))
}

func TestMarshalCanonical_LineSeparatorsLiteral(t *testing.T) {
	got, err := MarshalCanonical("a\u2028b\u2029")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029\"", string(got))

	got, err = MarshalCanonical(`\u2028`)
	require.NoError(t, err)
	assert.Equal(t, `"\\u2028"`, string(got), "escaped backslash is not an escape")
}

func TestMarshalCanonical_NFC(t *testing.T) {
	decomposed, err := MarshalCanonical("e\u0301")
	require.NoError(t, err)
	composed, err := MarshalCanonical("\u00e9")
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
}

func TestMarshalCanonical_Rejects(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.Error(t, err)

	_, err = MarshalCanonical(1.5)
	assert.Error(t, err)

	_, err = MarshalCanonical(map[string]any{"k": struct{}{}})
	assert.Error(t, err)

	var a *Assignment
	_, err = MarshalCanonical(a)
	assert.Error(t, err)
}

func TestMarshalCanonical_Assignment(t *testing.T) {
	got, err := MarshalCanonical(AssignmentOf(P("b", false), P("a", true)))
	require.NoError(t, err)
	assert.Equal(t, `{"a":true,"b":false}`, string(got))
}
