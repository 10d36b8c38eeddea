package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_Indent(t *testing.T) {
	input := `{"car":{"name":"Audi","doors":[1,2]}}`
	expected := `{
  "car": {
    "name": "Audi",
    "doors": [
      1,
      2
    ]
  }
}
`
	out, err := NewFormatter("  ").Format([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, expected, string(out))
}

func TestFormat_Compact(t *testing.T) {
	input := `{
		"b": 1,
		"a": { "c": [ true, null ] }
	}`
	out, err := NewFormatter("").Format([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, "{\"b\":1,\"a\":{\"c\":[true,null]}}\n", string(out))
}

func TestFormat_EmptyInput(t *testing.T) {
	out, err := NewFormatter("  ").Format([]byte("   \n"))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestFormat_InvalidJSON(t *testing.T) {
	_, err := NewFormatter("  ").Format([]byte(`{"name": `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to format JSON")
}

func TestFormat_PreservesValueText(t *testing.T) {
	input := `{"z":"caf\u00e9","a":1.50,"m":[]}`

	out, err := NewFormatter("\t").Format([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, "{\n\t\"z\": \"caf\\u00e9\",\n\t\"a\": 1.50,\n\t\"m\": []\n}\n", string(out))

	out, err = NewFormatter("").Format(out)
	require.NoError(t, err)
	assert.Equal(t, input+"\n", string(out))
}
