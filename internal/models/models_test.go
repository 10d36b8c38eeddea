package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{input: "json", expected: FormatJSON},
		{input: "", expected: FormatJSON},
		{input: "YAML", expected: FormatYAML},
		{input: "yml", expected: FormatYAML},
		{input: " xml ", expected: FormatXML},
		{input: "toml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestValueKind_String(t *testing.T) {
	assert.Equal(t, "object", Object.String())
	assert.Equal(t, "null", Null.String())
	assert.Equal(t, "unknown", ValueKind(42).String())

	text, err := Boolean.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "boolean", string(text))
}
