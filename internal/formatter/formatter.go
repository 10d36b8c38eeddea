package formatter

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/pretty"
)

// Formatter renders JSON output either indented or compact
type Formatter struct {
	indent string
}

// NewFormatter creates a new Formatter instance. An empty indent produces
// compact output.
func NewFormatter(indent string) *Formatter {
	return &Formatter{indent: indent}
}

// Format re-renders a JSON document without changing key order. A trailing
// newline is always added to non-empty output.
func (f *Formatter) Format(data []byte) ([]byte, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if !jsoniter.Valid(data) {
		return nil, fmt.Errorf("failed to format JSON: invalid document")
	}

	if f.indent == "" {
		return append(pretty.Ugly(data), '\n'), nil
	}

	// Width 0 keeps every array element on its own line.
	return pretty.PrettyOptions(data, &pretty.Options{Indent: f.indent}), nil
}
