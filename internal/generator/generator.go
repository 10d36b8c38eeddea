package generator

import (
	"bytes"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/mailru/easyjson/jwriter"
	"github.com/mcncl/marshalkit/internal/errors"
)

// Generator writes envelopes around already-encoded JSON payloads.
type Generator struct{}

// NewGenerator creates a new Generator instance
func NewGenerator() *Generator {
	return &Generator{}
}

// Wrap returns {"<tag>":<payload>}. The payload is copied verbatim and must
// be a single valid JSON value.
func (g *Generator) Wrap(tag string, payload []byte) ([]byte, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, errors.NewMarshalError("envelope tag is empty", nil)
	}
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return nil, errors.NewMarshalError(fmt.Sprintf("payload for %q is empty", tag), errors.ErrEmptyInput)
	}
	if !jsoniter.Valid(payload) {
		return nil, errors.NewMarshalError(fmt.Sprintf("payload for %q is not valid JSON", tag), errors.ErrInvalidJSON)
	}

	w := jwriter.Writer{}
	w.RawByte('{')
	w.String(tag)
	w.RawByte(':')
	w.Raw(payload, nil)
	w.RawByte('}')

	out, err := w.BuildBytes()
	if err != nil {
		return nil, errors.NewMarshalError("failed to write envelope", err)
	}
	return out, nil
}
