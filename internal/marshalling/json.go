package marshalling

import (
	"fmt"
	"reflect"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/mcncl/marshalkit/internal/errors"
	"github.com/mcncl/marshalkit/internal/generator"
	"github.com/mcncl/marshalkit/internal/models"
	"github.com/mcncl/marshalkit/internal/parser"
	"go.uber.org/zap"
)

var (
	looseJSON = jsoniter.ConfigCompatibleWithStandardLibrary
	// strictJSON rejects fields the target type does not declare, which is
	// what makes an envelope fail the direct attempt.
	strictJSON = jsoniter.Config{
		EscapeHTML:             true,
		SortMapKeys:            true,
		ValidateJsonRawMessage: true,
		DisallowUnknownFields:  true,
	}.Froze()
)

// JSONMarshaller reads and writes enveloped JSON documents.
type JSONMarshaller struct {
	base
	gen *generator.Generator
}

// NewJSONMarshaller creates a JSON marshaller.
func NewJSONMarshaller(opts ...Option) *JSONMarshaller {
	return &JSONMarshaller{
		base: newBase(models.FormatJSON, newOptions(opts)),
		gen:  generator.NewGenerator(),
	}
}

// Marshal encodes v as {"<tag>":<v>}.
func (m *JSONMarshaller) Marshal(v any, alias string) (string, error) {
	tag, t, err := m.tag(v, alias)
	if err != nil {
		return "", err
	}

	payload, err := looseJSON.Marshal(v)
	if err != nil {
		return "", errors.NewMarshalError(fmt.Sprintf("failed to encode %s", t), err)
	}

	out, err := m.gen.Wrap(tag, payload)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Unmarshal decodes data into v. If data does not bind to v directly, the
// value of its first field is tried instead. A single-field document whose
// key is the tag of v, or any single-field document decoded into a map or
// interface, is unwrapped first.
func (m *JSONMarshaller) Unmarshal(data string, v any) error {
	target, err := targetOf(v)
	if err != nil {
		return err
	}
	if strings.TrimSpace(data) == "" {
		return errors.NewUnmarshalError(fmt.Sprintf("nothing to decode into %s", target), errors.ErrEmptyInput)
	}

	raw := []byte(data)
	direct := attempt{stage: stageDirect, run: func() error { return m.decode(raw, v) }}
	if !m.fallback {
		return m.unmarshal(target, direct)
	}

	envelope := attempt{stage: stageFallback, run: func() error { return m.unmarshalFirstField(raw, v, target) }}
	if key, ok := envelopeKey(raw); ok && m.prefersEnvelope(key, target) {
		return m.unmarshal(target, envelope, direct)
	}
	return m.unmarshal(target, direct, envelope)
}

// envelopeKey returns the key of a document holding exactly one non-null field.
func envelopeKey(raw []byte) (string, bool) {
	if n, err := parser.CountFields(raw); err != nil || n != 1 {
		return "", false
	}
	key, _, kind, err := parser.FirstField(raw)
	if err != nil || kind == models.Null {
		return "", false
	}
	return key, true
}

func (m *JSONMarshaller) unmarshalFirstField(raw []byte, v any, target reflect.Type) error {
	key, payload, kind, err := parser.FirstField(raw)
	if err != nil {
		return err
	}
	if kind == models.Null {
		return fmt.Errorf("field %q: %w", key, errors.ErrNullPayload)
	}

	m.logger.Debug("decoding envelope payload",
		zap.String("key", key),
		zap.Stringer("payload_kind", kind),
		zap.Stringer("target", target),
	)
	if err := m.decode(payload, v); err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	return nil
}

func (m *JSONMarshaller) decode(raw []byte, v any) error {
	api := looseJSON
	if m.strict {
		api = strictJSON
	}
	return decodeInto(v, func(fresh any) error {
		return api.Unmarshal(raw, fresh)
	})
}
