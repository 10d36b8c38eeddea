package marshalling

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/mcncl/marshalkit/internal/errors"
	"github.com/mcncl/marshalkit/internal/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// YAMLMarshaller reads and writes enveloped YAML documents.
type YAMLMarshaller struct {
	base
}

// NewYAMLMarshaller creates a YAML marshaller.
func NewYAMLMarshaller(opts ...Option) *YAMLMarshaller {
	return &YAMLMarshaller{
		base: newBase(models.FormatYAML, newOptions(opts)),
	}
}

// Marshal encodes v as a single-key mapping "<tag>: <v>".
func (m *YAMLMarshaller) Marshal(v any, alias string) (string, error) {
	tag, t, err := m.tag(v, alias)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any{tag: v}); err != nil {
		return "", errors.NewMarshalError(fmt.Sprintf("failed to encode %s", t), err)
	}
	if err := enc.Close(); err != nil {
		return "", errors.NewMarshalError(fmt.Sprintf("failed to encode %s", t), err)
	}
	return buf.String(), nil
}

// Unmarshal decodes data into v, retrying on the value of the first key of
// the root mapping when the direct attempt fails. Single-key mappings are
// unwrapped first under the same rules as JSON.
func (m *YAMLMarshaller) Unmarshal(data string, v any) error {
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

	envelope := attempt{stage: stageFallback, run: func() error { return m.unmarshalFirstKey(raw, v, target) }}
	if root, err := rootMapping(raw); err == nil && len(root.Content) == 2 &&
		root.Content[1].ShortTag() != "!!null" && m.prefersEnvelope(root.Content[0].Value, target) {
		return m.unmarshal(target, envelope, direct)
	}
	return m.unmarshal(target, direct, envelope)
}

// rootMapping returns the mapping node at the root of a YAML document.
func rootMapping(raw []byte) (*yaml.Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, errors.NewParsingError("cannot read YAML document", err)
	}

	node := &root
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, errors.NewParsingError("expected a mapping at the document root", errors.ErrNotObject)
	}
	return node, nil
}

func (m *YAMLMarshaller) unmarshalFirstKey(raw []byte, v any, target reflect.Type) error {
	node, err := rootMapping(raw)
	if err != nil {
		return err
	}
	if len(node.Content) < 2 {
		return errors.NewParsingError("mapping has no keys", errors.ErrNoFields)
	}

	key, value := node.Content[0].Value, node.Content[1]
	if value.ShortTag() == "!!null" {
		return fmt.Errorf("key %q: %w", key, errors.ErrNullPayload)
	}

	// Re-encode the value so the strict decoder can check it for unknown
	// fields; yaml.Node.Decode has no such option.
	payload, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("key %q: %w", key, err)
	}

	m.logger.Debug("decoding envelope payload",
		zap.String("key", key),
		zap.Stringer("target", target),
	)
	if err := m.decode(payload, v); err != nil {
		return fmt.Errorf("key %q: %w", key, err)
	}
	return nil
}

func (m *YAMLMarshaller) decode(raw []byte, v any) error {
	return decodeInto(v, func(fresh any) error {
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(m.strict)
		return dec.Decode(fresh)
	})
}
