package marshalling

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/mcncl/marshalkit/internal/errors"
	"github.com/mcncl/marshalkit/internal/models"
)

// XMLMarshaller reads and writes XML documents whose root element is the tag.
// The root element already plays the role of the envelope, so there is no
// fallback stage.
type XMLMarshaller struct {
	base
}

// NewXMLMarshaller creates an XML marshaller.
func NewXMLMarshaller(opts ...Option) *XMLMarshaller {
	return &XMLMarshaller{
		base: newBase(models.FormatXML, newOptions(opts)),
	}
}

// Marshal encodes v as <tag>...</tag>.
func (m *XMLMarshaller) Marshal(v any, alias string) (string, error) {
	tag, t, err := m.tag(v, alias)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	start := xml.StartElement{Name: xml.Name{Local: tag}}
	if err := enc.EncodeElement(v, start); err != nil {
		return "", errors.NewMarshalError(fmt.Sprintf("failed to encode %s", t), err)
	}
	if err := enc.Flush(); err != nil {
		return "", errors.NewMarshalError(fmt.Sprintf("failed to encode %s", t), err)
	}
	return buf.String(), nil
}

// Unmarshal decodes data into v. The root element name is not checked.
func (m *XMLMarshaller) Unmarshal(data string, v any) error {
	target, err := targetOf(v)
	if err != nil {
		return err
	}
	if strings.TrimSpace(data) == "" {
		return errors.NewUnmarshalError(fmt.Sprintf("nothing to decode into %s", target), errors.ErrEmptyInput)
	}

	err = decodeInto(v, func(fresh any) error {
		return xml.Unmarshal([]byte(data), fresh)
	})
	if err != nil {
		m.logFailure(stageDirect, target, err)
		return errors.NewUnmarshalError(fmt.Sprintf("cannot decode %s", target), err)
	}
	return nil
}
