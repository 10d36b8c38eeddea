package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	stderrors "errors" // Standard errors package

	"github.com/buger/jsonparser"
	"github.com/ghodss/yaml"
	jsoniter "github.com/json-iterator/go"
	"github.com/mcncl/marshalkit/internal/errors" // Custom errors package
	"github.com/mcncl/marshalkit/internal/models"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// errStopIteration ends jsonparser.ObjectEach after the first field.
var errStopIteration = stderrors.New("stop iteration")

// Parse reads a single JSON document from reader and validates it.
func Parse(reader io.Reader) (models.Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return models.Document{}, errors.NewInputError("failed to read input", err)
	}
	return parseBytes(data)
}

func parseBytes(data []byte) (models.Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return models.Document{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}

	decoder := jsonAPI.NewDecoder(bytes.NewReader(data))
	var root interface{}
	if err := decoder.Decode(&root); err != nil {
		return models.Document{}, errors.NewParsingError(
			fmt.Sprintf("JSON syntax error: %v", err),
			errors.ErrInvalidJSON,
		)
	}

	// Anything after the first value other than whitespace is rejected.
	if decoder.More() {
		var trailingValue interface{}
		if err := decoder.Decode(&trailingValue); err != nil {
			if !stderrors.Is(err, io.EOF) {
				return models.Document{}, errors.NewParsingError("invalid trailing data after first JSON value", errors.ErrInvalidJSON)
			}
		} else {
			return models.Document{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
		}
	}

	return models.Document{
		Raw:  data,
		Kind: KindOf(data),
	}, nil
}

// KindOf reports the kind of the JSON value at the start of data.
func KindOf(data []byte) models.ValueKind {
	_, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return models.Unknown
	}
	return toValueKind(dataType)
}

func toValueKind(vt jsonparser.ValueType) models.ValueKind {
	switch vt {
	case jsonparser.Object:
		return models.Object
	case jsonparser.Array:
		return models.Array
	case jsonparser.String:
		return models.String
	case jsonparser.Number:
		return models.Number
	case jsonparser.Boolean:
		return models.Boolean
	case jsonparser.Null:
		return models.Null
	default:
		return models.Unknown
	}
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.Document, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.Document{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return parseBytes([]byte(jsonString))
}

// ParseYAML converts a YAML document to JSON and parses the result.
func ParseYAML(data []byte) (models.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Document{}, errors.NewInputError("input is empty", errors.ErrEmptyInput)
	}
	converted, err := yaml.YAMLToJSON(data)
	if err != nil {
		return models.Document{}, errors.NewParsingError(fmt.Sprintf("YAML syntax error: %v", err), errors.ErrInvalidJSON)
	}
	return parseBytes(converted)
}

// ParseFile parses a JSON or YAML document from a file path. Files ending in
// .yaml or .yml are converted to JSON first.
func ParseFile(filePath string) (models.Document, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.Document{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Document{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	if len(data) == 0 {
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	if IsYAMLPath(filePath) {
		return ParseYAML(data)
	}
	return parseBytes(data)
}

// IsYAMLPath reports whether the file extension names a YAML document.
func IsYAMLPath(filePath string) bool {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// FirstField returns the key and raw value of the first field of a JSON
// object. The whole document must be valid, not just the first field.
// String values are returned with their quotes so the value is always a
// valid JSON document on its own.
func FirstField(data []byte) (string, []byte, models.ValueKind, error) {
	doc, err := parseBytes(data)
	if err != nil {
		return "", nil, models.Unknown, err
	}
	if !doc.IsObject() {
		return "", nil, doc.Kind, errors.NewParsingError(
			fmt.Sprintf("expected an object, got %s", doc.Kind),
			errors.ErrNotObject,
		)
	}

	var (
		key   string
		value []byte
		kind  models.ValueKind
		found bool
	)
	err = jsonparser.ObjectEach(doc.Raw, func(k []byte, v []byte, vt jsonparser.ValueType, _ int) error {
		key = unescapeKey(k)
		value = v
		kind = toValueKind(vt)
		found = true
		return errStopIteration
	})
	if err != nil && !stderrors.Is(err, errStopIteration) {
		return "", nil, models.Unknown, errors.NewParsingError(
			fmt.Sprintf("cannot read first field: %v", err),
			errors.ErrInvalidJSON,
		)
	}
	if !found {
		return "", nil, models.Object, errors.NewParsingError("object has no fields", errors.ErrNoFields)
	}

	if kind == models.String {
		quoted := make([]byte, 0, len(value)+2)
		quoted = append(quoted, '"')
		quoted = append(quoted, value...)
		value = append(quoted, '"')
	}
	return key, value, kind, nil
}

// CountFields returns the number of fields of a JSON object.
func CountFields(data []byte) (int, error) {
	count := 0
	err := jsonparser.ObjectEach(data, func(_ []byte, _ []byte, _ jsonparser.ValueType, _ int) error {
		count++
		return nil
	})
	if err != nil {
		return 0, errors.NewParsingError(fmt.Sprintf("cannot count fields: %v", err), errors.ErrInvalidJSON)
	}
	return count, nil
}

func unescapeKey(k []byte) string {
	s, err := jsonparser.ParseString(k)
	if err != nil {
		return string(k)
	}
	return s
}
