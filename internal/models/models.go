package models

import (
	"fmt"
	"strings"
)

// ValueKind is the kind of a JSON value.
type ValueKind int

const (
	Unknown ValueKind = iota
	Object
	Array
	String
	Number
	Boolean
	Null
)

var kindNames = map[ValueKind]string{
	Unknown: "unknown",
	Object:  "object",
	Array:   "array",
	String:  "string",
	Number:  "number",
	Boolean: "boolean",
	Null:    "null",
}

func (k ValueKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[Unknown]
}

// MarshalText lets kinds print as words in JSON and YAML output.
func (k ValueKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Document holds a validated JSON document.
type Document struct {
	Raw  []byte
	Kind ValueKind
}

// IsObject reports whether the document root is a JSON object.
func (d Document) IsObject() bool {
	return d.Kind == Object
}

// Analysis describes the shape of a document and whether it looks like an
// envelope, i.e. a single-field object whose value is the real payload.
type Analysis struct {
	RootKind    ValueKind `json:"root_kind" yaml:"root_kind"`
	FieldCount  int       `json:"field_count" yaml:"field_count"`
	FirstKey    string    `json:"first_key,omitempty" yaml:"first_key,omitempty"`
	PayloadKind ValueKind `json:"payload_kind" yaml:"payload_kind"`
	Enveloped   bool      `json:"enveloped" yaml:"enveloped"`
	KnownAlias  bool      `json:"known_alias" yaml:"known_alias"`
}

// Format names a supported text encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXML  Format = "xml"
)

// ParseFormat maps a user-supplied name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xml":
		return FormatXML, nil
	}
	return "", fmt.Errorf("unknown format %q", name)
}
