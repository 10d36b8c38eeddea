// Package marshalling converts Go values to enveloped text documents and
// back. Each document carries its value under a single root tag, e.g.
// {"car":{"name":"Audi"}}. Unmarshalling first binds the document directly
// and, when that fails, retries on the value of the document's first field.
// Single-field documents keyed by the target's own tag are unwrapped first.
package marshalling

import (
	"fmt"
	"reflect"

	"github.com/mcncl/marshalkit/internal/config"
	"github.com/mcncl/marshalkit/internal/errors"
	"github.com/mcncl/marshalkit/internal/models"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Marshaller encodes values under a root tag and decodes them back.
type Marshaller interface {
	// Marshal encodes v under alias. An empty alias falls back to a
	// registered alias for the type of v, then to a name derived from it.
	Marshal(v any, alias string) (string, error)
	// Unmarshal decodes data into v, which must be a non-nil pointer.
	Unmarshal(data string, v any) error
	// Alias registers alias as the root tag for the type of v.
	Alias(alias string, v any) error
	// Format reports the text format produced.
	Format() models.Format
}

var (
	_ Marshaller = &JSONMarshaller{}
	_ Marshaller = &YAMLMarshaller{}
	_ Marshaller = &XMLMarshaller{}
)

const (
	stageDirect   = "direct"
	stageFallback = "fallback"
)

type options struct {
	logger   *zap.Logger
	aliases  map[string]string
	style    config.AliasStyle
	strict   bool
	fallback bool
}

// Option configures a marshaller.
type Option func(*options)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAliases seeds root tags keyed by qualified type name, e.g.
// {"models.Car": "car"}.
func WithAliases(aliases map[string]string) Option {
	return func(o *options) {
		for name, alias := range aliases {
			o.aliases[name] = alias
		}
	}
}

// WithNaming sets how default root tags are derived from type names.
func WithNaming(style config.AliasStyle) Option {
	return func(o *options) {
		if style != "" {
			o.style = style
		}
	}
}

// WithStrict controls whether unknown fields fail decoding.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithFallback controls whether a failed direct decode is retried on the
// first field of the document.
func WithFallback(fallback bool) Option {
	return func(o *options) {
		o.fallback = fallback
	}
}

// WithConfig applies the marshalling settings of cfg.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		if cfg == nil {
			return
		}
		WithAliases(cfg.Aliases)(o)
		WithNaming(cfg.Naming.AliasStyle)(o)
		o.strict = cfg.Unmarshal.Strict
		o.fallback = cfg.Unmarshal.EnvelopeFallback
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:   zap.NewNop(),
		aliases:  make(map[string]string),
		style:    config.AliasQualified,
		strict:   true,
		fallback: true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New returns the marshaller for format.
func New(format models.Format, opts ...Option) (Marshaller, error) {
	switch format {
	case models.FormatJSON:
		return NewJSONMarshaller(opts...), nil
	case models.FormatYAML:
		return NewYAMLMarshaller(opts...), nil
	case models.FormatXML:
		return NewXMLMarshaller(opts...), nil
	}
	return nil, errors.NewConfigError(fmt.Sprintf("no marshaller for format %q", format), errors.ErrUnsupportedFormat)
}

// UnmarshalAs decodes data into a new T.
func UnmarshalAs[T any](m Marshaller, data string) (T, error) {
	var out T
	if err := m.Unmarshal(data, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// base carries the state shared by every format.
type base struct {
	format   models.Format
	names    *aliasRegistry
	logger   *zap.Logger
	strict   bool
	fallback bool
}

func newBase(format models.Format, o options) base {
	return base{
		format:   format,
		names:    newAliasRegistry(o.style, o.aliases),
		logger:   o.logger.With(zap.String("format", string(format))),
		strict:   o.strict,
		fallback: o.fallback,
	}
}

// Format reports the text format produced.
func (b *base) Format() models.Format {
	return b.format
}

// Alias registers alias as the root tag for the type of v.
func (b *base) Alias(alias string, v any) error {
	if v == nil {
		return errors.NewMarshalError("cannot alias the type of a nil value", errors.ErrNilValue)
	}
	if alias == "" {
		return errors.NewMarshalError("alias is empty", nil)
	}
	b.names.register(alias, reflect.TypeOf(v))
	return nil
}

// tag resolves the root tag for v, registering alias when one is given.
func (b *base) tag(v any, alias string) (string, reflect.Type, error) {
	if isNil(v) {
		return "", nil, errors.NewMarshalError("nothing to marshal", errors.ErrNilValue)
	}
	t := reflect.TypeOf(v)
	if alias != "" {
		b.names.register(alias, t)
		return alias, t, nil
	}
	return b.names.tagFor(t), t, nil
}

// attempt is one way of binding a document to the target.
type attempt struct {
	stage string
	run   func() error
}

// unmarshal runs attempts in order and stops at the first success. When all
// of them fail the errors are combined into one unmarshal error.
func (b *base) unmarshal(target reflect.Type, attempts ...attempt) error {
	var errs error
	for _, a := range attempts {
		err := a.run()
		if err == nil {
			return nil
		}
		b.logFailure(a.stage, target, err)
		errs = multierr.Append(errs, err)
	}

	if len(attempts) == 1 {
		return errors.NewUnmarshalError(fmt.Sprintf("cannot decode %s", target), errs)
	}
	return errors.NewUnmarshalError(fmt.Sprintf("cannot decode %s directly or from an envelope", target), errs)
}

// prefersEnvelope reports whether a single-field document keyed by key is
// unwrapped before it is bound directly. Maps and interfaces bind any
// object, the envelope included.
func (b *base) prefersEnvelope(key string, target reflect.Type) bool {
	if key == b.names.tagFor(target) {
		return true
	}
	switch indirect(target).Kind() {
	case reflect.Map, reflect.Interface:
		return true
	}
	return false
}

func (b *base) logFailure(stage string, target reflect.Type, err error) {
	b.logger.Debug("unmarshal attempt failed",
		zap.String("stage", stage),
		zap.Stringer("target", target),
		zap.Error(err),
	)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// targetOf validates v as a decode target and returns the pointed-to type.
func targetOf(v any) (reflect.Type, error) {
	if v == nil {
		return nil, errors.NewUnmarshalError("target is nil", errors.ErrInvalidTarget)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return nil, errors.NewUnmarshalError(fmt.Sprintf("target %T is not a non-nil pointer", v), errors.ErrInvalidTarget)
	}
	return rv.Type().Elem(), nil
}

// decodeInto runs decode against a fresh value and copies it into v only on
// success, so a failed attempt never leaves v half written.
func decodeInto(v any, decode func(fresh any) error) error {
	rv := reflect.ValueOf(v)
	fresh := reflect.New(rv.Type().Elem())
	if err := decode(fresh.Interface()); err != nil {
		return err
	}
	rv.Elem().Set(fresh.Elem())
	return nil
}
