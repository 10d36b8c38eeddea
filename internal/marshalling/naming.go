package marshalling

import (
	"reflect"
	"sync"

	"github.com/mcncl/marshalkit/internal/config"
)

// aliasRegistry maps types to root tags. Safe for concurrent use.
type aliasRegistry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]string
	byName map[string]string
	style  config.AliasStyle
}

func newAliasRegistry(style config.AliasStyle, byName map[string]string) *aliasRegistry {
	names := make(map[string]string, len(byName))
	for k, v := range byName {
		names[k] = v
	}
	return &aliasRegistry{
		byType: make(map[reflect.Type]string),
		byName: names,
		style:  style,
	}
}

func (r *aliasRegistry) register(alias string, t reflect.Type) {
	t = indirect(t)
	r.mu.Lock()
	r.byType[t] = alias
	r.mu.Unlock()
}

func (r *aliasRegistry) tagFor(t reflect.Type) string {
	t = indirect(t)

	r.mu.RLock()
	alias, ok := r.byType[t]
	r.mu.RUnlock()
	if ok {
		return alias
	}

	if t.Name() == "" {
		return kindWord(t)
	}
	qualified := t.String()
	if alias, ok := r.byName[qualified]; ok {
		return alias
	}
	return config.ApplyStyle(r.style, qualified, t.Name())
}

// DefaultTag returns the root tag used for values of type t when no alias
// is registered.
func DefaultTag(style config.AliasStyle, t reflect.Type) string {
	return newAliasRegistry(style, nil).tagFor(t)
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func kindWord(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Map:
		return "map"
	case reflect.Slice, reflect.Array:
		return "list"
	case reflect.Struct:
		return "struct"
	case reflect.Interface:
		return "any"
	default:
		return t.Kind().String()
	}
}
