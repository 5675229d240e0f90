package excel

import (
	"fmt"
	"sort"
	"time"
)

// Schema is the field registry of a record type T: each registered name owns a typed
// mutator, so binding a row never inspects T at run time.
//
// Register every field before the schema is first used; afterwards it is only read
// and may be shared between goroutines.
type Schema[T any] struct {
	typeName string
	fields   map[string]fieldBinder[T]
}

type fieldBinder[T any] struct {
	kind string
	// assign is nil for a field that exists but cannot be written.
	assign func(dst *T, c Cell, cv coercer) error
}

// NewSchema creates an empty registry for T.
func NewSchema[T any]() *Schema[T] {
	var zero T
	return &Schema[T]{
		typeName: fmt.Sprintf("%T", zero),
		fields:   make(map[string]fieldBinder[T]),
	}
}

// TypeName is the name used for T in error messages.
func (s *Schema[T]) TypeName() string {
	return s.typeName
}

// String registers a text field.
func (s *Schema[T]) String(name string, set func(dst *T, v string)) *Schema[T] {
	return s.register(name, "string", func(dst *T, c Cell, cv coercer) error {
		v, err := cv.toString(c)
		if err != nil {
			return err
		}
		set(dst, v)
		return nil
	})
}

// Int registers an integer field.
func (s *Schema[T]) Int(name string, set func(dst *T, v int64)) *Schema[T] {
	return s.register(name, "int", func(dst *T, c Cell, cv coercer) error {
		v, err := cv.toInt64(c)
		if err != nil {
			return err
		}
		set(dst, v)
		return nil
	})
}

// Float registers a floating point field.
func (s *Schema[T]) Float(name string, set func(dst *T, v float64)) *Schema[T] {
	return s.register(name, "float", func(dst *T, c Cell, cv coercer) error {
		v, err := cv.toFloat64(c)
		if err != nil {
			return err
		}
		set(dst, v)
		return nil
	})
}

// Bool registers a boolean field.
func (s *Schema[T]) Bool(name string, set func(dst *T, v bool)) *Schema[T] {
	return s.register(name, "bool", func(dst *T, c Cell, cv coercer) error {
		v, err := cv.toBool(c)
		if err != nil {
			return err
		}
		set(dst, v)
		return nil
	})
}

// Time registers a date or date-time field.
func (s *Schema[T]) Time(name string, set func(dst *T, v time.Time)) *Schema[T] {
	return s.register(name, "time", func(dst *T, c Cell, cv coercer) error {
		v, err := cv.toTime(c)
		if err != nil {
			return err
		}
		set(dst, v)
		return nil
	})
}

// ReadOnly registers a field that exists on T but must not be written.
// Mapping a column to it fails with ErrAccess.
func (s *Schema[T]) ReadOnly(name string) *Schema[T] {
	return s.register(name, "read-only", nil)
}

// Fields returns the registered field names in sorted order.
func (s *Schema[T]) Fields() []string {
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is registered.
func (s *Schema[T]) Has(name string) bool {
	_, ok := s.fields[name]
	return ok
}

func (s *Schema[T]) register(name, kind string, assign func(dst *T, c Cell, cv coercer) error) *Schema[T] {
	s.fields[name] = fieldBinder[T]{kind: kind, assign: assign}
	return s
}

func (s *Schema[T]) clone() *Schema[T] {
	c := &Schema[T]{typeName: s.typeName, fields: make(map[string]fieldBinder[T], len(s.fields))}
	for name, f := range s.fields {
		c.fields[name] = f
	}
	return c
}

func (s *Schema[T]) lookup(name string) (fieldBinder[T], error) {
	f, ok := s.fields[name]
	if !ok {
		return f, &FieldError{Type: s.typeName, Field: name, Err: ErrNoSuchField}
	}
	return f, nil
}
