package excel

import (
	"errors"
	"reflect"
	"sync"
	"time"
)

var (
	timeType    = reflect.TypeOf(time.Time{})
	schemaCache sync.Map // reflect.Type -> *Schema[T]
)

// SchemaOf builds the registry of T from its struct fields, once per type.
//
// Every exported field is registered under its Go name. Fields of kind string, int*,
// uint*, float*, bool and time.Time, or pointers to those, are written from the cell;
// a field of any other type fails to convert. Unexported fields are registered as
// read-only. Each call returns a copy, so registering more fields on it leaves the
// cached registry untouched.
func SchemaOf[T any]() *Schema[T] {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if cached, ok := schemaCache.Load(t); ok {
		return cached.(*Schema[T]).clone()
	}
	s := NewSchema[T]()
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				s.ReadOnly(field.Name)
				continue
			}
			kind, ok := fieldKind(field.Type)
			if !ok {
				s.register(field.Name, "unsupported", unsupportedAssign[T](field.Type))
				continue
			}
			s.register(field.Name, kind, reflectAssign[T](field.Index, kind))
		}
	}
	actual, _ := schemaCache.LoadOrStore(t, s)
	return actual.(*Schema[T]).clone()
}

// fieldKind classifies the field type, looking through one pointer level.
func fieldKind(t reflect.Type) (string, bool) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType {
		return "time", true
	}
	switch t.Kind() {
	case reflect.String:
		return "string", true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "int", true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "uint", true
	case reflect.Float32, reflect.Float64:
		return "float", true
	case reflect.Bool:
		return "bool", true
	}
	return "", false
}

func reflectAssign[T any](index []int, kind string) func(dst *T, c Cell, cv coercer) error {
	return func(dst *T, c Cell, cv coercer) error {
		field := reflect.ValueOf(dst).Elem().FieldByIndex(index)
		var value reflect.Value
		switch kind {
		case "string":
			s, err := cv.toString(c)
			if err != nil {
				return err
			}
			value = reflect.ValueOf(s)
		case "int":
			i, err := cv.toInt64(c)
			if err != nil {
				return err
			}
			value = reflect.ValueOf(i)
		case "uint":
			u, err := cv.toUint64(c)
			if err != nil {
				return err
			}
			value = reflect.ValueOf(u)
		case "float":
			f, err := cv.toFloat64(c)
			if err != nil {
				return err
			}
			value = reflect.ValueOf(f)
		case "bool":
			b, err := cv.toBool(c)
			if err != nil {
				return err
			}
			value = reflect.ValueOf(b)
		case "time":
			tm, err := cv.toTime(c)
			if err != nil {
				return err
			}
			value = reflect.ValueOf(tm)
		}
		return setValue(field, value)
	}
}

func unsupportedAssign[T any](t reflect.Type) func(dst *T, c Cell, cv coercer) error {
	return func(dst *T, c Cell, cv coercer) error {
		return errors.New("unsupported field type " + t.String())
	}
}

// setValue stores v into field, allocating when the field is a pointer.
func setValue(field, v reflect.Value) error {
	target := field
	if field.Kind() == reflect.Pointer {
		target = reflect.New(field.Type().Elem()).Elem()
	}
	switch target.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if target.OverflowInt(v.Int()) {
			return errors.New("value overflows " + target.Type().String())
		}
		target.SetInt(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if target.OverflowUint(v.Uint()) {
			return errors.New("value overflows " + target.Type().String())
		}
		target.SetUint(v.Uint())
	case reflect.Float32, reflect.Float64:
		if target.OverflowFloat(v.Float()) {
			return errors.New("value overflows " + target.Type().String())
		}
		target.SetFloat(v.Float())
	default:
		target.Set(v.Convert(target.Type()))
	}
	if field.Kind() == reflect.Pointer {
		field.Set(target.Addr())
	}
	return nil
}
