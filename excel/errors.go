package excel

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig reports a binder that was configured wrongly or incompletely.
	ErrConfig = errors.New("invalid configuration")
	// ErrAccess reports an unreadable workbook or a field that cannot be written.
	ErrAccess = errors.New("access denied")
	// ErrNoSuchField reports a mapping key that names no field of the target type.
	ErrNoSuchField = errors.New("no such field")
	// ErrCoercion reports a cell whose value cannot be converted to the field type.
	ErrCoercion = errors.New("cannot convert cell value")
)

// FieldError is returned when a mapped field is missing or not writable.
type FieldError struct {
	Type  string
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: type=%s, field=%s", e.Err, e.Type, e.Field)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// SourceError is returned when the workbook cannot be opened or read.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%v: file=%s: %v", ErrAccess, e.Path, e.Err)
}

// Is reports SourceError as ErrAccess so callers need not know the concrete type.
func (e *SourceError) Is(target error) bool {
	return target == ErrAccess
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// CoercionError carries the cell coordinates of a failed conversion.
type CoercionError struct {
	Sheet string
	Row   int // zero-based
	Col   int // zero-based
	Field string
	Value string
	Err   error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("%v: value=%q, field=%s @ %s!%s: %v", ErrCoercion, e.Value, e.Field, e.Sheet, cellName(e.Col, e.Row), e.Err)
}

func (e *CoercionError) Is(target error) bool {
	return target == ErrCoercion
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}
