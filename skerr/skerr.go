// Package skerr defines the error kinds shared by the builder engine and the
// cursor engine (spec.md §7). Their failures are *Error values that unwrap
// to one of these sentinels, so errors.Is works, and that can carry the
// field path and data type that were active when they occurred. The tracer
// in package skein uses its own Err* sentinels instead.
package skerr

import (
	"errors"
	"fmt"
)

// Kind is one of the semantic error categories from spec.md §7. There are no
// per-situation error types: every failure is one of these kinds, annotated.
type Kind error

var (
	// SchemaMismatch: an event does not fit the current builder/cursor's
	// expected shape (e.g. Str where StartStruct was expected).
	SchemaMismatch Kind = errors.New("schema mismatch")
	// NumericOverflow: a value is out of range for the target width or
	// decimal precision.
	NumericOverflow Kind = errors.New("numeric overflow")
	// Parse: a string could not be parsed into the target scalar.
	Parse Kind = errors.New("parse error")
	// LengthMismatch: sibling builders finished with unequal row counts, or
	// a FixedSizeList produced a different count than its declared width.
	LengthMismatch Kind = errors.New("length mismatch")
	// MissingField: a non-nullable struct field was absent in a record.
	MissingField Kind = errors.New("missing field")
	// UnknownVariant: a union/variant name is not present in the schema.
	UnknownVariant Kind = errors.New("unknown variant")
	// Unsupported: a constellation the core declines to represent.
	Unsupported Kind = errors.New("unsupported")
	// Internal: an invariant violation — a bug in the core, not the input.
	Internal Kind = errors.New("internal error")
)

// Error is the payload every failure carries: a kind, a human-readable
// message, and two optional annotations (dotted field path, textual data
// type). It formats as "<message> (field=<path>) (type=<dtype>)" with
// whichever annotations are set, and unwraps to its Kind so callers can use
// errors.Is(err, skerr.SchemaMismatch).
type Error struct {
	Kind     Kind
	Message  string
	Field    string
	DataType string
}

func (e *Error) Error() string {
	s := e.Message
	if e.Field != "" {
		s = fmt.Sprintf("%s (field=%s)", s, e.Field)
	}
	if e.DataType != "" {
		s = fmt.Sprintf("%s (type=%s)", s, e.DataType)
	}
	return s
}

func (e *Error) Unwrap() error { return e.Kind }

// New builds an Error of the given kind with no annotations.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithField returns a copy of e annotated with a dotted field path. The
// first annotation wins: once a path is set (e.g. by the builder closest to
// the failure), ancestors re-propagating the same error must not overwrite
// it.
func (e *Error) WithField(path string) *Error {
	if e.Field != "" {
		return e
	}
	cp := *e
	cp.Field = path
	return &cp
}

// WithDataType returns a copy of e annotated with the textual form of the
// data type active when the error occurred.
func (e *Error) WithDataType(dt string) *Error {
	if e.DataType != "" {
		return e
	}
	cp := *e
	cp.DataType = dt
	return &cp
}
