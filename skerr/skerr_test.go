package skerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorUnwrapsToKind(t *testing.T) {
	err := New(SchemaMismatch, "expected %s, got %s", "StartStruct", "Str")
	assert.True(t, errors.Is(err, SchemaMismatch))
	assert.False(t, errors.Is(err, Parse))
}

func TestErrorMessageFormatting(t *testing.T) {
	err := New(Parse, "bad input")
	assert.Equal(t, "bad input", err.Error())

	withField := err.WithField("row.name")
	assert.Equal(t, "bad input (field=row.name)", withField.Error())

	withBoth := withField.WithDataType("utf8")
	assert.Equal(t, "bad input (field=row.name) (type=utf8)", withBoth.Error())
}

func TestWithFieldDoesNotOverwrite(t *testing.T) {
	err := New(MissingField, "absent").WithField("a.b")
	reannotated := err.WithField("c.d")
	assert.Equal(t, "a.b", reannotated.Field)
}

func TestWithDataTypeDoesNotOverwrite(t *testing.T) {
	err := New(NumericOverflow, "too big").WithDataType("int8")
	reannotated := err.WithDataType("int16")
	assert.Equal(t, "int8", reannotated.DataType)
}

func TestWithFieldReturnsCopy(t *testing.T) {
	base := New(Unsupported, "nope")
	annotated := base.WithField("x")
	assert.Equal(t, "", base.Field, "WithField must not mutate the receiver")
	assert.Equal(t, "x", annotated.Field)
}
