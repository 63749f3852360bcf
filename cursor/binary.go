package cursor

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/arrowskein/skein/event"
	"github.com/arrowskein/skein/skerr"
)

type utf8Cursor struct {
	baseField
	arr *array.String
}

func newUtf8Cursor(field arrow.Field, arr *array.String) *utf8Cursor {
	return &utf8Cursor{baseField{field}, arr}
}
func (c *utf8Cursor) Len() int           { return c.arr.Len() }
func (c *utf8Cursor) IsValid(i int) bool { return c.arr.IsValid(i) }
func (c *utf8Cursor) Read(i int, sink Sink) error {
	if !c.arr.IsValid(i) {
		return sink.Emit(event.NullEvent())
	}
	return sink.Emit(event.StrEvent(c.arr.Value(i)))
}

type largeUtf8Cursor struct {
	baseField
	arr *array.LargeString
}

func newLargeUtf8Cursor(field arrow.Field, arr *array.LargeString) *largeUtf8Cursor {
	return &largeUtf8Cursor{baseField{field}, arr}
}
func (c *largeUtf8Cursor) Len() int           { return c.arr.Len() }
func (c *largeUtf8Cursor) IsValid(i int) bool { return c.arr.IsValid(i) }
func (c *largeUtf8Cursor) Read(i int, sink Sink) error {
	if !c.arr.IsValid(i) {
		return sink.Emit(event.NullEvent())
	}
	return sink.Emit(event.StrEvent(c.arr.Value(i)))
}

type binaryCursor struct {
	baseField
	arr *array.Binary
}

func newBinaryCursor(field arrow.Field, arr *array.Binary) *binaryCursor {
	return &binaryCursor{baseField{field}, arr}
}
func (c *binaryCursor) Len() int           { return c.arr.Len() }
func (c *binaryCursor) IsValid(i int) bool { return c.arr.IsValid(i) }
func (c *binaryCursor) Read(i int, sink Sink) error {
	if !c.arr.IsValid(i) {
		return sink.Emit(event.NullEvent())
	}
	return sink.Emit(event.BinaryEvent(c.arr.Value(i)))
}

type largeBinaryCursor struct {
	baseField
	arr *array.LargeBinary
}

func newLargeBinaryCursor(field arrow.Field, arr *array.LargeBinary) *largeBinaryCursor {
	return &largeBinaryCursor{baseField{field}, arr}
}
func (c *largeBinaryCursor) Len() int           { return c.arr.Len() }
func (c *largeBinaryCursor) IsValid(i int) bool { return c.arr.IsValid(i) }
func (c *largeBinaryCursor) Read(i int, sink Sink) error {
	if !c.arr.IsValid(i) {
		return sink.Emit(event.NullEvent())
	}
	return sink.Emit(event.BinaryEvent(c.arr.Value(i)))
}

// fixedSizeBinaryCursor reads FixedSizeBinary(n); every valid row's payload
// is exactly n bytes (spec.md §4.2 "FixedSizeBinary(n)").
type fixedSizeBinaryCursor struct {
	baseField
	arr *array.FixedSizeBinary
}

func newFixedSizeBinaryCursor(field arrow.Field, arr *array.FixedSizeBinary) *fixedSizeBinaryCursor {
	return &fixedSizeBinaryCursor{baseField{field}, arr}
}
func (c *fixedSizeBinaryCursor) Len() int           { return c.arr.Len() }
func (c *fixedSizeBinaryCursor) IsValid(i int) bool { return c.arr.IsValid(i) }
func (c *fixedSizeBinaryCursor) Read(i int, sink Sink) error {
	if !c.arr.IsValid(i) {
		return sink.Emit(event.NullEvent())
	}
	b := c.arr.Value(i)
	want := c.field.Type.(*arrow.FixedSizeBinaryType).ByteWidth
	if len(b) != want {
		return skerr.New(skerr.Internal, "fixed size binary row has %d bytes, field declares %d", len(b), want).
			WithField(c.field.Name).WithDataType(c.field.Type.String())
	}
	return sink.Emit(event.BinaryEvent(b))
}
