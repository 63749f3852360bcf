package cursor

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/arrowskein/skein/event"
)

// scalarReadKit is the per-variant slice of behaviour scalarCursor needs:
// how to turn the value at row i into an event.Event. Mirrors
// builder.scalarKit on the write side.
type scalarReadKit interface {
	read(arr arrow.Array, i int) event.Event
}

type boolReadKit struct{}

func (boolReadKit) read(arr arrow.Array, i int) event.Event {
	return event.BoolEvent(arr.(*array.Boolean).Value(i))
}

type int8ReadKit struct{}

func (int8ReadKit) read(arr arrow.Array, i int) event.Event {
	return event.I8Event(arr.(*array.Int8).Value(i))
}

type int16ReadKit struct{}

func (int16ReadKit) read(arr arrow.Array, i int) event.Event {
	return event.I16Event(arr.(*array.Int16).Value(i))
}

type int32ReadKit struct{}

func (int32ReadKit) read(arr arrow.Array, i int) event.Event {
	return event.I32Event(arr.(*array.Int32).Value(i))
}

type int64ReadKit struct{}

func (int64ReadKit) read(arr arrow.Array, i int) event.Event {
	return event.I64Event(arr.(*array.Int64).Value(i))
}

type uint8ReadKit struct{}

func (uint8ReadKit) read(arr arrow.Array, i int) event.Event {
	return event.U8Event(arr.(*array.Uint8).Value(i))
}

type uint16ReadKit struct{}

func (uint16ReadKit) read(arr arrow.Array, i int) event.Event {
	return event.U16Event(arr.(*array.Uint16).Value(i))
}

type uint32ReadKit struct{}

func (uint32ReadKit) read(arr arrow.Array, i int) event.Event {
	return event.U32Event(arr.(*array.Uint32).Value(i))
}

type uint64ReadKit struct{}

func (uint64ReadKit) read(arr arrow.Array, i int) event.Event {
	return event.U64Event(arr.(*array.Uint64).Value(i))
}

type float16ReadKit struct{}

func (float16ReadKit) read(arr arrow.Array, i int) event.Event {
	return event.F16Event(arr.(*array.Float16).Value(i).Bits())
}

type float32ReadKit struct{}

func (float32ReadKit) read(arr arrow.Array, i int) event.Event {
	return event.F32Event(arr.(*array.Float32).Value(i))
}

type float64ReadKit struct{}

func (float64ReadKit) read(arr arrow.Array, i int) event.Event {
	return event.F64Event(arr.(*array.Float64).Value(i))
}

// scalarCursor drives any fixed-width, non-composite Arrow array: Bool and
// the eleven numeric DataTypes. Validity is common to all of them; read
// delegates to kit for the type-specific value extraction.
type scalarCursor struct {
	baseField
	arr arrow.Array
	kit scalarReadKit
}

func newScalarCursor(field arrow.Field, arr arrow.Array, kit scalarReadKit) *scalarCursor {
	return &scalarCursor{baseField{field}, arr, kit}
}

func (s *scalarCursor) Len() int           { return s.arr.Len() }
func (s *scalarCursor) IsValid(i int) bool { return s.arr.IsValid(i) }

func (s *scalarCursor) Read(i int, sink Sink) error {
	if !s.arr.IsValid(i) {
		return sink.Emit(event.NullEvent())
	}
	return sink.Emit(s.kit.read(s.arr, i))
}
