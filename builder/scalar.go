package builder

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/float16"

	"github.com/arrowskein/skein/event"
)

// scalarKit is the per-variant slice of behaviour a scalarBuilder needs:
// which event.Kind it accepts and how to append it to the concrete
// arrow/array builder. Bool and the eleven numeric DataTypes all share the
// same validity/Some/Null/Default handling (below), so only this sliver
// differs per type — mirroring the way bodkin's appendFunc closures differ
// only in their type switch case while the surrounding loop is identical.
type scalarKit interface {
	typeName() string
	append(bld array.Builder, ev event.Event) bool
}

type boolKit struct{}

func (boolKit) typeName() string { return "Bool" }
func (boolKit) append(b array.Builder, ev event.Event) bool {
	if ev.Kind != event.Bool {
		return false
	}
	b.(*array.BooleanBuilder).Append(ev.Bool)
	return true
}

type int8Kit struct{}

func (int8Kit) typeName() string { return "I8" }
func (int8Kit) append(b array.Builder, ev event.Event) bool {
	if ev.Kind != event.I8 {
		return false
	}
	b.(*array.Int8Builder).Append(int8(ev.I64))
	return true
}

type int16Kit struct{}

func (int16Kit) typeName() string { return "I16" }
func (int16Kit) append(b array.Builder, ev event.Event) bool {
	if ev.Kind != event.I16 {
		return false
	}
	b.(*array.Int16Builder).Append(int16(ev.I64))
	return true
}

type int32Kit struct{}

func (int32Kit) typeName() string { return "I32" }
func (int32Kit) append(b array.Builder, ev event.Event) bool {
	if ev.Kind != event.I32 {
		return false
	}
	b.(*array.Int32Builder).Append(int32(ev.I64))
	return true
}

type int64Kit struct{}

func (int64Kit) typeName() string { return "I64" }
func (int64Kit) append(b array.Builder, ev event.Event) bool {
	if ev.Kind != event.I64 {
		return false
	}
	b.(*array.Int64Builder).Append(ev.I64)
	return true
}

type uint8Kit struct{}

func (uint8Kit) typeName() string { return "U8" }
func (uint8Kit) append(b array.Builder, ev event.Event) bool {
	if ev.Kind != event.U8 {
		return false
	}
	b.(*array.Uint8Builder).Append(uint8(ev.U64))
	return true
}

type uint16Kit struct{}

func (uint16Kit) typeName() string { return "U16" }
func (uint16Kit) append(b array.Builder, ev event.Event) bool {
	if ev.Kind != event.U16 {
		return false
	}
	b.(*array.Uint16Builder).Append(uint16(ev.U64))
	return true
}

type uint32Kit struct{}

func (uint32Kit) typeName() string { return "U32" }
func (uint32Kit) append(b array.Builder, ev event.Event) bool {
	if ev.Kind != event.U32 {
		return false
	}
	b.(*array.Uint32Builder).Append(uint32(ev.U64))
	return true
}

type uint64Kit struct{}

func (uint64Kit) typeName() string { return "U64" }
func (uint64Kit) append(b array.Builder, ev event.Event) bool {
	if ev.Kind != event.U64 {
		return false
	}
	b.(*array.Uint64Builder).Append(ev.U64)
	return true
}

type float16Kit struct{}

func (float16Kit) typeName() string { return "F16" }
func (float16Kit) append(b array.Builder, ev event.Event) bool {
	if ev.Kind != event.F16 {
		return false
	}
	b.(*array.Float16Builder).Append(float16.Num(ev.F16Bits))
	return true
}

type float32Kit struct{}

func (float32Kit) typeName() string { return "F32" }
func (float32Kit) append(b array.Builder, ev event.Event) bool {
	if ev.Kind != event.F32 {
		return false
	}
	b.(*array.Float32Builder).Append(ev.F32)
	return true
}

type float64Kit struct{}

func (float64Kit) typeName() string { return "F64" }
func (float64Kit) append(b array.Builder, ev event.Event) bool {
	if ev.Kind != event.F64 {
		return false
	}
	b.(*array.Float64Builder).Append(ev.F64)
	return true
}

// scalarBuilder drives any non-composite Arrow builder that has a kit: Bool,
// the eleven numeric DataTypes, and the Utf8/LargeUtf8/Binary/LargeBinary
// kits. The Some/Null/Default handling is common to all of them; append
// delegates to kit for the type-specific cast.
type scalarBuilder struct {
	baseField
	bld array.Builder
	kit scalarKit
}

func newScalarBuilder(field arrow.Field, bld array.Builder, kit scalarKit) *scalarBuilder {
	return &scalarBuilder{baseField: baseField{field}, bld: bld, kit: kit}
}

func (s *scalarBuilder) Len() int { return s.bld.Len() }

func (s *scalarBuilder) Accept(ev event.Event) error {
	switch ev.Kind {
	case event.Some:
		return nil
	case event.Null:
		return s.PushNull()
	case event.Default:
		return s.PushDefault()
	default:
		if !s.kit.append(s.bld, ev) {
			return mismatch(s.field, ev, s.kit.typeName())
		}
		return nil
	}
}

func (s *scalarBuilder) PushNull() error {
	if !s.nullable() {
		return notNullable(s.field)
	}
	s.bld.AppendNull()
	return nil
}

func (s *scalarBuilder) PushDefault() error {
	s.bld.AppendEmptyValue()
	return nil
}

func (s *scalarBuilder) Finish() (arrow.Array, error) {
	return s.bld.NewArray(), nil
}
