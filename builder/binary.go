package builder

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/arrowskein/skein/event"
	"github.com/arrowskein/skein/skerr"
)

type utf8Kit struct{}

func (utf8Kit) typeName() string { return "Utf8" }
func (utf8Kit) append(b array.Builder, ev event.Event) bool {
	if ev.Kind != event.Str && ev.Kind != event.OwnedStr {
		return false
	}
	b.(*array.StringBuilder).Append(ev.Str)
	return true
}

type largeUtf8Kit struct{}

func (largeUtf8Kit) typeName() string { return "LargeUtf8" }
func (largeUtf8Kit) append(b array.Builder, ev event.Event) bool {
	if ev.Kind != event.Str && ev.Kind != event.OwnedStr {
		return false
	}
	b.(*array.LargeStringBuilder).Append(ev.Str)
	return true
}

type binKit struct{}

func (binKit) typeName() string { return "Binary" }
func (binKit) append(b array.Builder, ev event.Event) bool {
	if ev.Kind != event.Binary && ev.Kind != event.OwnedBinary {
		return false
	}
	b.(*array.BinaryBuilder).Append(ev.Bytes)
	return true
}

type largeBinKit struct{}

func (largeBinKit) typeName() string { return "LargeBinary" }
func (largeBinKit) append(b array.Builder, ev event.Event) bool {
	if ev.Kind != event.Binary && ev.Kind != event.OwnedBinary {
		return false
	}
	b.(*array.BinaryBuilder).Append(ev.Bytes)
	return true
}

// fixedSizeBinaryBuilder enforces the declared byte width spec.md's
// FixedSizeBinary(n) requires: every non-null value must be exactly n bytes,
// checked here since the Arrow builder itself only panics on mismatch.
type fixedSizeBinaryBuilder struct {
	baseField
	bld *array.FixedSizeBinaryBuilder
	n   int
}

func newFixedSizeBinaryBuilder(field arrow.Field, bld *array.FixedSizeBinaryBuilder) *fixedSizeBinaryBuilder {
	dt := field.Type.(*arrow.FixedSizeBinaryType)
	return &fixedSizeBinaryBuilder{baseField: baseField{field}, bld: bld, n: dt.ByteWidth}
}

func (f *fixedSizeBinaryBuilder) Len() int { return f.bld.Len() }

func (f *fixedSizeBinaryBuilder) Accept(ev event.Event) error {
	switch ev.Kind {
	case event.Some:
		return nil
	case event.Null:
		return f.PushNull()
	case event.Default:
		return f.PushDefault()
	case event.Binary, event.OwnedBinary:
		if len(ev.Bytes) != f.n {
			return skerr.New(skerr.LengthMismatch, "fixed size binary expects %d bytes, got %d", f.n, len(ev.Bytes)).
				WithField(f.field.Name).WithDataType(f.field.Type.String())
		}
		f.bld.Append(ev.Bytes)
		return nil
	default:
		return mismatch(f.field, ev, "FixedSizeBinary")
	}
}

func (f *fixedSizeBinaryBuilder) PushNull() error {
	if !f.nullable() {
		return notNullable(f.field)
	}
	f.bld.AppendNull()
	return nil
}

func (f *fixedSizeBinaryBuilder) PushDefault() error {
	f.bld.AppendEmptyValue()
	return nil
}

func (f *fixedSizeBinaryBuilder) Finish() (arrow.Array, error) {
	return f.bld.NewArray(), nil
}

// nullBuilder backs the Null DataType: every row is absent, there is no
// value representation at all.
type nullBuilder struct {
	baseField
	bld *array.NullBuilder
}

func newNullBuilder(field arrow.Field, bld *array.NullBuilder) *nullBuilder {
	return &nullBuilder{baseField: baseField{field}, bld: bld}
}

func (n *nullBuilder) Len() int { return n.bld.Len() }

func (n *nullBuilder) Accept(ev event.Event) error {
	switch ev.Kind {
	case event.Null, event.Default:
		n.bld.AppendNull()
		return nil
	default:
		return mismatch(n.field, ev, "Null")
	}
}

func (n *nullBuilder) PushNull() error    { n.bld.AppendNull(); return nil }
func (n *nullBuilder) PushDefault() error { n.bld.AppendNull(); return nil }
func (n *nullBuilder) Finish() (arrow.Array, error) {
	return n.bld.NewArray(), nil
}
