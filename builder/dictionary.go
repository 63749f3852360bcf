package builder

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/arrowskein/skein/event"
)

// dictionaryBuilder wraps an arrow/array.DictionaryBuilder, which already
// maintains the insertion-ordered value -> key hash table spec.md §4.2
// "Dictionary(key_ty, value_ty)" describes; this wrapper only adapts the
// event.Event vocabulary to its Append family.
type dictionaryBuilder struct {
	baseField
	bld *array.BinaryDictionaryBuilder
	dt  *arrow.DictionaryType
}

func newDictionaryBuilder(field arrow.Field, bld *array.BinaryDictionaryBuilder, dt *arrow.DictionaryType) *dictionaryBuilder {
	return &dictionaryBuilder{baseField: baseField{field}, bld: bld, dt: dt}
}

func (d *dictionaryBuilder) Len() int { return d.bld.Len() }

func (d *dictionaryBuilder) Accept(ev event.Event) error {
	switch ev.Kind {
	case event.Some:
		return nil
	case event.Null:
		return d.PushNull()
	case event.Default:
		return d.PushDefault()
	case event.Str, event.OwnedStr:
		d.bld.AppendString(ev.Str)
		return nil
	case event.Binary, event.OwnedBinary:
		d.bld.Append(ev.Bytes)
		return nil
	default:
		return mismatch(d.field, ev, "Dictionary")
	}
}

func (d *dictionaryBuilder) PushNull() error {
	if !d.nullable() {
		return notNullable(d.field)
	}
	d.bld.AppendNull()
	return nil
}

func (d *dictionaryBuilder) PushDefault() error {
	d.bld.AppendEmptyValue()
	return nil
}

func (d *dictionaryBuilder) Finish() (arrow.Array, error) {
	return d.bld.NewArray(), nil
}
