package cursor

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/arrowskein/skein/event"
)

// dictionaryCursor reads a Dictionary array: row i's key selects the value
// to recurse into (spec.md §4.3 "For dictionary arrays: look up key =
// keys[i], then recurse into values.read(key)").
type dictionaryCursor struct {
	baseField
	arr    *array.Dictionary
	values Cursor
}

func newDictionaryCursor(field arrow.Field, arr *array.Dictionary, values Cursor) *dictionaryCursor {
	return &dictionaryCursor{baseField{field}, arr, values}
}

func (d *dictionaryCursor) Len() int           { return d.arr.Len() }
func (d *dictionaryCursor) IsValid(i int) bool { return d.arr.IsValid(i) }

func (d *dictionaryCursor) Read(i int, sink Sink) error {
	if !d.arr.IsValid(i) {
		return sink.Emit(event.NullEvent())
	}
	key := d.arr.GetValueIndex(i)
	return d.values.Read(key, sink)
}
