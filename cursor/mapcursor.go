package cursor

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/arrowskein/skein/event"
)

// mapCursor reads an Arrow Map, physically List<Struct<key,value>>: for
// each entry in [offsets[i], offsets[i+1]) it emits Item followed directly
// by the key subtree then the value subtree, without an explicit struct
// wrapper around the pair (spec.md §4.2 "Map(K, V)" / §4.3).
type mapCursor struct {
	baseField
	arr     *array.Map
	offsets []int32
	key     Cursor
	val     Cursor
}

func newMapCursor(field arrow.Field, arr *array.Map, key, val Cursor) *mapCursor {
	return &mapCursor{baseField{field}, arr, arr.Offsets(), key, val}
}

func (m *mapCursor) Len() int           { return m.arr.Len() }
func (m *mapCursor) IsValid(i int) bool { return m.arr.IsValid(i) }

func (m *mapCursor) Read(i int, sink Sink) error {
	if !m.arr.IsValid(i) {
		return sink.Emit(event.NullEvent())
	}
	if err := sink.Emit(event.StartMapEvent()); err != nil {
		return err
	}
	lo, hi := int(m.offsets[i]), int(m.offsets[i+1])
	for j := lo; j < hi; j++ {
		if err := sink.Emit(event.ItemEvent()); err != nil {
			return err
		}
		if err := m.key.Read(j, sink); err != nil {
			return err
		}
		if err := m.val.Read(j, sink); err != nil {
			return err
		}
	}
	return sink.Emit(event.EndMapEvent())
}
