package cursor

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/arrowskein/skein/event"
)

// structCursor reads a Struct array: for a valid row it emits StartStruct,
// then for each declared child Str(name) followed by the child's subtree,
// then EndStruct (spec.md §4.3 "Event synthesis").
type structCursor struct {
	baseField
	arr      *array.Struct
	children []Cursor
}

func newStructCursor(field arrow.Field, arr *array.Struct, children []Cursor) *structCursor {
	return &structCursor{baseField{field}, arr, children}
}

func (s *structCursor) Len() int           { return s.arr.Len() }
func (s *structCursor) IsValid(i int) bool { return s.arr.IsValid(i) }

func (s *structCursor) Read(i int, sink Sink) error {
	if !s.arr.IsValid(i) {
		return sink.Emit(event.NullEvent())
	}
	if err := sink.Emit(event.StartStructEvent()); err != nil {
		return err
	}
	for _, c := range s.children {
		if err := sink.Emit(event.StrEvent(c.Field().Name)); err != nil {
			return err
		}
		if err := c.Read(i, sink); err != nil {
			return err
		}
	}
	return sink.Emit(event.EndStructEvent())
}
