package cursor

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/arrowskein/skein/event"
)

// denseUnionCursor reads a DenseUnion: for row i, ChildID(i) selects the
// branch and ValueOffset(i) is that branch's index into its own dense child
// array (spec.md §4.3 "for unions it stores the type-id and offsets buffers
// and dispatches read(i) to the child selected by type_ids[i]").
type denseUnionCursor struct {
	baseField
	arr      *array.DenseUnion
	dt       *arrow.DenseUnionType
	children []Cursor
}

func newDenseUnionCursor(field arrow.Field, arr *array.DenseUnion, dt *arrow.DenseUnionType, children []Cursor, _ map[arrow.UnionTypeCode]int) *denseUnionCursor {
	return &denseUnionCursor{baseField{field}, arr, dt, children}
}

func (u *denseUnionCursor) Len() int { return u.arr.Len() }

// IsValid: a dense union has no validity bitmap of its own; a "null" union
// value is represented by its selected child being null (spec.md §4.2
// "DenseUnion(variants)" carries no top-level validity, only the child's).
func (u *denseUnionCursor) IsValid(i int) bool { return true }

func (u *denseUnionCursor) Read(i int, sink Sink) error {
	childIdx := u.arr.ChildID(i)
	off := int(u.arr.ValueOffset(i))
	if err := sink.Emit(event.VariantEvent(u.dt.Fields()[childIdx].Name, int32(childIdx))); err != nil {
		return err
	}
	return u.children[childIdx].Read(off, sink)
}
