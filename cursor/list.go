package cursor

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/arrowskein/skein/event"
)

// listCursor drives List and FixedSizeList alike: both are "read child rows
// [lo, hi) between a StartList/EndList span", the only difference being how
// lo/hi are computed (an offsets buffer vs. a fixed stride) (spec.md §4.3
// "Event synthesis" / §4.2 "List(T) / FixedSizeList(T, n)").
type listCursor struct {
	baseField
	arr     arrow.Array
	offsets []int32 // nil for FixedSizeList
	fixedN  int     // 0 unless this is a FixedSizeList
	child   Cursor
}

func newListCursor(field arrow.Field, arr arrow.Array, offsets []int32, child Cursor, fixedN int) *listCursor {
	return &listCursor{baseField{field}, arr, offsets, fixedN, child}
}

func (l *listCursor) Len() int           { return l.arr.Len() }
func (l *listCursor) IsValid(i int) bool { return l.arr.IsValid(i) }

func (l *listCursor) bounds(i int) (lo, hi int) {
	if l.offsets != nil {
		return int(l.offsets[i]), int(l.offsets[i+1])
	}
	return i * l.fixedN, i*l.fixedN + l.fixedN
}

func (l *listCursor) Read(i int, sink Sink) error {
	if !l.arr.IsValid(i) {
		return sink.Emit(event.NullEvent())
	}
	if err := sink.Emit(event.StartListEvent()); err != nil {
		return err
	}
	lo, hi := l.bounds(i)
	for j := lo; j < hi; j++ {
		if err := sink.Emit(event.ItemEvent()); err != nil {
			return err
		}
		if err := l.child.Read(j, sink); err != nil {
			return err
		}
	}
	return sink.Emit(event.EndListEvent())
}

// largeListCursor is listCursor's int64-offset twin for LargeList.
type largeListCursor struct {
	baseField
	arr     arrow.Array
	offsets []int64
	child   Cursor
}

func newLargeListCursor(field arrow.Field, arr arrow.Array, offsets []int64, child Cursor) *largeListCursor {
	return &largeListCursor{baseField{field}, arr, offsets, child}
}

func (l *largeListCursor) Len() int           { return l.arr.Len() }
func (l *largeListCursor) IsValid(i int) bool { return l.arr.IsValid(i) }

func (l *largeListCursor) Read(i int, sink Sink) error {
	if !l.arr.IsValid(i) {
		return sink.Emit(event.NullEvent())
	}
	if err := sink.Emit(event.StartListEvent()); err != nil {
		return err
	}
	lo, hi := l.offsets[i], l.offsets[i+1]
	for j := lo; j < hi; j++ {
		if err := sink.Emit(event.ItemEvent()); err != nil {
			return err
		}
		if err := l.child.Read(int(j), sink); err != nil {
			return err
		}
	}
	return sink.Emit(event.EndListEvent())
}
