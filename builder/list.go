package builder

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/arrowskein/skein/event"
	"github.com/arrowskein/skein/skerr"
)

// listLikeBuilder is the subset of array.ListBuilder / array.LargeListBuilder
// / array.FixedSizeListBuilder behaviour listBuilder needs, common across all
// three offset widths.
type listLikeBuilder interface {
	array.Builder
	Append(bool)
}

// listBuilder drives List, LargeList and FixedSizeList alike: all three are
// "repeat child n times between Item delimiters" with the only difference
// being offset width (handled by the arrow builder itself) and, for
// FixedSizeList, a required exact item count (spec.md §4.2 "List(T) /
// LargeList(T) / FixedSizeList(T, n)").
type listBuilder struct {
	baseField
	bld     listLikeBuilder
	child   Builder
	fixedN  int // 0 unless this is a FixedSizeList
	items   int
	tracker subtreeTracker
	inside  bool
}

func newListBuilder(field arrow.Field, bld listLikeBuilder, child Builder, fixedN int) *listBuilder {
	return &listBuilder{baseField: baseField{field}, bld: bld, child: child, fixedN: fixedN}
}

func (l *listBuilder) Len() int { return l.bld.Len() }

func (l *listBuilder) Accept(ev event.Event) error {
	if !l.inside {
		switch ev.Kind {
		case event.Some:
			return nil
		case event.Null:
			return l.PushNull()
		case event.Default:
			return l.PushDefault()
		case event.StartList:
			l.bld.Append(true)
			l.inside = true
			l.items = 0
			l.tracker.reset()
			return nil
		default:
			return mismatch(l.field, ev, "List")
		}
	}

	switch ev.Kind {
	case event.Item:
		return nil
	case event.EndList:
		if l.fixedN > 0 && l.items != l.fixedN {
			return skerr.New(skerr.LengthMismatch, "fixed size list expects %d items, got %d", l.fixedN, l.items).
				WithField(l.field.Name).WithDataType(l.field.Type.String())
		}
		l.inside = false
		return nil
	default:
		if err := l.child.Accept(ev); err != nil {
			return err
		}
		if l.tracker.feed(ev.Kind) {
			l.items++
		}
		return nil
	}
}

func (l *listBuilder) PushNull() error {
	if !l.nullable() {
		return notNullable(l.field)
	}
	l.bld.AppendNull()
	return nil
}

func (l *listBuilder) PushDefault() error {
	l.bld.AppendEmptyValue()
	return nil
}

// Finish returns the assembled list array. The underlying arrow/array list
// builder owns and finalizes its value builder internally (via
// ValueBuilder()), so l.child — a thin wrapper around that same builder —
// must not be finished independently; doing so would consume the value
// builder twice.
func (l *listBuilder) Finish() (arrow.Array, error) {
	return l.bld.NewArray(), nil
}
