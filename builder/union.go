package builder

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/arrowskein/skein/event"
)

// denseUnionBuilder drives a dense union: a Variant(name, index) event
// selects the branch, after which its complete value subtree is forwarded
// to that branch's child builder (spec.md §4.2 "DenseUnion(variants)").
// Unlike struct/list/map, a union carries no Start/End wrapper of its own —
// Variant itself is the only framing event.
type denseUnionBuilder struct {
	baseField
	bld        *array.DenseUnionBuilder
	dt         *arrow.DenseUnionType
	children   []Builder
	nameToIdx  map[string]int
	codeToIdx  map[arrow.UnionTypeCode]int
	active     int
	inVariant  bool
	tracker    subtreeTracker
}

func newDenseUnionBuilder(field arrow.Field, bld *array.DenseUnionBuilder, dt *arrow.DenseUnionType, children []Builder, nameToIdx map[string]int, codeToIdx map[arrow.UnionTypeCode]int) *denseUnionBuilder {
	return &denseUnionBuilder{
		baseField: baseField{field},
		bld:       bld,
		dt:        dt,
		children:  children,
		nameToIdx: nameToIdx,
		codeToIdx: codeToIdx,
	}
}

func (u *denseUnionBuilder) Len() int { return u.bld.Len() }

func (u *denseUnionBuilder) Accept(ev event.Event) error {
	if !u.inVariant {
		switch ev.Kind {
		case event.Null:
			return u.PushNull()
		case event.Variant:
			idx, ok := u.nameToIdx[ev.Ident]
			if !ok {
				return mismatch(u.field, ev, "known union variant name")
			}
			u.active = idx
			u.bld.Append(u.dt.TypeCodes()[idx])
			u.inVariant = true
			u.tracker.reset()
			return nil
		default:
			return mismatch(u.field, ev, "Variant or Null")
		}
	}

	if err := u.children[u.active].Accept(ev); err != nil {
		return err
	}
	if u.tracker.feed(ev.Kind) {
		u.inVariant = false
	}
	return nil
}

func (u *denseUnionBuilder) PushNull() error {
	if !u.nullable() {
		return notNullable(u.field)
	}
	u.bld.AppendNull()
	return nil
}

// PushDefault selects the first declared variant and pushes a default value
// into it; a union has no type-independent zero representation, so the
// first branch stands in for "no opinion" padding.
func (u *denseUnionBuilder) PushDefault() error {
	if len(u.children) == 0 {
		u.bld.AppendNull()
		return nil
	}
	u.bld.Append(u.dt.TypeCodes()[0])
	return u.children[0].PushDefault()
}

// Finish returns the assembled union array; DenseUnionBuilder finalizes its
// children internally (see listBuilder.Finish).
func (u *denseUnionBuilder) Finish() (arrow.Array, error) {
	return u.bld.NewArray(), nil
}
