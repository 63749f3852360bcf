package builder

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/arrowskein/skein/event"
	"github.com/arrowskein/skein/skerr"
)

type structState int

const (
	structOutside structState = iota
	structAwaitingField
	structAwaitingValue
)

// structBuilder implements the Outside / InsideAwaitingField /
// InsideAwaitingValue(childIdx) state machine from spec.md §4.2
// "Struct(fields)": a Str event between StartStruct/EndStruct selects which
// child the following value subtree belongs to, in any order; a nullable
// field never visited before EndStruct is nulled, and a non-nullable one
// fails the row with MissingField.
type structBuilder struct {
	baseField
	bld      *array.StructBuilder
	children []Builder
	names    map[string]int
	seen     []bool
	state    structState
	active   int
	tracker  subtreeTracker
}

func newStructBuilder(field arrow.Field, bld *array.StructBuilder, children []Builder) *structBuilder {
	names := make(map[string]int, len(children))
	for i, c := range children {
		names[c.Field().Name] = i
	}
	return &structBuilder{
		baseField: baseField{field},
		bld:       bld,
		children:  children,
		names:     names,
		seen:      make([]bool, len(children)),
	}
}

func (s *structBuilder) Len() int { return s.bld.Len() }

func (s *structBuilder) Accept(ev event.Event) error {
	switch s.state {
	case structOutside:
		switch ev.Kind {
		case event.Some:
			return nil
		case event.Null:
			return s.PushNull()
		case event.Default:
			return s.PushDefault()
		case event.StartStruct:
			s.bld.Append(true)
			for i := range s.seen {
				s.seen[i] = false
			}
			s.state = structAwaitingField
			return nil
		default:
			return mismatch(s.field, ev, "Struct")
		}
	case structAwaitingField:
		switch ev.Kind {
		case event.Str, event.OwnedStr:
			idx, ok := s.names[ev.Str]
			if !ok {
				return mismatch(s.field, ev, "known struct field name")
			}
			s.active = idx
			s.seen[idx] = true
			s.state = structAwaitingValue
			s.tracker.reset()
			return nil
		case event.EndStruct:
			return s.closeStruct()
		default:
			return mismatch(s.field, ev, "struct field name or EndStruct")
		}
	default: // structAwaitingValue
		if err := s.children[s.active].Accept(ev); err != nil {
			return err
		}
		if s.tracker.feed(ev.Kind) {
			s.state = structAwaitingField
		}
		return nil
	}
}

func (s *structBuilder) closeStruct() error {
	for i, child := range s.children {
		if s.seen[i] {
			continue
		}
		if !child.Field().Nullable {
			return skerr.New(skerr.MissingField, "non-nullable field %q absent from struct", child.Field().Name).
				WithField(s.field.Name).WithDataType(s.field.Type.String())
		}
		if err := child.PushNull(); err != nil {
			return err
		}
	}
	s.state = structOutside
	return nil
}

func (s *structBuilder) PushNull() error {
	if !s.nullable() {
		return notNullable(s.field)
	}
	s.bld.AppendNull()
	for _, c := range s.children {
		if err := c.PushDefault(); err != nil {
			return err
		}
	}
	return nil
}

func (s *structBuilder) PushDefault() error {
	s.bld.AppendEmptyValue()
	for _, c := range s.children {
		if err := c.PushDefault(); err != nil {
			return err
		}
	}
	return nil
}

// Finish returns the assembled struct array. The underlying StructBuilder
// finalizes its field builders internally; children must not be finished
// separately (see listBuilder.Finish).
func (s *structBuilder) Finish() (arrow.Array, error) {
	return s.bld.NewArray(), nil
}
