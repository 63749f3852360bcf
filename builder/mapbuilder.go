package builder

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/arrowskein/skein/event"
)

type mapState int

const (
	mapOutside mapState = iota
	mapAwaitingEntry
	mapInKey
	mapInValue
)

// mapBuilder drives an Arrow Map, physically List<Struct<key,value>>: each
// Item inside StartMap/EndMap delimits one {key, value} pair fed straight to
// the key and value children in turn, without an explicit struct wrapper
// around the pair (spec.md §4.2 "Map(K, V)").
type mapBuilder struct {
	baseField
	bld     *array.MapBuilder
	key     Builder
	val     Builder
	state   mapState
	tracker subtreeTracker
}

func newMapBuilder(field arrow.Field, bld *array.MapBuilder, key, val Builder) *mapBuilder {
	return &mapBuilder{baseField: baseField{field}, bld: bld, key: key, val: val}
}

func (m *mapBuilder) Len() int { return m.bld.Len() }

func (m *mapBuilder) Accept(ev event.Event) error {
	switch m.state {
	case mapOutside:
		switch ev.Kind {
		case event.Some:
			return nil
		case event.Null:
			return m.PushNull()
		case event.Default:
			return m.PushDefault()
		case event.StartMap:
			m.bld.Append(true)
			m.state = mapAwaitingEntry
			return nil
		default:
			return mismatch(m.field, ev, "Map")
		}
	case mapAwaitingEntry:
		switch ev.Kind {
		case event.Item:
			m.state = mapInKey
			m.tracker.reset()
			return nil
		case event.EndMap:
			m.state = mapOutside
			return nil
		default:
			return mismatch(m.field, ev, "Item or EndMap")
		}
	case mapInKey:
		if err := m.key.Accept(ev); err != nil {
			return err
		}
		if m.tracker.feed(ev.Kind) {
			m.state = mapInValue
			m.tracker.reset()
		}
		return nil
	default: // mapInValue
		if err := m.val.Accept(ev); err != nil {
			return err
		}
		if m.tracker.feed(ev.Kind) {
			m.state = mapAwaitingEntry
		}
		return nil
	}
}

func (m *mapBuilder) PushNull() error {
	if !m.nullable() {
		return notNullable(m.field)
	}
	m.bld.AppendNull()
	return nil
}

func (m *mapBuilder) PushDefault() error {
	m.bld.AppendEmptyValue()
	return nil
}

// Finish returns the assembled map array; the underlying MapBuilder
// finalizes its key/value builders internally (see listBuilder.Finish).
func (m *mapBuilder) Finish() (arrow.Array, error) {
	return m.bld.NewArray(), nil
}
