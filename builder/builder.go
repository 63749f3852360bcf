// Package builder implements the row-to-column half of the bridge: one
// builder per Arrow data type, driven by the event.Event push vocabulary,
// producing validity bitmaps, offset buffers and value buffers that match
// the Arrow in-memory format (spec.md §4.2).
//
// Each builder wraps a concrete github.com/apache/arrow-go/v18/arrow/array
// Builder the way bodkin's reader.mapFieldBuilders does, but the dispatch
// key is an event.Kind instead of a bare interface{}, and composite builders
// track an explicit state machine rather than recursing through a caller's
// call stack (spec.md §9 "Event protocol vs implicit stack").
package builder

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/arrowskein/skein/event"
	"github.com/arrowskein/skein/skerr"
)

// Builder is the common contract every per-type builder satisfies
// (spec.md §4.2 "Common contract").
type Builder interface {
	// Accept pushes one event. It returns a *skerr.Error if the event is
	// not legal in the builder's current state.
	Accept(ev event.Event) error
	// Len returns the current logical row count.
	Len() int
	// Field returns the Arrow field this builder produces.
	Field() arrow.Field
	// PushNull drives the validity bitmap with an absent value.
	PushNull() error
	// PushDefault appends a type-specific zero payload without signalling
	// absence — used to keep a null parent composite's children in sync.
	PushDefault() error
	// Finish finalizes buffers and returns the Arrow array, consuming the
	// builder. Calling any other method afterwards is undefined.
	Finish() (arrow.Array, error)
}

// New builds a Builder tree for field using a single top-level arrow/array
// builder constructed via the generic array.NewBuilder factory — the same
// factory arrow-go uses internally for JSON and IPC decoding — which already
// recurses through composite types and allocates every nested child
// builder. wrap then walks that existing tree and puts our Builder
// interface around each node, rather than allocating a second, disconnected
// set of child builders (which is what calling New again per child would
// do).
func New(field arrow.Field, mem memory.Allocator) (Builder, error) {
	return wrap(field, array.NewBuilder(mem, field.Type))
}

// wrap puts the Builder interface around bld, an arrow/array.Builder
// already constructed (by array.NewBuilder or by a parent composite
// builder) for field.Type. It never constructs a new underlying builder.
func wrap(field arrow.Field, bld array.Builder) (Builder, error) {
	strat := strategyOf(field)
	switch dt := field.Type.(type) {
	case *arrow.BooleanType:
		return newScalarBuilder(field, bld, boolKit{}), nil
	case *arrow.Int8Type:
		return newScalarBuilder(field, bld, int8Kit{}), nil
	case *arrow.Int16Type:
		return newScalarBuilder(field, bld, int16Kit{}), nil
	case *arrow.Int32Type:
		return newScalarBuilder(field, bld, int32Kit{}), nil
	case *arrow.Int64Type:
		return newScalarBuilder(field, bld, int64Kit{}), nil
	case *arrow.Uint8Type:
		return newScalarBuilder(field, bld, uint8Kit{}), nil
	case *arrow.Uint16Type:
		return newScalarBuilder(field, bld, uint16Kit{}), nil
	case *arrow.Uint32Type:
		return newScalarBuilder(field, bld, uint32Kit{}), nil
	case *arrow.Uint64Type:
		return newScalarBuilder(field, bld, uint64Kit{}), nil
	case *arrow.Float16Type:
		return newScalarBuilder(field, bld, float16Kit{}), nil
	case *arrow.Float32Type:
		return newScalarBuilder(field, bld, float32Kit{}), nil
	case *arrow.Float64Type:
		return newScalarBuilder(field, bld, float64Kit{}), nil
	case *arrow.StringType:
		return newScalarBuilder(field, bld, utf8Kit{}), nil
	case *arrow.LargeStringType:
		return newScalarBuilder(field, bld, largeUtf8Kit{}), nil
	case *arrow.BinaryType:
		return newScalarBuilder(field, bld, binKit{}), nil
	case *arrow.LargeBinaryType:
		return newScalarBuilder(field, bld, largeBinKit{}), nil
	case *arrow.FixedSizeBinaryType:
		return newFixedSizeBinaryBuilder(field, bld.(*array.FixedSizeBinaryBuilder)), nil
	case *arrow.Date32Type:
		return newDate32Builder(field, bld.(*array.Date32Builder)), nil
	case *arrow.Date64Type:
		return newDate64Builder(field, bld.(*array.Date64Builder), strat), nil
	case *arrow.Time32Type:
		return newTime32Builder(field, bld.(*array.Time32Builder), dt.Unit), nil
	case *arrow.Time64Type:
		return newTime64Builder(field, bld.(*array.Time64Builder), dt.Unit), nil
	case *arrow.TimestampType:
		return newTimestampBuilder(field, bld.(*array.TimestampBuilder), dt), nil
	case *arrow.DurationType:
		return newDurationBuilder(field, bld.(*array.DurationBuilder), dt.Unit), nil
	case *arrow.Decimal128Type:
		return newDecimal128Builder(field, bld.(*array.Decimal128Builder), dt), nil
	case *arrow.ListType:
		lb := bld.(*array.ListBuilder)
		child, err := wrap(dt.ElemField(), lb.ValueBuilder())
		if err != nil {
			return nil, err
		}
		return newListBuilder(field, lb, child, 0), nil
	case *arrow.LargeListType:
		lb := bld.(*array.LargeListBuilder)
		child, err := wrap(dt.ElemField(), lb.ValueBuilder())
		if err != nil {
			return nil, err
		}
		return newListBuilder(field, lb, child, 0), nil
	case *arrow.FixedSizeListType:
		lb := bld.(*array.FixedSizeListBuilder)
		child, err := wrap(dt.ElemField(), lb.ValueBuilder())
		if err != nil {
			return nil, err
		}
		return newListBuilder(field, lb, child, dt.Len()), nil
	case *arrow.StructType:
		sb := bld.(*array.StructBuilder)
		children := make([]Builder, dt.NumFields())
		for i, f := range dt.Fields() {
			c, err := wrap(f, sb.FieldBuilder(i))
			if err != nil {
				return nil, err
			}
			children[i] = c
		}
		return newStructBuilder(field, sb, children), nil
	case *arrow.MapType:
		mb := bld.(*array.MapBuilder)
		keyB, err := wrap(dt.KeyField(), mb.KeyBuilder())
		if err != nil {
			return nil, err
		}
		valB, err := wrap(dt.ItemField(), mb.ItemBuilder())
		if err != nil {
			return nil, err
		}
		return newMapBuilder(field, mb, keyB, valB), nil
	case *arrow.DenseUnionType:
		ub, ok := bld.(*array.DenseUnionBuilder)
		if !ok {
			return nil, skerr.New(skerr.Internal, "arrow builder for %s is not a dense union builder", dt)
		}
		children := make([]Builder, len(dt.Fields()))
		nameToChild := make(map[string]int, len(dt.Fields()))
		codeToChild := make(map[arrow.UnionTypeCode]int, len(dt.Fields()))
		for i, f := range dt.Fields() {
			c, err := wrap(f, ub.Child(i))
			if err != nil {
				return nil, err
			}
			children[i] = c
			nameToChild[f.Name] = i
			codeToChild[dt.TypeCodes()[i]] = i
		}
		return newDenseUnionBuilder(field, ub, dt, children, nameToChild, codeToChild), nil
	case *arrow.DictionaryType:
		dictBld, ok := bld.(*array.BinaryDictionaryBuilder)
		if !ok {
			return nil, skerr.New(skerr.Unsupported, "dictionary value type %s is not string-like", dt.ValueType).
				WithField(field.Name).WithDataType(field.Type.String())
		}
		return newDictionaryBuilder(field, dictBld, dt), nil
	case *arrow.NullType:
		return newNullBuilder(field, bld.(*array.NullBuilder)), nil
	default:
		return nil, skerr.New(skerr.Unsupported, "unsupported data type %s", field.Type).WithField(field.Name).WithDataType(field.Type.String())
	}
}

// baseField embeds the arrow.Field and nullability check every builder
// shares.
type baseField struct {
	field arrow.Field
}

func (b baseField) Field() arrow.Field { return b.field }
func (b baseField) nullable() bool     { return b.field.Nullable }

func mismatch(field arrow.Field, ev event.Event, want string) error {
	return skerr.New(skerr.SchemaMismatch, "unexpected %s, expected %s", ev.Kind, want).
		WithField(field.Name).WithDataType(field.Type.String())
}

func notNullable(field arrow.Field) error {
	return skerr.New(skerr.SchemaMismatch, "null event at non-nullable field").
		WithField(field.Name).WithDataType(field.Type.String())
}

// subtreeState tracks how many events remain before a value subtree fed to
// a child builder is complete, without the caller maintaining a call stack.
// A subtree is either: one scalar/Null/Default event; Some or Variant
// followed by one such event or by a composite; or a Start*..End* span (§9).
type subtreeState int

const (
	subtreeIdle subtreeState = iota
	subtreeInSome
	subtreeInComposite
)

type subtreeTracker struct {
	state subtreeState
	depth int
}

func (t *subtreeTracker) reset() { t.state = subtreeIdle; t.depth = 0 }

// feed records that k was just forwarded to the active child and reports
// whether that completes the child's current value subtree.
func (t *subtreeTracker) feed(k event.Kind) bool {
	switch t.state {
	case subtreeIdle:
		switch {
		case k == event.Some || k == event.Variant:
			t.state = subtreeInSome
			return false
		case k.IsStart():
			t.state = subtreeInComposite
			t.depth = 1
			return false
		default:
			return true
		}
	case subtreeInSome:
		if k == event.Variant {
			return false
		}
		if k.IsStart() {
			t.state = subtreeInComposite
			t.depth = 1
			return false
		}
		t.state = subtreeIdle
		return true
	case subtreeInComposite:
		if k.IsStart() {
			t.depth++
			return false
		}
		if k.IsEnd() {
			t.depth--
			if t.depth == 0 {
				t.state = subtreeIdle
				return true
			}
			return false
		}
		return false
	}
	return false
}
