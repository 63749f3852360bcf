// Package cursor implements the column-to-row half of the bridge: a
// per-field array view that synthesizes the same event.Event stream the
// builder package consumes, but in reverse, one row at a time (spec.md
// §4.3).
//
// Each Cursor wraps a concrete github.com/apache/arrow-go/v18/arrow/array
// reader the way builder.Builder wraps a writer — Read(i, sink) dispatches
// to the child cursor selected by the row's shape (list offsets, struct
// field order, a union's type-id, a dictionary's key) exactly the way the
// otel-arrow-derived ShowFieldStats helper in the retrieved examples walks
// a column tree by switching on arrow.Type and recursing into
// column.(*array.Struct).Field(i) / column.(*array.List).ListValues() /
// column.(*array.DenseUnion).Field(i) / column.(*array.Map).Keys()/.Items().
package cursor

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/arrowskein/skein/builder"
	"github.com/arrowskein/skein/event"
	"github.com/arrowskein/skein/skerr"
)

// Sink receives the events a Cursor synthesizes. A pull-based visitor
// implements Sink directly, as skein's mapSink does for FromArrays.
type Sink interface {
	Emit(ev event.Event) error
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(event.Event) error

func (f SinkFunc) Emit(ev event.Event) error { return f(ev) }

// Cursor is the common contract every per-type array view satisfies
// (spec.md §4.3).
type Cursor interface {
	// Len returns the number of logical rows this cursor covers.
	Len() int
	// IsValid reports whether row i is non-null.
	IsValid(i int) bool
	// Field returns the Arrow field this cursor reads.
	Field() arrow.Field
	// Read synthesizes the event subtree for row i into sink: a single
	// Null event if the row is invalid, otherwise the scalar event or the
	// Start*..End* span appropriate to the field's DataType.
	Read(i int, sink Sink) error
}

// New wraps arr, an already-built arrow.Array for field, in a Cursor. It
// mirrors builder.New's factory switch one-for-one so every DataType the
// builder side produces has a reader here.
func New(field arrow.Field, arr arrow.Array) (Cursor, error) {
	strat := builder.StrategyOf(field)
	switch dt := field.Type.(type) {
	case *arrow.BooleanType:
		return newScalarCursor(field, arr, boolReadKit{}), nil
	case *arrow.Int8Type:
		return newScalarCursor(field, arr, int8ReadKit{}), nil
	case *arrow.Int16Type:
		return newScalarCursor(field, arr, int16ReadKit{}), nil
	case *arrow.Int32Type:
		return newScalarCursor(field, arr, int32ReadKit{}), nil
	case *arrow.Int64Type:
		return newScalarCursor(field, arr, int64ReadKit{}), nil
	case *arrow.Uint8Type:
		return newScalarCursor(field, arr, uint8ReadKit{}), nil
	case *arrow.Uint16Type:
		return newScalarCursor(field, arr, uint16ReadKit{}), nil
	case *arrow.Uint32Type:
		return newScalarCursor(field, arr, uint32ReadKit{}), nil
	case *arrow.Uint64Type:
		return newScalarCursor(field, arr, uint64ReadKit{}), nil
	case *arrow.Float16Type:
		return newScalarCursor(field, arr, float16ReadKit{}), nil
	case *arrow.Float32Type:
		return newScalarCursor(field, arr, float32ReadKit{}), nil
	case *arrow.Float64Type:
		return newScalarCursor(field, arr, float64ReadKit{}), nil
	case *arrow.StringType:
		return newUtf8Cursor(field, arr.(*array.String)), nil
	case *arrow.LargeStringType:
		return newLargeUtf8Cursor(field, arr.(*array.LargeString)), nil
	case *arrow.BinaryType:
		return newBinaryCursor(field, arr.(*array.Binary)), nil
	case *arrow.LargeBinaryType:
		return newLargeBinaryCursor(field, arr.(*array.LargeBinary)), nil
	case *arrow.FixedSizeBinaryType:
		return newFixedSizeBinaryCursor(field, arr.(*array.FixedSizeBinary)), nil
	case *arrow.Date32Type:
		return newDate32Cursor(field, arr.(*array.Date32)), nil
	case *arrow.Date64Type:
		return newDate64Cursor(field, arr.(*array.Date64), strat), nil
	case *arrow.Time32Type:
		return newTime32Cursor(field, arr.(*array.Time32), dt.Unit), nil
	case *arrow.Time64Type:
		return newTime64Cursor(field, arr.(*array.Time64), dt.Unit), nil
	case *arrow.TimestampType:
		return newTimestampCursor(field, arr.(*array.Timestamp), dt, strat), nil
	case *arrow.DurationType:
		return newDurationCursor(field, arr.(*array.Duration), dt.Unit), nil
	case *arrow.Decimal128Type:
		return newDecimal128Cursor(field, arr.(*array.Decimal128), dt), nil
	case *arrow.ListType:
		la := arr.(*array.List)
		childField := dt.ElemField()
		child, err := New(childField, la.ListValues())
		if err != nil {
			return nil, err
		}
		return newListCursor(field, la, la.Offsets(), child, 0), nil
	case *arrow.LargeListType:
		la := arr.(*array.LargeList)
		childField := dt.ElemField()
		child, err := New(childField, la.ListValues())
		if err != nil {
			return nil, err
		}
		return newLargeListCursor(field, la, la.Offsets(), child), nil
	case *arrow.FixedSizeListType:
		la := arr.(*array.FixedSizeList)
		childField := dt.ElemField()
		child, err := New(childField, la.ListValues())
		if err != nil {
			return nil, err
		}
		return newListCursor(field, la, nil, child, dt.Len()), nil
	case *arrow.StructType:
		sa := arr.(*array.Struct)
		children := make([]Cursor, dt.NumFields())
		for i, f := range dt.Fields() {
			c, err := New(f, sa.Field(i))
			if err != nil {
				return nil, err
			}
			children[i] = c
		}
		return newStructCursor(field, sa, children), nil
	case *arrow.MapType:
		ma := arr.(*array.Map)
		entryField := dt.ValueType().(*arrow.StructType)
		keyC, err := New(entryField.Field(0), ma.Keys())
		if err != nil {
			return nil, err
		}
		valC, err := New(entryField.Field(1), ma.Items())
		if err != nil {
			return nil, err
		}
		return newMapCursor(field, ma, keyC, valC), nil
	case *arrow.DenseUnionType:
		ua, ok := arr.(*array.DenseUnion)
		if !ok {
			return nil, skerr.New(skerr.Internal, "arrow array for %s is not a dense union", dt)
		}
		children := make([]Cursor, len(dt.Fields()))
		codeToChild := make(map[arrow.UnionTypeCode]int, len(dt.Fields()))
		for i, f := range dt.Fields() {
			c, err := New(f, ua.Field(i))
			if err != nil {
				return nil, err
			}
			children[i] = c
			codeToChild[dt.TypeCodes()[i]] = i
		}
		return newDenseUnionCursor(field, ua, dt, children, codeToChild), nil
	case *arrow.DictionaryType:
		da, ok := arr.(*array.Dictionary)
		if !ok {
			return nil, skerr.New(skerr.Unsupported, "dictionary array for %s is not a dictionary array", dt).
				WithField(field.Name).WithDataType(field.Type.String())
		}
		valuesField := arrow.Field{Name: field.Name, Type: dt.ValueType, Nullable: field.Nullable}
		values, err := New(valuesField, da.Dictionary())
		if err != nil {
			return nil, err
		}
		return newDictionaryCursor(field, da, values), nil
	case *arrow.NullType:
		return newNullCursor(field, arr.(*array.Null)), nil
	default:
		return nil, skerr.New(skerr.Unsupported, "unsupported data type %s", field.Type).WithField(field.Name).WithDataType(field.Type.String())
	}
}

// baseField embeds the arrow.Field every cursor shares.
type baseField struct {
	field arrow.Field
}

func (b baseField) Field() arrow.Field { return b.field }

// nullCursor reads arrow.Null: every row is absent.
type nullCursor struct {
	baseField
	arr *array.Null
}

func newNullCursor(field arrow.Field, arr *array.Null) *nullCursor {
	return &nullCursor{baseField{field}, arr}
}
func (n *nullCursor) Len() int          { return n.arr.Len() }
func (n *nullCursor) IsValid(i int) bool { return false }
func (n *nullCursor) Read(i int, sink Sink) error {
	return sink.Emit(event.NullEvent())
}
