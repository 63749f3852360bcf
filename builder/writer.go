package builder

import (
	"github.com/apache/arrow-go/v18/arrow"
	json "github.com/goccy/go-json"

	"github.com/arrowskein/skein/event"
	"github.com/arrowskein/skein/skerr"
)

// Writer drives a RecordBuilder from decoded Go values (map[string]any rows,
// as produced by reader.InputMap) instead of a hand-assembled event.Event
// stream, replacing bodkin's channel-and-goroutine DataReader with the
// single-threaded push model of spec.md §5: one WriteRow call per logical
// row, synchronously.
type Writer struct {
	rb *RecordBuilder
}

// NewWriter wraps rb; rb must not be touched directly once the Writer owns
// it, mirroring RecordBuilder's own single-owner discipline.
func NewWriter(rb *RecordBuilder) *Writer { return &Writer{rb: rb} }

// RecordBuilder exposes the underlying builder, e.g. to call Finish once
// every row has been written.
func (w *Writer) RecordBuilder() *RecordBuilder { return w.rb }

// WriteRow feeds one decoded row into every top-level field builder by
// name (a row missing a field pushes Null into a nullable field and a
// default value into a non-nullable one) and commits the row.
func (w *Writer) WriteRow(row map[string]any) error {
	for i := 0; i < w.rb.NumFields(); i++ {
		b := w.rb.Field(i)
		v, ok := row[b.Field().Name]
		if !ok || v == nil {
			if err := pushAbsent(b); err != nil {
				return err
			}
			continue
		}
		if err := writeValue(b, b.Field().Type, v); err != nil {
			return err
		}
	}
	return w.rb.CommitRow()
}

func pushAbsent(b Builder) error {
	if b.Field().Nullable {
		return b.PushNull()
	}
	return b.PushDefault()
}

// writeValue converts one decoded Go value into the event(s) b.Accept
// expects, recursing through composite shapes. Numeric literals arrive as
// json.Number when the row was JSON-decoded with UseNumber (reader.InputMap
// does this); everything else arrives as its native Go type.
//
// want is the Arrow DataType actually declared for this slot, looked up by
// the caller from the enclosing composite's own schema. b never changes
// identity as the recursion descends into a composite's children — it is
// always the outermost field's Builder, relying on its internal state
// machine to route each event to whichever child is currently active — so
// b.Field().Type only ever reports the top-level field's type, never the
// current slot's. want carries that information instead.
func writeValue(b Builder, want arrow.DataType, v any) error {
	switch t := v.(type) {
	case nil:
		return b.Accept(event.NullEvent())
	case bool:
		return b.Accept(event.BoolEvent(t))
	case string:
		return b.Accept(event.OwnedStrEvent(t))
	case []byte:
		return b.Accept(event.OwnedBinaryEvent(t))
	case json.Number:
		return writeNumber(b, t)
	case int:
		return b.Accept(event.I64Event(int64(t)))
	case int8:
		return b.Accept(event.I8Event(t))
	case int16:
		return b.Accept(event.I16Event(t))
	case int32:
		return b.Accept(event.I32Event(t))
	case int64:
		return b.Accept(event.I64Event(t))
	case uint:
		return b.Accept(event.U64Event(uint64(t)))
	case uint8:
		return b.Accept(event.U8Event(t))
	case uint16:
		return b.Accept(event.U16Event(t))
	case uint32:
		return b.Accept(event.U32Event(t))
	case uint64:
		return b.Accept(event.U64Event(t))
	case float32:
		return b.Accept(event.F32Event(t))
	case float64:
		return b.Accept(event.F64Event(t))
	case map[string]any:
		switch dt := want.(type) {
		case *arrow.DenseUnionType:
			if name, ok := t["variant"].(string); ok && name != "" {
				return writeVariant(b, dt, t)
			}
		case *arrow.MapType:
			return writeMap(b, dt, t)
		}
		return writeStruct(b, want, t)
	case []any:
		return writeSequence(b, want, t)
	default:
		return skerr.New(skerr.Unsupported, "cannot convert %T to an event", v).WithField(b.Field().Name)
	}
}

// writeVariant drives a DenseUnion field from its decoded
// {"variant": name, "value": v} shape (the shape skein's mapsink.go
// wrapVariant produces on the read side): Variant(name) selects the branch, then the
// branch's value subtree follows, forwarded internally by
// denseUnionBuilder.Accept. The branch's own declared type is looked up by
// name in dt so a composite-valued branch (e.g. a struct or list payload)
// dispatches on its own shape instead of re-entering the union guard in
// writeValue.
func writeVariant(b Builder, dt *arrow.DenseUnionType, m map[string]any) error {
	name, _ := m["variant"].(string)
	if name == "" {
		return skerr.New(skerr.Unsupported, "union value missing variant name").WithField(b.Field().Name)
	}
	if err := b.Accept(event.VariantEvent(name, 0)); err != nil {
		return err
	}
	v := m["value"]
	if v == nil {
		return b.Accept(event.NullEvent())
	}
	for _, f := range dt.Fields() {
		if f.Name == name {
			return writeValue(b, f.Type, v)
		}
	}
	return skerr.New(skerr.UnknownVariant, "variant %q not declared", name).WithField(b.Field().Name)
}

func writeNumber(b Builder, n json.Number) error {
	if i, err := n.Int64(); err == nil {
		return b.Accept(event.I64Event(i))
	}
	f, err := n.Float64()
	if err != nil {
		return skerr.New(skerr.Parse, "%s", err).WithField(b.Field().Name)
	}
	return b.Accept(event.F64Event(f))
}

// writeStruct drives a StartStruct/AwaitingField.../EndStruct span, one
// Str(name)+writeValue pair per key — the struct builder's own state
// machine enforces the alternation (builder/struct.go "structState"). want
// supplies each field's declared DataType by name so a nested composite
// value dispatches on its own shape rather than the enclosing struct's.
func writeStruct(b Builder, want arrow.DataType, m map[string]any) error {
	st, ok := want.(*arrow.StructType)
	if !ok {
		return skerr.New(skerr.SchemaMismatch, "unexpected struct value").WithField(b.Field().Name).WithDataType(want.String())
	}
	if err := b.Accept(event.StartStructEvent()); err != nil {
		return err
	}
	for k, v := range m {
		if err := b.Accept(event.StrEvent(k)); err != nil {
			return err
		}
		childType, err := structFieldType(st, k)
		if err != nil {
			return err
		}
		if v == nil {
			if err := b.Accept(event.NullEvent()); err != nil {
				return err
			}
			continue
		}
		if err := writeValue(b, childType, v); err != nil {
			return err
		}
	}
	return b.Accept(event.EndStructEvent())
}

func structFieldType(st *arrow.StructType, name string) (arrow.DataType, error) {
	for _, f := range st.Fields() {
		if f.Name == name {
			return f.Type, nil
		}
	}
	return nil, skerr.New(skerr.MissingField, "unknown struct field %q", name)
}

// writeSequence drives a StartList/Item.../EndList span. A map builder also
// accepts a similarly-shaped span driven from StartMap instead, handled
// separately by writeMap; Accept's own dispatch on the builder's concrete
// type decides which composite span is legal, so writeSequence only needs
// to emit Start*/Item/EndList uniformly and let the underlying builder
// reject a mismatched span. want supplies the element DataType so the
// item's own shape drives the recursion.
func writeSequence(b Builder, want arrow.DataType, s []any) error {
	elem, err := listElemType(want)
	if err != nil {
		return err
	}
	if err := b.Accept(event.StartListEvent()); err != nil {
		return err
	}
	for _, v := range s {
		if err := b.Accept(event.ItemEvent()); err != nil {
			return err
		}
		if v == nil {
			if err := b.Accept(event.NullEvent()); err != nil {
				return err
			}
			continue
		}
		if err := writeValue(b, elem, v); err != nil {
			return err
		}
	}
	return b.Accept(event.EndListEvent())
}

func listElemType(want arrow.DataType) (arrow.DataType, error) {
	switch dt := want.(type) {
	case *arrow.ListType:
		return dt.ElemField().Type, nil
	case *arrow.LargeListType:
		return dt.ElemField().Type, nil
	case *arrow.FixedSizeListType:
		return dt.ElemField().Type, nil
	default:
		return nil, skerr.New(skerr.SchemaMismatch, "unexpected list value").WithDataType(want.String())
	}
}

// writeMap drives a StartMap/Item.../EndMap span, one Item per {key, value}
// pair with no struct wrapper around the pair (mirrors cursor.mapCursor's
// read side and mapBuilder's state machine). Decoded map values always
// carry Go string keys (map[string]any, per mapsink.go's place coercing
// every key through fmt.Sprint), so only string-keyed Map fields round-trip
// through this path.
func writeMap(b Builder, dt *arrow.MapType, m map[string]any) error {
	if err := b.Accept(event.StartMapEvent()); err != nil {
		return err
	}
	keyType, valType := dt.KeyField().Type, dt.ItemField().Type
	for k, v := range m {
		if err := b.Accept(event.ItemEvent()); err != nil {
			return err
		}
		if err := writeValue(b, keyType, k); err != nil {
			return err
		}
		if v == nil {
			if err := b.Accept(event.NullEvent()); err != nil {
				return err
			}
			continue
		}
		if err := writeValue(b, valType, v); err != nil {
			return err
		}
	}
	return b.Accept(event.EndMapEvent())
}
