package cursor

import (
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/tidwall/sjson"

	"github.com/arrowskein/skein/event"
)

// RowToJSON renders row i of a record as a JSON document, walking the
// column tree directly (rather than round-tripping through the flat event
// stream Read synthesizes) and writing each scalar leaf with
// sjson.SetBytes at its dotted path — a debugging aid for deserialization
// failures that doesn't need a full JSON-array codec (spec.md §7's
// field-path annotations are the read-side counterpart of this path).
func RowToJSON(schema *arrow.Schema, columns []arrow.Array, row int) (string, error) {
	rc, err := NewRecordCursor(schema, columns)
	if err != nil {
		return "", err
	}
	buf := []byte("{}")
	for _, f := range rc.fields {
		nb, err := collectLeaves(buf, f, row, f.Field().Name)
		if err != nil {
			return "", err
		}
		buf = nb
	}
	return string(buf), nil
}

// collectLeaves recurses through c's composite structure for row i,
// writing every scalar leaf (or explicit null) into buf at path via
// sjson.SetBytes, and returns the updated buffer.
func collectLeaves(buf []byte, c Cursor, i int, path string) ([]byte, error) {
	if !c.IsValid(i) {
		return sjson.SetBytes(buf, path, nil)
	}
	switch t := c.(type) {
	case *structCursor:
		for _, ch := range t.children {
			nb, err := collectLeaves(buf, ch, i, path+"."+ch.Field().Name)
			if err != nil {
				return nil, err
			}
			buf = nb
		}
		return buf, nil
	case *listCursor:
		lo, hi := t.bounds(i)
		for j, n := lo, 0; j < hi; j, n = j+1, n+1 {
			nb, err := collectLeaves(buf, t.child, j, path+"."+strconv.Itoa(n))
			if err != nil {
				return nil, err
			}
			buf = nb
		}
		return buf, nil
	case *largeListCursor:
		lo, hi := t.offsets[i], t.offsets[i+1]
		for j, n := lo, 0; j < hi; j, n = j+1, n+1 {
			nb, err := collectLeaves(buf, t.child, int(j), path+"."+strconv.Itoa(n))
			if err != nil {
				return nil, err
			}
			buf = nb
		}
		return buf, nil
	case *mapCursor:
		lo, hi := int(t.offsets[i]), int(t.offsets[i+1])
		for j, n := lo, 0; j < hi; j, n = j+1, n+1 {
			pre := path + "." + strconv.Itoa(n)
			nb, err := collectLeaves(buf, t.key, j, pre+".key")
			if err != nil {
				return nil, err
			}
			buf = nb
			nb, err = collectLeaves(buf, t.val, j, pre+".value")
			if err != nil {
				return nil, err
			}
			buf = nb
		}
		return buf, nil
	case *denseUnionCursor:
		childIdx := t.arr.ChildID(i)
		off := int(t.arr.ValueOffset(i))
		nb, err := sjson.SetBytes(buf, path+".variant", t.dt.Fields()[childIdx].Name)
		if err != nil {
			return nil, err
		}
		return collectLeaves(nb, t.children[childIdx], off, path+".value")
	case *dictionaryCursor:
		return collectLeaves(buf, t.values, t.arr.GetValueIndex(i), path)
	default:
		return sjson.SetBytes(buf, path, scalarValue(c, i))
	}
}

// scalarValue extracts a plain Go value from any non-composite cursor for
// JSON encoding. Every cursor not handled by collectLeaves' type switch is
// a scalar, string/binary, temporal or decimal leaf, so Read emits exactly
// one event for row i.
func scalarValue(c Cursor, i int) any {
	var v any
	sink := SinkFunc(func(ev event.Event) error {
		switch ev.Kind {
		case event.Bool:
			v = ev.Bool
		case event.I8, event.I16, event.I32, event.I64:
			v = ev.I64
		case event.U8, event.U16, event.U32, event.U64:
			v = ev.U64
		case event.F16:
			v = ev.F16Bits
		case event.F32:
			v = ev.F32
		case event.F64:
			v = ev.F64
		case event.Str, event.OwnedStr:
			v = ev.Str
		case event.Binary, event.OwnedBinary:
			v = ev.Bytes
		case event.Null:
			v = nil
		}
		return nil
	})
	_ = c.Read(i, sink)
	return v
}
