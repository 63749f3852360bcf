package skein

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/arrowskein/skein/builder"
	"github.com/arrowskein/skein/cursor"
	"github.com/arrowskein/skein/reader"
)

// ToArrays is the row-to-column front door of spec.md §6: it decodes rows
// (JSON bytes/string, map[string]any, or any mapstructure-decodable Go
// value) against schema and returns one Arrow array per top-level field,
// ready to hand to arrow.NewRecord(schema, arrays, int64(len(rows))).
func ToArrays(mem memory.Allocator, schema *arrow.Schema, rows []any) ([]arrow.Array, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	rb, err := builder.NewRecordBuilder(mem, schema)
	if err != nil {
		return nil, err
	}
	w := builder.NewWriter(rb)
	for _, row := range rows {
		m, err := reader.InputMap(row)
		if err != nil {
			return nil, err
		}
		if err := w.WriteRow(m); err != nil {
			return nil, err
		}
	}
	rec, err := rb.Finish()
	if err != nil {
		return nil, err
	}
	defer rec.Release()
	arrays := make([]arrow.Array, rec.NumCols())
	for i, col := range rec.Columns() {
		col.Retain()
		arrays[i] = col
	}
	return arrays, nil
}

// FromArrays is the column-to-row front door of spec.md §6: it replays
// columns (one per schema field, in schema order) back into row-oriented
// events, collecting each row into a map[string]any by replaying
// RecordCursor.ReadRow's events into a mapSink.
func FromArrays(schema *arrow.Schema, columns []arrow.Array) ([]map[string]any, error) {
	rc, err := cursor.NewRecordCursor(schema, columns)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]any, rc.Len())
	for i := 0; i < rc.Len(); i++ {
		m, err := rowToMap(rc, i)
		if err != nil {
			return nil, err
		}
		rows[i] = m
	}
	return rows, nil
}

// rowToMap drains one row's worth of synthesized events into a
// map[string]any, mirroring builder.Writer's map[string]any -> event
// direction in reverse.
func rowToMap(rc *cursor.RecordCursor, row int) (map[string]any, error) {
	d := &mapSink{}
	if err := rc.ReadRow(row, d); err != nil {
		return nil, err
	}
	if len(d.stack) != 1 {
		return nil, ErrInvalidInput
	}
	top, ok := d.stack[0].(map[string]any)
	if !ok {
		return nil, ErrInvalidInput
	}
	return top, nil
}
