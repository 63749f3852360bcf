package cursor

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/arrowskein/skein/event"
	"github.com/arrowskein/skein/skerr"
)

// RecordCursor drives one Cursor per top-level schema field and replays a
// finished columnar record as the same row-oriented event stream the
// builder package consumes, in reverse (spec.md §4.3 "column-to-row
// driver").
type RecordCursor struct {
	schema *arrow.Schema
	fields []Cursor
	rows   int
}

// NewRecordCursor wraps a record's columns, one Cursor per field, matching
// them up by position with schema — mirroring builder.NewRecordBuilder on
// the write side.
func NewRecordCursor(schema *arrow.Schema, columns []arrow.Array) (*RecordCursor, error) {
	if len(columns) != schema.NumFields() {
		return nil, skerr.New(skerr.LengthMismatch, "record has %d columns, schema declares %d fields", len(columns), schema.NumFields())
	}
	fields := make([]Cursor, schema.NumFields())
	rows := -1
	for i, f := range schema.Fields() {
		c, err := New(f, columns[i])
		if err != nil {
			return nil, err
		}
		if rows == -1 {
			rows = c.Len()
		} else if c.Len() != rows {
			return nil, skerr.New(skerr.LengthMismatch, "field %q has %d rows, sibling fields have %d", f.Name, c.Len(), rows).
				WithField(f.Name)
		}
		fields[i] = c
	}
	return &RecordCursor{schema: schema, fields: fields, rows: rows}, nil
}

// Len returns the number of rows in the record.
func (r *RecordCursor) Len() int { return r.rows }

// ReadRow synthesizes one record's worth of events: StartStruct, then for
// each top-level field Str(name) followed by that field's subtree, then
// EndStruct.
func (r *RecordCursor) ReadRow(i int, sink Sink) error {
	if err := sink.Emit(event.StartStructEvent()); err != nil {
		return err
	}
	for idx, f := range r.schema.Fields() {
		if err := sink.Emit(event.StrEvent(f.Name)); err != nil {
			return err
		}
		if err := r.fields[idx].Read(i, sink); err != nil {
			return err
		}
	}
	return sink.Emit(event.EndStructEvent())
}

// ReadAll synthesizes the full StartSequence..EndSequence span over every
// row, each row delimited by Item.
func (r *RecordCursor) ReadAll(sink Sink) error {
	if err := sink.Emit(event.StartSequenceEvent()); err != nil {
		return err
	}
	for i := 0; i < r.rows; i++ {
		if err := sink.Emit(event.ItemEvent()); err != nil {
			return err
		}
		if err := r.ReadRow(i, sink); err != nil {
			return err
		}
	}
	return sink.Emit(event.EndSequenceEvent())
}
