package builder

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/arrowskein/skein/skerr"
)

// RecordBuilder drives one Builder per top-level schema field and asserts
// the sibling-length-equality invariant (spec.md §8 "property 4") at
// Finish: every column must carry the same row count, since a mis-aligned
// write produces an Arrow record that violates the format's own length
// contract the moment it is read back.
type RecordBuilder struct {
	schema  *arrow.Schema
	arrowRB *array.RecordBuilder
	fields  []Builder
	rows    int
}

// NewRecordBuilder constructs one Builder per field of schema, all backed
// by the same underlying array.RecordBuilder so column buffers share a
// single allocator the way bodkin's reader.DataReader does.
func NewRecordBuilder(mem memory.Allocator, schema *arrow.Schema) (*RecordBuilder, error) {
	arrowRB := array.NewRecordBuilder(mem, schema)
	fields := make([]Builder, schema.NumFields())
	for i, f := range schema.Fields() {
		b, err := wrap(f, arrowRB.Field(i))
		if err != nil {
			arrowRB.Release()
			return nil, err
		}
		fields[i] = b
	}
	return &RecordBuilder{schema: schema, arrowRB: arrowRB, fields: fields}, nil
}

// Field returns the Builder for the i-th top-level schema field.
func (r *RecordBuilder) Field(i int) Builder { return r.fields[i] }

// NumFields returns the number of top-level schema fields.
func (r *RecordBuilder) NumFields() int { return len(r.fields) }

// FieldByName returns the Builder for the named top-level schema field, or
// nil if no such field exists.
func (r *RecordBuilder) FieldByName(name string) Builder {
	for i, f := range r.schema.Fields() {
		if f.Name == name {
			return r.fields[i]
		}
	}
	return nil
}

// CommitRow should be called once every top-level field's Builder has
// accepted events for one logical row, so the builder can verify the row
// counts stayed in lock-step.
func (r *RecordBuilder) CommitRow() error {
	r.rows++
	for _, f := range r.fields {
		if f.Len() != r.rows {
			return skerr.New(skerr.LengthMismatch, "field %q has %d rows, expected %d", f.Field().Name, f.Len(), r.rows).
				WithField(f.Field().Name)
		}
	}
	return nil
}

// Finish checks every field finished with an equal row count, then builds
// the arrow.Record. It releases the underlying array.RecordBuilder; the
// RecordBuilder must not be used afterwards.
func (r *RecordBuilder) Finish() (arrow.Record, error) {
	defer r.arrowRB.Release()
	n := -1
	for _, f := range r.fields {
		if n == -1 {
			n = f.Len()
			continue
		}
		if f.Len() != n {
			return nil, skerr.New(skerr.LengthMismatch, "field %q has %d rows, sibling fields have %d", f.Field().Name, f.Len(), n).
				WithField(f.Field().Name)
		}
	}
	return r.arrowRB.NewRecord(), nil
}
