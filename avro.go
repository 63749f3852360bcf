package skein

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/hamba/avro/v2"
)

// TraceFromAvroSchema parses an Avro schema document (JSON text, per
// avro.Parse) and returns the Arrow schema it maps to, giving the tracer a
// second way to obtain a schema besides sampling values (spec.md §6
// "trace_from_type" generalized to an externally-defined type system
// instead of only the host language's own values).
func TraceFromAvroSchema(schemaJSON string) (*arrow.Schema, error) {
	sch, err := avro.Parse(schemaJSON)
	if err != nil {
		return nil, fmt.Errorf("parse avro schema: %w", err)
	}
	rec, ok := sch.(*avro.RecordSchema)
	if !ok {
		return nil, fmt.Errorf("avro schema root must be a record, got %s", sch.Type())
	}
	fields, err := avroRecordFields(rec)
	if err != nil {
		return nil, err
	}
	return arrow.NewSchema(fields, nil), nil
}

func avroRecordFields(rec *avro.RecordSchema) ([]arrow.Field, error) {
	fields := make([]arrow.Field, 0, len(rec.Fields()))
	for _, f := range rec.Fields() {
		dt, nullable, err := avroFieldType(f.Type())
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name(), err)
		}
		fields = append(fields, arrow.Field{Name: f.Name(), Type: dt, Nullable: nullable})
	}
	return fields, nil
}

// avroFieldType converts one Avro Schema to an Arrow DataType. A
// two-branch union with avro.Null is Avro's idiom for an optional field
// (spec.md §4.1's Some/Default correspond to exactly this), so it unwraps
// to the other branch's type with nullable=true rather than becoming a
// DenseUnion of one real variant.
func avroFieldType(s avro.Schema) (arrow.DataType, bool, error) {
	switch t := s.(type) {
	case *avro.NullSchema:
		return arrow.Null, true, nil
	case *avro.PrimitiveSchema:
		switch t.Type() {
		case avro.Boolean:
			return arrow.FixedWidthTypes.Boolean, false, nil
		case avro.Int:
			return arrow.PrimitiveTypes.Int32, false, nil
		case avro.Long:
			return arrow.PrimitiveTypes.Int64, false, nil
		case avro.Float:
			return arrow.PrimitiveTypes.Float32, false, nil
		case avro.Double:
			return arrow.PrimitiveTypes.Float64, false, nil
		case avro.Bytes:
			return arrow.BinaryTypes.Binary, false, nil
		case avro.String:
			return arrow.BinaryTypes.String, false, nil
		}
		return nil, false, fmt.Errorf("unsupported avro primitive %q", t.Type())
	case *avro.FixedSchema:
		return &arrow.FixedSizeBinaryType{ByteWidth: t.Size()}, false, nil
	case *avro.EnumSchema:
		// EnumsWithoutDataAsStrings (spec.md §4.4): a data-less enum traces
		// to a plain string carrying the symbol name.
		return arrow.BinaryTypes.String, false, nil
	case *avro.ArraySchema:
		elem, _, err := avroFieldType(t.Items())
		if err != nil {
			return nil, false, err
		}
		return arrow.ListOf(elem), false, nil
	case *avro.MapSchema:
		val, _, err := avroFieldType(t.Values())
		if err != nil {
			return nil, false, err
		}
		return arrow.MapOf(arrow.BinaryTypes.String, val), false, nil
	case *avro.RecordSchema:
		fields, err := avroRecordFields(t)
		if err != nil {
			return nil, false, err
		}
		return arrow.StructOf(fields...), false, nil
	case *avro.UnionSchema:
		types := t.Types()
		if len(types) == 2 {
			for i, branch := range types {
				if _, ok := branch.(*avro.NullSchema); ok {
					other := types[1-i]
					dt, _, err := avroFieldType(other)
					return dt, true, err
				}
			}
		}
		return avroDenseUnion(types)
	}
	return nil, false, fmt.Errorf("unsupported avro schema kind %T", s)
}

// avroDenseUnion maps a multi-branch Avro union onto spec.md §4.2's
// DenseUnion(variants), tagging each branch with its ordinal type-id.
func avroDenseUnion(types avro.UnionSchema) (arrow.DataType, bool, error) {
	fields := make([]arrow.Field, len(types))
	codes := make([]arrow.UnionTypeCode, len(types))
	for i, branch := range types {
		dt, nullable, err := avroFieldType(branch)
		if err != nil {
			return nil, false, err
		}
		name := fmt.Sprintf("variant%d", i)
		if named, ok := branch.(avro.NamedSchema); ok {
			name = named.Name()
		}
		fields[i] = arrow.Field{Name: name, Type: dt, Nullable: nullable}
		codes[i] = arrow.UnionTypeCode(i)
	}
	return arrow.DenseUnionOf(fields, codes), false, nil
}
