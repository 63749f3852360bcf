package skein

import (
	"sort"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/arrowskein/skein/builder"
	"github.com/stretchr/testify/assert"
)

// compareSchemas asserts two field sets are equal regardless of field
// order at any nesting level: mapToArrow walks a Go map, whose iteration
// order Go never guarantees, so two traces of the same JSON can legally
// disagree on sibling order.
func compareSchemas(t *testing.T, expected, actual []arrow.Field) {
	t.Helper()
	assert.Equal(t, normalizeFields(expected), normalizeFields(actual))
}

func normalizeFields(fields []arrow.Field) []arrow.Field {
	out := make([]arrow.Field, len(fields))
	copy(out, fields)
	for i, f := range out {
		out[i].Type = normalizeType(f.Type)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func normalizeType(dt arrow.DataType) arrow.DataType {
	switch t := dt.(type) {
	case *arrow.StructType:
		return arrow.StructOf(normalizeFields(t.Fields())...)
	case *arrow.ListType:
		return arrow.ListOf(normalizeType(t.Elem()))
	case *arrow.LargeListType:
		return arrow.LargeListOf(normalizeType(t.Elem()))
	case *arrow.DenseUnionType:
		return arrow.DenseUnionOf(normalizeFields(t.Fields()), t.TypeCodes())
	default:
		return dt
	}
}

func TestSchemaInference_SimpleTypes(t *testing.T) {
	jsonInput := `{
        "int_field": 42,
        "string_field": "hello",
        "bool_field": true,
        "float_field": 3.14
    }`

	tr, err := NewTracer()
	assert.NoError(t, err)

	err = tr.TraceFromSamples(jsonInput)
	assert.NoError(t, err)

	schema, err := tr.Schema()
	assert.NoError(t, err)

	expectedFields := []arrow.Field{
		{Name: "int_field", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "string_field", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "bool_field", Type: arrow.FixedWidthTypes.Boolean, Nullable: true},
		{Name: "float_field", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	}

	compareSchemas(t, expectedFields, schema.Fields())
}

func TestSchemaInference_DeeplyNestedStructTypes(t *testing.T) {
	jsonInput := `{
        "level1": {
            "level2": {
                "level3": {
                    "int_field": 42,
                    "string_field": "nested"
                }
            }
        }
    }`

	tr, err := NewTracer()
	assert.NoError(t, err)

	err = tr.TraceFromSamples(jsonInput)
	assert.NoError(t, err)

	schema, err := tr.Schema()
	assert.NoError(t, err)

	expectedFields := []arrow.Field{
		{
			Name: "level1",
			Type: arrow.StructOf(
				arrow.Field{
					Name: "level2",
					Type: arrow.StructOf(
						arrow.Field{Name: "level3", Type: arrow.StructOf(
							arrow.Field{Name: "int_field", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
							arrow.Field{Name: "string_field", Type: arrow.BinaryTypes.String, Nullable: true},
						), Nullable: true},
					),
					Nullable: true,
				},
			),
			Nullable: true,
		},
	}

	compareSchemas(t, expectedFields, schema.Fields())
}

func TestSchemaInference_UnionTypes(t *testing.T) {
	jsonInput := `{
        "union_field": [true,42,"string",null,{"inner":"thing"}]
    }`

	tr, err := NewTracer(WithCheckForUnion(), WithUseVariantForUnions())
	assert.NoError(t, err)

	err = tr.TraceFromSamples(jsonInput)
	assert.NoError(t, err)

	schema, err := tr.Schema()
	assert.NoError(t, err)

	variants := arrow.DenseUnionOf(
		[]arrow.Field{
			{Name: "bool", Type: arrow.FixedWidthTypes.Boolean, Nullable: true},
			{Name: "number", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
			{Name: "string", Type: arrow.BinaryTypes.String, Nullable: true},
			{Name: "struct", Type: arrow.StructOf(
				arrow.Field{Name: "inner", Type: arrow.BinaryTypes.String, Nullable: true},
			), Nullable: true},
		},
		[]arrow.UnionTypeCode{0, 1, 2, 3},
	)
	expectedFields := []arrow.Field{
		{
			Name:     "union_field",
			Type:     arrow.ListOf(variants),
			Nullable: true,
		},
	}

	compareSchemas(t, expectedFields, schema.Fields())
}

func TestSchemaInference_DeeplyNestedMixedTypes(t *testing.T) {
	jsonInput := `{
        "level1": {
            "list_field": [
                {
                    "nested_struct": {
                        "list_field2": [{
                            "key1": "value1",
                            "key2": "value2"
                        }]
                    }
                }
            ]
        }
    }`

	tr, err := NewTracer()
	assert.NoError(t, err)

	err = tr.TraceFromSamples(jsonInput)
	assert.NoError(t, err)

	schema, err := tr.Schema()
	assert.NoError(t, err)

	expectedFields := []arrow.Field{
		{
			Name: "level1",
			Type: arrow.StructOf(
				arrow.Field{
					Name: "list_field",
					Type: arrow.ListOf(
						arrow.StructOf(
							arrow.Field{
								Name: "nested_struct",
								Type: arrow.StructOf(
									arrow.Field{
										Name: "list_field2",
										Type: arrow.ListOf(
											arrow.StructOf(
												arrow.Field{Name: "key1", Type: arrow.BinaryTypes.String, Nullable: true},
												arrow.Field{Name: "key2", Type: arrow.BinaryTypes.String, Nullable: true},
											),
										),
										Nullable: true,
									},
								),
								Nullable: true,
							},
						),
					),
					Nullable: true,
				},
			),
			Nullable: true,
		},
	}

	compareSchemas(t, expectedFields, schema.Fields())
}

func TestSchemaInference_TypeConversionWidensConflictingNumbers(t *testing.T) {
	tr, err := NewTracer(WithTypeConversion())
	assert.NoError(t, err)

	assert.NoError(t, tr.TraceFromSamples(`{"value": 42}`))
	assert.NoError(t, tr.TraceFromSamples(`{"value": 3.14}`))

	schema, err := tr.Schema()
	assert.NoError(t, err)
	compareSchemas(t, []arrow.Field{
		{Name: "value", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	}, schema.Fields())
}

func TestSchemaInference_WithoutTypeConversionConflictIsIgnored(t *testing.T) {
	tr, err := NewTracer()
	assert.NoError(t, err)

	assert.NoError(t, tr.TraceFromSamples(`{"value": 42}`))
	assert.NoError(t, tr.TraceFromSamples(`{"value": "not a number"}`))

	schema, err := tr.Schema()
	assert.NoError(t, err)
	compareSchemas(t, []arrow.Field{
		{Name: "value", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	}, schema.Fields())
}

func TestWithInferTimeUnitsAndSchema(t *testing.T) {
	data := `{"time_field": "12:34:56","time_field2": "12:34:56.789","date_field": "2025-07-25","timestamp_field": "2025-07-25T12:34:56.789"}`

	tr, err := NewTracer(WithInferTimeUnits())
	assert.NoError(t, err)

	err = tr.TraceFromSamples(data)
	assert.NoError(t, err)

	schema, err := tr.Schema()
	assert.NoError(t, err, "Failed to retrieve schema")

	expectedFields := []arrow.Field{
		{Name: "time_field", Type: arrow.FixedWidthTypes.Time64ns, Nullable: true},
		{Name: "time_field2", Type: arrow.FixedWidthTypes.Time64ns, Nullable: true},
		{Name: "date_field", Type: arrow.FixedWidthTypes.Date32, Nullable: true},
		{Name: "timestamp_field", Type: arrow.FixedWidthTypes.Date64, Nullable: true,
			Metadata: arrow.NewMetadata([]string{builder.MetadataKeyStrategy}, []string{string(builder.StrategyNaiveStrAsDate64)})},
	}

	compareSchemas(t, expectedFields, schema.Fields())
}

func TestWithQuotedValuesAreStringsAndSchema(t *testing.T) {
	data := `{"field1": "\"quoted_string\"","field2": 42,"field3": "\"12345\""}`

	tr, err := NewTracer(WithQuotedValuesAreStrings())
	assert.NoError(t, err)

	err = tr.TraceFromSamples(data)
	assert.NoError(t, err, "TraceFromSamples failed")

	schema, err := tr.Schema()
	assert.NoError(t, err, "Failed to retrieve schema")

	expectedFields := []arrow.Field{
		{Name: "field1", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "field2", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "field3", Type: arrow.BinaryTypes.String, Nullable: true},
	}

	compareSchemas(t, expectedFields, schema.Fields())
}
