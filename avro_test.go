package skein

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceFromAvroSchemaPrimitivesAndOptional(t *testing.T) {
	schemaJSON := `{
		"type": "record",
		"name": "Person",
		"fields": [
			{"name": "id", "type": "long"},
			{"name": "name", "type": "string"},
			{"name": "nickname", "type": ["null", "string"]}
		]
	}`

	schema, err := TraceFromAvroSchema(schemaJSON)
	require.NoError(t, err)

	expected := []arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "nickname", Type: arrow.BinaryTypes.String, Nullable: true},
	}
	compareSchemas(t, expected, schema.Fields())
}

func TestTraceFromAvroSchemaNestedRecordAndArray(t *testing.T) {
	schemaJSON := `{
		"type": "record",
		"name": "Order",
		"fields": [
			{"name": "items", "type": {"type": "array", "items": "string"}},
			{"name": "shipping", "type": {
				"type": "record",
				"name": "Address",
				"fields": [
					{"name": "city", "type": "string"}
				]
			}}
		]
	}`

	schema, err := TraceFromAvroSchema(schemaJSON)
	require.NoError(t, err)

	expected := []arrow.Field{
		{Name: "items", Type: arrow.ListOf(arrow.BinaryTypes.String), Nullable: false},
		{Name: "shipping", Type: arrow.StructOf(
			arrow.Field{Name: "city", Type: arrow.BinaryTypes.String, Nullable: false},
		), Nullable: false},
	}
	compareSchemas(t, expected, schema.Fields())
}

func TestTraceFromAvroSchemaRejectsNonRecordRoot(t *testing.T) {
	_, err := TraceFromAvroSchema(`"string"`)
	assert.Error(t, err)
}
