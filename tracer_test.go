package skein

import (
	"bytes"
	"os"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
)

func TestWithIOReaderAndTraceFromScanner(t *testing.T) {
	data := `{"field1": "value1", "field2": 42}
	{"field3": 867.5609, "field4": [{"key": "value"}]}`
	r := bytes.NewReader([]byte(data))

	tr, err := NewTracer(WithIOReader(r, '\n'))
	assert.NoError(t, err)

	err = tr.TraceFromScanner()
	assert.NoError(t, err)

	schema, err := tr.Schema()
	assert.NoError(t, err)

	expectedFields := []arrow.Field{
		{Name: "field1", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "field2", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "field3", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "field4", Type: arrow.ListOf(arrow.StructOf(
			arrow.Field{Name: "key", Type: arrow.BinaryTypes.String, Nullable: true},
		)), Nullable: true},
	}
	compareSchemas(t, expectedFields, schema.Fields())
}

func TestWithIOReaderAndTraceFromScannerWithDelimiter(t *testing.T) {
	data := `{"field1": "value1", "field2": 42};{"field3": 867.5609, "field4": [{"key": "value"}]}`
	r := bytes.NewReader([]byte(data))

	tr, err := NewTracer(WithIOReader(r, ';'))
	assert.NoError(t, err)

	err = tr.TraceFromScanner()
	assert.NoError(t, err)

	schema, err := tr.Schema()
	assert.NoError(t, err)

	expectedFields := []arrow.Field{
		{Name: "field1", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "field2", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "field3", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "field4", Type: arrow.ListOf(arrow.StructOf(
			arrow.Field{Name: "key", Type: arrow.BinaryTypes.String, Nullable: true},
		)), Nullable: true},
	}
	compareSchemas(t, expectedFields, schema.Fields())
}

func TestWithIOReaderAndTraceFromScannerWithEmptyData(t *testing.T) {
	data := ""
	r := bytes.NewReader([]byte(data))

	tr, err := NewTracer(WithIOReader(r, '\n'))
	assert.NoError(t, err)

	err = tr.TraceFromScanner()
	assert.NoError(t, err)

	_, err = tr.Schema()
	assert.Equal(t, "tracer not initialised", err.Error())
}

func TestWithIOReaderAndTraceFromScannerWithInvalidData(t *testing.T) {
	data := `{"field1": "value1", "field2": 42, {"field3": 867.5609, "field4": [{"key": "value"}]}`
	r := bytes.NewReader([]byte(data))

	tr, err := NewTracer(WithIOReader(r, '\n'))
	assert.NoError(t, err)

	err = tr.TraceFromScanner()
	if err == nil {
		t.Fatal("expected TraceFromScanner to fail with invalid data, but it succeeded")
	}
	assert.Contains(t, err.Error(), "invalid input")
}

func TestTraceAtPath(t *testing.T) {
	initialData := `{"level1": {"field1": "value1"}}`
	newData := `{"field2": 42}`

	tr, err := NewTracer()
	assert.NoError(t, err)

	err = tr.TraceFromSamples(initialData)
	assert.NoError(t, err)

	err = tr.TraceAtPath(newData, "$.level1")
	assert.NoError(t, err)

	schema, err := tr.Schema()
	assert.NoError(t, err)

	expectedFields := []arrow.Field{
		{
			Name: "level1",
			Type: arrow.StructOf(
				arrow.Field{Name: "field1", Type: arrow.BinaryTypes.String, Nullable: true},
				arrow.Field{Name: "field2", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
			),
			Nullable: true,
		},
	}

	compareSchemas(t, expectedFields, schema.Fields())
}

func TestExportAndImportSchemaFile(t *testing.T) {
	data := `{"field1": "value1", "field2": 42}`

	tr, err := NewTracer()
	assert.NoError(t, err)

	err = tr.TraceFromSamples(data)
	assert.NoError(t, err)

	exportPath := "test_schema.arrow"
	err = tr.ExportSchemaFile(exportPath)
	assert.NoError(t, err)
	defer os.Remove(exportPath)

	importedSchema, err := tr.ImportSchemaFile(exportPath)
	assert.NoError(t, err)

	originalSchema, err := tr.Schema()
	assert.NoError(t, err)

	assert.True(t, originalSchema.Equal(importedSchema), "imported schema does not match the original schema")
}

func TestExportAndImportSchemaBytes(t *testing.T) {
	data := `{"field1": "value1", "field2": 42}`

	tr, err := NewTracer()
	assert.NoError(t, err)

	err = tr.TraceFromSamples(data)
	assert.NoError(t, err)

	schemaBytes, err := tr.ExportSchemaBytes()
	assert.NoError(t, err)

	importedSchema, err := tr.ImportSchemaBytes(schemaBytes)
	assert.NoError(t, err)

	originalSchema, err := tr.Schema()
	assert.NoError(t, err)

	assert.True(t, originalSchema.Equal(importedSchema), "imported schema does not match the original schema")
}

func TestLastSchema(t *testing.T) {
	data1 := `{"field1": "value1"}`
	data2 := `{"field2": 42}`

	tr, err := NewTracer()
	assert.NoError(t, err)

	err = tr.TraceFromSamples(data1)
	assert.NoError(t, err)

	err = tr.TraceFromSamples(data2)
	assert.NoError(t, err)

	lastSchema, err := tr.LastSchema()
	assert.NoError(t, err)

	expectedFields := []arrow.Field{
		{Name: "field2", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	}

	compareSchemas(t, expectedFields, lastSchema.Fields())
}

func TestTraceFromSamplesWithInvalidInput(t *testing.T) {
	data := `{"field1": "value1", "field2": [}`

	tr, err := NewTracer()
	assert.NoError(t, err)

	err = tr.TraceFromSamples(data)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input")
}

func TestTraceAtPathWithInvalidPath(t *testing.T) {
	initialData := `{"level1": {"field1": "value1"}}`
	newData := `{"field2": 42}`

	tr, err := NewTracer()
	assert.NoError(t, err)

	err = tr.TraceFromSamples(initialData)
	assert.NoError(t, err)

	err = tr.TraceAtPath(newData, "$.nonexistent")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "path not found")
}

func TestToArraysAndFromArraysRoundTrip(t *testing.T) {
	tr, err := NewTracer()
	assert.NoError(t, err)

	assert.NoError(t, tr.TraceFromSamples(`{"name": "ada", "age": 36, "tags": ["math", "cs"]}`))

	schema, err := tr.Schema()
	assert.NoError(t, err)

	rows := []any{
		map[string]any{"name": "ada", "age": int64(36), "tags": []any{"math", "cs"}},
		map[string]any{"name": "alan", "age": int64(41), "tags": []any{}},
	}

	arrays, err := ToArrays(nil, schema, rows)
	assert.NoError(t, err)
	defer func() {
		for _, a := range arrays {
			a.Release()
		}
	}()

	got, err := FromArrays(schema, arrays)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "ada", got[0]["name"])
	assert.Equal(t, "alan", got[1]["name"])
}
