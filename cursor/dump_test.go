package cursor

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowskein/skein/builder"
	"github.com/arrowskein/skein/event"
)

func TestRowToJSONFlatRow(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)
	rb, err := builder.NewRecordBuilder(memory.NewGoAllocator(), schema)
	require.NoError(t, err)
	require.NoError(t, rb.Field(0).Accept(event.I64Event(1)))
	require.NoError(t, rb.Field(1).Accept(event.OwnedStrEvent("ada")))
	require.NoError(t, rb.CommitRow())
	rec, err := rb.Finish()
	require.NoError(t, err)
	defer rec.Release()

	out, err := RowToJSON(schema, rec.Columns(), 0)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"ada"}`, out)
}

func TestRowToJSONWithNullField(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)
	rb, err := builder.NewRecordBuilder(memory.NewGoAllocator(), schema)
	require.NoError(t, err)
	require.NoError(t, rb.Field(0).Accept(event.I64Event(2)))
	require.NoError(t, rb.Field(1).Accept(event.NullEvent()))
	require.NoError(t, rb.CommitRow())
	rec, err := rb.Finish()
	require.NoError(t, err)
	defer rec.Release()

	out, err := RowToJSON(schema, rec.Columns(), 0)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":2,"name":null}`, out)
}
