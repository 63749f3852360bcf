package builder

import (
	"errors"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowskein/skein/event"
	"github.com/arrowskein/skein/skerr"
)

func TestScalarBuilderAcceptsMatchingKind(t *testing.T) {
	field := arrow.Field{Name: "n", Type: arrow.PrimitiveTypes.Int64, Nullable: true}
	b, err := New(field, memory.NewGoAllocator())
	require.NoError(t, err)

	require.NoError(t, b.Accept(event.I64Event(42)))
	require.NoError(t, b.Accept(event.NullEvent()))
	assert.Equal(t, 2, b.Len())

	arr, err := b.Finish()
	require.NoError(t, err)
	defer arr.Release()
	assert.Equal(t, 2, arr.Len())
	assert.True(t, arr.IsValid(0))
	assert.False(t, arr.IsValid(1))
}

func TestScalarBuilderRejectsMismatchedKind(t *testing.T) {
	field := arrow.Field{Name: "n", Type: arrow.PrimitiveTypes.Int64, Nullable: true}
	b, err := New(field, memory.NewGoAllocator())
	require.NoError(t, err)

	err = b.Accept(event.BoolEvent(true))
	require.Error(t, err)
	assert.True(t, errors.Is(err, skerr.SchemaMismatch))
}

func TestScalarBuilderPushNullRejectedWhenNotNullable(t *testing.T) {
	field := arrow.Field{Name: "n", Type: arrow.PrimitiveTypes.Int64, Nullable: false}
	b, err := New(field, memory.NewGoAllocator())
	require.NoError(t, err)

	err = b.PushNull()
	require.Error(t, err)
	assert.True(t, errors.Is(err, skerr.SchemaMismatch))
}

func TestStructBuilderRoundTrip(t *testing.T) {
	field := arrow.Field{
		Name: "point",
		Type: arrow.StructOf(
			arrow.Field{Name: "x", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
			arrow.Field{Name: "y", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		),
		Nullable: true,
	}
	b, err := New(field, memory.NewGoAllocator())
	require.NoError(t, err)

	require.NoError(t, b.Accept(event.StartStructEvent()))
	require.NoError(t, b.Accept(event.StrEvent("x")))
	require.NoError(t, b.Accept(event.I64Event(1)))
	require.NoError(t, b.Accept(event.StrEvent("y")))
	require.NoError(t, b.Accept(event.I64Event(2)))
	require.NoError(t, b.Accept(event.EndStructEvent()))
	assert.Equal(t, 1, b.Len())

	arr, err := b.Finish()
	require.NoError(t, err)
	defer arr.Release()
	assert.Equal(t, 1, arr.Len())
}

func TestListBuilderRoundTrip(t *testing.T) {
	field := arrow.Field{
		Name:     "tags",
		Type:     arrow.ListOf(arrow.BinaryTypes.String),
		Nullable: true,
	}
	b, err := New(field, memory.NewGoAllocator())
	require.NoError(t, err)

	require.NoError(t, b.Accept(event.StartListEvent()))
	require.NoError(t, b.Accept(event.ItemEvent()))
	require.NoError(t, b.Accept(event.OwnedStrEvent("a")))
	require.NoError(t, b.Accept(event.ItemEvent()))
	require.NoError(t, b.Accept(event.OwnedStrEvent("b")))
	require.NoError(t, b.Accept(event.EndListEvent()))
	require.NoError(t, b.Accept(event.NullEvent()))
	assert.Equal(t, 2, b.Len())

	arr, err := b.Finish()
	require.NoError(t, err)
	defer arr.Release()
	assert.Equal(t, 2, arr.Len())
	assert.True(t, arr.IsValid(0))
	assert.False(t, arr.IsValid(1))
}

func TestRecordBuilderCommitRowDetectsLengthMismatch(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "a", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "b", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	}, nil)
	rb, err := NewRecordBuilder(memory.NewGoAllocator(), schema)
	require.NoError(t, err)

	require.NoError(t, rb.Field(0).Accept(event.I64Event(1)))
	require.NoError(t, rb.Field(1).Accept(event.I64Event(1)))
	require.NoError(t, rb.CommitRow())

	require.NoError(t, rb.Field(0).Accept(event.I64Event(2)))
	err = rb.CommitRow()
	require.Error(t, err)
	assert.True(t, errors.Is(err, skerr.LengthMismatch))
}

func TestRecordBuilderFieldByName(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "a", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	}, nil)
	rb, err := NewRecordBuilder(memory.NewGoAllocator(), schema)
	require.NoError(t, err)

	assert.NotNil(t, rb.FieldByName("a"))
	assert.Nil(t, rb.FieldByName("missing"))
}
