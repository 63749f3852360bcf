package builder

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowskein/skein/event"
)

func unionField() arrow.Field {
	variants := arrow.DenseUnionOf(
		[]arrow.Field{
			{Name: "bool", Type: arrow.FixedWidthTypes.Boolean, Nullable: true},
			{Name: "string", Type: arrow.BinaryTypes.String, Nullable: true},
		},
		[]arrow.UnionTypeCode{0, 1},
	)
	return arrow.Field{Name: "u", Type: variants, Nullable: true}
}

func TestDenseUnionBuilderSelectsVariantAndForwards(t *testing.T) {
	b, err := New(unionField(), memory.NewGoAllocator())
	require.NoError(t, err)

	require.NoError(t, b.Accept(event.VariantEvent("bool", 0)))
	require.NoError(t, b.Accept(event.BoolEvent(true)))

	require.NoError(t, b.Accept(event.VariantEvent("string", 1)))
	require.NoError(t, b.Accept(event.OwnedStrEvent("hi")))

	require.NoError(t, b.Accept(event.NullEvent()))

	assert.Equal(t, 3, b.Len())
	arr, err := b.Finish()
	require.NoError(t, err)
	defer arr.Release()
	assert.Equal(t, 3, arr.Len())
}

func TestDenseUnionBuilderRejectsUnknownVariant(t *testing.T) {
	b, err := New(unionField(), memory.NewGoAllocator())
	require.NoError(t, err)

	err = b.Accept(event.VariantEvent("missing", 0))
	require.Error(t, err)
}

func structUnionField() arrow.Field {
	variants := arrow.DenseUnionOf(
		[]arrow.Field{
			{Name: "bool", Type: arrow.FixedWidthTypes.Boolean, Nullable: true},
			{Name: "point", Type: arrow.StructOf(
				arrow.Field{Name: "x", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
				arrow.Field{Name: "y", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
			), Nullable: true},
		},
		[]arrow.UnionTypeCode{0, 1},
	)
	return arrow.Field{Name: "u", Type: variants, Nullable: true}
}

// TestDenseUnionBuilderAcceptsStructVariant exercises a composite (struct)
// branch, the shape the scalar-only coverage above never reaches: the
// whole StartStruct..EndStruct span must forward to the selected child
// before the union accepts a Variant for the next row.
func TestDenseUnionBuilderAcceptsStructVariant(t *testing.T) {
	b, err := New(structUnionField(), memory.NewGoAllocator())
	require.NoError(t, err)

	require.NoError(t, b.Accept(event.VariantEvent("point", 1)))
	require.NoError(t, b.Accept(event.StartStructEvent()))
	require.NoError(t, b.Accept(event.StrEvent("x")))
	require.NoError(t, b.Accept(event.I64Event(1)))
	require.NoError(t, b.Accept(event.StrEvent("y")))
	require.NoError(t, b.Accept(event.I64Event(2)))
	require.NoError(t, b.Accept(event.EndStructEvent()))

	require.NoError(t, b.Accept(event.VariantEvent("bool", 0)))
	require.NoError(t, b.Accept(event.BoolEvent(false)))

	assert.Equal(t, 2, b.Len())
	arr, err := b.Finish()
	require.NoError(t, err)
	defer arr.Release()
	assert.Equal(t, 2, arr.Len())
}
