package skein

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowskein/skein/builder"
)

// roundTrip runs rows through ToArrays then FromArrays and returns the
// reconstructed rows, releasing the intermediate arrays.
func roundTrip(t *testing.T, schema *arrow.Schema, rows []any) []map[string]any {
	t.Helper()
	arrays, err := ToArrays(nil, schema, rows)
	require.NoError(t, err)
	defer func() {
		for _, a := range arrays {
			a.Release()
		}
	}()
	got, err := FromArrays(schema, arrays)
	require.NoError(t, err)
	return got
}

// TestRoundTripDenseUnionScalarAndStructVariants covers testable property
// S3: a dense union whose variants mix a scalar payload and a composite
// (struct) payload must round-trip through ToArrays/FromArrays unchanged.
func TestRoundTripDenseUnionScalarAndStructVariants(t *testing.T) {
	variants := arrow.DenseUnionOf(
		[]arrow.Field{
			{Name: "A", Type: arrow.FixedWidthTypes.Boolean, Nullable: true},
			{Name: "B", Type: arrow.StructOf(
				arrow.Field{Name: "x", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
			), Nullable: true},
		},
		[]arrow.UnionTypeCode{0, 1},
	)
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "u", Type: variants, Nullable: false},
	}, nil)

	rows := []any{
		map[string]any{"u": map[string]any{"variant": "A", "value": true}},
		map[string]any{"u": map[string]any{"variant": "B", "value": map[string]any{"x": int64(7)}}},
	}

	got := roundTrip(t, schema, rows)
	require.Len(t, got, 2)
	assert.Equal(t, map[string]any{"variant": "A", "value": true}, got[0]["u"])
	assert.Equal(t, map[string]any{"variant": "B", "value": map[string]any{"x": int64(7)}}, got[1]["u"])
}

// TestRoundTripDecimal128 covers testable property S4: a Decimal128(p, s)
// field accepts a decimal string and reports back a value scaled the same
// way it was stored.
func TestRoundTripDecimal128(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "amount", Type: &arrow.Decimal128Type{Precision: 12, Scale: 3}, Nullable: false},
	}, nil)

	rows := []any{
		map[string]any{"amount": "1234.500"},
		map[string]any{"amount": "-0.100"},
	}

	got := roundTrip(t, schema, rows)
	require.Len(t, got, 2)
	assert.Equal(t, "1234.5", got[0]["amount"])
	assert.Equal(t, "-0.1", got[1]["amount"])
}

// TestRoundTripDate64FromString covers testable property S6: a Date64
// field tagged NaiveStrAsDate64 accepts a "YYYY-MM-DD" string and reports
// back the naive date-time string for midnight of that calendar day.
func TestRoundTripDate64FromString(t *testing.T) {
	meta := arrow.NewMetadata(
		[]string{builder.MetadataKeyStrategy},
		[]string{string(builder.StrategyNaiveStrAsDate64)},
	)
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "created", Type: arrow.FixedWidthTypes.Date64, Nullable: false, Metadata: meta},
	}, nil)

	rows := []any{
		map[string]any{"created": "2024-01-15"},
	}

	got := roundTrip(t, schema, rows)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-01-15T00:00:00", got[0]["created"])
}

// TestRoundTripDictionaryEncodedStrings covers testable property S5: a
// string-dictionary field round-trips repeated values through the same
// insertion-ordered value table on both sides.
func TestRoundTripDictionaryEncodedStrings(t *testing.T) {
	dt := &arrow.DictionaryType{
		IndexType: arrow.PrimitiveTypes.Int32,
		ValueType: arrow.BinaryTypes.String,
	}
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "color", Type: dt, Nullable: false},
	}, nil)

	rows := []any{
		map[string]any{"color": "red"},
		map[string]any{"color": "blue"},
		map[string]any{"color": "red"},
	}

	got := roundTrip(t, schema, rows)
	require.Len(t, got, 3)
	assert.Equal(t, "red", got[0]["color"])
	assert.Equal(t, "blue", got[1]["color"])
	assert.Equal(t, "red", got[2]["color"])
}

// TestRoundTripMap covers Map(K, V): a string-keyed map field must round-trip
// through StartMap/Item/.../EndMap on both the write and read side.
func TestRoundTripMap(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "tags", Type: arrow.MapOf(arrow.BinaryTypes.String, arrow.BinaryTypes.String), Nullable: false},
	}, nil)

	rows := []any{
		map[string]any{"tags": map[string]any{"env": "prod", "team": "search"}},
		map[string]any{"tags": map[string]any{}},
	}

	got := roundTrip(t, schema, rows)
	require.Len(t, got, 2)
	assert.Equal(t, map[string]any{"env": "prod", "team": "search"}, got[0]["tags"])
	assert.Equal(t, map[string]any{}, got[1]["tags"])
}

// TestRoundTripMapOfStructs nests a composite value inside a Map, the case
// that previously forced writeValue to misroute every entry's value into
// writeStruct instead of dispatching on its own declared type.
func TestRoundTripMapOfStructs(t *testing.T) {
	valueType := arrow.StructOf(
		arrow.Field{Name: "count", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
	)
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "counters", Type: arrow.MapOf(arrow.BinaryTypes.String, valueType), Nullable: false},
	}, nil)

	rows := []any{
		map[string]any{"counters": map[string]any{"hits": map[string]any{"count": int64(3)}}},
	}

	got := roundTrip(t, schema, rows)
	require.Len(t, got, 1)
	assert.Equal(t, map[string]any{"hits": map[string]any{"count": int64(3)}}, got[0]["counters"])
}
