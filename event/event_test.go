package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsSetKindAndPayload(t *testing.T) {
	assert.Equal(t, Event{Kind: Bool, Bool: true}, BoolEvent(true))
	assert.Equal(t, Event{Kind: I8, I64: -5}, I8Event(-5))
	assert.Equal(t, Event{Kind: U64, U64: 7}, U64Event(7))
	assert.Equal(t, Event{Kind: F32, F32: 1.5}, F32Event(1.5))
	assert.Equal(t, Event{Kind: F64, F64: 2.5}, F64Event(2.5))
	assert.Equal(t, Event{Kind: F16, F16Bits: 0x3c00}, F16Event(0x3c00))
	assert.Equal(t, Event{Kind: Str, Str: "x"}, StrEvent("x"))
	assert.Equal(t, Event{Kind: OwnedStr, Str: "x"}, OwnedStrEvent("x"))
	assert.Equal(t, Event{Kind: Binary, Bytes: []byte{1, 2}}, BinaryEvent([]byte{1, 2}))
	assert.Equal(t, Event{Kind: Variant, Ident: "foo", Index: 3}, VariantEvent("foo", 3))
	assert.Equal(t, Event{Kind: Null}, NullEvent())
	assert.Equal(t, Event{Kind: Some}, SomeEvent())
	assert.Equal(t, Event{Kind: Default}, DefaultEvent())
	assert.Equal(t, Event{Kind: Item}, ItemEvent())
}

func TestIsStart(t *testing.T) {
	for _, k := range []Kind{StartSequence, StartStruct, StartList, StartTuple, StartMap} {
		assert.True(t, k.IsStart(), "%s should be a start kind", k)
	}
	for _, k := range []Kind{EndSequence, EndStruct, Bool, Item, Null} {
		assert.False(t, k.IsStart(), "%s should not be a start kind", k)
	}
}

func TestIsEnd(t *testing.T) {
	for _, k := range []Kind{EndSequence, EndStruct, EndList, EndTuple, EndMap} {
		assert.True(t, k.IsEnd(), "%s should be an end kind", k)
	}
	for _, k := range []Kind{StartSequence, StartStruct, Bool, Item, Null} {
		assert.False(t, k.IsEnd(), "%s should not be an end kind", k)
	}
}

func TestIsScalar(t *testing.T) {
	scalars := []Kind{Bool, I8, I16, I32, I64, U8, U16, U32, U64, F16, F32, F64, Binary, OwnedBinary, Str, OwnedStr}
	for _, k := range scalars {
		assert.True(t, k.IsScalar(), "%s should be scalar", k)
	}
	composites := []Kind{StartStruct, EndStruct, Item, Null, Some, Default, Variant}
	for _, k := range composites {
		assert.False(t, k.IsScalar(), "%s should not be scalar", k)
	}
}

func TestKindStringKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "StartStruct", StartStruct.String())
	assert.Equal(t, "OwnedBinary", OwnedBinary.String())
	assert.Equal(t, "Kind(255)", Kind(255).String())
}

func TestKindZeroValueIsNotNamed(t *testing.T) {
	var zero Kind
	assert.Equal(t, "Kind(0)", zero.String())
}
