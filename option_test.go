package skein

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithInferTimeUnits(t *testing.T) {
	tr, err := NewTracer(WithInferTimeUnits())
	assert.NoError(t, err)
	assert.True(t, tr.inferTimeUnits, "WithInferTimeUnits should enable inferTimeUnits")
}

func TestWithTypeConversion(t *testing.T) {
	tr, err := NewTracer(WithTypeConversion())
	assert.NoError(t, err)
	assert.True(t, tr.typeConversion, "WithTypeConversion should enable typeConversion")
}

func TestWithQuotedValuesAreStrings(t *testing.T) {
	tr, err := NewTracer(WithQuotedValuesAreStrings())
	assert.NoError(t, err)
	assert.True(t, tr.quotedValuesAreStrings, "WithQuotedValuesAreStrings should enable quotedValuesAreStrings")
}

func TestWithLargeStrings(t *testing.T) {
	tr, err := NewTracer(WithLargeStrings())
	assert.NoError(t, err)
	assert.True(t, tr.largeStrings, "WithLargeStrings should enable largeStrings")
}

func TestWithLargeLists(t *testing.T) {
	tr, err := NewTracer(WithLargeLists())
	assert.NoError(t, err)
	assert.True(t, tr.largeLists, "WithLargeLists should enable largeLists")
}

func TestWithMaxCount(t *testing.T) {
	maxCount := 100
	tr, err := NewTracer(WithMaxCount(maxCount))
	assert.NoError(t, err)
	assert.Equal(t, maxCount, tr.maxCount, "WithMaxCount should set maxCount to the provided value")
}

func TestWithCheckForUnion(t *testing.T) {
	tr, err := NewTracer(WithCheckForUnion())
	assert.NoError(t, err)
	assert.True(t, tr.checkForUnion, "WithCheckForUnion should enable checkForUnion")
}

func TestWithUseVariantForUnions(t *testing.T) {
	tr, err := NewTracer(WithUseVariantForUnions())
	assert.NoError(t, err)
	assert.True(t, tr.useVariantForUnions, "WithUseVariantForUnions should enable useVariantForUnions")
}

func TestWithIOReader(t *testing.T) {
	data := "record1\nrecord2\nrecord3"
	r := bytes.NewReader([]byte(data))
	tr, err := NewTracer(WithIOReader(r, '\n'))
	assert.NoError(t, err)

	assert.NotNil(t, tr.rr, "WithIOReader should set the io.Reader")
	assert.NotNil(t, tr.br, "WithIOReader should set the bufio.Reader")
	assert.Equal(t, byte('\n'), tr.delim, "WithIOReader should set the correct delimiter")
}

func TestWithPreprocessMapping(t *testing.T) {
	tr, err := NewTracer(WithPreprocessMapping(`root = this`))
	assert.NoError(t, err)
	assert.NotNil(t, tr.mapping, "WithPreprocessMapping should compile and store the mapping")
}

func TestWithPreprocessMappingInvalid(t *testing.T) {
	_, err := NewTracer(WithPreprocessMapping(`root = this.`))
	assert.Error(t, err)
}
