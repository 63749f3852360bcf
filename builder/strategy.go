package builder

import "github.com/apache/arrow-go/v18/arrow"

// MetadataKeyStrategy is the reserved arrow.Field metadata key the tracer
// uses to disambiguate a semantic mapping from its physical Arrow DataType
// (spec.md §4.1 "Strategy"). builder and cursor only need to read it; the
// tracer package owns writing it.
const MetadataKeyStrategy = "SKEIN:strategy"

// Strategy names a semantic interpretation layered on top of a field's
// physical DataType when the DataType alone is ambiguous.
type Strategy string

const (
	StrategyNone                      Strategy = ""
	StrategyNaiveStrAsDate64          Strategy = "NaiveStrAsDate64"
	StrategyUtcStrAsDate64            Strategy = "UtcStrAsDate64"
	StrategyTupleAsStruct             Strategy = "TupleAsStruct"
	StrategyMapAsStruct               Strategy = "MapAsStruct"
	StrategyEnumsWithoutDataAsStrings Strategy = "EnumsWithoutDataAsStrings"
)

func strategyOf(field arrow.Field) Strategy {
	return StrategyOf(field)
}

// StrategyOf reads field's SKEIN:strategy metadata tag, if any. The cursor
// package uses this directly so a deserialized Date64/Timestamp field
// formats back to the same string shape the tracer observed (spec.md §4.1
// "Strategy").
func StrategyOf(field arrow.Field) Strategy {
	if field.Metadata.Len() == 0 {
		return StrategyNone
	}
	idx := field.Metadata.FindKey(MetadataKeyStrategy)
	if idx < 0 {
		return StrategyNone
	}
	return Strategy(field.Metadata.Values()[idx])
}
