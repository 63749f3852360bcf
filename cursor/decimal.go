package cursor

import (
	"math/big"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/arrowskein/skein/event"
)

// decimal128Cursor formats back to a decimal string at the field's declared
// scale — the inverse of builder.decimal128Builder.parse — so a
// round-tripped Decimal128(p, s) value reads back as "1.23" rather than a
// raw scaled integer.
type decimal128Cursor struct {
	baseField
	arr   *array.Decimal128
	scale int32
}

func newDecimal128Cursor(field arrow.Field, arr *array.Decimal128, dt *arrow.Decimal128Type) *decimal128Cursor {
	return &decimal128Cursor{baseField{field}, arr, dt.Scale}
}

func (c *decimal128Cursor) Len() int           { return c.arr.Len() }
func (c *decimal128Cursor) IsValid(i int) bool { return c.arr.IsValid(i) }

func (c *decimal128Cursor) Read(i int, sink Sink) error {
	if !c.arr.IsValid(i) {
		return sink.Emit(event.NullEvent())
	}
	return sink.Emit(event.StrEvent(formatDecimal(c.arr.Value(i).BigInt(), c.scale)))
}

func formatDecimal(bi *big.Int, scale int32) string {
	neg := bi.Sign() < 0
	digits := new(big.Int).Abs(bi).String()
	if scale <= 0 {
		if neg {
			return "-" + digits
		}
		return digits
	}
	for int32(len(digits)) <= scale {
		digits = "0" + digits
	}
	cut := int32(len(digits)) - scale
	s := digits[:cut] + "." + digits[cut:]
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		s = "0"
	}
	if neg {
		s = "-" + s
	}
	return s
}
