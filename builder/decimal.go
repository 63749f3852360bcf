package builder

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"

	"github.com/arrowskein/skein/event"
	"github.com/arrowskein/skein/skerr"
)

// decimal128Builder accepts either a decimal string ("-12.340") or an
// integer/float event, scaling it to the field's declared (precision,
// scale). Fractional digits beyond scale are truncated toward zero, never
// rounded (spec.md §4.2 "Decimal128(p, s)").
type decimal128Builder struct {
	baseField
	bld   *array.Decimal128Builder
	prec  int32
	scale int32
}

func newDecimal128Builder(field arrow.Field, bld *array.Decimal128Builder, dt *arrow.Decimal128Type) *decimal128Builder {
	return &decimal128Builder{baseField: baseField{field}, bld: bld, prec: dt.Precision, scale: dt.Scale}
}

func (d *decimal128Builder) Len() int { return d.bld.Len() }

func (d *decimal128Builder) Accept(ev event.Event) error {
	switch ev.Kind {
	case event.Some:
		return nil
	case event.Null:
		return d.PushNull()
	case event.Default:
		return d.PushDefault()
	case event.Str, event.OwnedStr:
		n, err := d.parse(ev.Str)
		if err != nil {
			return err
		}
		d.bld.Append(n)
		return nil
	case event.I64:
		n, err := d.parse(strconv.FormatInt(ev.I64, 10))
		if err != nil {
			return err
		}
		d.bld.Append(n)
		return nil
	case event.F64:
		n, err := d.parse(strconv.FormatFloat(ev.F64, 'f', -1, 64))
		if err != nil {
			return err
		}
		d.bld.Append(n)
		return nil
	default:
		return mismatch(d.field, ev, "Decimal128")
	}
}

func (d *decimal128Builder) parse(s string) (decimal128.Num, error) {
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg, s = true, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if len(fracPart) > int(d.scale) {
		fracPart = fracPart[:d.scale]
	}
	for len(fracPart) < int(d.scale) {
		fracPart += "0"
	}
	trimmedInt := strings.TrimLeft(intPart, "0")
	if trimmedInt == "" {
		trimmedInt = "0"
	}
	if int32(len(trimmedInt)) > d.prec-d.scale {
		return decimal128.Num{}, skerr.New(skerr.NumericOverflow,
			"decimal %q exceeds precision %d with scale %d", s, d.prec, d.scale).
			WithField(d.field.Name).WithDataType(d.field.Type.String())
	}
	digits := intPart + fracPart
	if digits == "" {
		digits = "0"
	}
	bi, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return decimal128.Num{}, skerr.New(skerr.Parse, "invalid decimal literal %q", s).
			WithField(d.field.Name).WithDataType(d.field.Type.String())
	}
	if neg {
		bi.Neg(bi)
	}
	return decimal128.FromBigInt(bi), nil
}

func (d *decimal128Builder) PushNull() error {
	if !d.nullable() {
		return notNullable(d.field)
	}
	d.bld.AppendNull()
	return nil
}
func (d *decimal128Builder) PushDefault() error { d.bld.AppendEmptyValue(); return nil }
func (d *decimal128Builder) Finish() (arrow.Array, error) { return d.bld.NewArray(), nil }
