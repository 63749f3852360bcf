package skein

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	json "github.com/goccy/go-json"

	"github.com/arrowskein/skein/builder"
)

// goType2Arrow maps a decoded Go value to the Arrow DataType the tracer
// hypothesizes for it, recording the chosen arrow.Type and (for strings
// that turn out to hide a date/time/timestamp) a builder.Strategy on f so
// mapToArrow can tag the resulting arrow.Field's metadata.
func goType2Arrow(f *fieldPos, gt any) arrow.DataType {
	switch t := gt.(type) {
	case []any:
		return goType2Arrow(f, t[0])
	case json.Number:
		if _, err := t.Int64(); err == nil {
			f.arrowType = arrow.INT64
			return arrow.PrimitiveTypes.Int64
		}
		f.arrowType = arrow.FLOAT64
		return arrow.PrimitiveTypes.Float64
	case time.Time:
		f.arrowType = arrow.TIMESTAMP
		return arrow.FixedWidthTypes.Timestamp_us
	case int:
		f.arrowType = arrow.INT64
		return arrow.PrimitiveTypes.Int64
	case int8:
		f.arrowType = arrow.INT8
		return arrow.PrimitiveTypes.Int8
	case int16:
		f.arrowType = arrow.INT16
		return arrow.PrimitiveTypes.Int16
	case int32:
		f.arrowType = arrow.INT32
		return arrow.PrimitiveTypes.Int32
	case int64:
		f.arrowType = arrow.INT64
		return arrow.PrimitiveTypes.Int64
	case uint:
		f.arrowType = arrow.UINT64
		return arrow.PrimitiveTypes.Uint64
	case uint8:
		f.arrowType = arrow.UINT8
		return arrow.PrimitiveTypes.Uint8
	case uint16:
		f.arrowType = arrow.UINT16
		return arrow.PrimitiveTypes.Uint16
	case uint32:
		f.arrowType = arrow.UINT32
		return arrow.PrimitiveTypes.Uint32
	case uint64:
		f.arrowType = arrow.UINT64
		return arrow.PrimitiveTypes.Uint64
	case float32:
		f.arrowType = arrow.FLOAT32
		return arrow.PrimitiveTypes.Float32
	case float64:
		f.arrowType = arrow.FLOAT64
		return arrow.PrimitiveTypes.Float64
	case bool:
		f.arrowType = arrow.BOOL
		return arrow.FixedWidthTypes.Boolean
	case string:
		return stringDataType(f, t)
	case []byte:
		f.arrowType = arrow.BINARY
		return arrow.BinaryTypes.Binary
	case nil:
		f.arrowType = arrow.NULL
		f.err = fmt.Errorf("%w : %v", ErrUndefinedFieldType, f.namePath())
		return arrow.Null
	}
	f.arrowType = arrow.STRING
	return arrow.BinaryTypes.String
}

// stringDataType implements spec.md §4.1's date/time guessing: with
// guess_dates on, a quoted string matching a timestamp/date/time pattern
// traces to Date32/Date64/Time64 (tagging a Strategy for Date64), and unless
// the tracer was built WithQuotedValuesAreStrings a quoted bool/int/float
// collapses to the bare type;
// everything else stays a plain string (LargeUtf8 when the tracer was
// built WithLargeStrings).
func stringDataType(f *fieldPos, t string) arrow.DataType {
	if f.owner.inferTimeUnits {
		for _, r := range timestampMatchers {
			if r.MatchString(t) {
				f.arrowType = arrow.DATE64
				if hasOffsetSuffix(t) {
					f.strategy = builder.StrategyUtcStrAsDate64
				} else {
					f.strategy = builder.StrategyNaiveStrAsDate64
				}
				return arrow.FixedWidthTypes.Date64
			}
		}
		if dateMatcher.MatchString(t) {
			f.arrowType = arrow.DATE32
			return arrow.FixedWidthTypes.Date32
		}
		if timeMatcher.MatchString(t) {
			f.arrowType = arrow.TIME64
			return arrow.FixedWidthTypes.Time64ns
		}
	}
	if !f.owner.quotedValuesAreStrings {
		if contains(boolMatcher, t) {
			f.arrowType = arrow.BOOL
			return arrow.FixedWidthTypes.Boolean
		}
		if integerMatcher.MatchString(t) {
			f.arrowType = arrow.INT64
			return arrow.PrimitiveTypes.Int64
		}
		if floatMatcher.MatchString(t) {
			f.arrowType = arrow.FLOAT64
			return arrow.PrimitiveTypes.Float64
		}
	}
	f.arrowType = arrow.STRING
	if f.owner.largeStrings {
		return arrow.BinaryTypes.LargeString
	}
	return arrow.BinaryTypes.String
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// ParseDataType parses the schema text-form grammar of spec.md §6:
//
//	DataType := Ident [ "(" Arg { "," Arg } ")" ]
//	Arg      := DataType | Int | QuotedString | "Some(" QuotedString ")" | "None"
//
// covering every primitive plus List/LargeList/FixedSizeList/Struct/Map/
// Dictionary/DenseUnion. DataTypeString is its left inverse.
func ParseDataType(s string) (arrow.DataType, error) {
	p := &dtypeParser{s: s}
	dt, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return nil, fmt.Errorf("dtype: unexpected trailing input %q", p.s[p.pos:])
	}
	return dt, nil
}

type dtypeParser struct {
	s   string
	pos int
}

func (p *dtypeParser) skipSpace() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t' || p.s[p.pos] == '\n') {
		p.pos++
	}
}

func (p *dtypeParser) peek() byte {
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *dtypeParser) expect(b byte) error {
	p.skipSpace()
	if p.peek() != b {
		return fmt.Errorf("dtype: expected %q at %d in %q", b, p.pos, p.s)
	}
	p.pos++
	return nil
}

func (p *dtypeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if c == '(' || c == ')' || c == ',' || c == ' ' {
			break
		}
		p.pos++
	}
	return p.s[start:p.pos]
}

func (p *dtypeParser) quotedString() (string, error) {
	if err := p.expect('"'); err != nil {
		return "", err
	}
	start := p.pos
	for p.pos < len(p.s) && p.s[p.pos] != '"' {
		p.pos++
	}
	if p.pos >= len(p.s) {
		return "", fmt.Errorf("dtype: unterminated string in %q", p.s)
	}
	str := p.s[start:p.pos]
	p.pos++
	return str, nil
}

func (p *dtypeParser) int64() (int64, error) {
	p.skipSpace()
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, fmt.Errorf("dtype: expected integer at %d in %q", p.pos, p.s)
	}
	return strconv.ParseInt(p.s[start:p.pos], 10, 64)
}

// optionalTimezone parses "None" or `Some("tz")`.
func (p *dtypeParser) optionalTimezone() (string, error) {
	p.skipSpace()
	if strings.HasPrefix(p.s[p.pos:], "None") {
		p.pos += len("None")
		return "", nil
	}
	if strings.HasPrefix(p.s[p.pos:], "Some(") {
		p.pos += len("Some(")
		tz, err := p.quotedString()
		if err != nil {
			return "", err
		}
		if err := p.expect(')'); err != nil {
			return "", err
		}
		return tz, nil
	}
	return "", fmt.Errorf("dtype: expected None or Some(...) at %d in %q", p.pos, p.s)
}

func unitOf(name string) (arrow.TimeUnit, error) {
	switch name {
	case "Second":
		return arrow.Second, nil
	case "Millisecond":
		return arrow.Millisecond, nil
	case "Microsecond":
		return arrow.Microsecond, nil
	case "Nanosecond":
		return arrow.Nanosecond, nil
	}
	return 0, fmt.Errorf("dtype: unknown time unit %q", name)
}

func (p *dtypeParser) parseType() (arrow.DataType, error) {
	name := p.ident()
	switch name {
	case "Null":
		return arrow.Null, nil
	case "Bool":
		return arrow.FixedWidthTypes.Boolean, nil
	case "I8":
		return arrow.PrimitiveTypes.Int8, nil
	case "I16":
		return arrow.PrimitiveTypes.Int16, nil
	case "I32":
		return arrow.PrimitiveTypes.Int32, nil
	case "I64":
		return arrow.PrimitiveTypes.Int64, nil
	case "U8":
		return arrow.PrimitiveTypes.Uint8, nil
	case "U16":
		return arrow.PrimitiveTypes.Uint16, nil
	case "U32":
		return arrow.PrimitiveTypes.Uint32, nil
	case "U64":
		return arrow.PrimitiveTypes.Uint64, nil
	case "F16":
		return arrow.FixedWidthTypes.Float16, nil
	case "F32":
		return arrow.PrimitiveTypes.Float32, nil
	case "F64":
		return arrow.PrimitiveTypes.Float64, nil
	case "Utf8":
		return arrow.BinaryTypes.String, nil
	case "LargeUtf8":
		return arrow.BinaryTypes.LargeString, nil
	case "Utf8View":
		return arrow.BinaryTypes.StringView, nil
	case "Binary":
		return arrow.BinaryTypes.Binary, nil
	case "LargeBinary":
		return arrow.BinaryTypes.LargeBinary, nil
	case "BinaryView":
		return arrow.BinaryTypes.BinaryView, nil
	case "Date32":
		return arrow.FixedWidthTypes.Date32, nil
	case "Date64":
		return arrow.FixedWidthTypes.Date64, nil
	case "FixedSizeBinary":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		n, err := p.int64()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &arrow.FixedSizeBinaryType{ByteWidth: int(n)}, nil
	case "Time32":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		u, err := unitOf(p.ident())
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &arrow.Time32Type{Unit: u}, nil
	case "Time64":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		u, err := unitOf(p.ident())
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &arrow.Time64Type{Unit: u}, nil
	case "Timestamp":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		u, err := unitOf(p.ident())
		if err != nil {
			return nil, err
		}
		tz := ""
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			tz, err = p.optionalTimezone()
			if err != nil {
				return nil, err
			}
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &arrow.TimestampType{Unit: u, TimeZone: tz}, nil
	case "Duration":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		u, err := unitOf(p.ident())
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &arrow.DurationType{Unit: u}, nil
	case "Decimal128":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		prec, err := p.int64()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if err := p.expect(','); err != nil {
			return nil, err
		}
		scale, err := p.int64()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &arrow.Decimal128Type{Precision: int32(prec), Scale: int32(scale)}, nil
	case "List":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return arrow.ListOf(elem), nil
	case "LargeList":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return arrow.LargeListOf(elem), nil
	case "FixedSizeList":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if err := p.expect(','); err != nil {
			return nil, err
		}
		n, err := p.int64()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return arrow.FixedSizeListOf(int32(n), elem), nil
	case "Map":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		key, err := p.parseType()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if err := p.expect(','); err != nil {
			return nil, err
		}
		val, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return arrow.MapOf(key, val), nil
	case "Dictionary":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		key, err := p.parseType()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if err := p.expect(','); err != nil {
			return nil, err
		}
		val, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &arrow.DictionaryType{IndexType: key, ValueType: val}, nil
	case "DenseUnion":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		if err := p.expect('['); err != nil {
			return nil, err
		}
		var fields []arrow.Field
		var codes []arrow.UnionTypeCode
		p.skipSpace()
		for p.peek() != ']' {
			if err := p.expect('('); err != nil {
				return nil, err
			}
			fname, err := p.quotedString()
			if err != nil {
				return nil, err
			}
			p.skipSpace()
			if err := p.expect(','); err != nil {
				return nil, err
			}
			ftype, err := p.parseType()
			if err != nil {
				return nil, err
			}
			p.skipSpace()
			if err := p.expect(','); err != nil {
				return nil, err
			}
			code, err := p.int64()
			if err != nil {
				return nil, err
			}
			if err := p.expect(')'); err != nil {
				return nil, err
			}
			fields = append(fields, arrow.Field{Name: fname, Type: ftype, Nullable: true})
			codes = append(codes, arrow.UnionTypeCode(code))
			p.skipSpace()
			if p.peek() == ',' {
				p.pos++
				p.skipSpace()
			}
		}
		if err := p.expect(']'); err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return arrow.DenseUnionOf(fields, codes), nil
	case "Struct":
		if err := p.expect('('); err != nil {
			return nil, err
		}
		if err := p.expect('['); err != nil {
			return nil, err
		}
		var fields []arrow.Field
		p.skipSpace()
		for p.peek() != ']' {
			if err := p.expect('('); err != nil {
				return nil, err
			}
			fname, err := p.quotedString()
			if err != nil {
				return nil, err
			}
			p.skipSpace()
			if err := p.expect(','); err != nil {
				return nil, err
			}
			ftype, err := p.parseType()
			if err != nil {
				return nil, err
			}
			if err := p.expect(')'); err != nil {
				return nil, err
			}
			fields = append(fields, arrow.Field{Name: fname, Type: ftype, Nullable: true})
			p.skipSpace()
			if p.peek() == ',' {
				p.pos++
				p.skipSpace()
			}
		}
		if err := p.expect(']'); err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return arrow.StructOf(fields...), nil
	}
	return nil, fmt.Errorf("dtype: unknown type name %q", name)
}

// DataTypeString renders dt in the text-form grammar ParseDataType accepts.
// The data_type annotation in skerr.Error uses arrow's own DataType.String()
// form, not this one.
func DataTypeString(dt arrow.DataType) string {
	switch t := dt.(type) {
	case *arrow.NullType:
		return "Null"
	case *arrow.BooleanType:
		return "Bool"
	case *arrow.Int8Type:
		return "I8"
	case *arrow.Int16Type:
		return "I16"
	case *arrow.Int32Type:
		return "I32"
	case *arrow.Int64Type:
		return "I64"
	case *arrow.Uint8Type:
		return "U8"
	case *arrow.Uint16Type:
		return "U16"
	case *arrow.Uint32Type:
		return "U32"
	case *arrow.Uint64Type:
		return "U64"
	case *arrow.Float16Type:
		return "F16"
	case *arrow.Float32Type:
		return "F32"
	case *arrow.Float64Type:
		return "F64"
	case *arrow.StringType:
		return "Utf8"
	case *arrow.LargeStringType:
		return "LargeUtf8"
	case *arrow.StringViewType:
		return "Utf8View"
	case *arrow.BinaryType:
		return "Binary"
	case *arrow.LargeBinaryType:
		return "LargeBinary"
	case *arrow.BinaryViewType:
		return "BinaryView"
	case *arrow.FixedSizeBinaryType:
		return fmt.Sprintf("FixedSizeBinary(%d)", t.ByteWidth)
	case *arrow.Date32Type:
		return "Date32"
	case *arrow.Date64Type:
		return "Date64"
	case *arrow.Time32Type:
		return fmt.Sprintf("Time32(%s)", unitName(t.Unit))
	case *arrow.Time64Type:
		return fmt.Sprintf("Time64(%s)", unitName(t.Unit))
	case *arrow.TimestampType:
		if t.TimeZone == "" {
			return fmt.Sprintf("Timestamp(%s, None)", unitName(t.Unit))
		}
		return fmt.Sprintf("Timestamp(%s, Some(%q))", unitName(t.Unit), t.TimeZone)
	case *arrow.DurationType:
		return fmt.Sprintf("Duration(%s)", unitName(t.Unit))
	case *arrow.Decimal128Type:
		return fmt.Sprintf("Decimal128(%d, %d)", t.Precision, t.Scale)
	case *arrow.ListType:
		return fmt.Sprintf("List(%s)", DataTypeString(t.Elem()))
	case *arrow.LargeListType:
		return fmt.Sprintf("LargeList(%s)", DataTypeString(t.Elem()))
	case *arrow.FixedSizeListType:
		return fmt.Sprintf("FixedSizeList(%s, %d)", DataTypeString(t.Elem()), t.Len())
	case *arrow.MapType:
		return fmt.Sprintf("Map(%s, %s)", DataTypeString(t.KeyType()), DataTypeString(t.ItemType()))
	case *arrow.DictionaryType:
		return fmt.Sprintf("Dictionary(%s, %s)", DataTypeString(t.IndexType), DataTypeString(t.ValueType))
	case *arrow.StructType:
		parts := make([]string, len(t.Fields()))
		for i, f := range t.Fields() {
			parts[i] = fmt.Sprintf("(%q, %s)", f.Name, DataTypeString(f.Type))
		}
		return fmt.Sprintf("Struct([%s])", strings.Join(parts, ", "))
	case *arrow.DenseUnionType:
		parts := make([]string, len(t.Fields()))
		codes := t.TypeCodes()
		for i, f := range t.Fields() {
			parts[i] = fmt.Sprintf("(%q, %s, %d)", f.Name, DataTypeString(f.Type), codes[i])
		}
		return fmt.Sprintf("DenseUnion([%s])", strings.Join(parts, ", "))
	}
	return dt.String()
}

func unitName(u arrow.TimeUnit) string {
	switch u {
	case arrow.Second:
		return "Second"
	case arrow.Millisecond:
		return "Millisecond"
	case arrow.Microsecond:
		return "Microsecond"
	default:
		return "Nanosecond"
	}
}
