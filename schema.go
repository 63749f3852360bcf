package skein

import (
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/arrowskein/skein/builder"
)

// fieldPos is one node of the tracer's hypothesis tree: a candidate field
// path together with whatever DataType has been inferred for it so far.
// Its state maps onto the Unknown/Known/Finished lattice of a schema
// tracer: a node with a zero arrowType and no children is Unknown, one
// with a field but still subject to widening is Known, and one never
// revisited again is Finished in all but name.
type fieldPos struct {
	root         *fieldPos
	parent       *fieldPos
	owner        *Tracer
	builder      array.Builder
	name         string
	path         []string
	isList       bool
	isItem       bool
	isStruct     bool
	isMap        bool
	arrowType    arrow.Type
	typeName     string
	strategy     builder.Strategy
	field        arrow.Field
	children     []*fieldPos
	childmap     map[string]*fieldPos
	appendFunc   func(val interface{}) error
	metadatas    arrow.Metadata
	index, depth int32
	err          error
}

// Tracer hypothesis errors.
var (
	ErrUndefinedInput            = errors.New("nil input")
	ErrInvalidInput              = errors.New("invalid input")
	ErrNoLatestSchema            = errors.New("no second input has been provided")
	ErrUndefinedFieldType        = errors.New("could not determine type of unpopulated field")
	ErrUndefinedArrayElementType = errors.New("could not determine element type of empty array")
	ErrNotAnUpgradableType       = errors.New("is not an upgradable type")
	ErrPathNotFound              = errors.New("path not found")
	ErrFieldTypeChanged          = errors.New("changed")
	ErrFieldAdded                = errors.New("added")
)

// UpgradableTypes are scalar types the merge lattice is willing to widen
// under WithTypeConversion.
var UpgradableTypes = []arrow.Type{
	arrow.INT8, arrow.UINT8, arrow.INT16, arrow.UINT16,
	arrow.INT32, arrow.UINT32, arrow.UINT64, arrow.INT64,
	arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64,
	arrow.DATE32, arrow.TIME64, arrow.TIMESTAMP,
}

// Regular expressions used to guess a date/time/timestamp/bool/number
// hiding inside a quoted string, when the relevant config flag asks for it.
var (
	timestampMatchers []*regexp.Regexp
	dateMatcher       *regexp.Regexp
	timeMatcher       *regexp.Regexp
	integerMatcher    *regexp.Regexp
	floatMatcher      *regexp.Regexp
	boolMatcher       []string
)

func init() {
	registerTsMatchers()
	registerQuotedStringValueMatchers()
}

func registerTsMatchers() {
	dateMatcher = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeMatcher = regexp.MustCompile(`^\d{1,2}:\d{1,2}:\d{1,2}(\.\d{1,6})?$`)
	timestampMatchers = append(timestampMatchers,
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`), // ISO 8601 / RFC3339 with offset
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`), // space instead of T, with offset
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`),                            // naive, space separated
		regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}[T ]\d{1,2}:\d{1,2}:\d{1,2}(\.\d{1,6})?$`))   // naive, flexible padding
}

func registerQuotedStringValueMatchers() {
	integerMatcher = regexp.MustCompile(`^[-+]?\d+$`)
	floatMatcher = regexp.MustCompile(`^[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?$`)
	boolMatcher = append(boolMatcher, "true", "false")
}

// hasOffsetSuffix reports whether a matched timestamp string carries an
// explicit zone (index 0 and 1 of timestampMatchers both require one);
// a bare string without a zone gets the naive strategy, one with "Z" or
// "+hh:mm" gets the UTC strategy.
func hasOffsetSuffix(s string) bool {
	n := len(s)
	if n == 0 {
		return false
	}
	if s[n-1] == 'Z' {
		return true
	}
	if n >= 6 && (s[n-6] == '+' || s[n-6] == '-') {
		return true
	}
	return false
}

func newFieldPos(t *Tracer) *fieldPos {
	f := new(fieldPos)
	f.owner = t
	f.index = -1
	f.root = f
	f.childmap = make(map[string]*fieldPos)
	f.children = make([]*fieldPos, 0)
	return f
}

func (f *fieldPos) assignChild(child *fieldPos) {
	f.children = append(f.children, child)
	f.childmap[child.name] = child
	f.owner.knownFields.Set(child.dotPath(), child)
	f.owner.untypedFields.Delete(child.dotPath())
}

func (f *fieldPos) child(index int) (*fieldPos, error) {
	if index < len(f.children) {
		return f.children[index], nil
	}
	return nil, fmt.Errorf("%v child index %d not found", f.namePath(), index)
}

func (f *fieldPos) error() error             { return f.err }
func (f *fieldPos) metadata() arrow.Metadata { return f.field.Metadata }

func (f *fieldPos) newChild(childName string) *fieldPos {
	child := fieldPos{
		root:   f.root,
		parent: f,
		owner:  f.owner,
		name:   childName,
		index:  int32(len(f.children)),
		depth:  f.depth + 1,
	}
	if f.isList {
		child.isItem = true
	}
	child.path = child.namePath()
	child.childmap = make(map[string]*fieldPos)
	child.arrowType = arrow.NULL
	return &child
}

func (f *fieldPos) mapChildren() {
	for i, c := range f.children {
		f.childmap[c.name] = f.children[i]
	}
}

// getPath returns the field at path, or ErrPathNotFound.
func (f *fieldPos) getPath(path []string) (*fieldPos, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("getPath needs at least one key")
	}
	node, ok := f.childmap[path[0]]
	if !ok {
		return nil, ErrPathNotFound
	}
	if len(path) == 1 {
		return node, nil
	}
	return node.getPath(path[1:])
}

// namePath returns the chain of keys from the root down to this field.
func (f *fieldPos) namePath() []string {
	if len(f.path) == 0 {
		var path []string
		cur := f
		for i := f.depth - 1; i >= 0; i-- {
			path = append([]string{cur.name}, path...)
			cur = cur.parent
		}
		return path
	}
	return f.path
}

// dotPath renders namePath in json-dotpath notation, rooted at "$".
func (f *fieldPos) dotPath() string {
	path := "$"
	for i, p := range f.path {
		path += p
		if i+1 != len(f.path) {
			path += "."
		}
	}
	return path
}

// getValue walks namePath through a decoded map[string]any to retrieve the
// concrete value this field was traced from.
func (f *fieldPos) getValue(m map[string]any) any {
	var value any = m
	for _, key := range f.namePath() {
		valueMap, ok := value.(map[string]any)
		if !ok {
			return nil
		}
		value, ok = valueMap[key]
		if !ok {
			return nil
		}
	}
	return value
}

// graft attaches a newly observed field n as a child of f, updating f's own
// (and, for a list element, f's parent's) composite DataType to include it.
func (f *fieldPos) graft(n *fieldPos) {
	graft := f.newChild(n.name)
	graft.arrowType = n.arrowType
	graft.strategy = n.strategy
	graft.field = n.field
	graft.children = append(graft.children, n.children...)
	graft.mapChildren()
	f.assignChild(graft)
	f.owner.knownFields.Set(graft.dotPath(), graft)
	f.owner.untypedFields.Delete(graft.dotPath())
	f.owner.changes = errors.Join(f.owner.changes, fmt.Errorf("%w %v : %v", ErrFieldAdded, graft.dotPath(), graft.field.Type.String()))
	if f.field.Type.ID() == arrow.STRUCT {
		gf := f.field.Type.(*arrow.StructType)
		nf := append(append([]arrow.Field{}, gf.Fields()...), graft.field)
		f.field = arrow.Field{Name: f.name, Type: arrow.StructOf(nf...), Nullable: true}
		if f.parent != nil && f.parent.field.Type.ID() == arrow.LIST {
			f.parent.field = arrow.Field{Name: f.parent.name, Type: arrow.ListOf(f.field.Type), Nullable: true}
		}
	}
}

// upgradeType widens o's field to a less specific DataType t, propagating
// the new type up into o's parent's composite type. Only types listed in
// UpgradableTypes are eligible.
//
//	INT* / UINT*  => FLOAT64
//	FLOAT16       => FLOAT32
//	FLOAT32       => FLOAT64
//	FLOAT64       => STRING
//	TIMESTAMP     => STRING
//	DATE32        => TIMESTAMP or STRING
//	TIME64        => STRING
func (o *fieldPos) upgradeType(n *fieldPos, t arrow.Type) error {
	if !slices.Contains(UpgradableTypes, o.field.Type.ID()) {
		return fmt.Errorf("%s %v %v", n.dotPath(), n.field.Type.Name(), ErrNotAnUpgradableType.Error())
	}
	oldType := o.field.Type.String()
	switch t {
	case arrow.FLOAT32:
		o.arrowType = arrow.FLOAT32
		o.field = arrow.Field{Name: o.name, Type: arrow.PrimitiveTypes.Float32, Nullable: true}
	case arrow.FLOAT64:
		o.arrowType = arrow.FLOAT64
		o.field = arrow.Field{Name: o.name, Type: arrow.PrimitiveTypes.Float64, Nullable: true}
	case arrow.STRING:
		o.arrowType = arrow.STRING
		o.strategy = builder.StrategyNone
		o.field = arrow.Field{Name: o.name, Type: arrow.BinaryTypes.String, Nullable: true}
	case arrow.TIMESTAMP:
		o.arrowType = arrow.TIMESTAMP
		o.field = arrow.Field{Name: o.name, Type: arrow.FixedWidthTypes.Timestamp_ms, Nullable: true}
	}
	switch o.parent.field.Type.ID() {
	case arrow.LIST:
		o.parent.field = arrow.Field{Name: o.parent.name, Type: arrow.ListOf(o.field.Type), Nullable: true}
	case arrow.STRUCT:
		var fields []arrow.Field
		for _, c := range o.parent.children {
			fields = append(fields, c.field)
		}
		o.parent.field = arrow.Field{Name: o.parent.name, Type: arrow.StructOf(fields...), Nullable: true}
	}
	o.owner.changes = errors.Join(o.owner.changes, fmt.Errorf("%w %v : from %v to %v", ErrFieldTypeChanged, o.dotPath(), oldType, o.field.Type.String()))
	return nil
}

func errWrap(f *fieldPos) error {
	var err error
	if f.err != nil {
		err = errors.Join(f.err)
	}
	for _, field := range f.children {
		err = errors.Join(err, errWrap(field))
	}
	return err
}

// mapToArrow walks a decoded map[string]any and grows a fieldPos tree whose
// shape mirrors it, one node per key, each carrying the arrow.Field its
// value traced to.
func mapToArrow(f *fieldPos, m map[string]any) {
	for k, v := range m {
		child := f.newChild(k)
		switch t := v.(type) {
		case map[string]any:
			mapToArrow(child, t)
			var fields []arrow.Field
			for _, c := range child.children {
				fields = append(fields, c.field)
			}
			if len(child.children) != 0 {
				child.field = buildArrowField(k, arrow.StructOf(fields...), arrow.Metadata{}, true)
				f.assignChild(child)
			} else {
				child.arrowType = arrow.STRUCT
				child.isStruct = true
				f.owner.untypedFields.Set(child.dotPath(), child)
			}
		case []any:
			if len(t) == 0 {
				child.arrowType = arrow.LIST
				child.isList = true
				f.owner.untypedFields.Set(child.dotPath(), child)
				f.err = errors.Join(f.err, fmt.Errorf("%v : %v", ErrUndefinedArrayElementType, child.namePath()))
				continue
			}
			et := sliceElemType(child, t)
			child.isList = true
			field := buildArrowField(k, listTypeFor(f.owner, et), arrow.Metadata{}, true)
			child.field = field
			f.assignChild(child)
		case nil:
			child.arrowType = arrow.NULL
			f.owner.untypedFields.Set(child.dotPath(), child)
			f.err = errors.Join(f.err, fmt.Errorf("%v : %v", ErrUndefinedFieldType, child.namePath()))
		default:
			dt := goType2Arrow(child, v)
			meta := arrow.Metadata{}
			if child.strategy != builder.StrategyNone {
				meta = arrow.NewMetadata([]string{builder.MetadataKeyStrategy}, []string{string(child.strategy)})
			}
			child.field = buildArrowField(k, dt, meta, true)
			f.assignChild(child)
		}
	}
	var fields []arrow.Field
	for _, c := range f.children {
		fields = append(fields, c.field)
	}
	f.arrowType = arrow.STRUCT
	f.field = arrow.Field{Name: f.name, Type: arrow.StructOf(fields...), Nullable: true}
}

// listTypeFor honors WithLargeLists by choosing LargeList over List for a
// newly traced sequence.
func listTypeFor(t *Tracer, et arrow.DataType) arrow.DataType {
	if t.largeLists {
		return arrow.LargeListOf(et)
	}
	return arrow.ListOf(et)
}

// sliceElemType inspects a non-empty []any's elements to decide the list's
// element DataType, recursing for nested composite elements. With
// WithCheckForUnion and WithUseVariantForUnions both set, a slice whose
// elements don't share one Go shape traces to DenseUnion(variants) instead
// of taking the first element's type (spec.md §6 data-type model "union variants with
// type-id tags").
func sliceElemType(f *fieldPos, v []any) arrow.DataType {
	if f.owner.checkForUnion && f.owner.useVariantForUnions {
		if dt := unionElemType(f, v); dt != nil {
			return dt
		}
	}
	switch ft := v[0].(type) {
	case map[string]any:
		child := f.newChild(f.name + ".elem")
		mapToArrow(child, ft)
		var fields []arrow.Field
		for _, c := range child.children {
			fields = append(fields, c.field)
		}
		f.assignChild(child)
		return arrow.StructOf(fields...)
	case []any:
		if len(ft) == 0 {
			f.err = errors.Join(f.err, fmt.Errorf("%v : %v", ErrUndefinedArrayElementType, f.namePath()))
			return arrow.BinaryTypes.Binary
		}
		child := f.newChild(f.name + ".elem")
		et := sliceElemType(child, ft)
		f.assignChild(child)
		return listTypeFor(f.owner, et)
	default:
		return goType2Arrow(f, v)
	}
}

// unionElemType groups v's elements by Go shape (nils excluded from
// grouping, since they only affect nullability); with fewer than two
// distinct shapes it returns nil so sliceElemType falls back to its normal
// single-type inference. Variant order follows first-seen order, matching
// the tracer's own insertion-ordered tie-breaking (spec.md §4.1).
func unionElemType(f *fieldPos, v []any) arrow.DataType {
	type variant struct {
		name string
		dt   arrow.DataType
	}
	seen := map[string]bool{}
	var variants []variant
	for _, elem := range v {
		if elem == nil {
			continue
		}
		name := variantShapeName(elem)
		if seen[name] {
			continue
		}
		seen[name] = true
		child := f.newChild(f.name + ".variant." + name)
		variants = append(variants, variant{name: name, dt: elemShapeType(child, elem)})
	}
	if len(variants) < 2 {
		return nil
	}
	fields := make([]arrow.Field, len(variants))
	codes := make([]arrow.UnionTypeCode, len(variants))
	for i, vt := range variants {
		fields[i] = arrow.Field{Name: vt.name, Type: vt.dt, Nullable: true}
		codes[i] = arrow.UnionTypeCode(i)
	}
	return arrow.DenseUnionOf(fields, codes)
}

// elemShapeType resolves one union variant's DataType, recursing through
// the same composite dispatch as sliceElemType/mapToArrow.
func elemShapeType(child *fieldPos, v any) arrow.DataType {
	switch t := v.(type) {
	case map[string]any:
		mapToArrow(child, t)
		return child.field.Type
	case []any:
		if len(t) == 0 {
			return arrow.BinaryTypes.Binary
		}
		et := sliceElemType(child, t)
		return listTypeFor(child.owner, et)
	default:
		return goType2Arrow(child, v)
	}
}

// variantShapeName labels a union branch by its Go shape, used as the
// DenseUnion field name when tracing a heterogeneous list.
func variantShapeName(v any) string {
	switch v.(type) {
	case bool:
		return "bool"
	case string:
		return "string"
	case map[string]any:
		return "struct"
	case []any:
		return "list"
	case []byte:
		return "binary"
	default:
		return "number"
	}
}

func buildArrowField(n string, t arrow.DataType, m arrow.Metadata, nullable bool) arrow.Field {
	return arrow.Field{Name: n, Type: t, Metadata: m, Nullable: nullable}
}
