// Package skein traces a schema from sample values and bridges Go values to
// and from Apache Arrow arrays through an explicit row-oriented event
// vocabulary, making it practical to use Arrow (and, by extension, Parquet)
// with data whose shape is evolving or not strictly defined up front.
package skein

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/redpanda-data/benthos/v4/public/bloblang"
	omap "github.com/wk8/go-ordered-map/v2"

	"github.com/arrowskein/skein/builder"
	"github.com/arrowskein/skein/reader"
)

// Option configures a Tracer.
type (
	Option func(config)
	config *Tracer
)

// Field describes one dotpath discovered (or still pending) in a Tracer's
// hypothesis tree.
type Field struct {
	Dotpath string     `json:"dotpath"`
	Type    arrow.Type `json:"arrow_type"`
	// Childen is the number of child fields, for a nested type.
	Childen int `json:"children,omitempty"`
	// Issue is the evaluation failure reason, if any.
	Issue error `json:"issue,omitempty"`
}

const (
	unknown int = 0
	known   int = 1
)

// Tracer accumulates the shape of structured samples into an Arrow schema,
// widening its hypothesis as new samples arrive (spec.md §4.1).
type Tracer struct {
	rr                     io.Reader
	br                     *bufio.Reader
	delim                  byte
	original               *fieldPos
	old                    *fieldPos
	new                    *fieldPos
	opts                   []Option
	knownFields            *omap.OrderedMap[string, *fieldPos]
	untypedFields          *omap.OrderedMap[string, *fieldPos]
	unificationCount       int
	maxCount               int
	inferTimeUnits         bool
	quotedValuesAreStrings bool
	typeConversion         bool
	largeStrings           bool
	largeLists             bool
	checkForUnion          bool
	useVariantForUnions    bool
	preprocess             string
	mapping                *bloblang.Executor
	err                    error
	changes                error
}

func (t *Tracer) Opts() []Option { return t.opts }

// NewTracer returns a new Tracer; pass structured data to TraceFromSamples
// or TraceFromScanner to infer an Arrow schema from it. Input must be a
// JSON byte slice or string, a Go struct with exported fields, or
// map[string]any. Unpopulated fields, empty objects, and empty slices are
// skipped, since their types cannot be evaluated.
func NewTracer(opts ...Option) (*Tracer, error) {
	t := &Tracer{maxCount: math.MaxInt}
	t.opts = opts
	for _, opt := range opts {
		opt(t)
	}
	if t.preprocess != "" {
		exec, err := bloblang.Parse(t.preprocess)
		if err != nil {
			return nil, fmt.Errorf("preprocess mapping: %w", err)
		}
		t.mapping = exec
	}
	t.knownFields = omap.New[string, *fieldPos]()
	t.untypedFields = omap.New[string, *fieldPos]()
	return t, nil
}

// CountPaths returns the number of dotpaths the tracer has resolved to a
// concrete DataType.
func (t *Tracer) CountPaths() int { return t.knownFields.Len() }

// CountPending returns the number of dotpaths still unresolved.
func (t *Tracer) CountPending() int { return t.untypedFields.Len() }

// Err returns every dotpath that could not yet be evaluated, most deeply
// nested first.
func (t *Tracer) Err() []Field {
	fp := t.sortMapKeysDesc(unknown)
	paths := make([]Field, len(fp))
	for i, p := range fp {
		f, _ := t.untypedFields.Get(p)
		d := Field{Dotpath: f.dotPath(), Type: f.arrowType}
		switch f.arrowType {
		case arrow.STRUCT:
			d.Issue = fmt.Errorf("struct : %w", ErrUndefinedFieldType)
		case arrow.LIST:
			d.Issue = fmt.Errorf("list : %w", ErrUndefinedArrayElementType)
		default:
			d.Issue = fmt.Errorf("%w", ErrUndefinedFieldType)
		}
		paths[i] = d
	}
	return paths
}

// Changes returns every field addition and type conversion made across the
// Tracer's lifetime.
func (t *Tracer) Changes() error { return t.changes }

// Count returns the number of samples evaluated so far.
func (t *Tracer) Count() int { return t.unificationCount }

// MaxCount returns the sample cap set by WithMaxCount.
func (t *Tracer) MaxCount() int { return t.maxCount }

// ResetCount zeroes the sample counter.
func (t *Tracer) ResetCount() int {
	t.unificationCount = 0
	return t.unificationCount
}

// ResetMaxCount removes the sample cap.
func (t *Tracer) ResetMaxCount() int {
	t.maxCount = math.MaxInt
	return t.unificationCount
}

// Paths returns every dotpath resolved to a concrete DataType so far, most
// deeply nested first.
func (t *Tracer) Paths() []Field {
	fp := t.sortMapKeysDesc(known)
	paths := make([]Field, len(fp))
	for i, p := range fp {
		f, ok := t.knownFields.Get(p)
		if !ok {
			continue
		}
		d := Field{Dotpath: f.dotPath(), Type: f.arrowType}
		if f.arrowType == arrow.STRUCT {
			d.Childen = len(f.children)
		}
		paths[i] = d
	}
	return paths
}

// ExportSchemaFile serializes the traced Arrow schema to exportPath using
// Arrow Flight's schema wire format.
func (t *Tracer) ExportSchemaFile(exportPath string) error {
	schema, err := t.Schema()
	if err != nil {
		return err
	}
	bs := flight.SerializeSchema(schema, memory.DefaultAllocator)
	return os.WriteFile(exportPath, bs, 0644)
}

// ImportSchemaFile deserializes an Arrow schema previously written by
// ExportSchemaFile.
func (t *Tracer) ImportSchemaFile(importPath string) (*arrow.Schema, error) {
	dat, err := os.ReadFile(importPath)
	if err != nil {
		return nil, err
	}
	return flight.DeserializeSchema(dat, memory.DefaultAllocator)
}

// ExportSchemaBytes serializes the traced Arrow schema using Arrow Flight's
// schema wire format.
func (t *Tracer) ExportSchemaBytes() ([]byte, error) {
	schema, err := t.Schema()
	if err != nil {
		return nil, err
	}
	return flight.SerializeSchema(schema, memory.DefaultAllocator), nil
}

// ImportSchemaBytes deserializes an Arrow schema previously produced by
// ExportSchemaBytes.
func (t *Tracer) ImportSchemaBytes(dat []byte) (*arrow.Schema, error) {
	return flight.DeserializeSchema(dat, memory.DefaultAllocator)
}

// preprocessed runs a through the tracer's Bloblang mapping, if one was
// registered via WithPreprocessMapping, before it is converted to
// map[string]any.
func (t *Tracer) preprocessed(a any) (any, error) {
	if t.mapping == nil {
		return a, nil
	}
	out, err := t.mapping.Query(a)
	if err != nil {
		return nil, fmt.Errorf("preprocess mapping: %w", err)
	}
	return out, nil
}

// TraceFromSamples merges one sample's shape into the tracer's running
// schema hypothesis. Unpopulated fields, empty objects, and empty slices
// are skipped.
func (t *Tracer) TraceFromSamples(a any) error {
	if t.unificationCount > t.maxCount {
		return fmt.Errorf("maxcount exceeded")
	}
	a, err := t.preprocessed(a)
	if err != nil {
		return err
	}
	m, err := reader.InputMap(a)
	if err != nil {
		t.err = fmt.Errorf("%w : %v", ErrInvalidInput, err)
		return t.err
	}
	if t.old == nil {
		g := newFieldPos(t)
		mapToArrow(g, m)
		t.original = g
		f := newFieldPos(t)
		mapToArrow(f, m)
		t.old = f
		t.unificationCount++
		return nil
	}
	f := newFieldPos(t)
	mapToArrow(f, m)
	t.new = f
	for _, field := range t.new.children {
		t.merge(field, nil)
	}
	t.unificationCount++
	return nil
}

// TraceFromScanner reads delimiter-split samples from the io.Reader given
// to WithIOReader and merges each into the running schema.
func (t *Tracer) TraceFromScanner() error {
	if t.rr == nil {
		return fmt.Errorf("no io.Reader provided, use WithIOReader")
	}
	if t.unificationCount > t.maxCount {
		return fmt.Errorf("maxcount exceeded")
	}
	for {
		datumBytes, err := t.br.ReadBytes(t.delim)
		if err != nil {
			if errors.Is(err, io.EOF) {
				t.err = nil
				if len(datumBytes) > 0 {
					if terr := t.TraceFromSamples(datumBytes); terr != nil {
						t.err = errors.Join(t.err, terr)
					}
				}
				break
			}
			t.err = err
			break
		}
		if terr := t.TraceFromSamples(datumBytes); terr != nil {
			t.err = errors.Join(t.err, terr)
		}
	}
	return t.err
}

// TraceAtPath merges a's shape into the running schema rooted at the
// dotpath mergeAt, which must already have been traced.
func (t *Tracer) TraceAtPath(a any, mergeAt string) error {
	if t.old == nil {
		return fmt.Errorf("tracer not initialised, call TraceFromSamples first")
	}
	if t.unificationCount > t.maxCount {
		return fmt.Errorf("maxcount exceeded")
	}
	mergePath := make([]string, 0)
	if !(len(mergeAt) == 0 || mergeAt == "$") {
		mergePath = strings.Split(strings.TrimPrefix(mergeAt, "$"), ".")
	}
	if _, ok := t.knownFields.Get(mergeAt); !ok {
		return fmt.Errorf("traceatpath %s : %w", mergeAt, ErrPathNotFound)
	}

	a, err := t.preprocessed(a)
	if err != nil {
		return err
	}
	m, err := reader.InputMap(a)
	if err != nil {
		t.err = fmt.Errorf("%w : %v", ErrInvalidInput, err)
		return t.err
	}

	f := newFieldPos(t)
	mapToArrow(f, m)
	t.new = f
	for _, field := range t.new.children {
		t.merge(field, mergePath)
	}
	t.unificationCount++
	return nil
}

// OriginSchema returns the Arrow schema generated from the very first
// sample traced.
func (t *Tracer) OriginSchema() (*arrow.Schema, error) {
	if t.old == nil {
		return nil, fmt.Errorf("tracer not initialised")
	}
	var fields []arrow.Field
	for _, c := range t.original.children {
		fields = append(fields, c.field)
	}
	return arrow.NewSchema(fields, nil), nil
}

// Schema returns the current merged Arrow schema.
func (t *Tracer) Schema() (*arrow.Schema, error) {
	if t.old == nil {
		return nil, fmt.Errorf("tracer not initialised")
	}
	var fields []arrow.Field
	for _, c := range t.old.children {
		fields = append(fields, c.field)
	}
	return arrow.NewSchema(fields, nil), nil
}

// LastSchema returns the Arrow schema generated from the most recent
// sample traced, or ErrNoLatestSchema if only one sample has been seen.
func (t *Tracer) LastSchema() (*arrow.Schema, error) {
	if t.new == nil {
		return nil, ErrNoLatestSchema
	}
	var fields []arrow.Field
	for _, c := range t.new.children {
		fields = append(fields, c.field)
	}
	return arrow.NewSchema(fields, nil), nil
}

// NewWriter builds a builder.Writer for the tracer's current schema,
// bridging a traced schema directly to the row-at-a-time append engine
// (spec.md §4.2) instead of bodkin's channel-based DataReader.
func (t *Tracer) NewWriter(mem memory.Allocator) (*builder.Writer, error) {
	schema, err := t.Schema()
	if err != nil {
		return nil, err
	}
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	rb, err := builder.NewRecordBuilder(mem, schema)
	if err != nil {
		return nil, err
	}
	return builder.NewWriter(rb), nil
}

// merge grafts a newly traced field into the tracer's running schema, or
// (with WithTypeConversion) widens a conflicting type instead of erroring:
// int -> float64 -> string, float16 -> float32 -> float64, date32 ->
// timestamp -> string, timestamp/time64 -> string.
func (t *Tracer) merge(n *fieldPos, mergeAt []string) {
	var nPath, nParentPath []string
	if len(mergeAt) > 0 {
		nPath = slices.Concat(mergeAt, n.path)
		nParentPath = slices.Concat(mergeAt, n.parent.path)
	} else {
		nPath = n.path
		nParentPath = n.parent.path
	}
	kin, err := t.old.getPath(nPath)
	if err == ErrPathNotFound {
		if len(nParentPath) == 0 {
			t.old.root.graft(n)
		} else {
			b, _ := t.old.getPath(nParentPath)
			b.graft(n)
		}
		return
	}
	if t.typeConversion && !kin.field.Equal(n.field) && kin.field.Type.ID() != n.field.Type.ID() {
		t.upgrade(kin, n)
	}
	for _, v := range n.childmap {
		t.merge(v, mergeAt)
	}
}

func (t *Tracer) upgrade(kin, n *fieldPos) {
	switch kin.field.Type.ID() {
	case arrow.NULL, arrow.STRING:
		return
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64, arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		switch n.field.Type.ID() {
		case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
			t.recordUpgrade(kin.upgradeType(n, arrow.FLOAT64))
		default:
			t.recordUpgrade(kin.upgradeType(n, arrow.STRING))
		}
	case arrow.FLOAT16:
		switch n.field.Type.ID() {
		case arrow.FLOAT32:
			t.recordUpgrade(kin.upgradeType(n, arrow.FLOAT32))
		case arrow.FLOAT64:
			t.recordUpgrade(kin.upgradeType(n, arrow.FLOAT64))
		default:
			t.recordUpgrade(kin.upgradeType(n, arrow.STRING))
		}
	case arrow.FLOAT32:
		switch n.field.Type.ID() {
		case arrow.FLOAT64:
			t.recordUpgrade(kin.upgradeType(n, arrow.FLOAT64))
		default:
			t.recordUpgrade(kin.upgradeType(n, arrow.STRING))
		}
	case arrow.FLOAT64:
		switch n.field.Type.ID() {
		case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64, arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64, arrow.FLOAT16, arrow.FLOAT32:
			return
		default:
			t.recordUpgrade(kin.upgradeType(n, arrow.STRING))
		}
	case arrow.TIMESTAMP:
		if n.field.Type.ID() == arrow.TIME64 {
			t.recordUpgrade(kin.upgradeType(n, arrow.STRING))
		}
	case arrow.DATE32:
		if n.field.Type.ID() == arrow.TIMESTAMP {
			t.recordUpgrade(kin.upgradeType(n, arrow.TIMESTAMP))
		} else {
			t.recordUpgrade(kin.upgradeType(n, arrow.STRING))
		}
	case arrow.TIME64:
		if n.field.Type.ID() == arrow.DATE32 || n.field.Type.ID() == arrow.TIMESTAMP {
			t.recordUpgrade(kin.upgradeType(n, arrow.STRING))
		}
	}
}

func (t *Tracer) recordUpgrade(err error) {
	if err != nil {
		t.err = errors.Join(t.err, err)
	}
}

func (t *Tracer) sortMapKeysDesc(k int) []string {
	var m *omap.OrderedMap[string, *fieldPos]
	switch k {
	case known:
		m = t.knownFields
	case unknown:
		m = t.untypedFields
	default:
		return nil
	}
	if m.Len() == 0 {
		return nil
	}
	paths := make([]string, m.Len())
	i := 0
	for pair := m.Newest(); pair != nil; pair = pair.Prev() {
		paths[i] = pair.Key
		i++
	}
	maxDepth := 0
	for _, p := range paths {
		if d := strings.Count(p, "."); d > maxDepth {
			maxDepth = d
		}
	}
	sortedPaths := make([]string, len(paths))
	idx := 0
	for depth := maxDepth; depth >= 0; depth-- {
		for _, p := range paths {
			if strings.Count(p, ".") == depth {
				sortedPaths[idx] = p
				idx++
			}
		}
	}
	return sortedPaths
}
