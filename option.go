package skein

import (
	"bufio"
	"io"
)

// WithInferTimeUnits enables scanning input string values for time, date and
// timestamp types (spec.md §4.4 "guess_dates").
//
// Times are H:M:S (one or two digits each) with up to six fractional
// digits and trace to Time64(ns). Dates are YYYY-MM-DD and trace to Date32.
// Timestamps are a date, "T" or a space, and HH:MM:SS with an optional
// fraction: with a trailing Z or ±HH:MM offset they trace to Date64 tagged
// UtcStrAsDate64, without one (up to six fractional digits) to Date64
// tagged NaiveStrAsDate64. HH:MM times and date-times that stop at the hour
// or minute are not recognised and stay strings.
func WithInferTimeUnits() Option {
	return func(cfg config) {
		cfg.inferTimeUnits = true
	}
}

// WithTypeConversion enables upgrading conflicting column types to a common
// wider type instead of failing the trace (spec.md §4.4 "coerce_numbers",
// generalized to dates/times/strings per bodkin's merge lattice).
func WithTypeConversion() Option {
	return func(cfg config) {
		cfg.typeConversion = true
	}
}

// WithCheckForUnion enables checking list elements for heterogeneous Go
// types. It takes effect only together with WithUseVariantForUnions; without
// both, a list's element type is taken from its first element.
func WithCheckForUnion() Option {
	return func(cfg config) {
		cfg.checkForUnion = true
	}
}

// WithUseVariantForUnions, together with WithCheckForUnion, makes a list
// whose elements do not share one Go shape use DenseUnion as its element
// type instead of the type of its first element.
func WithUseVariantForUnions() Option {
	return func(cfg config) {
		cfg.useVariantForUnions = true
	}
}

// WithQuotedValuesAreStrings disables the tracer's default behavior of
// collapsing a quoted "true"/"123"/"1.5" into Bool/I64/F64; every quoted
// scalar stays a string.
func WithQuotedValuesAreStrings() Option {
	return func(cfg config) {
		cfg.quotedValuesAreStrings = true
	}
}

// WithLargeStrings traces plain (non-date) strings to LargeUtf8 instead of
// Utf8 (spec.md §4.4 "strings_as_large_utf8").
func WithLargeStrings() Option {
	return func(cfg config) {
		cfg.largeStrings = true
	}
}

// WithLargeLists traces sequences to LargeList instead of List (spec.md
// §4.4 "sequence_as_large_list").
func WithLargeLists() Option {
	return func(cfg config) {
		cfg.largeLists = true
	}
}

// WithMaxCount caps the number of samples a tracer will evaluate across
// TraceFromSamples/TraceFromScanner calls.
func WithMaxCount(i int) Option {
	return func(cfg config) {
		cfg.maxCount = i
	}
}

// WithIOReader provides an io.Reader for TraceFromScanner to read
// newline-delimited (or delim-delimited) samples from.
func WithIOReader(r io.Reader, delim byte) Option {
	return func(cfg config) {
		cfg.rr = r
		cfg.br = bufio.NewReaderSize(cfg.rr, 1024*16)
		if delim == 0 {
			cfg.delim = '\n'
		} else {
			cfg.delim = delim
		}
	}
}

// WithPreprocessMapping registers a Bloblang mapping (spec.md's own config
// surface has no such hook; this is a supplemented feature, see
// SPEC_FULL.md §2) that TraceFromSamples and TraceAtPath run every input
// sample through before decoding and tracing it, letting callers reshape
// ragged or renamed input fields without a bespoke preprocessing pass.
// ToArrays and builder.Writer do not apply it.
func WithPreprocessMapping(mapping string) Option {
	return func(cfg config) {
		cfg.preprocess = mapping
	}
}
