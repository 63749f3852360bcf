package builder

import (
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/arrowskein/skein/event"
	"github.com/arrowskein/skein/skerr"
)

// date32Builder: Date32 only accepts integer day counts directly (spec.md
// §4.2 "Date32 / Date64" — no strategy applies to Date32, strings only
// disambiguate Date64).
type date32Builder struct {
	baseField
	bld *array.Date32Builder
}

func newDate32Builder(field arrow.Field, bld *array.Date32Builder) *date32Builder {
	return &date32Builder{baseField: baseField{field}, bld: bld}
}

func (d *date32Builder) Len() int { return d.bld.Len() }

func (d *date32Builder) Accept(ev event.Event) error {
	switch ev.Kind {
	case event.Some:
		return nil
	case event.Null:
		return d.PushNull()
	case event.Default:
		return d.PushDefault()
	case event.I32, event.I64:
		d.bld.Append(arrow.Date32(ev.I64))
		return nil
	default:
		return mismatch(d.field, ev, "Date32")
	}
}

func (d *date32Builder) PushNull() error {
	if !d.nullable() {
		return notNullable(d.field)
	}
	d.bld.AppendNull()
	return nil
}
func (d *date32Builder) PushDefault() error { d.bld.AppendEmptyValue(); return nil }
func (d *date32Builder) Finish() (arrow.Array, error) { return d.bld.NewArray(), nil }

// date64Builder accepts integer millisecond counts and Str events. A Str is
// parsed per the field's NaiveStrAsDate64 or UtcStrAsDate64 strategy; with
// no strategy it is parsed as a naive "2006-01-02" or "2006-01-02T15:04:05"
// string.
type date64Builder struct {
	baseField
	bld      *array.Date64Builder
	strategy Strategy
}

func newDate64Builder(field arrow.Field, bld *array.Date64Builder, strategy Strategy) *date64Builder {
	return &date64Builder{baseField: baseField{field}, bld: bld, strategy: strategy}
}

func (d *date64Builder) Len() int { return d.bld.Len() }

func (d *date64Builder) Accept(ev event.Event) error {
	switch ev.Kind {
	case event.Some:
		return nil
	case event.Null:
		return d.PushNull()
	case event.Default:
		return d.PushDefault()
	case event.I32, event.I64:
		d.bld.Append(arrow.Date64(ev.I64))
		return nil
	case event.Str, event.OwnedStr:
		t, err := parseDateStrategy(d.strategy, ev.Str)
		if err != nil {
			return skerr.New(skerr.Parse, "%s", err).WithField(d.field.Name).WithDataType(d.field.Type.String())
		}
		d.bld.Append(arrow.Date64(t.UnixMilli()))
		return nil
	default:
		return mismatch(d.field, ev, "Date64")
	}
}

func parseDateStrategy(strategy Strategy, s string) (time.Time, error) {
	switch strategy {
	case StrategyUtcStrAsDate64:
		return time.Parse(time.RFC3339, s)
	default: // StrategyNaiveStrAsDate64 or none set explicitly
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t, nil
		}
		return time.Parse("2006-01-02T15:04:05", s)
	}
}

func (d *date64Builder) PushNull() error {
	if !d.nullable() {
		return notNullable(d.field)
	}
	d.bld.AppendNull()
	return nil
}
func (d *date64Builder) PushDefault() error { d.bld.AppendEmptyValue(); return nil }
func (d *date64Builder) Finish() (arrow.Array, error) { return d.bld.NewArray(), nil }

// time32Builder / time64Builder: ticks-since-midnight at a declared unit.
// Accept either the matching integer event or a "HH:MM:SS[.fff...]" string.
// The string is handed unchanged to arrow.Time32FromString /
// Time64FromString at the declared unit; fractional digits finer than the
// unit are not truncated here.
type time32Builder struct {
	baseField
	bld  *array.Time32Builder
	unit arrow.TimeUnit
}

func newTime32Builder(field arrow.Field, bld *array.Time32Builder, unit arrow.TimeUnit) *time32Builder {
	return &time32Builder{baseField: baseField{field}, bld: bld, unit: unit}
}

func (t *time32Builder) Len() int { return t.bld.Len() }

func (t *time32Builder) Accept(ev event.Event) error {
	switch ev.Kind {
	case event.Some:
		return nil
	case event.Null:
		return t.PushNull()
	case event.Default:
		return t.PushDefault()
	case event.I32, event.I64:
		t.bld.Append(arrow.Time32(ev.I64))
		return nil
	case event.Str, event.OwnedStr:
		v, err := arrow.Time32FromString(ev.Str, t.unit)
		if err != nil {
			return skerr.New(skerr.Parse, "%s", err).WithField(t.field.Name).WithDataType(t.field.Type.String())
		}
		t.bld.Append(v)
		return nil
	default:
		return mismatch(t.field, ev, "Time32")
	}
}

func (t *time32Builder) PushNull() error {
	if !t.nullable() {
		return notNullable(t.field)
	}
	t.bld.AppendNull()
	return nil
}
func (t *time32Builder) PushDefault() error { t.bld.AppendEmptyValue(); return nil }
func (t *time32Builder) Finish() (arrow.Array, error) { return t.bld.NewArray(), nil }

type time64Builder struct {
	baseField
	bld  *array.Time64Builder
	unit arrow.TimeUnit
}

func newTime64Builder(field arrow.Field, bld *array.Time64Builder, unit arrow.TimeUnit) *time64Builder {
	return &time64Builder{baseField: baseField{field}, bld: bld, unit: unit}
}

func (t *time64Builder) Len() int { return t.bld.Len() }

func (t *time64Builder) Accept(ev event.Event) error {
	switch ev.Kind {
	case event.Some:
		return nil
	case event.Null:
		return t.PushNull()
	case event.Default:
		return t.PushDefault()
	case event.I64:
		t.bld.Append(arrow.Time64(ev.I64))
		return nil
	case event.Str, event.OwnedStr:
		v, err := arrow.Time64FromString(ev.Str, t.unit)
		if err != nil {
			return skerr.New(skerr.Parse, "%s", err).WithField(t.field.Name).WithDataType(t.field.Type.String())
		}
		t.bld.Append(v)
		return nil
	default:
		return mismatch(t.field, ev, "Time64")
	}
}

func (t *time64Builder) PushNull() error {
	if !t.nullable() {
		return notNullable(t.field)
	}
	t.bld.AppendNull()
	return nil
}
func (t *time64Builder) PushDefault() error { t.bld.AppendEmptyValue(); return nil }
func (t *time64Builder) Finish() (arrow.Array, error) { return t.bld.NewArray(), nil }

// timestampBuilder accepts ticks-since-epoch integers or a string, which is
// parsed with arrow.TimestampFromString at the field's unit. The field's
// TimeZone is not consulted: a zoned field does not reject a string without
// an offset, and a naive field does not reject one with an offset.
type timestampBuilder struct {
	baseField
	bld *array.TimestampBuilder
	dt  *arrow.TimestampType
}

func newTimestampBuilder(field arrow.Field, bld *array.TimestampBuilder, dt *arrow.TimestampType) *timestampBuilder {
	return &timestampBuilder{baseField: baseField{field}, bld: bld, dt: dt}
}

func (t *timestampBuilder) Len() int { return t.bld.Len() }

func (t *timestampBuilder) Accept(ev event.Event) error {
	switch ev.Kind {
	case event.Some:
		return nil
	case event.Null:
		return t.PushNull()
	case event.Default:
		return t.PushDefault()
	case event.I64:
		t.bld.Append(arrow.Timestamp(ev.I64))
		return nil
	case event.Str, event.OwnedStr:
		v, err := arrow.TimestampFromString(ev.Str, t.dt.Unit)
		if err != nil {
			return skerr.New(skerr.Parse, "%s", err).WithField(t.field.Name).WithDataType(t.field.Type.String())
		}
		t.bld.Append(v)
		return nil
	default:
		return mismatch(t.field, ev, "Timestamp")
	}
}

func (t *timestampBuilder) PushNull() error {
	if !t.nullable() {
		return notNullable(t.field)
	}
	t.bld.AppendNull()
	return nil
}
func (t *timestampBuilder) PushDefault() error { t.bld.AppendEmptyValue(); return nil }
func (t *timestampBuilder) Finish() (arrow.Array, error) { return t.bld.NewArray(), nil }

// durationBuilder accepts ticks-since-zero integers at the declared unit, or
// a Go-style duration string ("1h30m", "250ms") converted to that unit.
type durationBuilder struct {
	baseField
	bld  *array.DurationBuilder
	unit arrow.TimeUnit
}

func newDurationBuilder(field arrow.Field, bld *array.DurationBuilder, unit arrow.TimeUnit) *durationBuilder {
	return &durationBuilder{baseField: baseField{field}, bld: bld, unit: unit}
}

func (d *durationBuilder) Len() int { return d.bld.Len() }

func (d *durationBuilder) Accept(ev event.Event) error {
	switch ev.Kind {
	case event.Some:
		return nil
	case event.Null:
		return d.PushNull()
	case event.Default:
		return d.PushDefault()
	case event.I64:
		d.bld.Append(arrow.Duration(ev.I64))
		return nil
	case event.Str, event.OwnedStr:
		gd, err := time.ParseDuration(ev.Str)
		if err != nil {
			return skerr.New(skerr.Parse, "%s", err).WithField(d.field.Name).WithDataType(d.field.Type.String())
		}
		d.bld.Append(arrow.Duration(durationTicks(gd, d.unit)))
		return nil
	default:
		return mismatch(d.field, ev, "Duration")
	}
}

func durationTicks(gd time.Duration, unit arrow.TimeUnit) int64 {
	switch unit {
	case arrow.Second:
		return int64(gd / time.Second)
	case arrow.Millisecond:
		return int64(gd / time.Millisecond)
	case arrow.Microsecond:
		return int64(gd / time.Microsecond)
	default: // arrow.Nanosecond
		return int64(gd)
	}
}

func (d *durationBuilder) PushNull() error {
	if !d.nullable() {
		return notNullable(d.field)
	}
	d.bld.AppendNull()
	return nil
}
func (d *durationBuilder) PushDefault() error { d.bld.AppendEmptyValue(); return nil }
func (d *durationBuilder) Finish() (arrow.Array, error) { return d.bld.NewArray(), nil }
