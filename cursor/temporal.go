package cursor

import (
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/arrowskein/skein/builder"
	"github.com/arrowskein/skein/event"
)

type date32Cursor struct {
	baseField
	arr *array.Date32
}

func newDate32Cursor(field arrow.Field, arr *array.Date32) *date32Cursor {
	return &date32Cursor{baseField{field}, arr}
}
func (c *date32Cursor) Len() int           { return c.arr.Len() }
func (c *date32Cursor) IsValid(i int) bool { return c.arr.IsValid(i) }
func (c *date32Cursor) Read(i int, sink Sink) error {
	if !c.arr.IsValid(i) {
		return sink.Emit(event.NullEvent())
	}
	return sink.Emit(event.I32Event(int32(c.arr.Value(i))))
}

// date64Cursor formats back to the same string shape the tracer observed
// when the field carries NaiveStrAsDate64 or UtcStrAsDate64 (spec.md §8 S6:
// "round-trip formats back to the same string"); otherwise it emits the
// raw millisecond count.
type date64Cursor struct {
	baseField
	arr      *array.Date64
	strategy builder.Strategy
}

func newDate64Cursor(field arrow.Field, arr *array.Date64, strategy builder.Strategy) *date64Cursor {
	return &date64Cursor{baseField{field}, arr, strategy}
}
func (c *date64Cursor) Len() int           { return c.arr.Len() }
func (c *date64Cursor) IsValid(i int) bool { return c.arr.IsValid(i) }
func (c *date64Cursor) Read(i int, sink Sink) error {
	if !c.arr.IsValid(i) {
		return sink.Emit(event.NullEvent())
	}
	ms := int64(c.arr.Value(i))
	switch c.strategy {
	case builder.StrategyUtcStrAsDate64:
		return sink.Emit(event.StrEvent(time.UnixMilli(ms).UTC().Format(time.RFC3339)))
	case builder.StrategyNaiveStrAsDate64:
		return sink.Emit(event.StrEvent(time.UnixMilli(ms).UTC().Format("2006-01-02T15:04:05")))
	default:
		return sink.Emit(event.I64Event(ms))
	}
}

type time32Cursor struct {
	baseField
	arr  *array.Time32
	unit arrow.TimeUnit
}

func newTime32Cursor(field arrow.Field, arr *array.Time32, unit arrow.TimeUnit) *time32Cursor {
	return &time32Cursor{baseField{field}, arr, unit}
}
func (c *time32Cursor) Len() int           { return c.arr.Len() }
func (c *time32Cursor) IsValid(i int) bool { return c.arr.IsValid(i) }
func (c *time32Cursor) Read(i int, sink Sink) error {
	if !c.arr.IsValid(i) {
		return sink.Emit(event.NullEvent())
	}
	return sink.Emit(event.I32Event(int32(c.arr.Value(i))))
}

type time64Cursor struct {
	baseField
	arr  *array.Time64
	unit arrow.TimeUnit
}

func newTime64Cursor(field arrow.Field, arr *array.Time64, unit arrow.TimeUnit) *time64Cursor {
	return &time64Cursor{baseField{field}, arr, unit}
}
func (c *time64Cursor) Len() int           { return c.arr.Len() }
func (c *time64Cursor) IsValid(i int) bool { return c.arr.IsValid(i) }
func (c *time64Cursor) Read(i int, sink Sink) error {
	if !c.arr.IsValid(i) {
		return sink.Emit(event.NullEvent())
	}
	return sink.Emit(event.I64Event(int64(c.arr.Value(i))))
}

// timestampCursor formats to RFC3339/naive strings under the same
// strategies Date64 uses, when present; plain ticks-since-epoch otherwise.
type timestampCursor struct {
	baseField
	arr      *array.Timestamp
	dt       *arrow.TimestampType
	strategy builder.Strategy
}

func newTimestampCursor(field arrow.Field, arr *array.Timestamp, dt *arrow.TimestampType, strategy builder.Strategy) *timestampCursor {
	return &timestampCursor{baseField{field}, arr, dt, strategy}
}
func (c *timestampCursor) Len() int           { return c.arr.Len() }
func (c *timestampCursor) IsValid(i int) bool { return c.arr.IsValid(i) }
func (c *timestampCursor) Read(i int, sink Sink) error {
	if !c.arr.IsValid(i) {
		return sink.Emit(event.NullEvent())
	}
	v := int64(c.arr.Value(i))
	switch c.strategy {
	case builder.StrategyUtcStrAsDate64, builder.StrategyNaiveStrAsDate64:
		t := ticksToTime(v, c.dt.Unit).UTC()
		if c.strategy == builder.StrategyUtcStrAsDate64 {
			return sink.Emit(event.StrEvent(t.Format(time.RFC3339)))
		}
		return sink.Emit(event.StrEvent(t.Format("2006-01-02T15:04:05")))
	default:
		return sink.Emit(event.I64Event(v))
	}
}

// ticksToTime converts a tick count at unit into a time.Time since the Unix
// epoch; timestampCursor uses it to render its values.
func ticksToTime(v int64, unit arrow.TimeUnit) time.Time {
	switch unit {
	case arrow.Second:
		return time.Unix(v, 0)
	case arrow.Millisecond:
		return time.UnixMilli(v)
	case arrow.Microsecond:
		return time.UnixMicro(v)
	default: // arrow.Nanosecond
		return time.Unix(0, v)
	}
}

type durationCursor struct {
	baseField
	arr  *array.Duration
	unit arrow.TimeUnit
}

func newDurationCursor(field arrow.Field, arr *array.Duration, unit arrow.TimeUnit) *durationCursor {
	return &durationCursor{baseField{field}, arr, unit}
}
func (c *durationCursor) Len() int           { return c.arr.Len() }
func (c *durationCursor) IsValid(i int) bool { return c.arr.IsValid(i) }
func (c *durationCursor) Read(i int, sink Sink) error {
	if !c.arr.IsValid(i) {
		return sink.Emit(event.NullEvent())
	}
	return sink.Emit(event.I64Event(int64(c.arr.Value(i))))
}
