package skein

import (
	"fmt"

	"github.com/arrowskein/skein/event"
)

// mapSink is a cursor.Sink that reconstructs the flat event stream
// RecordCursor.ReadRow synthesizes back into nested Go values
// (map[string]any / []any / scalars), the reverse of builder.Writer's
// value -> event walk.
type mapSink struct {
	stack          []any // *structFrame | *listFrame | *mapFrame
	pendingVariant string
}

type structFrame struct {
	m             map[string]any
	pendingKey    string
	awaitingValue bool
	variant       string
}

type listFrame struct {
	items   []any
	variant string
}

type mapFrame struct {
	m       map[string]any
	key     any
	haveKey bool
	variant string
}

func (d *mapSink) Emit(ev event.Event) error {
	switch ev.Kind {
	case event.StartStruct:
		d.stack = append(d.stack, &structFrame{m: map[string]any{}, variant: d.takeVariant()})
		return nil
	case event.EndStruct:
		f, err := d.popStruct()
		if err != nil {
			return err
		}
		return d.deliverVariant(f.variant, f.m)
	case event.StartList:
		d.stack = append(d.stack, &listFrame{variant: d.takeVariant()})
		return nil
	case event.EndList:
		f, err := d.popList()
		if err != nil {
			return err
		}
		items := f.items
		if items == nil {
			items = []any{}
		}
		return d.deliverVariant(f.variant, items)
	case event.StartMap:
		d.stack = append(d.stack, &mapFrame{m: map[string]any{}, variant: d.takeVariant()})
		return nil
	case event.EndMap:
		f, err := d.popMap()
		if err != nil {
			return err
		}
		return d.deliverVariant(f.variant, f.m)
	case event.Item:
		return nil
	case event.Variant:
		d.pendingVariant = ev.Ident
		return nil
	case event.Str, event.OwnedStr:
		if f, ok := d.topStruct(); ok && !f.awaitingValue {
			f.pendingKey = ev.Str
			f.awaitingValue = true
			return nil
		}
		return d.deliver(ev.Str)
	case event.Null:
		return d.deliver(nil)
	case event.Bool:
		return d.deliver(ev.Bool)
	case event.I8, event.I16, event.I32, event.I64:
		return d.deliver(ev.I64)
	case event.U8, event.U16, event.U32, event.U64:
		return d.deliver(ev.U64)
	case event.F16:
		return d.deliver(ev.F16Bits)
	case event.F32:
		return d.deliver(ev.F32)
	case event.F64:
		return d.deliver(ev.F64)
	case event.Binary, event.OwnedBinary:
		return d.deliver(ev.Bytes)
	}
	return fmt.Errorf("mapsink: unexpected event %s", ev.Kind)
}

func (d *mapSink) topStruct() (*structFrame, bool) {
	if len(d.stack) == 0 {
		return nil, false
	}
	f, ok := d.stack[len(d.stack)-1].(*structFrame)
	return f, ok
}

func (d *mapSink) popStruct() (*structFrame, error) {
	if len(d.stack) == 0 {
		return nil, fmt.Errorf("mapsink: EndStruct with empty stack")
	}
	f, ok := d.stack[len(d.stack)-1].(*structFrame)
	if !ok {
		return nil, fmt.Errorf("mapsink: EndStruct does not match top frame")
	}
	d.stack = d.stack[:len(d.stack)-1]
	return f, nil
}

func (d *mapSink) popList() (*listFrame, error) {
	if len(d.stack) == 0 {
		return nil, fmt.Errorf("mapsink: EndList with empty stack")
	}
	f, ok := d.stack[len(d.stack)-1].(*listFrame)
	if !ok {
		return nil, fmt.Errorf("mapsink: EndList does not match top frame")
	}
	d.stack = d.stack[:len(d.stack)-1]
	return f, nil
}

func (d *mapSink) popMap() (*mapFrame, error) {
	if len(d.stack) == 0 {
		return nil, fmt.Errorf("mapsink: EndMap with empty stack")
	}
	f, ok := d.stack[len(d.stack)-1].(*mapFrame)
	if !ok {
		return nil, fmt.Errorf("mapsink: EndMap does not match top frame")
	}
	d.stack = d.stack[:len(d.stack)-1]
	return f, nil
}

// takeVariant consumes and clears the Variant pending since the last
// Variant event, if any. A composite frame captures it at Start time so
// the wrap below applies once the whole branch value is assembled, not to
// its first inner scalar.
func (d *mapSink) takeVariant() string {
	name := d.pendingVariant
	d.pendingVariant = ""
	return name
}

// deliver attaches a completed scalar value v to whatever frame is
// waiting for it. A scalar is itself a complete value subtree, so a
// Variant pending since the last Variant event is consumed and applied
// here directly.
func (d *mapSink) deliver(v any) error {
	return d.place(wrapVariant(d.takeVariant(), v))
}

// deliverVariant attaches a completed composite value (a struct, list or
// map just popped off the stack) to whatever frame is waiting for it,
// wrapping it in the variant envelope captured at the composite's Start
// event rather than whatever is pending now.
func (d *mapSink) deliverVariant(variant string, v any) error {
	return d.place(wrapVariant(variant, v))
}

func wrapVariant(variant string, v any) any {
	if variant == "" {
		return v
	}
	return map[string]any{"variant": variant, "value": v}
}

// place attaches a completed value v to whatever frame is waiting for
// it: the pending struct field, the next list slot, the next map key or
// value, or (if the stack is empty) the finished row itself.
func (d *mapSink) place(v any) error {
	if len(d.stack) == 0 {
		d.stack = append(d.stack, v)
		return nil
	}
	switch f := d.stack[len(d.stack)-1].(type) {
	case *structFrame:
		if !f.awaitingValue {
			return fmt.Errorf("mapsink: value delivered before a field name")
		}
		f.m[f.pendingKey] = v
		f.awaitingValue = false
		return nil
	case *listFrame:
		f.items = append(f.items, v)
		return nil
	case *mapFrame:
		if !f.haveKey {
			f.key = v
			f.haveKey = true
			return nil
		}
		f.m[fmt.Sprint(f.key)] = v
		f.haveKey = false
		return nil
	}
	return fmt.Errorf("mapsink: no frame to deliver value to")
}
