// Package event defines the push/pull vocabulary shared by the builder and
// cursor engines: a flat tagged enumeration of the tokens a row-oriented
// visitor emits (or expects) while walking a record, struct, list, map,
// tuple or enum value one primitive at a time.
//
// A builder tree consumes a stream of Events in emission order (§4.2); a
// cursor tree produces the same stream in reverse, one row at a time
// (§4.3). Neither side relies on the call stack to track position — the
// explicit Kind tag plus payload is the entire state a consumer needs to
// decide what to do next.
package event

import "fmt"

// Kind tags the shape of an Event. The zero value is not a valid Kind; real
// events always set one of the named constants below.
type Kind uint8

const (
	_ Kind = iota

	StartSequence
	EndSequence

	StartStruct
	EndStruct

	StartList
	EndList

	StartTuple
	EndTuple

	StartMap
	EndMap

	// Item delimits one element of a sequence/list/map/tuple.
	Item

	// Str carries a borrowed string: a struct field name, or a string value.
	Str
	// OwnedStr is the owned-lifetime twin of Str.
	OwnedStr

	// Null marks a missing/absent value.
	Null
	// Some precedes a present value inside an optional wrapper.
	Some
	// Default precedes a default-zero value used as padding inside a null
	// composite (see builder.Builder.PushDefault).
	Default

	// Variant marks the chosen branch of a sum type. It is always followed
	// by that branch's complete value subtree.
	Variant

	Bool
	I8
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	// F16 carries a 16-bit float encoded as its raw bit pattern.
	F16
	F32
	F64
	Binary
	OwnedBinary
)

var kindNames = map[Kind]string{
	StartSequence: "StartSequence",
	EndSequence:   "EndSequence",
	StartStruct:   "StartStruct",
	EndStruct:     "EndStruct",
	StartList:     "StartList",
	EndList:       "EndList",
	StartTuple:    "StartTuple",
	EndTuple:      "EndTuple",
	StartMap:      "StartMap",
	EndMap:        "EndMap",
	Item:          "Item",
	Str:           "Str",
	OwnedStr:      "OwnedStr",
	Null:          "Null",
	Some:          "Some",
	Default:       "Default",
	Variant:       "Variant",
	Bool:          "Bool",
	I8:            "I8",
	I16:           "I16",
	I32:           "I32",
	I64:           "I64",
	U8:            "U8",
	U16:           "U16",
	U32:           "U32",
	U64:           "U64",
	F16:           "F16",
	F32:           "F32",
	F64:           "F64",
	Binary:        "Binary",
	OwnedBinary:   "OwnedBinary",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Event is one token of the push/pull protocol. At most one payload field is
// meaningful for a given Kind, except Variant, which carries both Ident and
// Index; see the table in spec.md §3.
type Event struct {
	Kind Kind

	Bool bool
	I64  int64
	U64  uint64
	F32  float32
	F64  float64
	// F16Bits holds a float16 value as its raw 16-bit pattern (Kind == F16).
	F16Bits uint16

	Str    string
	Bytes  []byte
	Ident  string
	Index  int32 // variant index for Kind == Variant
}

func mk(k Kind) Event { return Event{Kind: k} }

func StartSequenceEvent() Event { return mk(StartSequence) }
func EndSequenceEvent() Event   { return mk(EndSequence) }
func StartStructEvent() Event   { return mk(StartStruct) }
func EndStructEvent() Event     { return mk(EndStruct) }
func StartListEvent() Event     { return mk(StartList) }
func EndListEvent() Event       { return mk(EndList) }
func StartTupleEvent() Event    { return mk(StartTuple) }
func EndTupleEvent() Event      { return mk(EndTuple) }
func StartMapEvent() Event      { return mk(StartMap) }
func EndMapEvent() Event        { return mk(EndMap) }
func ItemEvent() Event          { return mk(Item) }
func NullEvent() Event          { return mk(Null) }
func SomeEvent() Event          { return mk(Some) }
func DefaultEvent() Event       { return mk(Default) }

func StrEvent(s string) Event      { return Event{Kind: Str, Str: s} }
func OwnedStrEvent(s string) Event { return Event{Kind: OwnedStr, Str: s} }

func VariantEvent(name string, index int32) Event {
	return Event{Kind: Variant, Ident: name, Index: index}
}

func BoolEvent(v bool) Event       { return Event{Kind: Bool, Bool: v} }
func I8Event(v int8) Event         { return Event{Kind: I8, I64: int64(v)} }
func I16Event(v int16) Event       { return Event{Kind: I16, I64: int64(v)} }
func I32Event(v int32) Event       { return Event{Kind: I32, I64: int64(v)} }
func I64Event(v int64) Event       { return Event{Kind: I64, I64: v} }
func U8Event(v uint8) Event        { return Event{Kind: U8, U64: uint64(v)} }
func U16Event(v uint16) Event      { return Event{Kind: U16, U64: uint64(v)} }
func U32Event(v uint32) Event      { return Event{Kind: U32, U64: uint64(v)} }
func U64Event(v uint64) Event      { return Event{Kind: U64, U64: v} }
func F16Event(bits uint16) Event   { return Event{Kind: F16, F16Bits: bits} }
func F32Event(v float32) Event     { return Event{Kind: F32, F32: v} }
func F64Event(v float64) Event     { return Event{Kind: F64, F64: v} }
func BinaryEvent(b []byte) Event   { return Event{Kind: Binary, Bytes: b} }
func OwnedBinaryEvent(b []byte) Event {
	return Event{Kind: OwnedBinary, Bytes: b}
}

// IsStart reports whether k opens a composite that must be closed by its
// matching End* in LIFO order (§3 Invariants).
func (k Kind) IsStart() bool {
	switch k {
	case StartSequence, StartStruct, StartList, StartTuple, StartMap:
		return true
	}
	return false
}

// IsEnd reports whether k closes a composite opened by a Start* event.
func (k Kind) IsEnd() bool {
	switch k {
	case EndSequence, EndStruct, EndList, EndTuple, EndMap:
		return true
	}
	return false
}

// IsScalar reports whether k carries a leaf value rather than structuring a
// composite or delimiting position.
func (k Kind) IsScalar() bool {
	switch k {
	case Bool, I8, I16, I32, I64, U8, U16, U32, U64, F16, F32, F64, Binary, OwnedBinary, Str, OwnedStr:
		return true
	}
	return false
}
