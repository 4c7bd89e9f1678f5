package plait

import (
	"fmt"
	"time"
)

// Kind represents PLAIT value types.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNum
	KindStr
	KindDate
	KindBin
	KindList
	KindMap
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNum:
		return "num"
	case KindStr:
		return "str"
	case KindDate:
		return "date"
	case KindBin:
		return "bin"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value represents a PLAIT value.
type Value struct {
	kind Kind

	// Scalar values (only one valid based on kind)
	boolVal bool
	numVal  float64
	strVal  string
	binVal  []byte
	dateVal time.Time

	// Container values
	listVal []*Value
	mapVal  []Entry

	// Source location for error reporting
	pos Position
}

// Entry represents a key-value pair in a record. Insertion order is
// preserved for serialization but is insignificant for equality.
type Entry struct {
	Key   string
	Value *Value
}

// Position represents a source location.
type Position struct {
	Line   int
	Column int
	Offset int
}

// String returns position as "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// ============================================================
// Constructors
// ============================================================

// Null creates a null value.
func Null() *Value {
	return &Value{kind: KindNull}
}

// Bool creates a boolean value.
func Bool(v bool) *Value {
	return &Value{kind: KindBool, boolVal: v}
}

// Num creates a numeric value. PLAIT numbers have IEEE-754
// double-precision semantics; integer literals share this type.
func Num(v float64) *Value {
	return &Value{kind: KindNum, numVal: v}
}

// Str creates a string value.
func Str(v string) *Value {
	return &Value{kind: KindStr, strVal: v}
}

// Date creates a date value.
func Date(v time.Time) *Value {
	return &Value{kind: KindDate, dateVal: v}
}

// Bin creates a binary (raw byte buffer) value.
func Bin(v []byte) *Value {
	return &Value{kind: KindBin, binVal: v}
}

// List creates an array value.
func List(values ...*Value) *Value {
	return &Value{kind: KindList, listVal: values}
}

// Map creates a record value from key-value pairs.
func Map(entries ...Entry) *Value {
	return &Value{kind: KindMap, mapVal: entries}
}

// Field creates an Entry for use in Map construction.
func Field(key string, value *Value) Entry {
	return Entry{Key: key, Value: value}
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the value kind.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull returns true if this is a null value.
func (v *Value) IsNull() bool {
	return v == nil || v.kind == KindNull
}

// AsBool returns the boolean value.
func (v *Value) AsBool() (bool, error) {
	if v == nil {
		return false, fmt.Errorf("plait: nil value")
	}
	if v.kind != KindBool {
		return false, fmt.Errorf("plait: expected bool, got %s", v.kind)
	}
	return v.boolVal, nil
}

// AsNum returns the numeric value.
func (v *Value) AsNum() (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("plait: nil value")
	}
	if v.kind != KindNum {
		return 0, fmt.Errorf("plait: expected num, got %s", v.kind)
	}
	return v.numVal, nil
}

// AsStr returns the string value.
func (v *Value) AsStr() (string, error) {
	if v == nil {
		return "", fmt.Errorf("plait: nil value")
	}
	if v.kind != KindStr {
		return "", fmt.Errorf("plait: expected str, got %s", v.kind)
	}
	return v.strVal, nil
}

// AsDate returns the date value.
func (v *Value) AsDate() (time.Time, error) {
	if v == nil {
		return time.Time{}, fmt.Errorf("plait: nil value")
	}
	if v.kind != KindDate {
		return time.Time{}, fmt.Errorf("plait: expected date, got %s", v.kind)
	}
	return v.dateVal, nil
}

// AsBin returns the binary value.
func (v *Value) AsBin() ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("plait: nil value")
	}
	if v.kind != KindBin {
		return nil, fmt.Errorf("plait: expected bin, got %s", v.kind)
	}
	return v.binVal, nil
}

// AsList returns the array elements.
func (v *Value) AsList() ([]*Value, error) {
	if v == nil {
		return nil, fmt.Errorf("plait: nil value")
	}
	if v.kind != KindList {
		return nil, fmt.Errorf("plait: expected list, got %s", v.kind)
	}
	return v.listVal, nil
}

// AsMap returns the record entries in insertion order.
func (v *Value) AsMap() ([]Entry, error) {
	if v == nil {
		return nil, fmt.Errorf("plait: nil value")
	}
	if v.kind != KindMap {
		return nil, fmt.Errorf("plait: expected map, got %s", v.kind)
	}
	return v.mapVal, nil
}

// Len returns the length of a list or map.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.kind {
	case KindList:
		return len(v.listVal)
	case KindMap:
		return len(v.mapVal)
	default:
		return 0
	}
}

// Get returns a field value by key from a record, or nil.
func (v *Value) Get(key string) *Value {
	if v == nil || v.kind != KindMap {
		return nil
	}
	for _, e := range v.mapVal {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

// Index returns the i-th element of a list.
func (v *Value) Index(i int) (*Value, error) {
	if v == nil || v.kind != KindList {
		return nil, fmt.Errorf("plait: not a list")
	}
	if i < 0 || i >= len(v.listVal) {
		return nil, fmt.Errorf("plait: index %d out of bounds (len=%d)", i, len(v.listVal))
	}
	return v.listVal[i], nil
}

// Pos returns the source position of this value.
func (v *Value) Pos() Position {
	if v == nil {
		return Position{}
	}
	return v.pos
}

// SetPos sets the source position.
func (v *Value) SetPos(pos Position) {
	v.pos = pos
}

// ============================================================
// Mutators
// ============================================================

// Set sets a field value on a record, appending if the key is new.
func (v *Value) Set(key string, val *Value) {
	if v.kind != KindMap {
		panic("plait: cannot set on non-map")
	}
	for i := range v.mapVal {
		if v.mapVal[i].Key == key {
			v.mapVal[i].Value = val
			return
		}
	}
	v.mapVal = append(v.mapVal, Entry{Key: key, Value: val})
}

// Append adds a value to a list.
func (v *Value) Append(val *Value) {
	if v.kind != KindList {
		panic("plait: cannot append to non-list")
	}
	v.listVal = append(v.listVal, val)
}

// ============================================================
// Copy and Equality
// ============================================================

// Clone returns a deep, independent copy of the value. Mutating the
// copy never affects the original.
func (v *Value) Clone() *Value {
	if v == nil {
		return Null()
	}

	c := &Value{
		kind:    v.kind,
		boolVal: v.boolVal,
		numVal:  v.numVal,
		strVal:  v.strVal,
		dateVal: v.dateVal,
		pos:     v.pos,
	}

	if v.binVal != nil {
		c.binVal = make([]byte, len(v.binVal))
		copy(c.binVal, v.binVal)
	}
	if v.listVal != nil {
		c.listVal = make([]*Value, len(v.listVal))
		for i, elem := range v.listVal {
			c.listVal[i] = elem.Clone()
		}
	}
	if v.mapVal != nil {
		c.mapVal = make([]Entry, len(v.mapVal))
		for i, e := range v.mapVal {
			c.mapVal[i] = Entry{Key: e.Key, Value: e.Value.Clone()}
		}
	}

	return c
}

// Equal reports structural equality. Record key order is insignificant;
// array order is significant.
func Equal(a, b *Value) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindBool:
		return a.boolVal == b.boolVal
	case KindNum:
		return a.numVal == b.numVal
	case KindStr:
		return a.strVal == b.strVal
	case KindDate:
		return a.dateVal.Equal(b.dateVal)
	case KindBin:
		if len(a.binVal) != len(b.binVal) {
			return false
		}
		for i := range a.binVal {
			if a.binVal[i] != b.binVal[i] {
				return false
			}
		}
		return true
	case KindList:
		if len(a.listVal) != len(b.listVal) {
			return false
		}
		for i := range a.listVal {
			if !Equal(a.listVal[i], b.listVal[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.mapVal) != len(b.mapVal) {
			return false
		}
		for _, e := range a.mapVal {
			if !Equal(e.Value, b.Get(e.Key)) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
