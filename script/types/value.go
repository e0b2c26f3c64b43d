// File: value.go
// Title: Runtime Value Representation
// Description: Defines the runtime representation of script values: scalars map
//              onto Go types (int64, float64, string, bool, nil), composites are
//              pointer types defined here. Composite values use copy-on-assign
//              semantics via DeepCopy; opaque handles are reference-semantic.

package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is the runtime representation of a script value.
// Scalars: int64, float64, string, bool, nil (null).
// Composites: *Record, *Array, *Queue, *Map, *Handle.
type Value = interface{}

// Record is an ordered set of named field values
type Record struct {
	names  []string
	fields map[string]Value
}

// NewRecord creates an empty record value
func NewRecord() *Record {
	return &Record{fields: make(map[string]Value)}
}

// Set stores a field value, preserving insertion order for new fields.
// An existing field is matched case-insensitively and keeps its original name.
func (r *Record) Set(name string, v Value) {
	if existing, ok := r.canonicalName(name); ok {
		r.fields[existing] = v
		return
	}
	r.names = append(r.names, name)
	r.fields[name] = v
}

// Get returns a field value by name, matching case-insensitively
func (r *Record) Get(name string) (Value, bool) {
	if existing, ok := r.canonicalName(name); ok {
		return r.fields[existing], true
	}
	return nil, false
}

// Has reports whether the record has a field, matching case-insensitively
func (r *Record) Has(name string) bool {
	_, ok := r.canonicalName(name)
	return ok
}

// Names returns the field names in insertion order
func (r *Record) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of fields
func (r *Record) Len() int {
	return len(r.names)
}

func (r *Record) canonicalName(name string) (string, bool) {
	if _, ok := r.fields[name]; ok {
		return name, true
	}
	for _, n := range r.names {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}
	return "", false
}

// Array is a sequence of values, either dynamic or fixed-capacity
type Array struct {
	Elems    []Value
	Fixed    bool
	Capacity int
}

// NewArray creates a dynamic array value
func NewArray(elems ...Value) *Array {
	return &Array{Elems: elems}
}

// NewFixedArray creates a fixed-capacity array value
func NewFixedArray(capacity int) *Array {
	return &Array{Elems: make([]Value, capacity), Fixed: true, Capacity: capacity}
}

// Len returns the number of elements
func (a *Array) Len() int {
	return len(a.Elems)
}

// Queue is a FIFO collection of values
type Queue struct {
	Items []Value
}

// NewQueue creates an empty queue value
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends a value to the back of the queue
func (q *Queue) Push(v Value) {
	q.Items = append(q.Items, v)
}

// Pop removes and returns the front value; false when empty
func (q *Queue) Pop() (Value, bool) {
	if len(q.Items) == 0 {
		return nil, false
	}
	v := q.Items[0]
	q.Items = q.Items[1:]
	return v, true
}

// Len returns the number of queued values
func (q *Queue) Len() int {
	return len(q.Items)
}

// Map is an ordered dictionary with string or int keys
type Map struct {
	keys    []Value
	entries map[Value]Value
}

// NewMap creates an empty map value
func NewMap() *Map {
	return &Map{entries: make(map[Value]Value)}
}

// Set stores an entry, preserving insertion order for new keys
func (m *Map) Set(key, v Value) {
	if _, ok := m.entries[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.entries[key] = v
}

// Get returns the value for a key
func (m *Map) Get(key Value) (Value, bool) {
	v, ok := m.entries[key]
	return v, ok
}

// Delete removes an entry
func (m *Map) Delete(key Value) {
	if _, ok := m.entries[key]; !ok {
		return
	}
	delete(m.entries, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order
func (m *Map) Keys() []Value {
	out := make([]Value, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries
func (m *Map) Len() int {
	return len(m.entries)
}

// Handle is an opaque reference to a host-owned resource (file, database
// connection, socket, timer). Handles are shared by reference, never copied.
type Handle struct {
	Kind    string
	ID      string
	Payload interface{}
}

// String returns a display form of the handle
func (h *Handle) String() string {
	return fmt.Sprintf("handle(%s:%s)", h.Kind, h.ID)
}

// DeepCopy returns a structural copy of a value. Composites are copied
// recursively; handles are returned as-is (reference semantics).
func DeepCopy(v Value) Value {
	switch val := v.(type) {
	case *Record:
		out := NewRecord()
		for _, name := range val.names {
			out.Set(name, DeepCopy(val.fields[name]))
		}
		return out
	case *Array:
		out := &Array{
			Elems:    make([]Value, len(val.Elems)),
			Fixed:    val.Fixed,
			Capacity: val.Capacity,
		}
		for i, e := range val.Elems {
			out.Elems[i] = DeepCopy(e)
		}
		return out
	case *Queue:
		out := NewQueue()
		for _, e := range val.Items {
			out.Items = append(out.Items, DeepCopy(e))
		}
		return out
	case *Map:
		out := NewMap()
		for _, k := range val.keys {
			out.Set(k, DeepCopy(val.entries[k]))
		}
		return out
	default:
		return v
	}
}

// Stringify renders a value in its canonical string form: integers in decimal,
// doubles in shortest round-trip notation, booleans as "true"/"false",
// composites in JSON-like notation.
func Stringify(v Value) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case *Record:
		var b strings.Builder
		b.WriteByte('{')
		for i, name := range val.names {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(name))
			b.WriteString(": ")
			b.WriteString(stringifyNested(val.fields[name]))
		}
		b.WriteByte('}')
		return b.String()
	case *Array:
		var b strings.Builder
		b.WriteByte('[')
		for i, e := range val.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(stringifyNested(e))
		}
		b.WriteByte(']')
		return b.String()
	case *Queue:
		var b strings.Builder
		b.WriteString("queue[")
		for i, e := range val.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(stringifyNested(e))
		}
		b.WriteByte(']')
		return b.String()
	case *Map:
		var b strings.Builder
		b.WriteByte('{')
		for i, k := range val.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(stringifyNested(k))
			b.WriteString(": ")
			b.WriteString(stringifyNested(val.entries[k]))
		}
		b.WriteByte('}')
		return b.String()
	case *Handle:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// stringifyNested quotes strings inside composites so the output stays readable
func stringifyNested(v Value) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return Stringify(v)
}

// KindOf returns the Kind describing a runtime value
func KindOf(v Value) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case int64:
		return KindInt
	case float64:
		return KindDouble
	case string:
		return KindString
	case bool:
		return KindBool
	case *Record:
		return KindRecord
	case *Array:
		return KindArray
	case *Queue:
		return KindQueue
	case *Map:
		return KindMap
	case *Handle:
		return KindHandle
	default:
		return KindInvalid
	}
}
