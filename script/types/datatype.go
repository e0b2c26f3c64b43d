// File: datatype.go
// Title: Declared Type Descriptors
// Description: Defines the descriptors for declared types: the closed scalar
//              set, arrays (dynamic and fixed-capacity), queues, maps, JSON
//              trees, opaque handles, inline record types, and named references
//              resolved through the type registry.

package types

import (
	"fmt"
	"strings"
)

// Kind identifies the shape of a declared type or runtime value
type Kind int

const (
	KindInvalid Kind = iota
	KindInt
	KindDouble
	KindString
	KindBool
	KindJSON
	KindHandle
	KindArray
	KindRecord
	KindQueue
	KindMap
	KindNamed
	KindNull
)

// String returns the source-level name of the kind
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindJSON:
		return "json"
	case KindHandle:
		return "handle"
	case KindArray:
		return "array"
	case KindRecord:
		return "record"
	case KindQueue:
		return "queue"
	case KindMap:
		return "map"
	case KindNamed:
		return "named"
	case KindNull:
		return "null"
	default:
		return "invalid"
	}
}

// Type describes a declared type
type Type struct {
	Kind Kind

	// Elem is the element type for arrays and queues
	Elem *Type

	// Key and Val are the entry types for maps
	Key *Type
	Val *Type

	// Fixed and Capacity describe fixed-capacity arrays
	Fixed    bool
	Capacity int

	// Record holds an inline record definition
	Record *RecordType

	// Name references a registered type for KindNamed
	Name string
}

// Scalar type singletons
var (
	IntType    = &Type{Kind: KindInt}
	DoubleType = &Type{Kind: KindDouble}
	StringType = &Type{Kind: KindString}
	BoolType   = &Type{Kind: KindBool}
	JSONType   = &Type{Kind: KindJSON}
	HandleType = &Type{Kind: KindHandle}
)

// ScalarByName returns the scalar/opaque type for a source-level name
func ScalarByName(name string) (*Type, bool) {
	switch strings.ToLower(name) {
	case "int":
		return IntType, true
	case "double":
		return DoubleType, true
	case "string":
		return StringType, true
	case "bool":
		return BoolType, true
	case "json":
		return JSONType, true
	case "handle":
		return HandleType, true
	default:
		return nil, false
	}
}

// NewArrayType creates a dynamic array type
func NewArrayType(elem *Type) *Type {
	return &Type{Kind: KindArray, Elem: elem}
}

// NewFixedArrayType creates a fixed-capacity array type
func NewFixedArrayType(elem *Type, capacity int) *Type {
	return &Type{Kind: KindArray, Elem: elem, Fixed: true, Capacity: capacity}
}

// NewQueueType creates a queue type
func NewQueueType(elem *Type) *Type {
	return &Type{Kind: KindQueue, Elem: elem}
}

// NewMapType creates a map type
func NewMapType(key, val *Type) *Type {
	return &Type{Kind: KindMap, Key: key, Val: val}
}

// NewRecordTypeRef creates a named reference to a registered type
func NewRecordTypeRef(name string) *Type {
	return &Type{Kind: KindNamed, Name: name}
}

// NewInlineRecordType wraps a record definition as a type
func NewInlineRecordType(rt *RecordType) *Type {
	return &Type{Kind: KindRecord, Record: rt}
}

// String renders the type in re-parseable source notation
func (t *Type) String() string {
	if t == nil {
		return "void"
	}
	switch t.Kind {
	case KindArray:
		if t.Fixed {
			return fmt.Sprintf("%s[%d]", t.Elem.String(), t.Capacity)
		}
		return t.Elem.String() + "[]"
	case KindQueue:
		return fmt.Sprintf("queue<%s>", t.Elem.String())
	case KindMap:
		return fmt.Sprintf("map<%s, %s>", t.Key.String(), t.Val.String())
	case KindRecord:
		return t.Record.String()
	case KindNamed:
		return t.Name
	default:
		return t.Kind.String()
	}
}

// RecordType is an ordered mapping of field names to declared types.
// The field set is fixed at declaration time.
type RecordType struct {
	fieldNames []string
	fieldTypes map[string]*Type
}

// NewRecordType creates an empty record type definition
func NewRecordType() *RecordType {
	return &RecordType{fieldTypes: make(map[string]*Type)}
}

// AddField appends a field definition. Duplicate names (case-insensitive)
// are rejected.
func (rt *RecordType) AddField(name string, t *Type) error {
	if rt.HasField(name) {
		return &TypeError{
			Path:    name,
			Message: fmt.Sprintf("duplicate field %q in record type", name),
		}
	}
	rt.fieldNames = append(rt.fieldNames, name)
	rt.fieldTypes[name] = t
	return nil
}

// FieldType returns the declared type of a field, matching case-insensitively
func (rt *RecordType) FieldType(name string) (*Type, bool) {
	if t, ok := rt.fieldTypes[name]; ok {
		return t, true
	}
	for _, n := range rt.fieldNames {
		if strings.EqualFold(n, name) {
			return rt.fieldTypes[n], true
		}
	}
	return nil, false
}

// HasField reports whether the record type declares a field
func (rt *RecordType) HasField(name string) bool {
	_, ok := rt.FieldType(name)
	return ok
}

// FieldNames returns the declared field names in order
func (rt *RecordType) FieldNames() []string {
	out := make([]string, len(rt.fieldNames))
	copy(out, rt.fieldNames)
	return out
}

// NumFields returns the number of declared fields
func (rt *RecordType) NumFields() int {
	return len(rt.fieldNames)
}

// String renders the record type in re-parseable source notation
func (rt *RecordType) String() string {
	var b strings.Builder
	b.WriteString("record { ")
	for i, name := range rt.fieldNames {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(rt.fieldTypes[name].String())
	}
	b.WriteString(" }")
	return b.String()
}

// TypeError describes a shape or coercion failure. Path names the first
// failing field path, e.g. "address.zip" or "items[2].id".
type TypeError struct {
	Path    string
	Message string
}

// Error implements the error interface
func (e *TypeError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// typeErrorf builds a TypeError for a path
func typeErrorf(path, format string, args ...interface{}) *TypeError {
	return &TypeError{Path: path, Message: fmt.Sprintf(format, args...)}
}

// joinPath appends a field segment to a path
func joinPath(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

// indexPath appends an array index segment to a path
func indexPath(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}
