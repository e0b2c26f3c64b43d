// File: registry_test.go
// Title: Type Registry Tests
// Description: Covers named type registration, case-insensitive lookup,
//              redeclaration and cycle rejection, reference resolution, and
//              the nesting limit.

package types

import (
	"strings"
	"testing"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()

	point := NewRecordType()
	point.AddField("x", IntType)
	point.AddField("y", IntType)
	if err := reg.Register("Point", NewInlineRecordType(point)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, ok := reg.Lookup("Point"); !ok {
		t.Error("Lookup(Point) failed")
	}
	if _, ok := reg.Lookup("POINT"); !ok {
		t.Error("lookup should be case-insensitive")
	}
	if _, ok := reg.Lookup("Missing"); ok {
		t.Error("Lookup(Missing) should fail")
	}
}

func TestRegistryRejectsRedeclaration(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register("T", IntType); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	err := reg.Register("t", StringType)
	if err == nil {
		t.Fatal("case-insensitive redeclaration should fail")
	}
	if !strings.Contains(err.Error(), "already declared") {
		t.Errorf("error = %v", err)
	}
}

func TestRegistryRejectsUnknownReference(t *testing.T) {
	reg := NewRegistry()

	rt := NewRecordType()
	rt.AddField("other", NewRecordTypeRef("Nowhere"))
	err := reg.Register("Holder", NewInlineRecordType(rt))
	if err == nil {
		t.Fatal("reference to undeclared type should fail")
	}
	if !strings.Contains(err.Error(), "unknown type") {
		t.Errorf("error = %v", err)
	}
}

func TestRegistryRejectsCycle(t *testing.T) {
	reg := NewRegistry()

	// self-reference
	self := NewRecordType()
	self.AddField("next", NewRecordTypeRef("Node"))
	err := reg.Register("Node", NewInlineRecordType(self))
	if err == nil {
		t.Fatal("self-referential type should be rejected")
	}
	if !strings.Contains(err.Error(), "cycle") {
		t.Errorf("error = %v", err)
	}

	// a failed registration must not leave the name behind
	if _, ok := reg.Lookup("Node"); ok {
		t.Error("failed registration left Node registered")
	}
}

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry()

	inner := NewRecordType()
	inner.AddField("v", IntType)
	if err := reg.Register("Inner", NewInlineRecordType(inner)); err != nil {
		t.Fatalf("Register(Inner) error = %v", err)
	}
	if err := reg.Register("Alias", NewRecordTypeRef("Inner")); err != nil {
		t.Fatalf("Register(Alias) error = %v", err)
	}

	resolved, err := reg.Resolve(NewRecordTypeRef("alias"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved.Kind != KindRecord {
		t.Errorf("resolved kind = %s, want record", resolved.Kind)
	}
	if !resolved.Record.HasField("v") {
		t.Error("resolved type lost its fields")
	}

	if _, err := reg.Resolve(NewRecordTypeRef("nope")); err == nil {
		t.Error("Resolve of unknown name should fail")
	}
}

func TestRegistryNestingLimit(t *testing.T) {
	reg := NewRegistryWithLimit(4)

	deep := NewArrayType(NewArrayType(NewArrayType(NewArrayType(NewArrayType(IntType)))))
	err := reg.Register("Deep", deep)
	if err == nil {
		t.Fatal("expected nesting limit error")
	}
	if !strings.Contains(err.Error(), "nesting") {
		t.Errorf("error = %v", err)
	}

	shallow := NewArrayType(IntType)
	if err := reg.Register("Shallow", shallow); err != nil {
		t.Errorf("Register(Shallow) error = %v", err)
	}
}

func TestRegistryConvertThroughNamedType(t *testing.T) {
	reg := NewRegistry()

	rt := NewRecordType()
	rt.AddField("id", IntType)
	if err := reg.Register("Item", NewInlineRecordType(rt)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	in := NewRecord()
	in.Set("id", "5")
	out, err := reg.Convert(NewRecordTypeRef("Item"), in)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if id, _ := out.(*Record).Get("id"); id != int64(5) {
		t.Errorf("id = %v, want 5", id)
	}
}
