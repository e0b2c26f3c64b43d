// File: registry_test.go
// Title: Builtin Registry Tests
// Description: Covers qualified-name registration, case-insensitive lookup,
//              collision detection, and the freeze lifecycle.

package registry

import (
	"strings"
	"testing"

	"github.com/eblang/ebscript/script/types"
)

func noop(ctx *Context, args []types.Value) (types.Value, error) {
	return nil, nil
}

func TestRegisterAndLookup(t *testing.T) {
	reg := New(nil)

	if err := reg.Register("str.upper", noop); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, ok := reg.Lookup("str.upper"); !ok {
		t.Error("Lookup(str.upper) failed")
	}
	if _, ok := reg.Lookup("STR.UPPER"); !ok {
		t.Error("lookup should be case-insensitive")
	}
	if _, ok := reg.Lookup("str.lower"); ok {
		t.Error("Lookup(str.lower) should fail")
	}
}

func TestRegisterRejectsCollision(t *testing.T) {
	reg := New(nil)

	if err := reg.Register("math.abs", noop); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	err := reg.Register("MATH.ABS", noop)
	if err == nil {
		t.Fatal("case-insensitive collision should fail")
	}
	if !strings.Contains(err.Error(), "already registered") {
		t.Errorf("error = %v", err)
	}
}

func TestRegisterValidatesName(t *testing.T) {
	reg := New(nil)

	for _, name := range []string{"", "nodot", ".leading", "trailing.", "a.b.c"} {
		if err := reg.Register(name, noop); err == nil {
			t.Errorf("Register(%q) should fail", name)
		}
	}
	if err := reg.Register("ns.fn", nil); err == nil {
		t.Error("nil handler should fail")
	}
}

func TestFreeze(t *testing.T) {
	reg := New(nil)

	if err := reg.Register("sys.now", noop); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if reg.Frozen() {
		t.Error("registry frozen before Freeze()")
	}

	reg.Freeze()
	if !reg.Frozen() {
		t.Error("Frozen() = false after Freeze()")
	}
	if err := reg.Register("sys.later", noop); err == nil {
		t.Error("registration after freeze should fail")
	}

	// lookup still works after freeze
	if _, ok := reg.Lookup("sys.now"); !ok {
		t.Error("Lookup failed after freeze")
	}
}

func TestNames(t *testing.T) {
	reg := New(nil)
	for _, name := range []string{"b.two", "A.one", "c.three"} {
		if err := reg.Register(name, noop); err != nil {
			t.Fatalf("Register(%q) error = %v", name, err)
		}
	}

	names := reg.Names()
	if len(names) != 3 {
		t.Fatalf("got %d names, want 3", len(names))
	}
	want := []string{"a.one", "b.two", "c.three"}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("names[%d] = %q, want %q", i, names[i], name)
		}
	}
	if reg.Len() != 3 {
		t.Errorf("Len() = %d, want 3", reg.Len())
	}
}

func TestHostErrorUnwrap(t *testing.T) {
	cause := Hostf("inner")
	wrapped := WrapHost("outer", cause)
	if wrapped.Unwrap() != cause {
		t.Error("Unwrap() did not return cause")
	}
	if !strings.Contains(wrapped.Error(), "outer") || !strings.Contains(wrapped.Error(), "inner") {
		t.Errorf("Error() = %q", wrapped.Error())
	}
}
