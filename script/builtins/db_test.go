// File: db_test.go
// Title: Database Builtin Tests
// Description: Exercises the db namespace against an in-memory SQLite
//              database.

package builtins

import (
	"testing"

	"github.com/eblang/ebscript/script/types"
)

func TestDBLifecycle(t *testing.T) {
	reg := testRegistry(t)

	h := mustInvoke(t, reg, "db.open", ":memory:").(*types.Handle)
	if h.Kind != "db" {
		t.Fatalf("handle kind = %q", h.Kind)
	}

	mustInvoke(t, reg, "db.exec", h, "CREATE TABLE orders (id INTEGER PRIMARY KEY, item TEXT, amount REAL)")

	affected := mustInvoke(t, reg, "db.exec", h,
		"INSERT INTO orders (item, amount) VALUES (?, ?), (?, ?)",
		"widget", 9.5, "gadget", 4.0)
	if affected != int64(2) {
		t.Errorf("affected = %v, want 2", affected)
	}

	rows := mustInvoke(t, reg, "db.query", h,
		"SELECT id, item, amount FROM orders WHERE amount > ? ORDER BY id", 5.0).(*types.Array)
	if rows.Len() != 1 {
		t.Fatalf("got %d rows, want 1", rows.Len())
	}
	row := rows.Elems[0].(*types.Record)
	if item, _ := row.Get("item"); item != "widget" {
		t.Errorf("item = %v", item)
	}
	if amount, _ := row.Get("amount"); amount != 9.5 {
		t.Errorf("amount = %v", amount)
	}
	if id, _ := row.Get("id"); id != int64(1) {
		t.Errorf("id = %v", id)
	}

	mustInvoke(t, reg, "db.close", h)
	mustInvoke(t, reg, "db.close", h) // idempotent
	if _, err := invoke(t, reg, "db.exec", h, "SELECT 1"); err == nil {
		t.Error("exec on a closed handle should fail")
	}
}

func TestDBQueryErrors(t *testing.T) {
	reg := testRegistry(t)

	h := mustInvoke(t, reg, "db.open", ":memory:").(*types.Handle)
	defer invoke(t, reg, "db.close", h)

	if _, err := invoke(t, reg, "db.query", h, "SELECT * FROM missing"); err == nil {
		t.Error("querying a missing table should fail")
	}
	if _, err := invoke(t, reg, "db.query", h); err == nil {
		t.Error("missing query text should fail")
	}
}
