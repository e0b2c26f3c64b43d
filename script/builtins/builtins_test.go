// File: builtins_test.go
// Title: Builtin Tests
// Description: Exercises the str, math, json, col, rand, sys, and file
//              namespaces directly through their handlers.

package builtins

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eblang/ebscript/core/log"
	"github.com/eblang/ebscript/script/registry"
	"github.com/eblang/ebscript/script/types"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New(log.GetDefault())
	if err := StandardLibrary(reg); err != nil {
		t.Fatalf("StandardLibrary() error = %v", err)
	}
	return reg
}

func invoke(t *testing.T, reg *registry.Registry, name string, args ...types.Value) (types.Value, error) {
	t.Helper()
	handler, ok := reg.Lookup(name)
	if !ok {
		t.Fatalf("builtin %q not registered", name)
	}
	return handler(&registry.Context{
		Ctx:    context.Background(),
		Logger: log.GetDefault(),
		Output: &bytes.Buffer{},
	}, args)
}

func mustInvoke(t *testing.T, reg *registry.Registry, name string, args ...types.Value) types.Value {
	t.Helper()
	v, err := invoke(t, reg, name, args...)
	if err != nil {
		t.Fatalf("%s error = %v", name, err)
	}
	return v
}

func TestStrBuiltins(t *testing.T) {
	reg := testRegistry(t)

	tests := []struct {
		name string
		args []types.Value
		want types.Value
	}{
		{"str.length", []types.Value{"héllo"}, int64(5)},
		{"str.upper", []types.Value{"abc"}, "ABC"},
		{"str.lower", []types.Value{"ABC"}, "abc"},
		{"str.trim", []types.Value{"  x  "}, "x"},
		{"str.contains", []types.Value{"hello", "ell"}, true},
		{"str.startsWith", []types.Value{"hello", "he"}, true},
		{"str.endsWith", []types.Value{"hello", "he"}, false},
		{"str.indexOf", []types.Value{"héllo", "llo"}, int64(2)},
		{"str.indexOf", []types.Value{"hello", "zz"}, int64(-1)},
		{"str.substring", []types.Value{"hello", int64(1), int64(3)}, "el"},
		{"str.replace", []types.Value{"a-b-c", "-", "+"}, "a+b+c"},
		{"str.repeat", []types.Value{"ab", int64(3)}, "ababab"},
		{"str.padLeft", []types.Value{"7", int64(3), "0"}, "007"},
		{"str.format", []types.Value{"{} is {}", "x", int64(1)}, "x is 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+types.Stringify(tt.args[0]), func(t *testing.T) {
			got := mustInvoke(t, reg, tt.name, tt.args...)
			if got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestStrSplitAndJoin(t *testing.T) {
	reg := testRegistry(t)

	parts := mustInvoke(t, reg, "str.split", "a,b,c", ",").(*types.Array)
	if parts.Len() != 3 || parts.Elems[1] != "b" {
		t.Errorf("split = %v", parts.Elems)
	}

	joined := mustInvoke(t, reg, "str.join", types.NewArray("a", int64(1), true), "-")
	if joined != "a-1-true" {
		t.Errorf("join = %v", joined)
	}
}

func TestStrBuiltinErrors(t *testing.T) {
	reg := testRegistry(t)

	cases := []struct {
		name string
		args []types.Value
	}{
		{"str.upper", nil},
		{"str.upper", []types.Value{int64(1)}},
		{"str.repeat", []types.Value{"x", int64(-1)}},
		{"str.format", []types.Value{"{}", "a", "unused"}},
	}
	for _, tt := range cases {
		_, err := invoke(t, reg, tt.name, tt.args...)
		if err == nil {
			t.Errorf("%s(%v): expected error", tt.name, tt.args)
			continue
		}
		if _, ok := err.(*registry.HostError); !ok {
			t.Errorf("%s: error type = %T, want *registry.HostError", tt.name, err)
		}
	}
}

func TestMathBuiltins(t *testing.T) {
	reg := testRegistry(t)

	tests := []struct {
		name string
		args []types.Value
		want types.Value
	}{
		{"math.abs", []types.Value{int64(-3)}, int64(3)},
		{"math.abs", []types.Value{-3.5}, 3.5},
		{"math.min", []types.Value{int64(4), int64(2)}, int64(2)},
		{"math.max", []types.Value{int64(4), 9.5}, 9.5},
		{"math.floor", []types.Value{2.9}, int64(2)},
		{"math.ceil", []types.Value{2.1}, int64(3)},
		{"math.round", []types.Value{2.6}, int64(3)},
		{"math.sqrt", []types.Value{16.0}, 4.0},
		{"math.pow", []types.Value{2.0, 10.0}, 1024.0},
	}

	for _, tt := range tests {
		got := mustInvoke(t, reg, tt.name, tt.args...)
		if got != tt.want {
			t.Errorf("%s(%v) = %v, want %v", tt.name, tt.args, got, tt.want)
		}
	}

	if _, err := invoke(t, reg, "math.sqrt", -1.0); err == nil {
		t.Error("math.sqrt(-1) should fail")
	}
}

func TestJSONParse(t *testing.T) {
	reg := testRegistry(t)

	v := mustInvoke(t, reg, "json.parse", `{"b": 1, "a": [1, 2.5, null, true], "s": "x"}`)
	rec, ok := v.(*types.Record)
	if !ok {
		t.Fatalf("parse result = %T, want *types.Record", v)
	}

	// object key order is preserved
	names := rec.Names()
	if len(names) != 3 || names[0] != "b" || names[1] != "a" || names[2] != "s" {
		t.Errorf("key order = %v", names)
	}

	if b, _ := rec.Get("b"); b != int64(1) {
		t.Errorf("b = %v (%T), want int64 1", b, b)
	}
	arr, _ := rec.Get("a")
	elems := arr.(*types.Array).Elems
	if elems[0] != int64(1) || elems[1] != 2.5 || elems[2] != nil || elems[3] != true {
		t.Errorf("array = %v", elems)
	}

	if _, err := invoke(t, reg, "json.parse", `{"broken":`); err == nil {
		t.Error("malformed input should fail")
	}
}

func TestJSONStringifyRoundTrip(t *testing.T) {
	reg := testRegistry(t)

	src := `{"name": "ada", "tags": [1, 2], "meta": {"ok": true}}`
	parsed := mustInvoke(t, reg, "json.parse", src)
	text := mustInvoke(t, reg, "json.stringify", parsed).(string)
	reparsed := mustInvoke(t, reg, "json.parse", text)

	if types.Stringify(parsed) != types.Stringify(reparsed) {
		t.Errorf("round trip changed value:\nbefore: %s\nafter:  %s",
			types.Stringify(parsed), types.Stringify(reparsed))
	}
}

func TestJSONStringifyRejectsHandles(t *testing.T) {
	reg := testRegistry(t)

	h := &types.Handle{Kind: "file", ID: "x"}
	if _, err := invoke(t, reg, "json.stringify", h); err == nil {
		t.Error("handles should not serialize")
	}
}

func TestColArrayBuiltins(t *testing.T) {
	reg := testRegistry(t)

	arr := types.NewArray(int64(3), int64(1), int64(2))

	if n := mustInvoke(t, reg, "col.push", arr, int64(9)); n != int64(4) {
		t.Errorf("push = %v, want new length 4", n)
	}
	if v := mustInvoke(t, reg, "col.pop", arr); v != int64(9) {
		t.Errorf("pop = %v, want 9", v)
	}
	if i := mustInvoke(t, reg, "col.indexOf", arr, int64(1)); i != int64(1) {
		t.Errorf("indexOf = %v, want 1", i)
	}
	if i := mustInvoke(t, reg, "col.indexOf", arr, int64(99)); i != int64(-1) {
		t.Errorf("indexOf missing = %v, want -1", i)
	}

	mustInvoke(t, reg, "col.sort", arr)
	if arr.Elems[0] != int64(1) || arr.Elems[2] != int64(3) {
		t.Errorf("sorted = %v", arr.Elems)
	}
	mustInvoke(t, reg, "col.reverse", arr)
	if arr.Elems[0] != int64(3) {
		t.Errorf("reversed = %v", arr.Elems)
	}

	mustInvoke(t, reg, "col.insert", arr, int64(0), "front")
	if arr.Elems[0] != "front" {
		t.Errorf("insert = %v", arr.Elems)
	}
	mustInvoke(t, reg, "col.removeAt", arr, int64(0))
	if arr.Elems[0] != int64(3) {
		t.Errorf("removeAt = %v", arr.Elems)
	}

	mustInvoke(t, reg, "col.clear", arr)
	if arr.Len() != 0 {
		t.Errorf("clear left %d elements", arr.Len())
	}

	fixed := types.NewFixedArray(2)
	if _, err := invoke(t, reg, "col.push", fixed, int64(1)); err == nil {
		t.Error("push into fixed array should fail")
	}

	mixed := types.NewArray(int64(1), "x")
	if _, err := invoke(t, reg, "col.sort", mixed); err == nil {
		t.Error("sorting mixed types should fail")
	}
}

func TestColQueueBuiltins(t *testing.T) {
	reg := testRegistry(t)

	q := types.NewQueue()
	mustInvoke(t, reg, "col.enqueue", q, "first")
	mustInvoke(t, reg, "col.enqueue", q, "second")

	if v := mustInvoke(t, reg, "col.peek", q); v != "first" {
		t.Errorf("peek = %v", v)
	}
	if v := mustInvoke(t, reg, "col.dequeue", q); v != "first" {
		t.Errorf("dequeue = %v", v)
	}
	mustInvoke(t, reg, "col.dequeue", q)
	// draining an empty queue yields null
	if v := mustInvoke(t, reg, "col.dequeue", q); v != nil {
		t.Errorf("dequeue on empty = %v, want nil", v)
	}
}

func TestColMapBuiltins(t *testing.T) {
	reg := testRegistry(t)

	m := types.NewMap()
	m.Set("a", int64(1))
	m.Set("b", int64(2))

	keys := mustInvoke(t, reg, "col.keys", m).(*types.Array)
	if keys.Len() != 2 || keys.Elems[0] != "a" {
		t.Errorf("keys = %v", keys.Elems)
	}
	values := mustInvoke(t, reg, "col.values", m).(*types.Array)
	if values.Len() != 2 || values.Elems[1] != int64(2) {
		t.Errorf("values = %v", values.Elems)
	}
	if has := mustInvoke(t, reg, "col.has", m, "a"); has != true {
		t.Error("has(a) = false")
	}
	mustInvoke(t, reg, "col.remove", m, "a")
	if has := mustInvoke(t, reg, "col.has", m, "a"); has != false {
		t.Error("remove did not delete the key")
	}
}

func TestColFields(t *testing.T) {
	reg := testRegistry(t)

	rec := types.NewRecord()
	rec.Set("x", int64(1))
	rec.Set("y", int64(2))

	fields := mustInvoke(t, reg, "col.fields", rec).(*types.Array)
	if fields.Len() != 2 || fields.Elems[0] != "x" || fields.Elems[1] != "y" {
		t.Errorf("fields = %v", fields.Elems)
	}
}

func TestRandBuiltins(t *testing.T) {
	reg := testRegistry(t)

	for i := 0; i < 50; i++ {
		v := mustInvoke(t, reg, "rand.int", int64(10)).(int64)
		if v < 0 || v >= 10 {
			t.Fatalf("rand.int out of range: %d", v)
		}
	}
	if _, err := invoke(t, reg, "rand.int", int64(0)); err == nil {
		t.Error("rand.int(0) should fail")
	}

	d := mustInvoke(t, reg, "rand.double").(float64)
	if d < 0 || d >= 1 {
		t.Errorf("rand.double = %v", d)
	}

	arr := types.NewArray("a", "b", "c")
	picked := mustInvoke(t, reg, "rand.pick", arr).(string)
	if picked != "a" && picked != "b" && picked != "c" {
		t.Errorf("rand.pick = %q", picked)
	}
}

func TestSysWrite(t *testing.T) {
	reg := testRegistry(t)

	handler, _ := reg.Lookup("sys.write")
	var buf bytes.Buffer
	_, err := handler(&registry.Context{
		Ctx:    context.Background(),
		Logger: log.GetDefault(),
		Output: &buf,
	}, []types.Value{"no newline"})
	if err != nil {
		t.Fatalf("sys.write error = %v", err)
	}
	if buf.String() != "no newline" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestSysNow(t *testing.T) {
	reg := testRegistry(t)
	v := mustInvoke(t, reg, "sys.now").(int64)
	if v <= 0 {
		t.Errorf("sys.now = %d", v)
	}
}

func TestSysEnv(t *testing.T) {
	reg := testRegistry(t)
	os.Setenv("EBS_TEST_VALUE", "hello")
	defer os.Unsetenv("EBS_TEST_VALUE")

	if v := mustInvoke(t, reg, "sys.env", "EBS_TEST_VALUE"); v != "hello" {
		t.Errorf("sys.env = %v", v)
	}
}

func TestFileBuiltins(t *testing.T) {
	reg := testRegistry(t)
	path := filepath.Join(t.TempDir(), "data.txt")

	if v := mustInvoke(t, reg, "file.exists", path); v != false {
		t.Error("exists before write = true")
	}
	mustInvoke(t, reg, "file.write", path, "line one\n")
	mustInvoke(t, reg, "file.append", path, "line two")

	content := mustInvoke(t, reg, "file.read", path)
	if content != "line one\nline two" {
		t.Errorf("read = %q", content)
	}
	if v := mustInvoke(t, reg, "file.exists", path); v != true {
		t.Error("exists after write = false")
	}

	mustInvoke(t, reg, "file.remove", path)
	if v := mustInvoke(t, reg, "file.exists", path); v != false {
		t.Error("exists after remove = true")
	}
	if _, err := invoke(t, reg, "file.read", path); err == nil {
		t.Error("reading a removed file should fail")
	}
}

func TestFileReadLine(t *testing.T) {
	reg := testRegistry(t)
	path := filepath.Join(t.TempDir(), "lines.txt")
	mustInvoke(t, reg, "file.write", path, "alpha\r\nbeta\ngamma")

	h := mustInvoke(t, reg, "file.open", path).(*types.Handle)
	if h.Kind != "file" {
		t.Errorf("handle kind = %q", h.Kind)
	}

	want := []string{"alpha", "beta", "gamma"}
	for _, line := range want {
		got := mustInvoke(t, reg, "file.readLine", h)
		if got != line {
			t.Errorf("readLine = %v, want %q", got, line)
		}
	}
	// end of file yields null
	if v := mustInvoke(t, reg, "file.readLine", h); v != nil {
		t.Errorf("readLine at EOF = %v, want nil", v)
	}

	mustInvoke(t, reg, "file.close", h)
	mustInvoke(t, reg, "file.close", h) // idempotent
	if _, err := invoke(t, reg, "file.readLine", h); err == nil {
		t.Error("readLine on a closed handle should fail")
	}
}

func TestHandleArgumentKindChecked(t *testing.T) {
	reg := testRegistry(t)

	wrong := &types.Handle{Kind: "db", ID: "1"}
	_, err := invoke(t, reg, "file.readLine", wrong)
	if err == nil {
		t.Fatal("expected kind mismatch error")
	}
	if !strings.Contains(err.Error(), "file") {
		t.Errorf("error = %v", err)
	}
}
