// File: engine_test.go
// Title: Engine Tests
// Description: Covers the host-facing surface: single-shot runs, initial
//              bindings, serialized callbacks, variable access by dotted
//              path, cooperative cancellation, and lifecycle rules.

package engine

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eblang/ebscript/core/config"
	eberror "github.com/eblang/ebscript/core/error"
	"github.com/eblang/ebscript/core/log"
	"github.com/eblang/ebscript/script/builtins"
	"github.com/eblang/ebscript/script/registry"
	"github.com/eblang/ebscript/script/types"
)

// newEngine parses a source unit and wraps it in an engine with the standard
// library registered and print output captured.
func newEngine(t *testing.T, source string) (*Engine, *bytes.Buffer) {
	t.Helper()

	unit, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	reg := registry.New(log.GetDefault())
	if err := builtins.StandardLibrary(reg); err != nil {
		t.Fatalf("StandardLibrary() error = %v", err)
	}

	var buf bytes.Buffer
	eng, err := New(unit, Options{Registry: reg, Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(eng.Close)
	return eng, &buf
}

func TestRunReturnsTopLevelValue(t *testing.T) {
	eng, _ := newEngine(t, `
		var x: int = 40;
		return x + 2;
	`)
	result, err := eng.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Value != int64(42) {
		t.Errorf("value = %v, want 42", result.Value)
	}
	if result.Duration <= 0 {
		t.Error("duration not recorded")
	}
}

func TestRunIsSingleShot(t *testing.T) {
	eng, _ := newEngine(t, `var x: int;`)
	if _, err := eng.Run(context.Background(), nil); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	_, err := eng.Run(context.Background(), nil)
	if err == nil {
		t.Fatal("second Run() should fail")
	}
	if !strings.Contains(err.Error(), "already run") {
		t.Errorf("error = %v", err)
	}
}

func TestParseErrorCarriesCode(t *testing.T) {
	_, err := Parse(`var x: int =`)
	if err == nil {
		t.Fatal("Parse() expected error")
	}
	if !eberror.HasCode(err, eberror.CodeParseError) {
		t.Errorf("code = %v, want PARSE_ERROR", eberror.GetCode(err))
	}
}

// Configured limits must reach the parser and the type registry, not just
// the config struct.
func TestParseWithConfigEnforcesLimits(t *testing.T) {
	cfg := config.Default()
	cfg.MaxTypeNesting = 3

	deep := `typedef Deep: int[][][][][];`
	_, err := ParseWithConfig(deep, &cfg)
	if err == nil {
		t.Fatal("typedef deeper than the configured nesting limit should fail")
	}
	if !strings.Contains(err.Error(), "nesting") {
		t.Errorf("error = %v", err)
	}

	if _, err := ParseWithConfig(`typedef Shallow: int[];`, &cfg); err != nil {
		t.Errorf("shallow typedef rejected: %v", err)
	}

	// the same typedef passes under the default limit
	if _, err := Parse(deep); err != nil {
		t.Errorf("default limit rejected a depth-5 typedef: %v", err)
	}

	small := config.Default()
	small.MaxSourceBytes = 16
	_, err = ParseWithConfig(`var aVeryLongName: int = 1;`, &small)
	if err == nil {
		t.Fatal("source over the configured size limit should fail")
	}
	if !eberror.HasCode(err, eberror.CodeParseError) {
		t.Errorf("code = %v, want PARSE_ERROR", eberror.GetCode(err))
	}
}

func TestInitialBindings(t *testing.T) {
	eng, _ := newEngine(t, `
		varset request in {
			var id: string;
			var amount: int = -1;
		}
		return id + ":" + amount;
	`)
	result, err := eng.Run(context.Background(), map[string]types.Value{
		"request.id":     "ORD-7",
		"request.amount": "250", // coerces to the declared int
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Value != "ORD-7:250" {
		t.Errorf("value = %v", result.Value)
	}
}

func TestInitialBindingRejectedForOutVarSet(t *testing.T) {
	eng, _ := newEngine(t, `
		varset response out {
			var status: string = "pending";
		}
	`)
	_, err := eng.Run(context.Background(), map[string]types.Value{
		"response.status": "done",
	})
	if err == nil {
		t.Fatal("binding into an out varset should fail")
	}
	if !eberror.HasCode(err, eberror.CodeScopeViolation) {
		t.Errorf("code = %v, want SCOPE_VIOLATION", eberror.GetCode(err))
	}
}

func TestRuntimeErrorCarriesCode(t *testing.T) {
	eng, _ := newEngine(t, `print 1 / 0;`)
	_, err := eng.Run(context.Background(), nil)
	if err == nil {
		t.Fatal("Run() expected error")
	}
	if !eberror.HasCode(err, eberror.CodeRuntimeError) {
		t.Errorf("code = %v, want RUNTIME_ERROR", eberror.GetCode(err))
	}
}

func TestSubmitCallback(t *testing.T) {
	eng, _ := newEngine(t, `
		var count: int = 0;
		function bump(by: int): int {
			count += by;
			return count;
		}
	`)
	if _, err := eng.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	v, err := eng.SubmitCallback("bump", int64(5))
	if err != nil {
		t.Fatalf("SubmitCallback() error = %v", err)
	}
	if v != int64(5) {
		t.Errorf("value = %v, want 5", v)
	}

	// case-insensitive function resolution
	if _, err := eng.SubmitCallback("BUMP", int64(1)); err != nil {
		t.Errorf("SubmitCallback(BUMP) error = %v", err)
	}
}

func TestSubmitCallbackUnknownFunction(t *testing.T) {
	eng, _ := newEngine(t, `var x: int;`)
	if _, err := eng.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := eng.SubmitCallback("missing"); err == nil {
		t.Fatal("expected error for unknown function")
	}
}

// Concurrent submissions execute one at a time; a multi-statement
// read-modify-write never interleaves with another invocation.
func TestSubmitCallbackSerializes(t *testing.T) {
	eng, _ := newEngine(t, `
		var count: int = 0;
		function bump(): int {
			var snapshot: int = count;
			snapshot = snapshot + 1;
			count = snapshot;
			return count;
		}
	`)
	if _, err := eng.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	const workers = 32
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool)
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := eng.SubmitCallback("bump")
			if err != nil {
				t.Errorf("SubmitCallback() error = %v", err)
				return
			}
			mu.Lock()
			seen[v.(int64)] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != workers {
		t.Errorf("got %d distinct results, want %d (lost updates)", len(seen), workers)
	}
	final, err := eng.GetVar("main.count")
	if err != nil {
		t.Fatalf("GetVar() error = %v", err)
	}
	if final != int64(workers) {
		t.Errorf("count = %v, want %d", final, workers)
	}
}

func TestGetAndSetVar(t *testing.T) {
	eng, _ := newEngine(t, `
		varset request in { var id: string = "unset"; }
		varset response out { var status: string = "pending"; }
		var limit: int = 10;
	`)
	if _, err := eng.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// reads are always allowed, writes convert to the declared type
	if v, err := eng.GetVar("response.status"); err != nil || v != "pending" {
		t.Errorf("GetVar(response.status) = %v, %v", v, err)
	}
	if err := eng.SetVar("main.limit", "25"); err != nil {
		t.Fatalf("SetVar() error = %v", err)
	}
	if v, _ := eng.GetVar("main.limit"); v != int64(25) {
		t.Errorf("limit = %v, want 25", v)
	}

	// an in varset is read-only to the host once execution has started
	if err := eng.SetVar("request.id", "late"); err == nil {
		t.Error("SetVar into an in varset after start should fail")
	}
	// an out varset never accepts host writes
	if err := eng.SetVar("response.status", "done"); err == nil {
		t.Error("SetVar into an out varset should fail")
	}
}

func TestVisibleVarSets(t *testing.T) {
	eng, _ := newEngine(t, `
		varset shown visible { var a: int; }
		varset hidden internal { var b: int; }
	`)
	if _, err := eng.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	names, err := eng.VisibleVarSets()
	if err != nil {
		t.Fatalf("VisibleVarSets() error = %v", err)
	}
	joined := strings.Join(names, ",")
	if !strings.Contains(joined, "shown") {
		t.Errorf("names = %v, want shown included", names)
	}
	if strings.Contains(joined, "hidden") {
		t.Errorf("names = %v, internal varset leaked", names)
	}
}

func TestStopCancelsRun(t *testing.T) {
	eng, _ := newEngine(t, `while (true) { }`)

	go func() {
		time.Sleep(50 * time.Millisecond)
		eng.Stop()
	}()

	_, err := eng.Run(context.Background(), nil)
	if err == nil {
		t.Fatal("Run() should fail after Stop()")
	}
	if !strings.Contains(err.Error(), "cancelled") {
		t.Errorf("error = %v", err)
	}
}

func TestContextDeadlineCancelsRun(t *testing.T) {
	eng, _ := newEngine(t, `while (true) { }`)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := eng.Run(ctx, nil)
	if err == nil {
		t.Fatal("Run() should fail on deadline")
	}
}

func TestCloseRejectsLaterWork(t *testing.T) {
	eng, _ := newEngine(t, `function f(): int { return 1; }`)
	if _, err := eng.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	eng.Close()
	eng.Close() // idempotent

	if _, err := eng.SubmitCallback("f"); err == nil {
		t.Error("SubmitCallback after Close should fail")
	}
	if _, err := eng.GetVar("main.f"); err == nil {
		t.Error("GetVar after Close should fail")
	}
}

func TestBuiltinsRunWithinScripts(t *testing.T) {
	eng, buf := newEngine(t, `
		var s: string = call str.upper("abc");
		print s;
		print call math.max(3, 9);
		call sys.write("done");
	`)
	if _, err := eng.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := buf.String(); got != "ABC\n9\ndone" {
		t.Errorf("output = %q", got)
	}
}
