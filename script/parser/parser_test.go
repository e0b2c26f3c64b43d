// File: parser_test.go
// Title: Parser Tests
// Description: Covers statement and expression parsing, precedence, typedef
//              registration, varset scopes, parse errors, and the canonical
//              print/re-parse round trip.

package parser

import (
	"strings"
	"testing"

	"github.com/eblang/ebscript/script/ast"
	"github.com/eblang/ebscript/script/types"
)

func mustParse(t *testing.T, source string) *ast.Program {
	t.Helper()
	prog, _, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", source, err)
	}
	return prog
}

func TestParseDeclarations(t *testing.T) {
	prog := mustParse(t, `
		var count: int = 0;
		const limit: int = 10;
		var name: string;
		var prices: double[];
		var board: int[9];
		var pending: queue<string>;
		var index: map<string, int>;
	`)
	if len(prog.Statements) != 7 {
		t.Fatalf("got %d statements, want 7", len(prog.Statements))
	}

	decl, ok := prog.Statements[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("statement 0 is %T, want *ast.VarDecl", prog.Statements[0])
	}
	if decl.Name != "count" || decl.Type.Kind != types.KindInt || decl.Init == nil {
		t.Errorf("unexpected declaration: %+v", decl)
	}
	if decl.VarSet != DefaultVarSet {
		t.Errorf("VarSet = %q, want %q", decl.VarSet, DefaultVarSet)
	}

	constDecl := prog.Statements[1].(*ast.VarDecl)
	if !constDecl.Const {
		t.Error("const declaration not marked Const")
	}

	board := prog.Statements[4].(*ast.VarDecl)
	if !board.Type.Fixed || board.Type.Capacity != 9 {
		t.Errorf("fixed array type = %+v", board.Type)
	}
}

func TestParseTypedefRegistersType(t *testing.T) {
	prog, reg, err := Parse(`
		typedef Point: record { x: int, y: int };
		typedef Line: record { from: Point, to: Point };
		var l: Line;
	`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(prog.Statements) != 3 {
		t.Fatalf("got %d statements, want 3", len(prog.Statements))
	}
	if _, ok := reg.Lookup("Point"); !ok {
		t.Error("Point not registered")
	}
	if _, ok := reg.Lookup("line"); !ok {
		t.Error("typedef lookup should be case-insensitive")
	}
}

func TestParseTypeMustBeDeclaredBeforeUse(t *testing.T) {
	_, _, err := Parse(`var p: Point;`)
	if err == nil {
		t.Fatal("expected error for undeclared type")
	}
	if !strings.Contains(err.Error(), "unknown type") {
		t.Errorf("error = %v, want unknown type", err)
	}
}

func TestParseVarSet(t *testing.T) {
	prog := mustParse(t, `
		varset request in {
			var id: string;
			var amount: double = 0.0;
		}
		varset result out {
			var status: string;
		}
	`)
	vs := prog.Statements[0].(*ast.VarSetDecl)
	if vs.Name != "request" || vs.Scope != "in" || len(vs.Decls) != 2 {
		t.Errorf("varset = %+v", vs)
	}
	if vs.Decls[0].VarSet != "request" {
		t.Errorf("member VarSet = %q, want request", vs.Decls[0].VarSet)
	}

	out := prog.Statements[1].(*ast.VarSetDecl)
	if out.Scope != "out" {
		t.Errorf("scope = %q, want out", out.Scope)
	}
}

func TestParseVarSetRejectsNonDeclarations(t *testing.T) {
	_, _, err := Parse(`varset s visible { print 1; }`)
	if err == nil {
		t.Fatal("expected error for statement inside varset")
	}
}

func TestParseFunction(t *testing.T) {
	prog := mustParse(t, `
		function add(a: int, b: int): int {
			return a + b;
		}
	`)
	fn := prog.Statements[0].(*ast.FunctionDecl)
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("function = %+v", fn)
	}
	if fn.ReturnType == nil || fn.ReturnType.Kind != types.KindInt {
		t.Errorf("return type = %+v", fn.ReturnType)
	}
}

func TestParseRejectsNestedFunction(t *testing.T) {
	_, _, err := Parse(`
		function outer() {
			function inner() { }
		}
	`)
	if err == nil {
		t.Fatal("expected error for nested function")
	}
}

func TestParseRejectsDuplicateParams(t *testing.T) {
	_, _, err := Parse(`function f(a: int, A: int) { }`)
	if err == nil {
		t.Fatal("expected error for case-insensitively duplicate parameters")
	}
}

func TestParsePrecedence(t *testing.T) {
	// printed form is fully parenthesized, making precedence visible
	tests := []struct {
		expr string
		want string
	}{
		{`1 + 2 * 3`, `(1 + (2 * 3))`},
		{`(1 + 2) * 3`, `((1 + 2) * 3)`},
		{`a || b && c`, `(a || (b && c))`},
		{`!a == b`, `((!a) == b)`},
		{`-x * y`, `((-x) * y)`},
		{`a < b == c > d`, `((a < b) == (c > d))`},
		{`a ? b : c ? d : e`, `(a ? b : (c ? d : e))`},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			prog := mustParse(t, "print "+tt.expr+";")
			printStmt := prog.Statements[0].(*ast.PrintStmt)
			got := ast.PrintExpr(printStmt.Value)
			if got != tt.want {
				t.Errorf("printed = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseBuiltinCall(t *testing.T) {
	prog := mustParse(t, `
		call sys.sleep(100);
		var s: string = call str.upper("abc");
	`)
	callStmt := prog.Statements[0].(*ast.CallStmt)
	builtin := callStmt.Call.(*ast.BuiltinCall)
	if builtin.Qualified() != "sys.sleep" {
		t.Errorf("qualified = %q, want sys.sleep", builtin.Qualified())
	}

	decl := prog.Statements[1].(*ast.VarDecl)
	if _, ok := decl.Init.(*ast.BuiltinCall); !ok {
		t.Errorf("initializer is %T, want *ast.BuiltinCall", decl.Init)
	}
}

func TestParseObjectLiteralRequiresQuotedKeys(t *testing.T) {
	if _, _, err := Parse(`var x: json = {"a": 1};`); err != nil {
		t.Fatalf("quoted keys should parse: %v", err)
	}
	if _, _, err := Parse(`var x: json = {a: 1};`); err == nil {
		t.Fatal("unquoted keys should be rejected")
	}
}

func TestParseControlFlow(t *testing.T) {
	prog := mustParse(t, `
		var i: int = 0;
		while (i < 10) {
			if (i == 5) { break; } else { i++; }
		}
		do { i--; } while (i > 0);
		for (var j: int = 0; j < 3; j++) { continue; }
		foreach (x in [1, 2, 3]) { print x; }
		try { raise "boom"; } catch (e) { print e.message; }
	`)
	if len(prog.Statements) != 6 {
		t.Fatalf("got %d statements, want 6", len(prog.Statements))
	}
	if _, ok := prog.Statements[1].(*ast.WhileStmt); !ok {
		t.Errorf("statement 1 is %T", prog.Statements[1])
	}
	if _, ok := prog.Statements[2].(*ast.DoWhileStmt); !ok {
		t.Errorf("statement 2 is %T", prog.Statements[2])
	}
	forStmt, ok := prog.Statements[3].(*ast.ForStmt)
	if !ok || forStmt.Init == nil || forStmt.Cond == nil || forStmt.Post == nil {
		t.Errorf("for statement = %+v", prog.Statements[3])
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"missing semicolon", `var x: int = 1`},
		{"const without initializer", `const x: int;`},
		{"missing type annotation", `var x = 1;`},
		{"unterminated block", `function f() {`},
		{"bad varset scope", `varset s everywhere { }`},
		{"typedef redeclares scalar", `typedef int: record { a: int };`},
		{"map key must be scalar", `var m: map<double, int>;`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.source)
			if err == nil {
				t.Fatalf("Parse(%q) expected error", tt.source)
			}
			if _, ok := err.(*ParseError); !ok {
				t.Errorf("error type = %T, want *ParseError", err)
			}
		})
	}
}

func TestParseInputLengthLimit(t *testing.T) {
	p := New(Options{MaxInputLength: 16})
	_, err := p.Parse("var aVeryLongName: int = 1;")
	if err == nil {
		t.Fatal("expected error for oversized input")
	}
}

// TestPrintRoundTrip checks the canonical form is a fixed point: parsing the
// printed output and printing again yields the identical text.
func TestPrintRoundTrip(t *testing.T) {
	sources := []string{
		`var x: int = 1;`,
		`var d: double = 2.0; var e: double = 1e9;`,
		`const greeting: string = "hi\nthere";`,
		`typedef Point: record { x: int, y: int };
		 var p: Point = {"x": 1, "y": 2};`,
		`varset io inout { var value: int = 0; }`,
		`function fib(n: int): int {
			if (n < 2) { return n; }
			return fib(n - 1) + fib(n - 2);
		 }
		 print fib(10);`,
		`var total: int = 0;
		 for (var i: int = 0; i < 10; i++) { total += i; }
		 foreach (x in [1, 2, 3]) { total += x; }
		 while (total > 100) { total--; }
		 do { total++; } while (total < 0);`,
		`try { raise "x"; } catch (e) { print e.message; }`,
		`var r: json = call json.parse("{\"a\": [1, 2.5, null, true]}");`,
		`var q: queue<int>; var m: map<int, string[]>;`,
		`print 1 + 2 * 3 - -4;
		 print true && false || !true;
		 print "n=" + 42;
		 print (1 < 2) ? "yes" : "no";`,
	}

	for _, source := range sources {
		prog1, _, err := Parse(source)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", source, err)
		}
		printed1 := ast.Print(prog1)

		prog2, _, err := Parse(printed1)
		if err != nil {
			t.Fatalf("re-Parse of printed form failed: %v\nprinted:\n%s", err, printed1)
		}
		printed2 := ast.Print(prog2)

		if printed1 != printed2 {
			t.Errorf("round trip not stable:\nfirst:\n%s\nsecond:\n%s", printed1, printed2)
		}
	}
}
