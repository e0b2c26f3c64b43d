// File: interp.go
// Title: Tree-Walking Interpreter (statements)
// Description: Executes an AST against the variable environment, one
//              evaluation rule per node kind. Statement execution returns an
//              explicit control-flow result; return, break, and continue are
//              signals, never panics. Cooperative cancellation is checked at
//              loop back-edges and call boundaries, so a host can request a
//              stop between statements; an in-flight builtin call is never
//              forcibly terminated. Expression evaluation lives in eval.go.

package interp

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/eblang/ebscript/core/log"
	"github.com/eblang/ebscript/script/ast"
	"github.com/eblang/ebscript/script/registry"
	"github.com/eblang/ebscript/script/types"
)

// DefaultMaxCallDepth caps function call nesting when no limit is configured
const DefaultMaxCallDepth = 256

// Options configures an Interpreter
type Options struct {
	// Logger receives diagnostic output; defaults to the process logger
	Logger *log.Logger

	// Builtins is the frozen registry of host operations
	Builtins *registry.Registry

	// Types is the registry populated by the parser for this unit
	Types *types.Registry

	// Output receives print statement output; defaults to os.Stdout
	Output io.Writer

	// MaxCallDepth caps script function call nesting
	MaxCallDepth int

	// Submitter is the serialized callback entry point handed to builtins
	Submitter registry.CallbackSubmitter

	// VarAccess is the named-path variable accessor handed to builtins
	VarAccess registry.VarAccessor
}

// Interpreter executes one program against one environment. It is owned by
// exactly one logical thread; the engine serializes all access.
type Interpreter struct {
	env      *Environment
	types    *types.Registry
	builtins *registry.Registry
	logger   *log.Logger
	output   io.Writer

	maxCallDepth int
	submitter    registry.CallbackSubmitter
	varAccess    registry.VarAccessor

	functions map[string]*ast.FunctionDecl
}

// New creates an interpreter with the given options
func New(opts Options) *Interpreter {
	if opts.Logger == nil {
		opts.Logger = log.GetDefault()
	}
	if opts.Types == nil {
		opts.Types = types.NewRegistry()
	}
	if opts.Builtins == nil {
		opts.Builtins = registry.New(opts.Logger)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.MaxCallDepth <= 0 {
		opts.MaxCallDepth = DefaultMaxCallDepth
	}
	return &Interpreter{
		env:          NewEnvironment(),
		types:        opts.Types,
		builtins:     opts.Builtins,
		logger:       opts.Logger.WithField("component", "interp"),
		output:       opts.Output,
		maxCallDepth: opts.MaxCallDepth,
		submitter:    opts.Submitter,
		varAccess:    opts.VarAccess,
	}
}

// Env exposes the environment for host variable access
func (i *Interpreter) Env() *Environment {
	return i.env
}

// Types exposes the unit's type registry
func (i *Interpreter) Types() *types.Registry {
	return i.types
}

// SetSubmitter installs the serialized callback entry point. The engine sets
// this after construction because the engine itself is the submitter.
func (i *Interpreter) SetSubmitter(s registry.CallbackSubmitter) {
	i.submitter = s
}

// SetVarAccess installs the named-path variable accessor for builtins
func (i *Interpreter) SetVarAccess(a registry.VarAccessor) {
	i.varAccess = a
}

// Run executes a program. Function declarations are hoisted so callbacks and
// mutual recursion resolve regardless of declaration order; all other
// statements run sequentially. A top-level return stops execution and its
// value becomes the result.
func (i *Interpreter) Run(ctx context.Context, prog *ast.Program) (types.Value, error) {
	i.functions = make(map[string]*ast.FunctionDecl)
	for _, stmt := range prog.Statements {
		if fn, ok := stmt.(*ast.FunctionDecl); ok {
			key := strings.ToUpper(fn.Name)
			if _, exists := i.functions[key]; exists {
				return nil, runtimeErrorf(fn.Pos(), "function %q already declared", fn.Name)
			}
			i.functions[key] = fn
		}
	}

	// The default varset owns top-level declarations outside varset blocks
	if _, ok := i.env.VarSetByName("main"); !ok {
		if _, err := i.env.DeclareVarSet("main", "visible"); err != nil {
			return nil, err
		}
	}

	for _, stmt := range prog.Statements {
		if _, ok := stmt.(*ast.FunctionDecl); ok {
			continue
		}
		fl, err := i.execStmt(ctx, stmt)
		if err != nil {
			return nil, err
		}
		switch fl.kind {
		case flowReturn:
			return fl.value, nil
		case flowBreak, flowContinue:
			return nil, runtimeErrorf(stmt.Pos(), "break/continue outside a loop")
		}
	}
	return nil, nil
}

// CallFunction invokes a declared script function by name with already-
// evaluated arguments. Used by the engine's serialized callback queue.
func (i *Interpreter) CallFunction(ctx context.Context, name string, args []types.Value) (types.Value, error) {
	fn, ok := i.functions[strings.ToUpper(name)]
	if !ok {
		return nil, &InterpreterError{Message: fmt.Sprintf("unknown function %q", name)}
	}
	return i.callFunction(ctx, fn, args, fn.Pos())
}

// execStmt evaluates one statement and returns its control-flow result
func (i *Interpreter) execStmt(ctx context.Context, stmt ast.Stmt) (flow, error) {
	switch n := stmt.(type) {
	case *ast.VarDecl:
		return normalFlow, i.execVarDecl(ctx, n)

	case *ast.VarSetDecl:
		return normalFlow, i.execVarSetDecl(ctx, n)

	case *ast.TypedefDecl:
		// Registered by the parser; nothing to do at runtime
		return normalFlow, nil

	case *ast.FunctionDecl:
		// Hoisted by Run
		return normalFlow, nil

	case *ast.BlockStmt:
		return i.execBlock(ctx, n)

	case *ast.AssignStmt:
		return normalFlow, i.execAssign(ctx, n)

	case *ast.IncDecStmt:
		return normalFlow, i.execIncDec(ctx, n)

	case *ast.IfStmt:
		return i.execIf(ctx, n)

	case *ast.WhileStmt:
		return i.execWhile(ctx, n)

	case *ast.DoWhileStmt:
		return i.execDoWhile(ctx, n)

	case *ast.ForStmt:
		return i.execFor(ctx, n)

	case *ast.ForeachStmt:
		return i.execForeach(ctx, n)

	case *ast.BreakStmt:
		return flow{kind: flowBreak}, nil

	case *ast.ContinueStmt:
		return flow{kind: flowContinue}, nil

	case *ast.ReturnStmt:
		var value types.Value
		if n.Value != nil {
			v, err := i.evalExpr(ctx, n.Value)
			if err != nil {
				return normalFlow, err
			}
			value = v
		}
		return flow{kind: flowReturn, value: value}, nil

	case *ast.CallStmt:
		_, err := i.evalExpr(ctx, n.Call)
		return normalFlow, err

	case *ast.PrintStmt:
		v, err := i.evalExpr(ctx, n.Value)
		if err != nil {
			return normalFlow, err
		}
		fmt.Fprintln(i.output, types.Stringify(v))
		return normalFlow, nil

	case *ast.TryStmt:
		return i.execTry(ctx, n)

	case *ast.RaiseStmt:
		v, err := i.evalExpr(ctx, n.Value)
		if err != nil {
			return normalFlow, err
		}
		return normalFlow, &InterpreterError{
			Message: types.Stringify(v),
			Line:    n.Position.Line,
			Column:  n.Position.Column,
			Raised:  true,
		}

	default:
		return normalFlow, runtimeErrorf(stmt.Pos(), "unsupported statement")
	}
}

// execVarDecl declares a variable, converting the initializer (or the type's
// default value) to the declared type
func (i *Interpreter) execVarDecl(ctx context.Context, n *ast.VarDecl) error {
	// A staged host binding overrides the initializer; "out" varsets never
	// accept host values
	if n.VarSet != "" {
		if staged, ok := i.env.TakePending(n.VarSet, n.Name); ok {
			if vs, found := i.env.VarSetByName(n.VarSet); found && vs.Scope == "out" {
				return &ScopeViolationError{
					VarSet:  n.VarSet,
					Var:     n.Name,
					Message: "variable in an \"out\"-scoped varset is read-only to the host",
				}
			}
			converted, err := i.types.Convert(n.Type, staged)
			if err != nil {
				return err
			}
			v := &Var{Name: n.Name, Type: n.Type, Value: converted, Const: n.Const, VarSet: n.VarSet}
			if err := i.env.Define(v); err != nil {
				return runtimeErrorf(n.Position, "%s", err.Error())
			}
			return nil
		}
	}

	var value types.Value
	if n.Init != nil {
		v, err := i.evalExpr(ctx, n.Init)
		if err != nil {
			return err
		}
		converted, err := i.types.Convert(n.Type, v)
		if err != nil {
			return err
		}
		value = converted
	} else {
		v, err := i.defaultValue(n.Type)
		if err != nil {
			return err
		}
		value = v
	}

	v := &Var{
		Name:   n.Name,
		Type:   n.Type,
		Value:  value,
		Const:  n.Const,
		VarSet: n.VarSet,
	}
	if err := i.env.Define(v); err != nil {
		return runtimeErrorf(n.Position, "%s", err.Error())
	}
	return nil
}

// execVarSetDecl declares a varset and its member variables
func (i *Interpreter) execVarSetDecl(ctx context.Context, n *ast.VarSetDecl) error {
	if _, err := i.env.DeclareVarSet(n.Name, n.Scope); err != nil {
		return runtimeErrorf(n.Position, "%s", err.Error())
	}
	for _, decl := range n.Decls {
		if err := i.execVarDecl(ctx, decl); err != nil {
			return err
		}
	}
	return nil
}

// execBlock runs a statement list in a fresh block scope
func (i *Interpreter) execBlock(ctx context.Context, n *ast.BlockStmt) (flow, error) {
	i.env.PushScope()
	defer i.env.PopScope()

	for _, stmt := range n.Statements {
		fl, err := i.execStmt(ctx, stmt)
		if err != nil {
			return normalFlow, err
		}
		if fl.kind != flowNormal {
			return fl, nil
		}
	}
	return normalFlow, nil
}

// execIf evaluates the condition chain
func (i *Interpreter) execIf(ctx context.Context, n *ast.IfStmt) (flow, error) {
	cond, err := i.evalBool(ctx, n.Cond)
	if err != nil {
		return normalFlow, err
	}
	if cond {
		return i.execBlock(ctx, n.Then)
	}
	if n.Else != nil {
		return i.execStmt(ctx, n.Else)
	}
	return normalFlow, nil
}

// execWhile runs a pre-tested loop, checking cancellation at the back-edge
func (i *Interpreter) execWhile(ctx context.Context, n *ast.WhileStmt) (flow, error) {
	for {
		if err := i.checkCancelled(ctx, n.Position); err != nil {
			return normalFlow, err
		}
		cond, err := i.evalBool(ctx, n.Cond)
		if err != nil {
			return normalFlow, err
		}
		if !cond {
			return normalFlow, nil
		}
		fl, err := i.execBlock(ctx, n.Body)
		if err != nil {
			return normalFlow, err
		}
		switch fl.kind {
		case flowBreak:
			return normalFlow, nil
		case flowReturn:
			return fl, nil
		}
	}
}

// execDoWhile runs a post-tested loop
func (i *Interpreter) execDoWhile(ctx context.Context, n *ast.DoWhileStmt) (flow, error) {
	for {
		if err := i.checkCancelled(ctx, n.Position); err != nil {
			return normalFlow, err
		}
		fl, err := i.execBlock(ctx, n.Body)
		if err != nil {
			return normalFlow, err
		}
		switch fl.kind {
		case flowBreak:
			return normalFlow, nil
		case flowReturn:
			return fl, nil
		}
		cond, err := i.evalBool(ctx, n.Cond)
		if err != nil {
			return normalFlow, err
		}
		if !cond {
			return normalFlow, nil
		}
	}
}

// execFor runs a counted loop; the init clause scopes to the loop
func (i *Interpreter) execFor(ctx context.Context, n *ast.ForStmt) (flow, error) {
	i.env.PushScope()
	defer i.env.PopScope()

	if n.Init != nil {
		if _, err := i.execStmt(ctx, n.Init); err != nil {
			return normalFlow, err
		}
	}

	for {
		if err := i.checkCancelled(ctx, n.Position); err != nil {
			return normalFlow, err
		}
		if n.Cond != nil {
			cond, err := i.evalBool(ctx, n.Cond)
			if err != nil {
				return normalFlow, err
			}
			if !cond {
				return normalFlow, nil
			}
		}

		fl, err := i.execBlock(ctx, n.Body)
		if err != nil {
			return normalFlow, err
		}
		switch fl.kind {
		case flowBreak:
			return normalFlow, nil
		case flowReturn:
			return fl, nil
		}

		if n.Post != nil {
			if _, err := i.execStmt(ctx, n.Post); err != nil {
				return normalFlow, err
			}
		}
	}
}

// execForeach iterates arrays and queues by element, maps by key, and
// records by field name
func (i *Interpreter) execForeach(ctx context.Context, n *ast.ForeachStmt) (flow, error) {
	iterable, err := i.evalExpr(ctx, n.Iterable)
	if err != nil {
		return normalFlow, err
	}

	var items []types.Value
	switch v := iterable.(type) {
	case *types.Array:
		items = append(items, v.Elems...)
	case *types.Queue:
		items = append(items, v.Items...)
	case *types.Map:
		items = v.Keys()
	case *types.Record:
		for _, name := range v.Names() {
			items = append(items, name)
		}
	case nil:
		return normalFlow, runtimeErrorf(n.Position, "cannot iterate null")
	default:
		return normalFlow, runtimeErrorf(n.Position, "cannot iterate %s value", types.KindOf(iterable))
	}

	for _, item := range items {
		if err := i.checkCancelled(ctx, n.Position); err != nil {
			return normalFlow, err
		}

		i.env.PushScope()
		loopVar := &Var{Name: n.VarName, Value: item}
		if err := i.env.Define(loopVar); err != nil {
			i.env.PopScope()
			return normalFlow, runtimeErrorf(n.Position, "%s", err.Error())
		}
		fl, err := i.execBlock(ctx, n.Body)
		i.env.PopScope()
		if err != nil {
			return normalFlow, err
		}
		switch fl.kind {
		case flowBreak:
			return normalFlow, nil
		case flowReturn:
			return fl, nil
		}
	}
	return normalFlow, nil
}

// execTry routes InterpreterError (including re-wrapped host failures) into
// the handler with the error bound as a record {message, code}. Type and
// scope errors are not interceptable.
func (i *Interpreter) execTry(ctx context.Context, n *ast.TryStmt) (flow, error) {
	fl, err := i.execBlock(ctx, n.Body)
	if err == nil {
		return fl, nil
	}

	rtErr, ok := err.(*InterpreterError)
	if !ok {
		return normalFlow, err
	}
	// A cancelled execution must not be swallowed by a handler
	if ctx.Err() != nil {
		return normalFlow, err
	}

	errRecord := types.NewRecord()
	errRecord.Set("message", rtErr.Message)
	code := "RUNTIME_ERROR"
	if _, isHost := rtErr.Cause.(*registry.HostError); isHost {
		code = "HOST_ERROR"
	}
	errRecord.Set("code", code)

	i.env.PushScope()
	defer i.env.PopScope()
	if defineErr := i.env.Define(&Var{Name: n.ErrName, Value: errRecord}); defineErr != nil {
		return normalFlow, runtimeErrorf(n.Position, "%s", defineErr.Error())
	}
	return i.execBlock(ctx, n.Handler)
}

// checkCancelled implements cooperative cancellation
func (i *Interpreter) checkCancelled(ctx context.Context, pos ast.Position) error {
	if ctx == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return &InterpreterError{
			Message: "execution cancelled",
			Line:    pos.Line,
			Column:  pos.Column,
			Cause:   err,
		}
	}
	return nil
}

// defaultValue builds the zero value for a declared type
func (i *Interpreter) defaultValue(t *types.Type) (types.Value, error) {
	resolved, err := i.types.Resolve(t)
	if err != nil {
		return nil, err
	}
	switch resolved.Kind {
	case types.KindInt:
		return int64(0), nil
	case types.KindDouble:
		return float64(0), nil
	case types.KindString:
		return "", nil
	case types.KindBool:
		return false, nil
	case types.KindArray:
		if resolved.Fixed {
			return types.NewFixedArray(resolved.Capacity), nil
		}
		return types.NewArray(), nil
	case types.KindQueue:
		return types.NewQueue(), nil
	case types.KindMap:
		return types.NewMap(), nil
	case types.KindRecord:
		return types.NewRecord(), nil
	default:
		// json, handle
		return nil, nil
	}
}
