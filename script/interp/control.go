// File: control.go
// Title: Control-Flow Results and Runtime Errors
// Description: Statement evaluation returns an explicit control-flow result
//              (Normal, Return with value, Break, Continue) instead of using
//              panics, keeping non-local control flow cheap and explicit.
//              Also defines the runtime error types: InterpreterError for
//              faults carrying a source position, and ScopeViolationError for
//              illegal reads/writes against varset scopes.

package interp

import (
	"fmt"

	"github.com/eblang/ebscript/script/ast"
	"github.com/eblang/ebscript/script/types"
)

// flowKind discriminates statement evaluation outcomes
type flowKind int

const (
	flowNormal flowKind = iota
	flowReturn
	flowBreak
	flowContinue
)

// flow is the control-flow result of evaluating a statement
type flow struct {
	kind  flowKind
	value types.Value // return value for flowReturn
}

var normalFlow = flow{kind: flowNormal}

// InterpreterError is a runtime fault: arity mismatch, null access, index out
// of range, divide by zero, cancelled execution, or a re-wrapped host failure.
// It carries the source position of the failing node.
type InterpreterError struct {
	Message string
	Line    int
	Column  int
	Cause   error
	// Raised marks errors produced by a script-level raise statement
	Raised bool
}

// Error implements the error interface
func (e *InterpreterError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("runtime error at line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("runtime error: %s", e.Message)
}

// Unwrap returns the underlying cause
func (e *InterpreterError) Unwrap() error {
	return e.Cause
}

// runtimeErrorf builds an InterpreterError at a node's position
func runtimeErrorf(pos ast.Position, format string, args ...interface{}) *InterpreterError {
	return &InterpreterError{
		Message: fmt.Sprintf(format, args...),
		Line:    pos.Line,
		Column:  pos.Column,
	}
}

// ScopeViolationError is raised by an illegal read or write against a
// varset's declared scope.
type ScopeViolationError struct {
	VarSet  string
	Var     string
	Message string
}

// Error implements the error interface
func (e *ScopeViolationError) Error() string {
	return fmt.Sprintf("scope violation on %s.%s: %s", e.VarSet, e.Var, e.Message)
}
