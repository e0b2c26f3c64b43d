// File: environment.go
// Title: Variable Environment
// Description: Implements the lexically nested scope stack: one process-
//              lifetime global scope, one scope per active function call, one
//              per active block, resolved innermost-first with shadowing
//              permitted. Function-call scopes form a barrier so locals of the
//              caller are invisible to the callee. Top-level variables belong
//              to varsets whose scope tag governs host read/write legality.
//              The environment is exclusively owned by one interpreter
//              instance and is not safe for concurrent use.

package interp

import (
	"fmt"
	"strings"

	"github.com/eblang/ebscript/script/types"
)

// Var is a declared variable slot
type Var struct {
	Name  string
	Type  *types.Type
	Value types.Value
	Const bool

	// VarSet names the owning varset for top-level variables, "" for locals
	VarSet string
}

// VarSet groups top-level variables under a host-visibility scope tag
type VarSet struct {
	Name  string
	Scope string // visible, internal, in, out, inout

	names []string
	vars  map[string]*Var
}

// newVarSet creates an empty varset
func newVarSet(name, scope string) *VarSet {
	return &VarSet{Name: name, Scope: scope, vars: make(map[string]*Var)}
}

// add registers a variable in declaration order
func (vs *VarSet) add(v *Var) {
	key := strings.ToUpper(v.Name)
	if _, exists := vs.vars[key]; !exists {
		vs.names = append(vs.names, v.Name)
	}
	vs.vars[key] = v
}

// Lookup finds a variable by name, matching case-insensitively
func (vs *VarSet) Lookup(name string) (*Var, bool) {
	v, ok := vs.vars[strings.ToUpper(name)]
	return v, ok
}

// VarNames returns the variable names in declaration order
func (vs *VarSet) VarNames() []string {
	out := make([]string, len(vs.names))
	copy(out, vs.names)
	return out
}

// scope is one level of the environment stack
type scope struct {
	vars map[string]*Var

	// barrier marks function-call scopes: name resolution stops here and
	// falls through to the global scope only
	barrier bool
}

func newScope(barrier bool) *scope {
	return &scope{vars: make(map[string]*Var), barrier: barrier}
}

// CallFrame records one active function invocation for diagnostics and
// depth limiting
type CallFrame struct {
	Function string
	Line     int
}

// Environment holds all variable state for one executing script instance
type Environment struct {
	scopes []*scope // scopes[0] is the global scope, innermost last

	varSets     map[string]*VarSet // keyed by upper-cased name
	varSetNames []string

	callStack []CallFrame

	// started flips when execution begins; host writes to "in" varsets and
	// script writes to them are judged against it
	started bool

	// pending holds host-supplied initial bindings keyed by upper-cased
	// "VARSET.VAR", consumed as the declarations execute
	pending map[string]types.Value
}

// NewEnvironment creates an environment with an empty global scope
func NewEnvironment() *Environment {
	return &Environment{
		scopes:  []*scope{newScope(false)},
		varSets: make(map[string]*VarSet),
	}
}

// StageBinding records a host-supplied initial value for a variable that will
// be declared during the run. Staging happens before execution starts, so
// "in"-scoped varsets accept these values.
func (e *Environment) StageBinding(path string, v types.Value) error {
	parts := strings.Split(path, ".")
	if len(parts) == 3 {
		parts = parts[1:]
	}
	if len(parts) != 2 {
		return fmt.Errorf("invalid variable path %q, want varSetName.varName", path)
	}
	if e.pending == nil {
		e.pending = make(map[string]types.Value)
	}
	e.pending[strings.ToUpper(parts[0])+"."+strings.ToUpper(parts[1])] = v
	return nil
}

// TakePending consumes a staged binding for a variable, if one exists
func (e *Environment) TakePending(varSet, varName string) (types.Value, bool) {
	if e.pending == nil {
		return nil, false
	}
	key := strings.ToUpper(varSet) + "." + strings.ToUpper(varName)
	v, ok := e.pending[key]
	if ok {
		delete(e.pending, key)
	}
	return v, ok
}

// Start marks the beginning of execution for varset scope enforcement
func (e *Environment) Start() {
	e.started = true
}

// Started reports whether execution has begun
func (e *Environment) Started() bool {
	return e.started
}

// PushScope enters a block scope
func (e *Environment) PushScope() {
	e.scopes = append(e.scopes, newScope(false))
}

// PushFunctionScope enters a function-call scope that hides caller locals
func (e *Environment) PushFunctionScope() {
	e.scopes = append(e.scopes, newScope(true))
}

// PopScope leaves the innermost scope. The global scope is never popped.
func (e *Environment) PopScope() {
	if len(e.scopes) > 1 {
		e.scopes = e.scopes[:len(e.scopes)-1]
	}
}

// Define declares a variable in the innermost scope. Redeclaration within
// the same scope is rejected; shadowing an outer scope is allowed.
func (e *Environment) Define(v *Var) error {
	inner := e.scopes[len(e.scopes)-1]
	key := strings.ToUpper(v.Name)
	if _, exists := inner.vars[key]; exists {
		return fmt.Errorf("variable %q already declared in this scope", v.Name)
	}
	inner.vars[key] = v

	// Top-level variables are tracked in their varset for host access
	if v.VarSet != "" && len(e.scopes) == 1 {
		vs, ok := e.varSets[strings.ToUpper(v.VarSet)]
		if !ok {
			return fmt.Errorf("varset %q not declared", v.VarSet)
		}
		vs.add(v)
	}
	return nil
}

// DeclareVarSet registers a varset. Redeclaration is rejected.
func (e *Environment) DeclareVarSet(name, scopeTag string) (*VarSet, error) {
	key := strings.ToUpper(name)
	if _, exists := e.varSets[key]; exists {
		return nil, fmt.Errorf("varset %q already declared", name)
	}
	vs := newVarSet(name, scopeTag)
	e.varSets[key] = vs
	e.varSetNames = append(e.varSetNames, name)
	return vs, nil
}

// VarSetByName finds a varset, matching case-insensitively
func (e *Environment) VarSetByName(name string) (*VarSet, bool) {
	vs, ok := e.varSets[strings.ToUpper(name)]
	return vs, ok
}

// VisibleVarSets returns the names of varsets exposed to host enumeration;
// "internal" varsets are omitted
func (e *Environment) VisibleVarSets() []string {
	var out []string
	for _, name := range e.varSetNames {
		vs := e.varSets[strings.ToUpper(name)]
		if vs.Scope != "internal" {
			out = append(out, name)
		}
	}
	return out
}

// Lookup resolves a name innermost-first. Function-call scopes act as a
// barrier: resolution inside a call sees the call's scopes and the global
// scope, never the caller's locals.
func (e *Environment) Lookup(name string) (*Var, bool) {
	key := strings.ToUpper(name)
	for i := len(e.scopes) - 1; i >= 0; i-- {
		s := e.scopes[i]
		if v, ok := s.vars[key]; ok {
			return v, true
		}
		if s.barrier {
			break
		}
	}
	if v, ok := e.scopes[0].vars[key]; ok {
		return v, true
	}
	return nil, false
}

// PushCall records a function invocation
func (e *Environment) PushCall(frame CallFrame) {
	e.callStack = append(e.callStack, frame)
}

// PopCall removes the innermost invocation record
func (e *Environment) PopCall() {
	if len(e.callStack) > 0 {
		e.callStack = e.callStack[:len(e.callStack)-1]
	}
}

// CallDepth returns the number of active function invocations
func (e *Environment) CallDepth() int {
	return len(e.callStack)
}

// CheckScriptWrite enforces varset scope rules for a script-side write.
// An "in"-scoped varset rejects script writes once execution has started.
func (e *Environment) CheckScriptWrite(v *Var) error {
	if v.VarSet == "" {
		return nil
	}
	vs, ok := e.varSets[strings.ToUpper(v.VarSet)]
	if !ok {
		return nil
	}
	if vs.Scope == "in" && e.started {
		return &ScopeViolationError{
			VarSet:  vs.Name,
			Var:     v.Name,
			Message: "variable in an \"in\"-scoped varset is read-only to the script after execution starts",
		}
	}
	return nil
}

// HostGet reads a variable by dotted path (varSetName.varName). Reads are
// always permitted regardless of scope.
func (e *Environment) HostGet(path string) (types.Value, error) {
	_, v, err := e.resolvePath(path)
	if err != nil {
		return nil, err
	}
	return v.Value, nil
}

// HostSet writes a variable by dotted path, enforcing the varset's scope:
// "out" varsets are host-read-only; "in" varsets accept host writes only
// before execution starts. The value is converted to the declared type.
func (e *Environment) HostSet(path string, value types.Value, reg *types.Registry) error {
	vs, v, err := e.resolvePath(path)
	if err != nil {
		return err
	}

	switch vs.Scope {
	case "out":
		return &ScopeViolationError{
			VarSet:  vs.Name,
			Var:     v.Name,
			Message: "variable in an \"out\"-scoped varset is read-only to the host",
		}
	case "in":
		if e.started {
			return &ScopeViolationError{
				VarSet:  vs.Name,
				Var:     v.Name,
				Message: "variable in an \"in\"-scoped varset accepts host writes only before execution starts",
			}
		}
	}

	converted, err := reg.Convert(v.Type, value)
	if err != nil {
		return err
	}
	v.Value = converted
	return nil
}

// resolvePath parses "varSetName.varName", tolerating an extra leading
// container segment
func (e *Environment) resolvePath(path string) (*VarSet, *Var, error) {
	parts := strings.Split(path, ".")
	if len(parts) == 3 {
		// container.varSetName.varName: drop the container segment
		parts = parts[1:]
	}
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("invalid variable path %q, want varSetName.varName", path)
	}

	vs, ok := e.VarSetByName(parts[0])
	if !ok {
		return nil, nil, fmt.Errorf("unknown varset %q", parts[0])
	}
	v, ok := vs.Lookup(parts[1])
	if !ok {
		return nil, nil, fmt.Errorf("unknown variable %q in varset %q", parts[1], parts[0])
	}
	return vs, v, nil
}
