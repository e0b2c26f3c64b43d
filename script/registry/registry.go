// File: registry.go
// Title: Builtin Registry
// Description: Holds the mapping of qualified names (namespace.function,
//              case-insensitive) to host handler implementations. The registry
//              is populated once before any script runs, then frozen; it is
//              injected into each interpreter instance rather than acting as an
//              ambient singleton, so independent instances can carry different
//              registries. This is the sole seam through which host
//              capabilities are attached.

package registry

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/eblang/ebscript/core/log"
	"github.com/eblang/ebscript/script/types"
)

// CallbackSubmitter queues an externally triggered invocation for serialized
// execution on the script's logical thread. Builtins with their own
// asynchrony must re-enter exclusively through this interface.
type CallbackSubmitter interface {
	SubmitCallback(functionName string, args ...types.Value) (types.Value, error)
}

// VarAccessor reads and writes script variables by dotted path
// (varSetName.varName), funneled through the engine's serialized entry point.
type VarAccessor interface {
	GetVar(path string) (types.Value, error)
	SetVar(path string, v types.Value) error
}

// Context carries the execution context a handler receives alongside its
// evaluated arguments.
type Context struct {
	// Ctx is the cancellation context of the running execution unit
	Ctx context.Context

	// Logger is tagged with the qualified builtin name
	Logger *log.Logger

	// Line and Column locate the call site in the source
	Line   int
	Column int

	// Engine is the serialized re-entry point for asynchronous builtins
	Engine CallbackSubmitter

	// Vars exposes named-path variable access
	Vars VarAccessor

	// Output is the script's output writer
	Output io.Writer
}

// Handler implements one builtin operation. It returns a single value
// (nil for void) or an error; host failures should be *HostError so the
// interpreter can re-wrap them.
type Handler func(ctx *Context, args []types.Value) (types.Value, error)

// HostError is an opaque failure raised by a builtin handler. The interpreter
// always re-wraps it before it reaches script-visible error handling.
type HostError struct {
	Message string
	Cause   error
}

// Error implements the error interface
func (e *HostError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *HostError) Unwrap() error {
	return e.Cause
}

// Hostf builds a HostError with a formatted message
func Hostf(format string, args ...interface{}) *HostError {
	return &HostError{Message: fmt.Sprintf(format, args...)}
}

// WrapHost wraps a Go error as a HostError
func WrapHost(message string, cause error) *HostError {
	return &HostError{Message: message, Cause: cause}
}

// UnknownBuiltinError is raised when a call names an unregistered builtin
type UnknownBuiltinError struct {
	Name string
}

// Error implements the error interface; the message contains the qualified
// name exactly as written in source
func (e *UnknownBuiltinError) Error() string {
	return fmt.Sprintf("unknown builtin %q", e.Name)
}

// Registry maps qualified builtin names to handlers
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	frozen   bool
	logger   *log.Logger
}

// New creates an empty builtin registry
func New(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.GetDefault()
	}
	return &Registry{
		handlers: make(map[string]Handler),
		logger:   logger.WithField("component", "registry"),
	}
}

// Register binds a qualified name to a handler. Names are namespace.function,
// matched case-insensitively; collisions and post-freeze registration are
// rejected.
func (r *Registry) Register(qualifiedName string, handler Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("registry is frozen, cannot register %q", qualifiedName)
	}
	if handler == nil {
		return fmt.Errorf("nil handler for %q", qualifiedName)
	}

	namespace, function, ok := splitQualified(qualifiedName)
	if !ok {
		return fmt.Errorf("invalid qualified name %q, want namespace.function", qualifiedName)
	}

	key := normalizeKey(namespace, function)
	if _, exists := r.handlers[key]; exists {
		return fmt.Errorf("builtin %q already registered", qualifiedName)
	}
	r.handlers[key] = handler

	r.logger.Debug("registered builtin", log.Fields{"name": qualifiedName})
	return nil
}

// MustRegister registers a handler and panics on failure; intended for
// process-startup wiring where a collision is a programming error.
func (r *Registry) MustRegister(qualifiedName string, handler Handler) {
	if err := r.Register(qualifiedName, handler); err != nil {
		panic(err)
	}
}

// Freeze makes the registry read-only. Called by the engine before the first
// run; further Register calls fail.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frozen = true
}

// Frozen reports whether the registry is read-only
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.frozen
}

// Lookup resolves a qualified name, matching case-insensitively
func (r *Registry) Lookup(qualifiedName string) (Handler, bool) {
	namespace, function, ok := splitQualified(qualifiedName)
	if !ok {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, found := r.handlers[normalizeKey(namespace, function)]
	return handler, found
}

// Names returns all registered qualified names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, strings.ToLower(name))
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered builtins
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.handlers)
}

func splitQualified(name string) (namespace, function string, ok bool) {
	idx := strings.IndexByte(name, '.')
	if idx <= 0 || idx >= len(name)-1 {
		return "", "", false
	}
	namespace = strings.TrimSpace(name[:idx])
	function = strings.TrimSpace(name[idx+1:])
	if namespace == "" || function == "" || strings.ContainsRune(function, '.') {
		return "", "", false
	}
	return namespace, function, true
}

func normalizeKey(namespace, function string) string {
	return strings.ToUpper(namespace) + "." + strings.ToUpper(function)
}
