// File: engine.go
// Title: Script Engine Facade
// Description: Public entry point for hosts: parse a source unit, construct an
//              engine around it, run it, and interact with it afterwards. All
//              script execution is serialized onto one dispatch goroutine
//              owned by the engine; the program run, submitted callbacks, and
//              host variable access flow through a single FIFO job queue, so
//              no two script fragments ever execute concurrently. Builtins
//              with their own asynchrony re-enter exclusively through
//              SubmitCallback from their own goroutines.

package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/eblang/ebscript/core/config"
	eberror "github.com/eblang/ebscript/core/error"
	"github.com/eblang/ebscript/core/log"
	"github.com/eblang/ebscript/script/ast"
	"github.com/eblang/ebscript/script/interp"
	"github.com/eblang/ebscript/script/lexer"
	"github.com/eblang/ebscript/script/parser"
	"github.com/eblang/ebscript/script/registry"
	"github.com/eblang/ebscript/script/types"
)

// Unit is a parsed compilation unit: the program tree plus the type registry
// populated by its typedef declarations
type Unit struct {
	Program *ast.Program
	Types   *types.Registry
}

// Parse compiles a source text into a Unit using the default limits
func Parse(source string) (*Unit, error) {
	def := config.Default()
	return ParseWithConfig(source, &def)
}

// ParseWithConfig compiles a source text into a Unit, enforcing the
// configured source size and type nesting limits
func ParseWithConfig(source string, cfg *config.EngineConfig) (*Unit, error) {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	p := parser.New(parser.Options{
		MaxInputLength: cfg.MaxSourceBytes,
		Types:          types.NewRegistryWithLimit(cfg.MaxTypeNesting),
	})
	prog, err := p.Parse(source)
	if err != nil {
		return nil, wrapBoundary(err, "parse failed")
	}
	return &Unit{Program: prog, Types: p.Types()}, nil
}

// Options configures an Engine
type Options struct {
	// Registry holds the host builtins; it is frozen on the first Run
	Registry *registry.Registry

	// Logger defaults to the process logger
	Logger *log.Logger

	// Config supplies resource limits; defaults to config.Default()
	Config *config.EngineConfig

	// Output receives print output; defaults to os.Stdout
	Output io.Writer
}

// job is one unit of serialized work on the dispatch goroutine
type job struct {
	fn   func()
	done chan struct{}
}

// Engine executes one compilation unit. Engines are single-shot: one Run per
// engine, with callbacks and variable access available while it lives.
type Engine struct {
	logger   *log.Logger
	cfg      *config.EngineConfig
	builtins *registry.Registry
	interp   *interp.Interpreter
	unit     *Unit

	jobs chan job
	quit chan struct{}

	mu     sync.Mutex
	ran    bool
	closed bool
	runCtx context.Context
	cancel context.CancelFunc
}

// Result carries the outcome of a completed run
type Result struct {
	// Value is the top-level return value, nil when the script falls off the end
	Value types.Value

	// Duration is the wall-clock execution time
	Duration time.Duration
}

// New builds an engine around a parsed unit
func New(unit *Unit, opts Options) (*Engine, error) {
	if unit == nil || unit.Program == nil {
		return nil, eberror.New("engine needs a parsed unit").WithCode(eberror.CodeValidationFailed)
	}
	if opts.Logger == nil {
		opts.Logger = log.GetDefault()
	}
	if opts.Config == nil {
		def := config.Default()
		opts.Config = &def
	}
	if opts.Registry == nil {
		opts.Registry = registry.New(opts.Logger)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	e := &Engine{
		logger:   opts.Logger.WithField("component", "engine"),
		cfg:      opts.Config,
		builtins: opts.Registry,
		unit:     unit,
		jobs:     make(chan job, opts.Config.CallbackQueueSize),
		quit:     make(chan struct{}),
	}

	e.interp = interp.New(interp.Options{
		Logger:       opts.Logger,
		Builtins:     opts.Registry,
		Types:        unit.Types,
		Output:       opts.Output,
		MaxCallDepth: opts.Config.MaxCallDepth,
	})
	// Builtins run on the dispatch goroutine already, so their variable
	// access goes straight to the environment; only external callers take
	// the job-queue detour.
	e.interp.SetSubmitter(e)
	e.interp.SetVarAccess(&directVars{engine: e})

	go e.dispatch()
	return e, nil
}

// dispatch is the single goroutine that owns the interpreter
func (e *Engine) dispatch() {
	for {
		select {
		case j := <-e.jobs:
			j.fn()
			close(j.done)
		case <-e.quit:
			return
		}
	}
}

// submit enqueues work and blocks until it has run
func (e *Engine) submit(fn func()) error {
	j := job{fn: fn, done: make(chan struct{})}
	select {
	case e.jobs <- j:
	case <-e.quit:
		return eberror.New("engine is closed").WithCode(eberror.CodeValidationFailed)
	}
	select {
	case <-j.done:
		return nil
	case <-e.quit:
		return eberror.New("engine is closed").WithCode(eberror.CodeValidationFailed)
	}
}

// Run executes the program to completion. Initial bindings are written by
// dotted path (varSetName.varName) before execution starts, so "in"-scoped
// varsets accept them. Run may be called once per engine.
func (e *Engine) Run(ctx context.Context, initialBindings map[string]types.Value) (*Result, error) {
	e.mu.Lock()
	if e.ran {
		e.mu.Unlock()
		return nil, eberror.New("engine has already run").WithCode(eberror.CodeValidationFailed)
	}
	e.ran = true
	runCtx, cancel := context.WithCancel(ctx)
	e.runCtx = runCtx
	e.cancel = cancel
	e.mu.Unlock()

	e.builtins.Freeze()

	var (
		value  types.Value
		runErr error
	)
	start := time.Now()
	submitErr := e.submit(func() {
		env := e.interp.Env()

		// Varsets come into existence as their declarations execute, so the
		// initial bindings are staged and consumed declaration by declaration.
		for path, v := range initialBindings {
			if runErr = env.StageBinding(path, v); runErr != nil {
				return
			}
		}
		env.Start()
		value, runErr = e.interp.Run(runCtx, e.unit.Program)
	})
	if submitErr != nil {
		return nil, submitErr
	}

	duration := time.Since(start)
	if runErr != nil {
		e.logger.ErrorWithErr("script run failed", runErr, log.Fields{
			"duration": duration.String(),
		})
		return nil, wrapBoundary(runErr, "script run failed")
	}

	e.logger.Info("script run completed", log.Fields{
		"duration": duration.String(),
	})
	return &Result{Value: value, Duration: duration}, nil
}

// SubmitCallback queues an invocation of a declared script function for
// serialized execution and blocks until it completes. Safe to call from any
// goroutine except the dispatch goroutine itself.
func (e *Engine) SubmitCallback(functionName string, args ...types.Value) (types.Value, error) {
	var (
		value types.Value
		cbErr error
	)
	err := e.submit(func() {
		ctx := e.callbackContext()
		value, cbErr = e.interp.CallFunction(ctx, functionName, args)
	})
	if err != nil {
		return nil, err
	}
	if cbErr != nil {
		return nil, wrapBoundary(cbErr, fmt.Sprintf("callback %q failed", functionName))
	}
	return value, nil
}

// GetVar reads a script variable by dotted path (varSetName.varName),
// serialized with script execution
func (e *Engine) GetVar(path string) (types.Value, error) {
	var (
		value  types.Value
		getErr error
	)
	err := e.submit(func() {
		value, getErr = e.interp.Env().HostGet(path)
	})
	if err != nil {
		return nil, err
	}
	if getErr != nil {
		return nil, wrapBoundary(getErr, "variable read failed")
	}
	return value, nil
}

// SetVar writes a script variable by dotted path, enforcing varset scopes and
// converting the value to the declared type
func (e *Engine) SetVar(path string, v types.Value) error {
	var setErr error
	err := e.submit(func() {
		setErr = e.interp.Env().HostSet(path, v, e.unit.Types)
	})
	if err != nil {
		return err
	}
	if setErr != nil {
		return wrapBoundary(setErr, "variable write failed")
	}
	return nil
}

// VisibleVarSets enumerates the varsets exposed to the host
func (e *Engine) VisibleVarSets() ([]string, error) {
	var names []string
	err := e.submit(func() {
		names = e.interp.Env().VisibleVarSets()
	})
	return names, err
}

// Stop requests cooperative cancellation of the running script. The script
// observes it at the next loop back-edge or call boundary.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// Close stops the dispatch goroutine. Pending submissions complete; later
// ones fail. Close is idempotent.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	if e.cancel != nil {
		e.cancel()
	}
	close(e.quit)
}

// callbackContext returns the run context while a run is active, falling back
// to the background context for post-run callbacks
func (e *Engine) callbackContext() context.Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.runCtx != nil && e.runCtx.Err() == nil {
		return e.runCtx
	}
	return context.Background()
}

// directVars gives builtins variable access without re-entering the job
// queue; they already execute on the dispatch goroutine.
type directVars struct {
	engine *Engine
}

func (d *directVars) GetVar(path string) (types.Value, error) {
	return d.engine.interp.Env().HostGet(path)
}

func (d *directVars) SetVar(path string, v types.Value) error {
	return d.engine.interp.Env().HostSet(path, v, d.engine.unit.Types)
}

// wrapBoundary attaches an error code for the host-facing surface while
// keeping the typed cause reachable through Unwrap
func wrapBoundary(err error, message string) error {
	return eberror.Wrap(err, message).WithCode(codeFor(err))
}

// codeFor maps typed script errors onto boundary error codes
func codeFor(err error) eberror.Code {
	var (
		lexErr     *lexer.LexError
		parseErr   *parser.ParseError
		typeErr    *types.TypeError
		scopeErr   *interp.ScopeViolationError
		runErr     *interp.InterpreterError
		unknownErr *registry.UnknownBuiltinError
		hostErr    *registry.HostError
	)
	switch {
	case errors.As(err, &lexErr):
		return eberror.CodeLexError
	case errors.As(err, &parseErr):
		return eberror.CodeParseError
	case errors.As(err, &typeErr):
		return eberror.CodeTypeError
	case errors.As(err, &scopeErr):
		return eberror.CodeScopeViolation
	case errors.As(err, &unknownErr):
		return eberror.CodeUnknownBuiltin
	case errors.As(err, &hostErr):
		return eberror.CodeHostError
	case errors.As(err, &runErr):
		return eberror.CodeRuntimeError
	default:
		return eberror.CodeInternal
	}
}
