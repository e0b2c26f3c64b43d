// File: builtins.go
// Title: Standard Builtin Library
// Description: Registers the host-side standard library into a builtin
//              registry, one namespace per concern: str, math, sys, json,
//              file, db, ws, timer, rand, and col. Also provides the shared
//              argument extraction helpers all handlers use; argument faults
//              are host errors, so scripts can intercept them with try/catch.

package builtins

import (
	"github.com/eblang/ebscript/script/registry"
	"github.com/eblang/ebscript/script/types"
)

// StandardLibrary registers every standard namespace. The registry must not
// be frozen yet.
func StandardLibrary(reg *registry.Registry) error {
	for _, register := range []func(*registry.Registry) error{
		RegisterStr,
		RegisterMath,
		RegisterSys,
		RegisterJSON,
		RegisterFile,
		RegisterDB,
		RegisterWS,
		RegisterTimer,
		RegisterRand,
		RegisterCol,
	} {
		if err := register(reg); err != nil {
			return err
		}
	}
	return nil
}

// wantArgs checks the exact argument count
func wantArgs(name string, args []types.Value, n int) error {
	if len(args) != n {
		return registry.Hostf("%s expects %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

// wantArgsBetween checks an argument count range
func wantArgsBetween(name string, args []types.Value, min, max int) error {
	if len(args) < min || len(args) > max {
		return registry.Hostf("%s expects %d to %d arguments, got %d", name, min, max, len(args))
	}
	return nil
}

// argString extracts a string argument
func argString(name string, args []types.Value, i int) (string, error) {
	s, ok := args[i].(string)
	if !ok {
		return "", registry.Hostf("%s: argument %d must be string, got %s",
			name, i+1, types.KindOf(args[i]).String())
	}
	return s, nil
}

// argInt extracts an int argument, accepting a whole double
func argInt(name string, args []types.Value, i int) (int64, error) {
	switch v := args[i].(type) {
	case int64:
		return v, nil
	case float64:
		if v == float64(int64(v)) {
			return int64(v), nil
		}
	}
	return 0, registry.Hostf("%s: argument %d must be int, got %s",
		name, i+1, types.KindOf(args[i]).String())
}

// argNumber extracts a numeric argument widened to float64
func argNumber(name string, args []types.Value, i int) (float64, error) {
	switch v := args[i].(type) {
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	}
	return 0, registry.Hostf("%s: argument %d must be numeric, got %s",
		name, i+1, types.KindOf(args[i]).String())
}

// argBool extracts a bool argument
func argBool(name string, args []types.Value, i int) (bool, error) {
	b, ok := args[i].(bool)
	if !ok {
		return false, registry.Hostf("%s: argument %d must be bool, got %s",
			name, i+1, types.KindOf(args[i]).String())
	}
	return b, nil
}

// argHandle extracts a handle argument of a given kind
func argHandle(name string, args []types.Value, i int, kind string) (*types.Handle, error) {
	h, ok := args[i].(*types.Handle)
	if !ok {
		return nil, registry.Hostf("%s: argument %d must be handle, got %s",
			name, i+1, types.KindOf(args[i]).String())
	}
	if h.Kind != kind {
		return nil, registry.Hostf("%s: argument %d must be a %s handle, got %s",
			name, i+1, kind, h.Kind)
	}
	return h, nil
}

// argArray extracts an array argument
func argArray(name string, args []types.Value, i int) (*types.Array, error) {
	a, ok := args[i].(*types.Array)
	if !ok {
		return nil, registry.Hostf("%s: argument %d must be array, got %s",
			name, i+1, types.KindOf(args[i]).String())
	}
	return a, nil
}

// argQueue extracts a queue argument
func argQueue(name string, args []types.Value, i int) (*types.Queue, error) {
	q, ok := args[i].(*types.Queue)
	if !ok {
		return nil, registry.Hostf("%s: argument %d must be queue, got %s",
			name, i+1, types.KindOf(args[i]).String())
	}
	return q, nil
}

// argMap extracts a map argument
func argMap(name string, args []types.Value, i int) (*types.Map, error) {
	m, ok := args[i].(*types.Map)
	if !ok {
		return nil, registry.Hostf("%s: argument %d must be map, got %s",
			name, i+1, types.KindOf(args[i]).String())
	}
	return m, nil
}

// argRecord extracts a record argument
func argRecord(name string, args []types.Value, i int) (*types.Record, error) {
	r, ok := args[i].(*types.Record)
	if !ok {
		return nil, registry.Hostf("%s: argument %d must be record, got %s",
			name, i+1, types.KindOf(args[i]).String())
	}
	return r, nil
}
