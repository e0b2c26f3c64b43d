// File: math.go
// Title: Math Builtins
// Description: The math namespace. Functions that are closed over the
//              integers (abs, min, max) preserve int arguments; the
//              transcendental and rounding functions work in double.

package builtins

import (
	"math"

	"github.com/eblang/ebscript/script/registry"
	"github.com/eblang/ebscript/script/types"
)

// RegisterMath registers the math namespace
func RegisterMath(reg *registry.Registry) error {
	handlers := map[string]registry.Handler{
		"math.abs":   mathAbs,
		"math.min":   mathMin,
		"math.max":   mathMax,
		"math.floor": mathFloor,
		"math.ceil":  mathCeil,
		"math.round": mathRound,
		"math.sqrt":  mathSqrt,
		"math.pow":   mathPow,
		"math.pi":    mathPi,
	}
	for name, handler := range handlers {
		if err := reg.Register(name, handler); err != nil {
			return err
		}
	}
	return nil
}

func mathAbs(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("math.abs", args, 1); err != nil {
		return nil, err
	}
	if n, ok := args[0].(int64); ok {
		if n < 0 {
			return -n, nil
		}
		return n, nil
	}
	f, err := argNumber("math.abs", args, 0)
	if err != nil {
		return nil, err
	}
	return math.Abs(f), nil
}

func mathMin(_ *registry.Context, args []types.Value) (types.Value, error) {
	return pickExtreme("math.min", args, true)
}

func mathMax(_ *registry.Context, args []types.Value) (types.Value, error) {
	return pickExtreme("math.max", args, false)
}

// pickExtreme compares two numbers, keeping int when both sides are int
func pickExtreme(name string, args []types.Value, min bool) (types.Value, error) {
	if err := wantArgs(name, args, 2); err != nil {
		return nil, err
	}
	li, lok := args[0].(int64)
	ri, rok := args[1].(int64)
	if lok && rok {
		if (min && li <= ri) || (!min && li >= ri) {
			return li, nil
		}
		return ri, nil
	}
	lf, err := argNumber(name, args, 0)
	if err != nil {
		return nil, err
	}
	rf, err := argNumber(name, args, 1)
	if err != nil {
		return nil, err
	}
	if (min && lf <= rf) || (!min && lf >= rf) {
		return lf, nil
	}
	return rf, nil
}

func mathFloor(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("math.floor", args, 1); err != nil {
		return nil, err
	}
	f, err := argNumber("math.floor", args, 0)
	if err != nil {
		return nil, err
	}
	return int64(math.Floor(f)), nil
}

func mathCeil(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("math.ceil", args, 1); err != nil {
		return nil, err
	}
	f, err := argNumber("math.ceil", args, 0)
	if err != nil {
		return nil, err
	}
	return int64(math.Ceil(f)), nil
}

func mathRound(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("math.round", args, 1); err != nil {
		return nil, err
	}
	f, err := argNumber("math.round", args, 0)
	if err != nil {
		return nil, err
	}
	return int64(math.Round(f)), nil
}

func mathSqrt(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("math.sqrt", args, 1); err != nil {
		return nil, err
	}
	f, err := argNumber("math.sqrt", args, 0)
	if err != nil {
		return nil, err
	}
	if f < 0 {
		return nil, registry.Hostf("math.sqrt: argument must not be negative, got %g", f)
	}
	return math.Sqrt(f), nil
}

func mathPow(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("math.pow", args, 2); err != nil {
		return nil, err
	}
	base, err := argNumber("math.pow", args, 0)
	if err != nil {
		return nil, err
	}
	exp, err := argNumber("math.pow", args, 1)
	if err != nil {
		return nil, err
	}
	return math.Pow(base, exp), nil
}

func mathPi(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("math.pi", args, 0); err != nil {
		return nil, err
	}
	return math.Pi, nil
}
