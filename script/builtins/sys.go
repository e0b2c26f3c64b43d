// File: sys.go
// Title: System Builtins
// Description: The sys namespace: environment variables, wall-clock time,
//              cancellable sleep, unique identifiers, and direct writes to
//              the script output. sleep honours the run context so a stopped
//              engine never waits the timer out.

package builtins

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/eblang/ebscript/script/registry"
	"github.com/eblang/ebscript/script/types"
)

// RegisterSys registers the sys namespace
func RegisterSys(reg *registry.Registry) error {
	handlers := map[string]registry.Handler{
		"sys.env":   sysEnv,
		"sys.now":   sysNow,
		"sys.sleep": sysSleep,
		"sys.uuid":  sysUUID,
		"sys.write": sysWrite,
	}
	for name, handler := range handlers {
		if err := reg.Register(name, handler); err != nil {
			return err
		}
	}
	return nil
}

func sysEnv(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("sys.env", args, 1); err != nil {
		return nil, err
	}
	name, err := argString("sys.env", args, 0)
	if err != nil {
		return nil, err
	}
	return os.Getenv(name), nil
}

// sysNow returns the current time as epoch milliseconds
func sysNow(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("sys.now", args, 0); err != nil {
		return nil, err
	}
	return time.Now().UnixMilli(), nil
}

// sysSleep pauses for the given milliseconds, waking early on cancellation
func sysSleep(ctx *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("sys.sleep", args, 1); err != nil {
		return nil, err
	}
	millis, err := argInt("sys.sleep", args, 0)
	if err != nil {
		return nil, err
	}
	if millis < 0 {
		return nil, registry.Hostf("sys.sleep: duration must not be negative, got %d", millis)
	}

	timer := time.NewTimer(time.Duration(millis) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil, nil
	case <-ctx.Ctx.Done():
		return nil, registry.WrapHost("sleep interrupted", ctx.Ctx.Err())
	}
}

func sysUUID(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("sys.uuid", args, 0); err != nil {
		return nil, err
	}
	return uuid.NewString(), nil
}

// sysWrite writes the stringified value to the script output without a
// trailing newline
func sysWrite(ctx *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("sys.write", args, 1); err != nil {
		return nil, err
	}
	if _, err := fmt.Fprint(ctx.Output, types.Stringify(args[0])); err != nil {
		return nil, registry.WrapHost("output write failed", err)
	}
	return nil, nil
}
