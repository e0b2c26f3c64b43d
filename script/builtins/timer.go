// File: timer.go
// Title: Timer Builtins
// Description: The timer namespace: one-shot and repeating timers whose
//              expirations re-enter the script through the serialized
//              callback queue. Cancelling a timer that already fired is a
//              no-op.

package builtins

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eblang/ebscript/core/log"
	"github.com/eblang/ebscript/script/registry"
	"github.com/eblang/ebscript/script/types"
)

// RegisterTimer registers the timer namespace
func RegisterTimer(reg *registry.Registry) error {
	handlers := map[string]registry.Handler{
		"timer.after":  timerAfter,
		"timer.every":  timerEvery,
		"timer.cancel": timerCancel,
	}
	for name, handler := range handlers {
		if err := reg.Register(name, handler); err != nil {
			return err
		}
	}
	return nil
}

// scriptTimer is the payload of a timer handle
type scriptTimer struct {
	mu     sync.Mutex
	stop   func()
	active bool
}

func (t *scriptTimer) cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active {
		t.active = false
		t.stop()
	}
}

// timerAfter fires the named script function once after the given delay
func timerAfter(ctx *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("timer.after", args, 2); err != nil {
		return nil, err
	}
	millis, err := argInt("timer.after", args, 0)
	if err != nil {
		return nil, err
	}
	callback, err := argString("timer.after", args, 1)
	if err != nil {
		return nil, err
	}
	if millis < 0 {
		return nil, registry.Hostf("timer.after: delay must not be negative, got %d", millis)
	}
	if ctx.Engine == nil {
		return nil, registry.Hostf("timer.after: no callback submission point available")
	}

	logger := ctx.Logger
	engine := ctx.Engine
	st := &scriptTimer{active: true}
	t := time.AfterFunc(time.Duration(millis)*time.Millisecond, func() {
		st.cancel()
		if _, err := engine.SubmitCallback(callback); err != nil {
			logger.WarnWithErr("timer callback failed", err, log.Fields{
				"callback": callback,
			})
		}
	})
	st.stop = func() { t.Stop() }
	return &types.Handle{Kind: "timer", ID: uuid.NewString(), Payload: st}, nil
}

// timerEvery fires the named script function repeatedly until cancelled
func timerEvery(ctx *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("timer.every", args, 2); err != nil {
		return nil, err
	}
	millis, err := argInt("timer.every", args, 0)
	if err != nil {
		return nil, err
	}
	callback, err := argString("timer.every", args, 1)
	if err != nil {
		return nil, err
	}
	if millis <= 0 {
		return nil, registry.Hostf("timer.every: interval must be positive, got %d", millis)
	}
	if ctx.Engine == nil {
		return nil, registry.Hostf("timer.every: no callback submission point available")
	}

	logger := ctx.Logger
	engine := ctx.Engine
	ticker := time.NewTicker(time.Duration(millis) * time.Millisecond)
	done := make(chan struct{})
	st := &scriptTimer{active: true, stop: func() {
		ticker.Stop()
		close(done)
	}}
	go func() {
		for {
			select {
			case <-ticker.C:
				if _, err := engine.SubmitCallback(callback); err != nil {
					logger.WarnWithErr("timer callback failed", err, log.Fields{
						"callback": callback,
					})
				}
			case <-done:
				return
			}
		}
	}()
	return &types.Handle{Kind: "timer", ID: uuid.NewString(), Payload: st}, nil
}

func timerCancel(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("timer.cancel", args, 1); err != nil {
		return nil, err
	}
	h, err := argHandle("timer.cancel", args, 0, "timer")
	if err != nil {
		return nil, err
	}
	st, ok := h.Payload.(*scriptTimer)
	if !ok {
		return nil, nil
	}
	st.cancel()
	return nil, nil
}
