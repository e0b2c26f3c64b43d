// File: ws.go
// Title: WebSocket Builtins
// Description: The ws namespace: connect, send, listen, and close. listen
//              starts a reader goroutine per connection; every received text
//              frame re-enters the script exclusively through the engine's
//              serialized callback queue, so message handlers never overlap
//              the main program or each other.

package builtins

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/eblang/ebscript/core/log"
	"github.com/eblang/ebscript/script/registry"
	"github.com/eblang/ebscript/script/types"
)

// RegisterWS registers the ws namespace
func RegisterWS(reg *registry.Registry) error {
	handlers := map[string]registry.Handler{
		"ws.connect": wsConnect,
		"ws.send":    wsSend,
		"ws.listen":  wsListen,
		"ws.close":   wsClose,
	}
	for name, handler := range handlers {
		if err := reg.Register(name, handler); err != nil {
			return err
		}
	}
	return nil
}

// wsConn is the payload of a ws handle
type wsConn struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	listening bool
	closed    bool
}

func wsConnect(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("ws.connect", args, 1); err != nil {
		return nil, err
	}
	url, err := argString("ws.connect", args, 0)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, registry.WrapHost("ws.connect failed", err)
	}
	return &types.Handle{
		Kind:    "ws",
		ID:      uuid.NewString(),
		Payload: &wsConn{conn: conn},
	}, nil
}

func wsSend(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("ws.send", args, 2); err != nil {
		return nil, err
	}
	wc, err := wsPayload("ws.send", args)
	if err != nil {
		return nil, err
	}
	text, err := argString("ws.send", args, 1)
	if err != nil {
		return nil, err
	}

	wc.mu.Lock()
	defer wc.mu.Unlock()
	if wc.closed {
		return nil, registry.Hostf("ws.send: connection is closed")
	}
	if err := wc.conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		return nil, registry.WrapHost("ws.send failed", err)
	}
	return nil, nil
}

// wsListen starts delivering received text frames to the named script
// function, one serialized callback per frame. One listener per connection.
func wsListen(ctx *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("ws.listen", args, 2); err != nil {
		return nil, err
	}
	wc, err := wsPayload("ws.listen", args)
	if err != nil {
		return nil, err
	}
	callback, err := argString("ws.listen", args, 1)
	if err != nil {
		return nil, err
	}
	if ctx.Engine == nil {
		return nil, registry.Hostf("ws.listen: no callback submission point available")
	}

	wc.mu.Lock()
	if wc.closed {
		wc.mu.Unlock()
		return nil, registry.Hostf("ws.listen: connection is closed")
	}
	if wc.listening {
		wc.mu.Unlock()
		return nil, registry.Hostf("ws.listen: connection already has a listener")
	}
	wc.listening = true
	wc.mu.Unlock()

	logger := ctx.Logger
	engine := ctx.Engine
	go func() {
		for {
			msgType, data, err := wc.conn.ReadMessage()
			if err != nil {
				logger.Debug("listener stopped", log.Fields{"reason": err.Error()})
				return
			}
			if msgType != websocket.TextMessage {
				continue
			}
			if _, err := engine.SubmitCallback(callback, string(data)); err != nil {
				logger.WarnWithErr("message callback failed", err, log.Fields{
					"callback": callback,
				})
			}
		}
	}()
	return nil, nil
}

func wsClose(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("ws.close", args, 1); err != nil {
		return nil, err
	}
	wc, err := wsPayload("ws.close", args)
	if err != nil {
		return nil, err
	}

	wc.mu.Lock()
	defer wc.mu.Unlock()
	if wc.closed {
		return nil, nil
	}
	wc.closed = true
	if err := wc.conn.Close(); err != nil {
		return nil, registry.WrapHost("ws.close failed", err)
	}
	return nil, nil
}

// wsPayload extracts the connection state from a ws handle argument
func wsPayload(name string, args []types.Value) (*wsConn, error) {
	h, err := argHandle(name, args, 0, "ws")
	if err != nil {
		return nil, err
	}
	wc, ok := h.Payload.(*wsConn)
	if !ok {
		return nil, registry.Hostf("%s: connection is already closed", name)
	}
	return wc, nil
}
