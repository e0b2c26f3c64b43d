// File: file.go
// Title: File Builtins
// Description: The file namespace: whole-file reads and writes plus a
//              handle-based line reader for large inputs. Open files travel
//              through scripts as opaque handles whose payload is the Go
//              file plus its buffered reader; closing is explicit.

package builtins

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/eblang/ebscript/script/registry"
	"github.com/eblang/ebscript/script/types"
)

// RegisterFile registers the file namespace
func RegisterFile(reg *registry.Registry) error {
	handlers := map[string]registry.Handler{
		"file.read":     fileRead,
		"file.write":    fileWrite,
		"file.append":   fileAppend,
		"file.exists":   fileExists,
		"file.remove":   fileRemove,
		"file.open":     fileOpen,
		"file.readLine": fileReadLine,
		"file.close":    fileClose,
	}
	for name, handler := range handlers {
		if err := reg.Register(name, handler); err != nil {
			return err
		}
	}
	return nil
}

// openFile is the payload of a file handle
type openFile struct {
	f      *os.File
	reader *bufio.Reader
}

func fileRead(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("file.read", args, 1); err != nil {
		return nil, err
	}
	path, err := argString("file.read", args, 0)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, registry.WrapHost("file.read failed", err)
	}
	return string(data), nil
}

func fileWrite(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("file.write", args, 2); err != nil {
		return nil, err
	}
	path, err := argString("file.write", args, 0)
	if err != nil {
		return nil, err
	}
	content, err := argString("file.write", args, 1)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, registry.WrapHost("file.write failed", err)
	}
	return nil, nil
}

func fileAppend(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("file.append", args, 2); err != nil {
		return nil, err
	}
	path, err := argString("file.append", args, 0)
	if err != nil {
		return nil, err
	}
	content, err := argString("file.append", args, 1)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, registry.WrapHost("file.append failed", err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		return nil, registry.WrapHost("file.append failed", err)
	}
	return nil, nil
}

func fileExists(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("file.exists", args, 1); err != nil {
		return nil, err
	}
	path, err := argString("file.exists", args, 0)
	if err != nil {
		return nil, err
	}
	_, statErr := os.Stat(path)
	return statErr == nil, nil
}

func fileRemove(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("file.remove", args, 1); err != nil {
		return nil, err
	}
	path, err := argString("file.remove", args, 0)
	if err != nil {
		return nil, err
	}
	if err := os.Remove(path); err != nil {
		return nil, registry.WrapHost("file.remove failed", err)
	}
	return nil, nil
}

func fileOpen(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("file.open", args, 1); err != nil {
		return nil, err
	}
	path, err := argString("file.open", args, 0)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, registry.WrapHost("file.open failed", err)
	}
	return &types.Handle{
		Kind:    "file",
		ID:      uuid.NewString(),
		Payload: &openFile{f: f, reader: bufio.NewReader(f)},
	}, nil
}

// fileReadLine returns the next line without its terminator, or null at EOF
func fileReadLine(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("file.readLine", args, 1); err != nil {
		return nil, err
	}
	h, err := argHandle("file.readLine", args, 0, "file")
	if err != nil {
		return nil, err
	}
	of, ok := h.Payload.(*openFile)
	if !ok {
		return nil, registry.Hostf("file.readLine: handle is already closed")
	}
	line, err := of.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				return nil, nil
			}
			return line, nil
		}
		return nil, registry.WrapHost("file.readLine failed", err)
	}
	// strip the terminator, tolerating CRLF
	line = line[:len(line)-1]
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}
	return line, nil
}

func fileClose(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("file.close", args, 1); err != nil {
		return nil, err
	}
	h, err := argHandle("file.close", args, 0, "file")
	if err != nil {
		return nil, err
	}
	of, ok := h.Payload.(*openFile)
	if !ok {
		return nil, nil // already closed
	}
	h.Payload = nil
	if err := of.f.Close(); err != nil {
		return nil, registry.WrapHost("file.close failed", err)
	}
	return nil, nil
}
