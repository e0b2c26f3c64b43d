// File: strings.go
// Title: String Builtins
// Description: The str namespace: inspection, slicing, case conversion,
//              trimming, splitting, and joining. Indices are rune-based so
//              multi-byte text behaves the way script authors expect.

package builtins

import (
	"strings"

	"github.com/eblang/ebscript/script/registry"
	"github.com/eblang/ebscript/script/types"
)

// RegisterStr registers the str namespace
func RegisterStr(reg *registry.Registry) error {
	handlers := map[string]registry.Handler{
		"str.length":     strLength,
		"str.upper":      strUpper,
		"str.lower":      strLower,
		"str.trim":       strTrim,
		"str.contains":   strContains,
		"str.startsWith": strStartsWith,
		"str.endsWith":   strEndsWith,
		"str.indexOf":    strIndexOf,
		"str.substring":  strSubstring,
		"str.replace":    strReplace,
		"str.split":      strSplit,
		"str.join":       strJoin,
		"str.repeat":     strRepeat,
		"str.padLeft":    strPadLeft,
		"str.format":     strFormat,
	}
	for name, handler := range handlers {
		if err := reg.Register(name, handler); err != nil {
			return err
		}
	}
	return nil
}

func strLength(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("str.length", args, 1); err != nil {
		return nil, err
	}
	s, err := argString("str.length", args, 0)
	if err != nil {
		return nil, err
	}
	return int64(len([]rune(s))), nil
}

func strUpper(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("str.upper", args, 1); err != nil {
		return nil, err
	}
	s, err := argString("str.upper", args, 0)
	if err != nil {
		return nil, err
	}
	return strings.ToUpper(s), nil
}

func strLower(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("str.lower", args, 1); err != nil {
		return nil, err
	}
	s, err := argString("str.lower", args, 0)
	if err != nil {
		return nil, err
	}
	return strings.ToLower(s), nil
}

func strTrim(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("str.trim", args, 1); err != nil {
		return nil, err
	}
	s, err := argString("str.trim", args, 0)
	if err != nil {
		return nil, err
	}
	return strings.TrimSpace(s), nil
}

func strContains(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("str.contains", args, 2); err != nil {
		return nil, err
	}
	s, err := argString("str.contains", args, 0)
	if err != nil {
		return nil, err
	}
	sub, err := argString("str.contains", args, 1)
	if err != nil {
		return nil, err
	}
	return strings.Contains(s, sub), nil
}

func strStartsWith(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("str.startsWith", args, 2); err != nil {
		return nil, err
	}
	s, err := argString("str.startsWith", args, 0)
	if err != nil {
		return nil, err
	}
	prefix, err := argString("str.startsWith", args, 1)
	if err != nil {
		return nil, err
	}
	return strings.HasPrefix(s, prefix), nil
}

func strEndsWith(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("str.endsWith", args, 2); err != nil {
		return nil, err
	}
	s, err := argString("str.endsWith", args, 0)
	if err != nil {
		return nil, err
	}
	suffix, err := argString("str.endsWith", args, 1)
	if err != nil {
		return nil, err
	}
	return strings.HasSuffix(s, suffix), nil
}

// strIndexOf returns the rune index of the first occurrence, -1 when absent
func strIndexOf(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("str.indexOf", args, 2); err != nil {
		return nil, err
	}
	s, err := argString("str.indexOf", args, 0)
	if err != nil {
		return nil, err
	}
	sub, err := argString("str.indexOf", args, 1)
	if err != nil {
		return nil, err
	}
	byteIdx := strings.Index(s, sub)
	if byteIdx < 0 {
		return int64(-1), nil
	}
	return int64(len([]rune(s[:byteIdx]))), nil
}

// strSubstring slices by rune indices [start, end); end is clamped
func strSubstring(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("str.substring", args, 3); err != nil {
		return nil, err
	}
	s, err := argString("str.substring", args, 0)
	if err != nil {
		return nil, err
	}
	start, err := argInt("str.substring", args, 1)
	if err != nil {
		return nil, err
	}
	end, err := argInt("str.substring", args, 2)
	if err != nil {
		return nil, err
	}
	runes := []rune(s)
	if start < 0 || start > int64(len(runes)) || end < start {
		return nil, registry.Hostf("str.substring: invalid range [%d, %d) for length %d",
			start, end, len(runes))
	}
	if end > int64(len(runes)) {
		end = int64(len(runes))
	}
	return string(runes[start:end]), nil
}

func strReplace(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("str.replace", args, 3); err != nil {
		return nil, err
	}
	s, err := argString("str.replace", args, 0)
	if err != nil {
		return nil, err
	}
	old, err := argString("str.replace", args, 1)
	if err != nil {
		return nil, err
	}
	new_, err := argString("str.replace", args, 2)
	if err != nil {
		return nil, err
	}
	return strings.ReplaceAll(s, old, new_), nil
}

func strSplit(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("str.split", args, 2); err != nil {
		return nil, err
	}
	s, err := argString("str.split", args, 0)
	if err != nil {
		return nil, err
	}
	sep, err := argString("str.split", args, 1)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(s, sep)
	out := types.NewArray()
	for _, p := range parts {
		out.Elems = append(out.Elems, p)
	}
	return out, nil
}

// strJoin concatenates the stringified elements of an array
func strJoin(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("str.join", args, 2); err != nil {
		return nil, err
	}
	arr, err := argArray("str.join", args, 0)
	if err != nil {
		return nil, err
	}
	sep, err := argString("str.join", args, 1)
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(arr.Elems))
	for i, e := range arr.Elems {
		parts[i] = types.Stringify(e)
	}
	return strings.Join(parts, sep), nil
}

func strRepeat(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("str.repeat", args, 2); err != nil {
		return nil, err
	}
	s, err := argString("str.repeat", args, 0)
	if err != nil {
		return nil, err
	}
	count, err := argInt("str.repeat", args, 1)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, registry.Hostf("str.repeat: count must not be negative, got %d", count)
	}
	return strings.Repeat(s, int(count)), nil
}

func strPadLeft(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("str.padLeft", args, 3); err != nil {
		return nil, err
	}
	s, err := argString("str.padLeft", args, 0)
	if err != nil {
		return nil, err
	}
	width, err := argInt("str.padLeft", args, 1)
	if err != nil {
		return nil, err
	}
	pad, err := argString("str.padLeft", args, 2)
	if err != nil {
		return nil, err
	}
	if pad == "" {
		return nil, registry.Hostf("str.padLeft: pad string must not be empty")
	}
	for int64(len([]rune(s))) < width {
		s = pad + s
	}
	return s, nil
}

// strFormat substitutes {} placeholders with stringified arguments in order
func strFormat(_ *registry.Context, args []types.Value) (types.Value, error) {
	if len(args) < 1 {
		return nil, registry.Hostf("str.format expects at least 1 argument, got %d", len(args))
	}
	template, err := argString("str.format", args, 0)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	rest := args[1:]
	next := 0
	for i := 0; i < len(template); i++ {
		if template[i] == '{' && i+1 < len(template) && template[i+1] == '}' {
			if next >= len(rest) {
				return nil, registry.Hostf("str.format: placeholder %d has no argument", next+1)
			}
			b.WriteString(types.Stringify(rest[next]))
			next++
			i++
			continue
		}
		b.WriteByte(template[i])
	}
	if next < len(rest) {
		return nil, registry.Hostf("str.format: %d argument(s) unused", len(rest)-next)
	}
	return b.String(), nil
}
