// File: json.go
// Title: JSON Builtins
// Description: The json namespace: parse a JSON text into script values and
//              serialize script values back to JSON text. Parsing uses
//              json.Number so integers survive as ints; serialization walks
//              the value tree directly so record field order and map key
//              order are preserved in the output.

package builtins

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/eblang/ebscript/script/registry"
	"github.com/eblang/ebscript/script/types"
)

// RegisterJSON registers the json namespace
func RegisterJSON(reg *registry.Registry) error {
	handlers := map[string]registry.Handler{
		"json.parse":     jsonParse,
		"json.stringify": jsonStringify,
	}
	for name, handler := range handlers {
		if err := reg.Register(name, handler); err != nil {
			return err
		}
	}
	return nil
}

func jsonParse(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("json.parse", args, 1); err != nil {
		return nil, err
	}
	text, err := argString("json.parse", args, 0)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	value, err := decodeValue(dec)
	if err != nil {
		return nil, registry.WrapHost("json.parse failed", err)
	}
	return value, nil
}

// decodeValue reads one JSON value token-wise, preserving object key order
func decodeValue(dec *json.Decoder) (types.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeFrom(dec, tok)
}

func decodeFrom(dec *json.Decoder, tok json.Token) (types.Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			rec := types.NewRecord()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key := keyTok.(string)
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				rec.Set(key, v)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return rec, nil
		case '[':
			arr := types.NewArray()
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr.Elems = append(arr.Elems, v)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return arr, nil
		}
		return nil, registry.Hostf("unexpected delimiter %q", t.String())
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	case string:
		return t, nil
	case bool:
		return t, nil
	case nil:
		return nil, nil
	default:
		return nil, registry.Hostf("unexpected token %v", tok)
	}
}

func jsonStringify(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("json.stringify", args, 1); err != nil {
		return nil, err
	}
	var b strings.Builder
	if err := encodeValue(&b, args[0]); err != nil {
		return nil, err
	}
	return b.String(), nil
}

// encodeValue writes a value as JSON, keeping declaration order for records
// and insertion order for maps. Queues serialize as arrays; handles and
// non-string map keys are not representable.
func encodeValue(b *strings.Builder, v types.Value) error {
	switch val := v.(type) {
	case nil:
		b.WriteString("null")
	case int64:
		b.WriteString(strconv.FormatInt(val, 10))
	case float64:
		b.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	case string:
		b.WriteString(strconv.Quote(val))
	case bool:
		b.WriteString(strconv.FormatBool(val))
	case *types.Record:
		b.WriteByte('{')
		for i, name := range val.Names() {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(name))
			b.WriteByte(':')
			fieldValue, _ := val.Get(name)
			if err := encodeValue(b, fieldValue); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	case *types.Array:
		b.WriteByte('[')
		for i, e := range val.Elems {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := encodeValue(b, e); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case *types.Queue:
		b.WriteByte('[')
		for i, e := range val.Items {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := encodeValue(b, e); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case *types.Map:
		b.WriteByte('{')
		for i, k := range val.Keys() {
			if i > 0 {
				b.WriteByte(',')
			}
			switch key := k.(type) {
			case string:
				b.WriteString(strconv.Quote(key))
			case int64:
				b.WriteString(strconv.Quote(strconv.FormatInt(key, 10)))
			default:
				return registry.Hostf("json.stringify: unsupported map key %v", k)
			}
			b.WriteByte(':')
			entry, _ := val.Get(k)
			if err := encodeValue(b, entry); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	case *types.Handle:
		return registry.Hostf("json.stringify: handles are not serializable")
	default:
		return registry.Hostf("json.stringify: unsupported value")
	}
	return nil
}
