// File: convert.go
// Title: Structural Validation and Coercion
// Description: Implements the two core operations on (type, value) pairs:
//              Validate recursively checks a value's shape against a declared
//              type and names the first failing field path; Convert greedily
//              coerces scalar leaves using a fixed table (string to int/double
//              via numeric parse, numeric to string via canonical formatting,
//              bool and string "true"/"false" in both directions) and raises a
//              TypeError only for truly incompatible leaves. Unknown literal
//              fields on record types are rejected. Convert is idempotent.

package types

import (
	"strconv"
	"strings"
)

// Validate recursively checks that a value's shape matches the declared type.
// nil (null) is valid for every type.
func (r *Registry) Validate(t *Type, v Value) error {
	return r.validate(t, v, "")
}

func (r *Registry) validate(t *Type, v Value, path string) error {
	if v == nil {
		return nil
	}

	resolved, err := r.Resolve(t)
	if err != nil {
		if te, ok := err.(*TypeError); ok && path != "" {
			return typeErrorf(path, "%s", te.Error())
		}
		return err
	}

	switch resolved.Kind {
	case KindJSON:
		return nil

	case KindInt:
		if _, ok := v.(int64); !ok {
			return typeErrorf(path, "expected int, got %s", KindOf(v))
		}
		return nil

	case KindDouble:
		switch v.(type) {
		case float64, int64:
			return nil
		}
		return typeErrorf(path, "expected double, got %s", KindOf(v))

	case KindString:
		if _, ok := v.(string); !ok {
			return typeErrorf(path, "expected string, got %s", KindOf(v))
		}
		return nil

	case KindBool:
		if _, ok := v.(bool); !ok {
			return typeErrorf(path, "expected bool, got %s", KindOf(v))
		}
		return nil

	case KindHandle:
		if _, ok := v.(*Handle); !ok {
			return typeErrorf(path, "expected handle, got %s", KindOf(v))
		}
		return nil

	case KindArray:
		arr, ok := v.(*Array)
		if !ok {
			return typeErrorf(path, "expected array, got %s", KindOf(v))
		}
		if resolved.Fixed && len(arr.Elems) > resolved.Capacity {
			return typeErrorf(path, "array length %d exceeds capacity %d",
				len(arr.Elems), resolved.Capacity)
		}
		if resolved.Elem != nil {
			for i, e := range arr.Elems {
				if err := r.validate(resolved.Elem, e, indexPath(path, i)); err != nil {
					return err
				}
			}
		}
		return nil

	case KindQueue:
		q, ok := v.(*Queue)
		if !ok {
			return typeErrorf(path, "expected queue, got %s", KindOf(v))
		}
		if resolved.Elem != nil {
			for i, e := range q.Items {
				if err := r.validate(resolved.Elem, e, indexPath(path, i)); err != nil {
					return err
				}
			}
		}
		return nil

	case KindMap:
		m, ok := v.(*Map)
		if !ok {
			return typeErrorf(path, "expected map, got %s", KindOf(v))
		}
		for _, k := range m.Keys() {
			if resolved.Key != nil {
				if err := r.validate(resolved.Key, k, path+"[key]"); err != nil {
					return err
				}
			}
			if resolved.Val != nil {
				entry, _ := m.Get(k)
				keyPath := path + "[" + Stringify(k) + "]"
				if err := r.validate(resolved.Val, entry, keyPath); err != nil {
					return err
				}
			}
		}
		return nil

	case KindRecord:
		rec, ok := v.(*Record)
		if !ok {
			return typeErrorf(path, "expected record, got %s", KindOf(v))
		}
		// Undeclared fields are rejected rather than silently dropped
		for _, name := range rec.Names() {
			if !resolved.Record.HasField(name) {
				return typeErrorf(joinPath(path, name),
					"unknown field %q not declared in record type", name)
			}
		}
		for _, name := range resolved.Record.FieldNames() {
			ft, _ := resolved.Record.FieldType(name)
			fv, present := rec.Get(name)
			if !present {
				continue
			}
			if err := r.validate(ft, fv, joinPath(path, name)); err != nil {
				return err
			}
		}
		return nil

	default:
		return typeErrorf(path, "cannot validate against %s type", resolved.Kind)
	}
}

// Convert recursively coerces a value to the declared type, applying the
// scalar coercion table wherever legal. The result is a fresh value; the
// input is never mutated.
func (r *Registry) Convert(t *Type, v Value) (Value, error) {
	return r.convert(t, v, "")
}

func (r *Registry) convert(t *Type, v Value, path string) (Value, error) {
	if v == nil {
		return nil, nil
	}

	resolved, err := r.Resolve(t)
	if err != nil {
		if te, ok := err.(*TypeError); ok && path != "" {
			return nil, typeErrorf(path, "%s", te.Error())
		}
		return nil, err
	}

	switch resolved.Kind {
	case KindJSON:
		return DeepCopy(v), nil

	case KindInt:
		return convertToInt(v, path)

	case KindDouble:
		return convertToDouble(v, path)

	case KindString:
		return convertToString(v, path)

	case KindBool:
		return convertToBool(v, path)

	case KindHandle:
		if h, ok := v.(*Handle); ok {
			return h, nil
		}
		return nil, typeErrorf(path, "cannot convert %s to handle", KindOf(v))

	case KindArray:
		arr, ok := v.(*Array)
		if !ok {
			return nil, typeErrorf(path, "cannot convert %s to array", KindOf(v))
		}
		if resolved.Fixed && len(arr.Elems) > resolved.Capacity {
			return nil, typeErrorf(path, "array length %d exceeds capacity %d",
				len(arr.Elems), resolved.Capacity)
		}
		out := &Array{
			Elems:    make([]Value, len(arr.Elems)),
			Fixed:    resolved.Fixed,
			Capacity: resolved.Capacity,
		}
		for i, e := range arr.Elems {
			if resolved.Elem == nil {
				out.Elems[i] = DeepCopy(e)
				continue
			}
			converted, err := r.convert(resolved.Elem, e, indexPath(path, i))
			if err != nil {
				return nil, err
			}
			out.Elems[i] = converted
		}
		return out, nil

	case KindQueue:
		out := NewQueue()
		switch src := v.(type) {
		case *Queue:
			for i, e := range src.Items {
				converted, err := r.convertElem(resolved.Elem, e, indexPath(path, i))
				if err != nil {
					return nil, err
				}
				out.Items = append(out.Items, converted)
			}
			return out, nil
		case *Array:
			// Array literals are the only inline notation for sequences
			for i, e := range src.Elems {
				converted, err := r.convertElem(resolved.Elem, e, indexPath(path, i))
				if err != nil {
					return nil, err
				}
				out.Items = append(out.Items, converted)
			}
			return out, nil
		}
		return nil, typeErrorf(path, "cannot convert %s to queue", KindOf(v))

	case KindMap:
		out := NewMap()
		switch src := v.(type) {
		case *Map:
			for _, k := range src.Keys() {
				key, err := r.convertElem(resolved.Key, k, path+"[key]")
				if err != nil {
					return nil, err
				}
				entry, _ := src.Get(k)
				converted, err := r.convertElem(resolved.Val, entry, path+"["+Stringify(k)+"]")
				if err != nil {
					return nil, err
				}
				out.Set(key, converted)
			}
			return out, nil
		case *Record:
			// Object literals are the only inline notation for maps
			for _, name := range src.Names() {
				key, err := r.convertElem(resolved.Key, name, path+"[key]")
				if err != nil {
					return nil, err
				}
				fv, _ := src.Get(name)
				converted, err := r.convertElem(resolved.Val, fv, joinPath(path, name))
				if err != nil {
					return nil, err
				}
				out.Set(key, converted)
			}
			return out, nil
		}
		return nil, typeErrorf(path, "cannot convert %s to map", KindOf(v))

	case KindRecord:
		rec, ok := v.(*Record)
		if !ok {
			return nil, typeErrorf(path, "cannot convert %s to record", KindOf(v))
		}
		for _, name := range rec.Names() {
			if !resolved.Record.HasField(name) {
				return nil, typeErrorf(joinPath(path, name),
					"unknown field %q not declared in record type", name)
			}
		}
		out := NewRecord()
		for _, name := range resolved.Record.FieldNames() {
			fv, present := rec.Get(name)
			if !present {
				continue
			}
			ft, _ := resolved.Record.FieldType(name)
			converted, err := r.convert(ft, fv, joinPath(path, name))
			if err != nil {
				return nil, err
			}
			out.Set(name, converted)
		}
		return out, nil

	default:
		return nil, typeErrorf(path, "cannot convert to %s type", resolved.Kind)
	}
}

// convertElem converts with a possibly-nil element type (nil means any)
func (r *Registry) convertElem(t *Type, v Value, path string) (Value, error) {
	if t == nil {
		return DeepCopy(v), nil
	}
	return r.convert(t, v, path)
}

func convertToInt(v Value, path string) (Value, error) {
	switch val := v.(type) {
	case int64:
		return val, nil
	case float64:
		return int64(val), nil
	case string:
		s := strings.TrimSpace(val)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f), nil
		}
		return nil, typeErrorf(path, "cannot convert string %q to int", val)
	default:
		return nil, typeErrorf(path, "cannot convert %s to int", KindOf(v))
	}
}

func convertToDouble(v Value, path string) (Value, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case int64:
		return float64(val), nil
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return f, nil
		}
		return nil, typeErrorf(path, "cannot convert string %q to double", val)
	default:
		return nil, typeErrorf(path, "cannot convert %s to double", KindOf(v))
	}
}

func convertToString(v Value, path string) (Value, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case int64, float64, bool:
		return Stringify(val), nil
	default:
		return nil, typeErrorf(path, "cannot convert %s to string", KindOf(v))
	}
}

func convertToBool(v Value, path string) (Value, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		if strings.EqualFold(strings.TrimSpace(val), "true") {
			return true, nil
		}
		if strings.EqualFold(strings.TrimSpace(val), "false") {
			return false, nil
		}
		return nil, typeErrorf(path, "cannot convert string %q to bool", val)
	default:
		return nil, typeErrorf(path, "cannot convert %s to bool", KindOf(v))
	}
}
