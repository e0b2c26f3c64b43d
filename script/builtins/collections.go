// File: collections.go
// Title: Collection Builtins
// Description: The col namespace: mutation and inspection of arrays, queues,
//              and maps beyond what literals and indexing provide. Mutating
//              functions operate on the passed composite in place, so the
//              caller's variable observes the change.

package builtins

import (
	"sort"

	"github.com/eblang/ebscript/script/registry"
	"github.com/eblang/ebscript/script/types"
)

// RegisterCol registers the col namespace
func RegisterCol(reg *registry.Registry) error {
	handlers := map[string]registry.Handler{
		"col.push":     colPush,
		"col.pop":      colPop,
		"col.insert":   colInsert,
		"col.removeAt": colRemoveAt,
		"col.indexOf":  colIndexOf,
		"col.sort":     colSort,
		"col.reverse":  colReverse,
		"col.enqueue":  colEnqueue,
		"col.dequeue":  colDequeue,
		"col.peek":     colPeek,
		"col.keys":     colKeys,
		"col.values":   colValues,
		"col.has":      colHas,
		"col.remove":   colRemove,
		"col.clear":    colClear,
		"col.fields":   colFields,
	}
	for name, handler := range handlers {
		if err := reg.Register(name, handler); err != nil {
			return err
		}
	}
	return nil
}

// colPush appends to a dynamic array; fixed arrays reject growth
func colPush(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("col.push", args, 2); err != nil {
		return nil, err
	}
	arr, err := argArray("col.push", args, 0)
	if err != nil {
		return nil, err
	}
	if arr.Fixed {
		return nil, registry.Hostf("col.push: cannot grow a fixed-capacity array")
	}
	arr.Elems = append(arr.Elems, args[1])
	return int64(len(arr.Elems)), nil
}

// colPop removes and returns the last element
func colPop(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("col.pop", args, 1); err != nil {
		return nil, err
	}
	arr, err := argArray("col.pop", args, 0)
	if err != nil {
		return nil, err
	}
	if arr.Fixed {
		return nil, registry.Hostf("col.pop: cannot shrink a fixed-capacity array")
	}
	if len(arr.Elems) == 0 {
		return nil, registry.Hostf("col.pop: array is empty")
	}
	last := arr.Elems[len(arr.Elems)-1]
	arr.Elems = arr.Elems[:len(arr.Elems)-1]
	return last, nil
}

func colInsert(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("col.insert", args, 3); err != nil {
		return nil, err
	}
	arr, err := argArray("col.insert", args, 0)
	if err != nil {
		return nil, err
	}
	idx, err := argInt("col.insert", args, 1)
	if err != nil {
		return nil, err
	}
	if arr.Fixed {
		return nil, registry.Hostf("col.insert: cannot grow a fixed-capacity array")
	}
	if idx < 0 || idx > int64(len(arr.Elems)) {
		return nil, registry.Hostf("col.insert: index %d out of range [0, %d]", idx, len(arr.Elems))
	}
	arr.Elems = append(arr.Elems, nil)
	copy(arr.Elems[idx+1:], arr.Elems[idx:])
	arr.Elems[idx] = args[2]
	return nil, nil
}

func colRemoveAt(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("col.removeAt", args, 2); err != nil {
		return nil, err
	}
	arr, err := argArray("col.removeAt", args, 0)
	if err != nil {
		return nil, err
	}
	idx, err := argInt("col.removeAt", args, 1)
	if err != nil {
		return nil, err
	}
	if arr.Fixed {
		return nil, registry.Hostf("col.removeAt: cannot shrink a fixed-capacity array")
	}
	if idx < 0 || idx >= int64(len(arr.Elems)) {
		return nil, registry.Hostf("col.removeAt: index %d out of range [0, %d)", idx, len(arr.Elems))
	}
	removed := arr.Elems[idx]
	arr.Elems = append(arr.Elems[:idx], arr.Elems[idx+1:]...)
	return removed, nil
}

// colIndexOf returns the index of the first equal element, -1 when absent
func colIndexOf(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("col.indexOf", args, 2); err != nil {
		return nil, err
	}
	arr, err := argArray("col.indexOf", args, 0)
	if err != nil {
		return nil, err
	}
	for i, e := range arr.Elems {
		if scalarEqual(e, args[1]) {
			return int64(i), nil
		}
	}
	return int64(-1), nil
}

// colSort orders an array of ints, doubles, or strings in place
func colSort(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("col.sort", args, 1); err != nil {
		return nil, err
	}
	arr, err := argArray("col.sort", args, 0)
	if err != nil {
		return nil, err
	}
	var sortErr error
	sort.SliceStable(arr.Elems, func(a, b int) bool {
		less, ok := scalarLess(arr.Elems[a], arr.Elems[b])
		if !ok && sortErr == nil {
			sortErr = registry.Hostf("col.sort: elements must all be numbers or all strings")
		}
		return less
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return nil, nil
}

func colReverse(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("col.reverse", args, 1); err != nil {
		return nil, err
	}
	arr, err := argArray("col.reverse", args, 0)
	if err != nil {
		return nil, err
	}
	for l, r := 0, len(arr.Elems)-1; l < r; l, r = l+1, r-1 {
		arr.Elems[l], arr.Elems[r] = arr.Elems[r], arr.Elems[l]
	}
	return nil, nil
}

func colEnqueue(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("col.enqueue", args, 2); err != nil {
		return nil, err
	}
	q, err := argQueue("col.enqueue", args, 0)
	if err != nil {
		return nil, err
	}
	q.Push(args[1])
	return int64(q.Len()), nil
}

// colDequeue removes and returns the front value, or null when empty
func colDequeue(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("col.dequeue", args, 1); err != nil {
		return nil, err
	}
	q, err := argQueue("col.dequeue", args, 0)
	if err != nil {
		return nil, err
	}
	v, _ := q.Pop()
	return v, nil
}

// colPeek returns the front value without removing it, or null when empty
func colPeek(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("col.peek", args, 1); err != nil {
		return nil, err
	}
	q, err := argQueue("col.peek", args, 0)
	if err != nil {
		return nil, err
	}
	if q.Len() == 0 {
		return nil, nil
	}
	return q.Items[0], nil
}

func colKeys(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("col.keys", args, 1); err != nil {
		return nil, err
	}
	m, err := argMap("col.keys", args, 0)
	if err != nil {
		return nil, err
	}
	return types.NewArray(m.Keys()...), nil
}

func colValues(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("col.values", args, 1); err != nil {
		return nil, err
	}
	m, err := argMap("col.values", args, 0)
	if err != nil {
		return nil, err
	}
	out := types.NewArray()
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		out.Elems = append(out.Elems, v)
	}
	return out, nil
}

func colHas(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("col.has", args, 2); err != nil {
		return nil, err
	}
	m, err := argMap("col.has", args, 0)
	if err != nil {
		return nil, err
	}
	_, found := m.Get(args[1])
	return found, nil
}

func colRemove(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("col.remove", args, 2); err != nil {
		return nil, err
	}
	m, err := argMap("col.remove", args, 0)
	if err != nil {
		return nil, err
	}
	_, found := m.Get(args[1])
	m.Delete(args[1])
	return found, nil
}

// colClear empties an array, queue, or map in place
func colClear(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("col.clear", args, 1); err != nil {
		return nil, err
	}
	switch c := args[0].(type) {
	case *types.Array:
		if c.Fixed {
			return nil, registry.Hostf("col.clear: cannot shrink a fixed-capacity array")
		}
		c.Elems = nil
		return nil, nil
	case *types.Queue:
		c.Items = nil
		return nil, nil
	case *types.Map:
		for _, k := range c.Keys() {
			c.Delete(k)
		}
		return nil, nil
	default:
		return nil, registry.Hostf("col.clear: argument must be array, queue, or map, got %s",
			types.KindOf(args[0]).String())
	}
}

// colFields returns a record's field names as an array of strings
func colFields(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("col.fields", args, 1); err != nil {
		return nil, err
	}
	rec, err := argRecord("col.fields", args, 0)
	if err != nil {
		return nil, err
	}
	out := types.NewArray()
	for _, name := range rec.Names() {
		out.Elems = append(out.Elems, name)
	}
	return out, nil
}

// scalarEqual compares scalars across int/double
func scalarEqual(a, b types.Value) bool {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
		return false
	}
	return a == b
}

// scalarLess orders two values when both are numbers or both are strings
func scalarLess(a, b types.Value) (less, ok bool) {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af < bf, true
		}
		return false, false
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as < bs, true
	}
	return false, false
}

func asFloat(v types.Value) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
