// File: random.go
// Title: Random Builtins
// Description: The rand namespace: pseudo-random ints, doubles, and array
//              picks. Each registration gets its own seeded source so
//              independent registries do not share generator state.

package builtins

import (
	"math/rand"
	"sync"
	"time"

	"github.com/eblang/ebscript/script/registry"
	"github.com/eblang/ebscript/script/types"
)

// RegisterRand registers the rand namespace
func RegisterRand(reg *registry.Registry) error {
	src := &lockedRand{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}

	handlers := map[string]registry.Handler{
		"rand.int":    src.randInt,
		"rand.double": src.randDouble,
		"rand.pick":   src.randPick,
		"rand.seed":   src.randSeed,
	}
	for name, handler := range handlers {
		if err := reg.Register(name, handler); err != nil {
			return err
		}
	}
	return nil
}

// lockedRand guards the generator; builtins run serialized but timers and
// listeners may hold handler references across engines
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// randInt returns a uniform int in [0, max)
func (l *lockedRand) randInt(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("rand.int", args, 1); err != nil {
		return nil, err
	}
	max, err := argInt("rand.int", args, 0)
	if err != nil {
		return nil, err
	}
	if max <= 0 {
		return nil, registry.Hostf("rand.int: bound must be positive, got %d", max)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Int63n(max), nil
}

// randDouble returns a uniform double in [0, 1)
func (l *lockedRand) randDouble(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("rand.double", args, 0); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64(), nil
}

// randPick returns a uniformly chosen element of a non-empty array
func (l *lockedRand) randPick(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("rand.pick", args, 1); err != nil {
		return nil, err
	}
	arr, err := argArray("rand.pick", args, 0)
	if err != nil {
		return nil, err
	}
	if len(arr.Elems) == 0 {
		return nil, registry.Hostf("rand.pick: array is empty")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return arr.Elems[l.rng.Intn(len(arr.Elems))], nil
}

// randSeed reseeds the generator for reproducible runs
func (l *lockedRand) randSeed(_ *registry.Context, args []types.Value) (types.Value, error) {
	if err := wantArgs("rand.seed", args, 1); err != nil {
		return nil, err
	}
	seed, err := argInt("rand.seed", args, 0)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rng = rand.New(rand.NewSource(seed))
	return nil, nil
}
