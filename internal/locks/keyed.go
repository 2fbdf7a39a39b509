// Package locks provides per-key mutexes.
package locks

import (
	"slices"
	"sync"
)

// Keyed hands out one mutex per key, created on first use.
type Keyed struct {
	mapMu sync.Mutex // protects muMap
	muMap map[string]*sync.Mutex
}

func NewKeyed() *Keyed {
	return &Keyed{muMap: make(map[string]*sync.Mutex)}
}

func (k *Keyed) get(key string) *sync.Mutex {
	k.mapMu.Lock()
	defer k.mapMu.Unlock()

	if _, exists := k.muMap[key]; !exists {
		k.muMap[key] = &sync.Mutex{}
	}
	return k.muMap[key]
}

// Lock acquires the mutexes for all keys and returns a function releasing
// them. Keys are locked in sorted order so that two callers sharing keys
// cannot deadlock. Duplicate keys are locked once.
func (k *Keyed) Lock(keys ...string) (unlock func()) {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	held := make([]*sync.Mutex, 0, len(sorted))
	for _, key := range sorted {
		mu := k.get(key)
		mu.Lock()
		held = append(held, mu)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
