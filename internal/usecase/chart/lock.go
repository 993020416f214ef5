package chart

import (
	"sync"

	"github.com/google/uuid"
)

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

// KeyedMutex serialises work per chart ID while letting different charts run in parallel.
// Entries are dropped once nobody holds or waits for them.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*keyedEntry
}

// NewKeyedMutex creates an empty lock table
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[uuid.UUID]*keyedEntry)}
}

// Lock blocks until the key is free and returns the matching unlock function
func (k *KeyedMutex) Lock(key uuid.UUID) func() {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &keyedEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}

// Len reports how many keys are currently held or awaited
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
