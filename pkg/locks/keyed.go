// Package locks provides per-key mutual exclusion. Mutating operations
// on a given entity are serialized by its id while operations on
// distinct entities proceed concurrently.
package locks

import "sync"

// KeyedMutex hands out one mutex per key on demand. Mutexes are kept
// for the lifetime of the map; the key space here is bounded by the
// fleet size, so no eviction is needed.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyedMutex creates an empty keyed mutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use.
func (k *KeyedMutex) Lock(key string) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
}

// Unlock releases the mutex for key. Unlocking a key that was never
// locked panics, same as sync.Mutex.
func (k *KeyedMutex) Unlock(key string) {
	k.mu.Lock()
	m, ok := k.locks[key]
	k.mu.Unlock()

	if !ok {
		panic("locks: unlock of unknown key " + key)
	}
	m.Unlock()
}
