package worker

import "sync"

// KeyedMutex serializes work per string key. Snapshot writers lock on the
// user id so two concurrent reconcile runs for the same user cannot
// interleave their read-compute-write cycles.
//
// Per-key mutexes are retained for the process lifetime, which is bounded
// by the number of distinct users seen.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyedMutex creates an empty keyed mutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock function.
//
// Usage:
//
//	unlock := km.Lock(userID)
//	defer unlock()
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
