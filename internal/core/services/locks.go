package services

import "sync"

// lockRegistry hands out one mutex per collection id so mutations on
// distinct collections proceed in parallel while mutations on the same
// collection serialise. The registry guard is held only for the lookup,
// never across a collection mutation.
type lockRegistry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockRegistry() *lockRegistry {
	return &lockRegistry{locks: make(map[string]*sync.Mutex)}
}

// get returns the lock for a collection, creating it on first access.
func (r *lockRegistry) get(id string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[id] = lock
	}
	return lock
}
