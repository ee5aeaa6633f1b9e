package store

import "sync"

// keyedLocks hands out one mutex per conversation id so turns for the same
// conversation serialize in arrival order while distinct conversations run
// fully in parallel. Locks are never released back; the per-conversation
// footprint is one mutex, negligible next to the document itself.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedLocks) get(id string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.locks[id]
	if !ok {
		l = &sync.Mutex{}
		k.locks[id] = l
	}
	return l
}
