package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// keyedMutex serializes work per entity id so two concurrent mutations of the
// same task cannot interleave their read-modify-persist steps. Entries are
// reference-counted and removed when the last holder unlocks, so the map does
// not grow with the id space.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[uuid.UUID]*keyedLock)}
}

// Lock acquires the mutex for id and returns its unlock function.
func (k *keyedMutex) Lock(id uuid.UUID) func() {
	k.mu.Lock()
	l, ok := k.locks[id]
	if !ok {
		l = &keyedLock{}
		k.locks[id] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}
