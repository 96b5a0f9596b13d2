package usecase

import "sync"

// lockTable serializes state-mutating operations per transaction id. A
// process, refund or webhook-apply on the same transaction takes the write
// lock; status reads take the read lock so polls can proceed concurrently
// with each other but never with a transition.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.RWMutex)}
}

func (t *lockTable) get(id string) *sync.RWMutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	if l, ok := t.locks[id]; ok {
		return l
	}
	l := &sync.RWMutex{}
	t.locks[id] = l
	return l
}
