// Package shared holds small helpers used across feature packages.
package shared

import "sync"

// KeyedMutex serializes critical sections per key. The invoice lifecycle and
// the payment allocator both read-modify-write a customer's credit entries,
// so every mutation for one customer must run alone.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex builds an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*entry)}
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// CustomerLockKey builds the lock key for a customer's receivables.
func CustomerLockKey(customerID string) string {
	return "customer:" + customerID
}
