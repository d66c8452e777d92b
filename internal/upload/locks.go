// Copyright (c) 2026 Clipflow. All rights reserved.

package upload

import "sync"

// sessionLocks serializes work per session handle. Appends to the same
// session take the same lock; different sessions never contend.
//
// Entries are reference-counted and removed once the last holder
// releases, so the map stays bounded by the number of concurrently
// active sessions rather than growing with every handle ever seen.
type sessionLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{entries: make(map[string]*lockEntry)}
}

// Acquire blocks until the lock for handle is held and returns the
// release function. Callers must release exactly once, usually by defer.
func (locks *sessionLocks) Acquire(handle string) func() {
	locks.mu.Lock()
	entry, exists := locks.entries[handle]
	if !exists {
		entry = &lockEntry{}
		locks.entries[handle] = entry
	}
	entry.refs++
	locks.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		locks.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(locks.entries, handle)
		}
		locks.mu.Unlock()
	}
}
