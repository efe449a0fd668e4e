package ingestion

import "sync"

// groupLocks serializes ingestion per group key. Uploads racing for the same
// group must not both diff against the same stale HEAD; different groups
// proceed fully in parallel.
type groupLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Lock acquires the mutex for a group key and returns its release function.
// The caller must release on every exit path so a failed import never
// permanently blocks its group.
func (g *groupLocks) Lock(key string) func() {
	g.mu.Lock()
	if g.locks == nil {
		g.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := g.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[key] = lock
	}
	g.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
