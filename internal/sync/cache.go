// Package sync keeps the in-memory read replica consistent with the remote
// authority: optimistic local writes, rollback on failure, authoritative
// refresh on success.
package sync

import "sync"

// Cache is a small key-value store for read replicas. Values are treated as
// immutable: a patch replaces the value wholesale, which is what makes a
// Snapshot a safe rollback point without deep copies.
type Cache struct {
	mu      sync.Mutex
	entries map[string]any
	stale   map[string]bool
}

func NewCache() *Cache {
	return &Cache{
		entries: map[string]any{},
		stale:   map[string]bool{},
	}
}

// Snapshot captures one key's value for a later Restore.
type Snapshot struct {
	key   string
	value any
	ok    bool
}

func (s Snapshot) Key() string { return s.key }

func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Put stores a replacement value and clears the key's stale mark.
func (c *Cache) Put(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = v
	delete(c.stale, key)
}

// Snapshot captures the current value of key. Restoring a snapshot of a
// missing key deletes the key again.
func (c *Cache) Snapshot(key string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return Snapshot{key: key, value: v, ok: ok}
}

// Restore puts a snapshot's value back, discarding whatever optimistic
// patch replaced it.
func (c *Cache) Restore(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !s.ok {
		delete(c.entries, s.key)
		return
	}
	c.entries[s.key] = s.value
	delete(c.stale, s.key)
}

// Invalidate marks every key matching pred as stale and returns the matched
// keys. Stale entries stay readable until the next Put refreshes them.
func (c *Cache) Invalidate(pred func(key string) bool) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var keys []string
	for k := range c.entries {
		if pred == nil || pred(k) {
			c.stale[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

func (c *Cache) IsStale(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stale[key]
}
