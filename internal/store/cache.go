package store

import (
	"context"
	"os"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// cacheEntry is one cached template. Entries past Expires are treated as
// absent and swept periodically.
type cacheEntry struct {
	Content string    `msgpack:"content"`
	Expires time.Time `msgpack:"expires"`
}

// cached returns a fresh entry's content. Expired entries are misses.
func (s *Store) cached(path string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.cache[path]
	if !ok || s.now().After(entry.Expires) {
		return "", false
	}
	return entry.Content, true
}

// put stores sanitized content under the path with a fresh TTL.
func (s *Store) put(path, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[path] = cacheEntry{
		Content: content,
		Expires: s.now().Add(s.cfg.CacheTTL),
	}
}

// Invalidate drops one cache entry.
func (s *Store) Invalidate(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, path)
}

// Purge drops every cache entry.
func (s *Store) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.cache)
	s.cache = make(map[string]cacheEntry)
	return n
}

// CacheLen returns the number of entries currently held, expired or not.
func (s *Store) CacheLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

// sweepLoop prunes expired entries at a fixed interval until Close.
func (s *Store) sweepLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep removes every expired entry.
func (s *Store) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for path, entry := range s.cache {
		if now.After(entry.Expires) {
			delete(s.cache, path)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Debug(context.Background(), "cache swept", "removed", removed)
	}
	return removed
}

// snapshot is the on-disk cache format.
type snapshot struct {
	Entries map[string]cacheEntry `msgpack:"entries"`
}

// SaveSnapshot persists the still-fresh cache entries to the configured
// snapshot path.
func (s *Store) SaveSnapshot() error {
	s.mu.RLock()
	snap := snapshot{Entries: make(map[string]cacheEntry, len(s.cache))}
	now := s.now()
	for path, entry := range s.cache {
		if now.After(entry.Expires) {
			continue
		}
		snap.Entries[path] = entry
	}
	s.mu.RUnlock()

	data, err := msgpack.Marshal(&snap)
	if err != nil {
		return err
	}
	return os.WriteFile(s.cfg.SnapshotPath, data, 0600)
}

// loadSnapshot restores cache entries persisted by a previous run,
// skipping any that expired in the meantime.
func (s *Store) loadSnapshot() error {
	data, err := os.ReadFile(s.cfg.SnapshotPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var snap snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for path, entry := range snap.Entries {
		if now.After(entry.Expires) {
			continue
		}
		s.cache[path] = entry
	}
	return nil
}
