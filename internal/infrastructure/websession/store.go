package websession

import (
	"sync"
	"time"
)

// Store holds short-lived per-browser values for the duration of the
// authorize/callback round trip. It is injected into the auth handlers so
// the flow can be tested without a real session backend.
type Store interface {
	// Get returns the value for key within the browser session sid
	Get(sid, key string) (string, bool)

	// Set writes a value, refreshing the session's expiry
	Set(sid, key, value string)

	// Delete removes a single key; an emptied session is dropped
	Delete(sid, key string)
}

// MemoryStore is an in-process Store with per-session TTL. Orphaned
// sessions from abandoned login attempts age out on their own.
type MemoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	values    map[string]string
	expiresAt time.Time
}

// NewMemoryStore creates a store whose sessions expire ttl after their last write.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]*sessionEntry),
	}
}

// Get returns the value for key within the browser session sid
func (s *MemoryStore) Get(sid, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.sessions[sid]
	if !exists || time.Now().After(entry.expiresAt) {
		return "", false
	}
	value, ok := entry.values[key]
	return value, ok
}

// Set writes a value, refreshing the session's expiry
func (s *MemoryStore) Set(sid, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()

	entry, exists := s.sessions[sid]
	if !exists {
		entry = &sessionEntry{values: make(map[string]string)}
		s.sessions[sid] = entry
	}
	entry.values[key] = value
	entry.expiresAt = time.Now().Add(s.ttl)
}

// Delete removes a single key; an emptied session is dropped
func (s *MemoryStore) Delete(sid, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.sessions[sid]
	if !exists {
		return
	}
	delete(entry.values, key)
	if len(entry.values) == 0 {
		delete(s.sessions, sid)
	}
}

// sweepLocked drops expired sessions. Caller must hold the write lock.
func (s *MemoryStore) sweepLocked() {
	now := time.Now()
	for sid, entry := range s.sessions {
		if now.After(entry.expiresAt) {
			delete(s.sessions, sid)
		}
	}
}
