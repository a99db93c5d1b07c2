package websession

import (
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	store.Set("sid-1", "state", "abc")

	value, ok := store.Get("sid-1", "state")
	if !ok {
		t.Fatal("Expected value to be present")
	}
	if value != "abc" {
		t.Errorf("Expected abc, got %q", value)
	}
}

func TestGet_MissingKey(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	store.Set("sid-1", "state", "abc")

	if _, ok := store.Get("sid-1", "next"); ok {
		t.Error("Expected absence for missing key")
	}
	if _, ok := store.Get("sid-2", "state"); ok {
		t.Error("Expected absence for missing session")
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	store.Set("sid-1", "state", "one")
	store.Set("sid-2", "state", "two")

	if value, _ := store.Get("sid-1", "state"); value != "one" {
		t.Errorf("Expected one, got %q", value)
	}
	if value, _ := store.Get("sid-2", "state"); value != "two" {
		t.Errorf("Expected two, got %q", value)
	}
}

func TestDelete(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	store.Set("sid-1", "state", "abc")
	store.Set("sid-1", "next", "/chat")

	store.Delete("sid-1", "state")

	if _, ok := store.Get("sid-1", "state"); ok {
		t.Error("Expected state to be gone")
	}
	if value, ok := store.Get("sid-1", "next"); !ok || value != "/chat" {
		t.Errorf("Expected next to survive, got %q (ok=%v)", value, ok)
	}

	// Deleting the last key drops the whole session entry
	store.Delete("sid-1", "next")
	store.mu.RLock()
	_, exists := store.sessions["sid-1"]
	store.mu.RUnlock()
	if exists {
		t.Error("Expected emptied session to be dropped")
	}
}

func TestDelete_MissingSession(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	store.Delete("sid-1", "state") // must not panic
}

func TestExpiry(t *testing.T) {
	store := NewMemoryStore(10 * time.Millisecond)
	store.Set("sid-1", "state", "abc")

	time.Sleep(30 * time.Millisecond)

	if _, ok := store.Get("sid-1", "state"); ok {
		t.Error("Expected expired session to be unreadable")
	}

	// Writes sweep expired sessions out of the map
	store.Set("sid-2", "state", "def")
	store.mu.RLock()
	_, exists := store.sessions["sid-1"]
	store.mu.RUnlock()
	if exists {
		t.Error("Expected expired session to be swept on write")
	}
}

func TestSetRefreshesExpiry(t *testing.T) {
	store := NewMemoryStore(50 * time.Millisecond)
	store.Set("sid-1", "state", "abc")

	time.Sleep(30 * time.Millisecond)
	store.Set("sid-1", "next", "/chat")
	time.Sleep(30 * time.Millisecond)

	// 60ms after the first write, 30ms after the refresh
	if _, ok := store.Get("sid-1", "state"); !ok {
		t.Error("Expected refreshed session to still be readable")
	}
}
