package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"chatgate/internal/domain/chat"
)

func seedSession(t *testing.T, repo *SessionRepository, id, userID string, createdAt time.Time) {
	t.Helper()

	err := repo.CreateSession(context.Background(), &chat.Session{
		ID:        id,
		UserID:    userID,
		Title:     "chat " + id,
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("Failed to seed session %s: %v", id, err)
	}
}

func TestCreateAndGetSession(t *testing.T) {
	repo := NewSessionRepository()
	seedSession(t, repo, "s1", "user-1", time.Now())

	session, err := repo.GetSession(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if session.UserID != "user-1" {
		t.Errorf("Expected user-1, got %s", session.UserID)
	}
}

func TestGetSession_NotFound(t *testing.T) {
	repo := NewSessionRepository()

	if _, err := repo.GetSession(context.Background(), "missing"); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGetSession_ReturnsCopy(t *testing.T) {
	repo := NewSessionRepository()
	seedSession(t, repo, "s1", "user-1", time.Now())

	first, _ := repo.GetSession(context.Background(), "s1")
	first.Title = "mutated"

	second, _ := repo.GetSession(context.Background(), "s1")
	if second.Title == "mutated" {
		t.Error("Expected stored session to be isolated from returned copies")
	}
}

func TestListSessions_NewestFirst(t *testing.T) {
	repo := NewSessionRepository()
	base := time.Now()
	seedSession(t, repo, "old", "user-1", base.Add(-2*time.Hour))
	seedSession(t, repo, "new", "user-1", base)
	seedSession(t, repo, "mid", "user-1", base.Add(-time.Hour))

	sessions, err := repo.ListSessions(context.Background(), "", 10, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("Expected 3 sessions, got %d", len(sessions))
	}
	for i, want := range []string{"new", "mid", "old"} {
		if sessions[i].ID != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, sessions[i].ID)
		}
	}
}

func TestListSessions_FilterAndPage(t *testing.T) {
	repo := NewSessionRepository()
	base := time.Now()
	seedSession(t, repo, "a", "user-1", base.Add(-3*time.Hour))
	seedSession(t, repo, "b", "user-1", base.Add(-2*time.Hour))
	seedSession(t, repo, "c", "user-1", base.Add(-time.Hour))
	seedSession(t, repo, "x", "user-2", base)

	sessions, err := repo.ListSessions(context.Background(), "user-1", 2, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != "b" || sessions[1].ID != "a" {
		t.Errorf("Unexpected page: %s, %s", sessions[0].ID, sessions[1].ID)
	}
}

func TestListSessions_OffsetPastEnd(t *testing.T) {
	repo := NewSessionRepository()
	seedSession(t, repo, "s1", "user-1", time.Now())

	sessions, err := repo.ListSessions(context.Background(), "", 10, 5)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("Expected empty page, got %d sessions", len(sessions))
	}
}

func TestUpdateSession(t *testing.T) {
	repo := NewSessionRepository()
	seedSession(t, repo, "s1", "user-1", time.Now())

	session, _ := repo.GetSession(context.Background(), "s1")
	session.Title = "renamed"
	if err := repo.UpdateSession(context.Background(), session); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	updated, _ := repo.GetSession(context.Background(), "s1")
	if updated.Title != "renamed" {
		t.Errorf("Expected renamed, got %s", updated.Title)
	}
}

func TestUpdateSession_NotFound(t *testing.T) {
	repo := NewSessionRepository()

	err := repo.UpdateSession(context.Background(), &chat.Session{ID: "missing"})
	if !errors.Is(err, chat.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}
