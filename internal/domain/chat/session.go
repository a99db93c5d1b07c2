package chat

import (
	"context"
	"time"
)

// Session is a persisted chat session record. It is created as a side effect
// of an authenticated chat turn or through the sessions API.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository defines the interface for chat session persistence
type Repository interface {
	// CreateSession persists a new session record
	CreateSession(ctx context.Context, session *Session) error

	// GetSession retrieves a session by ID
	GetSession(ctx context.Context, sessionID string) (*Session, error)

	// ListSessions returns sessions ordered by creation time descending,
	// optionally filtered by user
	ListSessions(ctx context.Context, userID string, limit, offset int) ([]*Session, error)

	// UpdateSession updates a mutable session field
	UpdateSession(ctx context.Context, session *Session) error
}
