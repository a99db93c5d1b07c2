package memory

import (
	"context"
	"sort"
	"sync"

	"chatgate/internal/domain/chat"
)

// SessionRepository is an in-memory implementation of chat.Repository,
// used when the database is disabled and in tests.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*chat.Session
}

// NewSessionRepository creates a new in-memory session repository
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]*chat.Session)}
}

// CreateSession persists a new session record
func (r *SessionRepository) CreateSession(ctx context.Context, session *chat.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

// GetSession retrieves a session by ID
func (r *SessionRepository) GetSession(ctx context.Context, sessionID string) (*chat.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[sessionID]
	if !exists {
		return nil, chat.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

// ListSessions returns sessions newest first, optionally filtered by user
func (r *SessionRepository) ListSessions(ctx context.Context, userID string, limit, offset int) ([]*chat.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*chat.Session, 0)
	for _, session := range r.sessions {
		if userID != "" && session.UserID != userID {
			continue
		}
		copied := *session
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return []*chat.Session{}, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

// UpdateSession updates an existing session record
func (r *SessionRepository) UpdateSession(ctx context.Context, session *chat.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID]; !exists {
		return chat.ErrSessionNotFound
	}
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}
