package chat

import (
	"context"
	"fmt"
	"time"

	"chatgate/internal/domain/chat"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Service handles chat session records
type Service struct {
	repo chat.Repository
}

// NewService creates a new chat session service
func NewService(repo chat.Repository) *Service {
	return &Service{repo: repo}
}

// ListSessions returns session records ordered newest first, optionally
// filtered by user. The limit defaults to 50 and is capped at 200.
func (s *Service) ListSessions(ctx context.Context, userID string, limit, offset int) ([]*chat.Session, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListSessions(ctx, userID, limit, offset)
}

// CreateSession persists a new session record for a user
func (s *Service) CreateSession(ctx context.Context, userID, title string) (*chat.Session, error) {
	if userID == "" {
		return nil, chat.ErrMissingUserID
	}

	session := &chat.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// UpdateTitle renames an existing session record
func (s *Service) UpdateTitle(ctx context.Context, sessionID, title string) (*chat.Session, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Title = title
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	return session, nil
}
