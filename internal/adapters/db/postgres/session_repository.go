package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"chatgate/internal/domain/chat"
)

// SessionRepository is a Postgres implementation of chat.Repository
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository constructs a SessionRepository
func NewSessionRepository(db *sql.DB) *SessionRepository { return &SessionRepository{db: db} }

// scanner is implemented by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row scanner) (*chat.Session, error) {
	var s chat.Session
	var title sql.NullString
	if err := row.Scan(&s.ID, &s.UserID, &title, &s.CreatedAt); err != nil {
		return nil, err
	}
	if title.Valid {
		s.Title = title.String
	}
	return &s, nil
}

func (r *SessionRepository) CreateSession(ctx context.Context, session *chat.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id,user_id,title,created_at) VALUES ($1,$2,$3,$4)`,
		session.ID, session.UserID, nullString(session.Title), session.CreatedAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetSession(ctx context.Context, sessionID string) (*chat.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id,user_id,title,created_at FROM sessions WHERE id=$1`, sessionID)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, chat.ErrSessionNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *SessionRepository) ListSessions(ctx context.Context, userID string, limit, offset int) ([]*chat.Session, error) {
	var rows *sql.Rows
	var err error
	if userID != "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT id,user_id,title,created_at FROM sessions WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			userID, limit, offset)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT id,user_id,title,created_at FROM sessions ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
			limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	out := make([]*chat.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SessionRepository) UpdateSession(ctx context.Context, session *chat.Session) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET title=$2 WHERE id=$1`, session.ID, nullString(session.Title))
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return chat.ErrSessionNotFound
	}
	return nil
}

// nullString returns interface{} nil for the empty string
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
