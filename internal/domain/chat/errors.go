package chat

import "errors"

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrMissingUserID   = errors.New("user_id is required")
)
