// Package sessions keeps server-side login sessions. A session lives until
// its ExpiresAt or until logout deletes it.
package sessions

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned for unknown, expired or deleted sessions.
var ErrNotFound = errors.New("session not found")

// Session is the server-side record behind a login.
type Session struct {
	ID         string    `json:"id"`
	WorkerID   uint      `json:"worker_id"`
	WorkerName string    `json:"worker_name"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Store persists sessions.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}
