package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrSessionNotFound = errors.New("session not found")

type Session struct {
	ID           int64     `db:"id"`
	AccountID    int64     `db:"account_id"`
	Provider     string    `db:"provider"`
	RemoteID     string    `db:"remote_id"`
	SessionToken string    `db:"session_token"`
	GameRef      string    `db:"game_ref"`
	IsActive     bool      `db:"is_active"`
	LastActivity time.Time `db:"last_activity"`
	CreatedAt    time.Time `db:"created_at"`
}

// Sessions are created by the game launch flow; callbacks only resolve and
// touch them.
type Sessions interface {
	// FindActiveByRemoteID returns the most recently created active session
	// for the provider-side player id.
	FindActiveByRemoteID(ctx context.Context, q sqlx.ExtContext, remoteID string) (Session, error)
	Touch(ctx context.Context, q sqlx.ExtContext, sessionID int64, at time.Time) error
	Create(ctx context.Context, q sqlx.ExtContext, s Session) (int64, error)
}
