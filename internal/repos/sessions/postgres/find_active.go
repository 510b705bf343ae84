package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/seamlesswallet/internal/repos/sessions"
	"github.com/jmoiron/sqlx"
)

// FindActiveByRemoteID picks the newest active session when a player has
// several open at once; the provider session id does not take part.
func (r *sessionsRepo) FindActiveByRemoteID(ctx context.Context, q sqlx.ExtContext, remoteID string) (sessions.Session, error) {
	var s sessions.Session

	err := sqlx.GetContext(ctx, q, &s, `
		SELECT id, account_id, provider, remote_id, session_token, game_ref,
		       is_active, last_activity, created_at
		FROM game_sessions
		WHERE remote_id = $1
		  AND is_active
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, remoteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sessions.Session{}, sessions.ErrSessionNotFound
		}

		return sessions.Session{}, fmt.Errorf("find active session: %w", err)
	}

	return s, nil
}
