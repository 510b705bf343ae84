package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/fastprodman/seamlesswallet/internal/infra/logging"
	"github.com/fastprodman/seamlesswallet/internal/repos/sessions"
	"github.com/jmoiron/sqlx"
)

// resolveSession maps the provider's player id to the newest active session
// and records the activity. The provider's own session id does not pick the
// session; a mismatch is only logged.
func (e *Engine) resolveSession(ctx context.Context, q sqlx.ExtContext, c Caller) (sessions.Session, error) {
	sess, err := e.sessions.FindActiveByRemoteID(ctx, q, c.RemoteID)
	if err != nil {
		if errors.Is(err, sessions.ErrSessionNotFound) {
			return sessions.Session{}, ErrSessionNotFound
		}

		return sessions.Session{}, fmt.Errorf("resolve session: %w", err)
	}

	if c.SessionID != "" && c.SessionID != sess.SessionToken {
		logging.FromContext(ctx).Warn("provider session id differs from resolved session",
			"remote_id", c.RemoteID,
			"provider_session_id", c.SessionID,
			"session_id", sess.ID,
		)
	}

	err = e.sessions.Touch(ctx, q, sess.ID, e.now())
	if err != nil {
		return sessions.Session{}, fmt.Errorf("touch session: %w", err)
	}

	return sess, nil
}
