package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/fastprodman/seamlesswallet/internal/repos/sessions"
	"github.com/jmoiron/sqlx"
)

func (r *sessionsRepo) Touch(ctx context.Context, q sqlx.ExtContext, sessionID int64, at time.Time) error {
	res, err := q.ExecContext(ctx, `
		UPDATE game_sessions
		SET last_activity = $2
		WHERE id = $1
	`, sessionID, at)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if n == 0 {
		return sessions.ErrSessionNotFound
	}

	return nil
}
