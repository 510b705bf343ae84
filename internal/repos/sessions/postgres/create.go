package sessions

import (
	"context"
	"fmt"

	"github.com/fastprodman/seamlesswallet/internal/repos/sessions"
	"github.com/jmoiron/sqlx"
)

func (r *sessionsRepo) Create(ctx context.Context, q sqlx.ExtContext, s sessions.Session) (int64, error) {
	var id int64

	err := sqlx.GetContext(ctx, q, &id, `
		INSERT INTO game_sessions (account_id, provider, remote_id, session_token, game_ref)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, s.AccountID, s.Provider, s.RemoteID, s.SessionToken, s.GameRef)
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}

	return id, nil
}
