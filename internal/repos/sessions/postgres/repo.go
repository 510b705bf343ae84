package sessions

import "github.com/fastprodman/seamlesswallet/internal/repos/sessions"

var _ sessions.Sessions = (*sessionsRepo)(nil)

type sessionsRepo struct{}

func New() *sessionsRepo {
	return &sessionsRepo{}
}
