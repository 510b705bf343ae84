package api

import (
	"net/http"
	"time"

	"github.com/fastprodman/seamlesswallet/internal/infra/logging"
	"github.com/fastprodman/seamlesswallet/internal/infra/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterDeps struct {
	Wallet   Wallet
	Verifier Verifier
	Metrics  *metrics.Metrics
	// MaxInFlight bounds concurrently processed callbacks; 0 means no bound.
	MaxInFlight int
	// QueueTimeout is how long a callback may wait for a free slot; 0 waits
	// as long as the client does.
	QueueTimeout time.Duration
}

// NewRouter wires the provider callback endpoints, health and metrics.
func NewRouter(d RouterDeps) http.Handler {
	h := NewCallbackHandler(d.Wallet, d.Verifier, d.Metrics)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware)
	r.Use(d.Metrics.Instrument)
	r.Use(recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	r.Route("/callback", func(r chi.Router) {
		if d.MaxInFlight > 0 {
			r.Use(limitInFlight(int64(d.MaxInFlight), d.QueueTimeout))
		}

		for path, fn := range map[string]http.HandlerFunc{
			"/balance":  h.Balance,
			"/debit":    h.Debit,
			"/credit":   h.Credit,
			"/rollback": h.Rollback,
		} {
			r.Get(path, fn)
			r.Post(path, fn)
		}
	})

	return r
}
