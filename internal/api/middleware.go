package api

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/fastprodman/seamlesswallet/internal/infra/logging"
	"golang.org/x/sync/semaphore"
)

// recoverer turns a panic into a status 500 body. The transport still
// answers 200 like every other callback outcome.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel compared as chi does
				panic(rec)
			}

			logging.FromContext(r.Context()).Error("panic while handling request",
				"panic", rec,
				"stack", string(debug.Stack()),
			)

			writeJSON(w, callbackResponse{Status: StatusInternal, Msg: "internal error"})
		}()

		next.ServeHTTP(w, r)
	})
}

// limitInFlight admits at most n callbacks at a time. A callback that gets
// no slot within wait is answered with status 503. With wait <= 0 it queues
// until the client goes away.
func limitInFlight(n int64, wait time.Duration) func(http.Handler) http.Handler {
	sem := semaphore.NewWeighted(n)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if wait > 0 {
				var cancel context.CancelFunc

				ctx, cancel = context.WithTimeout(ctx, wait)
				defer cancel()
			}

			err := sem.Acquire(ctx, 1)
			if err != nil {
				logging.FromContext(r.Context()).Warn("callback rejected: no free slot",
					"max_inflight", n,
					"wait", wait,
					"error", err,
				)

				writeJSON(w, callbackResponse{Status: StatusTransient, Msg: "too many callbacks in flight, retry"})

				return
			}
			defer sem.Release(1)

			next.ServeHTTP(w, r)
		})
	}
}
