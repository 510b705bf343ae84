package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fastprodman/seamlesswallet/internal/api"
	"github.com/fastprodman/seamlesswallet/internal/infra/logging"
	"github.com/fastprodman/seamlesswallet/internal/infra/metrics"
	"github.com/fastprodman/seamlesswallet/internal/infra/pgutils"
	pgaccounts "github.com/fastprodman/seamlesswallet/internal/repos/accounts/postgres"
	"github.com/fastprodman/seamlesswallet/internal/repos/replays"
	redisreplays "github.com/fastprodman/seamlesswallet/internal/repos/replays/redis"
	pgsessions "github.com/fastprodman/seamlesswallet/internal/repos/sessions/postgres"
	pgtransactions "github.com/fastprodman/seamlesswallet/internal/repos/transactions/postgres"
	"github.com/fastprodman/seamlesswallet/internal/services/wallet"
	"github.com/fastprodman/seamlesswallet/internal/signature"
	"github.com/fastprodman/seamlesswallet/pkg/envconf"
	"github.com/fastprodman/seamlesswallet/pkg/shutdownqueue"
	"github.com/redis/go-redis/v9"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v\n", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add("postgres", func(context.Context) error {
		return db.Close()
	})

	var replayCache replays.Replays = replays.Nop{}

	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		shutdownqueue.Add("redis", func(context.Context) error {
			return rdb.Close()
		})

		err = rdb.Ping(ctx).Err()
		if err != nil {
			// The ledger answers replays on its own; run without the cache.
			slog.Warn("redis unreachable, replay cache disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			replayCache = redisreplays.NewReplayRepository(rdb, cfg.Redis.ReplayTTL)
		}
	}

	validator, err := signature.New(cfg.Wallet.Secret, signature.Scheme(cfg.Wallet.SignatureScheme))
	if err != nil {
		return fmt.Errorf("init signature validator: %w", err)
	}

	engine := wallet.New(wallet.Deps{
		Tx:       pgutils.NewTxRunner(db, cfg.Wallet.LockTimeout),
		Accounts: pgaccounts.New(),
		Sessions: pgsessions.New(),
		Ledger:   pgtransactions.New(),
		Replays:  replayCache,
	})

	// --- HTTP server ---
	router := api.NewRouter(api.RouterDeps{
		Wallet:       engine,
		Verifier:     validator,
		Metrics:      metrics.New(),
		MaxInFlight:  cfg.Wallet.MaxInFlight,
		QueueTimeout: cfg.Wallet.QueueTimeout,
	})

	srv := api.NewServer(cfg.Port, router)

	shutdownqueue.Add("http", func(c context.Context) error {
		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started",
		"port", cfg.Port,
		"signature_scheme", cfg.Wallet.SignatureScheme,
		"replay_cache", cfg.Redis.Enabled(),
	)

	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
