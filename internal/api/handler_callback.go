package api

import (
	"context"
	"net/http"
	"time"

	"github.com/fastprodman/seamlesswallet/internal/infra/logging"
	"github.com/fastprodman/seamlesswallet/internal/services/wallet"
	"github.com/fastprodman/seamlesswallet/internal/signature"
)

// Wallet is the engine behind the callbacks.
type Wallet interface {
	Balance(ctx context.Context, req wallet.BalanceRequest) (wallet.Result, error)
	Debit(ctx context.Context, req wallet.DebitRequest) (wallet.Result, error)
	Credit(ctx context.Context, req wallet.CreditRequest) (wallet.Result, error)
	Rollback(ctx context.Context, req wallet.RollbackRequest) (wallet.Result, error)
}

type Verifier interface {
	Verify(params signature.Params) bool
}

// CallbackRecorder receives one observation per answered callback.
type CallbackRecorder interface {
	RecordCallback(kind string, status int, replayed bool, d time.Duration)
}

type CallbackHandler struct {
	wallet   Wallet
	verifier Verifier
	recorder CallbackRecorder
}

func NewCallbackHandler(w Wallet, v Verifier, rec CallbackRecorder) *CallbackHandler {
	return &CallbackHandler{wallet: w, verifier: v, recorder: rec}
}

type callbackFunc func(ctx context.Context, p signature.Params) (wallet.Result, error)

func (h *CallbackHandler) Balance(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "balance", func(ctx context.Context, p signature.Params) (wallet.Result, error) {
		req, err := parseBalanceRequest(p)
		if err != nil {
			return wallet.Result{}, err
		}

		return h.wallet.Balance(ctx, req)
	})
}

func (h *CallbackHandler) Debit(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "debit", func(ctx context.Context, p signature.Params) (wallet.Result, error) {
		req, err := parseDebitRequest(p)
		if err != nil {
			return wallet.Result{}, err
		}

		return h.wallet.Debit(ctx, req)
	})
}

func (h *CallbackHandler) Credit(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "credit", func(ctx context.Context, p signature.Params) (wallet.Result, error) {
		req, err := parseCreditRequest(p)
		if err != nil {
			return wallet.Result{}, err
		}

		return h.wallet.Credit(ctx, req)
	})
}

func (h *CallbackHandler) Rollback(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "rollback", func(ctx context.Context, p signature.Params) (wallet.Result, error) {
		req, err := parseRollbackRequest(p)
		if err != nil {
			return wallet.Result{}, err
		}

		return h.wallet.Rollback(ctx, req)
	})
}

// serve reads and authenticates the parameters, runs fn and answers with
// HTTP 200 whatever the outcome.
func (h *CallbackHandler) serve(w http.ResponseWriter, r *http.Request, kind string, fn callbackFunc) {
	start := time.Now()
	ctx := r.Context()
	log := logging.FromContext(ctx).With("callback", kind)

	var (
		resp     callbackResponse
		replayed bool
	)

	defer func() {
		rec := recover()
		if rec != nil {
			resp.Status = StatusInternal
		}

		if h.recorder != nil {
			h.recorder.RecordCallback(kind, resp.Status, replayed, time.Since(start))
		}

		if rec != nil {
			panic(rec)
		}
	}()

	params, err := readParams(w, r)
	if err != nil {
		resp, _ = errorResponse(err)
		log.Info("unreadable callback parameters", "error", err)
		writeJSON(w, resp)

		return
	}

	if !h.verifier.Verify(params) {
		resp = callbackResponse{Status: StatusInvalidSignature, Msg: "invalid signature"}
		log.Warn("callback signature rejected", "remote_id", valueOf(params, paramRemoteID))
		writeJSON(w, resp)

		return
	}

	res, err := fn(ctx, params)
	if err != nil {
		var unexpected bool

		resp, unexpected = errorResponse(err)
		if unexpected {
			log.Error("callback failed", "error", err)
		} else {
			log.Info("callback rejected", "status", resp.Status, "error", err)
		}

		writeJSON(w, resp)

		return
	}

	replayed = res.Replayed
	resp = responseFor(res)

	log.Debug("callback answered",
		"status", resp.Status,
		"transaction_id", resp.TransactionID,
		"replayed", replayed,
	)

	writeJSON(w, resp)
}

func valueOf(p signature.Params, key string) string {
	v, _ := p.Get(key)
	return v
}
