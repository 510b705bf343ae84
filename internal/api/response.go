package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fastprodman/seamlesswallet/internal/services/wallet"
	"github.com/google/uuid"
)

// Application status codes carried in the body. The HTTP status is always
// 200; providers read this field instead.
const (
	StatusOK                = 200
	StatusBadRequest        = 400
	StatusInsufficientFunds = 402
	StatusInvalidSignature  = 403
	StatusSessionNotFound   = 404
	StatusOriginalNotFound  = 408
	StatusConflict          = 409
	StatusInternal          = 500
	StatusTransient         = 503
)

type callbackResponse struct {
	Status        int    `json:"status"`
	Balance       string `json:"balance,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
	Msg           string `json:"msg,omitempty"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func responseFor(res wallet.Result) callbackResponse {
	resp := callbackResponse{
		Status:  StatusOK,
		Balance: res.Balance.StringFixed(wallet.MoneyPlaces),
	}

	if res.TransactionID != uuid.Nil {
		resp.TransactionID = res.TransactionID.String()
	}

	if res.Insufficient() {
		resp.Status = StatusInsufficientFunds
		resp.Msg = "insufficient funds"
	}

	return resp
}

// errorResponse maps an engine error to its status. The bool reports
// whether the error is unexpected and worth an error log.
func errorResponse(err error) (callbackResponse, bool) {
	switch {
	case errors.Is(err, errBadParams), errors.Is(err, wallet.ErrInvalidRequest):
		return callbackResponse{Status: StatusBadRequest, Msg: err.Error()}, false
	case errors.Is(err, wallet.ErrSessionNotFound):
		return callbackResponse{Status: StatusSessionNotFound, Msg: "player session not found"}, false
	case errors.Is(err, wallet.ErrOriginalNotFound):
		return callbackResponse{Status: StatusOriginalNotFound, Msg: "original transaction not found"}, false
	case errors.Is(err, wallet.ErrTransactionConflict):
		return callbackResponse{Status: StatusConflict, Msg: "transaction id already used"}, false
	case errors.Is(err, wallet.ErrTransient):
		return callbackResponse{Status: StatusTransient, Msg: "temporarily unavailable, retry"}, false
	default:
		return callbackResponse{Status: StatusInternal, Msg: "internal error"}, true
	}
}
