package api

import (
	"fmt"

	"github.com/fastprodman/seamlesswallet/internal/services/wallet"
	"github.com/fastprodman/seamlesswallet/internal/signature"
	"github.com/shopspring/decimal"
)

// Callback parameter names.
const (
	paramRemoteID      = "remote_id"
	paramSessionID     = "session_id"
	paramGameID        = "game_id"
	paramTransactionID = "transaction_id"
	paramRoundID       = "round_id"
	paramAmount        = "amount"
)

func callerFrom(p signature.Params) wallet.Caller {
	remoteID, _ := p.Get(paramRemoteID)
	sessionID, _ := p.Get(paramSessionID)
	gameID, _ := p.Get(paramGameID)

	return wallet.Caller{RemoteID: remoteID, SessionID: sessionID, GameRef: gameID}
}

func parseBalanceRequest(p signature.Params) (wallet.BalanceRequest, error) {
	req := wallet.BalanceRequest{Caller: callerFrom(p)}

	return req, req.Validate()
}

func parseDebitRequest(p signature.Params) (wallet.DebitRequest, error) {
	txID, roundID, amount, err := parseMovement(p)
	if err != nil {
		return wallet.DebitRequest{}, err
	}

	req := wallet.DebitRequest{
		Caller:        callerFrom(p),
		TransactionID: txID,
		RoundID:       roundID,
		Amount:        amount,
	}

	return req, req.Validate()
}

func parseCreditRequest(p signature.Params) (wallet.CreditRequest, error) {
	txID, roundID, amount, err := parseMovement(p)
	if err != nil {
		return wallet.CreditRequest{}, err
	}

	req := wallet.CreditRequest{
		Caller:        callerFrom(p),
		TransactionID: txID,
		RoundID:       roundID,
		Amount:        amount,
	}

	return req, req.Validate()
}

// parseRollbackRequest ignores any amount: the original row decides it.
func parseRollbackRequest(p signature.Params) (wallet.RollbackRequest, error) {
	txID, _ := p.Get(paramTransactionID)
	roundID, _ := p.Get(paramRoundID)

	req := wallet.RollbackRequest{
		Caller:        callerFrom(p),
		TransactionID: txID,
		RoundID:       roundID,
	}

	return req, req.Validate()
}

func parseMovement(p signature.Params) (txID, roundID string, amount decimal.Decimal, err error) {
	txID, _ = p.Get(paramTransactionID)
	roundID, _ = p.Get(paramRoundID)

	raw, ok := p.Get(paramAmount)
	if !ok {
		return "", "", amount, fmt.Errorf("%w: amount is required", wallet.ErrInvalidRequest)
	}

	amount, err = wallet.ParseAmount(raw)
	if err != nil {
		return "", "", amount, err
	}

	return txID, roundID, amount, nil
}
