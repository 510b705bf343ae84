package wallet

import (
	"errors"
	"fmt"

	"github.com/fastprodman/seamlesswallet/internal/repos/transactions"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits of the smallest currency
// increment (0.01).
const MoneyPlaces = 2

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrSessionNotFound     = errors.New("player session not found")
	ErrOriginalNotFound    = errors.New("original transaction not found")
	ErrTransactionConflict = errors.New("transaction id belongs to another player")
	ErrTransient           = errors.New("transient store failure")
)

// Result is the answer to one callback. Insufficient funds is a Result with
// Status failed, not an error: the rejection is recorded and replayed.
type Result struct {
	Status        transactions.Status
	Balance       decimal.Decimal
	TransactionID uuid.UUID
	Replayed      bool
}

func (r Result) Insufficient() bool {
	return r.Status == transactions.StatusFailed
}

// Caller identifies the player and session a callback is about.
type Caller struct {
	RemoteID string
	// SessionID is the provider's session identifier. It is only compared
	// against the resolved session for logging.
	SessionID string
	GameRef   string
}

func (c Caller) validate() error {
	if c.RemoteID == "" {
		return fmt.Errorf("%w: remote_id is required", ErrInvalidRequest)
	}

	return nil
}

type BalanceRequest struct {
	Caller
}

func (r BalanceRequest) Validate() error {
	return r.validate()
}

// DebitRequest is a bet.
type DebitRequest struct {
	Caller
	TransactionID string
	RoundID       string
	Amount        decimal.Decimal
}

func (r DebitRequest) Validate() error {
	return validateMovement(r.Caller, r.TransactionID, r.Amount)
}

// CreditRequest is a win.
type CreditRequest struct {
	Caller
	TransactionID string
	RoundID       string
	Amount        decimal.Decimal
}

func (r CreditRequest) Validate() error {
	return validateMovement(r.Caller, r.TransactionID, r.Amount)
}

// RollbackRequest reverses the debit or credit that was sent with
// TransactionID. The amount is always taken from the original.
type RollbackRequest struct {
	Caller
	TransactionID string
	RoundID       string
}

func (r RollbackRequest) Validate() error {
	err := r.validate()
	if err != nil {
		return err
	}

	if r.TransactionID == "" {
		return fmt.Errorf("%w: transaction_id is required", ErrInvalidRequest)
	}

	return nil
}

func validateMovement(c Caller, txID string, amount decimal.Decimal) error {
	err := c.validate()
	if err != nil {
		return err
	}

	if txID == "" {
		return fmt.Errorf("%w: transaction_id is required", ErrInvalidRequest)
	}

	return validateAmount(amount)
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidRequest)
	}

	if !amount.Equal(amount.Truncate(MoneyPlaces)) {
		return fmt.Errorf("%w: amount has more than %d decimal places", ErrInvalidRequest, MoneyPlaces)
	}

	return nil
}

// ParseAmount parses a provider amount such as "12.5" or "12.50".
func ParseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", ErrInvalidRequest)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q: %w", ErrInvalidRequest, s, err)
	}

	err = validateAmount(d)
	if err != nil {
		return decimal.Zero, err
	}

	return d, nil
}
