package replays

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrMiss = errors.New("replay miss")

// Key identifies one provider callback: the provider transaction id is only
// unique per callback type and player.
type Key struct {
	Type         string
	RemoteID     string
	ProviderTxID string
}

// Entry is the terminal outcome of a callback as it was answered.
type Entry struct {
	Status        string          `json:"status"`
	Balance       decimal.Decimal `json:"balance"`
	TransactionID uuid.UUID       `json:"transactionId"`
}

// Replays is a read-through cache in front of the ledger. The ledger stays
// authoritative: a miss or a cache failure falls back to the database.
type Replays interface {
	Get(ctx context.Context, key Key) (Entry, error)
	Put(ctx context.Context, key Key, e Entry) error
}

// Nop is used when no cache is configured.
type Nop struct{}

func (Nop) Get(context.Context, Key) (Entry, error) { return Entry{}, ErrMiss }

func (Nop) Put(context.Context, Key, Entry) error { return nil }
