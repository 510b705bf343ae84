package wallet

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/fastprodman/seamlesswallet/internal/repos/accounts"
	"github.com/fastprodman/seamlesswallet/internal/repos/replays"
	"github.com/fastprodman/seamlesswallet/internal/repos/sessions"
	"github.com/fastprodman/seamlesswallet/internal/repos/transactions"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// memStore backs every repository of the engine with maps. WithTx holds one
// global lock and restores a snapshot when fn fails, which is the isolation
// the account row lock gives the real store for a single account.
type memStore struct {
	mu sync.Mutex

	balances map[int64]decimal.Decimal
	sessions []sessions.Session
	ledger   []transactions.Record

	// insertErr, when set, is returned by the next Insert.
	insertErr error
	clock     time.Time
}

var (
	_ accounts.Accounts         = (*memStore)(nil)
	_ sessions.Sessions         = (*memStore)(nil)
	_ transactions.Transactions = (*memStore)(nil)
	_ TxScope                   = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{
		balances: make(map[int64]decimal.Decimal),
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

type memSnapshot struct {
	balances map[int64]decimal.Decimal
	sessions []sessions.Session
	ledger   []transactions.Record
}

func (s *memStore) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := memSnapshot{
		balances: maps.Clone(s.balances),
		sessions: slices.Clone(s.sessions),
		ledger:   slices.Clone(s.ledger),
	}

	defer func() {
		if p := recover(); p != nil {
			s.restore(snap)
			panic(p)
		}
	}()

	err = fn(nil)
	if err != nil {
		s.restore(snap)
		return fmt.Errorf("fn: %w", err)
	}

	return nil
}

func (s *memStore) restore(snap memSnapshot) {
	s.balances = snap.balances
	s.sessions = snap.sessions
	s.ledger = snap.ledger
}

// test helpers; they take the lock themselves

func (s *memStore) addAccount(id int64, balance string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balances[id] = decimal.RequireFromString(balance)
}

func (s *memStore) addSession(accountID int64, remoteID, token string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clock = s.clock.Add(time.Second)
	id := int64(len(s.sessions) + 1)

	s.sessions = append(s.sessions, sessions.Session{
		ID:           id,
		AccountID:    accountID,
		Provider:     "test-provider",
		RemoteID:     remoteID,
		SessionToken: token,
		GameRef:      "test-game",
		IsActive:     true,
		LastActivity: s.clock,
		CreatedAt:    s.clock,
	})

	return id
}

func (s *memStore) balanceOf(id int64) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.balances[id]
}

func (s *memStore) rows() []transactions.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.ledger)
}

func (s *memStore) session(id int64) sessions.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions[id-1]
}

func (s *memStore) closeSession(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id-1].IsActive = false
}

func (s *memStore) failNextInsert(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insertErr = err
}

// accounts.Accounts

func (s *memStore) GetBalance(_ context.Context, _ sqlx.ExtContext, accountID int64) (decimal.Decimal, error) {
	b, ok := s.balances[accountID]
	if !ok {
		return decimal.Zero, accounts.ErrAccountNotFound
	}

	return b, nil
}

func (s *memStore) LockAndGetBalance(ctx context.Context, q sqlx.ExtContext, accountID int64) (decimal.Decimal, error) {
	return s.GetBalance(ctx, q, accountID)
}

func (s *memStore) IncreaseBalance(_ context.Context, _ sqlx.ExtContext, accountID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	b, ok := s.balances[accountID]
	if !ok {
		return decimal.Zero, accounts.ErrAccountNotFound
	}

	s.balances[accountID] = b.Add(amount)

	return s.balances[accountID], nil
}

func (s *memStore) DecreaseBalance(_ context.Context, _ sqlx.ExtContext, accountID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	b, ok := s.balances[accountID]
	if !ok || b.LessThan(amount) {
		return decimal.Zero, accounts.ErrInsufficientFunds
	}

	s.balances[accountID] = b.Sub(amount)

	return s.balances[accountID], nil
}

// sessions.Sessions

func (s *memStore) FindActiveByRemoteID(_ context.Context, _ sqlx.ExtContext, remoteID string) (sessions.Session, error) {
	var (
		best  sessions.Session
		found bool
	)

	for _, sess := range s.sessions {
		if sess.RemoteID != remoteID || !sess.IsActive {
			continue
		}

		newer := sess.CreatedAt.After(best.CreatedAt) ||
			(sess.CreatedAt.Equal(best.CreatedAt) && sess.ID > best.ID)
		if !found || newer {
			best, found = sess, true
		}
	}

	if !found {
		return sessions.Session{}, sessions.ErrSessionNotFound
	}

	return best, nil
}

func (s *memStore) Touch(_ context.Context, _ sqlx.ExtContext, sessionID int64, at time.Time) error {
	for i := range s.sessions {
		if s.sessions[i].ID == sessionID {
			s.sessions[i].LastActivity = at
			return nil
		}
	}

	return sessions.ErrSessionNotFound
}

func (s *memStore) Create(_ context.Context, _ sqlx.ExtContext, sess sessions.Session) (int64, error) {
	sess.ID = int64(len(s.sessions) + 1)
	sess.IsActive = true
	s.sessions = append(s.sessions, sess)

	return sess.ID, nil
}

// transactions.Transactions

func (s *memStore) Insert(_ context.Context, _ sqlx.ExtContext, rec transactions.Record) (transactions.Record, error) {
	if s.insertErr != nil {
		err := s.insertErr
		s.insertErr = nil

		return transactions.Record{}, err
	}

	for _, r := range s.ledger {
		if r.Type == rec.Type && r.ProviderTransactionID == rec.ProviderTransactionID {
			return transactions.Record{}, transactions.ErrDuplicateTransaction
		}
	}

	s.clock = s.clock.Add(time.Millisecond)
	rec.CreatedAt = s.clock
	s.ledger = append(s.ledger, rec)

	return rec, nil
}

func (s *memStore) FindByProviderID(_ context.Context, _ sqlx.ExtContext, typ transactions.Type, providerTxID string) (transactions.Record, error) {
	for _, r := range s.ledger {
		if r.Type == typ && r.ProviderTransactionID == providerTxID {
			return r, nil
		}
	}

	return transactions.Record{}, transactions.ErrTransactionNotFound
}

func (s *memStore) FindReversible(_ context.Context, _ sqlx.ExtContext, providerTxID string) (transactions.Record, error) {
	for i := len(s.ledger) - 1; i >= 0; i-- {
		r := s.ledger[i]
		if r.ProviderTransactionID == providerTxID &&
			(r.Type == transactions.TypeDebit || r.Type == transactions.TypeCredit) {
			return r, nil
		}
	}

	return transactions.Record{}, transactions.ErrTransactionNotFound
}

func (s *memStore) FindRollbackOf(_ context.Context, _ sqlx.ExtContext, originalID uuid.UUID) (transactions.Record, error) {
	for _, r := range s.ledger {
		if r.Type == transactions.TypeRollback && r.RelatedTransactionID.Valid && r.RelatedTransactionID.UUID == originalID {
			return r, nil
		}
	}

	return transactions.Record{}, transactions.ErrTransactionNotFound
}

func (s *memStore) MarkRolledBack(_ context.Context, _ sqlx.ExtContext, id uuid.UUID) error {
	for i := range s.ledger {
		if s.ledger[i].ID == id && s.ledger[i].Status == transactions.StatusSuccess {
			s.ledger[i].Status = transactions.StatusRolledBack
			return nil
		}
	}

	return transactions.ErrTransactionNotFound
}

// memReplays is an in-memory replay cache.
type memReplays struct {
	mu      sync.Mutex
	entries map[replays.Key]replays.Entry
	getErr  error
	hits    int
}

func newMemReplays() *memReplays {
	return &memReplays{entries: make(map[replays.Key]replays.Entry)}
}

func (r *memReplays) Get(_ context.Context, key replays.Key) (replays.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.getErr != nil {
		return replays.Entry{}, r.getErr
	}

	e, ok := r.entries[key]
	if !ok {
		return replays.Entry{}, replays.ErrMiss
	}

	r.hits++

	return e, nil
}

func (r *memReplays) Put(_ context.Context, key replays.Key, e replays.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[key] = e

	return nil
}

func (r *memReplays) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

type fixture struct {
	store  *memStore
	engine *Engine
}

func newFixture(t *testing.T, cache replays.Replays) fixture {
	t.Helper()

	store := newMemStore()

	engine := New(Deps{
		Tx:       store,
		Accounts: store,
		Sessions: store,
		Ledger:   store,
		Replays:  cache,
		Now:      func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
	})

	return fixture{store: store, engine: engine}
}

// player seeds an account with one active session and returns its caller.
func (f fixture) player(id int64, balance string) Caller {
	remoteID := fmt.Sprintf("remote-%d", id)

	f.store.addAccount(id, balance)
	f.store.addSession(id, remoteID, fmt.Sprintf("token-%d", id))

	return Caller{RemoteID: remoteID}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var errBoom = errors.New("boom")
