package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atmchallenge/atm-backend/internal/auth"
	"github.com/atmchallenge/atm-backend/internal/models"
	repo "github.com/atmchallenge/atm-backend/internal/repository"
	"github.com/atmchallenge/atm-backend/internal/worker"
)

// fakeStore is an in-memory stand-in for the postgres layer. WithinTx holds
// the store mutex for the whole block (a stricter serialization than the row
// lock) and restores a snapshot when the block fails, mirroring rollback.
type fakeStore struct {
	mu    sync.Mutex
	cards map[string]models.Card // keyed by id
	txns  []models.Transaction
	seq   int

	failAppend bool
	appendAt   time.Time // when set, every Append stamps this instant

	auditMu sync.Mutex
	audits  []models.AuditLog
}

func newFakeStore() *fakeStore {
	return &fakeStore{cards: map[string]models.Card{}}
}

func (s *fakeStore) addCard(t *testing.T, number, pin, balance string, blocked bool, attempts int) models.Card {
	t.Helper()
	hash, err := auth.HashPIN(pin)
	if err != nil {
		t.Fatal(err)
	}
	bal, err := decimal.NewFromString(balance)
	if err != nil {
		t.Fatal(err)
	}
	s.seq++
	c := models.Card{
		ID:             "card-" + strconv.Itoa(s.seq),
		Number:         number,
		PINHash:        hash,
		Balance:        bal,
		ExpirationDate: time.Now().AddDate(3, 0, 0),
		IsBlocked:      blocked,
		FailedAttempts: attempts,
		CreatedAt:      time.Now(),
	}
	s.cards[c.ID] = c
	return c
}

func (s *fakeStore) cardByNumber(number string) (models.Card, bool) {
	for _, c := range s.cards {
		if c.Number == number {
			return c, true
		}
	}
	return models.Card{}, false
}

func (s *fakeStore) repos() repo.Repos {
	return repo.Repos{
		Cards:        &fakeCards{s: s},
		Transactions: &fakeTransactions{s: s},
		AuditLogs:    &fakeAuditLogs{s: s},
	}
}

type fakeCards struct{ s *fakeStore }

func (f *fakeCards) GetByNumber(ctx context.Context, number string) (models.Card, error) {
	if c, ok := f.s.cardByNumber(number); ok {
		return c, nil
	}
	return models.Card{}, repo.ErrNotFound
}

func (f *fakeCards) GetByNumberForUpdate(ctx context.Context, number string) (models.Card, error) {
	return f.GetByNumber(ctx, number)
}

func (f *fakeCards) RegisterFailedAttempt(ctx context.Context, id string) (models.Card, error) {
	c, ok := f.s.cards[id]
	if !ok {
		return models.Card{}, repo.ErrNotFound
	}
	c.FailedAttempts++
	if c.FailedAttempts >= models.MaxFailedAttempts {
		c.IsBlocked = true
	}
	f.s.cards[id] = c
	return c, nil
}

func (f *fakeCards) ResetFailedAttempts(ctx context.Context, id string) (models.Card, error) {
	c, ok := f.s.cards[id]
	if !ok {
		return models.Card{}, repo.ErrNotFound
	}
	now := time.Now()
	c.FailedAttempts = 0
	c.LastAccessAt = &now
	f.s.cards[id] = c
	return c, nil
}

func (f *fakeCards) DebitBalance(ctx context.Context, id string, amount decimal.Decimal) (decimal.Decimal, bool, error) {
	c, ok := f.s.cards[id]
	if !ok {
		return decimal.Decimal{}, false, repo.ErrNotFound
	}
	if c.Balance.LessThan(amount) {
		return decimal.Decimal{}, false, nil
	}
	c.Balance = c.Balance.Sub(amount)
	f.s.cards[id] = c
	return c.Balance, true, nil
}

type fakeTransactions struct{ s *fakeStore }

func (f *fakeTransactions) Append(ctx context.Context, txn models.Transaction) (models.Transaction, error) {
	if f.s.failAppend {
		return models.Transaction{}, errors.New("append failed")
	}
	f.s.seq++
	txn.ID = "txn-" + strconv.Itoa(f.s.seq)
	if !f.s.appendAt.IsZero() {
		txn.CreatedAt = f.s.appendAt
	} else {
		txn.CreatedAt = time.Now()
	}
	f.s.txns = append(f.s.txns, txn)
	return txn, nil
}

func (f *fakeTransactions) ListByCard(ctx context.Context, cardID string, limit, offset int) ([]models.Transaction, error) {
	var matched []models.Transaction
	for i := len(f.s.txns) - 1; i >= 0; i-- { // newest first
		if f.s.txns[i].CardID == cardID {
			matched = append(matched, f.s.txns[i])
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

type fakeAuditLogs struct{ s *fakeStore }

func (f *fakeAuditLogs) Create(ctx context.Context, l models.AuditLog) error {
	f.s.auditMu.Lock()
	defer f.s.auditMu.Unlock()
	f.s.audits = append(f.s.audits, l)
	return nil
}

type fakeAtomic struct{ s *fakeStore }

func (a *fakeAtomic) WithinTx(ctx context.Context, fn func(ctx context.Context, r repo.Repos) error) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	// snapshot for rollback
	savedCards := make(map[string]models.Card, len(a.s.cards))
	for k, v := range a.s.cards {
		savedCards[k] = v
	}
	savedTxns := make([]models.Transaction, len(a.s.txns))
	copy(savedTxns, a.s.txns)

	if err := fn(ctx, a.s.repos()); err != nil {
		a.s.cards = savedCards
		a.s.txns = savedTxns
		return err
	}
	return nil
}

func newTestServices(t *testing.T, s *fakeStore) (*AuthService, *ATMService, *worker.Pool) {
	t.Helper()
	wp := worker.NewPool(1)
	t.Cleanup(wp.Stop)
	log := slog.Default()
	authSvc := NewAuthService(s.repos(), &fakeAtomic{s: s}, wp, log, 2*time.Second)
	atmSvc := NewATMService(s.repos(), &fakeAtomic{s: s}, wp, log, 2*time.Second)
	return authSvc, atmSvc, wp
}

func mustDecimal(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	if err != nil {
		t.Fatal(err)
	}
	return d
}
