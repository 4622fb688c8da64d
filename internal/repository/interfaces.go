package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/atmchallenge/atm-backend/internal/models"
)

// Cards is the card store contract. Mutating methods return the updated row so
// the caller never reports a stale attempt counter or balance.
type Cards interface {
	// GetByNumber reads the card without locking it.
	GetByNumber(ctx context.Context, number string) (models.Card, error)

	// GetByNumberForUpdate reads the card and, when running inside a
	// transaction, locks its row until commit or rollback.
	GetByNumberForUpdate(ctx context.Context, number string) (models.Card, error)

	// RegisterFailedAttempt increments failed_attempts by one and, in the same
	// statement, sets is_blocked when the counter reaches the lockout
	// threshold. Returns the updated card.
	RegisterFailedAttempt(ctx context.Context, id string) (models.Card, error)

	// ResetFailedAttempts zeroes the counter and stamps last_access_at.
	// Returns the updated card.
	ResetFailedAttempts(ctx context.Context, id string) (models.Card, error)

	// DebitBalance subtracts amount from the card balance only if the balance
	// covers it. Returns ErrNoRows-style failure via ok=false when the
	// condition does not hold.
	DebitBalance(ctx context.Context, id string, amount decimal.Decimal) (newBalance decimal.Decimal, ok bool, err error)
}

// Transactions is the append-only history store.
type Transactions interface {
	Append(ctx context.Context, txn models.Transaction) (models.Transaction, error)
	ListByCard(ctx context.Context, cardID string, limit, offset int) ([]models.Transaction, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}

// Repos bundles the stores handed to an atomic block. Inside WithinTx all of
// them operate on the same database transaction.
type Repos struct {
	Cards        Cards
	Transactions Transactions
	AuditLogs    AuditLogs
}

// Atomic is the transaction boundary. WithinTx begins a transaction, runs fn
// with transaction-scoped repositories, commits when fn returns nil and rolls
// back on error, panic or context cancellation.
type Atomic interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}

// ErrNotFound is returned by every store when the keyed record does not exist.
var ErrNotFound = errors.New("record not found")
