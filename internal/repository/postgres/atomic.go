package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/atmchallenge/atm-backend/internal/repository"
)

// maxTxAttempts bounds the automatic replay of a whole atomic block after a
// serialization or deadlock failure. Business errors are never replayed.
const maxTxAttempts = 3

type txRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner returns the transaction boundary used by the services.
func NewTxRunner(pool *pgxpool.Pool) repo.Atomic {
	return &txRunner{pool: pool}
}

func (r *txRunner) WithinTx(ctx context.Context, fn func(ctx context.Context, rs repo.Repos) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = r.runOnce(ctx, fn)
		if err == nil || !retryable(err) {
			return err
		}
	}
	return err
}

func (r *txRunner) runOnce(ctx context.Context, fn func(ctx context.Context, rs repo.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	// Rollback is a no-op after a successful commit; the defer guarantees the
	// transaction never leaks on error, panic or cancellation.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, newRepos(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// retryable matches serialization_failure and deadlock_detected.
func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
