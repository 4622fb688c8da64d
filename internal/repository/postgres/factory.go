package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/atmchallenge/atm-backend/internal/repository"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same
// repository code serves pooled reads and transaction-scoped work.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewRepositories returns pool-backed stores for non-transactional access.
func NewRepositories(pool *pgxpool.Pool) repo.Repos {
	return newRepos(pool)
}

func newRepos(q querier) repo.Repos {
	return repo.Repos{
		Cards:        &cardsRepo{q: q},
		Transactions: &transactionsRepo{q: q},
		AuditLogs:    &auditLogsRepo{q: q},
	}
}
