package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/atmchallenge/atm-backend/internal/models"
	repo "github.com/atmchallenge/atm-backend/internal/repository"
)

type cardsRepo struct{ q querier }

const cardColumns = `id, number, pin_hash, balance::text, expiration_date, is_blocked, failed_attempts, created_at, last_access_at`

func scanCard(row pgx.Row) (models.Card, error) {
	var (
		c       models.Card
		balance string
	)
	err := row.Scan(&c.ID, &c.Number, &c.PINHash, &balance, &c.ExpirationDate,
		&c.IsBlocked, &c.FailedAttempts, &c.CreatedAt, &c.LastAccessAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Card{}, repo.ErrNotFound
		}
		return models.Card{}, err
	}
	c.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return models.Card{}, err
	}
	return c, nil
}

func (r *cardsRepo) GetByNumber(ctx context.Context, number string) (models.Card, error) {
	return scanCard(r.q.QueryRow(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE number=$1`, number))
}

// GetByNumberForUpdate locks the card row for the rest of the enclosing
// transaction. Concurrent mutations on the same card serialize here.
func (r *cardsRepo) GetByNumberForUpdate(ctx context.Context, number string) (models.Card, error) {
	return scanCard(r.q.QueryRow(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE number=$1 FOR UPDATE`, number))
}

// RegisterFailedAttempt bumps the counter and flips is_blocked in the same
// statement once the counter reaches the threshold, so the two fields can
// never disagree.
func (r *cardsRepo) RegisterFailedAttempt(ctx context.Context, id string) (models.Card, error) {
	return scanCard(r.q.QueryRow(ctx,
		`UPDATE cards
		    SET failed_attempts = failed_attempts + 1,
		        is_blocked = is_blocked OR failed_attempts + 1 >= $2
		  WHERE id=$1
		  RETURNING `+cardColumns,
		id, models.MaxFailedAttempts))
}

func (r *cardsRepo) ResetFailedAttempts(ctx context.Context, id string) (models.Card, error) {
	return scanCard(r.q.QueryRow(ctx,
		`UPDATE cards
		    SET failed_attempts = 0,
		        last_access_at = now()
		  WHERE id=$1
		  RETURNING `+cardColumns,
		id))
}

// DebitBalance applies the debit only while the balance still covers it; the
// condition re-checked at write time keeps the balance non-negative even if a
// caller skipped the row lock.
func (r *cardsRepo) DebitBalance(ctx context.Context, id string, amount decimal.Decimal) (decimal.Decimal, bool, error) {
	var balance string
	err := r.q.QueryRow(ctx,
		`UPDATE cards
		    SET balance = balance - $2::numeric
		  WHERE id=$1 AND balance >= $2::numeric
		  RETURNING balance::text`,
		id, amount.StringFixed(2)).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Decimal{}, false, nil
	}
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	newBalance, err := decimal.NewFromString(balance)
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	return newBalance, true, nil
}
