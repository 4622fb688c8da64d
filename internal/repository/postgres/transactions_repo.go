package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atmchallenge/atm-backend/internal/models"
)

type transactionsRepo struct{ q querier }

// Append inserts one immutable history record. There is no update or delete
// path anywhere in this repository.
func (r *transactionsRepo) Append(ctx context.Context, txn models.Transaction) (models.Transaction, error) {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	var amount *string
	if txn.Amount != nil {
		s := txn.Amount.StringFixed(2)
		amount = &s
	}
	err := r.q.QueryRow(ctx,
		`INSERT INTO transactions (id, card_id, kind, amount, balance_after)
		 VALUES ($1,$2,$3,$4::numeric,$5::numeric)
		 RETURNING created_at`,
		txn.ID, txn.CardID, txn.Kind, amount, txn.BalanceAfter.StringFixed(2),
	).Scan(&txn.CreatedAt)
	return txn, err
}

func (r *transactionsRepo) ListByCard(ctx context.Context, cardID string, limit, offset int) ([]models.Transaction, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, card_id, kind, amount::text, balance_after::text, created_at
		   FROM transactions
		  WHERE card_id=$1
		  ORDER BY seq DESC
		  LIMIT $2 OFFSET $3`,
		cardID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var (
			txn          models.Transaction
			amount       *string
			balanceAfter string
		)
		if err := rows.Scan(&txn.ID, &txn.CardID, &txn.Kind, &amount, &balanceAfter, &txn.CreatedAt); err != nil {
			return nil, err
		}
		if amount != nil {
			d, err := decimal.NewFromString(*amount)
			if err != nil {
				return nil, err
			}
			txn.Amount = &d
		}
		if txn.BalanceAfter, err = decimal.NewFromString(balanceAfter); err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	return out, rows.Err()
}
