package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atmchallenge/atm-backend/internal/auth"
)

// SeedDemoCards provisions the demo cards used by the frontend walkthrough.
// PINs are hashed at insert time so no digest literals live in migrations.
// Existing cards are left untouched.
func SeedDemoCards(ctx context.Context, pool *pgxpool.Pool) error {
	cards := []struct {
		number   string
		pin      string
		balance  string
		blocked  bool
		attempts int
	}{
		{"4532015112830366", "1234", "1000.00", false, 0},
		{"4111111111111111", "4321", "500.00", true, 4},
	}

	for _, c := range cards {
		hash, err := auth.HashPIN(c.pin)
		if err != nil {
			return err
		}
		_, err = pool.Exec(ctx,
			`INSERT INTO cards (id, number, pin_hash, balance, expiration_date, is_blocked, failed_attempts)
			 VALUES ($1,$2,$3,$4::numeric,$5,$6,$7)
			 ON CONFLICT (number) DO NOTHING`,
			uuid.NewString(), c.number, hash, c.balance,
			time.Now().AddDate(3, 0, 0), c.blocked, c.attempts)
		if err != nil {
			return err
		}
	}
	return nil
}
