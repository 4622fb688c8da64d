package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/atmchallenge/atm-backend/internal/cardnum"
)

// MaxFailedAttempts is the lockout threshold: the attempt that raises
// FailedAttempts to this value also sets IsBlocked.
const MaxFailedAttempts = 4

// Card is the stored card row. PINHash is a bcrypt digest, never serialized.
type Card struct {
	ID             string          `json:"id"`
	Number         string          `json:"number"`
	PINHash        string          `json:"-"`
	Balance        decimal.Decimal `json:"balance"`
	ExpirationDate time.Time       `json:"expiration_date"`
	IsBlocked      bool            `json:"is_blocked"`
	FailedAttempts int             `json:"failed_attempts"`
	CreatedAt      time.Time       `json:"created_at"`
	LastAccessAt   *time.Time      `json:"last_access_at,omitempty"`
}

// RemainingAttempts reports how many wrong PINs are left before lockout.
func (c *Card) RemainingAttempts() int {
	n := MaxFailedAttempts - c.FailedAttempts
	if n < 0 {
		return 0
	}
	return n
}

// CardSnapshot is the read-only view returned to callers. The full number is
// included for parity with the stored record; MaskedNumber is the display form.
type CardSnapshot struct {
	Number         string          `json:"card_number"`
	MaskedNumber   string          `json:"masked_card_number"`
	Balance        decimal.Decimal `json:"balance"`
	ExpirationDate time.Time       `json:"expiration_date"`
	IsBlocked      bool            `json:"is_blocked"`
}

// Snapshot builds the caller-facing view of the card.
func (c *Card) Snapshot() CardSnapshot {
	return CardSnapshot{
		Number:         c.Number,
		MaskedNumber:   cardnum.Mask(c.Number),
		Balance:        c.Balance,
		ExpirationDate: c.ExpirationDate,
		IsBlocked:      c.IsBlocked,
	}
}
