package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/atmchallenge/atm-backend/internal/auth"
	"github.com/atmchallenge/atm-backend/internal/cardnum"
	"github.com/atmchallenge/atm-backend/internal/metrics"
	"github.com/atmchallenge/atm-backend/internal/models"
	repo "github.com/atmchallenge/atm-backend/internal/repository"
	"github.com/atmchallenge/atm-backend/internal/worker"
)

// AuthService validates cards and PINs and owns the attempt-lockout rules.
type AuthService struct {
	repos   repo.Repos
	atomic  repo.Atomic
	wp      *worker.Pool
	log     *slog.Logger
	timeout time.Duration
}

func NewAuthService(repos repo.Repos, atomic repo.Atomic, wp *worker.Pool, log *slog.Logger, timeout time.Duration) *AuthService {
	return &AuthService{repos: repos, atomic: atomic, wp: wp, log: log, timeout: timeout}
}

// ValidateCard checks the number's format and checksum, then that the card
// exists and is not blocked. Read-only; this is the only operation that
// verifies the Luhn checksum.
func (s *AuthService) ValidateCard(ctx context.Context, number string) (models.CardSnapshot, error) {
	if !cardnum.Valid(number) {
		return models.CardSnapshot{}, ErrInvalidCardNumber
	}

	ctx, cancel := opCtx(ctx, s.timeout)
	defer cancel()

	card, err := s.repos.Cards.GetByNumber(ctx, cardnum.Normalize(number))
	if err != nil {
		return models.CardSnapshot{}, classify(err)
	}
	if card.IsBlocked {
		return models.CardSnapshot{}, ErrCardBlocked
	}
	return card.Snapshot(), nil
}

// ValidatePin checks the PIN against the stored hash. A wrong PIN increments
// failed_attempts and, on the attempt that reaches the threshold, blocks the
// card in the same statement; that mutation commits even though the call
// reports an error. A correct PIN resets the counter and stamps the access
// time. The row lock makes concurrent attempts on one card serialize, so the
// remaining-attempts count returned is never stale.
func (s *AuthService) ValidatePin(ctx context.Context, number, pin string) (models.CardSnapshot, error) {
	ctx, cancel := opCtx(ctx, s.timeout)
	defer cancel()

	var (
		snap  models.CardSnapshot
		opErr error
	)
	err := s.atomic.WithinTx(ctx, func(ctx context.Context, r repo.Repos) error {
		card, err := r.Cards.GetByNumberForUpdate(ctx, number)
		if err != nil {
			return err
		}
		if card.IsBlocked {
			opErr = ErrCardBlocked
			return nil
		}

		if auth.VerifyPIN(pin, card.PINHash) != nil {
			updated, err := r.Cards.RegisterFailedAttempt(ctx, card.ID)
			if err != nil {
				return err
			}
			metrics.PinFailuresTotal.Inc()
			if updated.IsBlocked {
				metrics.CardsBlockedTotal.Inc()
				opErr = ErrPinIncorrectBlocked
				s.audit(card.ID, "card_blocked", map[string]any{
					"failed_attempts": updated.FailedAttempts,
				})
			} else {
				opErr = &PinIncorrectError{RemainingAttempts: updated.RemainingAttempts()}
				s.audit(card.ID, "pin_failed", map[string]any{
					"remaining_attempts": updated.RemainingAttempts(),
				})
			}
			// Returning nil commits the increment; the business error travels
			// through opErr instead of the rollback path.
			return nil
		}

		updated, err := r.Cards.ResetFailedAttempts(ctx, card.ID)
		if err != nil {
			return err
		}
		snap = updated.Snapshot()
		return nil
	})
	if err != nil {
		return models.CardSnapshot{}, classify(err)
	}
	if opErr != nil {
		return models.CardSnapshot{}, opErr
	}
	return snap, nil
}

func (s *AuthService) audit(cardID, action string, details map[string]any) {
	id := cardID
	s.wp.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.repos.AuditLogs.Create(ctx, models.AuditLog{
			EntityType: "card",
			EntityID:   &id,
			Action:     action,
			Details:    details,
		}); err != nil {
			s.log.Error("audit write failed", "action", action, "err", err)
		}
	})
}

// opCtx bounds every storage call so a stalled database surfaces as
// ErrUnavailable instead of a hung request.
func opCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

// classify translates storage errors into the service taxonomy. Anything that
// is not a missing record is reported as unavailable and safe to retry.
func classify(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrCardNotFound
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
