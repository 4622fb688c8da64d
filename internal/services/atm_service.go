package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atmchallenge/atm-backend/internal/cardnum"
	"github.com/atmchallenge/atm-backend/internal/metrics"
	"github.com/atmchallenge/atm-backend/internal/models"
	repo "github.com/atmchallenge/atm-backend/internal/repository"
	"github.com/atmchallenge/atm-backend/internal/worker"
)

// ATMService performs balance inquiries and withdrawals. Every mutating
// sequence runs inside one database transaction with the card row locked, so
// two concurrent withdrawals on the same card can never both pass the balance
// check (the double-spend case).
type ATMService struct {
	repos   repo.Repos
	atomic  repo.Atomic
	wp      *worker.Pool
	log     *slog.Logger
	timeout time.Duration
}

func NewATMService(repos repo.Repos, atomic repo.Atomic, wp *worker.Pool, log *slog.Logger, timeout time.Duration) *ATMService {
	return &ATMService{repos: repos, atomic: atomic, wp: wp, log: log, timeout: timeout}
}

// GetBalance records a balance_inquiry transaction and returns the snapshot.
// The card row is locked for the read so the recorded balance_after cannot
// span a concurrent debit. The card itself is not mutated.
func (s *ATMService) GetBalance(ctx context.Context, number string) (models.CardSnapshot, error) {
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
		_, err = r.Transactions.Append(ctx, models.Transaction{
			CardID:       card.ID,
			Kind:         models.TxnBalanceInquiry,
			BalanceAfter: card.Balance,
		})
		if err != nil {
			return err
		}
		snap = card.Snapshot()
		return nil
	})
	if err != nil {
		return models.CardSnapshot{}, classify(err)
	}
	if opErr != nil {
		return models.CardSnapshot{}, opErr
	}
	metrics.BalanceInquiriesTotal.Inc()
	return snap, nil
}

// Withdraw debits the card and appends the withdrawal record atomically:
// either both persist or neither does. Amount must be positive with at most
// two decimal places.
func (s *ATMService) Withdraw(ctx context.Context, number string, amount decimal.Decimal) (models.WithdrawalReceipt, error) {
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return models.WithdrawalReceipt{}, ErrInvalidAmount
	}

	ctx, cancel := opCtx(ctx, s.timeout)
	defer cancel()

	var (
		receipt models.WithdrawalReceipt
		opErr   error
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
		if amount.GreaterThan(card.Balance) {
			opErr = ErrInsufficientFunds
			return nil
		}

		newBalance, ok, err := r.Cards.DebitBalance(ctx, card.ID, amount)
		if err != nil {
			return err
		}
		if !ok {
			opErr = ErrInsufficientFunds
			return nil
		}

		rec, err := r.Transactions.Append(ctx, models.Transaction{
			CardID:       card.ID,
			Kind:         models.TxnWithdrawal,
			Amount:       &amount,
			BalanceAfter: newBalance,
		})
		if err != nil {
			return err
		}

		receipt = models.WithdrawalReceipt{
			Number:       card.Number,
			MaskedNumber: cardnum.Mask(card.Number),
			Amount:       amount,
			BalanceAfter: newBalance,
			Timestamp:    rec.CreatedAt,
			Kind:         models.TxnWithdrawal,
		}
		s.audit(card.ID, "withdrawal", map[string]any{
			"amount":        amount.StringFixed(2),
			"balance_after": newBalance.StringFixed(2),
		})
		return nil
	})
	if err != nil {
		metrics.WithdrawalsTotal.WithLabelValues("unavailable").Inc()
		return models.WithdrawalReceipt{}, classify(err)
	}
	if opErr != nil {
		metrics.WithdrawalsTotal.WithLabelValues(outcomeLabel(opErr)).Inc()
		return models.WithdrawalReceipt{}, opErr
	}
	metrics.WithdrawalsTotal.WithLabelValues("ok").Inc()
	return receipt, nil
}

// History returns the card's transaction records, most recent first.
func (s *ATMService) History(ctx context.Context, number string, limit, offset int) ([]models.Transaction, error) {
	ctx, cancel := opCtx(ctx, s.timeout)
	defer cancel()

	card, err := s.repos.Cards.GetByNumber(ctx, number)
	if err != nil {
		return nil, classify(err)
	}
	if card.IsBlocked {
		return nil, ErrCardBlocked
	}
	txns, err := s.repos.Transactions.ListByCard(ctx, card.ID, limit, offset)
	if err != nil {
		return nil, classify(err)
	}
	return txns, nil
}

func (s *ATMService) audit(cardID, action string, details map[string]any) {
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

func outcomeLabel(err error) string {
	switch err {
	case ErrInsufficientFunds:
		return "insufficient_funds"
	case ErrCardBlocked:
		return "blocked"
	default:
		return "error"
	}
}
