package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	TxnBalanceInquiry TransactionKind = "balance_inquiry"
	TxnWithdrawal     TransactionKind = "withdrawal"
)

// Transaction is one append-only history record for a card. Amount is nil for
// balance inquiries; BalanceAfter is the card balance at the moment the record
// was written. Records are never updated or deleted.
type Transaction struct {
	ID           string           `json:"id"`
	CardID       string           `json:"card_id"`
	Kind         TransactionKind  `json:"kind"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	BalanceAfter decimal.Decimal  `json:"balance_after"`
	CreatedAt    time.Time        `json:"created_at"`
}

// WithdrawalReceipt is returned to the caller after a committed withdrawal.
type WithdrawalReceipt struct {
	Number       string          `json:"card_number"`
	MaskedNumber string          `json:"masked_card_number"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Timestamp    time.Time       `json:"timestamp"`
	Kind         TransactionKind `json:"kind"`
}
