package services

import (
	"errors"
	"fmt"
)

// Business failures are typed values returned to the caller; they never
// surface as panics or bare strings. Only ErrUnavailable marks an
// infrastructure problem that is safe to retry as a whole operation.
var (
	ErrInvalidCardNumber   = errors.New("invalid card number")
	ErrCardNotFound        = errors.New("card not found")
	ErrCardBlocked         = errors.New("card blocked")
	ErrPinIncorrectBlocked = errors.New("pin incorrect, card is now blocked")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrUnavailable         = errors.New("storage unavailable")
)

// PinIncorrectError reports a wrong PIN while attempts remain. The count lets
// the caller warn the user before lockout.
type PinIncorrectError struct {
	RemainingAttempts int
}

func (e *PinIncorrectError) Error() string {
	return fmt.Sprintf("pin incorrect, %d attempts remaining", e.RemainingAttempts)
}
