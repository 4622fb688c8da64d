package auth

import "golang.org/x/crypto/bcrypt"

// HashPIN returns a bcrypt digest of the 4-digit PIN. PINs are never stored
// or logged in the clear.
func HashPIN(pin string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	return string(b), err
}

// VerifyPIN compares a candidate PIN against the stored digest. Returns a
// non-nil error on mismatch.
func VerifyPIN(pin, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin))
}
