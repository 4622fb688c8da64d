package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionManager issues and verifies the short-lived tokens handed out after a
// successful PIN validation. A token is bound to exactly one card number; the
// HTTP layer refuses to operate on any other card with it.
type SessionManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewSessionManager(secret, issuer string, ttl time.Duration) *SessionManager {
	return &SessionManager{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

type SessionClaims struct {
	CardNumber string `json:"card"`
	jwt.RegisteredClaims
}

var ErrInvalidSession = errors.New("invalid session token")

// Issue creates a session token for the given card number.
func (sm *SessionManager) Issue(cardNumber string) (token string, expiresAt time.Time, err error) {
	now := time.Now()
	exp := now.Add(sm.ttl)
	claims := SessionClaims{
		CardNumber: cardNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sm.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = tok.SignedString(sm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Parse verifies the token signature, expiry and issuer and returns the card
// number it was issued for.
func (sm *SessionManager) Parse(token string) (string, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return sm.secret, nil
	}, jwt.WithIssuer(sm.issuer))
	if err != nil || claims.CardNumber == "" {
		return "", ErrInvalidSession
	}
	return claims.CardNumber, nil
}
