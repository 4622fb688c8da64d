package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/atmchallenge/atm-backend/internal/api/httpx"
	"github.com/atmchallenge/atm-backend/internal/auth"
)

type ctxKey string

const ctxCardKey ctxKey = "card"

// SessionCard returns the card number the request's session token was issued
// for.
func SessionCard(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxCardKey).(string)
	return v, ok
}

type SessionMiddleware struct {
	SM *auth.SessionManager
}

func NewSessionMiddleware(sm *auth.SessionManager) *SessionMiddleware {
	return &SessionMiddleware{SM: sm}
}

// Require rejects requests without a valid Bearer session token and puts the
// token's card number in the context. Handlers still verify the token card
// matches the card being operated on.
func (m *SessionMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ah := r.Header.Get("Authorization")
		if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
			httpx.WriteError(w, http.StatusUnauthorized, "missing_session", "missing bearer session token", nil)
			return
		}
		token := strings.TrimSpace(ah[len("Bearer "):])
		card, err := m.SM.Parse(token)
		if err != nil {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_session", "invalid or expired session token", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxCardKey, card)))
	})
}
