package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/atmchallenge/atm-backend/internal/api/handlers"
	"github.com/atmchallenge/atm-backend/internal/auth"
	"github.com/atmchallenge/atm-backend/internal/config"
	"github.com/atmchallenge/atm-backend/internal/metrics"
	"github.com/atmchallenge/atm-backend/internal/middleware"
	"github.com/atmchallenge/atm-backend/internal/services"
)

func NewRouter(cfg config.Config, authSvc *services.AuthService, atmSvc *services.ATMService, sessions *auth.SessionManager, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(cfg.RateRPS), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	h := handlers.NewATMHandler(authSvc, atmSvc, sessions, log)
	session := middleware.NewSessionMiddleware(sessions)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1/atm", func(r chi.Router) {
		r.Post("/validate-card", h.ValidateCard)
		r.Post("/validate-pin", h.ValidatePin)

		// everything past PIN validation needs the card session token
		r.Group(func(r chi.Router) {
			r.Use(session.Require)
			r.Get("/balance/{cardNumber}", h.GetBalance)
			r.Post("/withdraw", h.Withdraw)
			r.Get("/transactions", h.ListTransactions)
		})
	})

	return r
}
