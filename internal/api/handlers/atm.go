package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/atmchallenge/atm-backend/internal/api/httpx"
	"github.com/atmchallenge/atm-backend/internal/api/validate"
	"github.com/atmchallenge/atm-backend/internal/auth"
	"github.com/atmchallenge/atm-backend/internal/cardnum"
	"github.com/atmchallenge/atm-backend/internal/middleware"
	"github.com/atmchallenge/atm-backend/internal/models"
	"github.com/atmchallenge/atm-backend/internal/services"
)

// ATMHandler adapts the ATM services to HTTP. Request-shape checks live here;
// the business rules live in the services.
type ATMHandler struct {
	Auth     *services.AuthService
	ATM      *services.ATMService
	Sessions *auth.SessionManager
	Log      *slog.Logger
}

func NewATMHandler(authSvc *services.AuthService, atmSvc *services.ATMService, sessions *auth.SessionManager, log *slog.Logger) *ATMHandler {
	return &ATMHandler{Auth: authSvc, ATM: atmSvc, Sessions: sessions, Log: log}
}

type cardValidationReq struct {
	CardNumber string `json:"card_number"`
}

type pinValidationReq struct {
	CardNumber string `json:"card_number"`
	PIN        string `json:"pin"`
}

type withdrawalReq struct {
	CardNumber string `json:"card_number"`
	Amount     string `json:"amount"`
}

type pinValidationResp struct {
	Card         models.CardSnapshot `json:"card"`
	SessionToken string              `json:"session_token"`
	ExpiresAt    time.Time           `json:"expires_at"`
}

func (h *ATMHandler) ValidateCard(w http.ResponseWriter, r *http.Request) {
	var req cardValidationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "malformed request body", nil)
		return
	}
	if ef := validate.Required("card_number", req.CardNumber); ef != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "invalid request", validate.Errs{*ef})
		return
	}

	snap, err := h.Auth.ValidateCard(r.Context(), req.CardNumber)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, snap)
}

func (h *ATMHandler) ValidatePin(w http.ResponseWriter, r *http.Request) {
	var req pinValidationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "malformed request body", nil)
		return
	}
	var errs validate.Errs
	if ef := validate.Required("card_number", req.CardNumber); ef != nil {
		errs = append(errs, *ef)
	}
	if ef := validate.Digits("pin", req.PIN, 4); ef != nil {
		errs = append(errs, *ef)
	}
	if len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "invalid request", errs)
		return
	}

	snap, err := h.Auth.ValidatePin(r.Context(), cardnum.Normalize(req.CardNumber), req.PIN)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	token, exp, err := h.Sessions.Issue(snap.Number)
	if err != nil {
		h.Log.Error("session issue failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pinValidationResp{Card: snap, SessionToken: token, ExpiresAt: exp})
}

func (h *ATMHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	number := cardnum.Normalize(chi.URLParam(r, "cardNumber"))
	if !h.sessionMatches(w, r, number) {
		return
	}

	snap, err := h.ATM.GetBalance(r.Context(), number)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, snap)
}

func (h *ATMHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawalReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "malformed request body", nil)
		return
	}
	var errs validate.Errs
	if ef := validate.Required("card_number", req.CardNumber); ef != nil {
		errs = append(errs, *ef)
	}
	if ef := validate.Required("amount", req.Amount); ef != nil {
		errs = append(errs, *ef)
	}
	if len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "invalid request", errs)
		return
	}
	number := cardnum.Normalize(req.CardNumber)
	if !h.sessionMatches(w, r, number) {
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_amount", "amount must be a decimal number", nil)
		return
	}

	receipt, err := h.ATM.Withdraw(r.Context(), number, amount)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, receipt)
}

func (h *ATMHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	number, ok := middleware.SessionCard(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing_session", "missing session", nil)
		return
	}

	limit, offset := 50, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	txns, err := h.ATM.History(r.Context(), number, limit, offset)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	httpx.WriteJSON(w, http.StatusOK, txns)
}

// sessionMatches rejects requests whose session token was issued for a
// different card than the one being operated on.
func (h *ATMHandler) sessionMatches(w http.ResponseWriter, r *http.Request, number string) bool {
	card, ok := middleware.SessionCard(r.Context())
	if !ok || card != number {
		httpx.WriteError(w, http.StatusForbidden, "session_mismatch", "session token does not match card", nil)
		return false
	}
	return true
}

func (h *ATMHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var pinErr *services.PinIncorrectError
	switch {
	case errors.Is(err, services.ErrInvalidCardNumber):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_card_number", "card number is invalid", nil)
	case errors.Is(err, services.ErrCardNotFound):
		httpx.WriteError(w, http.StatusNotFound, "card_not_found", "card not found", nil)
	case errors.Is(err, services.ErrCardBlocked):
		httpx.WriteError(w, http.StatusForbidden, "card_blocked", "card is blocked", nil)
	case errors.As(err, &pinErr):
		httpx.WriteError(w, http.StatusUnauthorized, "pin_incorrect", "incorrect PIN",
			map[string]int{"remaining_attempts": pinErr.RemainingAttempts})
	case errors.Is(err, services.ErrPinIncorrectBlocked):
		httpx.WriteError(w, http.StatusForbidden, "pin_incorrect_blocked",
			"incorrect PIN, card has been blocked after too many failed attempts", nil)
	case errors.Is(err, services.ErrInvalidAmount):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_amount", "amount must be positive with at most two decimals", nil)
	case errors.Is(err, services.ErrInsufficientFunds):
		httpx.WriteError(w, http.StatusUnprocessableEntity, "insufficient_funds", "insufficient funds", nil)
	case errors.Is(err, services.ErrUnavailable):
		h.Log.Error("storage unavailable", "err", err, "request_id", middleware.RequestIDFrom(r.Context()))
		httpx.WriteError(w, http.StatusServiceUnavailable, "unavailable", "service temporarily unavailable", nil)
	default:
		h.Log.Error("unhandled service error", "err", err, "request_id", middleware.RequestIDFrom(r.Context()))
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
