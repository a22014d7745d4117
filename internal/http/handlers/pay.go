package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"tablepay-gateway/internal/bill"
	"tablepay-gateway/internal/metrics"
	"tablepay-gateway/internal/payment"
	"tablepay-gateway/pkg/response"
)

type reserveRequest struct {
	Mode       string           `json:"mode"`
	Amount     string           `json:"amount"`
	People     string           `json:"people"`
	Selections *bill.Selections `json:"selections"`
}

// SessionReserve recomputes the share from the posted inputs against a
// fresh snapshot, then drives the hold + payment-intent flow. Validation
// failures come back as blocked responses and never touch the backend's
// payment endpoints.
func (h *Handler) SessionReserve(w http.ResponseWriter, r *http.Request) {
	token := tableTokenParam(r)
	if token == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "table token is required")
		return
	}

	var req reserveRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}
	mode, ok := bill.ParseMode(req.Mode)
	if !ok {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "unknown split mode")
		return
	}

	snap, err := h.fetchSnapshot(r.Context(), token)
	if err != nil {
		metrics.Reservations.WithLabelValues("failed").Inc()
		writeUpstreamError(w, err)
		return
	}
	if req.Selections != nil {
		req.Selections.Reconcile(snap.Items)
	}

	quote := bill.ComputeQuote(snap, mode, bill.QuoteParams{
		Amount:     req.Amount,
		People:     req.People,
		Selections: req.Selections,
	})
	if quote.Amount <= 0 {
		metrics.Reservations.WithLabelValues("blocked").Inc()
		response.Blocked(w, "NO_AMOUNT", quote.Reason)
		return
	}

	reservation, err := h.Flow.Reserve(r.Context(), token, quote.Amount, snap)
	if err != nil {
		if code, reason, blocked := blockedCode(err); blocked {
			metrics.Reservations.WithLabelValues("blocked").Inc()
			response.Blocked(w, code, reason)
			return
		}
		metrics.Reservations.WithLabelValues("failed").Inc()
		h.Logger.Error("reservation failed",
			zap.String("tableToken", token),
			zap.Int64("amount", quote.Amount),
			zap.Error(err))
		writeUpstreamError(w, err)
		return
	}

	metrics.Reservations.WithLabelValues("reserved").Inc()
	h.Registry.Kick(token)
	response.Success(w, reservation)
}

type confirmRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
	HoldID          string `json:"holdId"`
	TableToken      string `json:"tableToken"`
	Outcome         string `json:"outcome"`
}

// PayConfirm settles a payment intent with the chosen outcome and nudges
// the table's watcher so every viewer sees the new balance immediately.
func (h *Handler) PayConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeBody(r, &req); err != nil || req.PaymentIntentID == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "paymentIntentId is required")
		return
	}

	if err := h.Flow.Confirm(r.Context(), req.PaymentIntentID, req.HoldID, req.Outcome); err != nil {
		if errors.Is(err, payment.ErrInvalidOutcome) {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		metrics.Confirmations.WithLabelValues("error").Inc()
		writeUpstreamError(w, err)
		return
	}

	metrics.Confirmations.WithLabelValues(req.Outcome).Inc()
	if token := bill.NormalizeTableToken(req.TableToken); token != "" {
		h.Registry.Kick(token)
	}
	response.Success(w, map[string]string{"outcome": req.Outcome})
}

type cancelRequest struct {
	HoldID     string `json:"holdId"`
	TableToken string `json:"tableToken"`
}

// PayCancel abandons a reservation. Release is best effort; the response is
// success regardless because the hold expires upstream either way.
func (h *Handler) PayCancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := decodeBody(r, &req); err != nil || req.HoldID == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "holdId is required")
		return
	}

	h.Flow.Cancel(r.Context(), req.HoldID)
	if token := bill.NormalizeTableToken(req.TableToken); token != "" {
		h.Registry.Kick(token)
	}
	response.Success(w, map[string]bool{"released": true})
}
