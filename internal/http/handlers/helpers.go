package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"tablepay-gateway/internal/bill"
	"tablepay-gateway/internal/payment"
	"tablepay-gateway/internal/upstream"
	"tablepay-gateway/pkg/response"
)

func readPathString(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

func readPathInt64(r *http.Request, key string) (int64, error) {
	value := readPathString(r, key)
	if value == "" {
		return 0, errMissingParam
	}
	var out int64
	_, err := fmt.Sscan(value, &out)
	return out, err
}

var errMissingParam = errors.New("missing param")

func decodeBody(r *http.Request, out any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	return dec.Decode(out)
}

// tableTokenParam normalizes the token from the URL. Empty after
// normalization means the request is unanswerable.
func tableTokenParam(r *http.Request) string {
	return bill.NormalizeTableToken(readPathString(r, "tableToken"))
}

// fetchSnapshot pulls the current bill straight from the backend. Quote and
// reserve decisions always run against a fresh fetch rather than a possibly
// stale watcher state.
func (h *Handler) fetchSnapshot(ctx context.Context, token string) (*bill.Snapshot, error) {
	envelope, err := h.Upstream.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	return envelope.Snapshot(), nil
}

// writeUpstreamError translates a backend failure into our envelope,
// preserving the backend's status and code when it sent one.
func writeUpstreamError(w http.ResponseWriter, err error) {
	var upErr *upstream.Error
	if errors.As(err, &upErr) {
		status := upErr.Status
		if status < 400 {
			status = http.StatusBadGateway
		}
		code := upErr.Code
		if code == "" {
			code = "UPSTREAM_ERROR"
		}
		response.Error(w, status, code, upErr.Message)
		return
	}
	response.Error(w, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "backend request failed")
}

// blockedCode maps a reservation validation failure to a stable error code.
func blockedCode(err error) (string, string, bool) {
	switch {
	case errors.Is(err, payment.ErrNotLoaded):
		return "NOT_LOADED", bill.ReasonLoading, true
	case errors.Is(err, payment.ErrRemainingUnknown):
		return "REMAINING_UNKNOWN", bill.ReasonLoading, true
	case errors.Is(err, payment.ErrInvalidAmount):
		return "INVALID_AMOUNT", payment.ErrInvalidAmount.Error(), true
	case errors.Is(err, payment.ErrExceedsRemaining):
		return "EXCEEDS_REMAINING", payment.ErrExceedsRemaining.Error(), true
	case errors.Is(err, payment.ErrBusy):
		return "BUSY", payment.ErrBusy.Error(), true
	}
	return "", "", false
}

// formatMoney renders a smallest-unit amount as a decimal string for the
// server-rendered screens, e.g. 12345 -> "123.45".
func formatMoney(amount int64, currency string) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	major := amount / 100
	minor := amount % 100
	out := fmt.Sprintf("%d.%02d", major, minor)
	if negative {
		out = "-" + out
	}
	if strings.TrimSpace(currency) != "" {
		out = out + " " + currency
	}
	return out
}
