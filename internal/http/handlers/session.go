package handlers

import (
	"net/http"

	"tablepay-gateway/internal/bill"
	"tablepay-gateway/pkg/response"
)

// SessionGet returns the current bill snapshot for a table.
func (h *Handler) SessionGet(w http.ResponseWriter, r *http.Request) {
	token := tableTokenParam(r)
	if token == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "table token is required")
		return
	}

	snap, err := h.fetchSnapshot(r.Context(), token)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	response.Success(w, snap)
}

type quoteRequest struct {
	Mode       string           `json:"mode"`
	Amount     string           `json:"amount"`
	People     string           `json:"people"`
	Selections *bill.Selections `json:"selections"`
}

type quoteResponse struct {
	Amount    int64  `json:"amount"`
	Formatted string `json:"formatted,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// SessionQuote recomputes the participant's share server-side from the
// posted mode inputs and a fresh snapshot. A blocked quote is still a 200:
// zero amount plus the reason to show inline.
func (h *Handler) SessionQuote(w http.ResponseWriter, r *http.Request) {
	token := tableTokenParam(r)
	if token == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "table token is required")
		return
	}

	var req quoteRequest
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
		// quoting against an unreachable backend degrades to loading
		snap = nil
	}
	if snap != nil && req.Selections != nil {
		req.Selections.Reconcile(snap.Items)
	}

	quote := bill.ComputeQuote(snap, mode, bill.QuoteParams{
		Amount:     req.Amount,
		People:     req.People,
		Selections: req.Selections,
	})

	out := quoteResponse{Amount: quote.Amount, Reason: quote.Reason}
	if quote.Amount > 0 && snap != nil {
		out.Formatted = formatMoney(quote.Amount, snap.Currency)
	}
	response.Success(w, out)
}
