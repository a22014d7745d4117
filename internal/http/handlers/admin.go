package handlers

import (
	"net/http"

	"tablepay-gateway/internal/middleware"
	"tablepay-gateway/internal/upstream"
	"tablepay-gateway/pkg/response"
)

// The console endpoints are thin proxies over the backend's staff surface.
// The middleware has already verified the bearer; we forward it verbatim so
// the backend stays the authority on what the token may do.

func (h *Handler) adminToken(r *http.Request) (string, bool) {
	ac, ok := middleware.GetAuthContext(r.Context())
	if !ok || ac.RawToken == "" {
		return "", false
	}
	return ac.RawToken, true
}

func (h *Handler) AdminOrdersList(w http.ResponseWriter, r *http.Request) {
	token, ok := h.adminToken(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "authorization required")
		return
	}
	orders, err := h.Upstream.ListOrders(r.Context(), token)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	response.Success(w, orders)
}

func (h *Handler) AdminMenuItemsList(w http.ResponseWriter, r *http.Request) {
	token, ok := h.adminToken(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "authorization required")
		return
	}
	items, err := h.Upstream.ListMenuItems(r.Context(), token)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	response.Success(w, items)
}

func (h *Handler) AdminTablesList(w http.ResponseWriter, r *http.Request) {
	token, ok := h.adminToken(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "authorization required")
		return
	}
	tables, err := h.Upstream.ListTables(r.Context(), token)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	response.Success(w, tables)
}

type adminCreateOrderRequest struct {
	Table int64                      `json:"table"`
	Items []upstream.CreateOrderItem `json:"items"`
}

func (h *Handler) AdminOrderCreate(w http.ResponseWriter, r *http.Request) {
	token, ok := h.adminToken(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "authorization required")
		return
	}

	var req adminCreateOrderRequest
	if err := decodeBody(r, &req); err != nil || req.Table <= 0 || len(req.Items) == 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "table and items are required")
		return
	}

	order, err := h.Upstream.CreateOrderForTable(r.Context(), token, req.Table, req.Items)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	response.Success(w, order)
}

type adminSplitRequest struct {
	People int64 `json:"people"`
}

// AdminSplitInit stores an even split on the order so the stored share is
// identical for every participant who scans afterwards.
func (h *Handler) AdminSplitInit(w http.ResponseWriter, r *http.Request) {
	token, ok := h.adminToken(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "authorization required")
		return
	}

	orderID, err := readPathInt64(r, "orderId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "order id is required")
		return
	}

	var req adminSplitRequest
	if err := decodeBody(r, &req); err != nil || req.People <= 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "people must be positive")
		return
	}

	if err := h.Upstream.InitSplit(r.Context(), token, orderID, req.People); err != nil {
		writeUpstreamError(w, err)
		return
	}
	response.Success(w, map[string]any{"order": orderID, "people": req.People})
}

func (h *Handler) AdminPaymentCreate(w http.ResponseWriter, r *http.Request) {
	token, ok := h.adminToken(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "authorization required")
		return
	}

	var req upstream.PaymentRequest
	if err := decodeBody(r, &req); err != nil || req.Order <= 0 || req.Amount <= 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "order and amount are required")
		return
	}

	if err := h.Upstream.CreatePayment(r.Context(), token, req); err != nil {
		writeUpstreamError(w, err)
		return
	}
	response.Success(w, map[string]bool{"recorded": true})
}
