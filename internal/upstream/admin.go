package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// The legacy admin surface predates the public session API. It speaks a
// DRF-style dialect: list endpoints may answer with a bare JSON array, a
// {"success": true, "data": [...]} envelope, or a paginated
// {"results": [...]} page, and mutating calls expect a bearer token issued
// by the backend. The gateway forwards the caller's token verbatim.

type AdminOrderItem struct {
	ID             int64   `json:"id"`
	MenuItem       int64   `json:"menu_item"`
	MenuItemName   string  `json:"menu_item_name"`
	Quantity       FlexInt `json:"quantity"`
	Price          FlexInt `json:"price"`
	PaidQuantity   FlexInt `json:"paid_quantity"`
	UnpaidQuantity FlexInt `json:"unpaid_quantity"`
	UnpaidAmount   FlexInt `json:"unpaid_amount"`
}

type AdminPaymentSummary struct {
	SplitShareAmount *FlexInt `json:"split_share_amount"`
	SplitNumPeople   *FlexInt `json:"split_num_people"`
}

type AdminOrder struct {
	ID              int64                `json:"id"`
	Table           int64                `json:"table"`
	Status          string               `json:"status"`
	CreatedAt       string               `json:"created_at"`
	BillAmount      FlexInt              `json:"bill_amount"`
	PaidTotal       FlexInt              `json:"paid_total"`
	RemainingAmount *FlexInt             `json:"remaining_amount"`
	Items           []AdminOrderItem     `json:"items"`
	PaymentSummary  *AdminPaymentSummary `json:"payment_summary"`
}

type AdminMenuItem struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price FlexInt `json:"price"`
}

type AdminTable struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

type CreateOrderItem struct {
	MenuItem int64 `json:"menu_item"`
	Quantity int64 `json:"quantity"`
}

type PaymentRequest struct {
	Order  int64   `json:"order"`
	Amount int64   `json:"amount"`
	Method string  `json:"method,omitempty"`
	Items  []int64 `json:"items,omitempty"`
}

func (c *Client) ListOrders(ctx context.Context, token string) ([]AdminOrder, error) {
	var orders []AdminOrder
	if err := c.adminGetList(ctx, token, "/orders/", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) ListMenuItems(ctx context.Context, token string) ([]AdminMenuItem, error) {
	var items []AdminMenuItem
	if err := c.adminGetList(ctx, token, "/menu-items/", &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) ListTables(ctx context.Context, token string) ([]AdminTable, error) {
	var tables []AdminTable
	if err := c.adminGetList(ctx, token, "/tables/", &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

func (c *Client) CreateOrderForTable(ctx context.Context, token string, tableID int64, items []CreateOrderItem) (*AdminOrder, error) {
	payload := map[string]any{"table": tableID, "items": items}
	var order AdminOrder
	if err := c.adminPost(ctx, token, "/orders/create-for-table/", payload, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// InitSplit initializes (or re-initializes) an even split on an order so
// every participant sees the same stored share.
func (c *Client) InitSplit(ctx context.Context, token string, orderID int64, people int64) error {
	path := fmt.Sprintf("/orders/%d/split/", orderID)
	payload := map[string]any{"people": people, "init": true}
	return c.adminPost(ctx, token, path, payload, nil)
}

func (c *Client) CreatePayment(ctx context.Context, token string, req PaymentRequest) error {
	return c.adminPost(ctx, token, "/payments/", req, nil)
}

// adminGetList fetches a list endpoint and unwraps whichever envelope the
// backend chose for it.
func (c *Client) adminGetList(ctx context.Context, token, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	setBearer(req, token)

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return decodeError(res)
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if err != nil {
		return err
	}
	return unwrapList(raw, out)
}

func (c *Client) adminPost(ctx context.Context, token, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	setBearer(req, token)

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return decodeError(res)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if err != nil {
		return err
	}
	return unwrapObject(raw, out)
}

func setBearer(req *http.Request, token string) {
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(token))
	}
}

// unwrapList accepts a bare array, {"data": [...]}, or {"results": [...]}.
func unwrapList(raw []byte, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, out)
	}

	var envelope struct {
		Success *bool           `json:"success"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return err
	}
	if envelope.Success != nil && !*envelope.Success {
		message := envelope.Message
		if message == "" {
			message = envelope.Error
		}
		return &Error{Status: http.StatusOK, Code: envelope.Error, Message: message}
	}
	if len(envelope.Data) > 0 && !bytes.Equal(envelope.Data, []byte("null")) {
		return json.Unmarshal(envelope.Data, out)
	}
	if len(envelope.Results) > 0 && !bytes.Equal(envelope.Results, []byte("null")) {
		return json.Unmarshal(envelope.Results, out)
	}
	// an empty page is a valid answer
	return nil
}

// unwrapObject accepts a bare object or a {"data": {...}} envelope.
func unwrapObject(raw []byte, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}

	var envelope struct {
		Success *bool           `json:"success"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err == nil {
		if envelope.Success != nil && !*envelope.Success {
			message := envelope.Message
			if message == "" {
				message = envelope.Error
			}
			return &Error{Status: http.StatusOK, Code: envelope.Error, Message: message}
		}
		if len(envelope.Data) > 0 && !bytes.Equal(envelope.Data, []byte("null")) {
			return json.Unmarshal(envelope.Data, out)
		}
	}
	return json.Unmarshal(trimmed, out)
}
