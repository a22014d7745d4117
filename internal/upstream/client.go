// Package upstream is the HTTP client for the order backend. The backend is
// the source of truth for every total; this package only moves JSON and
// never recomputes money figures.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 8 * time.Second

// Error is a non-2xx backend response, with the backend's own error code
// and message when the body carried them.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// GetSession fetches the live session and check state for a table.
func (c *Client) GetSession(ctx context.Context, tableToken string) (*SessionEnvelope, error) {
	path := "/public/session/?tableToken=" + url.QueryEscape(tableToken)
	var envelope SessionEnvelope
	if err := c.getJSON(ctx, path, &envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}

// CreateHold reserves part of the remaining balance. The client hold key is
// the caller's idempotency key; the backend recognizes duplicates by it.
func (c *Client) CreateHold(ctx context.Context, req HoldRequest) (Hold, error) {
	var resp struct {
		Hold Hold `json:"hold"`
	}
	if err := c.postJSON(ctx, "/public/hold/", req, &resp); err != nil {
		return Hold{}, err
	}
	if resp.Hold.ID == "" {
		return Hold{}, &Error{Status: http.StatusBadGateway, Message: "hold response missing id"}
	}
	return resp.Hold, nil
}

// ReleaseHold frees a hold. Callers treat failures as best-effort; holds
// expire server-side regardless.
func (c *Client) ReleaseHold(ctx context.Context, holdID string) error {
	path := "/public/hold/" + url.PathEscape(holdID) + "/release/"
	return c.postJSON(ctx, path, map[string]any{}, nil)
}

// CreatePaymentIntent opens a payment against an existing hold.
func (c *Client) CreatePaymentIntent(ctx context.Context, holdID string) (PaymentIntentResult, error) {
	var resp struct {
		PaymentIntent PaymentIntent `json:"paymentIntent"`
		RedirectURL   string        `json:"redirectUrl"`
	}
	body := map[string]string{"holdId": holdID}
	if err := c.postJSON(ctx, "/public/payment_intents/", body, &resp); err != nil {
		return PaymentIntentResult{}, err
	}
	if resp.PaymentIntent.ID == "" {
		return PaymentIntentResult{}, &Error{Status: http.StatusBadGateway, Message: "payment intent response missing id"}
	}
	return PaymentIntentResult{Intent: resp.PaymentIntent, RedirectURL: resp.RedirectURL}, nil
}

// ConfirmPaymentIntent reports the simulated or real payment outcome.
func (c *Client) ConfirmPaymentIntent(ctx context.Context, intentID string, outcome string) error {
	path := "/public/payment_intents/" + url.PathEscape(intentID) + "/confirm/"
	return c.postJSON(ctx, path, map[string]string{"outcome": outcome}, nil)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
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
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
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
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func decodeError(res *http.Response) error {
	outErr := &Error{Status: res.StatusCode}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(res.Body, 64<<10)).Decode(&body); err == nil {
		outErr.Code = strings.TrimSpace(body.Error)
		outErr.Message = strings.TrimSpace(body.Message)
		if outErr.Message == "" {
			outErr.Message = outErr.Code
		}
	}
	return outErr
}
