// Package payment drives the reserve-then-pay protocol: validate the
// requested amount against the live bill, place a hold, open a payment
// intent, hand the payer to the confirmation surface, and settle or release
// afterwards.
package payment

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tablepay-gateway/internal/bill"
	"tablepay-gateway/internal/upstream"
)

// Validation failures. Handlers map these to blocked responses; none of
// them results in an upstream request.
var (
	ErrBusy             = errors.New("a reservation for this table is already in flight")
	ErrNotLoaded        = errors.New("bill not loaded yet")
	ErrRemainingUnknown = errors.New("remaining amount is still syncing")
	ErrInvalidAmount    = errors.New("amount must be a positive number")
	ErrExceedsRemaining = errors.New("amount exceeds the remaining balance")
	ErrInvalidOutcome   = errors.New("outcome must be paid or failed")
)

// Outcomes accepted by Confirm.
const (
	OutcomePaid   = "paid"
	OutcomeFailed = "failed"
)

// Backend is the slice of the upstream client the flow drives.
type Backend interface {
	CreateHold(ctx context.Context, req upstream.HoldRequest) (upstream.Hold, error)
	ReleaseHold(ctx context.Context, holdID string) error
	CreatePaymentIntent(ctx context.Context, holdID string) (upstream.PaymentIntentResult, error)
	ConfirmPaymentIntent(ctx context.Context, intentID string, outcome string) error
}

// Reservation is a successfully placed hold with its payment intent and the
// URL the payer must visit to settle it.
type Reservation struct {
	HoldID          string `json:"holdId"`
	PaymentIntentID string `json:"paymentIntentId"`
	ClientHoldKey   string `json:"clientHoldKey"`
	Amount          int64  `json:"amount"`
	ConfirmURL      string `json:"confirmUrl"`
}

// Flow serializes reservations per table and owns the hold lifecycle.
type Flow struct {
	backend Backend
	logger  *zap.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewFlow(backend Backend, logger *zap.Logger) *Flow {
	return &Flow{
		backend:  backend,
		logger:   logger,
		inflight: make(map[string]struct{}),
	}
}

// Validate checks whether amount can be reserved against snap. It performs
// no network calls and is also used by Reserve as its gate.
func Validate(snap *bill.Snapshot, amount int64) error {
	if snap == nil {
		return ErrNotLoaded
	}
	if !snap.RemainingKnown() {
		return ErrRemainingUnknown
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > *snap.Remaining {
		return ErrExceedsRemaining
	}
	return nil
}

// Reserve validates the amount, then places a hold and opens a payment
// intent for it. Every attempt carries a fresh idempotency key; a retry
// after failure is a new reservation, never a replay of the old one. On any
// validation failure Reserve returns before touching the backend.
func (f *Flow) Reserve(ctx context.Context, tableToken string, amount int64, snap *bill.Snapshot) (*Reservation, error) {
	if err := Validate(snap, amount); err != nil {
		return nil, err
	}
	if !f.begin(tableToken) {
		return nil, ErrBusy
	}
	defer f.end(tableToken)

	key := uuid.NewString()
	hold, err := f.backend.CreateHold(ctx, upstream.HoldRequest{
		TableToken:    tableToken,
		Amount:        amount,
		ClientHoldKey: key,
	})
	if err != nil {
		return nil, err
	}

	intent, err := f.backend.CreatePaymentIntent(ctx, hold.ID)
	if err != nil {
		// the hold would otherwise pin the table until it expires
		f.releaseQuietly(ctx, hold.ID)
		return nil, err
	}

	f.logger.Info("reservation placed",
		zap.String("tableToken", tableToken),
		zap.Int64("amount", amount),
		zap.String("holdId", hold.ID),
		zap.String("paymentIntentId", intent.Intent.ID))

	return &Reservation{
		HoldID:          hold.ID,
		PaymentIntentID: intent.Intent.ID,
		ClientHoldKey:   key,
		Amount:          amount,
		ConfirmURL:      ConfirmURL(intent.RedirectURL, intent.Intent.ID, hold.ID, tableToken),
	}, nil
}

// Confirm settles a payment intent. A failed outcome releases the hold so
// the reserved amount returns to the table; release failures are logged and
// swallowed because the hold expires upstream anyway.
func (f *Flow) Confirm(ctx context.Context, intentID, holdID, outcome string) error {
	if outcome != OutcomePaid && outcome != OutcomeFailed {
		return ErrInvalidOutcome
	}
	if err := f.backend.ConfirmPaymentIntent(ctx, intentID, outcome); err != nil {
		return err
	}
	if outcome == OutcomeFailed && holdID != "" {
		f.releaseQuietly(ctx, holdID)
	}
	return nil
}

// Cancel abandons a reservation before any confirmation happened.
func (f *Flow) Cancel(ctx context.Context, holdID string) {
	if holdID == "" {
		return
	}
	f.releaseQuietly(ctx, holdID)
}

func (f *Flow) begin(tableToken string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.inflight[tableToken]; busy {
		return false
	}
	f.inflight[tableToken] = struct{}{}
	return true
}

func (f *Flow) end(tableToken string) {
	f.mu.Lock()
	delete(f.inflight, tableToken)
	f.mu.Unlock()
}

func (f *Flow) releaseQuietly(ctx context.Context, holdID string) {
	if err := f.backend.ReleaseHold(ctx, holdID); err != nil {
		f.logger.Warn("hold release failed", zap.String("holdId", holdID), zap.Error(err))
	}
}

// ConfirmURL decides where the payer goes to settle. An empty redirect maps
// to the local mock payment page. A redirect that itself points at a mock
// payment surface gets the intent, hold, and table parameters attached no
// matter what the backend put on it; anything else is an external PSP URL
// and passes through untouched.
func ConfirmURL(redirect, intentID, holdID, tableToken string) string {
	if strings.TrimSpace(redirect) == "" {
		return "/mock-pay?" + confirmQuery(intentID, holdID, tableToken)
	}
	if !strings.Contains(redirect, "mock-pay") {
		return redirect
	}

	parsed, err := url.Parse(redirect)
	if err != nil {
		return "/mock-pay?" + confirmQuery(intentID, holdID, tableToken)
	}
	q := parsed.Query()
	q.Set("paymentIntentId", intentID)
	q.Set("holdId", holdID)
	q.Set("tableToken", tableToken)
	parsed.RawQuery = q.Encode()
	return parsed.String()
}

func confirmQuery(intentID, holdID, tableToken string) string {
	q := url.Values{}
	q.Set("paymentIntentId", intentID)
	q.Set("holdId", holdID)
	q.Set("tableToken", tableToken)
	return q.Encode()
}
