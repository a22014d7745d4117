package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"tablepay-gateway/internal/bill"
)

// FlexInt decodes a JSON number or a numeral string. The POS bridge behind
// the backend is known to serialize quantities as strings on some paths.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		value, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			// tolerate "12.0" style payloads
			fv, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil {
				return fmt.Errorf("flexint: cannot parse %q", s)
			}
			value = int64(fv)
		}
		*f = FlexInt(value)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	value, err := n.Int64()
	if err != nil {
		fv, ferr := n.Float64()
		if ferr != nil {
			return err
		}
		value = int64(fv)
	}
	*f = FlexInt(value)
	return nil
}

func (f FlexInt) Int64() int64 { return int64(f) }

// TableInfo identifies the physical table inside a session payload.
type TableInfo struct {
	Label string `json:"label"`
	Token string `json:"token"`
}

type SessionInfo struct {
	ID       string    `json:"id"`
	Table    TableInfo `json:"table"`
	Currency string    `json:"currency"`
	Status   string    `json:"status"`
}

type CheckItem struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Qty        FlexInt `json:"qty"`
	UnitPrice  FlexInt `json:"unitPrice"`
	TotalPrice FlexInt `json:"totalPrice"`
}

type CheckInfo struct {
	Total    FlexInt     `json:"total"`
	Paid     FlexInt     `json:"paid"`
	Currency string      `json:"currency"`
	Items    []CheckItem `json:"items"`
}

// SessionEnvelope is the raw GET /public/session/ payload. Check and
// Remaining are null while the backend is still syncing with the POS.
type SessionEnvelope struct {
	Session       *SessionInfo `json:"session"`
	Check         *CheckInfo   `json:"check"`
	ReservedTotal FlexInt      `json:"reservedTotal"`
	PaidTotal     *FlexInt     `json:"paidTotal"`
	Remaining     *FlexInt     `json:"remaining"`
}

// Snapshot normalizes the envelope into the bill view model. Paid prefers
// the top-level paidTotal over the check's own figure when both are present.
// Remaining stays nil through any sync gap; it is never defaulted to zero.
func (e *SessionEnvelope) Snapshot() *bill.Snapshot {
	if e == nil {
		return nil
	}

	snap := &bill.Snapshot{
		Reserved: e.ReservedTotal.Int64(),
	}

	if e.Session != nil {
		snap.SessionID = e.Session.ID
		snap.TableLabel = e.Session.Table.Label
		snap.TableToken = e.Session.Table.Token
		snap.Currency = e.Session.Currency
		snap.Status = e.Session.Status
	}

	if e.Check != nil {
		snap.Total = e.Check.Total.Int64()
		snap.Paid = e.Check.Paid.Int64()
		if snap.Currency == "" {
			snap.Currency = e.Check.Currency
		}
		snap.Items = make([]bill.LineItem, 0, len(e.Check.Items))
		for _, it := range e.Check.Items {
			snap.Items = append(snap.Items, bill.LineItem{
				ID:         it.ID,
				Name:       it.Name,
				Quantity:   it.Qty.Int64(),
				UnitPrice:  it.UnitPrice.Int64(),
				TotalPrice: it.TotalPrice.Int64(),
			})
		}
	}

	if e.PaidTotal != nil {
		snap.Paid = e.PaidTotal.Int64()
	}

	if e.Remaining != nil {
		remaining := e.Remaining.Int64()
		snap.Remaining = &remaining
	}

	return snap
}

type Hold struct {
	ID string `json:"id"`
}

type HoldRequest struct {
	TableToken    string `json:"tableToken"`
	Amount        int64  `json:"amount"`
	ClientHoldKey string `json:"clientHoldKey"`
}

type PaymentIntent struct {
	ID string `json:"id"`
}

// PaymentIntentResult is the create-intent response; RedirectURL is empty
// when the backend leaves confirmation routing to the client.
type PaymentIntentResult struct {
	Intent      PaymentIntent
	RedirectURL string
}
