// Package bill holds the table-pay view model and the split arithmetic.
// Everything here is pure: amounts are integers in the smallest currency
// unit, and the backend remains the source of truth for all totals.
package bill

// LineItem is one check line as reported by the backend. TotalPrice comes
// from the backend and is never recomputed from Quantity and UnitPrice.
type LineItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Quantity   int64  `json:"qty"`
	UnitPrice  int64  `json:"unitPrice"`
	TotalPrice int64  `json:"totalPrice"`
}

// Snapshot is the normalized state of a table's bill at one poll tick.
// Remaining is nil while the backend is still syncing with the POS; nil is
// distinct from zero and disables every payment action.
type Snapshot struct {
	SessionID  string     `json:"sessionId"`
	TableLabel string     `json:"tableLabel"`
	TableToken string     `json:"tableToken"`
	Status     string     `json:"status"`
	Currency   string     `json:"currency"`
	Total      int64      `json:"total"`
	Paid       int64      `json:"paid"`
	Reserved   int64      `json:"reserved"`
	Remaining  *int64     `json:"remaining"`
	Items      []LineItem `json:"items"`
}

// RemainingKnown reports whether the backend has a settled remaining balance.
func (s *Snapshot) RemainingKnown() bool {
	return s != nil && s.Remaining != nil
}

// RemainingOrZero returns the remaining balance for display purposes only.
// Callers deciding whether payment is allowed must use RemainingKnown.
func (s *Snapshot) RemainingOrZero() int64 {
	if s == nil || s.Remaining == nil {
		return 0
	}
	return *s.Remaining
}

// Item looks up a line item by identifier.
func (s *Snapshot) Item(id string) (LineItem, bool) {
	if s == nil {
		return LineItem{}, false
	}
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return LineItem{}, false
}
