package bill

import (
	"strconv"
	"strings"
)

// Mode selects how a participant's share of the bill is computed.
type Mode string

const (
	ModeAmount Mode = "amount"
	ModeEven   Mode = "even"
	ModeItems  Mode = "items"
)

// ParseMode validates a mode value coming from a request.
func ParseMode(raw string) (Mode, bool) {
	switch Mode(strings.TrimSpace(raw)) {
	case ModeAmount:
		return ModeAmount, true
	case ModeEven:
		return ModeEven, true
	case ModeItems:
		return ModeItems, true
	}
	return "", false
}

// Selection is the per-item pick state in items mode. Shared and
// SharedBetween only apply to items whose check quantity is exactly one.
type Selection struct {
	Quantity      int64 `json:"qtySelected"`
	Shared        bool  `json:"sharedEnabled"`
	SharedBetween int64 `json:"sharedBetween"`
}

// Selections is an ordered map from item identifier to Selection. Order
// follows first insertion so the UI renders deterministically.
type Selections struct {
	order []string
	byID  map[string]Selection
}

func NewSelections() *Selections {
	return &Selections{byID: make(map[string]Selection)}
}

func (s *Selections) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

func (s *Selections) Get(id string) (Selection, bool) {
	if s == nil {
		return Selection{}, false
	}
	sel, ok := s.byID[id]
	return sel, ok
}

func (s *Selections) Set(id string, sel Selection) {
	if _, exists := s.byID[id]; !exists {
		s.order = append(s.order, id)
	}
	if sel.SharedBetween < 2 {
		sel.SharedBetween = 2
	}
	s.byID[id] = sel
}

// Each visits selections in insertion order.
func (s *Selections) Each(fn func(id string, sel Selection)) {
	if s == nil {
		return
	}
	for _, id := range s.order {
		fn(id, s.byID[id])
	}
}

// Reconcile aligns the selections with a fresh item list: selections whose
// item disappeared are dropped, surviving ones are clamped to the item's
// current quantity, and new items are seeded with an empty selection.
func (s *Selections) Reconcile(items []LineItem) {
	if s == nil {
		return
	}

	present := make(map[string]LineItem, len(items))
	for _, it := range items {
		present[it.ID] = it
	}

	kept := s.order[:0]
	for _, id := range s.order {
		it, ok := present[id]
		if !ok {
			delete(s.byID, id)
			continue
		}
		sel := s.byID[id]
		sel.Quantity = clamp(sel.Quantity, 0, it.Quantity)
		if sel.SharedBetween < 2 {
			sel.SharedBetween = 2
		}
		if it.Quantity != 1 {
			sel.Shared = false
		}
		s.byID[id] = sel
		kept = append(kept, id)
	}
	s.order = kept

	for _, it := range items {
		if _, ok := s.byID[it.ID]; !ok {
			s.Set(it.ID, Selection{SharedBetween: 2})
		}
	}
}

// Reset clears every pick while keeping one entry per current item.
func (s *Selections) Reset(items []LineItem) {
	s.order = s.order[:0]
	s.byID = make(map[string]Selection, len(items))
	for _, it := range items {
		s.Set(it.ID, Selection{SharedBetween: 2})
	}
}

// QuoteParams carries the raw, mode-specific user inputs. Amount and People
// arrive as strings because that is what the inputs produce; parsing is part
// of the quote so a bad value yields a blocking reason, not an error.
type QuoteParams struct {
	Amount     string
	People     string
	Selections *Selections
}

// Quote is the outcome of a share computation: either a positive amount to
// pay, or a zero amount with the reason payment is blocked.
type Quote struct {
	Amount int64
	Reason string
}

const (
	ReasonEnterAmount      = "enter an amount"
	ReasonEnterPeople      = "enter people count"
	ReasonLoading          = "loading"
	ReasonNothingRemaining = "nothing remaining"
	ReasonSelectItems      = "select items"
)

// ComputeQuote returns the amount the current participant should pay under
// the given mode. It is pure and safe to re-evaluate on every poll tick and
// input change. The amount ≤ remaining bound is the reservation flow's job,
// not enforced here.
func ComputeQuote(snap *Snapshot, mode Mode, params QuoteParams) Quote {
	if snap == nil {
		return Quote{Reason: ReasonLoading}
	}

	switch mode {
	case ModeAmount:
		amount, ok := parsePositiveInt(params.Amount)
		if !ok {
			return Quote{Reason: ReasonEnterAmount}
		}
		return Quote{Amount: amount}

	case ModeEven:
		people, ok := parsePositiveInt(params.People)
		if !ok {
			return Quote{Reason: ReasonEnterPeople}
		}
		if !snap.RemainingKnown() {
			return Quote{Reason: ReasonLoading}
		}
		// Ceiling so the sum of all shares never undershoots the
		// remaining balance; rounding errs in the house's favor.
		share := ceilDiv(*snap.Remaining, people)
		if share <= 0 {
			return Quote{Reason: ReasonNothingRemaining}
		}
		return Quote{Amount: share}

	case ModeItems:
		var sum int64
		for _, it := range snap.Items {
			sel, ok := params.Selections.Get(it.ID)
			if !ok {
				continue
			}
			qty := clamp(sel.Quantity, 0, it.Quantity)
			if qty <= 0 {
				continue
			}
			if it.Quantity == 1 && sel.Shared {
				n := sel.SharedBetween
				if n < 2 {
					n = 2
				}
				// An estimate: other payers may round their own
				// share differently; holds keep the ledger honest.
				sum += ceilDiv(it.TotalPrice, n)
			} else {
				sum += it.UnitPrice * qty
			}
		}
		if sum <= 0 {
			return Quote{Reason: ReasonSelectItems}
		}
		return Quote{Amount: sum}
	}

	return Quote{Reason: ReasonEnterAmount}
}

func parsePositiveInt(raw string) (int64, bool) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}

func ceilDiv(a, b int64) int64 {
	if b <= 0 {
		return 0
	}
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
