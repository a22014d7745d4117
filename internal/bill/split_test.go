package bill

import (
	"strconv"
	"testing"
)

func snapshotWithRemaining(remaining int64) *Snapshot {
	return &Snapshot{
		Total:     10000,
		Currency:  "USD",
		Remaining: &remaining,
	}
}

func TestComputeQuoteAmountMode(t *testing.T) {
	cases := []struct {
		name       string
		amount     string
		wantAmount int64
		wantReason string
	}{
		{name: "plain integer", amount: "3000", wantAmount: 3000},
		{name: "surrounding spaces", amount: " 250 ", wantAmount: 250},
		{name: "zero", amount: "0", wantReason: ReasonEnterAmount},
		{name: "negative", amount: "-5", wantReason: ReasonEnterAmount},
		{name: "empty", amount: "", wantReason: ReasonEnterAmount},
		{name: "trailing junk", amount: "12abc", wantReason: ReasonEnterAmount},
		{name: "decimal", amount: "12.5", wantReason: ReasonEnterAmount},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := ComputeQuote(snapshotWithRemaining(10000), ModeAmount, QuoteParams{Amount: tc.amount})
			if q.Amount != tc.wantAmount || q.Reason != tc.wantReason {
				t.Fatalf("got (%d, %q), want (%d, %q)", q.Amount, q.Reason, tc.wantAmount, tc.wantReason)
			}
		})
	}
}

func TestComputeQuoteEvenMode(t *testing.T) {
	t.Run("three way split rounds up", func(t *testing.T) {
		q := ComputeQuote(snapshotWithRemaining(10000), ModeEven, QuoteParams{People: "3"})
		if q.Amount != 3334 {
			t.Fatalf("share = %d, want 3334", q.Amount)
		}
		if q.Reason != "" {
			t.Fatalf("unexpected reason %q", q.Reason)
		}
	})

	t.Run("remaining unknown blocks with loading", func(t *testing.T) {
		snap := &Snapshot{Total: 10000}
		q := ComputeQuote(snap, ModeEven, QuoteParams{People: "2"})
		if q.Amount != 0 || q.Reason != ReasonLoading {
			t.Fatalf("got (%d, %q), want (0, %q)", q.Amount, q.Reason, ReasonLoading)
		}
	})

	t.Run("nothing remaining", func(t *testing.T) {
		q := ComputeQuote(snapshotWithRemaining(0), ModeEven, QuoteParams{People: "4"})
		if q.Reason != ReasonNothingRemaining {
			t.Fatalf("reason = %q, want %q", q.Reason, ReasonNothingRemaining)
		}
	})

	t.Run("invalid people count", func(t *testing.T) {
		for _, people := range []string{"", "0", "-1", "two"} {
			q := ComputeQuote(snapshotWithRemaining(5000), ModeEven, QuoteParams{People: people})
			if q.Reason != ReasonEnterPeople {
				t.Fatalf("people=%q: reason = %q, want %q", people, q.Reason, ReasonEnterPeople)
			}
		}
	})

	t.Run("shares cover remaining without overshooting by a full head", func(t *testing.T) {
		for remaining := int64(1); remaining <= 500; remaining++ {
			for people := int64(1); people <= 7; people++ {
				snap := snapshotWithRemaining(remaining)
				q := ComputeQuote(snap, ModeEven, QuoteParams{People: itoa(people)})
				sum := q.Amount * people
				if sum < remaining {
					t.Fatalf("remaining=%d people=%d: shares sum %d < remaining", remaining, people, sum)
				}
				if sum >= remaining+people {
					t.Fatalf("remaining=%d people=%d: shares sum %d >= remaining+people", remaining, people, sum)
				}
			}
		}
	})
}

func TestComputeQuoteItemsMode(t *testing.T) {
	items := []LineItem{
		{ID: "a", Name: "Khinkali", Quantity: 4, UnitPrice: 500, TotalPrice: 2000},
		{ID: "b", Name: "Saperavi", Quantity: 1, UnitPrice: 2000, TotalPrice: 2000},
		{ID: "c", Name: "Salad", Quantity: 2, UnitPrice: 900, TotalPrice: 1800},
	}
	snap := snapshotWithRemaining(5800)
	snap.Items = items

	t.Run("unit price times selected quantity", func(t *testing.T) {
		sel := NewSelections()
		sel.Set("a", Selection{Quantity: 2})
		sel.Set("c", Selection{Quantity: 1})
		q := ComputeQuote(snap, ModeItems, QuoteParams{Selections: sel})
		if q.Amount != 2*500+900 {
			t.Fatalf("amount = %d, want 1900", q.Amount)
		}
	})

	t.Run("shared single item charges ceiling of an even share", func(t *testing.T) {
		sel := NewSelections()
		sel.Set("b", Selection{Quantity: 1, Shared: true, SharedBetween: 3})
		q := ComputeQuote(snap, ModeItems, QuoteParams{Selections: sel})
		if q.Amount != 667 {
			t.Fatalf("amount = %d, want ceil(2000/3) = 667", q.Amount)
		}
	})

	t.Run("shared flag ignored for multi-quantity items", func(t *testing.T) {
		sel := NewSelections()
		sel.Set("a", Selection{Quantity: 1, Shared: true, SharedBetween: 4})
		q := ComputeQuote(snap, ModeItems, QuoteParams{Selections: sel})
		if q.Amount != 500 {
			t.Fatalf("amount = %d, want plain unit price 500", q.Amount)
		}
	})

	t.Run("selection clamped to item quantity", func(t *testing.T) {
		sel := NewSelections()
		sel.Set("c", Selection{Quantity: 99})
		q := ComputeQuote(snap, ModeItems, QuoteParams{Selections: sel})
		if q.Amount != 2*900 {
			t.Fatalf("amount = %d, want clamped 1800", q.Amount)
		}
	})

	t.Run("no picks blocks with select items", func(t *testing.T) {
		q := ComputeQuote(snap, ModeItems, QuoteParams{Selections: NewSelections()})
		if q.Reason != ReasonSelectItems {
			t.Fatalf("reason = %q, want %q", q.Reason, ReasonSelectItems)
		}
	})

	t.Run("sum never exceeds sum of selected item totals", func(t *testing.T) {
		sel := NewSelections()
		sel.Set("a", Selection{Quantity: 4})
		sel.Set("b", Selection{Quantity: 1, Shared: true, SharedBetween: 2})
		sel.Set("c", Selection{Quantity: 2})
		q := ComputeQuote(snap, ModeItems, QuoteParams{Selections: sel})
		var bound int64
		for _, it := range items {
			bound += it.TotalPrice
		}
		if q.Amount > bound {
			t.Fatalf("amount %d exceeds total bound %d", q.Amount, bound)
		}
	})
}

func TestSharedEstimateNeverBelowExactShare(t *testing.T) {
	for total := int64(1); total <= 300; total++ {
		for n := int64(2); n <= 6; n++ {
			got := ceilDiv(total, n)
			if got*n < total {
				t.Fatalf("total=%d n=%d: ceil share %d under-covers", total, n, got)
			}
		}
	}
}

func TestComputeQuoteNilSnapshot(t *testing.T) {
	q := ComputeQuote(nil, ModeAmount, QuoteParams{Amount: "100"})
	if q.Amount != 0 || q.Reason != ReasonLoading {
		t.Fatalf("got (%d, %q), want loading block", q.Amount, q.Reason)
	}
}

func TestSelectionsReconcile(t *testing.T) {
	sel := NewSelections()
	sel.Set("a", Selection{Quantity: 3})
	sel.Set("gone", Selection{Quantity: 1})
	sel.Set("b", Selection{Quantity: 1, Shared: true, SharedBetween: 3})

	// Item a shrank to quantity 2, item b became quantity 2.
	updated := []LineItem{
		{ID: "a", Quantity: 2, UnitPrice: 100, TotalPrice: 200},
		{ID: "b", Quantity: 2, UnitPrice: 500, TotalPrice: 1000},
		{ID: "new", Quantity: 1, UnitPrice: 250, TotalPrice: 250},
	}
	sel.Reconcile(updated)

	if got, _ := sel.Get("a"); got.Quantity != 2 {
		t.Fatalf("a.Quantity = %d, want clamped to 2", got.Quantity)
	}
	if _, ok := sel.Get("gone"); ok {
		t.Fatal("stale selection survived reconcile")
	}
	if got, _ := sel.Get("b"); got.Shared {
		t.Fatal("shared flag kept on item whose quantity is no longer 1")
	}
	seeded, ok := sel.Get("new")
	if !ok {
		t.Fatal("new item not seeded")
	}
	if seeded.Quantity != 0 || seeded.SharedBetween != 2 {
		t.Fatalf("seeded selection = %+v, want empty with SharedBetween 2", seeded)
	}
}

func TestSelectionsReset(t *testing.T) {
	items := []LineItem{{ID: "x", Quantity: 2}, {ID: "y", Quantity: 1}}
	sel := NewSelections()
	sel.Set("x", Selection{Quantity: 2})
	sel.Reset(items)
	if sel.Len() != 2 {
		t.Fatalf("len = %d, want 2", sel.Len())
	}
	if got, _ := sel.Get("x"); got.Quantity != 0 {
		t.Fatalf("reset kept quantity %d", got.Quantity)
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
