package bill

import (
	"encoding/json"
	"testing"
)

func TestSelectionsJSONRoundTrip(t *testing.T) {
	raw := `{"b":{"qtySelected":1,"sharedEnabled":true,"sharedBetween":3},"a":{"qtySelected":2}}`

	var sel Selections
	if err := json.Unmarshal([]byte(raw), &sel); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if sel.Len() != 2 {
		t.Fatalf("len = %d, want 2", sel.Len())
	}

	b, ok := sel.Get("b")
	if !ok || !b.Shared || b.SharedBetween != 3 {
		t.Fatalf("b = %+v, want shared between 3", b)
	}
	a, _ := sel.Get("a")
	if a.SharedBetween != 2 {
		t.Fatalf("a.SharedBetween = %d, want default 2", a.SharedBetween)
	}

	out, err := json.Marshal(&sel)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// document order preserved: b first, then a
	want := `{"b":{"qtySelected":1,"sharedEnabled":true,"sharedBetween":3},"a":{"qtySelected":2,"sharedEnabled":false,"sharedBetween":2}}`
	if string(out) != want {
		t.Fatalf("marshal = %s, want %s", out, want)
	}
}

func TestSelectionsUnmarshalRejectsNonObject(t *testing.T) {
	var sel Selections
	if err := json.Unmarshal([]byte(`[1,2]`), &sel); err == nil {
		t.Fatal("expected error for array payload")
	}
}

func TestSelectionsUnmarshalNegativeQuantityClamped(t *testing.T) {
	var sel Selections
	if err := json.Unmarshal([]byte(`{"a":{"qtySelected":-4}}`), &sel); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got, _ := sel.Get("a")
	if got.Quantity != 0 {
		t.Fatalf("quantity = %d, want clamped 0", got.Quantity)
	}
}
