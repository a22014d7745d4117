package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func TestListOrdersUnwrapsEnvelopes(t *testing.T) {
	orders := `[{"id": 4, "table": 2, "status": "open", "bill_amount": "4500", "paid_total": 0, "items": [{"id": 1, "menu_item": 7, "menu_item_name": "Lobio", "quantity": "2", "price": 1200, "unpaid_quantity": 2}]}]`

	cases := []struct {
		name string
		body string
	}{
		{"bare array", orders},
		{"data envelope", `{"success": true, "data": ` + orders + `}`},
		{"paginated results", `{"count": 1, "next": null, "previous": null, "results": ` + orders + `}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer admin-token" {
					t.Errorf("Authorization = %q", got)
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tc.body))
			}))

			got, err := client.ListOrders(context.Background(), "admin-token")
			if err != nil {
				t.Fatalf("ListOrders: %v", err)
			}
			if len(got) != 1 || got[0].ID != 4 || got[0].BillAmount.Int64() != 4500 {
				t.Fatalf("orders = %+v", got)
			}
			if got[0].Items[0].Quantity.Int64() != 2 {
				t.Fatalf("item quantity = %d", got[0].Items[0].Quantity.Int64())
			}
		})
	}
}

func TestListOrdersEnvelopeFailure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "error": "forbidden", "message": "token expired"}`))
	}))

	_, err := client.ListOrders(context.Background(), "stale")
	upErr, ok := err.(*Error)
	if !ok || upErr.Message != "token expired" {
		t.Fatalf("err = %v", err)
	}
}

func TestCreateOrderForTable(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/create-for-table/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body struct {
			Table int64             `json:"table"`
			Items []CreateOrderItem `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Table != 3 || len(body.Items) != 1 || body.Items[0].MenuItem != 9 {
			t.Fatalf("body = %+v", body)
		}
		_, _ = w.Write([]byte(`{"success": true, "data": {"id": 11, "table": 3, "status": "open"}}`))
	}))

	order, err := client.CreateOrderForTable(context.Background(), "tok", 3, []CreateOrderItem{{MenuItem: 9, Quantity: 2}})
	if err != nil {
		t.Fatalf("CreateOrderForTable: %v", err)
	}
	if order.ID != 11 {
		t.Fatalf("order = %+v", order)
	}
}

func TestInitSplitPostsPeople(t *testing.T) {
	var gotPath string
	var body map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))

	if err := client.InitSplit(context.Background(), "tok", 11, 4); err != nil {
		t.Fatalf("InitSplit: %v", err)
	}
	if gotPath != "/orders/11/split/" {
		t.Fatalf("path = %s", gotPath)
	}
	if body["people"].(float64) != 4 || body["init"] != true {
		t.Fatalf("body = %+v", body)
	}
}
