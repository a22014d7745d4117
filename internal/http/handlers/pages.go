package handlers

import (
	"html/template"
	"net/http"

	"tablepay-gateway/internal/bill"
)

var (
	homeTmpl    = template.Must(template.New("home").Parse(homeHTML))
	payTmpl     = template.Must(template.New("pay").Parse(payHTML))
	mockPayTmpl = template.Must(template.New("mockpay").Parse(mockPayHTML))
)

const homeHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Pay at the table</title>
  <style>
    body { font-family: -apple-system, sans-serif; max-width: 420px; margin: 40px auto; padding: 0 16px; color: #111; }
    h1 { font-size: 20px; }
    input { width: 100%; padding: 10px; font-size: 16px; box-sizing: border-box; }
    button { margin-top: 12px; width: 100%; padding: 12px; font-size: 16px; background: #111; color: #fff; border: none; border-radius: 6px; }
  </style>
</head>
<body>
  <h1>Pay at the table</h1>
  <p>Enter your table number or scan the QR code on the table.</p>
  <form action="/pay" method="get">
    <input name="table" placeholder="Table number" autofocus required />
    <button type="submit">Open bill</button>
  </form>
</body>
</html>`

const payHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Bill · {{.TableLabel}}</title>
  <style>
    body { font-family: -apple-system, sans-serif; max-width: 480px; margin: 24px auto; padding: 0 16px; color: #111; }
    .banner { background: #fef3cd; padding: 8px 12px; border-radius: 6px; display: none; }
    .row { display: flex; justify-content: space-between; margin: 4px 0; }
    .total { font-weight: bold; }
    .item { padding: 6px 0; border-bottom: 1px solid #eee; }
    .modes button { padding: 8px 12px; margin-right: 6px; border: 1px solid #ccc; background: #fff; border-radius: 6px; }
    .modes button.active { background: #111; color: #fff; }
    #payBtn { margin-top: 16px; width: 100%; padding: 14px; font-size: 16px; background: #111; color: #fff; border: none; border-radius: 6px; }
    #payBtn:disabled { background: #aaa; }
    .reason { color: #666; font-size: 14px; }
  </style>
</head>
<body>
  <h1>{{.TableLabel}}</h1>
  <div id="banner" class="banner"></div>
  <div class="row"><div>Total</div><div id="total"></div></div>
  <div class="row"><div>Paid</div><div id="paid"></div></div>
  <div class="row"><div>Reserved</div><div id="reserved"></div></div>
  <div class="row total"><div>Remaining</div><div id="remaining">syncing…</div></div>
  <div id="items"></div>
  <div class="modes" id="modes">
    <button data-mode="amount" class="active">Amount</button>
    <button data-mode="even">Split evenly</button>
    <button data-mode="items">By items</button>
  </div>
  <div id="inputs">
    <input id="amount" placeholder="Amount" inputmode="decimal" />
    <input id="people" placeholder="People" inputmode="numeric" style="display:none" />
  </div>
  <button id="payBtn" disabled>Pay</button>
  <div id="reason" class="reason"></div>
  <script>
  (function () {
    var token = {{.TableToken}};
    var state = null;
    var mode = "amount";
    var selections = {};

    function fmt(v, c) { return (v / 100).toFixed(2) + (c ? " " + c : ""); }

    function render() {
      if (!state) return;
      document.getElementById("total").textContent = fmt(state.total, state.currency);
      document.getElementById("paid").textContent = fmt(state.paid, state.currency);
      document.getElementById("reserved").textContent = fmt(state.reserved, state.currency);
      document.getElementById("remaining").textContent =
        state.remaining === null ? "syncing…" : fmt(state.remaining, state.currency);
      var list = document.getElementById("items");
      list.innerHTML = "";
      (state.items || []).forEach(function (it) {
        var div = document.createElement("div");
        div.className = "item";
        div.textContent = it.qty + " × " + it.name + " — " + fmt(it.totalPrice, state.currency);
        if (mode === "items") {
          var pick = document.createElement("input");
          pick.type = "number"; pick.min = 0; pick.max = it.qty;
          pick.value = (selections[it.id] || {}).qtySelected || 0;
          pick.addEventListener("change", function () {
            selections[it.id] = selections[it.id] || { sharedEnabled: false, sharedBetween: 2 };
            selections[it.id].qtySelected = parseInt(pick.value || "0", 10);
            quote();
          });
          div.appendChild(pick);
        }
        list.appendChild(div);
      });
      quote();
    }

    function quote() {
      fetch("/api/session/" + encodeURIComponent(token) + "/quote", {
        method: "POST",
        headers: { "Content-Type": "application/json" },
        body: JSON.stringify(body())
      }).then(function (r) { return r.json(); }).then(function (res) {
        var q = res.data || {};
        var btn = document.getElementById("payBtn");
        var reason = document.getElementById("reason");
        if (q.amount > 0 && state && state.remaining !== null) {
          btn.disabled = false;
          btn.textContent = "Pay " + (q.formatted || fmt(q.amount, state.currency));
          reason.textContent = "";
        } else {
          btn.disabled = true;
          btn.textContent = "Pay";
          reason.textContent = q.reason || "";
        }
      });
    }

    function body() {
      return {
        mode: mode,
        amount: String(Math.round(parseFloat(document.getElementById("amount").value || "0") * 100) || ""),
        people: document.getElementById("people").value,
        selections: selections
      };
    }

    document.getElementById("modes").addEventListener("click", function (e) {
      if (!e.target.dataset.mode) return;
      mode = e.target.dataset.mode;
      Array.prototype.forEach.call(e.currentTarget.children, function (b) {
        b.classList.toggle("active", b.dataset.mode === mode);
      });
      document.getElementById("amount").style.display = mode === "amount" ? "" : "none";
      document.getElementById("people").style.display = mode === "even" ? "" : "none";
      render();
    });
    document.getElementById("amount").addEventListener("input", quote);
    document.getElementById("people").addEventListener("input", quote);

    document.getElementById("payBtn").addEventListener("click", function () {
      var btn = this;
      btn.disabled = true;
      fetch("/api/session/" + encodeURIComponent(token) + "/reserve", {
        method: "POST",
        headers: { "Content-Type": "application/json" },
        body: JSON.stringify(body())
      }).then(function (r) { return r.json(); }).then(function (res) {
        if (res.success && res.data && res.data.confirmUrl) {
          window.location.href = res.data.confirmUrl;
          return;
        }
        document.getElementById("reason").textContent = (res && res.message) || "payment unavailable";
        btn.disabled = false;
      }).catch(function () { btn.disabled = false; });
    });

    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var sock;
    function connect() {
      sock = new WebSocket(proto + location.host + "/ws/session?tableToken=" + encodeURIComponent(token));
      sock.onmessage = function (ev) {
        var msg = JSON.parse(ev.data);
        var banner = document.getElementById("banner");
        if (msg.type === "session.state") {
          state = msg.data;
          banner.style.display = msg.degraded ? "block" : "none";
          if (msg.degraded) banner.textContent = "Connection is unstable — showing the last known bill.";
          render();
        } else if (msg.type === "session.error") {
          banner.style.display = "block";
          banner.textContent = msg.message === "loading" ? "Loading the bill…" : "Could not load the bill — retrying.";
        }
      };
      sock.onclose = function () { setTimeout(connect, 1000); };
    }
    connect();

    document.addEventListener("visibilitychange", function () {
      if (!document.hidden && sock && sock.readyState === WebSocket.OPEN) {
        sock.send(JSON.stringify({ type: "refresh" }));
      }
    });
  })();
  </script>
</body>
</html>`

const mockPayHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Mock payment</title>
  <style>
    body { font-family: -apple-system, sans-serif; max-width: 420px; margin: 40px auto; padding: 0 16px; color: #111; text-align: center; }
    button { width: 100%; padding: 14px; font-size: 16px; border: none; border-radius: 6px; margin-top: 10px; }
    .pay { background: #14813d; color: #fff; }
    .fail { background: #b3261e; color: #fff; }
    .cancel { background: #eee; }
    .note { color: #666; font-size: 14px; }
  </style>
</head>
<body>
  <h1>Mock payment</h1>
  <p class="note">Intent {{.PaymentIntentID}}</p>
  <button class="pay" id="payOk">Simulate successful payment</button>
  <button class="fail" id="payFail">Simulate failed payment</button>
  <button class="cancel" id="cancel">Cancel and go back</button>
  <script>
  (function () {
    var intent = {{.PaymentIntentID}};
    var hold = {{.HoldID}};
    var token = {{.TableToken}};
    var back = "/pay/" + encodeURIComponent(token || "");

    function confirm(outcome) {
      fetch("/api/pay/confirm", {
        method: "POST",
        headers: { "Content-Type": "application/json" },
        body: JSON.stringify({ paymentIntentId: intent, holdId: hold, tableToken: token, outcome: outcome })
      }).finally(function () { window.location.href = back; });
    }

    document.getElementById("payOk").addEventListener("click", function () { confirm("paid"); });
    document.getElementById("payFail").addEventListener("click", function () { confirm("failed"); });
    document.getElementById("cancel").addEventListener("click", function () {
      fetch("/api/pay/cancel", {
        method: "POST",
        headers: { "Content-Type": "application/json" },
        body: JSON.stringify({ holdId: hold, tableToken: token })
      }).finally(function () { window.location.href = back; });
    });
  })();
  </script>
</body>
</html>`

// Home renders the table entry screen.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = homeTmpl.Execute(w, nil)
}

// PayEntry normalizes the token from the entry form and redirects to the
// canonical bill URL.
func (h *Handler) PayEntry(w http.ResponseWriter, r *http.Request) {
	token := bill.NormalizeTableToken(r.URL.Query().Get("table"))
	if token == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/pay/"+token, http.StatusSeeOther)
}

type payPageData struct {
	TableToken string
	TableLabel string
}

// PayPage renders the live bill screen. A raw numeric token in the URL is
// redirected to its normalized form so shared links stay canonical.
func (h *Handler) PayPage(w http.ResponseWriter, r *http.Request) {
	raw := readPathString(r, "tableToken")
	token := bill.NormalizeTableToken(raw)
	if token == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if token != raw {
		http.Redirect(w, r, "/pay/"+token, http.StatusMovedPermanently)
		return
	}

	data := payPageData{TableToken: token, TableLabel: "Table"}
	if snap, err := h.fetchSnapshot(r.Context(), token); err == nil && snap.TableLabel != "" {
		data.TableLabel = snap.TableLabel
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_ = payTmpl.Execute(w, data)
}

type mockPayData struct {
	PaymentIntentID string
	HoldID          string
	TableToken      string
}

// MockPay renders the stand-in payment surface. The three identifiers ride
// in the query string exactly as the reservation flow attached them.
func (h *Handler) MockPay(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := mockPayData{
		PaymentIntentID: q.Get("paymentIntentId"),
		HoldID:          q.Get("holdId"),
		TableToken:      bill.NormalizeTableToken(q.Get("tableToken")),
	}
	if data.PaymentIntentID == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_ = mockPayTmpl.Execute(w, data)
}
