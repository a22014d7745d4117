package handlers

import (
	"html/template"
	"net/http"
)

var adminTmpl = template.Must(template.New("admin").Parse(adminHTML))

const adminHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Staff console</title>
  <style>
    body { font-family: -apple-system, sans-serif; max-width: 720px; margin: 24px auto; padding: 0 16px; color: #111; }
    h1 { font-size: 20px; }
    h2 { font-size: 16px; margin-top: 24px; }
    input, select { padding: 8px; font-size: 14px; }
    button { padding: 8px 12px; font-size: 14px; background: #111; color: #fff; border: none; border-radius: 6px; }
    table { width: 100%; border-collapse: collapse; font-size: 14px; }
    th, td { text-align: left; padding: 6px 4px; border-bottom: 1px solid #eee; }
    .error { color: #b00; font-size: 14px; }
    .muted { color: #666; font-size: 13px; }
    .line { display: flex; gap: 8px; align-items: center; margin: 6px 0; }
  </style>
</head>
<body>
  <h1>Staff console</h1>
  <div class="line">
    <input id="token" placeholder="Staff access token" style="flex:1" />
    <button id="saveToken">Use</button>
  </div>
  <div id="error" class="error"></div>

  <h2>Tables</h2>
  <div id="tables" class="muted">waiting for token…</div>

  <h2>Open orders</h2>
  <table>
    <thead><tr><th>Order</th><th>Table</th><th>Status</th><th>Bill</th><th>Paid</th><th></th></tr></thead>
    <tbody id="orders"></tbody>
  </table>

  <h2>New order</h2>
  <div class="line">
    <select id="orderTable"></select>
    <select id="orderItem"></select>
    <input id="orderQty" value="1" inputmode="numeric" style="width:60px" />
    <button id="addLine">Add</button>
  </div>
  <div id="draft" class="muted"></div>
  <button id="submitOrder">Create order</button>

  <h2>Record payment</h2>
  <div class="line">
    <input id="payOrder" placeholder="Order id" inputmode="numeric" style="width:90px" />
    <input id="payAmount" placeholder="Amount" inputmode="numeric" style="width:120px" />
    <button id="submitPayment">Record</button>
  </div>

  <script>
  (function () {
    var pollMs = {{.PollMs}};
    var draft = [];
    var menu = [];

    function token() { return localStorage.getItem('staffToken') || ''; }

    function api(path, opts) {
      opts = opts || {};
      opts.headers = Object.assign({
        'Content-Type': 'application/json',
        'Authorization': 'Bearer ' + token()
      }, opts.headers || {});
      return fetch(path, opts).then(function (res) {
        return res.json().then(function (body) {
          if (!res.ok || body.success === false) {
            throw new Error(body.message || ('request failed (' + res.status + ')'));
          }
          return body.data;
        });
      });
    }

    function showError(err) {
      document.getElementById('error').textContent = err ? err.message : '';
    }

    function renderTables(tables) {
      var sel = document.getElementById('orderTable');
      sel.innerHTML = '';
      document.getElementById('tables').textContent = tables.map(function (t) {
        return t.label;
      }).join(' · ') || 'none';
      tables.forEach(function (t) {
        var opt = document.createElement('option');
        opt.value = t.id;
        opt.textContent = t.label;
        sel.appendChild(opt);
      });
    }

    function renderMenu(items) {
      menu = items;
      var sel = document.getElementById('orderItem');
      sel.innerHTML = '';
      items.forEach(function (it) {
        var opt = document.createElement('option');
        opt.value = it.id;
        opt.textContent = it.name + ' (' + it.price + ')';
        sel.appendChild(opt);
      });
    }

    function renderOrders(orders) {
      var body = document.getElementById('orders');
      body.innerHTML = '';
      orders.forEach(function (o) {
        var tr = document.createElement('tr');
        tr.innerHTML = '<td>#' + o.id + '</td><td>' + o.table + '</td><td>' + o.status +
          '</td><td>' + o.bill_amount + '</td><td>' + o.paid_total + '</td>';
        var td = document.createElement('td');
        var btn = document.createElement('button');
        btn.textContent = 'Split…';
        btn.onclick = function () {
          var people = prompt('Split between how many people?');
          if (!people) return;
          api('/api/admin/orders/' + o.id + '/split', {
            method: 'POST',
            body: JSON.stringify({ people: parseInt(people, 10) })
          }).then(refresh).catch(showError);
        };
        td.appendChild(btn);
        tr.appendChild(td);
        body.appendChild(tr);
      });
    }

    function refresh() {
      if (!token()) return;
      showError(null);
      Promise.all([
        api('/api/admin/tables'),
        api('/api/admin/menu-items'),
        api('/api/admin/orders')
      ]).then(function (results) {
        renderTables(results[0] || []);
        renderMenu(results[1] || []);
        renderOrders(results[2] || []);
      }).catch(showError);
    }

    document.getElementById('saveToken').onclick = function () {
      localStorage.setItem('staffToken', document.getElementById('token').value.trim());
      refresh();
    };

    document.getElementById('addLine').onclick = function () {
      var id = parseInt(document.getElementById('orderItem').value, 10);
      var qty = parseInt(document.getElementById('orderQty').value, 10) || 1;
      draft.push({ menu_item: id, quantity: qty });
      var names = draft.map(function (l) {
        var it = menu.find(function (m) { return m.id === l.menu_item; });
        return (it ? it.name : l.menu_item) + ' ×' + l.quantity;
      });
      document.getElementById('draft').textContent = names.join(', ');
    };

    document.getElementById('submitOrder').onclick = function () {
      if (draft.length === 0) return;
      api('/api/admin/orders', {
        method: 'POST',
        body: JSON.stringify({
          table: parseInt(document.getElementById('orderTable').value, 10),
          items: draft
        })
      }).then(function () {
        draft = [];
        document.getElementById('draft').textContent = '';
        refresh();
      }).catch(showError);
    };

    document.getElementById('submitPayment').onclick = function () {
      api('/api/admin/payments', {
        method: 'POST',
        body: JSON.stringify({
          order: parseInt(document.getElementById('payOrder').value, 10),
          amount: parseInt(document.getElementById('payAmount').value, 10)
        })
      }).then(refresh).catch(showError);
    };

    document.getElementById('token').value = token();
    refresh();
    setInterval(refresh, pollMs);
  })();
  </script>
</body>
</html>`

type adminPageData struct {
	PollMs int64
}

// AdminPage renders the staff console. The page itself is public; every
// call it makes goes through the guarded admin API with the staff token
// the user pastes in, so the backend stays the authority.
func (h *Handler) AdminPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_ = adminTmpl.Execute(w, adminPageData{PollMs: h.Config.AdminPollInterval.Milliseconds()})
}
