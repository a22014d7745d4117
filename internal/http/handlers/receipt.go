package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"tablepay-gateway/internal/bill"
	"tablepay-gateway/pkg/response"
)

type receiptItem struct {
	Name     string
	Quantity int64
	Unit     string
	Subtotal string
}

type receiptData struct {
	TableLabel string
	TableToken string
	Currency   string
	IssuedAt   string
	Items      []receiptItem
	Total      string
	Paid       string
	Reserved   string
	Remaining  string
	Status     string
}

const receiptHTMLTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <title>Bill {{.TableLabel}}</title>
  <style>
    body { font-family: 'Courier New', monospace; font-size: 12px; padding: 12px; color: #000; }
    .header { text-align: center; border-bottom: 1px dashed #000; padding-bottom: 8px; margin-bottom: 8px; }
    .table-label { font-size: 16px; font-weight: bold; }
    .row { display: flex; justify-content: space-between; margin: 2px 0; }
    .section { border-top: 1px dashed #999; padding-top: 6px; margin-top: 6px; }
    .item-name { font-weight: 600; }
    .total { font-weight: bold; font-size: 14px; }
  </style>
</head>
<body>
  <div class="header">
    <div class="table-label">{{.TableLabel}}</div>
    <div>Issued: {{.IssuedAt}}</div>
    {{if .Status}}<div>Status: {{.Status}}</div>{{end}}
  </div>
  <div class="items">
    {{range .Items}}
      <div class="row">
        <div class="item-name">{{.Quantity}} x {{.Name}}</div>
        <div>{{.Subtotal}}</div>
      </div>
      {{if .Unit}}<div>Unit: {{.Unit}}</div>{{end}}
    {{end}}
  </div>
  <div class="section">
    <div class="row total"><div>Total</div><div>{{.Total}}</div></div>
    <div class="row"><div>Paid</div><div>{{.Paid}}</div></div>
    {{if .Reserved}}<div class="row"><div>Reserved</div><div>{{.Reserved}}</div></div>{{end}}
    <div class="row"><div>Remaining</div><div>{{.Remaining}}</div></div>
  </div>
</body>
</html>`

func buildReceiptData(snap *bill.Snapshot) receiptData {
	data := receiptData{
		TableLabel: snap.TableLabel,
		TableToken: snap.TableToken,
		Currency:   snap.Currency,
		IssuedAt:   time.Now().Format("2006-01-02 15:04"),
		Status:     snap.Status,
		Total:      formatMoney(snap.Total, snap.Currency),
		Paid:       formatMoney(snap.Paid, snap.Currency),
		Remaining:  "syncing",
	}
	if data.TableLabel == "" {
		data.TableLabel = "Table"
	}
	if snap.Reserved > 0 {
		data.Reserved = formatMoney(snap.Reserved, snap.Currency)
	}
	if snap.RemainingKnown() {
		data.Remaining = formatMoney(*snap.Remaining, snap.Currency)
	}
	for _, it := range snap.Items {
		item := receiptItem{
			Name:     it.Name,
			Quantity: it.Quantity,
			Subtotal: formatMoney(it.TotalPrice, snap.Currency),
		}
		if it.Quantity > 1 {
			item.Unit = formatMoney(it.UnitPrice, snap.Currency)
		}
		data.Items = append(data.Items, item)
	}
	return data
}

// ReceiptHTML renders the current bill as a printable HTML receipt.
func (h *Handler) ReceiptHTML(w http.ResponseWriter, r *http.Request) {
	token := tableTokenParam(r)
	if token == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "table token is required")
		return
	}

	snap, err := h.fetchSnapshot(r.Context(), token)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	tmpl, err := template.New("receipt").Parse(receiptHTMLTemplate)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to render receipt")
		return
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, buildReceiptData(snap)); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to render receipt")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// ReceiptPDF renders the current bill as a PDF.
func (h *Handler) ReceiptPDF(w http.ResponseWriter, r *http.Request) {
	token := tableTokenParam(r)
	if token == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "table token is required")
		return
	}

	snap, err := h.fetchSnapshot(r.Context(), token)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	buf, err := renderReceiptPDF(buildReceiptData(snap))
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate receipt")
		return
	}

	filename := fmt.Sprintf("bill_%s.pdf", sanitizeFilename(token))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"%s\"", filename))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func sanitizeFilename(value string) string {
	re := regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
	clean := re.ReplaceAllString(value, "_")
	return strings.Trim(clean, "_")
}

func renderReceiptPDF(data receiptData) (*bytes.Buffer, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, data.TableLabel, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Issued: %s", data.IssuedAt), "", 1, "C", false, 0, "")
	if data.Status != "" {
		pdf.CellFormat(0, 5, fmt.Sprintf("Status: %s", data.Status), "", 1, "C", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Items", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, item := range data.Items {
		pdf.CellFormat(0, 5, fmt.Sprintf("%dx %s", item.Quantity, item.Name), "", 1, "L", false, 0, "")
		if item.Unit != "" {
			pdf.CellFormat(0, 4, fmt.Sprintf("  Unit: %s", item.Unit), "", 1, "L", false, 0, "")
		}
		pdf.CellFormat(0, 5, fmt.Sprintf("  Subtotal: %s", item.Subtotal), "", 1, "L", false, 0, "")
		pdf.Ln(1)
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Totals", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Total: %s", data.Total), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Paid: %s", data.Paid), "", 1, "L", false, 0, "")
	if data.Reserved != "" {
		pdf.CellFormat(0, 5, fmt.Sprintf("Reserved: %s", data.Reserved), "", 1, "L", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Remaining: %s", data.Remaining), "", 1, "L", false, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
