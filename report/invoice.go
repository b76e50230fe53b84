package report

import (
	"bytes"
	"html/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ako-polymers/resinworks/internal/billing"
)

// invoiceTemplate is the printable invoice layout. Gotenberg renders it
// with chromium, so plain inline CSS is enough.
var invoiceTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice #{{.ID}}</title>
<style>
body { font-family: sans-serif; margin: 2.5em; color: #222; }
h1 { font-size: 1.4em; border-bottom: 2px solid #222; padding-bottom: 0.3em; }
table { width: 100%; border-collapse: collapse; margin-top: 1.5em; }
th, td { border: 1px solid #999; padding: 0.45em 0.6em; text-align: left; }
th { background: #f0f0f0; }
td.num, th.num { text-align: right; }
tfoot td { font-weight: bold; }
.meta { margin-top: 1em; }
.meta span { display: inline-block; min-width: 8em; color: #555; }
</style>
</head>
<body>
<h1>AKO Polymers — Invoice #{{.ID}}</h1>
<div class="meta">
<div><span>Billed to</span> {{.ClientName}}</div>
<div><span>Date</span> {{.Date}}</div>
<div><span>Status</span> {{.Status}}</div>
</div>
<table>
<thead>
<tr><th>Order No.</th><th>Description</th><th class="num">Qty</th><th class="num">Rate</th><th class="num">Amount</th></tr>
</thead>
<tbody>
{{range .Items}}<tr>
<td>{{.OrderNumber}}</td><td>{{.Description}}</td>
<td class="num">{{.Quantity}}</td><td class="num">{{.Rate}}</td><td class="num">{{.Amount}}</td>
</tr>
{{end}}</tbody>
<tfoot>
<tr><td colspan="4">Total</td><td class="num">{{.Total}}</td></tr>
</tfoot>
</table>
</body>
</html>`))

type invoiceView struct {
	ID         int64
	ClientName string
	Date       string
	Status     string
	Total      string
	Items      []invoiceItemView
}

type invoiceItemView struct {
	OrderNumber string
	Description string
	Quantity    string
	Rate        string
	Amount      string
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// InvoiceHTML renders a billing record into the printable invoice
// document.
func InvoiceHTML(rec billing.Record) ([]byte, error) {
	view := invoiceView{
		ID:         rec.ID,
		ClientName: rec.ClientName,
		Date:       rec.CreatedAt.Format("02 Jan 2006"),
		Status:     string(rec.Status),
		Total:      money(rec.Total),
	}
	if view.Date == "01 Jan 0001" {
		view.Date = time.Now().Format("02 Jan 2006")
	}
	for _, item := range rec.Items {
		view.Items = append(view.Items, invoiceItemView{
			OrderNumber: item.OrderNumber,
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			Rate:        money(item.Rate),
			Amount:      money(item.Amount),
		})
	}
	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
