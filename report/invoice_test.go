package report

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ako-polymers/resinworks/internal/billing"
)

func TestInvoiceHTML(t *testing.T) {
	rec := billing.Record{
		ID:         42,
		ClientName: "Sharma Paints",
		Status:     billing.StatusSent,
		Total:      decimal.RequireFromString("3880.30"),
		CreatedAt:  time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
		Items: []billing.Item{
			{
				OrderNumber: "AKO-PUN-29082026-000001",
				Description: "Epoxy Resin 112 L",
				Quantity:    decimal.RequireFromString("112"),
				Rate:        decimal.RequireFromString("34.50"),
				Amount:      decimal.RequireFromString("3864.00"),
			},
		},
	}

	html, err := InvoiceHTML(rec)
	require.NoError(t, err)

	doc := string(html)
	require.Contains(t, doc, "Invoice #42")
	require.Contains(t, doc, "Sharma Paints")
	require.Contains(t, doc, "AKO-PUN-29082026-000001")
	require.Contains(t, doc, "3864.00")
	require.Contains(t, doc, "3880.30")
	require.Contains(t, doc, "29 Aug 2026")
}

func TestInvoiceHTMLEscapesClientName(t *testing.T) {
	rec := billing.Record{ID: 1, ClientName: `<script>alert("x")</script>`, Total: decimal.Zero}
	html, err := InvoiceHTML(rec)
	require.NoError(t, err)
	require.NotContains(t, string(html), "<script>alert")
}

func TestNilRendererReportsUnavailable(t *testing.T) {
	var r *Renderer
	_, err := r.RenderPDF(context.Background(), []byte("<html></html>"))
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, r.Healthy(context.Background()), ErrUnavailable)

	require.Nil(t, NewRenderer(""))
}
