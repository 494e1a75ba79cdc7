package invoice

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/garage-hub/internal/models"
	"github.com/ukydev/garage-hub/internal/money"
)

func item(name, price string, qty int) models.LineItem {
	return models.LineItem{Name: name, Price: money.MustParse(price), Quantity: qty}
}

func TestComputeTotals_WOFWithParts(t *testing.T) {
	services := []models.LineItem{item("Full Service", "180", 1)}
	parts := []models.LineItem{item("Oil Filter", "45", 1), item("Engine Oil", "25", 1)}

	got := ComputeTotals(services, parts, money.Zero, money.Zero, nil)

	assert.Equal(t, "180.00", got.ServicesTotal.String())
	assert.Equal(t, "70.00", got.PartsTotal.String())
	assert.Equal(t, "250.00", got.Subtotal.String())
	assert.Equal(t, "37.50", got.GST.String())
	assert.Equal(t, "287.50", got.Total.String())
}

func TestComputeTotals_AllComponents(t *testing.T) {
	got := ComputeTotals(
		[]models.LineItem{item("WOF", "65", 1)},
		[]models.LineItem{item("Wiper blade", "12.50", 2)},
		money.MustParse("85"),
		money.MustParse("40"),
		[]models.Charge{{Name: "Disposal", Price: money.MustParse("7.50")}, {Name: "Courtesy car", Price: money.MustParse("20")}},
	)

	assert.Equal(t, "65.00", got.ServicesTotal.String())
	assert.Equal(t, "25.00", got.PartsTotal.String())
	assert.Equal(t, "85.00", got.LabourCharge.String())
	assert.Equal(t, "40.00", got.DiagnosticCharge.String())
	assert.Equal(t, "27.50", got.OtherTotal.String())
	assert.Equal(t, "242.50", got.Subtotal.String())
	assert.Equal(t, "36.38", got.GST.String())
	assert.True(t, got.GST.Equal(money.MustParse("36.375")), "gst is kept exact")
	assert.Equal(t, "278.88", got.Total.String())
}

func TestComputeTotals_ZerosInZerosOut(t *testing.T) {
	got := ComputeTotals(nil, nil, money.Zero, money.Zero, nil)
	for name, v := range map[string]money.Amount{
		"services": got.ServicesTotal, "parts": got.PartsTotal, "other": got.OtherTotal,
		"subtotal": got.Subtotal, "gst": got.GST, "total": got.Total,
	} {
		assert.True(t, v.IsZero(), name)
	}
}

func TestComputeTotals_TotalIsSubtotalTimesRate(t *testing.T) {
	factor := decimal.NewFromInt(1).Add(GSTRate)
	cases := [][]models.LineItem{
		{item("a", "0.01", 1)},
		{item("a", "19.99", 3), item("b", "0.10", 7)},
		{item("a", "1234.56", 11)},
	}
	for _, services := range cases {
		got := ComputeTotals(services, nil, money.Zero, money.Zero, nil)
		assert.True(t, got.Total.Equal(got.Subtotal.MulRate(factor)), "total %s subtotal %s", got.Total, got.Subtotal)
	}
}

func TestComputeTotals_NegativeValuesPassThrough(t *testing.T) {
	got := ComputeTotals(
		[]models.LineItem{item("Service", "100", 1)},
		nil, money.Zero, money.Zero,
		[]models.Charge{{Name: "Loyalty discount", Price: money.MustParse("-20")}},
	)
	assert.Equal(t, "80.00", got.Subtotal.String())
	assert.Equal(t, "92.00", got.Total.String())
}

func TestBookingTotals(t *testing.T) {
	got := BookingTotals(
		[]models.LineItem{item("Brake pads", "120", 1)},
		[]models.LineItem{item("Pads", "60", 2)},
	)
	assert.Equal(t, "240.00", got.Subtotal.String())
	assert.True(t, got.LabourCharge.IsZero())
	assert.Equal(t, "276.00", got.Total.String())
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "INV-2024-001", Number(2024, 1))
	assert.Equal(t, "INV-2024-042", Number(2024, 42))
	assert.Equal(t, "INV-2025-1234", Number(2025, 1234))
	assert.Equal(t, "INV-2024-", NumberPrefix(2024))
}

func invoices() []models.Invoice {
	return []models.Invoice{
		{ID: "i1", Number: "INV-2024-001", CustomerName: "John Smith", Status: models.InvoicePaid, DueDate: "2024-02-01"},
		{ID: "i2", Number: "INV-2024-002", CustomerName: "Sarah Johnson", Status: models.InvoiceSent, DueDate: "2024-02-10"},
		{ID: "i3", Number: "INV-2024-003", CustomerName: "Mike Brown", Status: models.InvoiceSent, DueDate: "2024-03-01"},
		{ID: "i4", Number: "INV-2024-004", CustomerName: "Emma Wilson", Status: models.InvoiceDraft, DueDate: "2024-01-01"},
		{ID: "i5", Number: "INV-2024-005", CustomerName: "Liam Chen", Status: models.InvoiceSent, DueDate: "garbage"},
	}
}

func TestFilterInvoices(t *testing.T) {
	tests := []struct {
		name   string
		status string
		search string
		want   []string
	}{
		{"all", "all", "", []string{"i1", "i2", "i3", "i4", "i5"}},
		{"empty status", "", "", []string{"i1", "i2", "i3", "i4", "i5"}},
		{"sent tab", "sent", "", []string{"i2", "i3", "i5"}},
		{"search by customer", "all", "JOHN", []string{"i1", "i2"}},
		{"search by number", "", "-003", []string{"i3"}},
		{"tab and search", "sent", "mike", []string{"i3"}},
		{"no match", "paid", "emma", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterInvoices(invoices(), tt.status, tt.search)
			ids := make([]string, 0, len(got))
			for _, inv := range got {
				ids = append(ids, inv.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestMarkOverdue(t *testing.T) {
	list := invoices()
	today := time.Date(2024, 2, 21, 9, 0, 0, 0, time.UTC)

	changed := MarkOverdue(list, today)

	require.Equal(t, []string{"i2"}, changed)
	assert.Equal(t, models.InvoiceOverdue, list[1].Status)
	assert.Equal(t, models.InvoiceSent, list[2].Status)
	assert.Equal(t, models.InvoiceDraft, list[3].Status, "drafts are never overdue")
	assert.Equal(t, models.InvoiceSent, list[4].Status)

	assert.Empty(t, MarkOverdue(list, today), "second pass changes nothing")
}

func TestMarkOverdue_DueTodayIsNotOverdue(t *testing.T) {
	list := []models.Invoice{{ID: "x", Status: models.InvoiceSent, DueDate: "2024-02-21"}}
	assert.Empty(t, MarkOverdue(list, time.Date(2024, 2, 21, 23, 0, 0, 0, time.UTC)))
}
