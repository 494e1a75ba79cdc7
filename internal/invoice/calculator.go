// Package invoice computes invoice totals and works with invoice lists.
package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ukydev/garage-hub/internal/models"
	"github.com/ukydev/garage-hub/internal/money"
)

// GSTRate is the New Zealand goods and services tax applied to every invoice.
var GSTRate = decimal.RequireFromString("0.15")

// ComputeTotals derives the invoice breakdown. It never fails and accepts
// negative values as given.
func ComputeTotals(services, parts []models.LineItem, labour, diagnostic money.Amount, other []models.Charge) models.InvoiceTotals {
	t := models.InvoiceTotals{
		ServicesTotal:    sumItems(services),
		PartsTotal:       sumItems(parts),
		LabourCharge:     labour,
		DiagnosticCharge: diagnostic,
		OtherTotal:       sumCharges(other),
	}
	t.Subtotal = money.Sum(t.ServicesTotal, t.PartsTotal, t.LabourCharge, t.DiagnosticCharge, t.OtherTotal)
	t.GST = t.Subtotal.MulRate(GSTRate)
	t.Total = t.Subtotal.Add(t.GST)
	return t
}

// BookingTotals is ComputeTotals for services and parts only.
func BookingTotals(services, parts []models.LineItem) models.InvoiceTotals {
	return ComputeTotals(services, parts, money.Zero, money.Zero, nil)
}

func sumItems(items []models.LineItem) money.Amount {
	total := money.Zero
	for _, it := range items {
		total = total.Add(it.Total())
	}
	return total
}

func sumCharges(charges []models.Charge) money.Amount {
	total := money.Zero
	for _, c := range charges {
		total = total.Add(c.Price)
	}
	return total
}

// Number formats an invoice number, e.g. INV-2024-001.
func Number(year, seq int) string {
	return fmt.Sprintf("INV-%d-%03d", year, seq)
}

// NumberPrefix is the prefix shared by every invoice number of a year.
func NumberPrefix(year int) string {
	return fmt.Sprintf("INV-%d-", year)
}

// FilterInvoices keeps invoices matching the status tab ("" or "all" for
// every status) and a case-insensitive search on customer name or number.
func FilterInvoices(invoices []models.Invoice, status string, search string) []models.Invoice {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]models.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if status != "" && status != "all" && string(inv.Status) != status {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(inv.CustomerName), needle) &&
			!strings.Contains(strings.ToLower(inv.Number), needle) {
			continue
		}
		out = append(out, inv)
	}
	return out
}

// MarkOverdue flips sent invoices due before today to overdue, in place,
// and returns the ids it changed. Invoices with a malformed due date are
// left alone.
func MarkOverdue(invoices []models.Invoice, today time.Time) []string {
	y, m, d := today.Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	var changed []string
	for i := range invoices {
		inv := &invoices[i]
		if inv.Status != models.InvoiceSent {
			continue
		}
		due, err := time.Parse(models.DateLayout, inv.DueDate)
		if err != nil || !due.Before(cutoff) {
			continue
		}
		inv.Status = models.InvoiceOverdue
		changed = append(changed, inv.ID)
	}
	return changed
}
