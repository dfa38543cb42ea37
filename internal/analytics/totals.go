// Package analytics derives dashboard views from a snapshot of appointments
// and workers. Every function here is pure: inputs are never modified and the
// same snapshot always yields the same output.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/ukydev/detailing-desk/internal/models"
)

// ComputeTotals returns the headline counters. Unpriced appointments count as
// customers and contribute 0 to sales.
func ComputeTotals(appointments []models.Appointment) models.Totals {
	sales := decimal.Zero
	payments := decimal.Zero
	completed := 0

	for _, a := range appointments {
		sales = sales.Add(decimal.NewFromFloat(a.CostOrZero()))
		if a.Status == models.StatusCompleted {
			completed++
		}
		for _, amount := range a.Payments {
			payments = payments.Add(decimal.NewFromFloat(amount))
		}
	}

	return models.Totals{
		TotalCustomers:      len(appointments),
		TotalSales:          sales.InexactFloat64(),
		CompletedCount:      completed,
		TotalWorkerPayments: payments.InexactFloat64(),
	}
}

// paymentOrder lists the payee ids of an appointment in a deterministic order:
// the assignment order first, then any leftover payees sorted.
func paymentOrder(a models.Appointment) []string {
	ids := make([]string, 0, len(a.Payments))
	seen := make(map[string]bool, len(a.Payments))
	for _, id := range a.Workers {
		if _, ok := a.Payments[id]; ok && !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	var rest []string
	for id := range a.Payments {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(ids, rest...)
}
