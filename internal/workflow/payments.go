package workflow

import (
	"github.com/shopspring/decimal"
	"github.com/ukydev/detailing-desk/internal/models"
)

// WorkerShare is the fraction of an appointment's cost paid out to its workers.
var WorkerShare = decimal.RequireFromString("0.4")

// SplitPayment divides the worker share of cost evenly between workers.
// Every worker gets the same amount; the map has one entry per distinct id.
func SplitPayment(cost float64, workers []string) map[string]float64 {
	ids := uniqueIDs(workers)
	if len(ids) == 0 {
		return map[string]float64{}
	}
	per := decimal.NewFromFloat(cost).Mul(WorkerShare).Div(decimal.NewFromInt(int64(len(ids))))
	amount := per.InexactFloat64()

	payments := make(map[string]float64, len(ids))
	for _, id := range ids {
		payments[id] = amount
	}
	return payments
}

// PreviewPayment reports the split a save would produce, without validation.
func PreviewPayment(cost float64, workers []string) models.PaymentPreview {
	ids := uniqueIDs(workers)
	total := decimal.NewFromFloat(cost).Mul(WorkerShare)
	preview := models.PaymentPreview{Total: total.InexactFloat64(), Workers: len(ids)}
	if len(ids) > 0 {
		preview.PerWorker = total.Div(decimal.NewFromInt(int64(len(ids)))).InexactFloat64()
	}
	return preview
}

// uniqueIDs drops empty and repeated ids, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
