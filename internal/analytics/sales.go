package analytics

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/ukydev/detailing-desk/internal/models"
)

// Sales buckets revenue by month and weekday name (in loc), counts requests per
// service and accumulates worker earnings. Empty buckets are absent.
func Sales(appointments []models.Appointment, loc *time.Location) models.SalesAnalytics {
	if loc == nil {
		loc = time.UTC
	}

	monthly := make(map[string]decimal.Decimal)
	daily := make(map[string]decimal.Decimal)
	earnings := make(map[string]decimal.Decimal)
	popularity := make(map[string]int)

	for _, a := range appointments {
		at := a.Timestamp.Time().In(loc)
		cost := decimal.NewFromFloat(a.CostOrZero())

		month := at.Month().String()
		monthly[month] = monthly[month].Add(cost)

		day := at.Weekday().String()
		daily[day] = daily[day].Add(cost)

		popularity[string(a.Service)]++

		for _, id := range paymentOrder(a) {
			earnings[id] = earnings[id].Add(decimal.NewFromFloat(a.Payments[id]))
		}
	}

	return models.SalesAnalytics{
		MonthlySales:      toFloats(monthly),
		DayOfWeekSales:    toFloats(daily),
		ServicePopularity: popularity,
		WorkerEarnings:    toFloats(earnings),
	}
}

func toFloats(in map[string]decimal.Decimal) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v.InexactFloat64()
	}
	return out
}
