package analytics

import (
	"time"

	"github.com/ukydev/detailing-desk/internal/models"
)

// Build computes every derived view for one snapshot at the given instant.
func Build(appointments []models.Appointment, workers []models.Worker, now time.Time, loc *time.Location) models.Dashboard {
	return models.Dashboard{
		Totals:            ComputeTotals(appointments),
		Sales:             Sales(appointments, loc),
		InactiveCustomers: InactiveCustomers(appointments, now),
		TopWeek:           TopPerformers(appointments, workers, models.TimeframeWeek, now),
		TopMonth:          TopPerformers(appointments, workers, models.TimeframeMonth, now),
		Roster:            Roster(appointments, workers),
		ComputedAt:        now,
	}
}
