package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ukydev/detailing-desk/internal/models"
)

// TopPerformerLimit caps the leaderboard length.
const TopPerformerLimit = 3

// Cutoff returns the start of the trailing window for tf. A month is a
// calendar month, normalised the way time.AddDate does.
func Cutoff(tf models.Timeframe, now time.Time) time.Time {
	if tf == models.TimeframeMonth {
		return now.AddDate(0, -1, 0)
	}
	return now.AddDate(0, 0, -7)
}

// TopPerformers ranks workers by payments earned on appointments created at or
// after the timeframe cutoff. Unknown worker ids are kept and labelled
// models.UnknownPerformer.
func TopPerformers(appointments []models.Appointment, workers []models.Worker, tf models.Timeframe, now time.Time) []models.Performer {
	cutoff := Cutoff(tf, now)

	order := make([]string, 0)
	totals := make(map[string]decimal.Decimal)
	for _, a := range appointments {
		if a.Timestamp.Time().Before(cutoff) || len(a.Payments) == 0 {
			continue
		}
		for _, id := range paymentOrder(a) {
			if _, ok := totals[id]; !ok {
				order = append(order, id)
			}
			totals[id] = totals[id].Add(decimal.NewFromFloat(a.Payments[id]))
		}
	}

	names := workerNames(workers)
	ranked := make([]models.Performer, 0, len(order))
	for _, id := range order {
		name, ok := names[id]
		if !ok {
			name = models.UnknownPerformer
		}
		ranked = append(ranked, models.Performer{
			WorkerID: id,
			Name:     name,
			Amount:   totals[id].InexactFloat64(),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Amount > ranked[j].Amount
	})
	if len(ranked) > TopPerformerLimit {
		ranked = ranked[:TopPerformerLimit]
	}
	return ranked
}

// Roster pairs every worker with its current job count and lifetime earnings.
func Roster(appointments []models.Appointment, workers []models.Worker) []models.WorkerStats {
	earnings := make(map[string]decimal.Decimal)
	for _, a := range appointments {
		for id, amount := range a.Payments {
			earnings[id] = earnings[id].Add(decimal.NewFromFloat(amount))
		}
	}

	roster := make([]models.WorkerStats, 0, len(workers))
	for _, w := range workers {
		roster = append(roster, models.WorkerStats{
			Worker:           w,
			AssignedJobCount: len(w.AssignedJobs),
			TotalEarnings:    earnings[w.ID].InexactFloat64(),
		})
	}
	return roster
}

// WorkerName resolves a worker id for display, falling back to models.UnknownWorker.
func WorkerName(workers []models.Worker, id string) string {
	for _, w := range workers {
		if w.ID == id {
			return w.Name
		}
	}
	return models.UnknownWorker
}

func workerNames(workers []models.Worker) map[string]string {
	names := make(map[string]string, len(workers))
	for _, w := range workers {
		names[w.ID] = w.Name
	}
	return names
}
