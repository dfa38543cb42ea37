package models

import "time"

// Timeframe selects the trailing window for top performers.
type Timeframe string

const (
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
)

// IsValidTimeframe checks if a timeframe is valid
func IsValidTimeframe(tf Timeframe) bool {
	return tf == TimeframeWeek || tf == TimeframeMonth
}

// UnknownPerformer is shown for earnings whose worker record no longer exists.
const UnknownPerformer = "Unknown"

// UnknownWorker is shown for dangling worker ids on appointments.
const UnknownWorker = "Unknown Worker"

// Totals are the headline dashboard counters.
type Totals struct {
	TotalCustomers      int     `json:"totalCustomers"`
	TotalSales          float64 `json:"totalSales"`
	CompletedCount      int     `json:"completedCount"`
	TotalWorkerPayments float64 `json:"totalWorkerPayments"`
}

// InactiveCustomer is a phone number whose most recent visit is older than the inactivity window.
type InactiveCustomer struct {
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	LastVisit      time.Time `json:"lastVisit"`
	TotalVisits    int       `json:"totalVisits"`
	DaysSinceVisit int       `json:"daysSinceVisit"`
}

// SalesAnalytics holds sparse buckets keyed by month name, weekday name, service code and worker id.
type SalesAnalytics struct {
	MonthlySales      map[string]float64 `json:"monthlySales"`
	DayOfWeekSales    map[string]float64 `json:"dayOfWeekSales"`
	ServicePopularity map[string]int     `json:"servicePopularity"`
	WorkerEarnings    map[string]float64 `json:"workerEarnings"`
}

// Performer is one ranked entry of the top performers board.
type Performer struct {
	WorkerID string  `json:"workerId"`
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
}

// WorkerStats is a roster row: a worker with job count and lifetime earnings.
type WorkerStats struct {
	Worker
	AssignedJobCount int     `json:"assignedJobCount"`
	TotalEarnings    float64 `json:"totalEarnings"`
}

// Dashboard is the full derived view of one snapshot.
type Dashboard struct {
	Totals            Totals             `json:"totals"`
	Sales             SalesAnalytics     `json:"sales"`
	InactiveCustomers []InactiveCustomer `json:"inactiveCustomers"`
	TopWeek           []Performer        `json:"topPerformersWeek"`
	TopMonth          []Performer        `json:"topPerformersMonth"`
	Roster            []WorkerStats      `json:"roster"`
	ComputedAt        time.Time          `json:"computedAt"`
}

// PaymentPreview is the split shown before an edit is saved.
type PaymentPreview struct {
	PerWorker float64 `json:"perWorker"`
	Total     float64 `json:"total"`
	Workers   int     `json:"workers"`
}
