package handlers

import (
	"net/http"

	"github.com/ukydev/detailing-desk/internal/analytics"
	"github.com/ukydev/detailing-desk/internal/models"
)

// AnalyticsHandler serves the derived views.
type AnalyticsHandler struct {
	snapshots Snapshots
}

func NewAnalyticsHandler(snapshots Snapshots) *AnalyticsHandler {
	return &AnalyticsHandler{snapshots: snapshots}
}

// Dashboard returns the last computed dashboard, or 503 while the
// subscription is failing or still loading.
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dashboard, err := h.snapshots.Dashboard()
	if err != nil {
		writeSnapshotError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

// Inactive lists customers not seen for two weeks, filtered by name.
func (h *AnalyticsHandler) Inactive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	appointments, _, err := h.snapshots.Snapshot()
	if err != nil {
		writeSnapshotError(w, r, err)
		return
	}

	customers := analytics.InactiveCustomers(appointments, h.snapshots.Now())
	matches := analytics.FilterInactiveByName(customers, r.URL.Query().Get("search"))
	page, rows := pageParams(r)

	writeJSON(w, http.StatusOK, Page[models.InactiveCustomer]{
		Items:       analytics.Paginate(matches, page, rows),
		Total:       len(matches),
		Page:        page,
		RowsPerPage: rows,
	})
}

// TopPerformers ranks workers by earnings for ?timeframe=week|month.
func (h *AnalyticsHandler) TopPerformers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tf := models.Timeframe(r.URL.Query().Get("timeframe"))
	if tf == "" {
		tf = models.TimeframeWeek
	}
	if !models.IsValidTimeframe(tf) {
		http.Error(w, "Invalid timeframe", http.StatusBadRequest)
		return
	}

	appointments, workers, err := h.snapshots.Snapshot()
	if err != nil {
		writeSnapshotError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.TopPerformers(appointments, workers, tf, h.snapshots.Now()))
}
