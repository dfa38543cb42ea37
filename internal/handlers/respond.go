package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/detailing-desk/internal/db"
	"github.com/ukydev/detailing-desk/internal/models"
	"github.com/ukydev/detailing-desk/internal/session"
	"github.com/ukydev/detailing-desk/internal/workflow"
)

// DefaultRowsPerPage applies when rowsPerPage is absent.
const DefaultRowsPerPage = 10

// Snapshots is the read side the handlers serve from.
type Snapshots interface {
	Snapshot() ([]models.Appointment, []models.Worker, error)
	Dashboard() (models.Dashboard, error)
	Now() time.Time
	Location() *time.Location
}

// Page is a paginated listing.
type Page[T any] struct {
	Items       []T `json:"items"`
	Total       int `json:"total"`
	Page        int `json:"page"`
	RowsPerPage int `json:"rowsPerPage"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}

func readJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

// writeFailure maps a workflow error to a response. Validation messages are
// shown as they are; store failures are logged and answered with fallback.
func writeFailure(w http.ResponseWriter, r *http.Request, err error, notFound, fallback string) {
	var verr *workflow.ValidationError
	switch {
	case errors.As(err, &verr):
		http.Error(w, verr.Message, http.StatusBadRequest)
	case errors.Is(err, db.ErrNotFound):
		http.Error(w, notFound, http.StatusNotFound)
	default:
		log.WithError(err).WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error(fallback)
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}

// writeSnapshotError answers 503 while the live data is unavailable. The
// cause is logged, not returned.
func writeSnapshotError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, session.ErrNotReady) {
		http.Error(w, "Live data is still loading", http.StatusServiceUnavailable)
		return
	}
	log.WithError(err).WithFields(log.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Error("Live data unavailable")
	http.Error(w, "Live data unavailable", http.StatusServiceUnavailable)
}

// pageParams reads page (zero-based) and rowsPerPage from the query.
func pageParams(r *http.Request) (page, rows int) {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 0 {
		page = 0
	}
	rows, err = strconv.Atoi(q.Get("rowsPerPage"))
	if err != nil || rows <= 0 {
		rows = DefaultRowsPerPage
	}
	return page, rows
}
