package handlers

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/detailing-desk/internal/metrics"
	"github.com/ukydev/detailing-desk/internal/models"
	"github.com/ukydev/detailing-desk/internal/report"
)

// Archiver stores a rendered dashboard and returns where it went.
type Archiver interface {
	Archive(ctx context.Context, d models.Dashboard) (string, error)
}

// ReportHandler exports the dashboard workbook.
type ReportHandler struct {
	snapshots Snapshots
	archiver  Archiver
	metrics   *metrics.Metrics
}

// NewReportHandler creates the handler; a nil archiver disables archiving.
func NewReportHandler(snapshots Snapshots, archiver Archiver, m *metrics.Metrics) *ReportHandler {
	return &ReportHandler{snapshots: snapshots, archiver: archiver, metrics: m}
}

// Export streams the dashboard as an XLSX download.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dashboard, err := h.snapshots.Dashboard()
	if err != nil {
		writeSnapshotError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, dashboard); err != nil {
		log.WithError(err).Error("Failed to render report")
		http.Error(w, "Failed to build report", http.StatusInternalServerError)
		return
	}

	filename := "dashboard-" + dashboard.ComputedAt.UTC().Format("2006-01-02") + ".xlsx"
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

// Archive uploads the current dashboard workbook to the report bucket.
func (h *ReportHandler) Archive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.archiver == nil {
		http.Error(w, "Report archive is not configured", http.StatusNotImplemented)
		return
	}

	dashboard, err := h.snapshots.Dashboard()
	if err != nil {
		writeSnapshotError(w, r, err)
		return
	}

	key, err := h.archiver.Archive(r.Context(), dashboard)
	h.metrics.Mutation("archive_report", err)
	if err != nil {
		log.WithError(err).Error("Failed to archive report")
		http.Error(w, "Failed to archive report", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"key": key})
}
