package handlers

import (
	"net/http"

	"github.com/ukydev/detailing-desk/internal/analytics"
	"github.com/ukydev/detailing-desk/internal/metrics"
	"github.com/ukydev/detailing-desk/internal/models"
	"github.com/ukydev/detailing-desk/internal/workflow"
)

// WorkerHandler manages the worker roster.
type WorkerHandler struct {
	workflow  *workflow.Service
	snapshots Snapshots
	metrics   *metrics.Metrics
}

func NewWorkerHandler(wf *workflow.Service, snapshots Snapshots, m *metrics.Metrics) *WorkerHandler {
	return &WorkerHandler{workflow: wf, snapshots: snapshots, metrics: m}
}

// List returns roster stats for workers whose name matches ?search=.
func (h *WorkerHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	appointments, workers, err := h.snapshots.Snapshot()
	if err != nil {
		writeSnapshotError(w, r, err)
		return
	}

	matches := analytics.FilterWorkersByName(workers, r.URL.Query().Get("search"))
	stats := analytics.Roster(appointments, matches)
	writeJSON(w, http.StatusOK, stats)
}

// Create adds a worker.
func (h *WorkerHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var in models.WorkerInput
	if err := readJSON(r, &in); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	worker, err := h.workflow.CreateWorker(r.Context(), in)
	h.metrics.Mutation("create_worker", err)
	if err != nil {
		writeFailure(w, r, err, "Worker not found", "Failed to add worker")
		return
	}
	writeJSON(w, http.StatusCreated, worker)
}

// Update replaces a worker's details.
func (h *WorkerHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var in models.WorkerInput
	if err := readJSON(r, &in); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	err := h.workflow.UpdateWorker(r.Context(), r.PathValue("id"), in)
	h.metrics.Mutation("update_worker", err)
	if err != nil {
		writeFailure(w, r, err, "Worker not found", "Failed to update worker")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Worker updated"})
}

// Delete removes a worker without assigned jobs.
func (h *WorkerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	err := h.workflow.DeleteWorker(r.Context(), r.PathValue("id"))
	h.metrics.Mutation("delete_worker", err)
	if err != nil {
		writeFailure(w, r, err, "Worker not found", "Failed to delete worker")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
