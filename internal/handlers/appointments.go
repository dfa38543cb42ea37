package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ukydev/detailing-desk/internal/analytics"
	"github.com/ukydev/detailing-desk/internal/metrics"
	"github.com/ukydev/detailing-desk/internal/models"
	"github.com/ukydev/detailing-desk/internal/workflow"
)

// AppointmentView is an appointment with its worker ids resolved to names.
type AppointmentView struct {
	models.Appointment
	WorkerNames []string `json:"workerNames"`
}

// AppointmentHandler serves the public request form and the staff table.
type AppointmentHandler struct {
	workflow  *workflow.Service
	snapshots Snapshots
	metrics   *metrics.Metrics
}

func NewAppointmentHandler(wf *workflow.Service, snapshots Snapshots, m *metrics.Metrics) *AppointmentHandler {
	return &AppointmentHandler{workflow: wf, snapshots: snapshots, metrics: m}
}

// Submit handles the public customer details form
func (h *AppointmentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.SubmitRequest
	if err := readJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	appointment, err := h.workflow.SubmitRequest(r.Context(), req)
	h.metrics.Mutation("submit_request", err)
	if err != nil {
		writeFailure(w, r, err, "Not found", "Failed to submit details. Please try again.")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": appointment.ID})
}

// List returns the appointment table: search, newest first, paginated.
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	appointments, workers, err := h.snapshots.Snapshot()
	if err != nil {
		writeSnapshotError(w, r, err)
		return
	}

	matches := analytics.NewestFirst(analytics.SearchAppointments(appointments, r.URL.Query().Get("search")))
	page, rows := pageParams(r)
	items := analytics.Paginate(matches, page, rows)

	views := make([]AppointmentView, 0, len(items))
	for _, a := range items {
		names := make([]string, 0, len(a.Workers))
		for _, id := range a.Workers {
			names = append(names, analytics.WorkerName(workers, id))
		}
		views = append(views, AppointmentView{Appointment: a, WorkerNames: names})
	}

	writeJSON(w, http.StatusOK, Page[AppointmentView]{
		Items:       views,
		Total:       len(matches),
		Page:        page,
		RowsPerPage: rows,
	})
}

// Edit saves the edit dialog: price, assignment, status and car details.
func (h *AppointmentHandler) Edit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.EditRequest
	if err := readJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	updated, err := h.workflow.EditAppointment(r.Context(), r.PathValue("id"), req)
	h.metrics.Mutation("edit_appointment", err)
	if err != nil {
		writeFailure(w, r, err, "Appointment not found", "Failed to save changes")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// PaymentPreview shows the split a save would produce for ?cost=&workers=a,b.
func (h *AppointmentHandler) PaymentPreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	cost, err := strconv.ParseFloat(q.Get("cost"), 64)
	if err != nil || cost <= 0 {
		http.Error(w, "Please enter a valid cost", http.StatusBadRequest)
		return
	}
	var ids []string
	if raw := q.Get("workers"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			ids = append(ids, strings.TrimSpace(id))
		}
	}

	writeJSON(w, http.StatusOK, workflow.PreviewPayment(cost, ids))
}
