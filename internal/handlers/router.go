package handlers

import (
	"net/http"

	"github.com/ukydev/detailing-desk/internal/auth"
	"github.com/ukydev/detailing-desk/internal/db"
	"github.com/ukydev/detailing-desk/internal/live"
	"github.com/ukydev/detailing-desk/internal/metrics"
	"github.com/ukydev/detailing-desk/internal/middleware"
	"github.com/ukydev/detailing-desk/internal/models"
	"github.com/ukydev/detailing-desk/internal/workflow"
)

// LivePrefix is where the sockjs stream is mounted.
const LivePrefix = "/api/live"

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Auth      *auth.Service
	Store     db.Store
	Workflow  *workflow.Service
	Snapshots Snapshots
	Hub       *live.Hub
	Archiver  Archiver
	Metrics   *metrics.Metrics

	RateLimitRequests int
	RateLimitWindow   int
}

// NewRouter wires every route. Public routes are rate limited; staff routes
// require a bearer token and the listed permission.
func NewRouter(d Deps) http.Handler {
	authMW := middleware.NewAuthMiddleware(d.Auth).WithAccountCheck(d.Store.Users())
	limited := middleware.NewRateLimitMiddleware().RateLimit(d.RateLimitRequests, d.RateLimitWindow)
	can := func(action string, h http.HandlerFunc) http.Handler {
		return authMW.RequirePermission(action)(h)
	}

	authH := NewAuthHandler(d.Auth, d.Store.Users())
	appts := NewAppointmentHandler(d.Workflow, d.Snapshots, d.Metrics)
	workers := NewWorkerHandler(d.Workflow, d.Snapshots, d.Metrics)
	views := NewAnalyticsHandler(d.Snapshots)
	reports := NewReportHandler(d.Snapshots, d.Archiver, d.Metrics)

	mux := http.NewServeMux()

	mux.Handle("/api/customer-details", limited(http.HandlerFunc(appts.Submit)))
	mux.Handle("/api/auth/login", limited(http.HandlerFunc(authH.Login)))
	mux.HandleFunc("GET /health", Health(d.Store))
	mux.Handle("GET /metrics", d.Metrics.Handler())

	mux.HandleFunc("/api/auth/logout", authH.Logout)
	mux.HandleFunc("/api/auth/me", authH.Me)

	mux.Handle("/api/appointments", can(models.ActionViewDashboard, appts.List))
	mux.Handle("/api/appointments/{id}", can(models.ActionEditAppointments, appts.Edit))
	mux.Handle("/api/appointments/{id}/payment-preview", can(models.ActionEditAppointments, appts.PaymentPreview))

	mux.Handle("GET /api/workers", can(models.ActionViewDashboard, workers.List))
	mux.Handle("POST /api/workers", can(models.ActionManageWorkers, workers.Create))
	mux.Handle("PUT /api/workers/{id}", can(models.ActionManageWorkers, workers.Update))
	mux.Handle("DELETE /api/workers/{id}", can(models.ActionManageWorkers, workers.Delete))

	mux.Handle("/api/dashboard", can(models.ActionViewDashboard, views.Dashboard))
	mux.Handle("/api/analytics/inactive", can(models.ActionViewDashboard, views.Inactive))
	mux.Handle("/api/analytics/top-performers", can(models.ActionViewDashboard, views.TopPerformers))

	mux.Handle("/api/reports/dashboard.xlsx", can(models.ActionExportReports, reports.Export))
	mux.Handle("/api/reports/archive", can(models.ActionExportReports, reports.Archive))

	if d.Hub != nil {
		mux.Handle(LivePrefix+"/", d.Hub.Handler(LivePrefix, authMW))
	}

	return middleware.Chain(middleware.Route(mux),
		middleware.Logging(d.Metrics),
		authMW.Authenticate,
	)
}
