package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/detailing-desk/internal/db"
	"github.com/ukydev/detailing-desk/internal/models"
	"golang.org/x/sync/errgroup"
)

// SubmitRequest appends a new pending appointment from the public form.
func (s *Service) SubmitRequest(ctx context.Context, req models.SubmitRequest) (*models.Appointment, error) {
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.PhoneNumber)
	switch {
	case name == "":
		return nil, invalid("Name is required")
	case phone == "":
		return nil, invalid("Phone number is required")
	case req.Service == "":
		return nil, invalid("Please select a service")
	case !models.IsValidService(req.Service):
		return nil, invalid("Unknown service")
	}

	appointment := models.Appointment{
		Name:        name,
		PhoneNumber: phone,
		Service:     req.Service,
		CarDetails:  strings.TrimSpace(req.CarDetails),
		Timestamp:   models.NewTimestamp(s.now()),
		Status:      models.StatusPending,
	}
	id, err := s.store.Appointments().InsertAppointment(ctx, appointment)
	if err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}
	appointment.ID = id

	log.WithFields(log.Fields{
		"appointment_id": id,
		"service":        req.Service,
	}).Info("Service request submitted")
	s.publish(db.CollectionAppointments)
	return &appointment, nil
}

// EditAppointment prices and assigns an appointment and brings every affected
// worker's assignedJobs and currentStatus in line with it.
//
// Workers in the new assignment gain the job, or lose it once the appointment
// is completed. Workers dropped from the assignment lose the job. A worker's
// status becomes working when it still has jobs and available otherwise.
// All writes share one transaction; worker writes precede the appointment write.
func (s *Service) EditAppointment(ctx context.Context, id string, req models.EditRequest) (*models.Appointment, error) {
	if req.Cost == nil || *req.Cost <= 0 {
		return nil, invalid("Please enter a valid cost")
	}
	assigned := uniqueIDs(req.Workers)
	if len(assigned) == 0 {
		return nil, invalid("Please assign at least one worker")
	}
	status := req.Status
	if status == "" {
		status = models.StatusPending
	}
	if !models.IsValidAppointmentStatus(status) {
		return nil, invalid("Invalid status")
	}

	update := models.AppointmentUpdate{
		Cost:       *req.Cost,
		Workers:    assigned,
		Status:     status,
		Payments:   SplitPayment(*req.Cost, assigned),
		CarDetails: strings.TrimSpace(req.CarDetails),
	}

	var updated models.Appointment
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := s.store.Appointments().FindAppointmentByID(ctx, id)
		if err != nil {
			return fmt.Errorf("load appointment %s: %w", id, err)
		}

		assignments, err := s.planAssignments(ctx, id, current.Workers, assigned, status)
		if err != nil {
			return err
		}
		if err := s.writeAssignments(ctx, assignments); err != nil {
			return err
		}
		if err := s.store.Appointments().UpdateAppointment(ctx, id, update); err != nil {
			return fmt.Errorf("update appointment %s: %w", id, err)
		}

		updated = *current
		cost := update.Cost
		updated.Cost = &cost
		updated.Workers = update.Workers
		updated.Status = update.Status
		updated.Payments = update.Payments
		updated.CarDetails = update.CarDetails
		return nil
	})
	if err != nil {
		if !IsValidation(err) && !errors.Is(err, db.ErrNotFound) {
			log.WithError(err).WithField("appointment_id", id).Error("Failed to save appointment edit")
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"appointment_id": id,
		"status":         status,
		"workers":        len(assigned),
	}).Info("Appointment updated")
	s.publish(db.CollectionWorkers, db.CollectionAppointments)
	return &updated, nil
}

type plannedAssignment struct {
	workerID   string
	assignment models.Assignment
}

// planAssignments reads every affected worker and computes its new
// assignment. No writes happen here.
func (s *Service) planAssignments(ctx context.Context, appointmentID string, previous, assigned []string, status models.AppointmentStatus) ([]plannedAssignment, error) {
	inNew := make(map[string]bool, len(assigned))
	for _, wid := range assigned {
		inNew[wid] = true
	}

	plans := make([]plannedAssignment, 0, len(assigned)+len(previous))
	for _, wid := range assigned {
		worker, err := s.store.Workers().FindWorkerByID(ctx, wid)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, invalid(fmt.Sprintf("Assigned worker %s does not exist", wid))
			}
			return nil, fmt.Errorf("load worker %s: %w", wid, err)
		}
		var jobs []string
		if status == models.StatusCompleted {
			jobs = withoutJob(worker.AssignedJobs, appointmentID)
		} else {
			jobs = withJob(worker.AssignedJobs, appointmentID)
		}
		plans = append(plans, plannedAssignment{
			workerID:   wid,
			assignment: models.Assignment{AssignedJobs: jobs, CurrentStatus: models.StatusForJobs(jobs)},
		})
	}

	for _, wid := range uniqueIDs(previous) {
		if inNew[wid] {
			continue
		}
		worker, err := s.store.Workers().FindWorkerByID(ctx, wid)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("load worker %s: %w", wid, err)
		}
		if !worker.HasJob(appointmentID) {
			continue
		}
		jobs := withoutJob(worker.AssignedJobs, appointmentID)
		plans = append(plans, plannedAssignment{
			workerID:   wid,
			assignment: models.Assignment{AssignedJobs: jobs, CurrentStatus: models.StatusForJobs(jobs)},
		})
	}
	return plans, nil
}

// writeAssignments issues the worker writes, concurrently when the store allows it.
func (s *Service) writeAssignments(ctx context.Context, plans []plannedAssignment) error {
	workers := s.store.Workers()
	if !s.store.Parallel() {
		for _, p := range plans {
			if err := workers.UpdateAssignment(ctx, p.workerID, p.assignment); err != nil {
				return fmt.Errorf("update worker %s: %w", p.workerID, err)
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range plans {
		p := p
		g.Go(func() error {
			if err := workers.UpdateAssignment(gctx, p.workerID, p.assignment); err != nil {
				return fmt.Errorf("update worker %s: %w", p.workerID, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func withJob(jobs []string, id string) []string {
	out := append(make([]string, 0, len(jobs)+1), jobs...)
	for _, j := range jobs {
		if j == id {
			return out
		}
	}
	return append(out, id)
}

func withoutJob(jobs []string, id string) []string {
	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		if j != id {
			out = append(out, j)
		}
	}
	return out
}
