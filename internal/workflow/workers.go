package workflow

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/detailing-desk/internal/db"
	"github.com/ukydev/detailing-desk/internal/models"
)

func normalizeWorkerInput(in models.WorkerInput) (models.WorkerInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Name == "" {
		return in, invalid("Worker name is required")
	}
	if in.Email != "" && !models.IsValidEmail(in.Email) {
		return in, invalid("Invalid email format")
	}
	return in, nil
}

// CreateWorker adds a worker who starts available with no jobs.
func (s *Service) CreateWorker(ctx context.Context, in models.WorkerInput) (*models.Worker, error) {
	in, err := normalizeWorkerInput(in)
	if err != nil {
		return nil, err
	}

	worker := models.Worker{
		Name:          in.Name,
		Email:         in.Email,
		Phone:         in.Phone,
		CurrentStatus: models.WorkerAvailable,
		AssignedJobs:  []string{},
	}
	id, err := s.store.Workers().InsertWorker(ctx, worker)
	if err != nil {
		return nil, fmt.Errorf("insert worker: %w", err)
	}
	worker.ID = id

	log.WithField("worker_id", id).Info("Worker created")
	s.publish(db.CollectionWorkers)
	return &worker, nil
}

// UpdateWorker replaces a worker's name, contact fields and status. The status
// may be any of the three states; assigned jobs are left as they are.
func (s *Service) UpdateWorker(ctx context.Context, id string, in models.WorkerInput) error {
	in, err := normalizeWorkerInput(in)
	if err != nil {
		return err
	}
	if !models.IsValidWorkerStatus(in.CurrentStatus) {
		return invalid("Invalid worker status")
	}

	if err := s.store.Workers().UpdateWorker(ctx, id, in); err != nil {
		return fmt.Errorf("update worker %s: %w", id, err)
	}

	log.WithFields(log.Fields{"worker_id": id, "status": in.CurrentStatus}).Info("Worker updated")
	s.publish(db.CollectionWorkers)
	return nil
}

// DeleteWorker removes a worker that has no assigned jobs. Appointments that
// still list the worker keep the id.
func (s *Service) DeleteWorker(ctx context.Context, id string) error {
	worker, err := s.store.Workers().FindWorkerByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load worker %s: %w", id, err)
	}
	if len(worker.AssignedJobs) > 0 {
		return invalid("Cannot delete worker with assigned jobs")
	}

	if err := s.store.Workers().DeleteWorker(ctx, id); err != nil {
		return fmt.Errorf("delete worker %s: %w", id, err)
	}

	log.WithField("worker_id", id).Info("Worker deleted")
	s.publish(db.CollectionWorkers)
	return nil
}
