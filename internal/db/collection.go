package db

import (
	"context"
	"errors"

	"github.com/ukydev/detailing-desk/internal/models"
)

// Collection names are part of the storage contract.
const (
	CollectionAppointments = "customerEntries"
	CollectionWorkers      = "workers"
	CollectionUsers        = "users"
)

// ErrNotFound is returned when a document id does not exist.
var ErrNotFound = errors.New("document not found")

// AppointmentCollection defines the interface for appointment data operations.
type AppointmentCollection interface {
	InsertAppointment(ctx context.Context, appointment models.Appointment) (string, error)
	FindAppointments(ctx context.Context) ([]models.Appointment, error)
	FindAppointmentByID(ctx context.Context, id string) (*models.Appointment, error)
	UpdateAppointment(ctx context.Context, id string, update models.AppointmentUpdate) error
}

// WorkerCollection defines the interface for worker data operations.
type WorkerCollection interface {
	InsertWorker(ctx context.Context, worker models.Worker) (string, error)
	FindWorkers(ctx context.Context) ([]models.Worker, error)
	FindWorkerByID(ctx context.Context, id string) (*models.Worker, error)
	UpdateWorker(ctx context.Context, id string, input models.WorkerInput) error
	UpdateAssignment(ctx context.Context, id string, assignment models.Assignment) error
	DeleteWorker(ctx context.Context, id string) error
}

// UserCollection defines the interface for staff account operations
type UserCollection interface {
	InsertUser(ctx context.Context, user models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
}

// Transactor runs a group of writes as one unit. Collections called with the
// context handed to fn take part in the transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// Parallel reports whether writes inside fn may be issued concurrently.
	Parallel() bool
}

// Store bundles the collections of one backend.
type Store interface {
	Transactor
	Appointments() AppointmentCollection
	Workers() WorkerCollection
	Users() UserCollection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
