package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/detailing-desk/internal/models"
)

func newSQLiteStore(t *testing.T) *GormStore {
	t.Helper()
	store, err := NewGormStore(DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func TestNewGormStore_UnknownDriver(t *testing.T) {
	_, err := NewGormStore("oracle", "")
	assert.Error(t, err)
}

func TestGormStore_Appointments(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	id, err := store.Appointments().InsertAppointment(ctx, models.Appointment{
		Name:        "Jane Doe",
		PhoneNumber: "5551234567",
		Service:     models.ServicePremium,
		CarDetails:  "Honda Civic",
		Timestamp:   models.Timestamp{Seconds: 1700000000, Nanoseconds: 42},
	})
	require.NoError(t, err)

	found, err := store.Appointments().FindAppointmentByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, found.Status)
	assert.Nil(t, found.Cost)
	assert.Nil(t, found.Workers)
	assert.Nil(t, found.Payments)
	assert.Equal(t, models.Timestamp{Seconds: 1700000000, Nanoseconds: 42}, found.Timestamp)

	require.NoError(t, store.Appointments().UpdateAppointment(ctx, id, models.AppointmentUpdate{
		Cost:       250,
		Workers:    []string{"w1", "w2"},
		Status:     models.StatusInProgress,
		Payments:   map[string]float64{"w1": 50, "w2": 50},
		CarDetails: "Honda Civic 2019",
	}))

	all, err := store.Appointments().FindAppointments(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 250.0, all[0].CostOrZero())
	assert.Equal(t, []string{"w1", "w2"}, all[0].Workers)
	assert.Equal(t, map[string]float64{"w1": 50, "w2": 50}, all[0].Payments)
	assert.Equal(t, "Honda Civic 2019", all[0].CarDetails)

	_, err = store.Appointments().FindAppointmentByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Appointments().UpdateAppointment(ctx, "missing", models.AppointmentUpdate{}), ErrNotFound)
}

func TestGormStore_Workers(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	id, err := store.Workers().InsertWorker(ctx, models.Worker{Name: "Ann", CurrentStatus: models.WorkerAvailable})
	require.NoError(t, err)

	w, err := store.Workers().FindWorkerByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{}, w.AssignedJobs)

	require.NoError(t, store.Workers().UpdateAssignment(ctx, id, models.Assignment{
		AssignedJobs:  []string{"a1", "a2"},
		CurrentStatus: models.WorkerWorking,
	}))
	require.NoError(t, store.Workers().UpdateWorker(ctx, id, models.WorkerInput{
		Name:          "Ann B",
		Email:         "ann@example.com",
		CurrentStatus: models.WorkerOnBreak,
	}))

	w, err = store.Workers().FindWorkerByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ann B", w.Name)
	assert.Equal(t, "ann@example.com", w.Email)
	assert.Equal(t, models.WorkerOnBreak, w.CurrentStatus)
	assert.Equal(t, []string{"a1", "a2"}, w.AssignedJobs)

	require.NoError(t, store.Workers().DeleteWorker(ctx, id))
	assert.ErrorIs(t, store.Workers().DeleteWorker(ctx, id), ErrNotFound)
	workers, err := store.Workers().FindWorkers(ctx)
	require.NoError(t, err)
	assert.Empty(t, workers)
}

func TestGormStore_TransactionRollsBack(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	id, err := store.Workers().InsertWorker(ctx, models.Worker{Name: "Ann", CurrentStatus: models.WorkerAvailable})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.WithTransaction(ctx, func(ctx context.Context) error {
		if err := store.Workers().UpdateAssignment(ctx, id, models.Assignment{
			AssignedJobs:  []string{"a1"},
			CurrentStatus: models.WorkerWorking,
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	w, err := store.Workers().FindWorkerByID(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, w.AssignedJobs)
	assert.Equal(t, models.WorkerAvailable, w.CurrentStatus)
	assert.False(t, store.Parallel())
}

func TestGormStore_Users(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Users().InsertUser(ctx, models.User{
		Email:        "Admin@Example.com",
		PasswordHash: "hash",
		Role:         models.RoleAdmin,
	}))

	u, err := store.Users().FindUserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Nil(t, u.LastLogin)

	require.NoError(t, store.Users().UpdateLastLogin(ctx, u.ID))
	u, err = store.Users().FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, u.LastLogin)

	_, err = store.Users().FindUserByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
