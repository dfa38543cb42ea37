package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ukydev/detailing-desk/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type appointmentRow struct {
	ID          string `gorm:"primaryKey;type:varchar(64)"`
	Name        string `gorm:"not null"`
	PhoneNumber string `gorm:"index;not null"`
	Service     string `gorm:"type:varchar(32);not null"`
	CarDetails  string `gorm:"type:text"`
	Seconds     int64  `gorm:"index;not null"`
	Nanoseconds int32
	Cost        *float64
	Workers     datatypes.JSONSlice[string]
	Status      string `gorm:"type:varchar(16);not null;default:pending"`
	Payments    datatypes.JSONType[map[string]float64]
	NoShow      bool
}

func (appointmentRow) TableName() string { return "customer_entries" }

func toAppointmentRow(a models.Appointment) appointmentRow {
	return appointmentRow{
		ID:          a.ID,
		Name:        a.Name,
		PhoneNumber: a.PhoneNumber,
		Service:     string(a.Service),
		CarDetails:  a.CarDetails,
		Seconds:     a.Timestamp.Seconds,
		Nanoseconds: a.Timestamp.Nanoseconds,
		Cost:        a.Cost,
		Workers:     datatypes.NewJSONSlice(a.Workers),
		Status:      string(a.EffectiveStatus()),
		Payments:    datatypes.NewJSONType(a.Payments),
		NoShow:      a.NoShow,
	}
}

func (r appointmentRow) model() models.Appointment {
	a := models.Appointment{
		ID:          r.ID,
		Name:        r.Name,
		PhoneNumber: r.PhoneNumber,
		Service:     models.Service(r.Service),
		CarDetails:  r.CarDetails,
		Timestamp:   models.Timestamp{Seconds: r.Seconds, Nanoseconds: r.Nanoseconds},
		Cost:        r.Cost,
		Status:      models.AppointmentStatus(r.Status),
		Payments:    r.Payments.Data(),
		NoShow:      r.NoShow,
	}
	if len(r.Workers) > 0 {
		a.Workers = []string(r.Workers)
	}
	if len(a.Payments) == 0 {
		a.Payments = nil
	}
	return a
}

type workerRow struct {
	ID            string `gorm:"primaryKey;type:varchar(64)"`
	Name          string `gorm:"not null"`
	Email         string
	Phone         string
	CurrentStatus string `gorm:"type:varchar(16);not null;default:available"`
	AssignedJobs  datatypes.JSONSlice[string]
}

func (workerRow) TableName() string { return "workers" }

func (r workerRow) model() models.Worker {
	jobs := []string(r.AssignedJobs)
	if jobs == nil {
		jobs = []string{}
	}
	return models.Worker{
		ID:            r.ID,
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		CurrentStatus: models.WorkerStatus(r.CurrentStatus),
		AssignedJobs:  jobs,
	}
}

type userRow struct {
	ID           string `gorm:"primaryKey;type:varchar(64)"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	DisplayName  string
	Role         string `gorm:"type:varchar(16)"`
	Disabled     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

func (r userRow) model() models.User {
	return models.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		DisplayName:  r.DisplayName,
		Role:         models.Role(r.Role),
		Disabled:     r.Disabled,
		LastLogin:    r.LastLogin,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func rowsAffected(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type gormAppointmentCollection struct {
	store *GormStore
}

func (c *gormAppointmentCollection) InsertAppointment(ctx context.Context, appointment models.Appointment) (string, error) {
	if appointment.ID == "" {
		appointment.ID = uuid.NewString()
	}
	row := toAppointmentRow(appointment)
	if err := c.store.conn(ctx).Create(&row).Error; err != nil {
		return "", err
	}
	return row.ID, nil
}

func (c *gormAppointmentCollection) FindAppointments(ctx context.Context) ([]models.Appointment, error) {
	var rows []appointmentRow
	if err := c.store.conn(ctx).Order("seconds, nanoseconds").Find(&rows).Error; err != nil {
		return nil, err
	}
	appointments := make([]models.Appointment, 0, len(rows))
	for _, r := range rows {
		appointments = append(appointments, r.model())
	}
	return appointments, nil
}

func (c *gormAppointmentCollection) FindAppointmentByID(ctx context.Context, id string) (*models.Appointment, error) {
	var row appointmentRow
	if err := c.store.conn(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	a := row.model()
	return &a, nil
}

func (c *gormAppointmentCollection) UpdateAppointment(ctx context.Context, id string, update models.AppointmentUpdate) error {
	result := c.store.conn(ctx).Model(&appointmentRow{}).Where("id = ?", id).Updates(map[string]interface{}{
		"cost":        update.Cost,
		"workers":     datatypes.NewJSONSlice(update.Workers),
		"status":      string(update.Status),
		"payments":    datatypes.NewJSONType(update.Payments),
		"car_details": update.CarDetails,
	})
	return rowsAffected(result)
}

type gormWorkerCollection struct {
	store *GormStore
}

func (c *gormWorkerCollection) InsertWorker(ctx context.Context, worker models.Worker) (string, error) {
	if worker.ID == "" {
		worker.ID = uuid.NewString()
	}
	row := workerRow{
		ID:            worker.ID,
		Name:          worker.Name,
		Email:         worker.Email,
		Phone:         worker.Phone,
		CurrentStatus: string(worker.CurrentStatus),
		AssignedJobs:  datatypes.NewJSONSlice(worker.AssignedJobs),
	}
	if err := c.store.conn(ctx).Create(&row).Error; err != nil {
		return "", err
	}
	return row.ID, nil
}

func (c *gormWorkerCollection) FindWorkers(ctx context.Context) ([]models.Worker, error) {
	var rows []workerRow
	if err := c.store.conn(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	workers := make([]models.Worker, 0, len(rows))
	for _, r := range rows {
		workers = append(workers, r.model())
	}
	return workers, nil
}

func (c *gormWorkerCollection) FindWorkerByID(ctx context.Context, id string) (*models.Worker, error) {
	var row workerRow
	if err := c.store.conn(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	w := row.model()
	return &w, nil
}

func (c *gormWorkerCollection) UpdateWorker(ctx context.Context, id string, input models.WorkerInput) error {
	result := c.store.conn(ctx).Model(&workerRow{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":           input.Name,
		"email":          input.Email,
		"phone":          input.Phone,
		"current_status": string(input.CurrentStatus),
	})
	return rowsAffected(result)
}

func (c *gormWorkerCollection) UpdateAssignment(ctx context.Context, id string, assignment models.Assignment) error {
	jobs := assignment.AssignedJobs
	if jobs == nil {
		jobs = []string{}
	}
	result := c.store.conn(ctx).Model(&workerRow{}).Where("id = ?", id).Updates(map[string]interface{}{
		"assigned_jobs":  datatypes.NewJSONSlice(jobs),
		"current_status": string(assignment.CurrentStatus),
	})
	return rowsAffected(result)
}

func (c *gormWorkerCollection) DeleteWorker(ctx context.Context, id string) error {
	return rowsAffected(c.store.conn(ctx).Where("id = ?", id).Delete(&workerRow{}))
}

type gormUserCollection struct {
	store *GormStore
}

func (c *gormUserCollection) InsertUser(ctx context.Context, user models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	row := userRow{
		ID:           user.ID,
		Email:        strings.ToLower(user.Email),
		PasswordHash: user.PasswordHash,
		DisplayName:  user.DisplayName,
		Role:         string(user.Role),
		Disabled:     user.Disabled,
	}
	return c.store.conn(ctx).Create(&row).Error
}

func (c *gormUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var row userRow
	if err := c.store.conn(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	u := row.model()
	return &u, nil
}

func (c *gormUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var row userRow
	if err := c.store.conn(ctx).Where("email = ?", strings.ToLower(email)).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	u := row.model()
	return &u, nil
}

func (c *gormUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	now := time.Now().UTC()
	return c.store.conn(ctx).Model(&userRow{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_login": now,
		"updated_at": now,
	}).Error
}
