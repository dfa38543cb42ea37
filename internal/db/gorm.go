package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Relational drivers accepted by NewGormStore.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type txKey struct{}

// GormStore implements Store on a relational database. Collections map to
// tables; list-valued fields are stored as JSON columns.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the database for driver ("sqlite" or "postgres") and
// migrates the schema.
func NewGormStore(driver, dsn string) (*GormStore, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = "detailing.db"
		}
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	conn, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("gorm open: %w", err)
	}
	if err := conn.AutoMigrate(&appointmentRow{}, &workerRow{}, &userRow{}); err != nil {
		return nil, fmt.Errorf("gorm migrate: %w", err)
	}
	return &GormStore{db: conn}, nil
}

// conn returns the transaction carried by ctx, or the base handle.
func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return s.db.WithContext(ctx)
}

func (s *GormStore) Appointments() AppointmentCollection {
	return &gormAppointmentCollection{store: s}
}

func (s *GormStore) Workers() WorkerCollection {
	return &gormWorkerCollection{store: s}
}

func (s *GormStore) Users() UserCollection {
	return &gormUserCollection{store: s}
}

// WithTransaction runs fn inside a SQL transaction.
func (s *GormStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Parallel is false: a *gorm.DB transaction is bound to one connection.
func (s *GormStore) Parallel() bool {
	return false
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
