package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/detailing-desk/internal/auth"
	"github.com/ukydev/detailing-desk/internal/config"
	"github.com/ukydev/detailing-desk/internal/db"
	"github.com/ukydev/detailing-desk/internal/handlers"
	"github.com/ukydev/detailing-desk/internal/live"
	"github.com/ukydev/detailing-desk/internal/metrics"
	"github.com/ukydev/detailing-desk/internal/report"
	"github.com/ukydev/detailing-desk/internal/session"
	"github.com/ukydev/detailing-desk/internal/telemetry"
	"github.com/ukydev/detailing-desk/internal/workflow"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "detailing-desk"

func main() {
	cfg := config.Load()
	cfg.ConfigureLogging()

	if err := run(cfg); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := telemetry.Setup(serviceName)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.WithError(err).Warn("Failed to flush traces")
		}
	}()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.WithError(err).Warn("Failed to close store")
		}
	}()

	authService, err := auth.NewService(auth.Config{Secret: cfg.JWTSecret, Expiry: cfg.JWTExpiry})
	if err != nil {
		return fmt.Errorf("auth service: %w", err)
	}
	if err := authService.EnsureAdmin(ctx, store.Users(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return err
	}

	bus, closeBus, err := openBus(cfg)
	if err != nil {
		return err
	}
	defer closeBus()

	m := metrics.New()
	hub := live.NewHub(m)
	sess := session.New(
		session.WithLocation(cfg.Location),
		session.WithBroadcaster(hub),
		session.WithMetrics(m),
		session.WithRecomputeInterval(cfg.RecomputeInterval),
	)
	go func() {
		poller := live.NewPoller(store, bus, cfg.PollInterval)
		if err := sess.Run(ctx, poller); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("Snapshot subscription ended")
		}
	}()

	deps := handlers.Deps{
		Auth:              authService,
		Store:             store,
		Workflow:          workflow.NewService(store, workflow.WithPublisher(bus)),
		Snapshots:         sess,
		Hub:               hub,
		Metrics:           m,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
	}
	if cfg.ReportBucket != "" {
		archiver, err := report.NewArchiver(ctx, archiveConfig(cfg))
		if err != nil {
			return fmt.Errorf("report archive: %w", err)
		}
		deps.Archiver = archiver
	}

	// No write timeout: the live stream holds responses open.
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(handlers.NewRouter(deps), serviceName),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"addr":   server.Addr,
			"driver": cfg.StoreDriver,
		}).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openStore connects the backend named by STORE_DRIVER.
func archiveConfig(cfg config.Config) report.ArchiveConfig {
	return report.ArchiveConfig{
		Bucket:          cfg.ReportBucket,
		Region:          cfg.ReportRegion,
		Endpoint:        cfg.ReportEndpoint,
		PathStyle:       cfg.ReportPathStyle,
		AccessKeyID:     cfg.ReportAccessKeyID,
		SecretAccessKey: cfg.ReportSecretAccessKey,
	}
}

func openStore(ctx context.Context, cfg config.Config) (db.Store, error) {
	switch cfg.StoreDriver {
	case "", "mongo", "mongodb":
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := db.ConnectMongo(connectCtx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		return db.NewMongoStore(client, cfg.MongoDB, cfg.MongoTransactions), nil
	case db.DriverSQLite:
		return db.NewGormStore(db.DriverSQLite, cfg.SQLitePath)
	case db.DriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, errors.New("POSTGRES_DSN is required for the postgres driver")
		}
		return db.NewGormStore(db.DriverPostgres, cfg.PostgresDSN)
	case db.DriverMemory:
		log.Warn("Using the in-memory store; data is lost on restart")
		return db.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}
}

// openBus returns the MQTT bus when a broker is configured, otherwise a
// process-local one.
func openBus(cfg config.Config) (live.Bus, func(), error) {
	if cfg.MQTTBroker == "" {
		return live.NewLocalBus(), func() {}, nil
	}
	bus, err := live.NewMQTTBus(live.MQTTConfig{
		Broker:      cfg.MQTTBroker,
		ClientID:    cfg.MQTTClientID,
		TopicPrefix: cfg.MQTTTopicPrefix,
	})
	if err != nil {
		return nil, nil, err
	}
	log.WithField("broker", cfg.MQTTBroker).Info("Change notifications use MQTT")
	return bus, bus.Close, nil
}
