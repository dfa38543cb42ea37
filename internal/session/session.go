// Package session holds the process-wide view of the store: the latest
// appointment and worker snapshots and the dashboard derived from them.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/detailing-desk/internal/analytics"
	"github.com/ukydev/detailing-desk/internal/db"
	"github.com/ukydev/detailing-desk/internal/live"
	"github.com/ukydev/detailing-desk/internal/metrics"
	"github.com/ukydev/detailing-desk/internal/models"
)

// DefaultRecomputeInterval is how often Run rebuilds the dashboard when no
// snapshot arrives, so the inactivity list and top performer windows follow
// the clock.
const DefaultRecomputeInterval = time.Minute

// ErrNotReady is returned until both collections have been loaded once.
var ErrNotReady = errors.New("dashboard data is still loading")

// Broadcaster receives every recomputed dashboard and every error notice.
type Broadcaster interface {
	Publish(eventType string, v any) error
}

// Event types sent to the broadcaster.
const (
	EventDashboard = "dashboard"
	EventError     = "error"
)

// ErrorNotice is the payload of an error event.
type ErrorNotice struct {
	Collection string `json:"collection"`
	Message    string `json:"message"`
}

// Session owns the snapshots. Each applied update replaces one collection
// wholesale and recomputes the dashboard before the lock is released.
type Session struct {
	mu           sync.RWMutex
	appointments []models.Appointment
	workers      []models.Worker
	loaded       map[string]bool
	errs         map[string]error
	dashboard    models.Dashboard

	loc         *time.Location
	now         func() time.Time
	recompute   time.Duration
	broadcaster Broadcaster
	metrics     *metrics.Metrics
}

type Option func(*Session)

func WithLocation(loc *time.Location) Option {
	return func(s *Session) { s.loc = loc }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithBroadcaster(b Broadcaster) Option {
	return func(s *Session) { s.broadcaster = b }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithRecomputeInterval sets the clock-driven rebuild period; zero disables it.
func WithRecomputeInterval(d time.Duration) Option {
	return func(s *Session) { s.recompute = d }
}

func New(opts ...Option) *Session {
	s := &Session{
		loaded:    make(map[string]bool),
		errs:      make(map[string]error),
		loc:       time.UTC,
		now:       time.Now,
		recompute: DefaultRecomputeInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run subscribes to both collections and applies updates until ctx is done
// or both subscriptions end.
func (s *Session) Run(ctx context.Context, sub live.Subscriber) error {
	appointments := sub.Subscribe(ctx, db.CollectionAppointments)
	workers := sub.Subscribe(ctx, db.CollectionWorkers)

	var tick <-chan time.Time
	if s.recompute > 0 {
		ticker := time.NewTicker(s.recompute)
		defer ticker.Stop()
		tick = ticker.C
	}

	for appointments != nil || workers != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			s.Recompute()
		case u, ok := <-appointments:
			if !ok {
				appointments = nil
				continue
			}
			s.Apply(u)
		case u, ok := <-workers:
			if !ok {
				workers = nil
				continue
			}
			s.Apply(u)
		}
	}
	return nil
}

// Apply records one subscription delivery.
func (s *Session) Apply(u live.Update) {
	if u.Err != nil {
		s.fail(u.Collection, u.Err)
		return
	}

	s.mu.Lock()
	switch u.Collection {
	case db.CollectionAppointments:
		s.appointments = u.Appointments
	case db.CollectionWorkers:
		s.workers = u.Workers
	default:
		s.mu.Unlock()
		log.WithField("collection", u.Collection).Warn("Ignoring update for unknown collection")
		return
	}
	s.loaded[u.Collection] = true
	delete(s.errs, u.Collection)

	s.rebuildAndBroadcast()
}

// Recompute rebuilds the dashboard from the current snapshots at the current
// time and broadcasts it. It does nothing until both collections are loaded.
func (s *Session) Recompute() {
	s.mu.Lock()
	s.rebuildAndBroadcast()
}

// rebuildAndBroadcast is called with s.mu held and releases it.
func (s *Session) rebuildAndBroadcast() {
	ready := s.loaded[db.CollectionAppointments] && s.loaded[db.CollectionWorkers]
	if ready {
		start := time.Now()
		s.dashboard = analytics.Build(s.appointments, s.workers, s.now(), s.loc)
		s.metrics.ObserveRecompute(time.Since(start))
	}
	dashboard := s.dashboard
	healthy := len(s.errs) == 0
	s.mu.Unlock()

	if ready && healthy {
		s.broadcast(EventDashboard, dashboard)
	}
}

func (s *Session) fail(collection string, err error) {
	s.mu.Lock()
	s.errs[collection] = err
	s.mu.Unlock()

	s.metrics.SnapshotError(collection)
	log.WithError(err).WithField("collection", collection).Error("Subscription error")
	s.broadcast(EventError, ErrorNotice{Collection: collection, Message: err.Error()})
}

func (s *Session) broadcast(eventType string, v any) {
	if s.broadcaster == nil {
		return
	}
	if err := s.broadcaster.Publish(eventType, v); err != nil {
		log.WithError(err).Warn("Failed to broadcast live update")
	}
}

// Err reports the current subscription error, if any.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errLocked()
}

func (s *Session) errLocked() error {
	for _, c := range []string{db.CollectionAppointments, db.CollectionWorkers} {
		if err := s.errs[c]; err != nil {
			return fmt.Errorf("%s subscription: %w", c, err)
		}
	}
	return nil
}

func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded[db.CollectionAppointments] && s.loaded[db.CollectionWorkers]
}

// Dashboard returns the last computed dashboard, or the error state.
func (s *Session) Dashboard() (models.Dashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.errLocked(); err != nil {
		return models.Dashboard{}, err
	}
	if !s.loaded[db.CollectionAppointments] || !s.loaded[db.CollectionWorkers] {
		return models.Dashboard{}, ErrNotReady
	}
	return s.dashboard, nil
}

// Snapshot returns the current appointments and workers. Callers must not
// modify the returned slices.
func (s *Session) Snapshot() ([]models.Appointment, []models.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.errLocked(); err != nil {
		return nil, nil, err
	}
	if !s.loaded[db.CollectionAppointments] || !s.loaded[db.CollectionWorkers] {
		return nil, nil, ErrNotReady
	}
	return s.appointments, s.workers, nil
}

// Location is the zone sales analytics are bucketed in.
func (s *Session) Location() *time.Location {
	return s.loc
}

// Now is the session clock.
func (s *Session) Now() time.Time {
	return s.now()
}
