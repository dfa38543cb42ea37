// Package workflow holds the write paths of the dashboard: public request
// submission, the appointment edit transaction and worker lifecycle changes.
// Input is validated before any store interaction.
package workflow

import (
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/detailing-desk/internal/db"
)

// ChangePublisher announces that a collection was written.
type ChangePublisher interface {
	Publish(collection string) error
}

// Service applies mutations to the store.
type Service struct {
	store     db.Store
	publisher ChangePublisher
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for new appointment timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPublisher sets where change notifications go after successful writes.
func WithPublisher(p ChangePublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// NewService creates a workflow service over store.
func NewService(store db.Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) publish(collections ...string) {
	if s.publisher == nil {
		return
	}
	for _, c := range collections {
		if err := s.publisher.Publish(c); err != nil {
			log.WithError(err).WithField("collection", c).Warn("Failed to publish change")
		}
	}
}
