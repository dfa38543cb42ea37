package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/detailing-desk/internal/db"
	"github.com/ukydev/detailing-desk/internal/live"
	"github.com/ukydev/detailing-desk/internal/models"
)

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (b *recordingBroadcaster) Publish(eventType string, _ any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, eventType)
	return nil
}

func (b *recordingBroadcaster) seen() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.events...)
}

func price(v float64) *float64 { return &v }

func sampleAppointments() []models.Appointment {
	return []models.Appointment{
		{ID: "a1", Name: "Jane", PhoneNumber: "1", Service: models.ServicePremium, Status: models.StatusCompleted,
			Timestamp: models.NewTimestamp(now.AddDate(0, 0, -2)), Cost: price(250), Workers: []string{"w1"},
			Payments: map[string]float64{"w1": 100}},
		{ID: "a2", Name: "Bob", PhoneNumber: "2", Service: models.ServiceBasic, Status: models.StatusPending,
			Timestamp: models.NewTimestamp(now.AddDate(0, 0, -30))},
	}
}

func TestSession_NotReadyUntilBothLoaded(t *testing.T) {
	s := New(WithClock(func() time.Time { return now }))

	_, err := s.Dashboard()
	assert.ErrorIs(t, err, ErrNotReady)

	s.Apply(live.Update{Collection: db.CollectionAppointments, Appointments: sampleAppointments()})
	assert.False(t, s.Ready())
	_, _, err = s.Snapshot()
	assert.ErrorIs(t, err, ErrNotReady)

	s.Apply(live.Update{Collection: db.CollectionWorkers, Workers: []models.Worker{{ID: "w1", Name: "Al"}}})
	assert.True(t, s.Ready())

	d, err := s.Dashboard()
	require.NoError(t, err)
	assert.Equal(t, 2, d.Totals.TotalCustomers)
	assert.Equal(t, 250.0, d.Totals.TotalSales)
	assert.Equal(t, 1, d.Totals.CompletedCount)
	require.Len(t, d.InactiveCustomers, 1)
	assert.Equal(t, "Bob", d.InactiveCustomers[0].Name)
	require.Len(t, d.TopWeek, 1)
	assert.Equal(t, "Al", d.TopWeek[0].Name)
	assert.Equal(t, now, d.ComputedAt)
}

func TestSession_RecomputesOnWorkerChange(t *testing.T) {
	s := New(WithClock(func() time.Time { return now }))
	s.Apply(live.Update{Collection: db.CollectionAppointments, Appointments: sampleAppointments()})
	s.Apply(live.Update{Collection: db.CollectionWorkers, Workers: []models.Worker{{ID: "w1", Name: "Al"}}})
	s.Apply(live.Update{Collection: db.CollectionWorkers, Workers: []models.Worker{}})

	d, err := s.Dashboard()
	require.NoError(t, err)
	require.Len(t, d.TopWeek, 1)
	assert.Equal(t, models.UnknownPerformer, d.TopWeek[0].Name)
	assert.Empty(t, d.Roster)
}

func TestSession_ErrorState(t *testing.T) {
	b := &recordingBroadcaster{}
	s := New(WithClock(func() time.Time { return now }), WithBroadcaster(b))
	s.Apply(live.Update{Collection: db.CollectionAppointments, Appointments: sampleAppointments()})
	s.Apply(live.Update{Collection: db.CollectionWorkers, Workers: nil})

	s.Apply(live.Update{Collection: db.CollectionWorkers, Err: errors.New("permission denied")})
	_, err := s.Dashboard()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.Error(t, s.Err())

	s.Apply(live.Update{Collection: db.CollectionWorkers, Workers: []models.Worker{{ID: "w1", Name: "Al"}}})
	_, err = s.Dashboard()
	assert.NoError(t, err)
	assert.NoError(t, s.Err())

	assert.Equal(t, []string{EventDashboard, EventError, EventDashboard}, b.seen())
}

type staticSubscriber struct {
	updates map[string][]live.Update
}

func (s staticSubscriber) Subscribe(_ context.Context, collection string) <-chan live.Update {
	ch := make(chan live.Update, len(s.updates[collection]))
	for _, u := range s.updates[collection] {
		ch <- u
	}
	close(ch)
	return ch
}

func TestSession_Run(t *testing.T) {
	s := New(WithClock(func() time.Time { return now }))
	sub := staticSubscriber{updates: map[string][]live.Update{
		db.CollectionAppointments: {{Collection: db.CollectionAppointments, Appointments: sampleAppointments()}},
		db.CollectionWorkers:      {{Collection: db.CollectionWorkers, Workers: []models.Worker{{ID: "w1", Name: "Al"}}}},
	}}

	require.NoError(t, s.Run(context.Background(), sub))
	apps, workers, err := s.Snapshot()
	require.NoError(t, err)
	assert.Len(t, apps, 2)
	assert.Len(t, workers, 1)
}

func TestSession_RunWithPoller(t *testing.T) {
	store := db.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := store.Workers().InsertWorker(ctx, models.Worker{Name: "Al"})
	require.NoError(t, err)

	s := New()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, live.NewPoller(store, live.NewLocalBus(), time.Hour)) }()

	require.Eventually(t, s.Ready, 2*time.Second, 10*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

type movingClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *movingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *movingClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestSession_RecomputeFollowsClock(t *testing.T) {
	clock := &movingClock{t: now}
	b := &recordingBroadcaster{}
	s := New(WithClock(clock.Now), WithBroadcaster(b))

	s.Recompute()
	assert.Empty(t, b.seen())

	s.Apply(live.Update{Collection: db.CollectionAppointments, Appointments: sampleAppointments()})
	s.Apply(live.Update{Collection: db.CollectionWorkers, Workers: []models.Worker{{ID: "w1", Name: "Al"}}})
	d, err := s.Dashboard()
	require.NoError(t, err)
	require.Len(t, d.InactiveCustomers, 1)
	require.Len(t, d.TopWeek, 1)

	// No writes for two weeks: Jane drops out of the weekly window and
	// becomes inactive.
	clock.Advance(14 * 24 * time.Hour)
	s.Recompute()

	d, err = s.Dashboard()
	require.NoError(t, err)
	require.Len(t, d.InactiveCustomers, 2)
	assert.Equal(t, "Bob", d.InactiveCustomers[0].Name)
	assert.Equal(t, "Jane", d.InactiveCustomers[1].Name)
	assert.Empty(t, d.TopWeek)
	assert.Equal(t, now.Add(14*24*time.Hour), d.ComputedAt)
	assert.Equal(t, []string{EventDashboard, EventDashboard}, b.seen())
}

type openSubscriber struct {
	staticSubscriber
}

func (s openSubscriber) Subscribe(ctx context.Context, collection string) <-chan live.Update {
	ch := make(chan live.Update, len(s.updates[collection]))
	for _, u := range s.updates[collection] {
		ch <- u
	}
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}

func TestSession_RunRecomputesOnTick(t *testing.T) {
	clock := &movingClock{t: now}
	s := New(WithClock(clock.Now), WithRecomputeInterval(10*time.Millisecond))
	sub := openSubscriber{staticSubscriber{updates: map[string][]live.Update{
		db.CollectionAppointments: {{Collection: db.CollectionAppointments, Appointments: sampleAppointments()}},
		db.CollectionWorkers:      {{Collection: db.CollectionWorkers, Workers: []models.Worker{{ID: "w1", Name: "Al"}}}},
	}}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, sub) }()

	require.Eventually(t, s.Ready, 2*time.Second, 5*time.Millisecond)
	clock.Advance(14 * 24 * time.Hour)

	require.Eventually(t, func() bool {
		d, err := s.Dashboard()
		return err == nil && len(d.InactiveCustomers) == 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
