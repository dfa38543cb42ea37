package live

import (
	"context"
	"fmt"
	"reflect"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/detailing-desk/internal/db"
)

// DefaultPollInterval is used when the configured interval is not positive.
const DefaultPollInterval = 5 * time.Second

// Poller implements Subscriber by reading the store on a fixed interval and
// immediately after a change notification on the bus. Unchanged snapshots
// are not re-delivered; errors always are.
type Poller struct {
	store    db.Store
	bus      Bus
	interval time.Duration
	timeout  time.Duration
}

func NewPoller(store db.Store, bus Bus, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{store: store, bus: bus, interval: interval, timeout: 10 * time.Second}
}

func (p *Poller) Subscribe(ctx context.Context, collection string) <-chan Update {
	out := make(chan Update, 1)
	if collection != db.CollectionAppointments && collection != db.CollectionWorkers {
		out <- Update{Collection: collection, Err: fmt.Errorf("unknown collection %q", collection)}
		close(out)
		return out
	}

	kick := make(chan struct{}, 1)
	cancelListen := func() {}
	if p.bus != nil {
		cancelListen = p.bus.Listen(collection, func() {
			select {
			case kick <- struct{}{}:
			default:
			}
		})
	}

	go func() {
		defer close(out)
		defer cancelListen()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		var last Update
		delivered := false
		for {
			u := p.read(ctx, collection)
			if ctx.Err() != nil {
				return
			}
			if u.Err != nil || !delivered || !sameSnapshot(last, u) {
				if u.Err != nil {
					log.WithError(u.Err).WithField("collection", collection).Warn("Snapshot read failed")
				}
				deliver(out, u)
				last, delivered = u, u.Err == nil
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			case <-kick:
			}
		}
	}()
	return out
}

func (p *Poller) read(ctx context.Context, collection string) Update {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	u := Update{Collection: collection}
	switch collection {
	case db.CollectionAppointments:
		u.Appointments, u.Err = p.store.Appointments().FindAppointments(ctx)
	case db.CollectionWorkers:
		u.Workers, u.Err = p.store.Workers().FindWorkers(ctx)
	}
	return u
}

// deliver replaces an undelivered update with u; only the latest snapshot matters.
func deliver(out chan Update, u Update) {
	select {
	case <-out:
	default:
	}
	out <- u
}

func sameSnapshot(a, b Update) bool {
	return reflect.DeepEqual(a.Appointments, b.Appointments) && reflect.DeepEqual(a.Workers, b.Workers)
}
