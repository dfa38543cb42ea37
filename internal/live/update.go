// Package live keeps in-process snapshots of the store current. A Subscriber
// delivers whole-collection snapshots, a Bus carries change notifications
// between writers and subscribers, and a Hub streams dashboard updates to
// connected browsers over sockjs.
package live

import (
	"context"

	"github.com/ukydev/detailing-desk/internal/models"
)

// Update is one delivery of a subscription: either a full snapshot of the
// collection or the error that prevented reading it.
type Update struct {
	Collection   string
	Appointments []models.Appointment
	Workers      []models.Worker
	Err          error
}

// Subscriber streams snapshots of a collection until ctx is cancelled, then
// closes the channel. The first delivery is the current contents.
type Subscriber interface {
	Subscribe(ctx context.Context, collection string) <-chan Update
}
