package analytics

import (
	"sort"
	"time"

	"github.com/ukydev/detailing-desk/internal/models"
)

// InactivityDays is how long a customer may go without a visit before being listed.
const InactivityDays = 14

// InactiveCustomers groups appointments by phone number and returns the groups
// whose most recent visit is strictly older than now minus InactivityDays,
// longest-inactive first. Ties keep first-seen order.
func InactiveCustomers(appointments []models.Appointment, now time.Time) []models.InactiveCustomer {
	if len(appointments) == 0 {
		return []models.InactiveCustomer{}
	}

	type group struct {
		latest models.Appointment
		visits int
	}

	order := make([]string, 0)
	groups := make(map[string]*group)
	for _, a := range appointments {
		g, ok := groups[a.PhoneNumber]
		if !ok {
			groups[a.PhoneNumber] = &group{latest: a, visits: 1}
			order = append(order, a.PhoneNumber)
			continue
		}
		g.visits++
		if g.latest.Timestamp.Before(a.Timestamp) {
			g.latest = a
		}
	}

	cutoff := now.AddDate(0, 0, -InactivityDays)
	inactive := make([]models.InactiveCustomer, 0)
	for _, phone := range order {
		g := groups[phone]
		lastVisit := g.latest.Timestamp.Time()
		if !lastVisit.Before(cutoff) {
			continue
		}
		inactive = append(inactive, models.InactiveCustomer{
			Name:           g.latest.Name,
			Phone:          phone,
			LastVisit:      lastVisit,
			TotalVisits:    g.visits,
			DaysSinceVisit: int(now.Sub(lastVisit).Hours() / 24),
		})
	}

	sort.SliceStable(inactive, func(i, j int) bool {
		return inactive[i].LastVisit.Before(inactive[j].LastVisit)
	})
	return inactive
}
