package analytics

import (
	"sort"
	"strings"

	"github.com/ukydev/detailing-desk/internal/models"
)

func containsFold(s, term string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(term))
}

// FilterByCustomerName keeps appointments whose customer name contains term, ignoring case.
func FilterByCustomerName(appointments []models.Appointment, term string) []models.Appointment {
	out := make([]models.Appointment, 0, len(appointments))
	for _, a := range appointments {
		if containsFold(a.Name, term) {
			out = append(out, a)
		}
	}
	return out
}

// SearchAppointments matches term against every text field of an appointment,
// as the staff appointment table does.
func SearchAppointments(appointments []models.Appointment, term string) []models.Appointment {
	out := make([]models.Appointment, 0, len(appointments))
	for _, a := range appointments {
		fields := []string{a.ID, a.Name, a.PhoneNumber, string(a.Service), a.CarDetails, string(a.Status)}
		for _, f := range fields {
			if containsFold(f, term) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// FilterInactiveByName keeps inactive customers whose name contains term.
func FilterInactiveByName(customers []models.InactiveCustomer, term string) []models.InactiveCustomer {
	if term == "" {
		return customers
	}
	out := make([]models.InactiveCustomer, 0, len(customers))
	for _, c := range customers {
		if containsFold(c.Name, term) {
			out = append(out, c)
		}
	}
	return out
}

// FilterWorkersByName keeps workers whose name contains term.
func FilterWorkersByName(workers []models.Worker, term string) []models.Worker {
	out := make([]models.Worker, 0, len(workers))
	for _, w := range workers {
		if containsFold(w.Name, term) {
			out = append(out, w)
		}
	}
	return out
}

// NewestFirst returns a copy of appointments ordered by descending timestamp.
func NewestFirst(appointments []models.Appointment) []models.Appointment {
	out := make([]models.Appointment, len(appointments))
	copy(out, appointments)
	sort.SliceStable(out, func(i, j int) bool {
		return out[j].Timestamp.Before(out[i].Timestamp)
	})
	return out
}

// Paginate returns the zero-based page of items; out-of-range pages are empty.
func Paginate[T any](items []T, page, rowsPerPage int) []T {
	if rowsPerPage <= 0 || page < 0 {
		return items
	}
	start := page * rowsPerPage
	if start >= len(items) {
		return []T{}
	}
	end := start + rowsPerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
