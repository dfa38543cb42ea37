package models

import (
	"time"
)

// AppointmentStatus is the lifecycle state of a service request.
type AppointmentStatus string

const (
	StatusPending    AppointmentStatus = "pending"
	StatusInProgress AppointmentStatus = "in-progress"
	StatusCompleted  AppointmentStatus = "completed"
)

// Service is one of the detailing offerings a customer can request.
type Service string

const (
	ServiceBasic       Service = "basic"
	ServicePremium     Service = "premium"
	ServiceInterior    Service = "interior"
	ServiceExterior    Service = "exterior"
	ServiceMaintenance Service = "maintenance"
	ServiceMobile      Service = "mobile"
)

// ServiceLabels maps offering codes to the names shown on the request form.
var ServiceLabels = map[Service]string{
	ServiceBasic:       "Basic Exterior Wash",
	ServicePremium:     "Full Premium Detailing",
	ServiceInterior:    "Interior Detailing",
	ServiceExterior:    "Exterior Polish",
	ServiceMaintenance: "Maintenance Detailing",
	ServiceMobile:      "Mobile Detailing",
}

// Timestamp is the stored creation time, split the way the collection keeps it.
type Timestamp struct {
	Seconds     int64 `bson:"seconds" json:"seconds"`
	Nanoseconds int32 `bson:"nanoseconds" json:"nanoseconds"`
}

// NewTimestamp converts t to the stored representation.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanoseconds: int32(t.Nanosecond())}
}

// Time returns the timestamp as a time.Time in UTC.
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanoseconds)).UTC()
}

// Before reports whether ts is strictly earlier than other.
func (ts Timestamp) Before(other Timestamp) bool {
	if ts.Seconds != other.Seconds {
		return ts.Seconds < other.Seconds
	}
	return ts.Nanoseconds < other.Nanoseconds
}

// Appointment is a customer service request (collection "customerEntries").
type Appointment struct {
	ID          string             `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	PhoneNumber string             `bson:"phoneNumber" json:"phoneNumber"`
	Service     Service            `bson:"service" json:"service"`
	CarDetails  string             `bson:"carDetails,omitempty" json:"carDetails,omitempty"`
	Timestamp   Timestamp          `bson:"timestamp" json:"timestamp"`
	Cost        *float64           `bson:"cost,omitempty" json:"cost,omitempty"`
	Workers     []string           `bson:"workers,omitempty" json:"workers,omitempty"`
	Status      AppointmentStatus  `bson:"status,omitempty" json:"status"`
	Payments    map[string]float64 `bson:"payments,omitempty" json:"payments,omitempty"`
	NoShow      bool               `bson:"noShow,omitempty" json:"noShow,omitempty"`
}

// CostOrZero returns the priced cost, or 0 when the appointment has not been priced.
func (a Appointment) CostOrZero() float64 {
	if a.Cost == nil {
		return 0
	}
	return *a.Cost
}

// EffectiveStatus treats a missing status as pending.
func (a Appointment) EffectiveStatus() AppointmentStatus {
	if a.Status == "" {
		return StatusPending
	}
	return a.Status
}

// AppointmentUpdate is the set of fields the edit workflow replaces on an appointment.
type AppointmentUpdate struct {
	Cost       float64            `bson:"cost" json:"cost"`
	Workers    []string           `bson:"workers" json:"workers"`
	Status     AppointmentStatus  `bson:"status" json:"status"`
	Payments   map[string]float64 `bson:"payments" json:"payments"`
	CarDetails string             `bson:"carDetails" json:"carDetails"`
}

// SubmitRequest is the public request form payload.
type SubmitRequest struct {
	Name        string  `json:"name"`
	PhoneNumber string  `json:"phoneNumber"`
	Service     Service `json:"service"`
	CarDetails  string  `json:"carDetails,omitempty"`
}

// EditRequest is a staff edit of one appointment.
type EditRequest struct {
	Cost       *float64          `json:"cost"`
	CarDetails string            `json:"carDetails"`
	Status     AppointmentStatus `json:"status"`
	Workers    []string          `json:"workers"`
}

// IsValidService checks if a service code is one of the offerings
func IsValidService(s Service) bool {
	_, ok := ServiceLabels[s]
	return ok
}

// IsValidAppointmentStatus checks if a status is valid
func IsValidAppointmentStatus(s AppointmentStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}
