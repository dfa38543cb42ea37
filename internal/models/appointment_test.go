package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimestamp_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC)
	ts := NewTimestamp(now)

	assert.Equal(t, now.Unix(), ts.Seconds)
	assert.Equal(t, int32(589793000), ts.Nanoseconds)
	assert.True(t, now.Equal(ts.Time()))
}

func TestTimestamp_Before(t *testing.T) {
	a := Timestamp{Seconds: 10, Nanoseconds: 5}
	b := Timestamp{Seconds: 10, Nanoseconds: 6}
	c := Timestamp{Seconds: 11}

	assert.True(t, a.Before(b))
	assert.True(t, b.Before(c))
	assert.False(t, b.Before(a))
	assert.False(t, a.Before(a))
}

func TestAppointment_CostOrZero(t *testing.T) {
	assert.Equal(t, 0.0, Appointment{}.CostOrZero())

	cost := 120.5
	assert.Equal(t, 120.5, Appointment{Cost: &cost}.CostOrZero())
}

func TestAppointment_EffectiveStatus(t *testing.T) {
	assert.Equal(t, StatusPending, Appointment{}.EffectiveStatus())
	assert.Equal(t, StatusCompleted, Appointment{Status: StatusCompleted}.EffectiveStatus())
}

func TestIsValidService(t *testing.T) {
	for _, s := range []Service{ServiceBasic, ServicePremium, ServiceInterior, ServiceExterior, ServiceMaintenance, ServiceMobile} {
		assert.True(t, IsValidService(s), s)
	}
	assert.False(t, IsValidService("ceramic"))
	assert.False(t, IsValidService(""))
}

func TestIsValidAppointmentStatus(t *testing.T) {
	assert.True(t, IsValidAppointmentStatus(StatusPending))
	assert.True(t, IsValidAppointmentStatus(StatusInProgress))
	assert.True(t, IsValidAppointmentStatus(StatusCompleted))
	assert.False(t, IsValidAppointmentStatus("in_progress"))
}

func TestStatusForJobs(t *testing.T) {
	assert.Equal(t, WorkerAvailable, StatusForJobs(nil))
	assert.Equal(t, WorkerAvailable, StatusForJobs([]string{}))
	assert.Equal(t, WorkerWorking, StatusForJobs([]string{"a1"}))
}

func TestWorker_HasJob(t *testing.T) {
	w := Worker{AssignedJobs: []string{"a1", "a2"}}
	assert.True(t, w.HasJob("a2"))
	assert.False(t, w.HasJob("a3"))
}

func TestIsValidWorkerStatus(t *testing.T) {
	assert.True(t, IsValidWorkerStatus(WorkerOnBreak))
	assert.False(t, IsValidWorkerStatus("busy"))
}
