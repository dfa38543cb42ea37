package models

// WorkerStatus is a staff member's current availability.
type WorkerStatus string

const (
	WorkerAvailable WorkerStatus = "available"
	WorkerWorking   WorkerStatus = "working"
	WorkerOnBreak   WorkerStatus = "on-break"
)

// Worker is a staff member (collection "workers").
type Worker struct {
	ID            string       `bson:"_id" json:"id"`
	Name          string       `bson:"name" json:"name"`
	Email         string       `bson:"email,omitempty" json:"email,omitempty"`
	Phone         string       `bson:"phone,omitempty" json:"phone,omitempty"`
	CurrentStatus WorkerStatus `bson:"currentStatus" json:"currentStatus"`
	AssignedJobs  []string     `bson:"assignedJobs" json:"assignedJobs"`
}

// HasJob reports whether the appointment id is in the worker's assigned jobs.
func (w Worker) HasJob(appointmentID string) bool {
	for _, id := range w.AssignedJobs {
		if id == appointmentID {
			return true
		}
	}
	return false
}

// WorkerInput is the editable part of a worker record.
type WorkerInput struct {
	Name          string       `json:"name"`
	Email         string       `json:"email,omitempty"`
	Phone         string       `json:"phone,omitempty"`
	CurrentStatus WorkerStatus `json:"currentStatus,omitempty"`
}

// Assignment is the pair of fields the edit workflow writes on a worker.
type Assignment struct {
	AssignedJobs  []string     `bson:"assignedJobs" json:"assignedJobs"`
	CurrentStatus WorkerStatus `bson:"currentStatus" json:"currentStatus"`
}

// StatusForJobs derives the automatic status from an assignment count.
// on-break is never produced here; only a user sets it.
func StatusForJobs(jobs []string) WorkerStatus {
	if len(jobs) > 0 {
		return WorkerWorking
	}
	return WorkerAvailable
}

// IsValidWorkerStatus checks if a worker status is valid
func IsValidWorkerStatus(s WorkerStatus) bool {
	switch s {
	case WorkerAvailable, WorkerWorking, WorkerOnBreak:
		return true
	default:
		return false
	}
}
