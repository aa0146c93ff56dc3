package models

import "time"

// JobStatus enumerates the lifecycle states of a job. The scheduling engine
// only ever moves jobs between queued, fixed_time and pending_review; the
// remaining states are progressed by field operations and are read-only here.
type JobStatus string

const (
	JobStatusPendingReview JobStatus = "pending_review"
	JobStatusQueued        JobStatus = "queued"
	JobStatusFixedTime     JobStatus = "fixed_time"
	JobStatusEnRoute       JobStatus = "en_route"
	JobStatusInProgress    JobStatus = "in_progress"
	JobStatusCompleted     JobStatus = "completed"
	JobStatusCancelled     JobStatus = "cancelled"
)

// Valid reports whether the status is a known member of the enum.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPendingReview, JobStatusQueued, JobStatusFixedTime,
		JobStatusEnRoute, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled:
		return true
	}
	return false
}

// Locked reports whether the job is in active field execution and therefore
// immutable to the optimizer, its slot carved out as a hard obstacle.
func (s JobStatus) Locked() bool {
	return s == JobStatusEnRoute || s == JobStatusInProgress
}

// Terminal reports whether the engine must never touch the job again.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusCancelled, JobStatusPendingReview:
		return true
	}
	return false
}

// Schedulable reports whether the optimizer may (re)assign the job's slot.
func (s JobStatus) Schedulable() bool {
	return s == JobStatusQueued
}

// Job is the unit of schedulable field work.
type Job struct {
	ID                 string     `db:"id" json:"id"`
	OrderID            string     `db:"order_id" json:"order_id"`
	ServiceID          string     `db:"service_id" json:"service_id"`
	AddressID          string     `db:"address_id" json:"address_id"`
	Priority           int        `db:"priority" json:"priority"`
	DurationMinutes    int        `db:"duration_minutes" json:"duration_minutes"`
	Status             JobStatus  `db:"status" json:"status"`
	AssignedTechnician *string    `db:"assigned_technician" json:"assigned_technician"`
	EstimatedSched     *time.Time `db:"estimated_sched" json:"estimated_sched"`
	FixedAssignment    bool       `db:"fixed_assignment" json:"fixed_assignment"`
	FixedScheduleTime  *time.Time `db:"fixed_schedule_time" json:"fixed_schedule_time"`
	Notes              string     `db:"notes" json:"notes"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// Duration returns the job's working duration.
func (j Job) Duration() time.Duration {
	return time.Duration(j.DurationMinutes) * time.Minute
}

// ScheduleConsistent checks the core row invariant: estimated_sched is set
// exactly when a technician is assigned and the status holds a schedule, and a
// committed fixed_time job's estimate equals its fixed slot.
func (j Job) ScheduleConsistent() bool {
	holds := j.Status == JobStatusQueued || j.Status == JobStatusFixedTime
	if j.EstimatedSched != nil {
		if j.AssignedTechnician == nil || !holds {
			return false
		}
		if j.Status == JobStatusFixedTime && j.FixedScheduleTime != nil && !j.EstimatedSched.Equal(*j.FixedScheduleTime) {
			return false
		}
	}
	if j.Status == JobStatusPendingReview && (j.EstimatedSched != nil || j.AssignedTechnician != nil) {
		return false
	}
	return true
}

// JobFilter describes query params for listing jobs.
type JobFilter struct {
	Status     string
	Technician string
	OrderID    string
	Date       string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// JobScheduleUpdate carries the only three columns the engine ever writes.
type JobScheduleUpdate struct {
	JobID              string
	Status             JobStatus
	AssignedTechnician *string
	EstimatedSched     *time.Time
}
