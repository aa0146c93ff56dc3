package models

import "time"

// AvailabilityException overrides a technician's default hours for one date.
// A full-day exception (IsAvailable=false, nil times) removes the day
// entirely; a timed exception either narrows the day to exactly the stated
// window (IsAvailable=true) or subtracts the window from the default hours
// (IsAvailable=false). The exception set for a date is authoritative and
// never merged with the weekly defaults.
type AvailabilityException struct {
	ID           string    `db:"id" json:"id"`
	TechnicianID string    `db:"technician_id" json:"technician_id"`
	Date         time.Time `db:"exception_date" json:"date"`
	IsAvailable  bool      `db:"is_available" json:"is_available"`
	StartTime    *string   `db:"start_time" json:"start_time"`
	EndTime      *string   `db:"end_time" json:"end_time"`
	Reason       string    `db:"reason" json:"reason"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// FullDay reports whether the exception blocks or grants no specific window.
// Full-day exceptions must carry null times; the reason text is never parsed.
func (e AvailabilityException) FullDay() bool {
	return e.StartTime == nil || e.EndTime == nil
}
