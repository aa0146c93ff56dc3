package scheduler

import (
	"time"

	"github.com/JAMAutoLtd/customer-portal-sub001/internal/models"
)

// ReservedFromLocked carves out the time blocks of jobs already in active
// field execution (en_route, in_progress). Those jobs never re-enter the
// optimizable pool; their block is a hard obstacle on the assigned
// technician's day.
func ReservedFromLocked(jobs []models.Job) map[string][]TimeWindow {
	reserved := make(map[string][]TimeWindow)
	for _, job := range jobs {
		if !job.Status.Locked() {
			continue
		}
		if job.AssignedTechnician == nil || job.EstimatedSched == nil {
			// A locked job without a committed slot cannot reserve time.
			continue
		}
		tech := *job.AssignedTechnician
		reserved[tech] = append(reserved[tech], TimeWindow{
			Start: *job.EstimatedSched,
			End:   job.EstimatedSched.Add(job.Duration()),
		})
	}
	return reserved
}

// FixedEvaluation is the outcome of the fixed-time pass.
type FixedEvaluation struct {
	// Commits are fixed jobs whose estimated_sched is populated to exactly
	// the caller-supplied fixed slot.
	Commits []models.JobScheduleUpdate
	// Reviews are uncommitted fixed jobs whose technician has no
	// availability at all on the slot's day.
	Reviews []models.JobScheduleUpdate
	// Reserved maps technician ID to the blocks fixed jobs occupy,
	// including pre-committed ones, as further obstacles for placement.
	Reserved map[string][]TimeWindow
}

// EvaluateFixed applies the fixed-time rules to every fixed_time job with a
// deterministic technician and slot. Already-committed jobs are never
// altered. An uncommitted job is committed when its slot lies inside a
// resolved availability window of its technician; left untouched when the
// day retains some availability that simply does not cover the slot; and
// demoted to pending_review when the slot's day is inside the evaluated
// horizon and the technician has no availability on it at all. Slots whose
// day falls outside the horizon are not evaluated.
func EvaluateFixed(jobs []models.Job, horizonDays []time.Time, availability func(techID string, date time.Time) []TimeWindow) FixedEvaluation {
	eval := FixedEvaluation{Reserved: make(map[string][]TimeWindow)}
	for _, job := range jobs {
		if job.Status != models.JobStatusFixedTime {
			continue
		}
		if job.AssignedTechnician == nil || job.FixedScheduleTime == nil {
			// No deterministic technician+time; the slot is not ours to
			// decide, leave the row alone.
			continue
		}
		tech := *job.AssignedTechnician
		slot := TimeWindow{Start: *job.FixedScheduleTime, End: job.FixedScheduleTime.Add(job.Duration())}

		if job.EstimatedSched != nil {
			// Pre-existing committed fixed jobs are never altered.
			eval.Reserved[tech] = append(eval.Reserved[tech], slot)
			continue
		}

		day, inHorizon := horizonDay(horizonDays, slot.Start)
		if !inHorizon {
			continue
		}

		windows := availability(tech, day)
		if len(windows) == 0 {
			eval.Reviews = append(eval.Reviews, models.JobScheduleUpdate{
				JobID:  job.ID,
				Status: models.JobStatusPendingReview,
			})
			continue
		}
		if !covered(windows, slot) {
			// Partial availability that misses the slot: the engine does
			// not override or cancel a manually fixed commitment.
			continue
		}

		sched := *job.FixedScheduleTime
		eval.Commits = append(eval.Commits, models.JobScheduleUpdate{
			JobID:              job.ID,
			Status:             models.JobStatusFixedTime,
			AssignedTechnician: job.AssignedTechnician,
			EstimatedSched:     &sched,
		})
		eval.Reserved[tech] = append(eval.Reserved[tech], slot)
	}
	return eval
}

func horizonDay(days []time.Time, at time.Time) (time.Time, bool) {
	for _, day := range days {
		if sameDate(day, at) {
			return day, true
		}
	}
	return time.Time{}, false
}

func covered(windows []TimeWindow, slot TimeWindow) bool {
	for _, w := range windows {
		if w.Contains(slot) {
			return true
		}
	}
	return false
}
