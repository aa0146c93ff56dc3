package scheduler

import (
	"sort"
	"time"

	"github.com/JAMAutoLtd/customer-portal-sub001/internal/models"
)

// PlacementUnit is what the optimizer places: a single job, or a bundle of
// same-order same-address jobs offered as one multi-stop visit. Bundles are
// placed atomically back-to-back on one technician; when no technician can
// perform every member, the bundle is broken into singles.
type PlacementUnit struct {
	Jobs []models.Job
}

// Bundle reports whether the unit holds more than one job.
func (u PlacementUnit) Bundle() bool {
	return len(u.Jobs) > 1
}

// TotalDuration sums the member durations for back-to-back placement.
func (u PlacementUnit) TotalDuration() time.Duration {
	var total time.Duration
	for _, job := range u.Jobs {
		total += job.Duration()
	}
	return total
}

// Priority of a bundle is its most urgent member's priority.
func (u PlacementUnit) Priority(direction PriorityDirection) int {
	best := u.Jobs[0].Priority
	for _, job := range u.Jobs[1:] {
		if direction.moreUrgent(job.Priority, best) {
			best = job.Priority
		}
	}
	return best
}

// CreatedAt is the earliest member creation time, the deterministic
// secondary sort key.
func (u PlacementUnit) CreatedAt() time.Time {
	earliest := u.Jobs[0].CreatedAt
	for _, job := range u.Jobs[1:] {
		if job.CreatedAt.Before(earliest) {
			earliest = job.CreatedAt
		}
	}
	return earliest
}

// Key is a stable final tie-break.
func (u PlacementUnit) Key() string {
	return u.Jobs[0].ID
}

// Split breaks the bundle into independent single-job units, each retaining
// its own eligibility.
func (u PlacementUnit) Split() []PlacementUnit {
	out := make([]PlacementUnit, 0, len(u.Jobs))
	for _, job := range u.Jobs {
		out = append(out, PlacementUnit{Jobs: []models.Job{job}})
	}
	return out
}

// BuildUnits groups schedulable jobs sharing an order and address into
// bundle units so a technician visits once; everything else becomes a
// single-job unit. Member and unit ordering is deterministic.
func BuildUnits(jobs []models.Job, direction PriorityDirection) []PlacementUnit {
	type bundleKey struct {
		orderID   string
		addressID string
	}
	groups := make(map[bundleKey][]models.Job)
	var keys []bundleKey
	for _, job := range jobs {
		key := bundleKey{orderID: job.OrderID, addressID: job.AddressID}
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], job)
	}

	units := make([]PlacementUnit, 0, len(keys))
	for _, key := range keys {
		members := groups[key]
		sort.Slice(members, func(i, j int) bool {
			return lessJob(members[i], members[j], direction)
		})
		units = append(units, PlacementUnit{Jobs: members})
	}
	SortUnits(units, direction)
	return units
}

// SortUnits orders units by priority under the configured direction, ties
// broken by creation time then job ID.
func SortUnits(units []PlacementUnit, direction PriorityDirection) {
	sort.Slice(units, func(i, j int) bool {
		pi, pj := units[i].Priority(direction), units[j].Priority(direction)
		if pi != pj {
			return direction.moreUrgent(pi, pj)
		}
		ci, cj := units[i].CreatedAt(), units[j].CreatedAt()
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		return units[i].Key() < units[j].Key()
	})
}

func lessJob(a, b models.Job, direction PriorityDirection) bool {
	if a.Priority != b.Priority {
		return direction.moreUrgent(a.Priority, b.Priority)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
