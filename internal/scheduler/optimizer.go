package scheduler

import (
	"time"

	"github.com/JAMAutoLtd/customer-portal-sub001/internal/models"
)

// dayState tracks, for one calendar day, each technician's resolved
// availability and the blocks already consumed by locked, fixed and newly
// placed work.
type dayState struct {
	date      time.Time
	available map[string][]TimeWindow
	busy      map[string][]TimeWindow
}

func newDayState(date time.Time, available map[string][]TimeWindow, busy map[string][]TimeWindow) *dayState {
	state := &dayState{
		date:      date,
		available: available,
		busy:      make(map[string][]TimeWindow, len(busy)),
	}
	for tech, blocks := range busy {
		for _, block := range blocks {
			if sameDate(block.Start, date) {
				state.busy[tech] = append(state.busy[tech], block)
			}
		}
	}
	return state
}

// anyAvailability reports whether any technician holds a window this day.
func (s *dayState) anyAvailability() bool {
	for _, windows := range s.available {
		if len(windows) > 0 {
			return true
		}
	}
	return false
}

// free returns the technician's availability minus everything reserved or
// already placed.
func (s *dayState) free(techID string) []TimeWindow {
	return SubtractAll(s.available[techID], s.busy[techID])
}

// reserve marks a block as consumed.
func (s *dayState) reserve(techID string, block TimeWindow) {
	s.busy[techID] = append(s.busy[techID], block)
}

// placement is a chosen slot for one unit.
type placement struct {
	techID string
	start  time.Time
}

// findSlot locates the earliest feasible gap across the eligible
// technicians that fits the unit's total duration, honouring the lower
// bound (now on the current day, plus the order's earliest availability).
// Technicians are scanned in sorted ID order so equal start times resolve
// deterministically to the lowest ID.
func (s *dayState) findSlot(eligible []string, total time.Duration, lowerBound time.Time) (placement, bool) {
	var best placement
	found := false
	for _, techID := range eligible {
		for _, w := range s.free(techID) {
			start := w.Start
			if start.Before(lowerBound) {
				start = lowerBound
			}
			if start.Add(total).After(w.End) {
				continue
			}
			if !found || start.Before(best.start) {
				best = placement{techID: techID, start: start}
				found = true
			}
			break
		}
	}
	return best, found
}

// placeUnit commits a unit at the chosen slot, scheduling bundle members
// sequentially back-to-back, and returns the resulting job updates.
func (s *dayState) placeUnit(unit PlacementUnit, at placement) []models.JobScheduleUpdate {
	updates := make([]models.JobScheduleUpdate, 0, len(unit.Jobs))
	cursor := at.start
	for _, job := range unit.Jobs {
		tech := at.techID
		sched := cursor
		updates = append(updates, models.JobScheduleUpdate{
			JobID:              job.ID,
			Status:             models.JobStatusQueued,
			AssignedTechnician: &tech,
			EstimatedSched:     &sched,
		})
		cursor = cursor.Add(job.Duration())
	}
	s.reserve(at.techID, TimeWindow{Start: at.start, End: cursor})
	return updates
}
