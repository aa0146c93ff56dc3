package scheduler

import (
	"fmt"
	"time"

	"github.com/JAMAutoLtd/customer-portal-sub001/internal/models"
)

// PriorityDirection controls how numeric priorities order placement.
// The default treats lower numbers as more urgent.
type PriorityDirection string

const (
	PriorityAscending  PriorityDirection = "asc"
	PriorityDescending PriorityDirection = "desc"
)

func (d PriorityDirection) moreUrgent(a, b int) bool {
	if d == PriorityDescending {
		return a > b
	}
	return a < b
}

// DefaultHorizonDays bounds the day-by-day advance when no override is
// configured.
const DefaultHorizonDays = 5

// Config tunes a single engine run.
type Config struct {
	HorizonDays int
	Direction   PriorityDirection
}

func (c Config) withDefaults() Config {
	if c.HorizonDays <= 0 {
		c.HorizonDays = DefaultHorizonDays
	}
	if c.Direction != PriorityAscending && c.Direction != PriorityDescending {
		c.Direction = PriorityAscending
	}
	return c
}

// Input is the full state a replan consumes. The engine never reads
// anything else and never mutates it.
type Input struct {
	Now          time.Time
	Technicians  []models.Technician
	Exceptions   []models.AvailabilityException
	Jobs         []models.Job
	Orders       map[string]models.Order
	Requirements []models.EquipmentRequirement
}

// Plan is the computed outcome of one replan: the job row updates to commit
// plus summary counts for the trigger response and metrics.
type Plan struct {
	Updates        []models.JobScheduleUpdate
	Scheduled      int
	FixedCommitted int
	Overflowed     int
	PendingReview  int
}

// Run executes the full pipeline: bundling, locked/fixed reservation,
// day-by-day placement and horizon-bounded overflow. It is deterministic:
// equal inputs always produce the same plan.
func Run(input Input, cfg Config) (*Plan, error) {
	cfg = cfg.withDefaults()

	today := dateOnly(input.Now)
	days := make([]time.Time, cfg.HorizonDays)
	for i := range days {
		days[i] = today.AddDate(0, 0, i)
	}

	catalog := NewCatalog(input.Requirements, input.Orders)

	// Validate input before any decision: a malformed job aborts the run
	// rather than silently skewing capacity for every other job.
	requirements := make(map[string]requirementLookup, len(input.Jobs))
	for _, job := range input.Jobs {
		if job.Status.Terminal() {
			continue
		}
		if job.DurationMinutes <= 0 {
			return nil, &InconsistencyError{JobID: job.ID, Reason: fmt.Sprintf("non-positive duration %d", job.DurationMinutes)}
		}
		model, has, err := catalog.RequiredEquipment(job)
		if err != nil {
			return nil, err
		}
		requirements[job.ID] = requirementLookup{model: model, has: has}
	}

	availability, err := resolveAll(input.Technicians, input.Exceptions, days)
	if err != nil {
		return nil, err
	}
	availFn := func(techID string, date time.Time) []TimeWindow {
		return availability.windows(techID, date)
	}

	reserved := ReservedFromLocked(input.Jobs)
	fixed := EvaluateFixed(input.Jobs, days, availFn)
	for tech, blocks := range fixed.Reserved {
		reserved[tech] = append(reserved[tech], blocks...)
	}

	plan := &Plan{}
	plan.Updates = append(plan.Updates, fixed.Commits...)
	plan.FixedCommitted = len(fixed.Commits)
	plan.Updates = append(plan.Updates, fixed.Reviews...)
	plan.PendingReview += len(fixed.Reviews)

	var pool []models.Job
	for _, job := range input.Jobs {
		if job.Status.Schedulable() {
			pool = append(pool, job)
		}
	}
	pending := BuildUnits(pool, cfg.Direction)

	overflowed := make(map[string]bool)
	placed := make(map[string][]TimeWindow)
	for _, day := range days {
		if len(pending) == 0 {
			break
		}
		state := newDayState(day, availability.forDate(day), mergeBlocks(reserved, placed))
		if !state.anyAvailability() {
			// Nobody can work this day; jobs roll forward without any
			// placement attempt, but the day still spends horizon budget.
			markOverflow(overflowed, pending)
			continue
		}

		lowerFloor := day
		if sameDate(day, today) && input.Now.After(day) {
			lowerFloor = input.Now
		}

		var carried []PlacementUnit
		queue := pending
		for i := 0; i < len(queue); i++ {
			unit := queue[i]
			sets := memberEligibility(unit, requirements, input.Technicians, state)

			if unit.Bundle() {
				inter := sets[0]
				for _, set := range sets[1:] {
					inter = intersectIDs(inter, set)
				}
				if len(inter) == 0 {
					// No single technician can perform every member; break
					// the bundle and try the members independently, right
					// here so address proximity is still opportunistic.
					queue = insertAfter(queue, i, unit.Split())
					continue
				}
				if !tryPlace(unit, inter, lowerFloor, catalog, state, placed, plan) {
					carried = append(carried, unit)
				}
				continue
			}

			if len(sets[0]) == 0 || !tryPlace(unit, sets[0], lowerFloor, catalog, state, placed, plan) {
				carried = append(carried, unit)
			}
		}

		pending = carried
		markOverflow(overflowed, pending)
	}

	for _, unit := range pending {
		for _, job := range unit.Jobs {
			plan.Updates = append(plan.Updates, models.JobScheduleUpdate{
				JobID:  job.ID,
				Status: models.JobStatusPendingReview,
			})
			plan.PendingReview++
		}
	}

	for _, job := range pool {
		if overflowed[job.ID] {
			plan.Overflowed++
		}
	}
	return plan, nil
}

type requirementLookup struct {
	model string
	has   bool
}

func memberEligibility(unit PlacementUnit, requirements map[string]requirementLookup, techs []models.Technician, state *dayState) [][]string {
	free := make(map[string][]TimeWindow, len(techs))
	for _, tech := range techs {
		free[tech.ID] = state.free(tech.ID)
	}
	sets := make([][]string, len(unit.Jobs))
	for i, job := range unit.Jobs {
		req := requirements[job.ID]
		sets[i] = EligibleTechnicians(job, req.model, req.has, techs, free)
	}
	return sets
}

func tryPlace(unit PlacementUnit, eligible []string, lowerFloor time.Time, catalog *Catalog, state *dayState, placed map[string][]TimeWindow, plan *Plan) bool {
	lowerBound := lowerFloor
	if order, ok := catalog.Order(unit.Jobs[0]); ok && order.EarliestAvailable.After(lowerBound) {
		lowerBound = order.EarliestAvailable
	}
	total := unit.TotalDuration()
	at, found := state.findSlot(eligible, total, lowerBound)
	if !found {
		return false
	}
	updates := state.placeUnit(unit, at)
	placed[at.techID] = append(placed[at.techID], TimeWindow{Start: at.start, End: at.start.Add(total)})
	plan.Updates = append(plan.Updates, updates...)
	plan.Scheduled += len(updates)
	return true
}

func mergeBlocks(reserved, placed map[string][]TimeWindow) map[string][]TimeWindow {
	out := make(map[string][]TimeWindow, len(reserved)+len(placed))
	for tech, blocks := range reserved {
		out[tech] = append(out[tech], blocks...)
	}
	for tech, blocks := range placed {
		out[tech] = append(out[tech], blocks...)
	}
	return out
}

func markOverflow(overflowed map[string]bool, units []PlacementUnit) {
	for _, unit := range units {
		for _, job := range unit.Jobs {
			overflowed[job.ID] = true
		}
	}
}

func insertAfter(queue []PlacementUnit, i int, items []PlacementUnit) []PlacementUnit {
	out := make([]PlacementUnit, 0, len(queue)+len(items))
	out = append(out, queue[:i+1]...)
	out = append(out, items...)
	out = append(out, queue[i+1:]...)
	return out
}

// availabilityTable caches resolved windows per technician and date.
type availabilityTable struct {
	byTech map[string]map[time.Time][]TimeWindow
}

func resolveAll(techs []models.Technician, exceptions []models.AvailabilityException, days []time.Time) (*availabilityTable, error) {
	table := &availabilityTable{byTech: make(map[string]map[time.Time][]TimeWindow, len(techs))}
	for _, tech := range techs {
		perDay := make(map[time.Time][]TimeWindow, len(days))
		for _, day := range days {
			windows, err := ResolveAvailability(tech, exceptions, day)
			if err != nil {
				return nil, err
			}
			perDay[day] = windows
		}
		table.byTech[tech.ID] = perDay
	}
	return table, nil
}

func (t *availabilityTable) windows(techID string, date time.Time) []TimeWindow {
	perDay, ok := t.byTech[techID]
	if !ok {
		return nil
	}
	return perDay[dateOnly(date)]
}

func (t *availabilityTable) forDate(date time.Time) map[string][]TimeWindow {
	out := make(map[string][]TimeWindow, len(t.byTech))
	for techID, perDay := range t.byTech {
		out[techID] = perDay[dateOnly(date)]
	}
	return out
}
