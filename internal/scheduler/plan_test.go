package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JAMAutoLtd/customer-portal-sub001/internal/models"
)

type planFixture struct {
	now          time.Time
	techs        []models.Technician
	exceptions   []models.AvailabilityException
	jobs         []models.Job
	orders       map[string]models.Order
	requirements []models.EquipmentRequirement
	cfg          Config
}

func runPlan(t *testing.T, fx planFixture) *Plan {
	t.Helper()
	if fx.now.IsZero() {
		fx.now = monday.Add(8 * time.Hour)
	}
	if fx.orders == nil {
		fx.orders = make(map[string]models.Order)
	}
	for _, job := range fx.jobs {
		if _, ok := fx.orders[job.OrderID]; !ok {
			fx.orders[job.OrderID] = models.Order{ID: job.OrderID, AddressID: job.AddressID}
		}
	}
	plan, err := Run(Input{
		Now:          fx.now,
		Technicians:  fx.techs,
		Exceptions:   fx.exceptions,
		Jobs:         fx.jobs,
		Orders:       fx.orders,
		Requirements: fx.requirements,
	}, fx.cfg)
	require.NoError(t, err)
	return plan
}

func updateFor(plan *Plan, jobID string) (models.JobScheduleUpdate, bool) {
	for _, u := range plan.Updates {
		if u.JobID == jobID {
			return u, true
		}
	}
	return models.JobScheduleUpdate{}, false
}

func TestRunPlacesJobInsideAvailability(t *testing.T) {
	plan := runPlan(t, planFixture{
		techs: []models.Technician{weekdayTech("tech-1", 1, 2, 3, 4, 5)},
		jobs:  []models.Job{makeJob("job-1", nil)},
	})

	assert.Equal(t, 1, plan.Scheduled)
	assert.Equal(t, 0, plan.Overflowed)
	assert.Equal(t, 0, plan.PendingReview)

	update, ok := updateFor(plan, "job-1")
	require.True(t, ok)
	assert.Equal(t, models.JobStatusQueued, update.Status)
	require.NotNil(t, update.AssignedTechnician)
	assert.Equal(t, "tech-1", *update.AssignedTechnician)
	require.NotNil(t, update.EstimatedSched)
	assert.True(t, update.EstimatedSched.Equal(monday.Add(9*time.Hour)))
}

func TestRunNeverStartsBeforeNow(t *testing.T) {
	plan := runPlan(t, planFixture{
		now:   monday.Add(10*time.Hour + 30*time.Minute),
		techs: []models.Technician{weekdayTech("tech-1", 1, 2, 3, 4, 5)},
		jobs:  []models.Job{makeJob("job-1", nil)},
	})

	update, ok := updateFor(plan, "job-1")
	require.True(t, ok)
	assert.True(t, update.EstimatedSched.Equal(monday.Add(10*time.Hour+30*time.Minute)))
}

func TestRunRespectsOrderEarliestAvailable(t *testing.T) {
	plan := runPlan(t, planFixture{
		techs: []models.Technician{weekdayTech("tech-1", 1, 2, 3, 4, 5)},
		jobs:  []models.Job{makeJob("job-1", nil)},
		orders: map[string]models.Order{
			"order-1": {ID: "order-1", AddressID: "addr-1", EarliestAvailable: monday.Add(13 * time.Hour)},
		},
	})

	update, ok := updateFor(plan, "job-1")
	require.True(t, ok)
	assert.True(t, update.EstimatedSched.Equal(monday.Add(13*time.Hour)))
}

func TestRunOverflowsToNextDayWhenTodayCannotFit(t *testing.T) {
	plan := runPlan(t, planFixture{
		now:   monday.Add(16*time.Hour + 30*time.Minute),
		techs: []models.Technician{weekdayTech("tech-1", 1, 2, 3, 4, 5)},
		jobs:  []models.Job{makeJob("job-1", nil)},
	})

	tuesday := monday.AddDate(0, 0, 1)
	update, ok := updateFor(plan, "job-1")
	require.True(t, ok)
	assert.True(t, update.EstimatedSched.Equal(tuesday.Add(9*time.Hour)))
	assert.Equal(t, 1, plan.Scheduled)
	assert.Equal(t, 1, plan.Overflowed)
}

func TestRunSkipsDaysWithoutAnyAvailability(t *testing.T) {
	tuesday := monday.AddDate(0, 0, 1)
	wednesday := monday.AddDate(0, 0, 2)

	var techs []models.Technician
	var exceptions []models.AvailabilityException
	for i := 1; i <= 4; i++ {
		id := fmt.Sprintf("tech-%d", i)
		techs = append(techs, weekdayTech(id, 1, 2, 3, 4, 5))
		exceptions = append(exceptions, models.AvailabilityException{
			TechnicianID: id,
			Date:         tuesday,
			IsAvailable:  false,
			Reason:       "training day",
		})
	}

	jobs := make([]models.Job, 0, 15)
	for i := 1; i <= 15; i++ {
		orderID := fmt.Sprintf("order-%02d", i)
		jobs = append(jobs, makeJob(fmt.Sprintf("job-%02d", i), func(j *models.Job) {
			j.OrderID = orderID
			j.DurationMinutes = 120
		}))
	}
	orders := make(map[string]models.Order, len(jobs))
	for _, job := range jobs {
		orders[job.OrderID] = models.Order{ID: job.OrderID, AddressID: job.AddressID, EarliestAvailable: tuesday}
	}

	plan := runPlan(t, planFixture{
		techs:      techs,
		exceptions: exceptions,
		jobs:       jobs,
		orders:     orders,
	})

	// Nothing may land on the day every technician is off; the requested
	// work rolls to the first day with capacity.
	assert.Equal(t, 15, plan.Scheduled)
	assert.Equal(t, 0, plan.PendingReview)
	onWednesday := 0
	for _, update := range plan.Updates {
		require.NotNil(t, update.EstimatedSched)
		assert.False(t, sameDate(*update.EstimatedSched, tuesday), "job %s scheduled on a day off", update.JobID)
		if sameDate(*update.EstimatedSched, wednesday) {
			onWednesday++
		}
	}
	assert.Greater(t, onWednesday, 0)
}

func TestRunEquipmentConflictGoesToPendingReview(t *testing.T) {
	fx := planFixture{
		techs: []models.Technician{vanTech("tech-1", "DIAG-5"), vanTech("tech-2")},
		jobs: []models.Job{makeJob("job-1", func(j *models.Job) {
			j.ServiceID = "svc-prog"
		})},
		orders: map[string]models.Order{"order-1": civicOrder("order-1")},
		requirements: []models.EquipmentRequirement{
			{ServiceID: "svc-prog", VehicleYear: 2020, VehicleMake: "Honda", VehicleModel: "Civic", EquipmentModel: "PROG-999"},
		},
	}

	plan := runPlan(t, fx)
	assert.Equal(t, 0, plan.Scheduled)
	assert.Equal(t, 1, plan.PendingReview)

	update, ok := updateFor(plan, "job-1")
	require.True(t, ok)
	assert.Equal(t, models.JobStatusPendingReview, update.Status)
	assert.Nil(t, update.AssignedTechnician)
	assert.Nil(t, update.EstimatedSched)

	// The outcome is stable: replanning the same state produces the same
	// plan, not an oscillation.
	again := runPlan(t, fx)
	assert.Equal(t, plan, again)
}

func TestRunBundlePlacedBackToBack(t *testing.T) {
	plan := runPlan(t, planFixture{
		techs: []models.Technician{weekdayTech("tech-1", 1, 2, 3, 4, 5)},
		jobs: []models.Job{
			makeJob("job-1", func(j *models.Job) { j.DurationMinutes = 45 }),
			makeJob("job-2", func(j *models.Job) { j.DurationMinutes = 30 }),
		},
	})

	first, ok := updateFor(plan, "job-1")
	require.True(t, ok)
	second, ok := updateFor(plan, "job-2")
	require.True(t, ok)

	assert.Equal(t, *first.AssignedTechnician, *second.AssignedTechnician)
	assert.True(t, second.EstimatedSched.Equal(first.EstimatedSched.Add(45*time.Minute)))
}

func TestRunBundleBreaksAcrossTechnicians(t *testing.T) {
	plan := runPlan(t, planFixture{
		techs: []models.Technician{
			vanTech("tech-1", "PROG-100"),
			vanTech("tech-2", "IMMO-200"),
		},
		jobs: []models.Job{
			makeJob("job-prog", func(j *models.Job) { j.ServiceID = "svc-prog" }),
			makeJob("job-immo", func(j *models.Job) { j.ServiceID = "svc-immo" }),
		},
		orders: map[string]models.Order{"order-1": civicOrder("order-1")},
		requirements: []models.EquipmentRequirement{
			{ServiceID: "svc-prog", VehicleYear: 2020, VehicleMake: "Honda", VehicleModel: "Civic", EquipmentModel: "PROG-100"},
			{ServiceID: "svc-immo", VehicleYear: 2020, VehicleMake: "Honda", VehicleModel: "Civic", EquipmentModel: "IMMO-200"},
		},
	})

	// No single van carries both tools, so the same-address bundle breaks
	// and both jobs still get scheduled independently.
	assert.Equal(t, 2, plan.Scheduled)
	assert.Equal(t, 0, plan.PendingReview)

	prog, ok := updateFor(plan, "job-prog")
	require.True(t, ok)
	immo, ok := updateFor(plan, "job-immo")
	require.True(t, ok)
	assert.Equal(t, "tech-1", *prog.AssignedTechnician)
	assert.Equal(t, "tech-2", *immo.AssignedTechnician)
	assert.NotNil(t, prog.EstimatedSched)
	assert.NotNil(t, immo.EstimatedSched)
}

func TestRunPriorityWinsUnderCapacityPressure(t *testing.T) {
	tech := weekdayTech("tech-1", 1)
	tech.DefaultHours[0].EndTime = "10:00"

	fx := planFixture{
		techs: []models.Technician{tech},
		jobs: []models.Job{
			makeJob("job-low", func(j *models.Job) { j.OrderID = "order-low"; j.Priority = 5 }),
			makeJob("job-high", func(j *models.Job) { j.OrderID = "order-high"; j.Priority = 1 }),
		},
		cfg: Config{HorizonDays: 1},
	}

	plan := runPlan(t, fx)
	high, ok := updateFor(plan, "job-high")
	require.True(t, ok)
	assert.Equal(t, models.JobStatusQueued, high.Status)
	low, ok := updateFor(plan, "job-low")
	require.True(t, ok)
	assert.Equal(t, models.JobStatusPendingReview, low.Status)

	// Inverted direction flips which job gets the only slot.
	fx.cfg.Direction = PriorityDescending
	plan = runPlan(t, fx)
	high, _ = updateFor(plan, "job-high")
	assert.Equal(t, models.JobStatusPendingReview, high.Status)
	low, _ = updateFor(plan, "job-low")
	assert.Equal(t, models.JobStatusQueued, low.Status)
}

func TestRunEqualPriorityOrdersByCreationThenID(t *testing.T) {
	plan := runPlan(t, planFixture{
		techs: []models.Technician{weekdayTech("tech-1", 1, 2, 3, 4, 5)},
		jobs: []models.Job{
			makeJob("job-b", func(j *models.Job) { j.OrderID = "order-b" }),
			makeJob("job-a", func(j *models.Job) { j.OrderID = "order-a" }),
			makeJob("job-old", func(j *models.Job) {
				j.OrderID = "order-old"
				j.CreatedAt = j.CreatedAt.Add(-time.Hour)
			}),
		},
	})

	oldest, _ := updateFor(plan, "job-old")
	first, _ := updateFor(plan, "job-a")
	second, _ := updateFor(plan, "job-b")
	assert.True(t, oldest.EstimatedSched.Before(*first.EstimatedSched))
	assert.True(t, first.EstimatedSched.Before(*second.EstimatedSched))
}

func TestRunLockedJobsAreObstaclesAndNeverUpdated(t *testing.T) {
	tech := "tech-1"
	plan := runPlan(t, planFixture{
		techs: []models.Technician{weekdayTech("tech-1", 1, 2, 3, 4, 5)},
		jobs: []models.Job{
			makeJob("job-active", func(j *models.Job) {
				j.Status = models.JobStatusInProgress
				j.AssignedTechnician = &tech
				j.EstimatedSched = timePtr(monday.Add(9 * time.Hour))
				j.DurationMinutes = 120
			}),
			makeJob("job-new", func(j *models.Job) { j.OrderID = "order-2" }),
		},
	})

	_, touched := updateFor(plan, "job-active")
	assert.False(t, touched, "locked job must never receive an update")

	update, ok := updateFor(plan, "job-new")
	require.True(t, ok)
	assert.True(t, update.EstimatedSched.Equal(monday.Add(11*time.Hour)))
}

func TestRunFixedTimeCommitIsExact(t *testing.T) {
	tech := "tech-1"
	slot := monday.Add(10 * time.Hour)
	plan := runPlan(t, planFixture{
		techs: []models.Technician{weekdayTech("tech-1", 1, 2, 3, 4, 5)},
		jobs: []models.Job{
			makeJob("job-fixed", func(j *models.Job) {
				j.Status = models.JobStatusFixedTime
				j.FixedAssignment = true
				j.AssignedTechnician = &tech
				j.FixedScheduleTime = timePtr(slot)
			}),
			makeJob("job-new", func(j *models.Job) { j.OrderID = "order-2"; j.DurationMinutes = 60 }),
		},
	})

	assert.Equal(t, 1, plan.FixedCommitted)
	fixed, ok := updateFor(plan, "job-fixed")
	require.True(t, ok)
	assert.Equal(t, models.JobStatusFixedTime, fixed.Status)
	require.NotNil(t, fixed.EstimatedSched)
	assert.True(t, fixed.EstimatedSched.Equal(slot), "estimated_sched must equal the fixed slot exactly")

	// The fixed block is an obstacle: the flexible job fits in front of it.
	flexible, ok := updateFor(plan, "job-new")
	require.True(t, ok)
	assert.True(t, flexible.EstimatedSched.Equal(monday.Add(9*time.Hour)))
}

func TestRunFixedTimeDayOffGoesToPendingReview(t *testing.T) {
	tech := "tech-1"
	plan := runPlan(t, planFixture{
		techs: []models.Technician{weekdayTech("tech-1", 1, 2, 3, 4, 5)},
		exceptions: []models.AvailabilityException{
			{TechnicianID: "tech-1", Date: monday, IsAvailable: false, Reason: "sick"},
		},
		jobs: []models.Job{
			makeJob("job-fixed", func(j *models.Job) {
				j.Status = models.JobStatusFixedTime
				j.FixedAssignment = true
				j.AssignedTechnician = &tech
				j.FixedScheduleTime = timePtr(monday.Add(10 * time.Hour))
			}),
		},
	})

	update, ok := updateFor(plan, "job-fixed")
	require.True(t, ok)
	assert.Equal(t, models.JobStatusPendingReview, update.Status)
	assert.Equal(t, 1, plan.PendingReview)
	assert.Equal(t, 0, plan.FixedCommitted)
}

func TestRunFixedTimeOutsideWindowsLeftUntouched(t *testing.T) {
	tech := "tech-1"
	plan := runPlan(t, planFixture{
		techs: []models.Technician{weekdayTech("tech-1", 1, 2, 3, 4, 5)},
		jobs: []models.Job{
			makeJob("job-fixed", func(j *models.Job) {
				j.Status = models.JobStatusFixedTime
				j.FixedAssignment = true
				j.AssignedTechnician = &tech
				j.FixedScheduleTime = timePtr(monday.Add(19 * time.Hour))
			}),
		},
	})

	_, touched := updateFor(plan, "job-fixed")
	assert.False(t, touched, "partially available day must not demote a fixed commitment")
	assert.Empty(t, plan.Updates)
}

func TestRunFixedTimeAlreadyCommittedUntouched(t *testing.T) {
	tech := "tech-1"
	slot := monday.Add(9 * time.Hour)
	plan := runPlan(t, planFixture{
		techs: []models.Technician{weekdayTech("tech-1", 1, 2, 3, 4, 5)},
		jobs: []models.Job{
			makeJob("job-fixed", func(j *models.Job) {
				j.Status = models.JobStatusFixedTime
				j.FixedAssignment = true
				j.AssignedTechnician = &tech
				j.FixedScheduleTime = timePtr(slot)
				j.EstimatedSched = timePtr(slot)
			}),
			makeJob("job-new", func(j *models.Job) { j.OrderID = "order-2" }),
		},
	})

	_, touched := updateFor(plan, "job-fixed")
	assert.False(t, touched)

	// Its block still shapes placement of flexible work.
	update, ok := updateFor(plan, "job-new")
	require.True(t, ok)
	assert.True(t, update.EstimatedSched.Equal(monday.Add(10*time.Hour)))
}

func TestRunExhaustedHorizonGoesToPendingReview(t *testing.T) {
	plan := runPlan(t, planFixture{
		techs: []models.Technician{weekdayTech("tech-1", 6)},
		jobs:  []models.Job{makeJob("job-1", nil)},
		cfg:   Config{HorizonDays: 3},
	})

	// Monday through Wednesday hold no Saturday hours, so the horizon runs
	// out without a slot.
	update, ok := updateFor(plan, "job-1")
	require.True(t, ok)
	assert.Equal(t, models.JobStatusPendingReview, update.Status)
	assert.Equal(t, 1, plan.Overflowed)
	assert.Equal(t, 1, plan.PendingReview)
}

func TestRunAbortsOnInconsistentInput(t *testing.T) {
	techs := []models.Technician{weekdayTech("tech-1", 1, 2, 3, 4, 5)}

	// Non-positive duration.
	_, err := Run(Input{
		Now:         monday.Add(8 * time.Hour),
		Technicians: techs,
		Jobs:        []models.Job{makeJob("job-1", func(j *models.Job) { j.DurationMinutes = 0 })},
		Orders:      map[string]models.Order{"order-1": {ID: "order-1"}},
	}, Config{})
	var inconsistency *InconsistencyError
	require.ErrorAs(t, err, &inconsistency)
	assert.Equal(t, "job-1", inconsistency.JobID)

	// Dangling order reference.
	_, err = Run(Input{
		Now:         monday.Add(8 * time.Hour),
		Technicians: techs,
		Jobs:        []models.Job{makeJob("job-2", nil)},
		Orders:      map[string]models.Order{},
	}, Config{})
	require.ErrorAs(t, err, &inconsistency)
	assert.Equal(t, "job-2", inconsistency.JobID)
}

func TestRunIsDeterministic(t *testing.T) {
	fx := planFixture{
		techs: []models.Technician{
			vanTech("tech-2", "PROG-100"),
			vanTech("tech-1", "PROG-100"),
		},
		jobs: []models.Job{
			makeJob("job-3", func(j *models.Job) { j.OrderID = "order-3"; j.Priority = 2 }),
			makeJob("job-1", nil),
			makeJob("job-2", nil),
			makeJob("job-4", func(j *models.Job) { j.OrderID = "order-4"; j.Priority = 2 }),
		},
	}

	first := runPlan(t, fx)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, runPlan(t, fx))
	}

	// Equal start candidates resolve to the lowest technician ID.
	update, ok := updateFor(first, "job-3")
	require.True(t, ok)
	assert.Equal(t, "tech-1", *update.AssignedTechnician)
}
