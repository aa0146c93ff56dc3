package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/JAMAutoLtd/customer-portal-sub001/internal/dto"
	"github.com/JAMAutoLtd/customer-portal-sub001/internal/models"
	"github.com/JAMAutoLtd/customer-portal-sub001/internal/scheduler"
	appErrors "github.com/JAMAutoLtd/customer-portal-sub001/pkg/errors"
)

type technicianReader interface {
	ListActive(ctx context.Context) ([]models.Technician, error)
	ListDefaultHours(ctx context.Context, technicianIDs []string) ([]models.DefaultHours, error)
}

type availabilityReader interface {
	ListExceptionsInRange(ctx context.Context, from, to time.Time) ([]models.AvailabilityException, error)
}

type equipmentReader interface {
	ListVans(ctx context.Context) ([]models.Van, error)
	ListVanEquipment(ctx context.Context) (map[string][]models.Equipment, error)
	ListRequirements(ctx context.Context) ([]models.EquipmentRequirement, error)
}

type orderReader interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Order, error)
}

type jobStore interface {
	ListActive(ctx context.Context) ([]models.Job, error)
	UpdateScheduleBatch(ctx context.Context, exec sqlx.ExtContext, updates []models.JobScheduleUpdate) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type replanLock interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

type replanMetrics interface {
	ObserveReplan(outcome string, duration time.Duration, scheduled, overflowed, pendingReview int)
}

// ReplanService is the externally-triggered entry point of the scheduling
// engine: it loads pending work, runs the pipeline once and commits every
// job update in a single transaction.
type ReplanService struct {
	technicians  technicianReader
	availability availabilityReader
	equipment    equipmentReader
	orders       orderReader
	jobs         jobStore
	tx           txProvider
	lock         replanLock
	metrics      replanMetrics
	validator    *validator.Validate
	logger       *zap.Logger
	cfg          ReplanConfig
	now          func() time.Time
}

// ReplanConfig governs one service instance.
type ReplanConfig struct {
	Enabled           bool
	HorizonDays       int
	PriorityDirection string
	RunTimeout        time.Duration
}

// NewReplanService wires the orchestrator's dependencies.
func NewReplanService(
	technicians technicianReader,
	availability availabilityReader,
	equipment equipmentReader,
	orders orderReader,
	jobs jobStore,
	tx txProvider,
	lock replanLock,
	metrics replanMetrics,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ReplanConfig,
) *ReplanService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = scheduler.DefaultHorizonDays
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 2 * time.Minute
	}
	return &ReplanService{
		technicians:  technicians,
		availability: availability,
		equipment:    equipment,
		orders:       orders,
		jobs:         jobs,
		tx:           tx,
		lock:         lock,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		cfg:          cfg,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Run executes one replan. Concurrent invocations are rejected rather than
// queued, and a failed run leaves every job row exactly as it was.
func (s *ReplanService) Run(ctx context.Context, req dto.RunReplanRequest) (*dto.RunReplanResponse, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrSchedulerDisabled, "")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid replan payload")
	}

	if s.lock != nil {
		acquired, err := s.lock.TryLock(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire replan lock")
		}
		if !acquired {
			return nil, appErrors.Clone(appErrors.ErrReplanInFlight, "")
		}
		defer func() {
			if err := s.lock.Unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("failed to release replan lock", zap.Error(err))
			}
		}()
	}

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	started := s.now()
	resp, err := s.run(runCtx, started, req.HorizonDays)
	elapsed := time.Since(started)

	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		outcome = "timeout"
		err = appErrors.Wrap(err, appErrors.ErrReplanTimeout.Code, appErrors.ErrReplanTimeout.Status, appErrors.ErrReplanTimeout.Message)
	default:
		outcome = "error"
	}
	if s.metrics != nil {
		scheduled, overflowed, review := 0, 0, 0
		if resp != nil {
			scheduled, overflowed, review = resp.Scheduled, resp.Overflowed, resp.PendingReview
		}
		s.metrics.ObserveReplan(outcome, elapsed, scheduled, overflowed, review)
	}
	if err != nil {
		s.logger.Error("replan failed", zap.String("outcome", outcome), zap.Duration("elapsed", elapsed), zap.Error(err))
		return nil, err
	}

	resp.DurationMs = elapsed.Milliseconds()
	s.logger.Info("replan finished",
		zap.Int("scheduled", resp.Scheduled),
		zap.Int("fixed_committed", resp.FixedCommitted),
		zap.Int("overflowed", resp.Overflowed),
		zap.Int("pending_review", resp.PendingReview),
		zap.Duration("elapsed", elapsed),
	)
	return resp, nil
}

func (s *ReplanService) run(ctx context.Context, now time.Time, horizonOverride int) (*dto.RunReplanResponse, error) {
	horizon := s.cfg.HorizonDays
	if horizonOverride > 0 {
		horizon = horizonOverride
	}

	input, err := s.loadInput(ctx, now, horizon)
	if err != nil {
		return nil, err
	}

	plan, err := scheduler.Run(*input, scheduler.Config{
		HorizonDays: horizon,
		Direction:   scheduler.PriorityDirection(s.cfg.PriorityDirection),
	})
	if err != nil {
		var inconsistent *scheduler.InconsistencyError
		if errors.As(err, &inconsistent) {
			return nil, appErrors.Wrap(err, appErrors.ErrDataInconsistency.Code, appErrors.ErrDataInconsistency.Status, inconsistent.Error())
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "replan pipeline failed")
	}

	if err := s.commit(ctx, plan.Updates); err != nil {
		return nil, err
	}

	return &dto.RunReplanResponse{
		Scheduled:      plan.Scheduled,
		FixedCommitted: plan.FixedCommitted,
		Overflowed:     plan.Overflowed,
		PendingReview:  plan.PendingReview,
	}, nil
}

func (s *ReplanService) loadInput(ctx context.Context, now time.Time, horizonDays int) (*scheduler.Input, error) {
	techs, err := s.technicians.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load technicians")
	}

	techIDs := make([]string, 0, len(techs))
	for _, tech := range techs {
		techIDs = append(techIDs, tech.ID)
	}
	hours, err := s.technicians.ListDefaultHours(ctx, techIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load default hours")
	}
	hoursByTech := make(map[string][]models.DefaultHours, len(techs))
	for _, h := range hours {
		hoursByTech[h.TechnicianID] = append(hoursByTech[h.TechnicianID], h)
	}

	vans, err := s.equipment.ListVans(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vans")
	}
	vanEquipment, err := s.equipment.ListVanEquipment(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load van equipment")
	}
	vanByID := make(map[string]models.Van, len(vans))
	for _, van := range vans {
		van.Equipment = vanEquipment[van.ID]
		vanByID[van.ID] = van
	}

	for i := range techs {
		techs[i].DefaultHours = hoursByTech[techs[i].ID]
		if techs[i].AssignedVanID != nil {
			if van, ok := vanByID[*techs[i].AssignedVanID]; ok {
				v := van
				techs[i].Van = &v
			}
		}
	}

	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, horizonDays)
	exceptions, err := s.availability.ListExceptionsInRange(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability exceptions")
	}

	jobs, err := s.jobs.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load jobs")
	}

	orderIDs := make([]string, 0, len(jobs))
	seen := make(map[string]bool, len(jobs))
	for _, job := range jobs {
		if !seen[job.OrderID] {
			seen[job.OrderID] = true
			orderIDs = append(orderIDs, job.OrderID)
		}
	}
	orders, err := s.orders.FindByIDs(ctx, orderIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load orders")
	}
	orderByID := make(map[string]models.Order, len(orders))
	for _, order := range orders {
		orderByID[order.ID] = order
	}

	requirements, err := s.equipment.ListRequirements(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load equipment requirements")
	}

	return &scheduler.Input{
		Now:          now,
		Technicians:  techs,
		Exceptions:   exceptions,
		Jobs:         jobs,
		Orders:       orderByID,
		Requirements: requirements,
	}, nil
}

// commit applies every update atomically: either the whole plan lands, or
// none of it does.
func (s *ReplanService) commit(ctx context.Context, updates []models.JobScheduleUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.jobs.UpdateScheduleBatch(ctx, tx, updates); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist job updates")
		return err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit replan transaction")
		return err
	}
	return nil
}
