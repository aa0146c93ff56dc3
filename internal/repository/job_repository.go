package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/JAMAutoLtd/customer-portal-sub001/internal/models"
)

const jobColumns = `id, order_id, service_id, address_id, priority, duration_minutes, status, assigned_technician, estimated_sched, fixed_assignment, fixed_schedule_time, notes, created_at, updated_at`

// JobRepository manages persistence for jobs. The replan engine only ever
// writes status, assigned_technician and estimated_sched; every other
// column is caller-supplied and read-only here.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository constructs a JobRepository.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

// ListActive returns every job the replan pipeline must consider: the
// optimizable pool plus locked and fixed jobs whose slots become obstacles.
func (r *JobRepository) ListActive(ctx context.Context) ([]models.Job, error) {
	query := fmt.Sprintf(`SELECT %s FROM jobs WHERE status IN ($1, $2, $3, $4) ORDER BY created_at, id`, jobColumns)
	var jobs []models.Job
	if err := r.db.SelectContext(ctx, &jobs, query,
		models.JobStatusQueued, models.JobStatusFixedTime, models.JobStatusEnRoute, models.JobStatusInProgress); err != nil {
		return nil, fmt.Errorf("list active jobs: %w", err)
	}
	return jobs, nil
}

// FindByID fetches a job by ID.
func (r *JobRepository) FindByID(ctx context.Context, id string) (*models.Job, error) {
	query := fmt.Sprintf(`SELECT %s FROM jobs WHERE id = $1`, jobColumns)
	var job models.Job
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, err
	}
	return &job, nil
}

// List returns jobs matching filters along with total count.
func (r *JobRepository) List(ctx context.Context, filter models.JobFilter) ([]models.Job, int, error) {
	base := "FROM jobs WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Technician != "" {
		conditions = append(conditions, fmt.Sprintf("assigned_technician = $%d", len(args)+1))
		args = append(args, filter.Technician)
	}
	if filter.OrderID != "" {
		conditions = append(conditions, fmt.Sprintf("order_id = $%d", len(args)+1))
		args = append(args, filter.OrderID)
	}
	if filter.Date != "" {
		conditions = append(conditions, fmt.Sprintf("estimated_sched::date = $%d", len(args)+1))
		args = append(args, filter.Date)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"priority":        "priority",
		"estimated_sched": "estimated_sched",
		"created_at":      "created_at",
		"updated_at":      "updated_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "created_at"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", jobColumns, base, column, order, size, offset)
	var jobs []models.Job
	if err := r.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	return jobs, total, nil
}

// UpdateScheduleBatch writes the engine's three columns for each computed
// update inside the caller's transaction.
func (r *JobRepository) UpdateScheduleBatch(ctx context.Context, exec sqlx.ExtContext, updates []models.JobScheduleUpdate) error {
	const query = `UPDATE jobs SET status = $1, assigned_technician = $2, estimated_sched = $3, updated_at = $4 WHERE id = $5`
	now := time.Now().UTC()
	for _, update := range updates {
		if _, err := exec.ExecContext(ctx, query, update.Status, update.AssignedTechnician, update.EstimatedSched, now, update.JobID); err != nil {
			return fmt.Errorf("update job %s schedule: %w", update.JobID, err)
		}
	}
	return nil
}
