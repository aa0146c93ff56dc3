package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/JAMAutoLtd/customer-portal-sub001/internal/dto"
	"github.com/JAMAutoLtd/customer-portal-sub001/internal/models"
	appErrors "github.com/JAMAutoLtd/customer-portal-sub001/pkg/errors"
)

type jobLister interface {
	List(ctx context.Context, filter models.JobFilter) ([]models.Job, int, error)
	FindByID(ctx context.Context, id string) (*models.Job, error)
}

// JobService exposes read access to job state for the polling harness and
// back-office views. All scheduling mutations go through ReplanService.
type JobService struct {
	jobs jobLister
}

// NewJobService constructs a JobService.
func NewJobService(jobs jobLister) *JobService {
	return &JobService{jobs: jobs}
}

// List returns jobs matching the query with pagination metadata.
func (s *JobService) List(ctx context.Context, query dto.JobQuery) ([]models.Job, *models.Pagination, error) {
	if query.Status != "" && !models.JobStatus(query.Status).Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown job status filter")
	}
	filter := models.JobFilter{
		Status:     query.Status,
		Technician: query.Technician,
		OrderID:    query.OrderID,
		Date:       query.Date,
		Page:       query.Page,
		PageSize:   query.PageSize,
		SortBy:     query.SortBy,
		SortOrder:  query.SortOrder,
	}
	jobs, total, err := s.jobs.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list jobs")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return jobs, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single job by ID.
func (s *JobService) Get(ctx context.Context, id string) (*models.Job, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "job id is required")
	}
	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}
	return job, nil
}
