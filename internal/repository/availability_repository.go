package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/JAMAutoLtd/customer-portal-sub001/internal/models"
)

// AvailabilityRepository reads date-specific availability exceptions.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs an AvailabilityRepository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// ListExceptionsInRange returns every exception whose date falls within
// [from, to], across all technicians. The engine loads the full lookahead
// horizon in one query.
func (r *AvailabilityRepository) ListExceptionsInRange(ctx context.Context, from, to time.Time) ([]models.AvailabilityException, error) {
	const query = `SELECT id, technician_id, exception_date, is_available, start_time, end_time, reason, created_at
		FROM technician_availability_exceptions
		WHERE exception_date >= $1 AND exception_date <= $2
		ORDER BY technician_id, exception_date`
	var exceptions []models.AvailabilityException
	if err := r.db.SelectContext(ctx, &exceptions, query, from, to); err != nil {
		return nil, fmt.Errorf("list availability exceptions: %w", err)
	}
	return exceptions, nil
}
