package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/JAMAutoLtd/customer-portal-sub001/internal/models"
)

// TechnicianRepository manages persistence for technicians and their
// recurring weekly hours.
type TechnicianRepository struct {
	db *sqlx.DB
}

// NewTechnicianRepository constructs a TechnicianRepository.
func NewTechnicianRepository(db *sqlx.DB) *TechnicianRepository {
	return &TechnicianRepository{db: db}
}

// ListActive returns every active technician.
func (r *TechnicianRepository) ListActive(ctx context.Context) ([]models.Technician, error) {
	const query = `SELECT id, name, home_address_id, assigned_van_id, active, created_at, updated_at FROM technicians WHERE active = TRUE ORDER BY id`
	var techs []models.Technician
	if err := r.db.SelectContext(ctx, &techs, query); err != nil {
		return nil, fmt.Errorf("list technicians: %w", err)
	}
	return techs, nil
}

// FindByID fetches a technician by ID.
func (r *TechnicianRepository) FindByID(ctx context.Context, id string) (*models.Technician, error) {
	const query = `SELECT id, name, home_address_id, assigned_van_id, active, created_at, updated_at FROM technicians WHERE id = $1`
	var tech models.Technician
	if err := r.db.GetContext(ctx, &tech, query, id); err != nil {
		return nil, err
	}
	return &tech, nil
}

// ListDefaultHours returns the recurring weekly hours for the given
// technicians, ordered for deterministic assembly.
func (r *TechnicianRepository) ListDefaultHours(ctx context.Context, technicianIDs []string) ([]models.DefaultHours, error) {
	if len(technicianIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, technician_id, day_of_week, start_time, end_time FROM technician_default_hours WHERE technician_id IN (?) ORDER BY technician_id, day_of_week, start_time`, technicianIDs)
	if err != nil {
		return nil, fmt.Errorf("build default hours query: %w", err)
	}
	query = r.db.Rebind(query)
	var hours []models.DefaultHours
	if err := r.db.SelectContext(ctx, &hours, query, args...); err != nil {
		return nil, fmt.Errorf("list default hours: %w", err)
	}
	return hours, nil
}
