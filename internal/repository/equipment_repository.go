package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/JAMAutoLtd/customer-portal-sub001/internal/models"
)

// EquipmentRepository reads vans, their mounted equipment and the
// service/vehicle equipment requirement table.
type EquipmentRepository struct {
	db *sqlx.DB
}

// NewEquipmentRepository constructs an EquipmentRepository.
func NewEquipmentRepository(db *sqlx.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

// ListVans returns all vans without their equipment attached.
func (r *EquipmentRepository) ListVans(ctx context.Context) ([]models.Van, error) {
	const query = `SELECT id, name, created_at FROM vans ORDER BY id`
	var vans []models.Van
	if err := r.db.SelectContext(ctx, &vans, query); err != nil {
		return nil, fmt.Errorf("list vans: %w", err)
	}
	return vans, nil
}

type vanEquipmentRow struct {
	VanID string `db:"van_id"`
	models.Equipment
}

// ListVanEquipment returns the equipment mounted on each van.
func (r *EquipmentRepository) ListVanEquipment(ctx context.Context) (map[string][]models.Equipment, error) {
	const query = `SELECT ve.van_id, e.id, e.model, e.category
		FROM van_equipment ve
		JOIN equipment e ON e.id = ve.equipment_id
		ORDER BY ve.van_id, e.model`
	var rows []vanEquipmentRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list van equipment: %w", err)
	}
	result := make(map[string][]models.Equipment, len(rows))
	for _, row := range rows {
		result[row.VanID] = append(result[row.VanID], row.Equipment)
	}
	return result, nil
}

// ListRequirements returns the full equipment requirement table.
func (r *EquipmentRepository) ListRequirements(ctx context.Context) ([]models.EquipmentRequirement, error) {
	const query = `SELECT id, service_id, vehicle_year, vehicle_make, vehicle_model, equipment_model FROM equipment_requirements ORDER BY id`
	var requirements []models.EquipmentRequirement
	if err := r.db.SelectContext(ctx, &requirements, query); err != nil {
		return nil, fmt.Errorf("list equipment requirements: %w", err)
	}
	return requirements, nil
}
