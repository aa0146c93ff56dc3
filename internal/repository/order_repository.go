package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/JAMAutoLtd/customer-portal-sub001/internal/models"
)

// OrderRepository reads customer orders with their vehicle and address.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository constructs an OrderRepository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// FindByIDs fetches the given orders and attaches vehicle and address
// records where present.
func (r *OrderRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, customer_id, address_id, vehicle_id, earliest_available, notes, created_at FROM orders WHERE id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("build orders query: %w", err)
	}
	query = r.db.Rebind(query)
	var orders []models.Order
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	var vehicleIDs, addressIDs []string
	for _, order := range orders {
		if order.VehicleID != nil {
			vehicleIDs = append(vehicleIDs, *order.VehicleID)
		}
		addressIDs = append(addressIDs, order.AddressID)
	}

	vehicles, err := r.findVehicles(ctx, vehicleIDs)
	if err != nil {
		return nil, err
	}
	addresses, err := r.findAddresses(ctx, addressIDs)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		if orders[i].VehicleID != nil {
			if v, ok := vehicles[*orders[i].VehicleID]; ok {
				vehicle := v
				orders[i].Vehicle = &vehicle
			}
		}
		if a, ok := addresses[orders[i].AddressID]; ok {
			address := a
			orders[i].Address = &address
		}
	}
	return orders, nil
}

func (r *OrderRepository) findVehicles(ctx context.Context, ids []string) (map[string]models.Vehicle, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, year, make, model, vin FROM vehicles WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build vehicles query: %w", err)
	}
	query = r.db.Rebind(query)
	var vehicles []models.Vehicle
	if err := r.db.SelectContext(ctx, &vehicles, query, args...); err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	result := make(map[string]models.Vehicle, len(vehicles))
	for _, v := range vehicles {
		result[v.ID] = v
	}
	return result, nil
}

func (r *OrderRepository) findAddresses(ctx context.Context, ids []string) (map[string]models.Address, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, street_address, lat, lng FROM addresses WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build addresses query: %w", err)
	}
	query = r.db.Rebind(query)
	var addresses []models.Address
	if err := r.db.SelectContext(ctx, &addresses, query, args...); err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	result := make(map[string]models.Address, len(addresses))
	for _, a := range addresses {
		result[a.ID] = a
	}
	return result, nil
}
