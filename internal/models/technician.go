package models

import "time"

// Technician is a mobile field worker with recurring weekly hours and an
// optionally assigned van that determines the equipment they carry.
type Technician struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	HomeAddressID string    `db:"home_address_id" json:"home_address_id"`
	AssignedVanID *string   `db:"assigned_van_id" json:"assigned_van_id"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`

	DefaultHours []DefaultHours `db:"-" json:"default_hours,omitempty"`
	Van          *Van           `db:"-" json:"van,omitempty"`
}

// Equipment returns the union of equipment on the technician's assigned van.
// A technician without a van carries nothing.
func (t Technician) Equipment() []Equipment {
	if t.Van == nil {
		return nil
	}
	return t.Van.Equipment
}

// HasEquipmentModel reports whether the technician's van carries the model.
func (t Technician) HasEquipmentModel(model string) bool {
	if t.Van == nil {
		return false
	}
	for _, item := range t.Van.Equipment {
		if item.Model == model {
			return true
		}
	}
	return false
}

// DefaultHours is one recurring weekly working interval for a technician.
// DayOfWeek follows time.Weekday numbering (0 = Sunday).
type DefaultHours struct {
	ID           string `db:"id" json:"id"`
	TechnicianID string `db:"technician_id" json:"technician_id"`
	DayOfWeek    int    `db:"day_of_week" json:"day_of_week"`
	StartTime    string `db:"start_time" json:"start_time"`
	EndTime      string `db:"end_time" json:"end_time"`
}
