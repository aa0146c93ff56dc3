package models

import "time"

// Van is a service vehicle owning a set of mounted equipment.
type Van struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	Equipment []Equipment `db:"-" json:"equipment,omitempty"`
}

// Equipment is a tool identified by model name within a category
// (diagnostic, programming, immobilizer, airbag, ...).
type Equipment struct {
	ID       string `db:"id" json:"id"`
	Model    string `db:"model" json:"model"`
	Category string `db:"category" json:"category"`
}

// VanEquipment is the van-to-equipment assignment row.
type VanEquipment struct {
	VanID       string `db:"van_id" json:"van_id"`
	EquipmentID string `db:"equipment_id" json:"equipment_id"`
}

// EquipmentRequirement maps a (service, vehicle year/make/model) pair to the
// equipment model a van must carry to perform the job. Jobs whose service has
// no requirement row need no special equipment.
type EquipmentRequirement struct {
	ID             string `db:"id" json:"id"`
	ServiceID      string `db:"service_id" json:"service_id"`
	VehicleYear    int    `db:"vehicle_year" json:"vehicle_year"`
	VehicleMake    string `db:"vehicle_make" json:"vehicle_make"`
	VehicleModel   string `db:"vehicle_model" json:"vehicle_model"`
	EquipmentModel string `db:"equipment_model" json:"equipment_model"`
}
