package models

import "time"

// Order is a customer request grouping one or more jobs at one address,
// optionally against one vehicle.
type Order struct {
	ID                string    `db:"id" json:"id"`
	CustomerID        string    `db:"customer_id" json:"customer_id"`
	AddressID         string    `db:"address_id" json:"address_id"`
	VehicleID         *string   `db:"vehicle_id" json:"vehicle_id"`
	EarliestAvailable time.Time `db:"earliest_available" json:"earliest_available"`
	Notes             string    `db:"notes" json:"notes"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`

	Vehicle *Vehicle `db:"-" json:"vehicle,omitempty"`
	Address *Address `db:"-" json:"address,omitempty"`
}

// Vehicle identifies the year/make/model tuple used for equipment
// requirement lookups.
type Vehicle struct {
	ID    string `db:"id" json:"id"`
	Year  int    `db:"year" json:"year"`
	Make  string `db:"make" json:"make"`
	Model string `db:"model" json:"model"`
	VIN   string `db:"vin" json:"vin"`
}

// Address is a service location.
type Address struct {
	ID            string   `db:"id" json:"id"`
	StreetAddress string   `db:"street_address" json:"street_address"`
	Lat           *float64 `db:"lat" json:"lat"`
	Lng           *float64 `db:"lng" json:"lng"`
}

// Service is a catalog entry jobs reference.
type Service struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"service_name" json:"service_name"`
	Category string `db:"service_category" json:"service_category"`
}
