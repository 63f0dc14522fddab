package domain

import "time"

// Car is a vehicle listed by an owner. IsAvailable is a coarse manual toggle
// set by the owner; it is independent of date-range booking conflicts.
type Car struct {
	ID              string    `json:"_id" bson:"_id,omitempty"`
	Owner           string    `json:"owner" bson:"owner"`
	Brand           string    `json:"brand" bson:"brand"`
	Model           string    `json:"model" bson:"model"`
	Image           string    `json:"image" bson:"image"`
	Year            int       `json:"year" bson:"year"`
	Category        string    `json:"category" bson:"category"`
	SeatingCapacity int       `json:"seating_capacity" bson:"seating_capacity"`
	FuelType        string    `json:"fuel_type" bson:"fuel_type"`
	Transmission    string    `json:"transmission" bson:"transmission"`
	PricePerDay     float64   `json:"pricePerDay" bson:"pricePerDay"`
	Location        string    `json:"location" bson:"location"`
	Description     string    `json:"description" bson:"description"`
	IsAvailable     bool      `json:"isAvailable" bson:"isAvailable"`
	Features        []string  `json:"features" bson:"features"`
	Rating          float64   `json:"rating" bson:"rating"`
	TotalBookings   int       `json:"totalBookings" bson:"totalBookings"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updatedAt"`
}
