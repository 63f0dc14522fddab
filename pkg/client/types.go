package client

import "time"

// User is an account as returned by the API.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Image    string `json:"image,omitempty"`
	IsActive bool   `json:"isActive"`
}

// Car is a catalogue entry as returned by the API.
type Car struct {
	ID              string   `json:"_id"`
	Owner           string   `json:"owner"`
	Brand           string   `json:"brand"`
	Model           string   `json:"model"`
	Image           string   `json:"image"`
	Year            int      `json:"year"`
	Category        string   `json:"category"`
	SeatingCapacity int      `json:"seating_capacity"`
	FuelType        string   `json:"fuel_type"`
	Transmission    string   `json:"transmission"`
	PricePerDay     float64  `json:"pricePerDay"`
	Location        string   `json:"location"`
	Description     string   `json:"description"`
	IsAvailable     bool     `json:"isAvailable"`
	Features        []string `json:"features"`
}

// DateRange is an occupied day interval on a car's calendar.
type DateRange struct {
	PickupDate time.Time `json:"pickupDate"`
	ReturnDate time.Time `json:"returnDate"`
}

// Booking is a rental transaction as returned by the API.
type Booking struct {
	ID         string    `json:"_id"`
	Car        string    `json:"car"`
	User       string    `json:"user"`
	Owner      string    `json:"owner"`
	PickupDate time.Time `json:"pickupDate"`
	ReturnDate time.Time `json:"returnDate"`
	Price      float64   `json:"price"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	CarDetails *Car      `json:"carDetails,omitempty"`
}

// Availability is the result of a non-reserving availability check.
type Availability struct {
	Available    bool
	BookedRanges []DateRange
}
