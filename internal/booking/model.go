package booking

import (
	"time"

	"github.com/cityparkhub/parkctl/internal/pkg/apperror"
)

var (
	ErrNoSpot         = apperror.New(apperror.KindValidation, "A parking spot must be selected")
	ErrEndBeforeStart = apperror.New(apperror.KindValidation, "End time must be after start time")
	ErrStartInPast    = apperror.New(apperror.KindValidation, "Booking cannot start in the past")
	ErrSubmitInFlight = apperror.New(apperror.KindValidation, "A booking submission is already in progress")
	ErrInvalidHours   = apperror.New(apperror.KindValidation, "Additional hours must be positive")
	ErrNotFound       = apperror.New(apperror.KindValidation, "Booking not found")
)

// Status is the server-owned booking lifecycle state. The client never
// transitions it directly except via a cancel request.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusUpcoming  Status = "upcoming"
	StatusCancelled Status = "cancelled"
)

// Booking is the server-owned read side of a booking. The client only ever
// reads it back via list fetches after creation.
type Booking struct {
	ID             int       `json:"id"`
	DriverID       int       `json:"driver_id,omitempty"`
	ParkingSpaceID int       `json:"parking_space_id"`
	Location       string    `json:"location,omitempty"`
	Address        string    `json:"address,omitempty"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	DurationHours  float64   `json:"duration_hours"`
	Status         Status    `json:"status"`
	PaymentMethod  string    `json:"payment_method,omitempty"`
	Price          string    `json:"price,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// CreateBookingRequest is the wire payload for booking creation. The spot
// field is canonically named parking_space_id; timestamps are UTC ISO 8601
// produced by FormatTimestamp, never naive local-time strings.
type CreateBookingRequest struct {
	ParkingSpaceID int    `json:"parking_space_id" validate:"required,gt=0"`
	StartTime      string `json:"start_time" validate:"required"`
	EndTime        string `json:"end_time" validate:"required"`
	DurationHours  int    `json:"duration_hours"`
}

// UpdateBookingRequest is the wire payload for a partial booking update.
type UpdateBookingRequest struct {
	StartTime     *string `json:"start_time,omitempty"`
	EndTime       *string `json:"end_time,omitempty"`
	DurationHours *int    `json:"duration_hours,omitempty"`
}
