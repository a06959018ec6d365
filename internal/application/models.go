package application

import (
	"time"

	"github.com/example/sport-facilities/internal/booking"
)

// Principal represents the identity the upstream authentication layer resolved
// for the current request. The core trusts it as-is.
type Principal struct {
	UserID  string
	Email   string
	IsAdmin bool
}

// AvailabilityRule is the application view of a facility's opening hours for
// one weekday. Opens and Closes are nil when the day is closed.
type AvailabilityRule struct {
	Day         time.Weekday
	IsAvailable bool
	Opens       *booking.TimeOfDay
	Closes      *booking.TimeOfDay
}

// Facility represents a sport facility with its weekly availability.
type Facility struct {
	ID          string
	Name        string
	Location    string
	Description string
	Rules       []AvailabilityRule
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FacilityInput captures caller provided facility fields.
type FacilityInput struct {
	Name        string
	Location    string
	Description string
	Rules       []AvailabilityRule
}

// CreateFacilityParams wraps the data required to create a facility.
type CreateFacilityParams struct {
	Principal Principal
	Input     FacilityInput
}

// UpdateFacilityParams wraps the data required to update a facility.
type UpdateFacilityParams struct {
	Principal  Principal
	FacilityID string
	Input      FacilityInput
}

// Reservation represents a persisted booking. Start and End are absolute
// instants in UTC; UserEmail is resolved from the user directory for read
// models and notifications.
type Reservation struct {
	ID          string
	FacilityID  string
	UserID      string
	UserEmail   string
	Start       time.Time
	End         time.Time
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ReservationInput captures caller provided reservation fields.
type ReservationInput struct {
	FacilityID  string
	Start       time.Time
	End         time.Time
	Description string
}

// CreateReservationParams wraps the data required to create a reservation.
type CreateReservationParams struct {
	Principal Principal
	Input     ReservationInput
}

// UpdateReservationParams wraps the data required to update a reservation.
// The facility cannot be changed; FacilityID on the input is ignored.
type UpdateReservationParams struct {
	Principal     Principal
	ReservationID string
	Input         ReservationInput
}

// User is the directory view of an externally managed account.
type User struct {
	ID          string
	Email       string
	DisplayName string
	IsAdmin     bool
}
