package persistence

import "context"

// FacilityRepository exposes CRUD operations for facilities and their
// availability rules. Rules travel embedded in the Facility model.
type FacilityRepository interface {
	CreateFacility(ctx context.Context, facility Facility) error
	UpdateFacility(ctx context.Context, facility Facility) error
	GetFacility(ctx context.Context, id string) (Facility, error)
	ListFacilities(ctx context.Context) ([]Facility, error)
	DeleteFacility(ctx context.Context, id string) error
}

// ReservationRepository stores reservation entries.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation Reservation) error
	UpdateReservation(ctx context.Context, reservation Reservation) error
	GetReservation(ctx context.Context, id string) (Reservation, error)
	ListReservationsByFacility(ctx context.Context, facilityID string) ([]Reservation, error)
	ListReservations(ctx context.Context) ([]Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
}

// UserRepository exposes the narrow user contract the reservation core needs.
// Accounts are provisioned by the external identity system.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
}
