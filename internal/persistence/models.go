package persistence

import "time"

// Facility represents a sport facility catalog entry.
type Facility struct {
	ID          string
	Name        string
	Location    string
	Description string
	Rules       []AvailabilityRule
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AvailabilityRule stores the opening hours of a facility for one weekday.
// OpeningTime and ClosingTime hold "HH:MM:SS" values and are nil when the
// facility is closed that day.
type AvailabilityRule struct {
	FacilityID  string
	DayOfWeek   time.Weekday
	IsAvailable bool
	OpeningTime *string
	ClosingTime *string
}

// Reservation represents a persisted booking. Start and End are absolute
// instants stored in UTC.
type Reservation struct {
	ID          string
	FacilityID  string
	UserID      string
	Start       time.Time
	End         time.Time
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// User represents an externally provisioned account, kept only for ownership
// attribution and notification addressing.
type User struct {
	ID          string
	Email       string
	DisplayName string
	IsAdmin     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
