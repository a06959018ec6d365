package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/sport-facilities/internal/application"
	"github.com/example/sport-facilities/internal/booking"
	"github.com/example/sport-facilities/internal/persistence"
)

var (
	userCounter        uint64
	facilityCounter    uint64
	reservationCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic user record that can be materialised
// for application or persistence tests.
type UserFixture struct {
	ID          string
	Email       string
	DisplayName string
	IsAdmin     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:          id,
		Email:       fmt.Sprintf("%s@example.com", id),
		DisplayName: fmt.Sprintf("User %03d", idx),
		IsAdmin:     false,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserAdmin sets the admin flag on the generated fixture.
func WithUserAdmin(isAdmin bool) UserOption {
	return func(f *UserFixture) {
		f.IsAdmin = isAdmin
	}
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:          f.ID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		IsAdmin:     f.IsAdmin,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, Email: f.Email, IsAdmin: f.IsAdmin}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:          f.ID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		IsAdmin:     f.IsAdmin,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// --------------------------- Facility fixtures ---------------------------

// FacilityFixture represents a deterministic sport facility record. By default
// the facility is open every day from 08:00 to 22:00.
type FacilityFixture struct {
	ID          string
	Name        string
	Location    string
	Description string
	Rules       []application.AvailabilityRule
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FacilityOption configures the generated facility fixture.
type FacilityOption func(*FacilityFixture)

// NewFacilityFixture returns a deterministic facility fixture with optional
// overrides.
func NewFacilityFixture(opts ...FacilityOption) FacilityFixture {
	idx := atomic.AddUint64(&facilityCounter, 1)
	id := fmt.Sprintf("facility-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := FacilityFixture{
		ID:          id,
		Name:        fmt.Sprintf("Facility %03d", idx),
		Location:    "Sports Centre",
		Rules:       OpenAllWeek("08:00", "22:00"),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithFacilityID overrides the generated facility ID.
func WithFacilityID(id string) FacilityOption {
	return func(f *FacilityFixture) {
		f.ID = id
	}
}

// WithFacilityName overrides the generated facility name.
func WithFacilityName(name string) FacilityOption {
	return func(f *FacilityFixture) {
		f.Name = name
	}
}

// WithFacilityRules replaces the generated availability rules.
func WithFacilityRules(rules []application.AvailabilityRule) FacilityOption {
	return func(f *FacilityFixture) {
		f.Rules = rules
	}
}

// Application returns the fixture as an application.Facility value.
func (f FacilityFixture) Application() application.Facility {
	return application.Facility{
		ID:          f.ID,
		Name:        f.Name,
		Location:    f.Location,
		Description: f.Description,
		Rules:       f.Rules,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Facility value.
func (f FacilityFixture) Persistence() persistence.Facility {
	rules := make([]persistence.AvailabilityRule, 0, len(f.Rules))
	for _, rule := range f.Rules {
		converted := persistence.AvailabilityRule{
			FacilityID:  f.ID,
			DayOfWeek:   rule.Day,
			IsAvailable: rule.IsAvailable,
		}
		if rule.Opens != nil {
			opens := rule.Opens.String()
			converted.OpeningTime = &opens
		}
		if rule.Closes != nil {
			closes := rule.Closes.String()
			converted.ClosingTime = &closes
		}
		rules = append(rules, converted)
	}
	return persistence.Facility{
		ID:          f.ID,
		Name:        f.Name,
		Location:    f.Location,
		Description: f.Description,
		Rules:       rules,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Input returns the fixture as an application.FacilityInput.
func (f FacilityFixture) Input() application.FacilityInput {
	return application.FacilityInput{
		Name:        f.Name,
		Location:    f.Location,
		Description: f.Description,
		Rules:       f.Rules,
	}
}

// OpenAllWeek builds a rule set that keeps the facility available every day
// between the supplied opening hours.
func OpenAllWeek(opens, closes string) []application.AvailabilityRule {
	openAt := booking.MustTimeOfDay(opens)
	closeAt := booking.MustTimeOfDay(closes)
	rules := make([]application.AvailabilityRule, 0, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		o, c := openAt, closeAt
		rules = append(rules, application.AvailabilityRule{
			Day:         day,
			IsAvailable: true,
			Opens:       &o,
			Closes:      &c,
		})
	}
	return rules
}

// Rule builds one availability rule. Empty opening hours produce a closed day.
func Rule(day time.Weekday, opens, closes string) application.AvailabilityRule {
	if opens == "" && closes == "" {
		return application.AvailabilityRule{Day: day, IsAvailable: false}
	}
	o := booking.MustTimeOfDay(opens)
	c := booking.MustTimeOfDay(closes)
	return application.AvailabilityRule{Day: day, IsAvailable: true, Opens: &o, Closes: &c}
}

// -------------------------- Reservation fixtures --------------------------

// ReservationFixture represents a deterministic reservation record.
type ReservationFixture struct {
	ID          string
	FacilityID  string
	UserID      string
	Start       time.Time
	End         time.Time
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ReservationOption configures the generated reservation fixture.
type ReservationOption func(*ReservationFixture)

// NewReservationFixture returns a deterministic reservation fixture with
// optional overrides. Successive fixtures occupy consecutive non-overlapping
// hour slots.
func NewReservationFixture(opts ...ReservationOption) ReservationFixture {
	idx := atomic.AddUint64(&reservationCounter, 1)
	id := fmt.Sprintf("reservation-%03d", idx)
	start := referenceTime.Add(time.Duration(idx) * 2 * time.Hour)
	fixture := ReservationFixture{
		ID:         id,
		FacilityID: "facility-001",
		UserID:     "user-001",
		Start:      start,
		End:        start.Add(time.Hour),
		CreatedAt:  referenceTime,
		UpdatedAt:  referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithReservationID overrides the generated reservation ID.
func WithReservationID(id string) ReservationOption {
	return func(f *ReservationFixture) {
		f.ID = id
	}
}

// WithReservationFacility overrides the facility the reservation belongs to.
func WithReservationFacility(facilityID string) ReservationOption {
	return func(f *ReservationFixture) {
		f.FacilityID = facilityID
	}
}

// WithReservationOwner overrides the owning user.
func WithReservationOwner(userID string) ReservationOption {
	return func(f *ReservationFixture) {
		f.UserID = userID
	}
}

// WithReservationDescription sets the free-text description.
func WithReservationDescription(description string) ReservationOption {
	return func(f *ReservationFixture) {
		f.Description = description
	}
}

// WithReservationInterval overrides the reserved interval.
func WithReservationInterval(start, end time.Time) ReservationOption {
	return func(f *ReservationFixture) {
		f.Start = start
		f.End = end
	}
}

// Application returns the fixture as an application.Reservation value.
func (f ReservationFixture) Application() application.Reservation {
	return application.Reservation{
		ID:          f.ID,
		FacilityID:  f.FacilityID,
		UserID:      f.UserID,
		Start:       f.Start,
		End:         f.End,
		Description: f.Description,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Reservation value.
func (f ReservationFixture) Persistence() persistence.Reservation {
	return persistence.Reservation{
		ID:          f.ID,
		FacilityID:  f.FacilityID,
		UserID:      f.UserID,
		Start:       f.Start.UTC(),
		End:         f.End.UTC(),
		Description: f.Description,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Input returns the fixture as an application.ReservationInput.
func (f ReservationFixture) Input() application.ReservationInput {
	return application.ReservationInput{
		FacilityID:  f.FacilityID,
		Start:       f.Start,
		End:         f.End,
		Description: f.Description,
	}
}
