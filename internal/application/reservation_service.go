package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/sport-facilities/internal/booking"
	"github.com/example/sport-facilities/internal/persistence"
)

// ReservationRepository captures the persistence interactions needed by the
// reservation service.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation Reservation) (Reservation, error)
	GetReservation(ctx context.Context, id string) (Reservation, error)
	UpdateReservation(ctx context.Context, reservation Reservation) (Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
	ListReservationsByFacility(ctx context.Context, facilityID string) ([]Reservation, error)
	ListReservations(ctx context.Context) ([]Reservation, error)
}

// FacilityDirectory exposes facility lookup with availability rules.
type FacilityDirectory interface {
	GetFacility(ctx context.Context, id string) (Facility, error)
}

// UserDirectory exposes user lookup for ownership attribution and
// notification addressing.
type UserDirectory interface {
	FindUser(ctx context.Context, id string) (User, error)
}

// Notifier accepts outbound notification mail. Implementations are
// best-effort; a returned error is logged by the caller and never propagated.
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// ReservationService orchestrates validation, persistence and notification
// for reservation lifecycle operations.
type ReservationService struct {
	reservations ReservationRepository
	facilities   FacilityDirectory
	users        UserDirectory
	notifier     Notifier
	validator    *booking.Validator
	zone         *time.Location
	locks        *facilityLocks
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewReservationService wires dependencies for reservation operations.
func NewReservationService(reservations ReservationRepository, facilities FacilityDirectory, users UserDirectory, notifier Notifier, validator *booking.Validator, zone *time.Location, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ReservationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if zone == nil {
		zone = time.UTC
	}
	return &ReservationService{
		reservations: reservations,
		facilities:   facilities,
		users:        users,
		notifier:     notifier,
		validator:    validator,
		zone:         zone,
		locks:        newFacilityLocks(),
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

// Create validates the requested interval against the facility's opening
// hours and sibling reservations, persists the reservation and emits a
// confirmation notification. The per-facility lock is held from rule loading
// through persistence.
func (s *ReservationService) Create(ctx context.Context, params CreateReservationParams) (Reservation, error) {
	if s == nil || s.reservations == nil {
		return Reservation{}, fmt.Errorf("reservation repository not configured")
	}

	logger := serviceLogger(ctx, s.logger, "reservations", "create", "facility_id", params.Input.FacilityID)

	release := s.locks.acquire(params.Input.FacilityID)
	defer release()

	facility, err := s.facilities.GetFacility(ctx, params.Input.FacilityID)
	if err != nil {
		return Reservation{}, mapRepoError(err)
	}

	siblings, err := s.reservations.ListReservationsByFacility(ctx, facility.ID)
	if err != nil {
		return Reservation{}, mapRepoError(err)
	}

	start := params.Input.Start.UTC()
	end := params.Input.End.UTC()

	if err := s.validator.Validate(bookingRules(facility.Rules), bookingIntervals(siblings), start, end, ""); err != nil {
		logger.InfoContext(ctx, "reservation rejected", "kind", ErrorKind(err))
		return Reservation{}, err
	}

	createdAt := s.now()
	reservation := Reservation{
		ID:          s.idGenerator(),
		FacilityID:  facility.ID,
		UserID:      params.Principal.UserID,
		Start:       start,
		End:         end,
		Description: params.Input.Description,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	persisted, err := s.reservations.CreateReservation(ctx, reservation)
	if err != nil {
		return Reservation{}, mapReservationWriteError(err)
	}

	persisted.UserEmail = s.resolveEmail(ctx, persisted.UserID)
	s.notify(ctx, logger, persisted.UserEmail, createdMail(facility.Name, persisted, s.zone))

	logger.InfoContext(ctx, "reservation created", "reservation_id", persisted.ID)
	return persisted, nil
}

// Update re-validates the new interval against all other reservations of the
// same facility and applies the change. A missing reservation and a
// reservation owned by someone else are indistinguishable to the caller.
func (s *ReservationService) Update(ctx context.Context, params UpdateReservationParams) (Reservation, error) {
	if s == nil || s.reservations == nil {
		return Reservation{}, fmt.Errorf("reservation repository not configured")
	}

	logger := serviceLogger(ctx, s.logger, "reservations", "update", "reservation_id", params.ReservationID)

	existing, err := s.reservations.GetReservation(ctx, params.ReservationID)
	if err != nil {
		return Reservation{}, mapRepoError(err)
	}
	if existing.UserID != params.Principal.UserID {
		return Reservation{}, ErrNotFound
	}

	release := s.locks.acquire(existing.FacilityID)
	defer release()

	facility, err := s.facilities.GetFacility(ctx, existing.FacilityID)
	if err != nil {
		return Reservation{}, mapRepoError(err)
	}

	siblings, err := s.reservations.ListReservationsByFacility(ctx, facility.ID)
	if err != nil {
		return Reservation{}, mapRepoError(err)
	}

	start := params.Input.Start.UTC()
	end := params.Input.End.UTC()

	if err := s.validator.Validate(bookingRules(facility.Rules), bookingIntervals(siblings), start, end, existing.ID); err != nil {
		logger.InfoContext(ctx, "reservation rejected", "kind", ErrorKind(err))
		return Reservation{}, err
	}

	updated := existing
	updated.Start = start
	updated.End = end
	updated.Description = params.Input.Description
	updated.UpdatedAt = s.now()

	persisted, err := s.reservations.UpdateReservation(ctx, updated)
	if err != nil {
		return Reservation{}, mapReservationWriteError(err)
	}

	persisted.UserEmail = s.resolveEmail(ctx, persisted.UserID)
	s.notify(ctx, logger, persisted.UserEmail, updatedMail(facility.Name, persisted, s.zone))

	logger.InfoContext(ctx, "reservation updated", "reservation_id", persisted.ID)
	return persisted, nil
}

// Delete removes a reservation. It reports true only when the reservation
// exists and the principal owns it; a missing reservation and a foreign one
// both yield false so existence is not leaked.
func (s *ReservationService) Delete(ctx context.Context, principal Principal, reservationID string) (bool, error) {
	if s == nil || s.reservations == nil {
		return false, fmt.Errorf("reservation repository not configured")
	}

	logger := serviceLogger(ctx, s.logger, "reservations", "delete", "reservation_id", reservationID)

	existing, err := s.reservations.GetReservation(ctx, reservationID)
	if err != nil {
		if errors.Is(mapRepoError(err), ErrNotFound) {
			return false, nil
		}
		return false, mapRepoError(err)
	}
	if existing.UserID != principal.UserID {
		return false, nil
	}

	if err := s.reservations.DeleteReservation(ctx, reservationID); err != nil {
		if errors.Is(mapRepoError(err), ErrNotFound) {
			return false, nil
		}
		return false, mapRepoError(err)
	}

	facilityName := existing.FacilityID
	if facility, err := s.facilities.GetFacility(ctx, existing.FacilityID); err == nil {
		facilityName = facility.Name
	}

	email := s.resolveEmail(ctx, existing.UserID)
	s.notify(ctx, logger, email, deletedMail(facilityName))

	logger.InfoContext(ctx, "reservation deleted")
	return true, nil
}

// ListByFacility returns the reservations of one facility, oldest start first.
func (s *ReservationService) ListByFacility(ctx context.Context, facilityID string) ([]Reservation, error) {
	if s == nil || s.reservations == nil {
		return nil, fmt.Errorf("reservation repository not configured")
	}

	reservations, err := s.reservations.ListReservationsByFacility(ctx, facilityID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return s.withEmails(ctx, reservations), nil
}

// ListAll returns every reservation, oldest start first.
func (s *ReservationService) ListAll(ctx context.Context) ([]Reservation, error) {
	if s == nil || s.reservations == nil {
		return nil, fmt.Errorf("reservation repository not configured")
	}

	reservations, err := s.reservations.ListReservations(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return s.withEmails(ctx, reservations), nil
}

// notify hands the mail to the notifier. Failures are logged and swallowed;
// they must never fail or roll back the reservation mutation.
func (s *ReservationService) notify(ctx context.Context, logger *slog.Logger, to string, mail notificationMail) {
	if s.notifier == nil || to == "" {
		return
	}
	if err := s.notifier.Send(ctx, to, mail.subject, mail.body); err != nil {
		logger.WarnContext(ctx, "notification failed", "error", err)
	}
}

func (s *ReservationService) resolveEmail(ctx context.Context, userID string) string {
	if s.users == nil {
		return ""
	}
	user, err := s.users.FindUser(ctx, userID)
	if err != nil {
		return ""
	}
	return user.Email
}

func (s *ReservationService) withEmails(ctx context.Context, reservations []Reservation) []Reservation {
	emails := make(map[string]string, 4)
	for i := range reservations {
		email, ok := emails[reservations[i].UserID]
		if !ok {
			email = s.resolveEmail(ctx, reservations[i].UserID)
			emails[reservations[i].UserID] = email
		}
		reservations[i].UserEmail = email
	}
	return reservations
}

func bookingRules(rules []AvailabilityRule) []booking.AvailabilityRule {
	out := make([]booking.AvailabilityRule, 0, len(rules))
	for _, rule := range rules {
		converted := booking.AvailabilityRule{Day: rule.Day, Available: rule.IsAvailable}
		if rule.Opens != nil {
			converted.Opens = *rule.Opens
		}
		if rule.Closes != nil {
			converted.Closes = *rule.Closes
		}
		out = append(out, converted)
	}
	return out
}

func bookingIntervals(reservations []Reservation) []booking.Reservation {
	out := make([]booking.Reservation, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, booking.Reservation{ID: r.ID, Start: r.Start, End: r.End})
	}
	return out
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// mapReservationWriteError additionally translates constraint failures. The
// reservations table carries a single CHECK, start before end, so the failure
// is reported as an invalid interval.
func mapReservationWriteError(err error) error {
	if errors.Is(err, persistence.ErrConstraintViolation) {
		return &booking.RejectionError{Reason: booking.ReasonInvalidInterval}
	}
	return mapRepoError(err)
}
