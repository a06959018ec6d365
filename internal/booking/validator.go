package booking

import (
	"fmt"
	"time"
)

// Reason labels why a candidate interval was rejected.
type Reason string

const (
	// ReasonInvalidInterval indicates the candidate start is not before its end.
	ReasonInvalidInterval Reason = "invalid_interval"
	// ReasonNotAvailableThisDay indicates the facility is closed on the local weekday.
	ReasonNotAvailableThisDay Reason = "not_available_this_day"
	// ReasonOutsideOpeningHours indicates the candidate leaves the opening window.
	ReasonOutsideOpeningHours Reason = "outside_opening_hours"
	// ReasonOverlap indicates the candidate collides with an existing reservation.
	ReasonOverlap Reason = "overlap"
)

// RejectionError is the typed outcome of a failed validation. Overlap
// rejections carry the conflicting reservation.
type RejectionError struct {
	Reason   Reason
	Conflict *Conflict
}

// Error implements the error interface.
func (e *RejectionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Conflict != nil {
		return fmt.Sprintf("booking: rejected (%s) by reservation %s", e.Reason, e.Conflict.WithReservationID)
	}
	return fmt.Sprintf("booking: rejected (%s)", e.Reason)
}

// Localizer projects an absolute instant onto the facility's local wall clock.
type Localizer interface {
	Weekday(t time.Time) time.Weekday
	TimeOfDay(t time.Time) TimeOfDay
}

// Validator decides whether a candidate interval is legal for a facility and
// free of collisions with its existing reservations. It is pure: all state is
// passed in, nothing is mutated.
type Validator struct {
	local Localizer
}

// NewValidator builds a validator around the process-wide zone normalizer.
func NewValidator(local Localizer) *Validator {
	return &Validator{local: local}
}

// Validate checks the candidate interval against the facility's availability
// rules and its sibling reservations. It returns nil when the interval is
// acceptable and a *RejectionError otherwise. Reservations are compared as
// absolute instants; only the availability window uses the localized weekday
// and time of day of the candidate.
func (v *Validator) Validate(rules []AvailabilityRule, existing []Reservation, start, end time.Time, excludeID string) error {
	if v == nil || v.local == nil {
		return fmt.Errorf("booking: validator not configured")
	}

	if !start.Before(end) {
		return &RejectionError{Reason: ReasonInvalidInterval}
	}

	rule, ok := ruleForDay(rules, v.local.Weekday(start))
	if !ok || !rule.Available {
		return &RejectionError{Reason: ReasonNotAvailableThisDay}
	}

	if v.local.TimeOfDay(start) < rule.Opens || v.local.TimeOfDay(end) > rule.Closes {
		return &RejectionError{Reason: ReasonOutsideOpeningHours}
	}

	if conflict := FindConflict(existing, start.UTC(), end.UTC(), excludeID); conflict != nil {
		return &RejectionError{Reason: ReasonOverlap, Conflict: conflict}
	}

	return nil
}
