// Package timezone resolves the facility operator's local zone and projects
// absolute instants onto its wall clock for availability checks.
package timezone

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/sport-facilities/internal/booking"
)

// Default identifiers for the operating region. The legacy alias serves as a
// fallback on runtimes whose zone database lacks the city-style entry.
const (
	DefaultZone         = "Europe/Warsaw"
	DefaultFallbackZone = "Poland"
)

// ErrZoneUnavailable is returned when neither zone identifier resolves. This
// is a configuration failure and fatal at startup.
var ErrZoneUnavailable = errors.New("timezone: no usable zone identifier")

// Normalizer converts absolute instants to the local weekday and time of day
// of the configured operating zone.
type Normalizer struct {
	loc *time.Location
}

// New resolves the primary identifier, then the fallback. Empty arguments use
// the package defaults.
func New(primary, fallback string) (*Normalizer, error) {
	if primary == "" {
		primary = DefaultZone
	}
	if fallback == "" {
		fallback = DefaultFallbackZone
	}

	loc, err := time.LoadLocation(primary)
	if err != nil {
		var fallbackErr error
		loc, fallbackErr = time.LoadLocation(fallback)
		if fallbackErr != nil {
			return nil, fmt.Errorf("%w: tried %q (%v) and %q (%v)", ErrZoneUnavailable, primary, err, fallback, fallbackErr)
		}
	}

	return &Normalizer{loc: loc}, nil
}

// Location exposes the resolved zone.
func (n *Normalizer) Location() *time.Location {
	if n == nil {
		return time.UTC
	}
	return n.loc
}

// Weekday returns the local weekday of the instant.
func (n *Normalizer) Weekday(t time.Time) time.Weekday {
	return t.In(n.Location()).Weekday()
}

// TimeOfDay returns the local wall-clock time of the instant.
func (n *Normalizer) TimeOfDay(t time.Time) booking.TimeOfDay {
	local := t.In(n.Location())
	return booking.TimeOfDay(local.Hour()*3600 + local.Minute()*60 + local.Second())
}
