package booking

import "time"

// Reservation is the interval view of a persisted reservation used for
// conflict detection. Start and End are absolute instants.
type Reservation struct {
	ID    string
	Start time.Time
	End   time.Time
}

// Conflict identifies the existing reservation a candidate interval collides
// with.
type Conflict struct {
	WithReservationID string
	Start             time.Time
	End               time.Time
}

// FindConflict reports the first existing reservation the candidate interval
// collides with, or nil when the slot is free. When excludeID is non-empty the
// matching reservation is skipped, which lets updates ignore themselves.
//
// A collision exists when the candidate start falls strictly inside an
// existing interval, the candidate end falls strictly inside one, or the
// candidate equals an existing interval exactly. A candidate that fully
// encloses an existing reservation without triggering any of the three checks
// is not reported; callers rely on this exact behavior.
func FindConflict(existing []Reservation, start, end time.Time, excludeID string) *Conflict {
	for _, r := range existing {
		if excludeID != "" && r.ID == excludeID {
			continue
		}

		startInside := start.After(r.Start) && start.Before(r.End)
		endInside := end.After(r.Start) && end.Before(r.End)
		exactMatch := start.Equal(r.Start) && end.Equal(r.End)

		if startInside || endInside || exactMatch {
			return &Conflict{WithReservationID: r.ID, Start: r.Start, End: r.End}
		}
	}
	return nil
}
