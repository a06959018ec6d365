package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/sport-facilities/internal/booking"
	"github.com/example/sport-facilities/internal/persistence"
)

type utcLocalizer struct{}

func (utcLocalizer) Weekday(t time.Time) time.Weekday {
	return t.UTC().Weekday()
}

func (utcLocalizer) TimeOfDay(t time.Time) booking.TimeOfDay {
	utc := t.UTC()
	return booking.TimeOfDay(utc.Hour()*3600 + utc.Minute()*60 + utc.Second())
}

type reservationRepoStub struct {
	mu    sync.Mutex
	store map[string]Reservation

	createErr error
	getErr    error
	updateErr error
	deleteErr error
	listErr   error
}

func newReservationRepoStub(seed ...Reservation) *reservationRepoStub {
	stub := &reservationRepoStub{store: make(map[string]Reservation)}
	for _, reservation := range seed {
		stub.store[reservation.ID] = reservation
	}
	return stub
}

func (r *reservationRepoStub) CreateReservation(ctx context.Context, reservation Reservation) (Reservation, error) {
	if r.createErr != nil {
		return Reservation{}, r.createErr
	}
	r.mu.Lock()
	r.store[reservation.ID] = reservation
	r.mu.Unlock()
	return reservation, nil
}

func (r *reservationRepoStub) GetReservation(ctx context.Context, id string) (Reservation, error) {
	if r.getErr != nil {
		return Reservation{}, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	reservation, ok := r.store[id]
	if !ok {
		return Reservation{}, persistence.ErrNotFound
	}
	return reservation, nil
}

func (r *reservationRepoStub) UpdateReservation(ctx context.Context, reservation Reservation) (Reservation, error) {
	if r.updateErr != nil {
		return Reservation{}, r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[reservation.ID]; !ok {
		return Reservation{}, persistence.ErrNotFound
	}
	r.store[reservation.ID] = reservation
	return reservation, nil
}

func (r *reservationRepoStub) DeleteReservation(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.store, id)
	return nil
}

func (r *reservationRepoStub) ListReservationsByFacility(ctx context.Context, facilityID string) ([]Reservation, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Reservation, 0, len(r.store))
	for _, reservation := range r.store {
		if reservation.FacilityID == facilityID {
			out = append(out, reservation)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (r *reservationRepoStub) ListReservations(ctx context.Context) ([]Reservation, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Reservation, 0, len(r.store))
	for _, reservation := range r.store {
		out = append(out, reservation)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

type facilityDirectoryStub struct {
	facilities map[string]Facility
	err        error
}

func (f *facilityDirectoryStub) GetFacility(ctx context.Context, id string) (Facility, error) {
	if f.err != nil {
		return Facility{}, f.err
	}
	facility, ok := f.facilities[id]
	if !ok {
		return Facility{}, persistence.ErrNotFound
	}
	return facility, nil
}

type userDirectoryStub struct {
	users map[string]User
	err   error
}

func (u *userDirectoryStub) FindUser(ctx context.Context, id string) (User, error) {
	if u.err != nil {
		return User{}, u.err
	}
	user, ok := u.users[id]
	if !ok {
		return User{}, persistence.ErrNotFound
	}
	return user, nil
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type notifierStub struct {
	mu    sync.Mutex
	sends []sentMail
	err   error
}

func (n *notifierStub) Send(ctx context.Context, to, subject, htmlBody string) error {
	n.mu.Lock()
	n.sends = append(n.sends, sentMail{to: to, subject: subject, body: htmlBody})
	n.mu.Unlock()
	return n.err
}

func (n *notifierStub) sent() []sentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]sentMail, len(n.sends))
	copy(out, n.sends)
	return out
}

func openWeek() []AvailabilityRule {
	opens := booking.MustTimeOfDay("08:00")
	closes := booking.MustTimeOfDay("22:00")
	rules := make([]AvailabilityRule, 0, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		o, c := opens, closes
		rules = append(rules, AvailabilityRule{Day: day, IsAvailable: true, Opens: &o, Closes: &c})
	}
	return rules
}

func testFacility(id string) Facility {
	return Facility{ID: id, Name: "Hala Sportowa", Rules: openWeek()}
}

func newTestReservationService(repo *reservationRepoStub, facilities *facilityDirectoryStub, users *userDirectoryStub, notifier Notifier) *ReservationService {
	ids := 0
	idGenerator := func() string {
		ids++
		return fmt.Sprintf("generated-%d", ids)
	}
	now := func() time.Time { return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC) }
	return NewReservationService(repo, facilities, users, notifier, booking.NewValidator(utcLocalizer{}), time.UTC, idGenerator, now, nil)
}

func slot(hour int) (time.Time, time.Time) {
	start := time.Date(2024, time.June, 10, hour, 0, 0, 0, time.UTC)
	return start, start.Add(time.Hour)
}

func TestReservationService_Create(t *testing.T) {
	owner := Principal{UserID: "user-1", Email: "user-1@example.com"}
	facilities := &facilityDirectoryStub{facilities: map[string]Facility{"fac-1": testFacility("fac-1")}}
	users := &userDirectoryStub{users: map[string]User{"user-1": {ID: "user-1", Email: "user-1@example.com"}}}

	t.Run("persists a valid reservation and notifies the owner", func(t *testing.T) {
		repo := newReservationRepoStub()
		notifier := &notifierStub{}
		svc := newTestReservationService(repo, facilities, users, notifier)

		start, end := slot(10)
		reservation, err := svc.Create(context.Background(), CreateReservationParams{
			Principal: owner,
			Input:     ReservationInput{FacilityID: "fac-1", Start: start, End: end, Description: "trening"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if reservation.ID == "" {
			t.Fatal("expected generated reservation id")
		}
		if reservation.UserID != "user-1" {
			t.Fatalf("owner %s, want user-1", reservation.UserID)
		}
		if !reservation.Start.Equal(start) || !reservation.End.Equal(end) {
			t.Fatalf("stored interval %v-%v", reservation.Start, reservation.End)
		}
		if reservation.UserEmail != "user-1@example.com" {
			t.Fatalf("email %q, want user-1@example.com", reservation.UserEmail)
		}

		sends := notifier.sent()
		if len(sends) != 1 {
			t.Fatalf("expected one notification, got %d", len(sends))
		}
		if sends[0].to != "user-1@example.com" {
			t.Fatalf("notification to %q", sends[0].to)
		}
		if !strings.HasPrefix(sends[0].subject, "Potwierdzenie rezerwacji w ") {
			t.Fatalf("subject %q", sends[0].subject)
		}
		if !strings.Contains(sends[0].subject, "Hala Sportowa") {
			t.Fatalf("subject %q misses facility name", sends[0].subject)
		}
	})

	t.Run("rejects an overlapping sibling", func(t *testing.T) {
		start, end := slot(10)
		repo := newReservationRepoStub(Reservation{ID: "res-1", FacilityID: "fac-1", UserID: "user-2", Start: start, End: end})
		notifier := &notifierStub{}
		svc := newTestReservationService(repo, facilities, users, notifier)

		_, err := svc.Create(context.Background(), CreateReservationParams{
			Principal: owner,
			Input:     ReservationInput{FacilityID: "fac-1", Start: start.Add(30 * time.Minute), End: end.Add(30 * time.Minute)},
		})

		var rErr *booking.RejectionError
		if !errors.As(err, &rErr) || rErr.Reason != booking.ReasonOverlap {
			t.Fatalf("expected overlap rejection, got %v", err)
		}
		if rErr.Conflict == nil || rErr.Conflict.WithReservationID != "res-1" {
			t.Fatalf("conflict %+v, want res-1", rErr.Conflict)
		}
		if len(notifier.sent()) != 0 {
			t.Fatal("rejected reservation must not notify")
		}
	})

	t.Run("rejects a closed day", func(t *testing.T) {
		closedSunday := testFacility("fac-1")
		closedSunday.Rules[0] = AvailabilityRule{Day: time.Sunday, IsAvailable: false}
		directory := &facilityDirectoryStub{facilities: map[string]Facility{"fac-1": closedSunday}}
		svc := newTestReservationService(newReservationRepoStub(), directory, users, &notifierStub{})

		// 2024-06-09 is a Sunday.
		start := time.Date(2024, time.June, 9, 10, 0, 0, 0, time.UTC)
		_, err := svc.Create(context.Background(), CreateReservationParams{
			Principal: owner,
			Input:     ReservationInput{FacilityID: "fac-1", Start: start, End: start.Add(time.Hour)},
		})

		var rErr *booking.RejectionError
		if !errors.As(err, &rErr) || rErr.Reason != booking.ReasonNotAvailableThisDay {
			t.Fatalf("expected closed day rejection, got %v", err)
		}
	})

	t.Run("rejects an inverted interval", func(t *testing.T) {
		svc := newTestReservationService(newReservationRepoStub(), facilities, users, &notifierStub{})

		start, end := slot(10)
		_, err := svc.Create(context.Background(), CreateReservationParams{
			Principal: owner,
			Input:     ReservationInput{FacilityID: "fac-1", Start: end, End: start},
		})

		var rErr *booking.RejectionError
		if !errors.As(err, &rErr) || rErr.Reason != booking.ReasonInvalidInterval {
			t.Fatalf("expected invalid interval rejection, got %v", err)
		}
	})

	t.Run("maps a storage interval check to a rejection", func(t *testing.T) {
		repo := newReservationRepoStub()
		repo.createErr = persistence.ErrConstraintViolation
		svc := newTestReservationService(repo, facilities, users, &notifierStub{})

		start, end := slot(10)
		_, err := svc.Create(context.Background(), CreateReservationParams{
			Principal: owner,
			Input:     ReservationInput{FacilityID: "fac-1", Start: start, End: end},
		})

		var rErr *booking.RejectionError
		if !errors.As(err, &rErr) || rErr.Reason != booking.ReasonInvalidInterval {
			t.Fatalf("expected invalid interval rejection, got %v", err)
		}
	})

	t.Run("reports a missing facility as not found", func(t *testing.T) {
		svc := newTestReservationService(newReservationRepoStub(), facilities, users, &notifierStub{})

		start, end := slot(10)
		_, err := svc.Create(context.Background(), CreateReservationParams{
			Principal: owner,
			Input:     ReservationInput{FacilityID: "missing", Start: start, End: end},
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("succeeds even when the notifier fails", func(t *testing.T) {
		repo := newReservationRepoStub()
		notifier := &notifierStub{err: errors.New("smtp down")}
		svc := newTestReservationService(repo, facilities, users, notifier)

		start, end := slot(10)
		reservation, err := svc.Create(context.Background(), CreateReservationParams{
			Principal: owner,
			Input:     ReservationInput{FacilityID: "fac-1", Start: start, End: end},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, getErr := repo.GetReservation(context.Background(), reservation.ID); getErr != nil {
			t.Fatalf("reservation not persisted: %v", getErr)
		}
	})
}

func TestReservationService_Update(t *testing.T) {
	owner := Principal{UserID: "user-1"}
	facilities := &facilityDirectoryStub{facilities: map[string]Facility{"fac-1": testFacility("fac-1")}}
	users := &userDirectoryStub{users: map[string]User{"user-1": {ID: "user-1", Email: "user-1@example.com"}}}

	seed := func() (*reservationRepoStub, Reservation) {
		start, end := slot(10)
		reservation := Reservation{ID: "res-1", FacilityID: "fac-1", UserID: "user-1", Start: start, End: end}
		return newReservationRepoStub(reservation), reservation
	}

	t.Run("moves the reservation to a free slot", func(t *testing.T) {
		repo, _ := seed()
		notifier := &notifierStub{}
		svc := newTestReservationService(repo, facilities, users, notifier)

		newStart, newEnd := slot(12)
		updated, err := svc.Update(context.Background(), UpdateReservationParams{
			Principal:     owner,
			ReservationID: "res-1",
			Input:         ReservationInput{Start: newStart, End: newEnd, Description: "przeniesione"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !updated.Start.Equal(newStart) || !updated.End.Equal(newEnd) {
			t.Fatalf("interval %v-%v", updated.Start, updated.End)
		}

		sends := notifier.sent()
		if len(sends) != 1 || !strings.HasPrefix(sends[0].subject, "Zmiana rezerwacji w ") {
			t.Fatalf("notifications %+v", sends)
		}
	})

	t.Run("keeping its own slot is not a collision", func(t *testing.T) {
		repo, reservation := seed()
		svc := newTestReservationService(repo, facilities, users, &notifierStub{})

		_, err := svc.Update(context.Background(), UpdateReservationParams{
			Principal:     owner,
			ReservationID: "res-1",
			Input:         ReservationInput{Start: reservation.Start, End: reservation.End},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("rejects a move onto another reservation", func(t *testing.T) {
		repo, _ := seed()
		blockStart, blockEnd := slot(12)
		if _, err := repo.CreateReservation(context.Background(), Reservation{ID: "res-2", FacilityID: "fac-1", UserID: "user-2", Start: blockStart, End: blockEnd}); err != nil {
			t.Fatalf("seed: %v", err)
		}
		svc := newTestReservationService(repo, facilities, users, &notifierStub{})

		_, err := svc.Update(context.Background(), UpdateReservationParams{
			Principal:     owner,
			ReservationID: "res-1",
			Input:         ReservationInput{Start: blockStart, End: blockEnd},
		})

		var rErr *booking.RejectionError
		if !errors.As(err, &rErr) || rErr.Reason != booking.ReasonOverlap {
			t.Fatalf("expected overlap rejection, got %v", err)
		}
	})

	t.Run("hides reservations owned by someone else", func(t *testing.T) {
		repo, reservation := seed()
		svc := newTestReservationService(repo, facilities, users, &notifierStub{})

		_, err := svc.Update(context.Background(), UpdateReservationParams{
			Principal:     Principal{UserID: "user-2"},
			ReservationID: "res-1",
			Input:         ReservationInput{Start: reservation.Start, End: reservation.End},
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("reports a missing reservation as not found", func(t *testing.T) {
		repo, _ := seed()
		svc := newTestReservationService(repo, facilities, users, &notifierStub{})

		start, end := slot(14)
		_, err := svc.Update(context.Background(), UpdateReservationParams{
			Principal:     owner,
			ReservationID: "missing",
			Input:         ReservationInput{Start: start, End: end},
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestReservationService_Delete(t *testing.T) {
	owner := Principal{UserID: "user-1"}
	facilities := &facilityDirectoryStub{facilities: map[string]Facility{"fac-1": testFacility("fac-1")}}
	users := &userDirectoryStub{users: map[string]User{"user-1": {ID: "user-1", Email: "user-1@example.com"}}}

	seed := func() *reservationRepoStub {
		start, end := slot(10)
		return newReservationRepoStub(Reservation{ID: "res-1", FacilityID: "fac-1", UserID: "user-1", Start: start, End: end})
	}

	t.Run("removes an owned reservation and notifies", func(t *testing.T) {
		repo := seed()
		notifier := &notifierStub{}
		svc := newTestReservationService(repo, facilities, users, notifier)

		deleted, err := svc.Delete(context.Background(), owner, "res-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !deleted {
			t.Fatal("expected deletion")
		}
		if _, getErr := repo.GetReservation(context.Background(), "res-1"); !errors.Is(getErr, persistence.ErrNotFound) {
			t.Fatalf("reservation still stored: %v", getErr)
		}

		sends := notifier.sent()
		if len(sends) != 1 || !strings.HasPrefix(sends[0].subject, "Usunięcie rezerwacji w ") {
			t.Fatalf("notifications %+v", sends)
		}
	})

	t.Run("reports false for a missing reservation", func(t *testing.T) {
		svc := newTestReservationService(seed(), facilities, users, &notifierStub{})

		deleted, err := svc.Delete(context.Background(), owner, "missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if deleted {
			t.Fatal("expected no deletion")
		}
	})

	t.Run("reports false for a foreign reservation", func(t *testing.T) {
		repo := seed()
		notifier := &notifierStub{}
		svc := newTestReservationService(repo, facilities, users, notifier)

		deleted, err := svc.Delete(context.Background(), Principal{UserID: "user-2"}, "res-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if deleted {
			t.Fatal("expected no deletion")
		}
		if _, getErr := repo.GetReservation(context.Background(), "res-1"); getErr != nil {
			t.Fatalf("reservation should survive: %v", getErr)
		}
		if len(notifier.sent()) != 0 {
			t.Fatal("no notification expected")
		}
	})
}

func TestReservationService_Listing(t *testing.T) {
	facilities := &facilityDirectoryStub{facilities: map[string]Facility{"fac-1": testFacility("fac-1")}}
	users := &userDirectoryStub{users: map[string]User{
		"user-1": {ID: "user-1", Email: "user-1@example.com"},
		"user-2": {ID: "user-2", Email: "user-2@example.com"},
	}}

	start1, end1 := slot(10)
	start2, end2 := slot(12)
	repo := newReservationRepoStub(
		Reservation{ID: "res-1", FacilityID: "fac-1", UserID: "user-1", Start: start1, End: end1},
		Reservation{ID: "res-2", FacilityID: "fac-1", UserID: "user-2", Start: start2, End: end2},
		Reservation{ID: "res-3", FacilityID: "fac-2", UserID: "user-1", Start: start1, End: end1},
	)
	svc := newTestReservationService(repo, facilities, users, &notifierStub{})

	t.Run("by facility resolves owner emails", func(t *testing.T) {
		reservations, err := svc.ListByFacility(context.Background(), "fac-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(reservations) != 2 {
			t.Fatalf("got %d reservations, want 2", len(reservations))
		}
		if reservations[0].ID != "res-1" || reservations[1].ID != "res-2" {
			t.Fatalf("order %s, %s", reservations[0].ID, reservations[1].ID)
		}
		if reservations[0].UserEmail != "user-1@example.com" || reservations[1].UserEmail != "user-2@example.com" {
			t.Fatalf("emails %q, %q", reservations[0].UserEmail, reservations[1].UserEmail)
		}
	})

	t.Run("all spans facilities", func(t *testing.T) {
		reservations, err := svc.ListAll(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(reservations) != 3 {
			t.Fatalf("got %d reservations, want 3", len(reservations))
		}
	})

	t.Run("unknown owner leaves the email empty", func(t *testing.T) {
		orphanRepo := newReservationRepoStub(Reservation{ID: "res-9", FacilityID: "fac-1", UserID: "ghost", Start: start1, End: end1})
		orphanSvc := newTestReservationService(orphanRepo, facilities, users, &notifierStub{})

		reservations, err := orphanSvc.ListByFacility(context.Background(), "fac-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(reservations) != 1 || reservations[0].UserEmail != "" {
			t.Fatalf("reservations %+v", reservations)
		}
	})
}

func TestReservationService_ConcurrentCreatesSerializePerFacility(t *testing.T) {
	facilities := &facilityDirectoryStub{facilities: map[string]Facility{"fac-1": testFacility("fac-1")}}
	users := &userDirectoryStub{users: map[string]User{}}
	repo := newReservationRepoStub()

	ids := make(chan string, 2)
	ids <- "id-a"
	ids <- "id-b"
	idGenerator := func() string { return <-ids }
	now := func() time.Time { return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC) }
	svc := NewReservationService(repo, facilities, users, &notifierStub{}, booking.NewValidator(utcLocalizer{}), time.UTC, idGenerator, now, nil)

	start, end := slot(10)
	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(owner string) {
			defer wg.Done()
			_, err := svc.Create(context.Background(), CreateReservationParams{
				Principal: Principal{UserID: owner},
				Input:     ReservationInput{FacilityID: "fac-1", Start: start, End: end},
			})
			results <- err
		}(fmt.Sprintf("user-%d", i))
	}
	wg.Wait()
	close(results)

	var successes, overlaps int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var rErr *booking.RejectionError
		if errors.As(err, &rErr) && rErr.Reason == booking.ReasonOverlap {
			overlaps++
			continue
		}
		t.Fatalf("unexpected error: %v", err)
	}
	if successes != 1 || overlaps != 1 {
		t.Fatalf("successes=%d overlaps=%d, want exactly one of each", successes, overlaps)
	}

	stored, err := repo.ListReservationsByFacility(context.Background(), "fac-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored %d reservations, want 1", len(stored))
	}
}
