package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/sport-facilities/internal/booking"
	"github.com/example/sport-facilities/internal/persistence"
)

type facilityRepoStub struct {
	createErr error
	created   Facility

	getFacility Facility
	getErr      error

	updateErr error
	updated   Facility

	deleteErr error
	deletedID string

	list    []Facility
	listErr error
}

func (f *facilityRepoStub) CreateFacility(ctx context.Context, facility Facility) (Facility, error) {
	if f.createErr != nil {
		return Facility{}, f.createErr
	}
	f.created = facility
	return facility, nil
}

func (f *facilityRepoStub) GetFacility(ctx context.Context, id string) (Facility, error) {
	if f.getErr != nil {
		return Facility{}, f.getErr
	}
	if f.getFacility.ID == "" {
		return Facility{}, persistence.ErrNotFound
	}
	return f.getFacility, nil
}

func (f *facilityRepoStub) UpdateFacility(ctx context.Context, facility Facility) (Facility, error) {
	if f.updateErr != nil {
		return Facility{}, f.updateErr
	}
	f.updated = facility
	return facility, nil
}

func (f *facilityRepoStub) ListFacilities(ctx context.Context) ([]Facility, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.list) == 0 {
		return nil, nil
	}
	out := make([]Facility, len(f.list))
	copy(out, f.list)
	return out, nil
}

func (f *facilityRepoStub) DeleteFacility(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedID = id
	return nil
}

func rulePtr(value string) *booking.TimeOfDay {
	tod := booking.MustTimeOfDay(value)
	return &tod
}

func newTestFacilityService(repo *facilityRepoStub) *FacilityService {
	idGenerator := func() string { return "fac-generated" }
	now := func() time.Time { return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC) }
	return NewFacilityService(repo, idGenerator, now, nil)
}

func TestFacilityService_Create(t *testing.T) {
	admin := Principal{UserID: "admin-1", IsAdmin: true}

	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := newTestFacilityService(&facilityRepoStub{})

		_, err := svc.Create(context.Background(), CreateFacilityParams{
			Principal: Principal{UserID: "user-1"},
			Input:     FacilityInput{Name: "Kort tenisowy"},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("requires a name", func(t *testing.T) {
		svc := newTestFacilityService(&facilityRepoStub{})

		_, err := svc.Create(context.Background(), CreateFacilityParams{
			Principal: admin,
			Input:     FacilityInput{Name: "   "},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["name"]; !ok {
			t.Fatalf("expected name error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("rejects duplicate weekday rules", func(t *testing.T) {
		svc := newTestFacilityService(&facilityRepoStub{})

		_, err := svc.Create(context.Background(), CreateFacilityParams{
			Principal: admin,
			Input: FacilityInput{
				Name: "Kort tenisowy",
				Rules: []AvailabilityRule{
					{Day: time.Monday, IsAvailable: true, Opens: rulePtr("08:00"), Closes: rulePtr("20:00")},
					{Day: time.Monday, IsAvailable: true, Opens: rulePtr("09:00"), Closes: rulePtr("21:00")},
				},
			},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if vErr.FieldErrors["availability"] != "at most one rule per day of week" {
			t.Fatalf("availability error %q", vErr.FieldErrors["availability"])
		}
	})

	t.Run("rejects an available day without hours", func(t *testing.T) {
		svc := newTestFacilityService(&facilityRepoStub{})

		_, err := svc.Create(context.Background(), CreateFacilityParams{
			Principal: admin,
			Input: FacilityInput{
				Name:  "Kort tenisowy",
				Rules: []AvailabilityRule{{Day: time.Monday, IsAvailable: true}},
			},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if vErr.FieldErrors["availability"] != "available days require opening and closing times" {
			t.Fatalf("availability error %q", vErr.FieldErrors["availability"])
		}
	})

	t.Run("rejects inverted opening hours", func(t *testing.T) {
		svc := newTestFacilityService(&facilityRepoStub{})

		_, err := svc.Create(context.Background(), CreateFacilityParams{
			Principal: admin,
			Input: FacilityInput{
				Name:  "Kort tenisowy",
				Rules: []AvailabilityRule{{Day: time.Monday, IsAvailable: true, Opens: rulePtr("20:00"), Closes: rulePtr("08:00")}},
			},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if vErr.FieldErrors["availability"] != "opening time must not be after closing time" {
			t.Fatalf("availability error %q", vErr.FieldErrors["availability"])
		}
	})

	t.Run("rejects hours on a closed day", func(t *testing.T) {
		svc := newTestFacilityService(&facilityRepoStub{})

		_, err := svc.Create(context.Background(), CreateFacilityParams{
			Principal: admin,
			Input: FacilityInput{
				Name:  "Kort tenisowy",
				Rules: []AvailabilityRule{{Day: time.Monday, IsAvailable: false, Opens: rulePtr("08:00")}},
			},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if vErr.FieldErrors["availability"] != "closed days must not carry opening hours" {
			t.Fatalf("availability error %q", vErr.FieldErrors["availability"])
		}
	})

	t.Run("rejects an out of range weekday", func(t *testing.T) {
		svc := newTestFacilityService(&facilityRepoStub{})

		_, err := svc.Create(context.Background(), CreateFacilityParams{
			Principal: admin,
			Input: FacilityInput{
				Name:  "Kort tenisowy",
				Rules: []AvailabilityRule{{Day: time.Weekday(7), IsAvailable: true, Opens: rulePtr("08:00"), Closes: rulePtr("20:00")}},
			},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if vErr.FieldErrors["availability"] != "day of week must be between 0 and 6" {
			t.Fatalf("availability error %q", vErr.FieldErrors["availability"])
		}
	})

	t.Run("keeps storage constraint failures intact", func(t *testing.T) {
		repo := &facilityRepoStub{createErr: persistence.ErrConstraintViolation}
		svc := newTestFacilityService(repo)

		_, err := svc.Create(context.Background(), CreateFacilityParams{
			Principal: admin,
			Input:     FacilityInput{Name: "Kort tenisowy"},
		})
		if !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected ErrConstraintViolation, got %v", err)
		}
		var rejection *booking.RejectionError
		if errors.As(err, &rejection) {
			t.Fatalf("facility constraint failure became %v", rejection)
		}
	})

	t.Run("persists with generated id and sorted rules", func(t *testing.T) {
		repo := &facilityRepoStub{}
		svc := newTestFacilityService(repo)

		facility, err := svc.Create(context.Background(), CreateFacilityParams{
			Principal: admin,
			Input: FacilityInput{
				Name:     "  Kort tenisowy  ",
				Location: "ul. Sportowa 1",
				Rules: []AvailabilityRule{
					{Day: time.Friday, IsAvailable: true, Opens: rulePtr("10:00"), Closes: rulePtr("18:00")},
					{Day: time.Monday, IsAvailable: true, Opens: rulePtr("08:00"), Closes: rulePtr("20:00")},
				},
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if facility.ID != "fac-generated" {
			t.Fatalf("id %q", facility.ID)
		}
		if facility.Name != "Kort tenisowy" {
			t.Fatalf("name %q, want trimmed", facility.Name)
		}
		if len(repo.created.Rules) != 2 || repo.created.Rules[0].Day != time.Monday {
			t.Fatalf("rules %+v, want sorted by weekday", repo.created.Rules)
		}
	})
}

func TestFacilityService_Update(t *testing.T) {
	admin := Principal{UserID: "admin-1", IsAdmin: true}

	existing := Facility{
		ID:   "fac-1",
		Name: "Hala Sportowa",
		Rules: []AvailabilityRule{
			{Day: time.Monday, IsAvailable: true, Opens: rulePtr("08:00"), Closes: rulePtr("20:00")},
			{Day: time.Tuesday, IsAvailable: true, Opens: rulePtr("08:00"), Closes: rulePtr("20:00")},
		},
	}

	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := newTestFacilityService(&facilityRepoStub{getFacility: existing})

		_, err := svc.Update(context.Background(), UpdateFacilityParams{
			Principal:  Principal{UserID: "user-1"},
			FacilityID: "fac-1",
			Input:      FacilityInput{Name: "Hala"},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("reports a missing facility", func(t *testing.T) {
		svc := newTestFacilityService(&facilityRepoStub{})

		_, err := svc.Update(context.Background(), UpdateFacilityParams{
			Principal:  admin,
			FacilityID: "missing",
			Input:      FacilityInput{Name: "Hala"},
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("merges rules by weekday", func(t *testing.T) {
		repo := &facilityRepoStub{getFacility: existing}
		svc := newTestFacilityService(repo)

		facility, err := svc.Update(context.Background(), UpdateFacilityParams{
			Principal:  admin,
			FacilityID: "fac-1",
			Input: FacilityInput{
				Name: "Hala Sportowa",
				Rules: []AvailabilityRule{
					// Overwrites Monday, adds Saturday, leaves Tuesday alone.
					{Day: time.Monday, IsAvailable: true, Opens: rulePtr("06:00"), Closes: rulePtr("22:00")},
					{Day: time.Saturday, IsAvailable: false},
				},
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(facility.Rules) != 3 {
			t.Fatalf("got %d rules, want 3", len(facility.Rules))
		}
		byDay := make(map[time.Weekday]AvailabilityRule, len(facility.Rules))
		for _, rule := range facility.Rules {
			byDay[rule.Day] = rule
		}
		if *byDay[time.Monday].Opens != booking.MustTimeOfDay("06:00") {
			t.Fatalf("monday opens %v", byDay[time.Monday].Opens)
		}
		if *byDay[time.Tuesday].Opens != booking.MustTimeOfDay("08:00") {
			t.Fatalf("tuesday opens %v", byDay[time.Tuesday].Opens)
		}
		if byDay[time.Saturday].IsAvailable {
			t.Fatal("saturday should be closed")
		}
	})
}

func TestFacilityService_Delete(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := newTestFacilityService(&facilityRepoStub{})

		err := svc.Delete(context.Background(), Principal{UserID: "user-1"}, "fac-1")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("removes the facility", func(t *testing.T) {
		repo := &facilityRepoStub{}
		svc := newTestFacilityService(repo)

		if err := svc.Delete(context.Background(), Principal{UserID: "admin-1", IsAdmin: true}, "fac-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repo.deletedID != "fac-1" {
			t.Fatalf("deleted %q", repo.deletedID)
		}
	})

	t.Run("maps a missing facility", func(t *testing.T) {
		repo := &facilityRepoStub{deleteErr: persistence.ErrNotFound}
		svc := newTestFacilityService(repo)

		err := svc.Delete(context.Background(), Principal{UserID: "admin-1", IsAdmin: true}, "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestFacilityService_Reads(t *testing.T) {
	t.Run("get maps repository errors", func(t *testing.T) {
		svc := newTestFacilityService(&facilityRepoStub{})

		_, err := svc.Get(context.Background(), "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list returns the catalog", func(t *testing.T) {
		repo := &facilityRepoStub{list: []Facility{{ID: "fac-1"}, {ID: "fac-2"}}}
		svc := newTestFacilityService(repo)

		facilities, err := svc.List(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(facilities) != 2 {
			t.Fatalf("got %d facilities, want 2", len(facilities))
		}
	})
}
