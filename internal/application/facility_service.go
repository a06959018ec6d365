package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// FacilityRepository captures the persistence interactions needed by the
// facility service.
type FacilityRepository interface {
	CreateFacility(ctx context.Context, facility Facility) (Facility, error)
	GetFacility(ctx context.Context, id string) (Facility, error)
	UpdateFacility(ctx context.Context, facility Facility) (Facility, error)
	ListFacilities(ctx context.Context) ([]Facility, error)
	DeleteFacility(ctx context.Context, id string) error
}

// FacilityService manages the facility catalog and its availability rules.
// Mutations require an administrator principal; reads are open.
type FacilityService struct {
	facilities  FacilityRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewFacilityService wires dependencies for facility operations.
func NewFacilityService(facilities FacilityRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *FacilityService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &FacilityService{
		facilities:  facilities,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// Create validates and persists a new facility with its availability rules.
func (s *FacilityService) Create(ctx context.Context, params CreateFacilityParams) (Facility, error) {
	if s == nil || s.facilities == nil {
		return Facility{}, fmt.Errorf("facility repository not configured")
	}
	if !params.Principal.IsAdmin {
		return Facility{}, ErrUnauthorized
	}

	vErr := &ValidationError{}
	validateFacilityInput(params.Input, vErr)
	if vErr.HasErrors() {
		return Facility{}, vErr
	}

	createdAt := s.now()
	facility := Facility{
		ID:          s.idGenerator(),
		Name:        strings.TrimSpace(params.Input.Name),
		Location:    strings.TrimSpace(params.Input.Location),
		Description: params.Input.Description,
		Rules:       sortRules(params.Input.Rules),
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	persisted, err := s.facilities.CreateFacility(ctx, facility)
	if err != nil {
		return Facility{}, mapRepoError(err)
	}

	serviceLogger(ctx, s.logger, "facilities", "create").InfoContext(ctx, "facility created", "facility_id", persisted.ID)
	return persisted, nil
}

// Update replaces the facility attributes and merges the supplied rules into
// the existing set by weekday: matching days are overwritten, new days added,
// absent days left untouched.
func (s *FacilityService) Update(ctx context.Context, params UpdateFacilityParams) (Facility, error) {
	if s == nil || s.facilities == nil {
		return Facility{}, fmt.Errorf("facility repository not configured")
	}
	if !params.Principal.IsAdmin {
		return Facility{}, ErrUnauthorized
	}

	existing, err := s.facilities.GetFacility(ctx, params.FacilityID)
	if err != nil {
		return Facility{}, mapRepoError(err)
	}

	vErr := &ValidationError{}
	validateFacilityInput(params.Input, vErr)
	if vErr.HasErrors() {
		return Facility{}, vErr
	}

	updated := existing
	updated.Name = strings.TrimSpace(params.Input.Name)
	updated.Location = strings.TrimSpace(params.Input.Location)
	updated.Description = params.Input.Description
	updated.Rules = mergeRules(existing.Rules, params.Input.Rules)
	updated.UpdatedAt = s.now()

	persisted, err := s.facilities.UpdateFacility(ctx, updated)
	if err != nil {
		return Facility{}, mapRepoError(err)
	}

	serviceLogger(ctx, s.logger, "facilities", "update").InfoContext(ctx, "facility updated", "facility_id", persisted.ID)
	return persisted, nil
}

// Get returns one facility with its availability rules.
func (s *FacilityService) Get(ctx context.Context, id string) (Facility, error) {
	if s == nil || s.facilities == nil {
		return Facility{}, fmt.Errorf("facility repository not configured")
	}
	facility, err := s.facilities.GetFacility(ctx, id)
	if err != nil {
		return Facility{}, mapRepoError(err)
	}
	return facility, nil
}

// List returns all facilities.
func (s *FacilityService) List(ctx context.Context) ([]Facility, error) {
	if s == nil || s.facilities == nil {
		return nil, fmt.Errorf("facility repository not configured")
	}
	facilities, err := s.facilities.ListFacilities(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return facilities, nil
}

// Delete removes a facility; its rules and reservations go with it.
func (s *FacilityService) Delete(ctx context.Context, principal Principal, id string) error {
	if s == nil || s.facilities == nil {
		return fmt.Errorf("facility repository not configured")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	if err := s.facilities.DeleteFacility(ctx, id); err != nil {
		return mapRepoError(err)
	}

	serviceLogger(ctx, s.logger, "facilities", "delete").InfoContext(ctx, "facility deleted", "facility_id", id)
	return nil
}

func validateFacilityInput(input FacilityInput, vErr *ValidationError) {
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}

	seen := make(map[time.Weekday]struct{}, len(input.Rules))
	for _, rule := range input.Rules {
		if rule.Day < time.Sunday || rule.Day > time.Saturday {
			vErr.add("availability", "day of week must be between 0 and 6")
			continue
		}
		if _, ok := seen[rule.Day]; ok {
			vErr.add("availability", "at most one rule per day of week")
			continue
		}
		seen[rule.Day] = struct{}{}

		if rule.IsAvailable {
			if rule.Opens == nil || rule.Closes == nil {
				vErr.add("availability", "available days require opening and closing times")
			} else if *rule.Opens > *rule.Closes {
				vErr.add("availability", "opening time must not be after closing time")
			}
		} else if rule.Opens != nil || rule.Closes != nil {
			vErr.add("availability", "closed days must not carry opening hours")
		}
	}
}

func mergeRules(existing, incoming []AvailabilityRule) []AvailabilityRule {
	byDay := make(map[time.Weekday]AvailabilityRule, len(existing)+len(incoming))
	for _, rule := range existing {
		byDay[rule.Day] = rule
	}
	for _, rule := range incoming {
		byDay[rule.Day] = rule
	}

	merged := make([]AvailabilityRule, 0, len(byDay))
	for _, rule := range byDay {
		merged = append(merged, rule)
	}
	return sortRules(merged)
}

func sortRules(rules []AvailabilityRule) []AvailabilityRule {
	out := make([]AvailabilityRule, len(rules))
	copy(out, rules)
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}
