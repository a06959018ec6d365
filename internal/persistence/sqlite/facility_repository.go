package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/sport-facilities/internal/persistence"
)

// FacilityRepository implements persistence.FacilityRepository using SQLite.
type FacilityRepository struct {
	pool *ConnectionPool
}

// NewFacilityRepository creates a new SQLite facility repository.
func NewFacilityRepository(pool *ConnectionPool) *FacilityRepository {
	return &FacilityRepository{pool: pool}
}

// CreateFacility inserts a facility together with its availability rules.
func (r *FacilityRepository) CreateFacility(ctx context.Context, facility persistence.Facility) error {
	if facility.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO facilities (id, name, location, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			facility.ID,
			facility.Name,
			facility.Location,
			facility.Description,
			facility.CreatedAt.UTC().Format(time.RFC3339),
			facility.UpdatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return mapError(err)
		}

		return insertRules(tx, facility.ID, facility.Rules)
	})
}

// UpdateFacility updates a facility and replaces its availability rules.
func (r *FacilityRepository) UpdateFacility(ctx context.Context, facility persistence.Facility) error {
	if facility.ID == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			UPDATE facilities
			SET name = ?, location = ?, description = ?, updated_at = ?
			WHERE id = ?`,
			facility.Name,
			facility.Location,
			facility.Description,
			facility.UpdatedAt.UTC().Format(time.RFC3339),
			facility.ID,
		)
		if err != nil {
			return mapError(err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}

		if _, err := tx.Exec(`DELETE FROM facility_availability WHERE facility_id = ?`, facility.ID); err != nil {
			return mapError(err)
		}

		return insertRules(tx, facility.ID, facility.Rules)
	})
}

// GetFacility retrieves a facility with its availability rules.
func (r *FacilityRepository) GetFacility(ctx context.Context, id string) (persistence.Facility, error) {
	if id == "" {
		return persistence.Facility{}, persistence.ErrNotFound
	}

	var facility persistence.Facility
	var createdAtStr, updatedAtStr string

	err := r.pool.db.QueryRowContext(ctx, `
		SELECT id, name, location, description, created_at, updated_at
		FROM facilities
		WHERE id = ?`, id).Scan(
		&facility.ID,
		&facility.Name,
		&facility.Location,
		&facility.Description,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Facility{}, mapError(err)
	}

	if facility.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Facility{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if facility.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Facility{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	rules, err := r.loadRules(ctx, id)
	if err != nil {
		return persistence.Facility{}, err
	}
	facility.Rules = rules

	return facility, nil
}

// ListFacilities returns all facilities ordered by name, rules included.
func (r *FacilityRepository) ListFacilities(ctx context.Context) ([]persistence.Facility, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, name, location, description, created_at, updated_at
		FROM facilities
		ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var facilities []persistence.Facility
	for rows.Next() {
		var facility persistence.Facility
		var createdAtStr, updatedAtStr string

		if err := rows.Scan(
			&facility.ID,
			&facility.Name,
			&facility.Location,
			&facility.Description,
			&createdAtStr,
			&updatedAtStr,
		); err != nil {
			return nil, mapError(err)
		}

		if facility.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if facility.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}

		facilities = append(facilities, facility)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	for i := range facilities {
		rules, err := r.loadRules(ctx, facilities[i].ID)
		if err != nil {
			return nil, err
		}
		facilities[i].Rules = rules
	}

	return facilities, nil
}

// DeleteFacility removes a facility; availability rules and reservations
// cascade at the schema level.
func (r *FacilityRepository) DeleteFacility(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec(`DELETE FROM facilities WHERE id = ?`, id)
		if err != nil {
			return mapError(err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}

		return nil
	})
}

func insertRules(tx *sql.Tx, facilityID string, rules []persistence.AvailabilityRule) error {
	for _, rule := range rules {
		var opening, closing sql.NullString
		if rule.OpeningTime != nil {
			opening = sql.NullString{String: *rule.OpeningTime, Valid: true}
		}
		if rule.ClosingTime != nil {
			closing = sql.NullString{String: *rule.ClosingTime, Valid: true}
		}

		available := 0
		if rule.IsAvailable {
			available = 1
		}

		if _, err := tx.Exec(`
			INSERT INTO facility_availability (facility_id, day_of_week, is_available, opening_time, closing_time)
			VALUES (?, ?, ?, ?, ?)`,
			facilityID, int(rule.DayOfWeek), available, opening, closing,
		); err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (r *FacilityRepository) loadRules(ctx context.Context, facilityID string) ([]persistence.AvailabilityRule, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT facility_id, day_of_week, is_available, opening_time, closing_time
		FROM facility_availability
		WHERE facility_id = ?
		ORDER BY day_of_week ASC`, facilityID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rules []persistence.AvailabilityRule
	for rows.Next() {
		var rule persistence.AvailabilityRule
		var day, available int
		var opening, closing sql.NullString

		if err := rows.Scan(&rule.FacilityID, &day, &available, &opening, &closing); err != nil {
			return nil, mapError(err)
		}

		rule.DayOfWeek = time.Weekday(day)
		rule.IsAvailable = available != 0
		if opening.Valid {
			rule.OpeningTime = &opening.String
		}
		if closing.Valid {
			rule.ClosingTime = &closing.String
		}

		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return rules, nil
}
