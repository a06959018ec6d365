package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/sport-facilities/internal/persistence"
)

// ReservationRepository implements persistence.ReservationRepository using SQLite.
type ReservationRepository struct {
	pool *ConnectionPool
}

// NewReservationRepository creates a new SQLite reservation repository.
func NewReservationRepository(pool *ConnectionPool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

// CreateReservation inserts a new reservation. Instants are stored RFC 3339 UTC.
func (r *ReservationRepository) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if reservation.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO reservations (id, facility_id, user_id, start_time, end_time, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		reservation.ID,
		reservation.FacilityID,
		reservation.UserID,
		reservation.Start.UTC().Format(time.RFC3339),
		reservation.End.UTC().Format(time.RFC3339),
		reservation.Description,
		reservation.CreatedAt.UTC().Format(time.RFC3339),
		reservation.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return mapError(err)
}

// UpdateReservation updates the interval and description of a reservation.
// Facility and owner are immutable once created.
func (r *ReservationRepository) UpdateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if reservation.ID == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE reservations
		SET start_time = ?, end_time = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		reservation.Start.UTC().Format(time.RFC3339),
		reservation.End.UTC().Format(time.RFC3339),
		reservation.Description,
		reservation.UpdatedAt.UTC().Format(time.RFC3339),
		reservation.ID,
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

	return nil
}

// GetReservation retrieves a reservation by ID.
func (r *ReservationRepository) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	if id == "" {
		return persistence.Reservation{}, persistence.ErrNotFound
	}

	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, facility_id, user_id, start_time, end_time, description, created_at, updated_at
		FROM reservations
		WHERE id = ?`, id)

	reservation, err := scanReservation(row.Scan)
	if err != nil {
		return persistence.Reservation{}, err
	}
	return reservation, nil
}

// ListReservationsByFacility returns reservations for one facility ordered by start.
func (r *ReservationRepository) ListReservationsByFacility(ctx context.Context, facilityID string) ([]persistence.Reservation, error) {
	return r.list(ctx, `
		SELECT id, facility_id, user_id, start_time, end_time, description, created_at, updated_at
		FROM reservations
		WHERE facility_id = ?
		ORDER BY start_time ASC, id ASC`, facilityID)
}

// ListReservations returns every reservation ordered by start.
func (r *ReservationRepository) ListReservations(ctx context.Context) ([]persistence.Reservation, error) {
	return r.list(ctx, `
		SELECT id, facility_id, user_id, start_time, end_time, description, created_at, updated_at
		FROM reservations
		ORDER BY start_time ASC, id ASC`)
}

// DeleteReservation removes a reservation by ID.
func (r *ReservationRepository) DeleteReservation(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
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
}

func (r *ReservationRepository) list(ctx context.Context, query string, args ...any) ([]persistence.Reservation, error) {
	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var reservations []persistence.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return reservations, nil
}

func scanReservation(scan func(dest ...any) error) (persistence.Reservation, error) {
	var reservation persistence.Reservation
	var startStr, endStr, createdAtStr, updatedAtStr string

	err := scan(
		&reservation.ID,
		&reservation.FacilityID,
		&reservation.UserID,
		&startStr,
		&endStr,
		&reservation.Description,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Reservation{}, mapError(err)
	}

	if reservation.Start, err = time.Parse(time.RFC3339, startStr); err != nil {
		return persistence.Reservation{}, fmt.Errorf("failed to parse start_time: %w", err)
	}
	if reservation.End, err = time.Parse(time.RFC3339, endStr); err != nil {
		return persistence.Reservation{}, fmt.Errorf("failed to parse end_time: %w", err)
	}
	if reservation.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Reservation{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if reservation.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Reservation{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return reservation, nil
}
