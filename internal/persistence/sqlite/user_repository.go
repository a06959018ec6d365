package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/sport-facilities/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite. Users are
// written only when the external identity system provisions them.
type UserRepository struct {
	pool *ConnectionPool
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{pool: pool}
}

// CreateUser inserts a new user record.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" {
		return persistence.ErrConstraintViolation
	}

	admin := 0
	if user.IsAdmin {
		admin = 1
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO users (id, email, display_name, is_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.DisplayName,
		admin,
		user.CreatedAt.UTC().Format(time.RFC3339),
		user.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return mapError(err)
}

// GetUser retrieves a user by ID.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if id == "" {
		return persistence.User{}, persistence.ErrNotFound
	}

	var user persistence.User
	var admin int
	var createdAtStr, updatedAtStr string

	err := r.pool.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, is_admin, created_at, updated_at
		FROM users
		WHERE id = ?`, id).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&admin,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.User{}, mapError(err)
	}

	user.IsAdmin = admin != 0
	if user.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if user.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return user, nil
}

// ListUsers returns all users ordered by creation time.
func (r *UserRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, email, display_name, is_admin, created_at, updated_at
		FROM users
		ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		var user persistence.User
		var admin int
		var createdAtStr, updatedAtStr string

		if err := rows.Scan(&user.ID, &user.Email, &user.DisplayName, &admin, &createdAtStr, &updatedAtStr); err != nil {
			return nil, mapError(err)
		}

		user.IsAdmin = admin != 0
		if user.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if user.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}

		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return users, nil
}
