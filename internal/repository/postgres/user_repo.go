package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"eventpulse/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (email, password_hash, salt, name, free_events_created, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := dbOrTx(ctx, r.DB).QueryRowContext(ctx, query,
		u.Email, u.PasswordHash, u.Salt, u.Name, u.FreeEventsCreated, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil && strings.Contains(err.Error(), "users_email_key") {
		return domain.ErrDuplicateEmail
	}
	return err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, salt, name, free_events_created, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	u := &domain.User{}
	err := dbOrTx(ctx, r.DB).QueryRowContext(ctx, query, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Salt, &u.Name, &u.FreeEventsCreated, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, salt, name, free_events_created, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	u := &domain.User{}
	err := dbOrTx(ctx, r.DB).QueryRowContext(ctx, query, id).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Salt, &u.Name, &u.FreeEventsCreated, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users SET name = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := dbOrTx(ctx, r.DB).ExecContext(ctx, query, u.Name, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) IncrementFreeEvents(ctx context.Context, userID string) error {
	query := `
		UPDATE users SET free_events_created = free_events_created + 1, updated_at = NOW()
		WHERE id = $1
	`
	result, err := dbOrTx(ctx, r.DB).ExecContext(ctx, query, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// DecrementFreeEvents lowers the quota counter by one. The counter guard is
// in the WHERE clause, so a repeated deletion (or a racing one) that finds
// the counter at 0 is a silent no-op rather than an underflow.
func (r *userRepository) DecrementFreeEvents(ctx context.Context, userID string) error {
	query := `
		UPDATE users SET free_events_created = free_events_created - 1, updated_at = NOW()
		WHERE id = $1 AND free_events_created > 0
	`
	_, err := dbOrTx(ctx, r.DB).ExecContext(ctx, query, userID)
	return err
}
