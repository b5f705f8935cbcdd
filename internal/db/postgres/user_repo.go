package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"Connector/internal/core/users"
	"Connector/internal/db/dbctx"
)

type postgresUserRepo struct {
	db      *sql.DB
	timeout time.Duration
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sql.DB, timeout time.Duration) users.UserRepository {
	return &postgresUserRepo{db: db, timeout: timeout}
}

// Create inserts a new user into the users table
func (r *postgresUserRepo) Create(ctx context.Context, user *users.User) (*users.User, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO users (id, name, email, avatar, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, email, avatar, created_at, updated_at`

	created := &users.User{}
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Name, user.Email, user.Avatar, user.CreatedAt, user.UpdatedAt,
	).Scan(&created.ID, &created.Name, &created.Email, &created.Avatar, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		// Check for unique constraint violations
		if strings.Contains(err.Error(), "duplicate key") {
			if strings.Contains(err.Error(), "users_pkey") {
				return nil, users.ErrUserAlreadyExists
			}
			if strings.Contains(err.Error(), "users_email_key") {
				return nil, users.ErrEmailAlreadyTaken
			}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return created, nil
}

// GetByID retrieves a user by id
func (r *postgresUserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT id, name, email, avatar, created_at, updated_at FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *postgresUserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT id, name, email, avatar, created_at, updated_at FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func scanUser(row rowScanner) (*users.User, error) {
	user := &users.User{}
	var avatar sql.NullString
	err := row.Scan(&user.ID, &user.Name, &user.Email, &avatar, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	user.Avatar = avatar.String
	return user, nil
}
