package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ruthwik162/appointment-server/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the repositories need.
// pgxmock satisfies it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)
	FindByRole(ctx context.Context, role string) ([]model.User, error)
	FindTeacherByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, email string) error
}

type userRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, username, role, mobile, gender, profile_image_url, created_at`

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	sql := `INSERT INTO users (id, email, password_hash, username, role, mobile, gender, profile_image_url, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Exec(ctx, sql, u.ID, u.Email, u.PasswordHash, u.Username, u.Role, u.Mobile, u.Gender, u.ProfileImageURL, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByEmail retrieves a user by email; returns (nil, nil) when no user matches
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(ctx, sql, email)
}

// FindByID retrieves a user by ID; returns (nil, nil) when no user matches
func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(ctx, sql, id)
}

// FindTeacherByEmail retrieves a user by email restricted to the teacher role
func (r *userRepository) FindTeacherByEmail(ctx context.Context, email string) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND role = $2`
	return r.scanOne(ctx, sql, email, model.RoleTeacher)
}

func (r *userRepository) scanOne(ctx context.Context, sql string, args ...any) (*model.User, error) {
	u := &model.User{}
	err := r.db.QueryRow(ctx, sql, args...).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Username, &u.Role, &u.Mobile, &u.Gender, &u.ProfileImageURL, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // not found is handled by the service layer
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return u, nil
}

// FindAll retrieves every user
func (r *userRepository) FindAll(ctx context.Context) ([]model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
	return r.scanMany(ctx, sql)
}

// FindByRole retrieves all users with the given role
func (r *userRepository) FindByRole(ctx context.Context, role string) ([]model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY created_at`
	return r.scanMany(ctx, sql, role)
}

func (r *userRepository) scanMany(ctx context.Context, sql string, args ...any) ([]model.User, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Username, &u.Role, &u.Mobile, &u.Gender, &u.ProfileImageURL, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// Update persists the mutable profile fields of an existing user.
// Email and password_hash are never touched here.
func (r *userRepository) Update(ctx context.Context, u *model.User) error {
	sql := `UPDATE users SET username = $1, role = $2, mobile = $3, gender = $4, profile_image_url = $5
            WHERE id = $6`
	_, err := r.db.Exec(ctx, sql, u.Username, u.Role, u.Mobile, u.Gender, u.ProfileImageURL, u.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// Delete removes a user by email
func (r *userRepository) Delete(ctx context.Context, email string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM users WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
