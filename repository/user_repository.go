package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"sentisounds/model"
)

// ErrDuplicateUser is returned when a signup collides with an existing email.
var ErrDuplicateUser = errors.New("user with this email already exists")

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(user *model.User) (int64, error)
	GetUserByEmail(email string) (*model.User, error)
	MarkVerified(email string) error
	DeleteExpiredUnverified(olderThan time.Time) (int64, error)
}

// mysqlUserRepository implements UserRepository for MySQL.
type mysqlUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new mysqlUserRepository.
func NewMySQLUserRepository(db *sql.DB) UserRepository {
	return &mysqlUserRepository{db: db}
}

// CreateUser inserts an unverified user row. A unique violation on the
// email column is reported as ErrDuplicateUser.
func (r *mysqlUserRepository) CreateUser(user *model.User) (int64, error) {
	query := "INSERT INTO users (email, password_hash, display_name, verified) VALUES (?, ?, ?, FALSE)"
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare create user statement: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(user.Email, user.PasswordHash, user.DisplayName)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return 0, ErrDuplicateUser
		}
		return 0, fmt.Errorf("failed to execute create user statement: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for user: %w", err)
	}
	return id, nil
}

// GetUserByEmail retrieves a user by their email address. Returns (nil, nil)
// when no such user exists.
func (r *mysqlUserRepository) GetUserByEmail(email string) (*model.User, error) {
	query := "SELECT id, email, password_hash, display_name, verified, created_at, updated_at FROM users WHERE email = ?"
	row := r.db.QueryRow(query, email)
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.DisplayName, &user.Verified, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user row for email %s: %w", email, err)
	}
	return user, nil
}

// MarkVerified flips the verified flag after a successful code check.
func (r *mysqlUserRepository) MarkVerified(email string) error {
	query := "UPDATE users SET verified = TRUE, updated_at = NOW() WHERE email = ?"
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare mark verified statement: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(email); err != nil {
		return fmt.Errorf("failed to execute mark verified statement: %w", err)
	}
	return nil
}

// DeleteExpiredUnverified removes signup rows that were never verified and
// are older than the given cutoff. Returns the number of rows removed.
func (r *mysqlUserRepository) DeleteExpiredUnverified(olderThan time.Time) (int64, error) {
	query := "DELETE FROM users WHERE verified = FALSE AND created_at < ?"
	res, err := r.db.Exec(query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired unverified users: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted unverified users: %w", err)
	}
	return count, nil
}
