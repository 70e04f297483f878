package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tgienger/taskdeck/internal/models"
)

// CreateUser stores a new account with a bcrypt hashed password
func (db *DB) CreateUser(ctx context.Context, r models.Registration) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := db.now()
	id := uuid.NewString()
	email := strings.ToLower(strings.TrimSpace(r.Email))
	_, err = db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, email, string(hash), r.FirstName, r.LastName, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return db.GetUser(ctx, id)
}

// GetUser retrieves a user by ID
func (db *DB) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, _, err := db.scanUser(db.QueryRowContext(ctx, `
		SELECT id, email, first_name, last_name, created_at, updated_at, password_hash
		FROM users WHERE id = ?
	`, id))
	return u, err
}

// Authenticate checks an email/password pair
func (db *DB) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, hash, err := db.scanUser(db.QueryRowContext(ctx, `
		SELECT id, email, first_name, last_name, created_at, updated_at, password_hash
		FROM users WHERE email = ?
	`, strings.ToLower(strings.TrimSpace(email))))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// UpdateUserNames sets the user's names. Empty values leave the stored
// name unchanged.
func (db *DB) UpdateUserNames(ctx context.Context, id, firstName, lastName string) (*models.User, error) {
	res, err := db.ExecContext(ctx, `
		UPDATE users SET
			first_name = COALESCE(NULLIF(?, ''), first_name),
			last_name = COALESCE(NULLIF(?, ''), last_name),
			updated_at = ?
		WHERE id = ?
	`, firstName, lastName, db.now(), id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return db.GetUser(ctx, id)
}

func (db *DB) scanUser(row *sql.Row) (*models.User, string, error) {
	u := &models.User{}
	var hash string
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return u, hash, nil
}
