package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"expense-service/internal/models"
)

// CreateUser inserts a new user and returns it with its assigned ID.
// A taken email yields ErrDuplicate.
func (db *DB) CreateUser(ctx context.Context, email, passwordHash, firstName, lastName string) (*models.User, error) {
	u := models.User{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
	}
	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO users (email, password, firstname, lastname)
		 VALUES ($1, $2, $3, $4)
		 RETURNING user_id`,
		email, passwordHash, firstName, lastName,
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT user_id, email, password, firstname, lastname FROM users WHERE user_id = $1`,
		id,
	)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by exact email match.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT user_id, email, password, firstname, lastname FROM users WHERE email = $1`,
		email,
	)
	return scanUser(row)
}

// UserCount returns the number of users in the database.
func (db *DB) UserCount(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
