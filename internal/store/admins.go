package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ambroz/quotedesk/internal/model"
)

// CreateAdmin creates a new admin account.
// Returns nil if the username is already taken.
func CreateAdmin(ctx context.Context, db *sql.DB, username, passwordHash string) (*model.Admin, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO admins (username, password_hash) VALUES (?, ?)`,
		username, passwordHash,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, nil
		}
		return nil, fmt.Errorf("creating admin: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting admin id: %w", err)
	}

	return GetAdmin(ctx, db, id)
}

// GetAdmin returns an admin by ID, or nil if unknown.
func GetAdmin(ctx context.Context, db *sql.DB, id int64) (*model.Admin, error) {
	a := &model.Admin{}
	err := db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM admins WHERE id = ?`, id,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting admin: %w", err)
	}
	return a, nil
}

// GetAdminByUsername returns an admin by username, or nil if unknown.
func GetAdminByUsername(ctx context.Context, db *sql.DB, username string) (*model.Admin, error) {
	a := &model.Admin{}
	err := db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM admins WHERE username = ?`, username,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting admin by username: %w", err)
	}
	return a, nil
}

// CountAdmins returns the number of admin accounts.
func CountAdmins(ctx context.Context, db *sql.DB) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting admins: %w", err)
	}
	return count, nil
}
