package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ProfileRepository reads the per-user role records backing the admin
// check.
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// RoleByUID returns the role stored for the uid, or "" when the uid
// has no profile row.
func (r *ProfileRepository) RoleByUID(ctx context.Context, uid string) (string, error) {
	const q = `SELECT role FROM profiles WHERE uid = $1;`

	var role string
	err := r.db.QueryRowContext(ctx, q, uid).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return role, nil
}
