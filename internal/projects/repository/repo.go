package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mapa-lotes/lotmap-backend/internal/lots/domain"
	projdomain "github.com/mapa-lotes/lotmap-backend/internal/projects/domain"
)

// ProjectRepository provides persistence operations for projects.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a new project. The public id is generated here, not
// supplied by the caller.
func (r *ProjectRepository) Create(ctx context.Context, in projdomain.NewProjectInput) (*projdomain.Project, error) {
	if !in.Bounds.Valid() {
		return nil, fmt.Errorf("degenerate bounds")
	}

	publicID := uuid.NewString()

	const q = `
INSERT INTO projects (public_id, name, image_url, min_x, min_y, max_x, max_y)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING public_id, name, image_url, min_x, min_y, max_x, max_y, created_at;
`
	var p projdomain.Project
	err := r.db.QueryRowContext(ctx, q,
		publicID, in.Name, in.ImageURL,
		in.Bounds.MinX, in.Bounds.MinY, in.Bounds.MaxX, in.Bounds.MaxY,
	).Scan(&p.PublicID, &p.Name, &p.ImageURL,
		&p.Bounds.MinX, &p.Bounds.MinY, &p.Bounds.MaxX, &p.Bounds.MaxY, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all projects ordered by creation time, oldest first.
// Lots are not attached here; the catalog joins them in.
func (r *ProjectRepository) List(ctx context.Context) ([]projdomain.Project, error) {
	const q = `
SELECT public_id, name, image_url, min_x, min_y, max_x, max_y, created_at
FROM projects
ORDER BY created_at;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]projdomain.Project, 0, 8)
	for rows.Next() {
		var p projdomain.Project
		if err := rows.Scan(&p.PublicID, &p.Name, &p.ImageURL,
			&p.Bounds.MinX, &p.Bounds.MinY, &p.Bounds.MaxX, &p.Bounds.MaxY, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update applies a partial update and returns the updated row.
func (r *ProjectRepository) Update(ctx context.Context, publicID string, upd projdomain.ProjectUpdate) (*projdomain.Project, error) {
	if upd.Bounds != nil && !upd.Bounds.Valid() {
		return nil, fmt.Errorf("degenerate bounds")
	}

	const q = `
UPDATE projects
SET name      = COALESCE($2, name),
    image_url = COALESCE($3, image_url),
    min_x     = COALESCE($4, min_x),
    min_y     = COALESCE($5, min_y),
    max_x     = COALESCE($6, max_x),
    max_y     = COALESCE($7, max_y)
WHERE public_id = $1
RETURNING public_id, name, image_url, min_x, min_y, max_x, max_y, created_at;
`
	var minX, minY, maxX, maxY *float64
	if upd.Bounds != nil {
		minX, minY = &upd.Bounds.MinX, &upd.Bounds.MinY
		maxX, maxY = &upd.Bounds.MaxX, &upd.Bounds.MaxY
	}

	var p projdomain.Project
	err := r.db.QueryRowContext(ctx, q, publicID, upd.Name, upd.ImageURL, minX, minY, maxX, maxY).
		Scan(&p.PublicID, &p.Name, &p.ImageURL,
			&p.Bounds.MinX, &p.Bounds.MinY, &p.Bounds.MaxX, &p.Bounds.MaxY, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Delete removes a project. Its lots go with it via ON DELETE CASCADE,
// enforced by the schema rather than application code.
func (r *ProjectRepository) Delete(ctx context.Context, publicID string) error {
	const q = `DELETE FROM projects WHERE public_id = $1;`
	res, err := r.db.ExecContext(ctx, q, publicID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}
