package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/mapa-lotes/lotmap-backend/internal/geometry"
	"github.com/mapa-lotes/lotmap-backend/internal/lots/domain"
)

// LotRepository provides persistence operations for lots.
type LotRepository struct {
	db *sql.DB
}

// NewLotRepository creates a new lot repository.
func NewLotRepository(db *sql.DB) *LotRepository {
	return &LotRepository{db: db}
}

// Insert persists a new lot. The database assigns the id; the lot
// always starts as available, with no promoter.
func (r *LotRepository) Insert(ctx context.Context, in domain.NewLotInput) (*domain.Lot, error) {
	polygon, err := json.Marshal(in.Polygon)
	if err != nil {
		return nil, fmt.Errorf("marshal polygon: %w", err)
	}

	const q = `
INSERT INTO lots (project_id, name, price, status, polygon)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, project_id, name, price, status, COALESCE(promoter, ''), polygon, created_at;
`
	row := r.db.QueryRowContext(ctx, q, in.ProjectID, in.Name, in.Price, domain.StatusAvailable, polygon)
	lot, err := scanLot(row)
	if err != nil {
		var pgErr *pq.Error
		// foreign key violation → project is gone
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return lot, nil
}

// List returns every lot across all projects, ordered by id.
func (r *LotRepository) List(ctx context.Context) ([]domain.Lot, error) {
	const q = `
SELECT id, project_id, name, price, status, COALESCE(promoter, ''), polygon, created_at
FROM lots
ORDER BY id;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Lot, 0, 64)
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *lot)
	}
	return out, rows.Err()
}

// UpdateStatus writes a lot's status together with its promoter in a
// single statement. An empty promoter is stored as NULL.
func (r *LotRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status, promoter string) error {
	const q = `
UPDATE lots
SET status = $2, promoter = NULLIF($3, '')
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q, id, status, promoter)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdatePolygon replaces a lot's stored polygon.
func (r *LotRepository) UpdatePolygon(ctx context.Context, id int64, polygon geometry.Polygon) error {
	raw, err := json.Marshal(polygon)
	if err != nil {
		return fmt.Errorf("marshal polygon: %w", err)
	}

	const q = `
UPDATE lots
SET polygon = $2
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q, id, raw)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes a lot.
func (r *LotRepository) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM lots WHERE id = $1;`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrLotNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLot(row rowScanner) (*domain.Lot, error) {
	var (
		lot domain.Lot
		raw []byte
	)
	err := row.Scan(&lot.ID, &lot.ProjectID, &lot.Name, &lot.Price, &lot.Status, &lot.Promoter, &raw, &lot.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLotNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(raw, &lot.Polygon); err != nil {
		return nil, fmt.Errorf("unmarshal polygon for lot %d: %w", lot.ID, err)
	}
	return &lot, nil
}
