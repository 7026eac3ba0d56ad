package domain

import (
	"time"

	lotdomain "github.com/mapa-lotes/lotmap-backend/internal/lots/domain"
)

// Bounds is the rectangle the plan image is stretched over, in the
// project's planar coordinate system.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Valid reports whether the rectangle is non-degenerate and not
// inverted: both max components must strictly exceed the min ones.
func (b Bounds) Valid() bool {
	return b.MaxX > b.MinX && b.MaxY > b.MinY
}

// Project is a development whose lots are drawn over a plan image.
type Project struct {
	PublicID  string          `json:"public_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url"`
	Bounds    Bounds          `json:"bounds"`
	CreatedAt time.Time       `json:"created_at"`
	Lots      []lotdomain.Lot `json:"lots"`
}

// NewProjectInput carries the caller-supplied fields for project creation.
type NewProjectInput struct {
	Name     string
	ImageURL string
	Bounds   Bounds
}

// ProjectUpdate carries a partial update; nil fields are left untouched.
type ProjectUpdate struct {
	Name     *string
	ImageURL *string
	Bounds   *Bounds
}
