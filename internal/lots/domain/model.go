package domain

import (
	"time"

	"github.com/mapa-lotes/lotmap-backend/internal/geometry"
)

// Status is a lot's commercial status.
type Status string

const (
	StatusAvailable Status = "available"
	StatusReserved  Status = "reserved"
	StatusSold      Status = "sold"
	StatusGreenArea Status = "green-area"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusSold, StatusGreenArea:
		return true
	}
	return false
}

// Lot is a parcel inside a project, drawn as a polygon over the
// project's plan image. The id is assigned by the database on insert,
// never generated client-side.
type Lot struct {
	ID        int64            `json:"id"`
	ProjectID string           `json:"project_id"`
	Name      string           `json:"name"`
	Price     float64          `json:"price"`
	Status    Status           `json:"status"`
	Promoter  string           `json:"promoter,omitempty"`
	Polygon   geometry.Polygon `json:"polygon"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewLotInput carries the caller-supplied fields for lot creation.
// Status is always "available" on creation and the promoter empty.
type NewLotInput struct {
	ProjectID string
	Name      string
	Price     float64
	Polygon   geometry.Polygon
}
