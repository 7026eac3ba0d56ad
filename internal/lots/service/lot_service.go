package service

import (
	"context"
	"log"
	"strings"

	"github.com/mapa-lotes/lotmap-backend/internal/catalog"
	"github.com/mapa-lotes/lotmap-backend/internal/changefeed"
	"github.com/mapa-lotes/lotmap-backend/internal/geometry"
	"github.com/mapa-lotes/lotmap-backend/internal/lots/domain"
	projdomain "github.com/mapa-lotes/lotmap-backend/internal/projects/domain"
)

// LotStore is the persistence surface the status machine writes
// through.
type LotStore interface {
	Insert(ctx context.Context, in domain.NewLotInput) (*domain.Lot, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status, promoter string) error
	UpdatePolygon(ctx context.Context, id int64, polygon geometry.Polygon) error
	Delete(ctx context.Context, id int64) error
}

// AdminChecker is the authorization gate consulted before privileged
// commands.
type AdminChecker interface {
	IsAdmin(ctx context.Context) bool
}

// SnapshotReader supplies the last known lot set for polygon
// resolution.
type SnapshotReader interface {
	Snapshot() ([]projdomain.Project, catalog.State, error)
}

// Invalidator marks the local snapshot stale after a successful write.
type Invalidator interface {
	Invalidate()
}

// LotService validates and executes lot commands. Status transitions
// are idempotent commands, not a guarded state machine: selling an
// already-sold lot or reserving an already-reserved one is accepted
// and simply rewrites the row. The UI hides redundant actions; this
// layer does not.
type LotService struct {
	store     LotStore
	admin     AdminChecker
	snapshots SnapshotReader
	feed      changefeed.Publisher
	cache     Invalidator
}

// NewLotService creates a new lot service.
func NewLotService(store LotStore, admin AdminChecker, snapshots SnapshotReader, feed changefeed.Publisher, cache Invalidator) *LotService {
	return &LotService{
		store:     store,
		admin:     admin,
		snapshots: snapshots,
		feed:      feed,
		cache:     cache,
	}
}

// Reserve sets the lot to reserved, crediting the given promoter.
// Reserving is the one command open to non-admin sessions.
func (s *LotService) Reserve(ctx context.Context, lotID int64, promoter string) error {
	promoter = strings.TrimSpace(promoter)
	if promoter == "" {
		return domain.Invalid("promoter", "name is required to reserve")
	}

	if err := s.store.UpdateStatus(ctx, lotID, domain.StatusReserved, promoter); err != nil {
		return domain.Store("reserve lot", err)
	}
	s.changed(ctx, "update")
	return nil
}

// Sell sets the lot to sold. The promoter is cleared: it only has
// meaning while the lot is reserved.
func (s *LotService) Sell(ctx context.Context, lotID int64) error {
	if !s.admin.IsAdmin(ctx) {
		return domain.ErrAdminRequired
	}
	if err := s.store.UpdateStatus(ctx, lotID, domain.StatusSold, ""); err != nil {
		return domain.Store("sell lot", err)
	}
	s.changed(ctx, "update")
	return nil
}

// Release returns the lot to available and clears the promoter.
func (s *LotService) Release(ctx context.Context, lotID int64) error {
	if !s.admin.IsAdmin(ctx) {
		return domain.ErrAdminRequired
	}
	if err := s.store.UpdateStatus(ctx, lotID, domain.StatusAvailable, ""); err != nil {
		return domain.Store("release lot", err)
	}
	s.changed(ctx, "update")
	return nil
}

// Create persists a new lot, available and promoter-less. The store
// assigns the id.
func (s *LotService) Create(ctx context.Context, in domain.NewLotInput) (*domain.Lot, error) {
	if !s.admin.IsAdmin(ctx) {
		return nil, domain.ErrAdminRequired
	}

	in.Name = strings.TrimSpace(in.Name)
	if len(in.Name) < 2 {
		return nil, domain.Invalid("name", "at least 2 characters required")
	}
	if in.Price <= 0 {
		return nil, domain.Invalid("price", "must be positive")
	}
	if !in.Polygon.Valid() {
		return nil, domain.Invalid("polygon", "at least 3 points required")
	}

	lot, err := s.store.Insert(ctx, in)
	if err != nil {
		return nil, domain.Store("create lot", err)
	}
	s.changed(ctx, "insert")
	return lot, nil
}

// Delete removes the lot unconditionally. Confirmation prompts are a
// UI concern.
func (s *LotService) Delete(ctx context.Context, lotID int64) error {
	if !s.admin.IsAdmin(ctx) {
		return domain.ErrAdminRequired
	}
	if err := s.store.Delete(ctx, lotID); err != nil {
		return domain.Store("delete lot", err)
	}
	s.changed(ctx, "delete")
	return nil
}

// UpdatePolygon replaces a lot's geometry.
func (s *LotService) UpdatePolygon(ctx context.Context, lotID int64, polygon geometry.Polygon) error {
	if !s.admin.IsAdmin(ctx) {
		return domain.ErrAdminRequired
	}
	if !polygon.Valid() {
		return domain.Invalid("polygon", "at least 3 points required")
	}
	if err := s.store.UpdatePolygon(ctx, lotID, polygon); err != nil {
		return domain.Store("update polygon", err)
	}
	s.changed(ctx, "update")
	return nil
}

// ResolveEditedPolygon maps geometry coming out of the drawing tool
// back to a lot id, using the last known snapshot of the project's
// lots. It reads only; no write is issued.
func (s *LotService) ResolveEditedPolygon(projectID string, edited geometry.Polygon) (int64, bool) {
	projects, _, _ := s.snapshots.Snapshot()
	for _, p := range projects {
		if p.PublicID != projectID {
			continue
		}
		candidates := make([]geometry.Candidate, 0, len(p.Lots))
		for _, l := range p.Lots {
			candidates = append(candidates, geometry.Candidate{LotID: l.ID, Polygon: l.Polygon})
		}
		return geometry.Resolve(edited, candidates)
	}
	return 0, false
}

// ApplyPolygonEdit resolves an edited polygon and writes it to the lot
// it belongs to. When no lot matches, the edit is dropped: that is the
// historical contract of the drawing surface, surfaced only in the
// log. The returned id is 0 in that case.
func (s *LotService) ApplyPolygonEdit(ctx context.Context, projectID string, edited geometry.Polygon) (int64, error) {
	lotID, ok := s.ResolveEditedPolygon(projectID, edited)
	if !ok {
		log.Printf("[warn] lots: polygon edit in project %s matched no lot, dropping", projectID)
		return 0, nil
	}
	if err := s.UpdatePolygon(ctx, lotID, edited); err != nil {
		return 0, err
	}
	return lotID, nil
}

// changed publishes a change notification and marks the local snapshot
// stale. Publish failure is logged, not returned: the write already
// landed, and the periodic resync covers missed notifications.
func (s *LotService) changed(ctx context.Context, action string) {
	if err := s.feed.Publish(ctx, changefeed.Event{Table: changefeed.TableLots, Action: action}); err != nil {
		log.Printf("[warn] lots: publish change notification: %v", err)
	}
	s.cache.Invalidate()
}
