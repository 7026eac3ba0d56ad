package service

import (
	"context"
	"log"
	"strings"

	"github.com/mapa-lotes/lotmap-backend/internal/changefeed"
	lotdomain "github.com/mapa-lotes/lotmap-backend/internal/lots/domain"
	"github.com/mapa-lotes/lotmap-backend/internal/projects/domain"
)

// ProjectStore is the persistence surface for project commands.
type ProjectStore interface {
	Create(ctx context.Context, in domain.NewProjectInput) (*domain.Project, error)
	Update(ctx context.Context, publicID string, upd domain.ProjectUpdate) (*domain.Project, error)
	Delete(ctx context.Context, publicID string) error
}

// AdminChecker gates every project command; there is no public project
// operation besides reading the catalog.
type AdminChecker interface {
	IsAdmin(ctx context.Context) bool
}

// Invalidator marks the local snapshot stale after a successful write.
type Invalidator interface {
	Invalidate()
}

// ProjectService handles project commands.
type ProjectService struct {
	store ProjectStore
	admin AdminChecker
	feed  changefeed.Publisher
	cache Invalidator
}

// NewProjectService creates a new project service.
func NewProjectService(store ProjectStore, admin AdminChecker, feed changefeed.Publisher, cache Invalidator) *ProjectService {
	return &ProjectService{store: store, admin: admin, feed: feed, cache: cache}
}

// Create persists a new project.
func (s *ProjectService) Create(ctx context.Context, in domain.NewProjectInput) (*domain.Project, error) {
	if !s.admin.IsAdmin(ctx) {
		return nil, lotdomain.ErrAdminRequired
	}

	in.Name = strings.TrimSpace(in.Name)
	if len(in.Name) < 2 {
		return nil, lotdomain.Invalid("name", "at least 2 characters required")
	}
	if in.ImageURL == "" {
		return nil, lotdomain.Invalid("image_url", "required")
	}
	if !in.Bounds.Valid() {
		return nil, lotdomain.Invalid("bounds", "max corner must exceed min corner on both axes")
	}

	p, err := s.store.Create(ctx, in)
	if err != nil {
		return nil, lotdomain.Store("create project", err)
	}
	s.changed(ctx, "insert")
	return p, nil
}

// Update applies a partial update to a project.
func (s *ProjectService) Update(ctx context.Context, publicID string, upd domain.ProjectUpdate) (*domain.Project, error) {
	if !s.admin.IsAdmin(ctx) {
		return nil, lotdomain.ErrAdminRequired
	}
	if upd.Bounds != nil && !upd.Bounds.Valid() {
		return nil, lotdomain.Invalid("bounds", "max corner must exceed min corner on both axes")
	}

	p, err := s.store.Update(ctx, publicID, upd)
	if err != nil {
		return nil, lotdomain.Store("update project", err)
	}
	s.changed(ctx, "update")
	return p, nil
}

// Delete removes a project. Lot removal cascades in the store.
func (s *ProjectService) Delete(ctx context.Context, publicID string) error {
	if !s.admin.IsAdmin(ctx) {
		return lotdomain.ErrAdminRequired
	}
	if err := s.store.Delete(ctx, publicID); err != nil {
		return lotdomain.Store("delete project", err)
	}
	s.changed(ctx, "delete")
	return nil
}

func (s *ProjectService) changed(ctx context.Context, action string) {
	if err := s.feed.Publish(ctx, changefeed.Event{Table: changefeed.TableProjects, Action: action}); err != nil {
		log.Printf("[warn] projects: publish change notification: %v", err)
	}
	s.cache.Invalidate()
}
