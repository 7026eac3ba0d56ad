package catalog

import (
	"context"

	lotdomain "github.com/mapa-lotes/lotmap-backend/internal/lots/domain"
	projdomain "github.com/mapa-lotes/lotmap-backend/internal/projects/domain"
)

// ProjectLister and LotLister are the two store reads the snapshot is
// built from.
type ProjectLister interface {
	List(ctx context.Context) ([]projdomain.Project, error)
}

type LotLister interface {
	List(ctx context.Context) ([]lotdomain.Lot, error)
}

// Fetcher assembles the snapshot: all projects (creation order) with
// their lots (id order) attached.
func Fetcher(projects ProjectLister, lots LotLister) FetchFunc {
	return func(ctx context.Context) ([]projdomain.Project, error) {
		ps, err := projects.List(ctx)
		if err != nil {
			return nil, lotdomain.Store("list projects", err)
		}
		ls, err := lots.List(ctx)
		if err != nil {
			return nil, lotdomain.Store("list lots", err)
		}

		byProject := make(map[string][]lotdomain.Lot, len(ps))
		for _, l := range ls {
			byProject[l.ProjectID] = append(byProject[l.ProjectID], l)
		}
		for i := range ps {
			ps[i].Lots = byProject[ps[i].PublicID]
		}
		return ps, nil
	}
}
