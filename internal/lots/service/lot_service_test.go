package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapa-lotes/lotmap-backend/internal/catalog"
	"github.com/mapa-lotes/lotmap-backend/internal/changefeed"
	"github.com/mapa-lotes/lotmap-backend/internal/geometry"
	"github.com/mapa-lotes/lotmap-backend/internal/lots/domain"
	projdomain "github.com/mapa-lotes/lotmap-backend/internal/projects/domain"
)

// memStore keeps lots in memory and fails on demand.
type memStore struct {
	lots   map[int64]*domain.Lot
	nextID int64
	fail   error
}

func newMemStore() *memStore {
	return &memStore{lots: make(map[int64]*domain.Lot), nextID: 1}
}

func (m *memStore) Insert(ctx context.Context, in domain.NewLotInput) (*domain.Lot, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	lot := &domain.Lot{
		ID:        m.nextID,
		ProjectID: in.ProjectID,
		Name:      in.Name,
		Price:     in.Price,
		Status:    domain.StatusAvailable,
		Polygon:   in.Polygon,
	}
	m.lots[lot.ID] = lot
	m.nextID++
	return lot, nil
}

func (m *memStore) UpdateStatus(ctx context.Context, id int64, status domain.Status, promoter string) error {
	if m.fail != nil {
		return m.fail
	}
	lot, ok := m.lots[id]
	if !ok {
		return domain.ErrLotNotFound
	}
	lot.Status = status
	lot.Promoter = promoter
	return nil
}

func (m *memStore) UpdatePolygon(ctx context.Context, id int64, polygon geometry.Polygon) error {
	if m.fail != nil {
		return m.fail
	}
	lot, ok := m.lots[id]
	if !ok {
		return domain.ErrLotNotFound
	}
	lot.Polygon = polygon
	return nil
}

func (m *memStore) Delete(ctx context.Context, id int64) error {
	if m.fail != nil {
		return m.fail
	}
	if _, ok := m.lots[id]; !ok {
		return domain.ErrLotNotFound
	}
	delete(m.lots, id)
	return nil
}

type stubAdmin struct{ admin bool }

func (s stubAdmin) IsAdmin(ctx context.Context) bool { return s.admin }

type stubSnapshots struct{ projects []projdomain.Project }

func (s stubSnapshots) Snapshot() ([]projdomain.Project, catalog.State, error) {
	return s.projects, catalog.StateFresh, nil
}

type recordingFeed struct {
	events []changefeed.Event
	fail   error
}

func (r *recordingFeed) Publish(ctx context.Context, ev changefeed.Event) error {
	if r.fail != nil {
		return r.fail
	}
	r.events = append(r.events, ev)
	return nil
}

type countingCache struct{ invalidations int }

func (c *countingCache) Invalidate() { c.invalidations++ }

type fixture struct {
	store *memStore
	admin *stubAdmin
	snaps *stubSnapshots
	feed  *recordingFeed
	cache *countingCache
	svc   *LotService
}

func newFixture(admin bool) *fixture {
	f := &fixture{
		store: newMemStore(),
		admin: &stubAdmin{admin: admin},
		snaps: &stubSnapshots{},
		feed:  &recordingFeed{},
		cache: &countingCache{},
	}
	f.svc = NewLotService(f.store, f.admin, f.snaps, f.feed, f.cache)
	return f
}

func (f *fixture) seedLot(t *testing.T, name string, polygon geometry.Polygon) *domain.Lot {
	t.Helper()
	lot, err := f.store.Insert(context.Background(), domain.NewLotInput{
		ProjectID: "p1", Name: name, Price: 1000, Polygon: polygon,
	})
	require.NoError(t, err)
	return lot
}

func quad() geometry.Polygon {
	return geometry.Polygon{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}}
}

func TestReserve(t *testing.T) {
	ctx := context.Background()

	t.Run("sets status and promoter", func(t *testing.T) {
		f := newFixture(false) // no admin needed for reserve
		lot := f.seedLot(t, "A1", quad())

		require.NoError(t, f.svc.Reserve(ctx, lot.ID, "  Juan  "))
		assert.Equal(t, domain.StatusReserved, f.store.lots[lot.ID].Status)
		assert.Equal(t, "Juan", f.store.lots[lot.ID].Promoter)
		assert.Equal(t, 1, f.cache.invalidations)
		require.Len(t, f.feed.events, 1)
		assert.Equal(t, changefeed.TableLots, f.feed.events[0].Table)
	})

	t.Run("rejects empty promoter", func(t *testing.T) {
		f := newFixture(true)
		lot := f.seedLot(t, "A1", quad())

		err := f.svc.Reserve(ctx, lot.ID, "   ")
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.Equal(t, domain.StatusAvailable, f.store.lots[lot.ID].Status)
		assert.Zero(t, f.cache.invalidations)
	})

	t.Run("reserving an already reserved lot is accepted", func(t *testing.T) {
		f := newFixture(false)
		lot := f.seedLot(t, "A1", quad())

		require.NoError(t, f.svc.Reserve(ctx, lot.ID, "Juan"))
		require.NoError(t, f.svc.Reserve(ctx, lot.ID, "Maria"))
		assert.Equal(t, "Maria", f.store.lots[lot.ID].Promoter)
	})
}

func TestSellAndRelease(t *testing.T) {
	ctx := context.Background()

	t.Run("sell clears promoter", func(t *testing.T) {
		f := newFixture(true)
		lot := f.seedLot(t, "A1", quad())
		require.NoError(t, f.svc.Reserve(ctx, lot.ID, "Juan"))

		require.NoError(t, f.svc.Sell(ctx, lot.ID))
		assert.Equal(t, domain.StatusSold, f.store.lots[lot.ID].Status)
		assert.Empty(t, f.store.lots[lot.ID].Promoter)
	})

	t.Run("sell is idempotent", func(t *testing.T) {
		f := newFixture(true)
		lot := f.seedLot(t, "A1", quad())

		require.NoError(t, f.svc.Sell(ctx, lot.ID))
		first := *f.store.lots[lot.ID]
		require.NoError(t, f.svc.Sell(ctx, lot.ID))
		assert.Equal(t, first, *f.store.lots[lot.ID])
	})

	t.Run("release returns lot to available", func(t *testing.T) {
		f := newFixture(true)
		lot := f.seedLot(t, "A1", quad())
		require.NoError(t, f.svc.Reserve(ctx, lot.ID, "Juan"))

		require.NoError(t, f.svc.Release(ctx, lot.ID))
		assert.Equal(t, domain.StatusAvailable, f.store.lots[lot.ID].Status)
		assert.Empty(t, f.store.lots[lot.ID].Promoter)
	})

	t.Run("both require admin", func(t *testing.T) {
		f := newFixture(false)
		lot := f.seedLot(t, "A1", quad())

		assert.ErrorIs(t, f.svc.Sell(ctx, lot.ID), domain.ErrAdminRequired)
		assert.ErrorIs(t, f.svc.Release(ctx, lot.ID), domain.ErrAdminRequired)
		assert.Equal(t, domain.StatusAvailable, f.store.lots[lot.ID].Status)
		assert.Zero(t, f.cache.invalidations)
	})
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates available lot with store-assigned id", func(t *testing.T) {
		f := newFixture(true)

		lot, err := f.svc.Create(ctx, domain.NewLotInput{
			ProjectID: "p1", Name: "  A1  ", Price: 5000, Polygon: quad(),
		})
		require.NoError(t, err)
		assert.NotZero(t, lot.ID)
		assert.Equal(t, "A1", lot.Name)
		assert.Equal(t, domain.StatusAvailable, lot.Status)
		assert.Empty(t, lot.Promoter)
		require.Len(t, f.feed.events, 1)
		assert.Equal(t, "insert", f.feed.events[0].Action)
	})

	t.Run("validation failures never reach the store", func(t *testing.T) {
		f := newFixture(true)

		cases := []struct {
			name  string
			input domain.NewLotInput
		}{
			{"short name", domain.NewLotInput{ProjectID: "p1", Name: " A ", Price: 100, Polygon: quad()}},
			{"zero price", domain.NewLotInput{ProjectID: "p1", Name: "A1", Price: 0, Polygon: quad()}},
			{"negative price", domain.NewLotInput{ProjectID: "p1", Name: "A1", Price: -5, Polygon: quad()}},
			{"two-point polygon", domain.NewLotInput{ProjectID: "p1", Name: "A1", Price: 100, Polygon: quad()[:2]}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := f.svc.Create(ctx, tc.input)
				require.Error(t, err)
				assert.True(t, domain.IsValidation(err))
			})
		}
		assert.Empty(t, f.store.lots)
		assert.Zero(t, f.cache.invalidations)
	})

	t.Run("requires admin", func(t *testing.T) {
		f := newFixture(false)
		_, err := f.svc.Create(ctx, domain.NewLotInput{ProjectID: "p1", Name: "A1", Price: 100, Polygon: quad()})
		assert.ErrorIs(t, err, domain.ErrAdminRequired)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the lot", func(t *testing.T) {
		f := newFixture(true)
		lot := f.seedLot(t, "A1", quad())

		require.NoError(t, f.svc.Delete(ctx, lot.ID))
		assert.Empty(t, f.store.lots)
		require.Len(t, f.feed.events, 1)
		assert.Equal(t, "delete", f.feed.events[0].Action)
	})

	t.Run("requires admin", func(t *testing.T) {
		f := newFixture(false)
		lot := f.seedLot(t, "A1", quad())

		assert.ErrorIs(t, f.svc.Delete(ctx, lot.ID), domain.ErrAdminRequired)
		assert.Len(t, f.store.lots, 1)
	})
}

func TestStoreFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("store errors surface verbatim and skip invalidation", func(t *testing.T) {
		f := newFixture(true)
		lot := f.seedLot(t, "A1", quad())
		f.store.fail = fmt.Errorf("connection reset")

		err := f.svc.Sell(ctx, lot.ID)
		require.Error(t, err)
		assert.True(t, domain.IsStore(err))
		assert.Contains(t, err.Error(), "connection reset")
		assert.Zero(t, f.cache.invalidations)
		assert.Empty(t, f.feed.events)
	})

	t.Run("publish failure does not fail the command", func(t *testing.T) {
		f := newFixture(true)
		lot := f.seedLot(t, "A1", quad())
		f.feed.fail = fmt.Errorf("redis down")

		require.NoError(t, f.svc.Sell(ctx, lot.ID))
		// Local snapshot is still invalidated; resync covers the rest.
		assert.Equal(t, 1, f.cache.invalidations)
	})
}

func TestPolygonEdits(t *testing.T) {
	ctx := context.Background()

	snapshotFor := func(lots ...domain.Lot) *stubSnapshots {
		return &stubSnapshots{projects: []projdomain.Project{
			{PublicID: "p1", Lots: lots},
		}}
	}

	t.Run("resolves and writes the matched lot", func(t *testing.T) {
		f := newFixture(true)
		lot := f.seedLot(t, "A1", quad())
		f.snaps.projects = snapshotFor(*f.store.lots[lot.ID]).projects

		edited := quad()
		edited[0] = geometry.Point{X: 0.005, Y: 0.004}

		matched, err := f.svc.ApplyPolygonEdit(ctx, "p1", edited)
		require.NoError(t, err)
		assert.Equal(t, lot.ID, matched)
		assert.Equal(t, edited, f.store.lots[lot.ID].Polygon)
		assert.Equal(t, 1, f.cache.invalidations)
	})

	t.Run("no match is a silent no-op", func(t *testing.T) {
		f := newFixture(true)
		lot := f.seedLot(t, "A1", quad())
		f.snaps.projects = snapshotFor(*f.store.lots[lot.ID]).projects

		edited := quad()
		edited[0] = geometry.Point{X: 50, Y: 50}

		matched, err := f.svc.ApplyPolygonEdit(ctx, "p1", edited)
		require.NoError(t, err)
		assert.Zero(t, matched)
		assert.Equal(t, quad(), f.store.lots[lot.ID].Polygon)
		assert.Zero(t, f.cache.invalidations)
	})

	t.Run("unknown project resolves to nothing", func(t *testing.T) {
		f := newFixture(true)
		_, ok := f.svc.ResolveEditedPolygon("ghost", quad())
		assert.False(t, ok)
	})

	t.Run("direct polygon update requires admin", func(t *testing.T) {
		f := newFixture(false)
		lot := f.seedLot(t, "A1", quad())

		err := f.svc.UpdatePolygon(ctx, lot.ID, quad())
		assert.ErrorIs(t, err, domain.ErrAdminRequired)
	})
}

// Mirrors the full lifecycle: create, reserve, edit geometry through
// the matcher, sell, then exercise the privilege boundary.
func TestLotLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(true)

	lot, err := f.svc.Create(ctx, domain.NewLotInput{
		ProjectID: "p1",
		Name:      "A1",
		Price:     5000,
		Polygon:   quad(),
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusAvailable, lot.Status)
	require.NotZero(t, lot.ID)

	require.NoError(t, f.svc.Reserve(ctx, lot.ID, "Juan"))
	assert.Equal(t, domain.StatusReserved, f.store.lots[lot.ID].Status)
	assert.Equal(t, "Juan", f.store.lots[lot.ID].Promoter)

	f.snaps.projects = []projdomain.Project{{PublicID: "p1", Lots: []domain.Lot{*f.store.lots[lot.ID]}}}
	edited := geometry.Polygon{{X: 0.005, Y: 0.004}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}}
	matched, err := f.svc.ApplyPolygonEdit(ctx, "p1", edited)
	require.NoError(t, err)
	assert.Equal(t, lot.ID, matched)
	assert.Equal(t, edited, f.store.lots[lot.ID].Polygon)

	require.NoError(t, f.svc.Sell(ctx, lot.ID))
	assert.Equal(t, domain.StatusSold, f.store.lots[lot.ID].Status)
	assert.Empty(t, f.store.lots[lot.ID].Promoter)

	// Drop to a non-admin session: reserve stays open, delete closes.
	f.admin.admin = false
	require.NoError(t, f.svc.Reserve(ctx, lot.ID, "Ana"))
	assert.ErrorIs(t, f.svc.Delete(ctx, lot.ID), domain.ErrAdminRequired)
}
