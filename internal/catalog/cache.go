// Package catalog holds this instance's view of every project and its
// lots. The view is disposable: any staleness signal throws the whole
// snapshot away and refetches, there is no incremental patching and no
// merge of locally-held assumptions over remote state.
package catalog

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	projdomain "github.com/mapa-lotes/lotmap-backend/internal/projects/domain"
)

// State describes how trustworthy the held snapshot currently is.
type State string

const (
	StateAbsent  State = "absent"
	StateLoading State = "loading"
	StateFresh   State = "fresh"
	StateStale   State = "stale"
	StateError   State = "error"
)

// FetchFunc loads the full snapshot from the store.
type FetchFunc func(ctx context.Context) ([]projdomain.Project, error)

// Options tunes the cache. Zero values pick sane defaults.
type Options struct {
	// MinRefetchInterval caps how often staleness signals can turn
	// into actual store round trips. Bursts of signals coalesce into
	// one refetch.
	MinRefetchInterval time.Duration

	// FetchTimeout bounds a single refetch round trip.
	FetchTimeout time.Duration
}

// Cache is the reconciliation cache. Readers call Snapshot, writers
// (mutation paths and the change feed listener) call Invalidate; the
// Run loop is the only goroutine that ever replaces the snapshot, and
// it replaces it wholesale.
type Cache struct {
	fetch   FetchFunc
	limiter *rate.Limiter
	timeout time.Duration

	wake chan struct{}

	mu       sync.RWMutex
	state    State
	projects []projdomain.Project
	lastErr  error
}

// New builds a cache in the absent state. Nothing is fetched until
// Run starts.
func New(fetch FetchFunc, opt Options) *Cache {
	if opt.MinRefetchInterval == 0 {
		opt.MinRefetchInterval = 200 * time.Millisecond
	}
	if opt.FetchTimeout == 0 {
		opt.FetchTimeout = 10 * time.Second
	}
	return &Cache{
		fetch:   fetch,
		limiter: rate.NewLimiter(rate.Every(opt.MinRefetchInterval), 1),
		timeout: opt.FetchTimeout,
		wake:    make(chan struct{}, 1),
		state:   StateAbsent,
	}
}

// Run drives the refetch loop until ctx is cancelled. It performs an
// initial fetch immediately, then one fetch per coalesced batch of
// staleness signals.
func (c *Cache) Run(ctx context.Context) {
	c.refetch(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.wake:
			if err := c.limiter.Wait(ctx); err != nil {
				return
			}
			c.refetch(ctx)
		}
	}
}

// Invalidate marks the snapshot stale and schedules a refetch. Safe to
// call from any goroutine, any number of times; signals arriving while
// a refetch is already queued collapse into it.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	if c.state == StateFresh || c.state == StateError {
		c.state = StateStale
	}
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Snapshot returns the current view, its state, and the last fetch
// error if the state is error. The returned slice is replaced, never
// mutated, so callers may read it without copying. They must not
// modify it.
func (c *Cache) Snapshot() ([]projdomain.Project, State, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.projects, c.state, c.lastErr
}

func (c *Cache) refetch(ctx context.Context) {
	c.mu.Lock()
	c.state = StateLoading
	c.mu.Unlock()

	fctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	projects, err := c.fetch(fctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		// Keep the last good snapshot for display, but flag it.
		c.state = StateError
		c.lastErr = err
		log.Printf("[warn] catalog: refetch failed: %v", err)
		return
	}
	c.projects = projects
	c.state = StateFresh
	c.lastErr = nil
}
