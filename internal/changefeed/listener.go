package changefeed

import (
	"context"
	"log"
)

// Invalidator is the cache-side hook the listener drives. Any event on
// a watched table marks the whole snapshot stale; there is no
// row-level filtering.
type Invalidator interface {
	Invalidate()
}

// Listener ties a feed subscription to the snapshot cache.
type Listener struct {
	bus   Bus
	cache Invalidator
	sub   *Subscription
}

// NewListener creates a listener; call Start to begin receiving.
func NewListener(bus Bus, cache Invalidator) *Listener {
	return &Listener{bus: bus, cache: cache}
}

// Start opens the subscription. Events begin invalidating the cache
// immediately.
func (l *Listener) Start(ctx context.Context) error {
	sub, err := l.bus.Subscribe(ctx, func(ev Event) {
		log.Printf("[info] changefeed: %s on %s, invalidating snapshot", ev.Action, ev.Table)
		l.cache.Invalidate()
	})
	if err != nil {
		return err
	}
	l.sub = sub
	return nil
}

// Stop closes the subscription. Safe to call more than once, and
// before Start.
func (l *Listener) Stop() {
	l.sub.Close()
}
