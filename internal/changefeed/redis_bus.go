package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

const (
	channelProjects = "changes:projects"
	channelLots     = "changes:lots"
)

// redisBus implements Bus on Redis pub/sub. go-redis re-subscribes
// transparently after a dropped connection, which is the reconnect
// behaviour the listener relies on.
type redisBus struct {
	rdb *redis.Client
}

// NewRedisBus wraps an already-connected Redis client.
func NewRedisBus(rdb *redis.Client) Bus {
	return &redisBus{rdb: rdb}
}

func channelFor(table Table) (string, error) {
	switch table {
	case TableProjects:
		return channelProjects, nil
	case TableLots:
		return channelLots, nil
	}
	return "", fmt.Errorf("unwatched table %q", table)
}

func (b *redisBus) Publish(ctx context.Context, ev Event) error {
	ch, err := channelFor(ev.Table)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, ch, raw).Err()
}

func (b *redisBus) Subscribe(ctx context.Context, onEvent func(Event)) (*Subscription, error) {
	if onEvent == nil {
		return nil, fmt.Errorf("onEvent callback required")
	}

	sub := b.rdb.Subscribe(ctx, channelProjects, channelLots)

	// Confirm the subscription actually started before returning.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					log.Printf("[warn] changefeed: bad payload on %s: %v", m.Channel, err)
					continue
				}
				onEvent(ev)
			}
		}
	}()

	return newSubscription(func() {
		_ = sub.Close()
		<-done
	}), nil
}

func (b *redisBus) Close() error {
	return b.rdb.Close()
}

var _ Bus = (*redisBus)(nil)

// Subscription is a live feed subscription. Close is safe to call any
// number of times, including during teardown races.
type Subscription struct {
	once sync.Once
	stop func()
}

func newSubscription(stop func()) *Subscription {
	return &Subscription{stop: stop}
}

// Close tears the subscription down and waits for the delivery
// goroutine to exit. Idempotent.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(s.stop)
}
