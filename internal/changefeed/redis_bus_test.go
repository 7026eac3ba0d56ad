package changefeed

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	ctx := context.Background()
	err = client.Ping(ctx).Err()
	require.NoError(t, err)

	return client, mr
}

func TestRedisBus_PublishSubscribe(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	bus := NewRedisBus(client)
	ctx := context.Background()

	got := make(chan Event, 4)
	sub, err := bus.Subscribe(ctx, func(ev Event) { got <- ev })
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, bus.Publish(ctx, Event{Table: TableLots, Action: "update"}))
	require.NoError(t, bus.Publish(ctx, Event{Table: TableProjects, Action: "delete"}))

	select {
	case ev := <-got:
		assert.Equal(t, TableLots, ev.Table)
		assert.Equal(t, "update", ev.Action)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for lots event")
	}

	select {
	case ev := <-got:
		assert.Equal(t, TableProjects, ev.Table)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for projects event")
	}
}

func TestRedisBus_RejectsUnwatchedTable(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	bus := NewRedisBus(client)
	err := bus.Publish(context.Background(), Event{Table: Table("users"), Action: "update"})
	assert.Error(t, err)
}

func TestRedisBus_BadPayloadIsSkipped(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	bus := NewRedisBus(client)
	ctx := context.Background()

	got := make(chan Event, 4)
	sub, err := bus.Subscribe(ctx, func(ev Event) { got <- ev })
	require.NoError(t, err)
	defer sub.Close()

	// Garbage on the wire must not kill the delivery goroutine.
	require.NoError(t, client.Publish(ctx, "changes:lots", "not-json").Err())
	require.NoError(t, bus.Publish(ctx, Event{Table: TableLots, Action: "insert"}))

	select {
	case ev := <-got:
		assert.Equal(t, "insert", ev.Action)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event after bad payload")
	}
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	bus := NewRedisBus(client)
	sub, err := bus.Subscribe(context.Background(), func(Event) {})
	require.NoError(t, err)

	sub.Close()
	sub.Close()
	sub.Close()

	var nilSub *Subscription
	nilSub.Close() // teardown paths may race a nil subscription
}

func TestListener_InvalidatesOnAnyChange(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	bus := NewRedisBus(client)
	ctx := context.Background()

	var invalidations atomic.Int64
	l := NewListener(bus, invalidatorFunc(func() { invalidations.Add(1) }))
	require.NoError(t, l.Start(ctx))
	defer l.Stop()

	require.NoError(t, bus.Publish(ctx, Event{Table: TableLots, Action: "update"}))
	require.NoError(t, bus.Publish(ctx, Event{Table: TableProjects, Action: "insert"}))

	require.Eventually(t, func() bool {
		return invalidations.Load() == 2
	}, 2*time.Second, 5*time.Millisecond)
}

func TestListener_StopBeforeStart(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	l := NewListener(NewRedisBus(client), invalidatorFunc(func() {}))
	l.Stop()
	l.Stop()
}

type invalidatorFunc func()

func (f invalidatorFunc) Invalidate() { f() }
