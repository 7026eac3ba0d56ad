// Package changefeed carries "something changed" signals between
// backend instances. Every instance publishes a notification after a
// successful write, and every instance listens so it can drop its
// local snapshot when another admin writes concurrently.
package changefeed

import "context"

// Table names a watched record category.
type Table string

const (
	TableProjects Table = "projects"
	TableLots     Table = "lots"
)

// Event is a change notification. It says which table changed and how,
// nothing about which row; consumers are expected to refetch wholesale.
type Event struct {
	Table  Table  `json:"table"`
	Action string `json:"action"` // insert | update | delete
}

// Publisher is the write half of the feed. Services call it after a
// successful store write.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Bus is a publish/subscribe transport for change events.
type Bus interface {
	Publisher
	// Subscribe delivers every event for the watched tables to onEvent
	// (from a single goroutine) until the subscription is closed.
	Subscribe(ctx context.Context, onEvent func(Event)) (*Subscription, error)
	Close() error
}
