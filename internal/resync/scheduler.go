package resync

import (
	"log"

	"github.com/robfig/cron/v3"
)

// Invalidator is the snapshot cache's staleness hook.
type Invalidator interface {
	Invalidate()
}

// Scheduler periodically forces a full snapshot refetch. Change
// notifications can be missed while a redis connection is down; a
// timed invalidation bounds how long an instance can serve a view that
// silently drifted.
type Scheduler struct {
	cache Invalidator
	cron  *cron.Cron
}

func NewScheduler(cache Invalidator) *Scheduler {
	return &Scheduler{cache: cache}
}

// Start initializes cron tasks
func (s *Scheduler) Start() {
	c := cron.New()

	// every 5 minutes
	_, err := c.AddFunc("*/5 * * * *", func() {
		log.Println("[info] resync: scheduled snapshot invalidation")
		s.cache.Invalidate()
	})
	if err != nil {
		log.Printf("Failed to create cron job: %v", err)
		return
	}

	log.Println("Resync scheduler started (invalidating every 5 minutes)")
	c.Start()
	s.cron = c
}

// Stop halts the scheduler; safe when Start never ran.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}
