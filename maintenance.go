package main

import (
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// StartCacheClearScheduler starts a cron-based scheduler that periodically
// performs the bulk cache clear, sweeping out expired entries that lazy
// eviction leaves behind. The schedule is a standard 5-field cron expression
// (minute hour day-of-month month day-of-week); empty disables it.
func StartCacheClearScheduler(cfg Config, cache *ClassificationCache) {
	schedule := strings.TrimSpace(cfg.CacheClearSchedule)
	if schedule == "" {
		log.Println("Scheduled cache clear disabled (cache_clear_schedule not set)")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid cache_clear_schedule '%s': %v — scheduled cache clear disabled", schedule, err)
		return
	}
	log.Printf("Scheduled cache clear enabled (cron: %s)", schedule)

	go func() {
		for {
			now := time.Now()
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next cache clear at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)

			removed := cache.Clear()
			log.Printf("Scheduled cache clear removed=%d", removed)
		}
	}()
}
