// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartLeaderboardScheduler keeps the Redis leaderboard snapshot warm so the
// public endpoint rarely hits Postgres.
func (s *ReputationService) StartLeaderboardScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: recompute the top-reputation snapshot
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := s.RefreshLeaderboard(ctx); err != nil {
				log.Printf("[Scheduler] Leaderboard refresh failed: %v", err)
			}
		}),
	)
}
