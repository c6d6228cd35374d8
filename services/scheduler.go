// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"game-site-backend/metrics"
	"game-site-backend/models"
	"game-site-backend/store"

	"github.com/go-co-op/gocron/v2"
)

// StartRefreshScheduler recomputes the leaderboard for every event on a
// fixed interval. Overlapping runs are harmless: recomputation is
// idempotent and converges on the same underlying score records.
func (s *LeaderboardService) StartRefreshScheduler(interval time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx := context.Background()

			docs, err := s.Store.Query(ctx, store.CollectionEvents, nil)
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, doc := range docs {
				var event models.Event
				if err := store.Decode(doc, &event); err != nil {
					log.Printf("[Scheduler] Failed to decode event: %v", err)
					continue
				}

				result := s.UpdateLeaderboard(ctx, event.ID)
				if !result.Success {
					metrics.LeaderboardRefreshes.WithLabelValues("failed", "scheduler").Inc()
					log.Printf("[Scheduler] Failed to refresh leaderboard for %s: %s", event.ID, result.Message)
					continue
				}
				metrics.LeaderboardRefreshes.WithLabelValues("ok", "scheduler").Inc()
				if result.EntriesUpdated > 0 {
					log.Printf("✅ Refreshed leaderboard for %s: %d/%d entries updated",
						event.ID, result.EntriesUpdated, result.TotalEntries)
				}
			}
		}),
	)
}
