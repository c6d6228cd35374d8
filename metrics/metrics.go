// metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RankingQueries counts GET /rankings computations.
	RankingQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "site_ranking_queries_total",
		Help: "Number of ranking computations served.",
	})

	// LeaderboardRefreshes counts leaderboard recomputations by outcome
	// (ok, failed) and by trigger (http, scheduler).
	LeaderboardRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "site_leaderboard_refreshes_total",
		Help: "Number of leaderboard recomputations by outcome and trigger.",
	}, []string{"outcome", "trigger"})

	// LeaderboardEntriesWritten counts entry writes done by recomputations.
	LeaderboardEntriesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "site_leaderboard_entries_written_total",
		Help: "Number of leaderboard entries created or overwritten.",
	})
)
