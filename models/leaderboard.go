// models/leaderboard.go
package models

import "time"

// LeaderboardEntry is the persisted best-per-participant aggregate for a
// game. At most one entry exists per (gameId, participantId); only the
// leaderboard updater writes them.
type LeaderboardEntry struct {
	ID            string    `json:"id"`
	GameID        string    `json:"gameId"`
	ParticipantID string    `json:"participantId"`
	BestValue     float64   `json:"bestValue"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
