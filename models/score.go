// models/score.go
package models

import "time"

// ScoreRecord is one raw submission. Lower value is better (completion time
// in seconds). Records are immutable; the admin dashboard can only delete.
type ScoreRecord struct {
	ID            string    `json:"id"`
	ParticipantID string    `json:"participantId"`
	EventID       string    `json:"eventId"`
	Value         float64   `json:"value"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// RankingEntry is derived on every query and never persisted.
type RankingEntry struct {
	ParticipantID string  `json:"participantId"`
	BestValue     float64 `json:"bestValue"`
	Rank          int     `json:"rank"`
}
