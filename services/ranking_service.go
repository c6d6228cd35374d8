package services

import (
	"context"
	"errors"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"game-site-backend/metrics"
	"game-site-backend/models"
	"game-site-backend/store"
	"game-site-backend/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ErrMissingEvent is returned when an event id is empty after trimming.
// Callers reject this before any store call happens.
var ErrMissingEvent = errors.New("event id is required")

type RankingService struct {
	Store store.Store
}

func NewRankingService(st store.Store) *RankingService {
	return &RankingService{Store: st}
}

// participantBest is one participant's aggregate over an event: the minimum
// submitted value and the earliest time that value was achieved.
type participantBest struct {
	participantID string
	best          float64
	achievedAt    time.Time
}

// bestByParticipant reduces raw score documents to best-per-participant.
// Shared by the ranking computation and the leaderboard updater so both
// agree on what "best" means.
func bestByParticipant(docs []store.Document) (map[string]participantBest, error) {
	bests := make(map[string]participantBest)
	for _, doc := range docs {
		var rec models.ScoreRecord
		if err := store.Decode(doc, &rec); err != nil {
			return nil, err
		}

		cur, seen := bests[rec.ParticipantID]
		switch {
		case !seen || rec.Value < cur.best:
			bests[rec.ParticipantID] = participantBest{
				participantID: rec.ParticipantID,
				best:          rec.Value,
				achievedAt:    rec.SubmittedAt,
			}
		case rec.Value == cur.best && rec.SubmittedAt.Before(cur.achievedAt):
			cur.achievedAt = rec.SubmittedAt
			bests[rec.ParticipantID] = cur
		}
	}
	return bests, nil
}

// ComputeRankings derives the ordered best-per-participant ranking for an
// event. Lower values rank higher; ties go to whoever achieved the value
// first, then to the lexically smaller participant id so reruns over the
// same data produce identical output. total is the number of distinct
// participants before the [offset, offset+limit) slice is taken.
func (s *RankingService) ComputeRankings(ctx context.Context, eventID string, limit, offset int) ([]models.RankingEntry, int, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, 0, ErrMissingEvent
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	docs, err := s.Store.Query(ctx, store.CollectionScores, store.Filter{"eventId": eventID})
	if err != nil {
		return nil, 0, err
	}

	bests, err := bestByParticipant(docs)
	if err != nil {
		return nil, 0, err
	}

	ordered := make([]participantBest, 0, len(bests))
	for _, b := range bests {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].best != ordered[j].best {
			return ordered[i].best < ordered[j].best
		}
		if !ordered[i].achievedAt.Equal(ordered[j].achievedAt) {
			return ordered[i].achievedAt.Before(ordered[j].achievedAt)
		}
		return ordered[i].participantID < ordered[j].participantID
	})

	total := len(ordered)
	if offset >= total {
		return []models.RankingEntry{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	entries := make([]models.RankingEntry, 0, end-offset)
	for i := offset; i < end; i++ {
		entries = append(entries, models.RankingEntry{
			ParticipantID: ordered[i].participantID,
			BestValue:     ordered[i].best,
			Rank:          i + 1,
		})
	}
	return entries, total, nil
}

// GetRankings serves GET /rankings?eventId&page&pageSize.
func (s *RankingService) GetRankings(c *fiber.Ctx) error {
	eventID := strings.TrimSpace(c.Query("eventId"))
	if eventID == "" {
		return utils.Error(c, fiber.StatusBadRequest, "eventId is required")
	}

	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("pageSize"), defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	offset := (page - 1) * pageSize

	entries, total, err := s.ComputeRankings(c.Context(), eventID, pageSize, offset)
	if err != nil {
		log.Printf("ERROR computing rankings for event %s: %v", eventID, err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to compute rankings")
	}

	metrics.RankingQueries.Inc()

	totalPages := 0
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return utils.Success(c, fiber.Map{
		"rankings":   entries,
		"total":      total,
		"event":      eventID,
		"page":       page,
		"pageSize":   pageSize,
		"totalPages": totalPages,
	})
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
