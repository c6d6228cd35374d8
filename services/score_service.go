package services

import (
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"game-site-backend/models"
	"game-site-backend/store"
	"game-site-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ScoreService struct {
	Store store.Store
}

func NewScoreService(st store.Store) *ScoreService {
	return &ScoreService{Store: st}
}

// SubmitScore serves POST /scores. The event must exist; the value is a
// completion time in seconds and must be positive.
func (s *ScoreService) SubmitScore(c *fiber.Ctx) error {
	type Req struct {
		ParticipantID string  `json:"participantId"`
		EventID       string  `json:"eventId"`
		Value         float64 `json:"value"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid JSON")
	}

	req.ParticipantID = strings.TrimSpace(req.ParticipantID)
	req.EventID = strings.TrimSpace(req.EventID)
	if req.ParticipantID == "" || req.EventID == "" {
		return utils.Error(c, fiber.StatusBadRequest, "participantId and eventId are required")
	}
	if req.Value <= 0 {
		return utils.Error(c, fiber.StatusBadRequest, "value must be positive")
	}

	if _, err := s.Store.Get(c.Context(), store.CollectionEvents, req.EventID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.Error(c, fiber.StatusBadRequest, "unknown event")
		}
		log.Printf("ERROR checking event %s: %v", req.EventID, err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to save score")
	}

	rec := models.ScoreRecord{
		ParticipantID: req.ParticipantID,
		EventID:       req.EventID,
		Value:         req.Value,
		SubmittedAt:   time.Now().UTC(),
	}
	doc, err := store.Encode(rec)
	if err != nil {
		log.Printf("ERROR encoding score: %v", err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to save score")
	}
	delete(doc, "id")

	id, err := s.Store.Create(c.Context(), store.CollectionScores, doc)
	if err != nil {
		log.Printf("ERROR saving score: %v", err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to save score")
	}
	return utils.Success(c, fiber.Map{"id": id})
}

// ListScores serves GET /admin/scores?eventId, newest first. eventId is
// optional; without it every record is returned.
func (s *ScoreService) ListScores(c *fiber.Ctx) error {
	var filter store.Filter
	if eventID := strings.TrimSpace(c.Query("eventId")); eventID != "" {
		filter = store.Filter{"eventId": eventID}
	}

	docs, err := s.Store.Query(c.Context(), store.CollectionScores, filter)
	if err != nil {
		log.Printf("ERROR fetching scores: %v", err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to fetch scores")
	}

	recs := make([]models.ScoreRecord, 0, len(docs))
	for _, doc := range docs {
		var rec models.ScoreRecord
		if err := store.Decode(doc, &rec); err != nil {
			log.Printf("ERROR decoding score: %v", err)
			return utils.Error(c, fiber.StatusInternalServerError, "failed to fetch scores")
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].SubmittedAt.After(recs[j].SubmittedAt)
	})
	return utils.Success(c, recs)
}

// DeleteScore serves DELETE /admin/scores/:id (idempotent). The persisted
// leaderboard is not recomputed here; the scheduler or an explicit update
// call picks the change up.
func (s *ScoreService) DeleteScore(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.Store.Delete(c.Context(), store.CollectionScores, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.Success(c, nil)
		}
		log.Printf("ERROR deleting score %s: %v", id, err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to delete score")
	}
	return utils.Success(c, nil)
}
