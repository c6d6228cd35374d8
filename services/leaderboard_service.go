package services

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"game-site-backend/metrics"
	"game-site-backend/models"
	"game-site-backend/store"
	"game-site-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type LeaderboardService struct {
	Store store.Store
}

func NewLeaderboardService(st store.Store) *LeaderboardService {
	return &LeaderboardService{Store: st}
}

// UpdateResult reports one recomputation run. Recomputation is not
// transactional: entries written before a mid-batch failure stay persisted,
// which is safe because re-running converges to the same result.
type UpdateResult struct {
	Success        bool   `json:"success"`
	GameID         string `json:"gameId"`
	EntriesUpdated int    `json:"entriesUpdated"`
	TotalEntries   int    `json:"totalEntries"`
	Message        string `json:"message,omitempty"`
}

// UpdateLeaderboard recomputes the persisted best-per-participant entries
// for a game from its raw score records. Only entries whose best value
// changed (or that do not exist yet) are written.
func (s *LeaderboardService) UpdateLeaderboard(ctx context.Context, gameID string) UpdateResult {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return UpdateResult{GameID: gameID, Message: "gameId is required"}
	}

	docs, err := s.Store.Query(ctx, store.CollectionScores, store.Filter{"eventId": gameID})
	if err != nil {
		log.Printf("ERROR reading scores for game %s: %v", gameID, err)
		return UpdateResult{GameID: gameID, Message: "failed to read score records"}
	}

	bests, err := bestByParticipant(docs)
	if err != nil {
		log.Printf("ERROR decoding scores for game %s: %v", gameID, err)
		return UpdateResult{GameID: gameID, Message: "failed to read score records"}
	}

	result := UpdateResult{Success: true, GameID: gameID, TotalEntries: len(bests)}
	now := time.Now().UTC()

	for participantID, best := range bests {
		existing, err := s.Store.Query(ctx, store.CollectionLeaderboard, store.Filter{
			"gameId":        gameID,
			"participantId": participantID,
		})
		if err != nil {
			log.Printf("ERROR reading leaderboard entry %s/%s: %v", gameID, participantID, err)
			result.Success = false
			result.Message = "failed to read leaderboard entries"
			return result
		}

		if len(existing) == 0 {
			entry := models.LeaderboardEntry{
				GameID:        gameID,
				ParticipantID: participantID,
				BestValue:     best.best,
				UpdatedAt:     now,
			}
			doc, err := store.Encode(entry)
			if err != nil {
				result.Success = false
				result.Message = "failed to encode leaderboard entry"
				return result
			}
			delete(doc, "id") // let the store assign one
			if _, err := s.Store.Create(ctx, store.CollectionLeaderboard, doc); err != nil {
				log.Printf("ERROR creating leaderboard entry %s/%s: %v", gameID, participantID, err)
				result.Success = false
				result.Message = "failed to write leaderboard entry"
				return result
			}
			result.EntriesUpdated++
			metrics.LeaderboardEntriesWritten.Inc()
			continue
		}

		var current models.LeaderboardEntry
		if err := store.Decode(existing[0], &current); err != nil {
			result.Success = false
			result.Message = "failed to decode leaderboard entry"
			return result
		}
		if current.BestValue == best.best {
			continue
		}

		patch := store.Document{"bestValue": best.best, "updatedAt": now}
		if err := s.Store.Update(ctx, store.CollectionLeaderboard, current.ID, patch); err != nil {
			log.Printf("ERROR updating leaderboard entry %s/%s: %v", gameID, participantID, err)
			result.Success = false
			result.Message = "failed to write leaderboard entry"
			return result
		}
		result.EntriesUpdated++
		metrics.LeaderboardEntriesWritten.Inc()
	}

	return result
}

// CheckLeaderboardStatus is a cheap existence/count probe used to decide
// whether to render the leaderboard at all. It never recomputes.
func (s *LeaderboardService) CheckLeaderboardStatus(ctx context.Context, gameID string) (bool, int, error) {
	docs, err := s.Store.Query(ctx, store.CollectionLeaderboard, store.Filter{"gameId": gameID})
	if err != nil {
		return false, 0, err
	}
	return len(docs) > 0, len(docs), nil
}

// UpdateEndpoint serves POST /leaderboard/update.
func (s *LeaderboardService) UpdateEndpoint(c *fiber.Ctx) error {
	type Req struct {
		GameID string `json:"gameId"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid JSON")
	}
	if strings.TrimSpace(req.GameID) == "" {
		return utils.Error(c, fiber.StatusBadRequest, "gameId is required")
	}

	result := s.UpdateLeaderboard(c.Context(), req.GameID)
	if !result.Success {
		metrics.LeaderboardRefreshes.WithLabelValues("failed", "http").Inc()
		return c.Status(fiber.StatusInternalServerError).JSON(utils.APIResponse{
			Success: false,
			Error:   result.Message,
			Data:    result,
		})
	}
	metrics.LeaderboardRefreshes.WithLabelValues("ok", "http").Inc()
	return utils.Success(c, result)
}

// StatusEndpoint serves GET /leaderboard/status?gameId.
func (s *LeaderboardService) StatusEndpoint(c *fiber.Ctx) error {
	gameID := strings.TrimSpace(c.Query("gameId"))
	if gameID == "" {
		return utils.Error(c, fiber.StatusBadRequest, "gameId is required")
	}

	hasEntries, count, err := s.CheckLeaderboardStatus(c.Context(), gameID)
	if err != nil {
		log.Printf("ERROR checking leaderboard status for game %s: %v", gameID, err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to check leaderboard status")
	}
	return utils.Success(c, fiber.Map{
		"hasEntries": hasEntries,
		"entryCount": count,
	})
}

// GetLeaderboard serves GET /leaderboard?gameId: the persisted entries in
// best-first order, without triggering recomputation.
func (s *LeaderboardService) GetLeaderboard(c *fiber.Ctx) error {
	gameID := strings.TrimSpace(c.Query("gameId"))
	if gameID == "" {
		return utils.Error(c, fiber.StatusBadRequest, "gameId is required")
	}

	docs, err := s.Store.Query(c.Context(), store.CollectionLeaderboard, store.Filter{"gameId": gameID})
	if err != nil {
		log.Printf("ERROR fetching leaderboard for game %s: %v", gameID, err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to fetch leaderboard")
	}

	entries := make([]models.LeaderboardEntry, 0, len(docs))
	for _, doc := range docs {
		var entry models.LeaderboardEntry
		if err := store.Decode(doc, &entry); err != nil {
			log.Printf("ERROR decoding leaderboard entry for game %s: %v", gameID, err)
			return utils.Error(c, fiber.StatusInternalServerError, "failed to fetch leaderboard")
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].BestValue != entries[j].BestValue {
			return entries[i].BestValue < entries[j].BestValue
		}
		return entries[i].ParticipantID < entries[j].ParticipantID
	})

	return utils.Success(c, entries)
}

// DeleteEntry serves DELETE /admin/leaderboard/:id. Deleting an id that is
// already gone still answers 200.
func (s *LeaderboardService) DeleteEntry(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.Store.Delete(c.Context(), store.CollectionLeaderboard, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.Success(c, nil)
		}
		log.Printf("ERROR deleting leaderboard entry %s: %v", id, err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to delete leaderboard entry")
	}
	return utils.Success(c, nil)
}
