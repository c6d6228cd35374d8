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
	"github.com/gosimple/slug"
)

type EventService struct {
	Store store.Store
}

func NewEventService(st store.Store) *EventService {
	return &EventService{Store: st}
}

// CreateEvent serves POST /admin/events. The event id is the slug of its
// name ("Speed Run" -> "speed-run") so score submissions and site URLs can
// reference it directly.
func (s *EventService) CreateEvent(c *fiber.Ctx) error {
	type Req struct {
		Name string `json:"name"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid JSON")
	}

	req.Name = strings.TrimSpace(req.Name)
	id := slug.Make(req.Name)
	if id == "" {
		return utils.Error(c, fiber.StatusBadRequest, "name is required")
	}

	if _, err := s.Store.Get(c.Context(), store.CollectionEvents, id); err == nil {
		return utils.Error(c, fiber.StatusConflict, "event already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("ERROR checking event %s: %v", id, err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to create event")
	}

	event := models.Event{
		ID:        id,
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}
	doc, err := store.Encode(event)
	if err != nil {
		log.Printf("ERROR encoding event: %v", err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to create event")
	}

	if _, err := s.Store.Create(c.Context(), store.CollectionEvents, doc); err != nil {
		log.Printf("ERROR saving event %s: %v", id, err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to create event")
	}
	return utils.Success(c, event)
}

// ListEvents serves GET /events (public, drives the category tabs).
func (s *EventService) ListEvents(c *fiber.Ctx) error {
	docs, err := s.Store.Query(c.Context(), store.CollectionEvents, nil)
	if err != nil {
		log.Printf("ERROR fetching events: %v", err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to fetch events")
	}

	events := make([]models.Event, 0, len(docs))
	for _, doc := range docs {
		var event models.Event
		if err := store.Decode(doc, &event); err != nil {
			log.Printf("ERROR decoding event: %v", err)
			return utils.Error(c, fiber.StatusInternalServerError, "failed to fetch events")
		}
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Name < events[j].Name
	})
	return utils.Success(c, events)
}

// DeleteEvent serves DELETE /admin/events/:id (idempotent). Scores for the
// event are kept; without the event they simply stop accepting submissions.
func (s *EventService) DeleteEvent(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.Store.Delete(c.Context(), store.CollectionEvents, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.Success(c, nil)
		}
		log.Printf("ERROR deleting event %s: %v", id, err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to delete event")
	}
	return utils.Success(c, nil)
}
