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

type NewsletterService struct {
	Store store.Store
}

func NewNewsletterService(st store.Store) *NewsletterService {
	return &NewsletterService{Store: st}
}

// Subscribe serves POST /newsletter/subscribe. Subscribing an address that
// is already on the list is a 200 no-op.
func (s *NewsletterService) Subscribe(c *fiber.Ctx) error {
	type Req struct {
		Email string `json:"email"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid JSON")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !isValidEmail(email) {
		return utils.Error(c, fiber.StatusBadRequest, "a valid email is required")
	}

	existing, err := s.Store.Query(c.Context(), store.CollectionNewsletter, store.Filter{"email": email})
	if err != nil {
		log.Printf("ERROR checking newsletter subscription: %v", err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to subscribe")
	}
	if len(existing) > 0 {
		return utils.Message(c, "already subscribed")
	}

	sub := models.NewsletterSubscriber{
		Email:        email,
		SubscribedAt: time.Now().UTC(),
	}
	doc, err := store.Encode(sub)
	if err != nil {
		log.Printf("ERROR encoding subscriber: %v", err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to subscribe")
	}
	delete(doc, "id")

	if _, err := s.Store.Create(c.Context(), store.CollectionNewsletter, doc); err != nil {
		log.Printf("ERROR saving subscriber: %v", err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to subscribe")
	}
	return utils.Message(c, "subscribed")
}

// ListSubscribers serves GET /admin/newsletter-subscribers, newest first.
func (s *NewsletterService) ListSubscribers(c *fiber.Ctx) error {
	docs, err := s.Store.Query(c.Context(), store.CollectionNewsletter, nil)
	if err != nil {
		log.Printf("ERROR fetching subscribers: %v", err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to fetch subscribers")
	}

	subs := make([]models.NewsletterSubscriber, 0, len(docs))
	for _, doc := range docs {
		var sub models.NewsletterSubscriber
		if err := store.Decode(doc, &sub); err != nil {
			log.Printf("ERROR decoding subscriber: %v", err)
			return utils.Error(c, fiber.StatusInternalServerError, "failed to fetch subscribers")
		}
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].SubscribedAt.After(subs[j].SubscribedAt)
	})
	return utils.Success(c, subs)
}

// DeleteSubscriber serves DELETE /admin/newsletter-subscribers/:id
// (idempotent).
func (s *NewsletterService) DeleteSubscriber(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.Store.Delete(c.Context(), store.CollectionNewsletter, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.Success(c, nil)
		}
		log.Printf("ERROR deleting subscriber %s: %v", id, err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to delete subscriber")
	}
	return utils.Success(c, nil)
}
