package services

import (
	"errors"
	"log"
	"regexp"
	"sort"
	"strings"
	"time"

	"game-site-backend/models"
	"game-site-backend/store"
	"game-site-backend/utils"

	"github.com/gofiber/fiber/v2"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func isValidEmail(email string) bool {
	return len(email) <= 254 && emailPattern.MatchString(email)
}

type ContactService struct {
	Store store.Store
}

func NewContactService(st store.Store) *ContactService {
	return &ContactService{Store: st}
}

// SubmitMessage serves POST /contact (public form).
func (s *ContactService) SubmitMessage(c *fiber.Ctx) error {
	type Req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid JSON")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Message == "" {
		return utils.Error(c, fiber.StatusBadRequest, "name and message are required")
	}
	if !isValidEmail(req.Email) {
		return utils.Error(c, fiber.StatusBadRequest, "a valid email is required")
	}

	msg := models.ContactMessage{
		Name:       req.Name,
		Email:      req.Email,
		Message:    req.Message,
		ReceivedAt: time.Now().UTC(),
	}
	doc, err := store.Encode(msg)
	if err != nil {
		log.Printf("ERROR encoding contact message: %v", err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to save message")
	}
	delete(doc, "id")

	id, err := s.Store.Create(c.Context(), store.CollectionContacts, doc)
	if err != nil {
		log.Printf("ERROR saving contact message: %v", err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to save message")
	}
	return utils.Success(c, fiber.Map{"id": id})
}

// ListMessages serves GET /admin/contact-messages, newest first.
func (s *ContactService) ListMessages(c *fiber.Ctx) error {
	docs, err := s.Store.Query(c.Context(), store.CollectionContacts, nil)
	if err != nil {
		log.Printf("ERROR fetching contact messages: %v", err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to fetch messages")
	}

	msgs := make([]models.ContactMessage, 0, len(docs))
	for _, doc := range docs {
		var msg models.ContactMessage
		if err := store.Decode(doc, &msg); err != nil {
			log.Printf("ERROR decoding contact message: %v", err)
			return utils.Error(c, fiber.StatusInternalServerError, "failed to fetch messages")
		}
		msgs = append(msgs, msg)
	}
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].ReceivedAt.After(msgs[j].ReceivedAt)
	})
	return utils.Success(c, msgs)
}

// DeleteMessage serves DELETE /admin/contact-messages/:id (idempotent).
func (s *ContactService) DeleteMessage(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.Store.Delete(c.Context(), store.CollectionContacts, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.Success(c, nil)
		}
		log.Printf("ERROR deleting contact message %s: %v", id, err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to delete message")
	}
	return utils.Success(c, nil)
}
