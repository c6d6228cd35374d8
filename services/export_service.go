package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"time"

	"game-site-backend/models"
	"game-site-backend/store"
	"game-site-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
)

type ExportService struct {
	Store store.Store
}

func NewExportService(st store.Store) *ExportService {
	return &ExportService{Store: st}
}

// ExportEndpoint serves POST /admin/export {kind}. It renders the requested
// collection as CSV, uploads it to R2 and returns the public URL.
func (s *ExportService) ExportEndpoint(c *fiber.Ctx) error {
	type Req struct {
		Kind string `json:"kind"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid JSON")
	}

	if !utils.R2Enabled() {
		return utils.Error(c, fiber.StatusServiceUnavailable, "exports are not configured")
	}

	var header []string
	var rows [][]string
	switch req.Kind {
	case "contact-messages":
		docs, err := s.Store.Query(c.Context(), store.CollectionContacts, nil)
		if err != nil {
			log.Printf("ERROR reading contact messages for export: %v", err)
			return utils.Error(c, fiber.StatusInternalServerError, "failed to export")
		}
		header = []string{"id", "name", "email", "message", "receivedAt"}
		for _, doc := range docs {
			var msg models.ContactMessage
			if err := store.Decode(doc, &msg); err != nil {
				log.Printf("ERROR decoding contact message for export: %v", err)
				return utils.Error(c, fiber.StatusInternalServerError, "failed to export")
			}
			rows = append(rows, []string{msg.ID, msg.Name, msg.Email, msg.Message, msg.ReceivedAt.Format(time.RFC3339)})
		}
	case "newsletter-subscribers":
		docs, err := s.Store.Query(c.Context(), store.CollectionNewsletter, nil)
		if err != nil {
			log.Printf("ERROR reading subscribers for export: %v", err)
			return utils.Error(c, fiber.StatusInternalServerError, "failed to export")
		}
		header = []string{"id", "email", "subscribedAt"}
		for _, doc := range docs {
			var sub models.NewsletterSubscriber
			if err := store.Decode(doc, &sub); err != nil {
				log.Printf("ERROR decoding subscriber for export: %v", err)
				return utils.Error(c, fiber.StatusInternalServerError, "failed to export")
			}
			rows = append(rows, []string{sub.ID, sub.Email, sub.SubscribedAt.Format(time.RFC3339)})
		}
	default:
		return utils.Error(c, fiber.StatusBadRequest, "kind must be contact-messages or newsletter-subscribers")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(header)
	for _, row := range rows {
		_ = w.Write(row)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Printf("ERROR rendering CSV export: %v", err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to export")
	}

	key := fmt.Sprintf("exports/%s-%s.csv", slug.Make(req.Kind), time.Now().UTC().Format("20060102-150405"))
	url, err := utils.UploadBytesToR2(key, "text/csv", buf.Bytes())
	if err != nil {
		log.Printf("ERROR uploading export %s: %v", key, err)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to upload export")
	}

	log.Printf("✅ Exported %d %s rows to %s", len(rows), req.Kind, key)
	return utils.Success(c, fiber.Map{"url": url, "rows": len(rows)})
}
