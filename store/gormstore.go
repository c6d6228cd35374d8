// store/gormstore.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// documentRow is the single table backing every collection: one jsonb blob
// per document, keyed by (collection, id).
type documentRow struct {
	Collection string `gorm:"primaryKey;size:64"`
	ID         string `gorm:"primaryKey;size:64"`
	Data       []byte `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (documentRow) TableName() string { return "documents" }

// GormStore is the Postgres binding of Store. Filters are pushed down as
// jsonb containment so the database does the matching.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) AutoMigrate() error {
	return s.DB.AutoMigrate(&documentRow{})
}

func (s *GormStore) Query(ctx context.Context, collection string, filter Filter) ([]Document, error) {
	q := s.DB.WithContext(ctx).Where("collection = ?", collection)
	if len(filter) > 0 {
		cond, err := json.Marshal(filter)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal filter: %w", err)
		}
		q = q.Where("data @> ?", string(cond))
	}

	var rows []documentRow
	if err := q.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		var doc Document
		if err := json.Unmarshal(row.Data, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s/%s: %w", collection, row.ID, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *GormStore) Get(ctx context.Context, collection string, id string) (Document, error) {
	var row documentRow
	err := s.DB.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}

	var doc Document
	if err := json.Unmarshal(row.Data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

func (s *GormStore) Create(ctx context.Context, collection string, data Document) (string, error) {
	id, _ := data["id"].(string)
	if id == "" {
		id = uuid.NewString()
	}

	doc := clone(data)
	doc["id"] = id

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal document: %w", err)
	}

	row := documentRow{Collection: collection, ID: id, Data: raw}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("failed to create %s/%s: %w", collection, id, err)
	}
	return id, nil
}

func (s *GormStore) Update(ctx context.Context, collection string, id string, patch Document) error {
	doc, err := s.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	for k, v := range patch {
		doc[k] = v
	}
	doc["id"] = id

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	res := s.DB.WithContext(ctx).Model(&documentRow{}).
		Where("collection = ? AND id = ?", collection, id).
		Update("data", raw)
	if res.Error != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, collection string, id string) error {
	res := s.DB.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&documentRow{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
