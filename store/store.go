// store/store.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Collection names. Every document lives in exactly one collection.
const (
	CollectionScores      = "scores"
	CollectionLeaderboard = "leaderboard"
	CollectionContacts    = "contact_messages"
	CollectionNewsletter  = "newsletter_subscribers"
	CollectionEvents      = "events"
)

// ErrNotFound is returned when an id does not exist in a collection.
var ErrNotFound = errors.New("document not found")

// Document is one record in a collection. The "id" field is always present
// on documents returned by a Store.
type Document map[string]any

// Filter matches documents whose top-level fields equal every entry.
// An empty filter matches everything in the collection.
type Filter map[string]any

// Store is the document-database capability the services are written against.
// The production binding is Postgres (see GormStore); tests use MemStore.
type Store interface {
	Query(ctx context.Context, collection string, filter Filter) ([]Document, error)
	Get(ctx context.Context, collection string, id string) (Document, error)
	// Create persists data and returns its id. A non-empty "id" field in
	// data is honored; otherwise one is generated.
	Create(ctx context.Context, collection string, data Document) (string, error)
	Update(ctx context.Context, collection string, id string, patch Document) error
	Delete(ctx context.Context, collection string, id string) error
}

// Encode converts a model struct into a Document through its json tags.
func Encode(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return doc, nil
}

// Decode fills a model struct from a Document through its json tags.
func Decode(doc Document, out any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}
