// store/memstore.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// MemStore is an in-memory Store used by tests and local development.
// Documents are kept json-normalized so equality behaves like the jsonb
// binding, and iteration follows insertion order like the created_at sort.
type MemStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
	order       map[string][]string
}

func NewMemStore() *MemStore {
	return &MemStore{
		collections: make(map[string]map[string]Document),
		order:       make(map[string][]string),
	}
}

func (s *MemStore) Query(ctx context.Context, collection string, filter Filter) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want, err := normalize(Document(filter))
	if err != nil {
		return nil, err
	}

	var docs []Document
	for _, id := range s.order[collection] {
		doc, ok := s.collections[collection][id]
		if !ok {
			continue
		}
		if matches(doc, want) {
			docs = append(docs, clone(doc))
		}
	}
	return docs, nil
}

func (s *MemStore) Get(ctx context.Context, collection string, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(doc), nil
}

func (s *MemStore) Create(ctx context.Context, collection string, data Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, _ := data["id"].(string)
	if id == "" {
		id = uuid.NewString()
	}
	if _, exists := s.collections[collection][id]; exists {
		return "", fmt.Errorf("duplicate id %s in %s", id, collection)
	}

	doc, err := normalize(data)
	if err != nil {
		return "", err
	}
	if doc == nil {
		doc = Document{}
	}
	doc["id"] = id

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]Document)
	}
	s.collections[collection][id] = doc
	s.order[collection] = append(s.order[collection], id)
	return id, nil
}

func (s *MemStore) Update(ctx context.Context, collection string, id string, patch Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}

	merged := clone(doc)
	norm, err := normalize(patch)
	if err != nil {
		return err
	}
	for k, v := range norm {
		merged[k] = v
	}
	merged["id"] = id
	s.collections[collection][id] = merged
	return nil
}

func (s *MemStore) Delete(ctx context.Context, collection string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

// normalize round-trips values through json so ints, times and structs
// compare the way they would after a database read.
func normalize(doc Document) (Document, error) {
	if doc == nil {
		return nil, nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize document: %w", err)
	}
	var out Document
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to normalize document: %w", err)
	}
	return out, nil
}

func matches(doc Document, filter Document) bool {
	for k, v := range filter {
		if !reflect.DeepEqual(doc[k], v) {
			return false
		}
	}
	return true
}

func clone(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
