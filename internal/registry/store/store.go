// Package store maps the registry's two logical namespaces onto the kv
// handle: one primary record per document and a singleton index record. The
// two are independent storage entries; keeping them mutually consistent is
// the service layer's job, not this package's.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"quire/internal/kv"
	"quire/internal/registry/models"
	dErrors "quire/pkg/domain-errors"
)

const (
	indexKey     = "documents:index"
	docKeyPrefix = "documents:doc:"
)

// ErrNotFound signals that no primary record exists for the requested ID.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "Document not found")

// DocumentStore reads and writes primary records and the index record as
// whole values. No partial updates: the kv contract is get/put only.
type DocumentStore struct {
	kv kv.Store
}

// New wraps a kv handle.
func New(handle kv.Store) *DocumentStore {
	return &DocumentStore{kv: handle}
}

// GetDocument loads the primary record for id.
func (s *DocumentStore) GetDocument(ctx context.Context, id string) (models.Document, error) {
	raw, err := s.kv.Get(ctx, docKeyPrefix+id)
	if errors.Is(err, kv.ErrNotFound) {
		return models.Document{}, ErrNotFound
	}
	if err != nil {
		return models.Document{}, fmt.Errorf("get document %q: %w", id, err)
	}

	var doc models.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.Document{}, fmt.Errorf("decode document %q: %w", id, err)
	}
	return doc, nil
}

// PutDocument writes the primary record for doc.ID, overwriting any previous
// version.
func (s *DocumentStore) PutDocument(ctx context.Context, doc models.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %q: %w", doc.ID, err)
	}
	if err := s.kv.Put(ctx, docKeyPrefix+doc.ID, raw); err != nil {
		return fmt.Errorf("put document %q: %w", doc.ID, err)
	}
	return nil
}

// GetIndex loads the index record. A registry that has never seen a create
// has no index entry yet; that reads as an empty list, never as an error.
func (s *DocumentStore) GetIndex(ctx context.Context) ([]models.Summary, error) {
	raw, err := s.kv.Get(ctx, indexKey)
	if errors.Is(err, kv.ErrNotFound) {
		return []models.Summary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get index: %w", err)
	}

	var index []models.Summary
	if err := json.Unmarshal(raw, &index); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	if index == nil {
		index = []models.Summary{}
	}
	return index, nil
}

// PutIndex writes the index record as a whole.
func (s *DocumentStore) PutIndex(ctx context.Context, index []models.Summary) error {
	raw, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	if err := s.kv.Put(ctx, indexKey, raw); err != nil {
		return fmt.Errorf("put index: %w", err)
	}
	return nil
}
