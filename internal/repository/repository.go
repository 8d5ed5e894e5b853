// Package repository owns stored documents and their vector indexes.
package repository

import (
	"fmt"
	"sync"
	"time"

	"smartdoc/internal/domain"
	"smartdoc/internal/vectorstore/memory"
)

// Repository is an in-memory, append-only document store.
// Create is serialized; stored documents are immutable and read without copying.
type Repository struct {
	mu     sync.RWMutex
	nextID int
	byID   map[int]*domain.Document
	order  []*domain.Document
	now    func() time.Time
}

// New returns an empty repository whose first id is 1.
func New() *Repository {
	return &Repository{
		nextID: 1,
		byID:   make(map[int]*domain.Document),
		now:    time.Now,
	}
}

// Create builds the document's vector index, then stores the document under a fresh id.
func (r *Repository) Create(filename, rawText string, chunks []string, embeddings [][]float32) (int, error) {
	if len(chunks) != len(embeddings) {
		return 0, fmt.Errorf("%w: %d chunks but %d embeddings", domain.ErrInvalidInput, len(chunks), len(embeddings))
	}
	index, err := memory.Build(embeddings)
	if err != nil {
		return 0, fmt.Errorf("build index: %w", err)
	}
	doc := &domain.Document{
		Filename:   filename,
		RawText:    rawText,
		Chunks:     append([]string(nil), chunks...),
		Embeddings: embeddings,
		Index:      index,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	doc.ID = r.nextID
	doc.CreatedAt = r.now()
	r.nextID++
	r.byID[doc.ID] = doc
	r.order = append(r.order, doc)
	return doc.ID, nil
}

// Get returns the document with the given id or domain.ErrNotFound.
func (r *Repository) Get(id int) (*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}
	return doc, nil
}

// List returns all documents in creation order.
func (r *Repository) List() []*domain.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*domain.Document(nil), r.order...)
}

// Len returns the number of stored documents.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
