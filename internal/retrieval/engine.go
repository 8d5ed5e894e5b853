package retrieval

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"smartdoc/internal/domain"
)

// Result is the ranked context assembled for a query.
type Result struct {
	Context   string
	Chunks    []string
	Positions []int
	Distances []float64
}

// Engine turns a query into the nearest chunks of one document.
type Engine struct {
	embedder domain.Embedder
	log      *zap.Logger
}

// NewEngine creates a retrieval engine backed by embedder.
func NewEngine(embedder domain.Embedder, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{embedder: embedder, log: log}
}

// Retrieve embeds query, searches doc's index for the k nearest chunks and
// joins them nearest-first into a single context string.
func (e *Engine) Retrieve(ctx context.Context, doc *domain.Document, query string, k int) (Result, error) {
	vecs, err := e.embedder.Embed(ctx, []string{query})
	if err != nil {
		return Result{}, fmt.Errorf("%w: embed query: %w", domain.ErrRetrieval, err)
	}
	if len(vecs) != 1 {
		return Result{}, fmt.Errorf("%w: embedder returned %d vectors for one query", domain.ErrRetrieval, len(vecs))
	}

	hits, err := doc.Index.Search(vecs[0], k)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}

	res := Result{
		Chunks:    make([]string, 0, len(hits)),
		Positions: make([]int, 0, len(hits)),
		Distances: make([]float64, 0, len(hits)),
	}
	for _, h := range hits {
		if h.Position < 0 || h.Position >= len(doc.Chunks) {
			e.log.Warn("index position out of range",
				zap.Int("doc_id", doc.ID), zap.Int("position", h.Position), zap.Int("chunks", len(doc.Chunks)))
			continue
		}
		res.Chunks = append(res.Chunks, doc.Chunks[h.Position])
		res.Positions = append(res.Positions, h.Position)
		res.Distances = append(res.Distances, h.Distance)
	}
	res.Context = strings.Join(res.Chunks, " ")
	if res.Context == "" {
		return Result{}, fmt.Errorf("%w: document %d", domain.ErrRetrieval, doc.ID)
	}
	return res, nil
}
