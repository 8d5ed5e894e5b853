package domain

import (
	"context"
	"time"
)

// NoAnswer is returned by answerers when the context holds nothing useful.
const NoAnswer = "No answer found."

// Document is an uploaded file after extraction, segmentation and indexing.
// A stored Document is never mutated.
type Document struct {
	ID         int
	Filename   string
	RawText    string
	Chunks     []string
	Embeddings [][]float32
	Index      VectorIndex
	CreatedAt  time.Time
}

// Info returns the listing view of the document.
func (d *Document) Info() DocumentInfo {
	return DocumentInfo{
		ID:         d.ID,
		Filename:   d.Filename,
		TextLength: len([]rune(d.RawText)),
		ChunkCount: len(d.Chunks),
	}
}

// DocumentInfo is the metadata exposed for listing and lookups.
type DocumentInfo struct {
	ID         int
	Filename   string
	TextLength int
	ChunkCount int
}

// Neighbor is one nearest-neighbour hit: a chunk position and its squared L2 distance.
type Neighbor struct {
	Position int
	Distance float64
}

// VectorIndex answers nearest-neighbour queries over a document's chunk embeddings.
type VectorIndex interface {
	Len() int
	Dimension() int
	Search(query []float32, k int) ([]Neighbor, error)
}

// Embedder converts texts into fixed-dimension vectors, one per input, same order.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Summarizer produces an abstractive or extractive summary of text.
type Summarizer interface {
	Name() string
	Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error)
}

// Answerer extracts an answer to question from context.
type Answerer interface {
	Name() string
	Answer(ctx context.Context, question, context string) (string, error)
}

// Extractor turns uploaded bytes into plain text.
type Extractor interface {
	Extract(data []byte, filename string) (string, error)
}
