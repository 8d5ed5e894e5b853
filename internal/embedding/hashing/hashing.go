package hashing

import (
	"context"
	"hash/fnv"
	"math"

	"smartdoc/internal/textutil"
)

// Embedder is an offline embedder that hashes stopword-filtered tokens into a
// fixed number of buckets, weights them by sublinear term frequency and
// L2-normalizes the result. Identical input always yields identical vectors.
type Embedder struct {
	dimension int
	stopwords textutil.Set
}

// NewEmbedder creates a hashing embedder with the given vector dimension.
func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = 384
	}
	return &Embedder{
		dimension: dimension,
		stopwords: textutil.QueryStopwords(),
	}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "hashing" }

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed computes one vector per text.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.embedOne(t)
	}
	return out, nil
}

func (e *Embedder) embedOne(text string) []float32 {
	tf := make(map[int]float64)
	for _, tok := range e.tokenize(text) {
		tf[e.bucket(tok)]++
	}
	vec := make([]float32, e.dimension)
	if len(tf) == 0 {
		return vec
	}
	norm := 0.0
	weights := make(map[int]float64, len(tf))
	for idx, count := range tf {
		w := 1 + math.Log(count)
		weights[idx] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for idx, w := range weights {
		vec[idx] = float32(w / norm)
	}
	return vec
}

func (e *Embedder) bucket(token string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return int(h.Sum32() % uint32(e.dimension))
}

func (e *Embedder) tokenize(text string) []string {
	raw := textutil.Words(text)
	out := raw[:0]
	for _, t := range raw {
		if e.stopwords.Has(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
