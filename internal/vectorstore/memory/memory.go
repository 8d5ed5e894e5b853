package memory

import (
	"errors"
	"fmt"
	"sort"

	"smartdoc/internal/domain"
)

// ErrDimensionMismatch is returned when vectors of different lengths meet.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Index is an exact, brute-force nearest-neighbour index using squared L2 distance.
// It is immutable once built and safe for concurrent readers.
type Index struct {
	dimension int
	vectors   [][]float32
}

var _ domain.VectorIndex = (*Index)(nil)

// Build copies vectors into a new index. Position i identifies vectors[i].
// The first vector fixes the dimension.
func Build(vectors [][]float32) (*Index, error) {
	idx := &Index{vectors: make([][]float32, len(vectors))}
	for i, v := range vectors {
		if i == 0 {
			idx.dimension = len(v)
		} else if len(v) != idx.dimension {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, want %d", ErrDimensionMismatch, i, len(v), idx.dimension)
		}
		idx.vectors[i] = append([]float32(nil), v...)
	}
	return idx, nil
}

// Len returns the number of indexed vectors.
func (x *Index) Len() int { return len(x.vectors) }

// Dimension returns the vector length, or 0 for an empty index.
func (x *Index) Dimension() int { return x.dimension }

// Search returns up to k neighbours ordered by ascending distance, ties by position.
func (x *Index) Search(query []float32, k int) ([]domain.Neighbor, error) {
	if k <= 0 || len(x.vectors) == 0 {
		return []domain.Neighbor{}, nil
	}
	if len(query) != x.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", ErrDimensionMismatch, len(query), x.dimension)
	}
	hits := make([]domain.Neighbor, len(x.vectors))
	for i, v := range x.vectors {
		hits[i] = domain.Neighbor{Position: i, Distance: squaredL2(v, query)}
	}
	// stable on position order, so equal distances keep chunk order
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

func squaredL2(a, b []float32) float64 {
	sum := 0.0
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
