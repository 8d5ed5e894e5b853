package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleVectors() [][]float32 {
	return [][]float32{
		{0, 0},
		{1, 0},
		{0, 2},
		{3, 3},
		{-1, 0},
	}
}

func TestBuild(t *testing.T) {
	idx, err := Build(sampleVectors())
	require.NoError(t, err)
	assert.Equal(t, 5, idx.Len())
	assert.Equal(t, 2, idx.Dimension())
}

func TestBuild_CopiesInput(t *testing.T) {
	vecs := [][]float32{{1, 1}}
	idx, err := Build(vecs)
	require.NoError(t, err)
	vecs[0][0] = 100

	hits, err := idx.Search([]float32{1, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, hits[0].Distance)
}

func TestBuild_DimensionMismatch(t *testing.T) {
	_, err := Build([][]float32{{1, 2}, {1, 2, 3}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSearch_ResultCount(t *testing.T) {
	idx, err := Build(sampleVectors())
	require.NoError(t, err)

	for _, k := range []int{1, 3, 5, 7, 100} {
		hits, err := idx.Search([]float32{0.5, 0.5}, k)
		require.NoError(t, err)
		assert.Len(t, hits, min(k, 5))
		for i := 1; i < len(hits); i++ {
			assert.LessOrEqual(t, hits[i-1].Distance, hits[i].Distance)
		}
	}
}

func TestSearch_ExactMatchFirst(t *testing.T) {
	vecs := sampleVectors()
	idx, err := Build(vecs)
	require.NoError(t, err)

	for p, v := range vecs {
		hits, err := idx.Search(v, 3)
		require.NoError(t, err)
		assert.Equal(t, p, hits[0].Position)
		assert.Equal(t, 0.0, hits[0].Distance)
	}
}

func TestSearch_SquaredDistance(t *testing.T) {
	idx, err := Build(sampleVectors())
	require.NoError(t, err)

	hits, err := idx.Search([]float32{0, 0}, 5)
	require.NoError(t, err)
	got := map[int]float64{}
	for _, h := range hits {
		got[h.Position] = h.Distance
	}
	assert.Equal(t, map[int]float64{0: 0, 1: 1, 2: 4, 3: 18, 4: 1}, got)
}

func TestSearch_TiesKeepPositionOrder(t *testing.T) {
	idx, err := Build([][]float32{{2, 0}, {0, 1}, {1, 0}, {0, -1}, {-1, 0}})
	require.NoError(t, err)

	hits, err := idx.Search([]float32{0, 0}, 5)
	require.NoError(t, err)
	positions := make([]int, len(hits))
	for i, h := range hits {
		positions[i] = h.Position
	}
	assert.Equal(t, []int{1, 2, 3, 4, 0}, positions)
}

func TestSearch_EmptyResults(t *testing.T) {
	idx, err := Build(sampleVectors())
	require.NoError(t, err)

	hits, err := idx.Search([]float32{0, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = idx.Search([]float32{0, 0}, -2)
	require.NoError(t, err)
	assert.Empty(t, hits)

	empty, err := Build(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
	hits, err = empty.Search([]float32{1, 2, 3}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	idx, err := Build(sampleVectors())
	require.NoError(t, err)

	_, err = idx.Search([]float32{1, 2, 3}, 2)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
