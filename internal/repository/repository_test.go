package repository

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartdoc/internal/domain"
)

func TestCreate_AllocatesSequentialIDs(t *testing.T) {
	repo := New()

	id1, err := repo.Create("a.txt", "alpha", []string{"alpha"}, [][]float32{{1, 0}})
	require.NoError(t, err)
	id2, err := repo.Create("b.txt", "beta", []string{"beta"}, [][]float32{{0, 1, 2}})
	require.NoError(t, err)

	assert.Equal(t, 1, id1)
	assert.Equal(t, 2, id2)
	assert.Equal(t, 2, repo.Len())
}

func TestCreate_BuildsIndex(t *testing.T) {
	repo := New()
	id, err := repo.Create("a.txt", "ab", []string{"a", "b"}, [][]float32{{1, 0}, {0, 1}})
	require.NoError(t, err)

	doc, err := repo.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", doc.Filename)
	assert.Equal(t, "ab", doc.RawText)
	assert.Equal(t, 2, doc.Index.Len())
	assert.Equal(t, 2, doc.Index.Dimension())
	assert.Equal(t, len(doc.Chunks), len(doc.Embeddings))
	assert.False(t, doc.CreatedAt.IsZero())
}

func TestCreate_RejectsMismatchedLengths(t *testing.T) {
	repo := New()
	_, err := repo.Create("a.txt", "ab", []string{"a", "b"}, [][]float32{{1}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, repo.Len())
}

func TestCreate_RejectsMixedDimensions(t *testing.T) {
	repo := New()
	_, err := repo.Create("a.txt", "ab", []string{"a", "b"}, [][]float32{{1}, {1, 2}})
	assert.Error(t, err)
	assert.Equal(t, 0, repo.Len())

	id, err := repo.Create("b.txt", "b", []string{"b"}, [][]float32{{1}})
	require.NoError(t, err)
	assert.Equal(t, 1, id, "failed creates must not consume ids")
}

func TestGet_NotFound(t *testing.T) {
	repo := New()
	_, err := repo.Create("a.txt", "a", []string{"a"}, [][]float32{{1}})
	require.NoError(t, err)

	_, err = repo.Get(999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_CreationOrder(t *testing.T) {
	repo := New()
	for _, name := range []string{"one", "two", "three"} {
		_, err := repo.Create(name, name, []string{name}, [][]float32{{1}})
		require.NoError(t, err)
	}

	docs := repo.List()
	require.Len(t, docs, 3)
	assert.Equal(t, "one", docs[0].Filename)
	assert.Equal(t, "two", docs[1].Filename)
	assert.Equal(t, "three", docs[2].Filename)
	assert.Equal(t, []int{1, 2, 3}, []int{docs[0].ID, docs[1].ID, docs[2].ID})
}

func TestCreate_Concurrent(t *testing.T) {
	repo := New()
	const n = 64

	var wg sync.WaitGroup
	ids := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := repo.Create("f", "x", []string{"x"}, [][]float32{{float32(i)}})
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	sort.Ints(ids)
	for i, id := range ids {
		assert.Equal(t, i+1, id)
	}
	assert.Equal(t, n, repo.Len())
}
