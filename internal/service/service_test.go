package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartdoc/internal/domain"
	"smartdoc/internal/embedding/hashing"
	"smartdoc/internal/extractor"
	"smartdoc/internal/metrics"
	"smartdoc/internal/qa"
	"smartdoc/internal/repository"
	"smartdoc/internal/summarizer"
)

type failingEmbedder struct{ err error }

func (f failingEmbedder) Name() string { return "failing" }
func (f failingEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, f.err
}

type shortEmbedder struct{}

func (shortEmbedder) Name() string { return "short" }
func (shortEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return [][]float32{{1}}, nil
}

type stubAnswerer struct {
	reply string
	err   error
}

func (s stubAnswerer) Name() string { return "stub" }
func (s stubAnswerer) Answer(context.Context, string, string) (string, error) {
	return s.reply, s.err
}

type failingSummarizer struct{}

func (failingSummarizer) Name() string { return "failing" }
func (failingSummarizer) Summarize(context.Context, string, int, int) (string, error) {
	return "", errors.New("model unavailable")
}

type deadlineSummarizer struct{}

func (deadlineSummarizer) Name() string { return "deadline" }
func (deadlineSummarizer) Summarize(ctx context.Context, _ string, _, _ int) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		return "", errors.New("no deadline")
	}
	return "bounded", nil
}

func newTestService(t *testing.T, opts Options, mutate func(*Deps)) (*Service, *repository.Repository) {
	t.Helper()
	repo := repository.New()
	deps := Deps{
		Extractor:  extractor.New(),
		Embedder:   hashing.NewEmbedder(64),
		Summarizer: summarizer.NewFrequencySummarizer(),
		Answerer:   qa.NewLexicalAnswerer(),
		Repository: repo,
	}
	if mutate != nil {
		mutate(&deps)
	}
	if opts.ChunkSize == 0 {
		opts.ChunkSize = 500
	}
	return New(deps, opts, nil), repo
}

func TestUpload_2400CharsYieldsFiveChunks(t *testing.T) {
	svc, repo := newTestService(t, Options{}, nil)
	text := strings.Repeat("abcdefghij", 240)
	require.Equal(t, 2400, len(text))

	id, err := svc.Upload(context.Background(), "plain.txt", []byte(text))
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	info, err := svc.Info(id)
	require.NoError(t, err)
	assert.Equal(t, 5, info.ChunkCount)
	assert.Equal(t, 2400, info.TextLength)

	doc, err := repo.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 5, doc.Index.Len())
	assert.Len(t, doc.Embeddings, 5)
}

func TestAsk_TopKLargerThanChunkCount(t *testing.T) {
	svc, _ := newTestService(t, Options{TopK: 3, ChunkSize: 60}, nil)
	text := "The invoice total is 420 euros and is due in May. Shipping was handled by Acme Freight."
	id, err := svc.Upload(context.Background(), "invoice.txt", []byte(text))
	require.NoError(t, err)
	chunks, err := svc.Chunks(id)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	ans, err := svc.Ask(context.Background(), id, "  What is the invoice total?  ")
	require.NoError(t, err)
	assert.Len(t, ans.ContextChunks, 2)
	assert.ElementsMatch(t, chunks, ans.ContextChunks)
	assert.Equal(t, id, ans.DocumentID)
	assert.Equal(t, "What is the invoice total?", ans.Query)
	assert.Contains(t, ans.Answer, "invoice total")
}

func TestInfo_UnknownIDIsNotFound(t *testing.T) {
	svc, _ := newTestService(t, Options{}, nil)
	_, err := svc.Upload(context.Background(), "a.txt", []byte("hello world"))
	require.NoError(t, err)

	_, err = svc.Info(999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Summary(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Ask(context.Background(), 999, "q")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Chunks(999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpload_EmptyInputs(t *testing.T) {
	svc, repo := newTestService(t, Options{}, nil)

	_, err := svc.Upload(context.Background(), "empty.txt", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyContent)
	_, err = svc.Upload(context.Background(), "blank.txt", []byte(" \n\t "))
	assert.ErrorIs(t, err, domain.ErrEmptyContent)
	assert.Equal(t, 0, repo.Len())

	id, err := svc.Upload(context.Background(), "real.txt", []byte("content"))
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestUpload_ExtractionFailure(t *testing.T) {
	svc, _ := newTestService(t, Options{}, nil)
	_, err := svc.Upload(context.Background(), "bad.txt", []byte{0xff, 0xfe, 0xfd})
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestUpload_EmbeddingFailures(t *testing.T) {
	boom := errors.New("embedder offline")
	svc, repo := newTestService(t, Options{}, func(d *Deps) { d.Embedder = failingEmbedder{err: boom} })
	_, err := svc.Upload(context.Background(), "a.txt", []byte("some text"))
	assert.ErrorIs(t, err, domain.ErrEmbedding)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, repo.Len())

	svc, _ = newTestService(t, Options{ChunkSize: 4}, func(d *Deps) { d.Embedder = shortEmbedder{} })
	_, err = svc.Upload(context.Background(), "a.txt", []byte("twelve chars"))
	assert.ErrorIs(t, err, domain.ErrEmbedding)
}

func TestList_CreationOrder(t *testing.T) {
	svc, _ := newTestService(t, Options{}, nil)
	for _, name := range []string{"one.txt", "two.txt", "three.txt"} {
		_, err := svc.Upload(context.Background(), name, []byte("text of "+name))
		require.NoError(t, err)
	}
	list := svc.List()
	require.Len(t, list, 3)
	for i, name := range []string{"one.txt", "two.txt", "three.txt"} {
		assert.Equal(t, i+1, list[i].ID)
		assert.Equal(t, name, list[i].Filename)
	}
}

func TestAsk_Validation(t *testing.T) {
	svc, _ := newTestService(t, Options{}, nil)
	id, err := svc.Upload(context.Background(), "a.txt", []byte("Cats purr."))
	require.NoError(t, err)

	_, err = svc.Ask(context.Background(), id, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Ask(context.Background(), 999, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAsk_ProviderOutcomes(t *testing.T) {
	boom := errors.New("qa model crashed")
	svc, _ := newTestService(t, Options{}, func(d *Deps) { d.Answerer = stubAnswerer{err: boom} })
	id, err := svc.Upload(context.Background(), "a.txt", []byte("Cats purr."))
	require.NoError(t, err)
	_, err = svc.Ask(context.Background(), id, "do cats purr")
	assert.ErrorIs(t, err, domain.ErrQA)
	assert.ErrorIs(t, err, boom)

	svc, _ = newTestService(t, Options{}, func(d *Deps) { d.Answerer = stubAnswerer{reply: "  "} })
	id, err = svc.Upload(context.Background(), "a.txt", []byte("Cats purr."))
	require.NoError(t, err)
	ans, err := svc.Ask(context.Background(), id, "do cats purr")
	require.NoError(t, err)
	assert.Equal(t, domain.NoAnswer, ans.Answer)
}

func TestSummary(t *testing.T) {
	svc, _ := newTestService(t, Options{}, nil)
	text := "Solar output rose in March. Wind output fell. Solar and wind together supplied most demand. Storage smoothed the evening peak."
	id, err := svc.Upload(context.Background(), "grid.txt", []byte(text))
	require.NoError(t, err)

	out, err := svc.Summary(context.Background(), id)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.LessOrEqual(t, len(out), len(text))
}

func TestSummary_ProviderFailure(t *testing.T) {
	m := metrics.NewManager()
	svc, _ := newTestService(t, Options{}, func(d *Deps) {
		d.Summarizer = failingSummarizer{}
		d.Metrics = m
	})
	id, err := svc.Upload(context.Background(), "a.txt", []byte("Short text."))
	require.NoError(t, err)
	_, err = svc.Summary(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrSummarization)
}

func TestProviderCallsCarryDeadline(t *testing.T) {
	svc, _ := newTestService(t, Options{ProviderTimeout: time.Second}, func(d *Deps) { d.Summarizer = deadlineSummarizer{} })
	id, err := svc.Upload(context.Background(), "a.txt", []byte("Short text."))
	require.NoError(t, err)
	out, err := svc.Summary(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "bounded", out)
}

func TestChunks_ReturnsCopy(t *testing.T) {
	svc, _ := newTestService(t, Options{ChunkSize: 3}, nil)
	id, err := svc.Upload(context.Background(), "a.txt", []byte("abcdef"))
	require.NoError(t, err)
	chunks, err := svc.Chunks(id)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc", "def"}, chunks)
	chunks[0] = "zzz"
	again, err := svc.Chunks(id)
	require.NoError(t, err)
	assert.Equal(t, "abc", again[0])
}

func TestUpload_ConcurrentIDsAreUnique(t *testing.T) {
	svc, _ := newTestService(t, Options{}, nil)
	const n = 32
	ids := make([]int, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := svc.Upload(context.Background(), "c.txt", []byte("concurrent upload"))
			assert.NoError(t, err)
			ids[i] = id
		}()
	}
	wg.Wait()
	seen := make(map[int]bool, n)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, svc.List(), n)
}
