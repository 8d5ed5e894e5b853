package summarizer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartdoc/internal/domain"
)

// scriptedProvider records every prompt and answers with fn(prompt without template).
type scriptedProvider struct {
	mu    sync.Mutex
	calls []string
	fn    func(text string) (string, error)
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Summarize(_ context.Context, text string, _, _ int) (string, error) {
	p.mu.Lock()
	p.calls = append(p.calls, text)
	p.mu.Unlock()
	return p.fn(StripPrompt(text))
}

func (p *scriptedProvider) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

var errProvider = errors.New("model crashed")

func longText() string {
	return strings.Repeat("lorem ipsum ", 200) // 2399 characters once trimmed
}

func TestSummarize_ShortTextSingleCall(t *testing.T) {
	p := &scriptedProvider{fn: func(string) (string, error) { return "a summary", nil }}
	r := NewRecursive(p, DefaultParams(), nil)

	out, st, err := r.SummarizeWithStats(context.Background(), "A short note about the weather.")
	require.NoError(t, err)
	assert.Equal(t, "a summary", out)
	assert.Equal(t, 1, p.count())
	assert.Equal(t, Stats{Calls: 1}, st)
	assert.True(t, strings.HasPrefix(p.calls[0], genericTemplate))
}

func TestSummarize_BaseCaseFailureIsFatal(t *testing.T) {
	p := &scriptedProvider{fn: func(string) (string, error) { return "", errProvider }}
	r := NewRecursive(p, DefaultParams(), nil)

	_, err := r.Summarize(context.Background(), "short text")
	assert.ErrorIs(t, err, domain.ErrSummarization)
	assert.ErrorIs(t, err, errProvider)
	assert.Equal(t, 1, p.count(), "no retry")
}

func TestSummarize_BlankProviderOutputIsFailure(t *testing.T) {
	p := &scriptedProvider{fn: func(string) (string, error) { return "   ", nil }}
	r := NewRecursive(p, DefaultParams(), nil)

	_, err := r.Summarize(context.Background(), "short text")
	assert.ErrorIs(t, err, domain.ErrSummarization)
}

func TestSummarize_OnePassThenBaseCase(t *testing.T) {
	p := &scriptedProvider{fn: func(string) (string, error) { return "short.", nil }}
	r := NewRecursive(p, DefaultParams(), nil)

	out, st, err := r.SummarizeWithStats(context.Background(), longText())
	require.NoError(t, err)
	assert.Equal(t, "short.", out)
	assert.Equal(t, 4, p.count(), "three chunk calls plus one final call")
	assert.Equal(t, Stats{Passes: 1, Calls: 4}, st)
	assert.Equal(t, genericTemplate+"short. short. short.", p.calls[3])
}

func TestSummarize_SkipsFailedChunks(t *testing.T) {
	var mu sync.Mutex
	failed := false
	p := &scriptedProvider{fn: func(text string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(text) > 100 && !failed {
			failed = true
			return "", errProvider
		}
		return "ok.", nil
	}}
	r := NewRecursive(p, DefaultParams(), nil)

	out, st, err := r.SummarizeWithStats(context.Background(), longText())
	require.NoError(t, err)
	assert.Equal(t, "ok.", out)
	assert.Equal(t, 1, st.Skipped)
	assert.False(t, st.Fallback)
	assert.Equal(t, genericTemplate+"ok. ok.", p.calls[3])
}

func TestSummarize_AllChunksFailFallsBackToFullText(t *testing.T) {
	full := strings.TrimSpace(longText())
	p := &scriptedProvider{fn: func(text string) (string, error) {
		if text == full {
			return "whole document summary", nil
		}
		return "", errProvider
	}}
	r := NewRecursive(p, DefaultParams(), nil)

	out, st, err := r.SummarizeWithStats(context.Background(), full)
	require.NoError(t, err)
	assert.Equal(t, "whole document summary", out)
	assert.True(t, st.Fallback)
	assert.Equal(t, 3, st.Skipped)
	assert.Equal(t, 4, p.count())
}

func TestSummarize_FallbackFailureIsFatal(t *testing.T) {
	p := &scriptedProvider{fn: func(string) (string, error) { return "", errProvider }}
	r := NewRecursive(p, DefaultParams(), nil)

	_, st, err := r.SummarizeWithStats(context.Background(), longText())
	assert.ErrorIs(t, err, domain.ErrSummarization)
	assert.True(t, st.Fallback)
	assert.Equal(t, 4, p.count())
}

func TestSummarize_TerminatesWhenSummariesNeverShrink(t *testing.T) {
	p := &scriptedProvider{fn: func(text string) (string, error) { return text, nil }}
	params := DefaultParams()
	r := NewRecursive(p, params, nil)

	_, st, err := r.SummarizeWithStats(context.Background(), longText())
	require.NoError(t, err)
	assert.Equal(t, params.MaxRecursion, st.Passes)
	assert.Equal(t, p.count(), st.Calls)
	// 3 chunks, then 4 and 4 once the joined text grows past 2400, then the final call
	assert.Equal(t, 12, st.Calls)
}

func TestSummarize_ZeroRecursionIsDirect(t *testing.T) {
	p := &scriptedProvider{fn: func(string) (string, error) { return "direct", nil }}
	params := DefaultParams()
	params.MaxRecursion = 0
	r := NewRecursive(p, params, nil)

	out, err := r.Summarize(context.Background(), longText())
	require.NoError(t, err)
	assert.Equal(t, "direct", out)
	assert.Equal(t, 1, p.count())
}

func TestSummarize_TemplatePerChunk(t *testing.T) {
	generic := strings.Repeat("sea ", 25)
	resume := strings.Repeat("resume ", 15)[:100]
	p := &scriptedProvider{fn: func(string) (string, error) { return "x.", nil }}
	r := NewRecursive(p, Params{Threshold: 150, MaxLength: 10, ChunkSize: 100, MaxRecursion: 3, Concurrency: 2}, nil)

	_, err := r.Summarize(context.Background(), generic+resume)
	require.NoError(t, err)
	require.Equal(t, 3, p.count())
	assert.ElementsMatch(t,
		[]string{genericTemplate + generic, resumeTemplate + resume},
		p.calls[:2])
}

func TestSummarize_KeepsChunkOrderUnderConcurrency(t *testing.T) {
	p := &scriptedProvider{fn: func(text string) (string, error) {
		if len(text) == 10 {
			return text[:2], nil
		}
		return "final:" + text, nil
	}}
	r := NewRecursive(p, Params{Threshold: 35, MaxLength: 10, ChunkSize: 10, MaxRecursion: 3, Concurrency: 4}, nil)

	out, err := r.Summarize(context.Background(), "aaaaaaaaaabbbbbbbbbbccccccccccdddddddddd")
	require.NoError(t, err)
	assert.Equal(t, "final:aa bb cc dd", out)
}

func TestSummarize_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &scriptedProvider{fn: func(string) (string, error) { return "", context.Canceled }}
	r := NewRecursive(p, DefaultParams(), nil)

	_, err := r.Summarize(ctx, longText())
	assert.ErrorIs(t, err, domain.ErrSummarization)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, p.count(), "no fallback call after cancellation")
}

func TestNewRecursive_Defaults(t *testing.T) {
	r := NewRecursive(&scriptedProvider{}, Params{MaxRecursion: -1}, nil)
	got := r.Params()
	assert.Equal(t, 1000, got.Threshold)
	assert.Equal(t, 150, got.MaxLength)
	assert.Equal(t, 800, got.ChunkSize)
	assert.Equal(t, 0, got.MaxRecursion)
	assert.Equal(t, 1, got.Concurrency)
}
