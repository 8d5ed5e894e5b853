package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"smartdoc/internal/chunker"
	"smartdoc/internal/domain"
)

var errBlankSummary = errors.New("provider returned a blank summary")

// Params controls hierarchical summarization. Lengths passed to the provider
// are in the provider's own units; Threshold and ChunkSize are characters.
type Params struct {
	Threshold    int
	MaxLength    int
	MinLength    int
	MaxRecursion int
	ChunkSize    int
	Concurrency  int
}

// DefaultParams mirrors the stock configuration.
func DefaultParams() Params {
	return Params{
		Threshold:    1000,
		MaxLength:    150,
		MinLength:    40,
		MaxRecursion: 3,
		ChunkSize:    800,
		Concurrency:  4,
	}
}

// Stats describes the work done by one Summarize call.
type Stats struct {
	Passes   int
	Calls    int
	Skipped  int
	Fallback bool
}

// Recursive summarizes text of any length by summarizing chunks, joining the
// partial summaries and repeating until the text is short or the depth cap is hit.
type Recursive struct {
	provider domain.Summarizer
	params   Params
	log      *zap.Logger
}

// NewRecursive wraps provider with hierarchical map-reduce summarization.
func NewRecursive(provider domain.Summarizer, params Params, log *zap.Logger) *Recursive {
	def := DefaultParams()
	if params.Threshold <= 0 {
		params.Threshold = def.Threshold
	}
	if params.MaxLength <= 0 {
		params.MaxLength = def.MaxLength
	}
	if params.MinLength < 0 {
		params.MinLength = 0
	}
	if params.MaxRecursion < 0 {
		params.MaxRecursion = 0
	}
	if params.ChunkSize <= 0 {
		params.ChunkSize = def.ChunkSize
	}
	if params.Concurrency <= 0 {
		params.Concurrency = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Recursive{provider: provider, params: params, log: log}
}

// Params returns the effective parameters.
func (r *Recursive) Params() Params { return r.params }

// Summarize returns a summary of text.
func (r *Recursive) Summarize(ctx context.Context, text string) (string, error) {
	out, _, err := r.SummarizeWithStats(ctx, text)
	return out, err
}

// chunkOutcome is the result of summarizing one chunk of a pass.
type chunkOutcome struct {
	summary string
	err     error
}

// SummarizeWithStats is Summarize plus a record of passes, provider calls and skipped chunks.
func (r *Recursive) SummarizeWithStats(ctx context.Context, text string) (string, Stats, error) {
	var st Stats
	depth := 0
	for {
		if utf8.RuneCountInString(text) < r.params.Threshold || depth >= r.params.MaxRecursion {
			out, err := r.direct(ctx, text, &st)
			return out, st, err
		}

		st.Passes++
		outcomes := r.summarizeChunks(ctx, chunker.Split(text, r.params.ChunkSize), &st)
		if err := ctx.Err(); err != nil {
			return "", st, fmt.Errorf("%w: %w", domain.ErrSummarization, err)
		}

		parts := make([]string, 0, len(outcomes))
		for i, o := range outcomes {
			if o.err != nil {
				st.Skipped++
				r.log.Warn("chunk summary skipped",
					zap.Int("depth", depth), zap.Int("chunk", i), zap.Error(o.err))
				continue
			}
			parts = append(parts, o.summary)
		}
		if len(parts) == 0 {
			st.Fallback = true
			r.log.Warn("every chunk failed, summarizing full text directly", zap.Int("depth", depth))
			out, err := r.direct(ctx, text, &st)
			return out, st, err
		}

		r.log.Debug("summary pass complete",
			zap.Int("depth", depth), zap.Int("chunks", len(outcomes)), zap.Int("kept", len(parts)))
		text = strings.Join(parts, " ")
		depth++
	}
}

// direct makes one provider call; any failure is fatal for the operation.
func (r *Recursive) direct(ctx context.Context, text string, st *Stats) (string, error) {
	st.Calls++
	out, err := r.call(ctx, text)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSummarization, err)
	}
	return out, nil
}

// summarizeChunks summarizes every non-blank chunk, keeping chunk order.
func (r *Recursive) summarizeChunks(ctx context.Context, chunks []string, st *Stats) []chunkOutcome {
	work := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			work = append(work, c)
		}
	}
	st.Calls += len(work)

	outcomes := make([]chunkOutcome, len(work))
	var g errgroup.Group
	g.SetLimit(r.params.Concurrency)
	for i, c := range work {
		g.Go(func() error {
			s, err := r.call(ctx, c)
			outcomes[i] = chunkOutcome{summary: s, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (r *Recursive) call(ctx context.Context, text string) (string, error) {
	out, err := r.provider.Summarize(ctx, Prompt(text), r.params.MaxLength, r.params.MinLength)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errBlankSummary
	}
	return out, nil
}
