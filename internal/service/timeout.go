package service

import (
	"context"
	"time"

	"smartdoc/internal/domain"
)

// The wrappers below give each provider call its own deadline.

type timeoutEmbedder struct {
	next    domain.Embedder
	timeout time.Duration
}

func (t timeoutEmbedder) Name() string { return t.next.Name() }

func (t timeoutEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Embed(ctx, texts)
}

type timeoutSummarizer struct {
	next    domain.Summarizer
	timeout time.Duration
}

func (t timeoutSummarizer) Name() string { return t.next.Name() }

func (t timeoutSummarizer) Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Summarize(ctx, text, maxLength, minLength)
}

type timeoutAnswerer struct {
	next    domain.Answerer
	timeout time.Duration
}

func (t timeoutAnswerer) Name() string { return t.next.Name() }

func (t timeoutAnswerer) Answer(ctx context.Context, question, passage string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Answer(ctx, question, passage)
}
