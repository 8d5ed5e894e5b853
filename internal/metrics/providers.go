package metrics

import (
	"context"
	"time"

	"smartdoc/internal/domain"
)

// Embedder instruments an embedding provider.
type Embedder struct {
	next domain.Embedder
	m    *Manager
}

// WrapEmbedder returns next with call counts and latency recorded on m.
func WrapEmbedder(next domain.Embedder, m *Manager) *Embedder {
	return &Embedder{next: next, m: m}
}

func (e *Embedder) Name() string { return e.next.Name() }

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	out, err := e.next.Embed(ctx, texts)
	e.m.ObserveProvider("embed_"+e.next.Name(), start, err)
	return out, err
}

// Summarizer instruments a summarization provider.
type Summarizer struct {
	next domain.Summarizer
	m    *Manager
}

// WrapSummarizer returns next with call counts and latency recorded on m.
func WrapSummarizer(next domain.Summarizer, m *Manager) *Summarizer {
	return &Summarizer{next: next, m: m}
}

func (s *Summarizer) Name() string { return s.next.Name() }

func (s *Summarizer) Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error) {
	start := time.Now()
	out, err := s.next.Summarize(ctx, text, maxLength, minLength)
	s.m.ObserveProvider("summarize_"+s.next.Name(), start, err)
	return out, err
}

// Answerer instruments a question-answering provider.
type Answerer struct {
	next domain.Answerer
	m    *Manager
}

// WrapAnswerer returns next with call counts and latency recorded on m.
func WrapAnswerer(next domain.Answerer, m *Manager) *Answerer {
	return &Answerer{next: next, m: m}
}

func (a *Answerer) Name() string { return a.next.Name() }

func (a *Answerer) Answer(ctx context.Context, question, context string) (string, error) {
	start := time.Now()
	out, err := a.next.Answer(ctx, question, context)
	a.m.ObserveProvider("answer_"+a.next.Name(), start, err)
	return out, err
}
