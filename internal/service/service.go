// Package service implements the document operations behind every surface:
// upload, listing, metadata, summary, question answering and chunk dumps.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"smartdoc/internal/chunker"
	"smartdoc/internal/domain"
	"smartdoc/internal/logger"
	"smartdoc/internal/metrics"
	"smartdoc/internal/repository"
	"smartdoc/internal/retrieval"
	"smartdoc/internal/summarizer"
)

// UploadMessage is reported to clients after a successful upload.
const UploadMessage = "Document uploaded and processed successfully."

// Options are the tunables of the document service.
type Options struct {
	ChunkSize       int
	TopK            int
	ProviderTimeout time.Duration
	Summary         summarizer.Params
}

// Deps are the collaborators of the document service. Metrics is optional.
type Deps struct {
	Extractor  domain.Extractor
	Embedder   domain.Embedder
	Summarizer domain.Summarizer
	Answerer   domain.Answerer
	Repository *repository.Repository
	Metrics    *metrics.Manager
}

// Answer is the outcome of a question about one document.
type Answer struct {
	DocumentID    int
	Query         string
	Answer        string
	ContextChunks []string
}

// Service is safe for concurrent use.
type Service struct {
	extractor domain.Extractor
	embedder  domain.Embedder
	answerer  domain.Answerer
	summary   *summarizer.Recursive
	retriever *retrieval.Engine
	repo      *repository.Repository
	metrics   *metrics.Manager
	chunker   *chunker.Fixed
	topK      int
	log       *zap.Logger
}

// New wires the service. Every provider is bounded by opts.ProviderTimeout per call.
func New(deps Deps, opts Options, log *zap.Logger) *Service {
	log = logger.OrNop(log)
	if opts.TopK <= 0 {
		opts.TopK = 7
	}
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = time.Minute
	}
	repo := deps.Repository
	if repo == nil {
		repo = repository.New()
	}

	var (
		emb domain.Embedder   = deps.Embedder
		sum domain.Summarizer = deps.Summarizer
		ans domain.Answerer   = deps.Answerer
	)
	if deps.Metrics != nil {
		emb = metrics.WrapEmbedder(emb, deps.Metrics)
		sum = metrics.WrapSummarizer(sum, deps.Metrics)
		ans = metrics.WrapAnswerer(ans, deps.Metrics)
	}
	emb = timeoutEmbedder{next: emb, timeout: opts.ProviderTimeout}
	sum = timeoutSummarizer{next: sum, timeout: opts.ProviderTimeout}
	ans = timeoutAnswerer{next: ans, timeout: opts.ProviderTimeout}

	return &Service{
		extractor: deps.Extractor,
		embedder:  emb,
		answerer:  ans,
		summary:   summarizer.NewRecursive(sum, opts.Summary, log.Named("summarizer")),
		retriever: retrieval.NewEngine(emb, log.Named("retrieval")),
		repo:      repo,
		metrics:   deps.Metrics,
		chunker:   chunker.NewFixed(opts.ChunkSize),
		topK:      opts.TopK,
		log:       log,
	}
}

// Upload extracts, segments, embeds and indexes a file and returns its new id.
func (s *Service) Upload(ctx context.Context, filename string, data []byte) (int, error) {
	text, err := s.extractor.Extract(data, filename)
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("%w: no extractable text found in %q", domain.ErrEmptyContent, filename)
	}

	chunks := s.chunker.Chunk(text)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: %q", domain.ErrEmptyContent, filename)
	}

	vecs, err := s.embedder.Embed(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}
	if len(vecs) != len(chunks) {
		return 0, fmt.Errorf("%w: %d chunks but %d vectors", domain.ErrEmbedding, len(chunks), len(vecs))
	}

	id, err := s.repo.Create(filename, text, chunks, vecs)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}
	if s.metrics != nil {
		s.metrics.SetDocuments(s.repo.Len())
	}
	s.log.Info("document ingested",
		zap.Int("doc_id", id),
		zap.String("filename", filename),
		zap.Int("text_length", len([]rune(text))),
		zap.Int("chunks", len(chunks)))
	return id, nil
}

// List returns metadata for every document in upload order.
func (s *Service) List() []domain.DocumentInfo {
	docs := s.repo.List()
	out := make([]domain.DocumentInfo, len(docs))
	for i, d := range docs {
		out[i] = d.Info()
	}
	return out
}

// Info returns metadata for one document.
func (s *Service) Info(id int) (domain.DocumentInfo, error) {
	doc, err := s.repo.Get(id)
	if err != nil {
		return domain.DocumentInfo{}, err
	}
	return doc.Info(), nil
}

// Summary summarizes the document's full raw text.
func (s *Service) Summary(ctx context.Context, id int) (string, error) {
	doc, err := s.repo.Get(id)
	if err != nil {
		return "", err
	}
	start := time.Now()
	out, st, err := s.summary.SummarizeWithStats(ctx, doc.RawText)
	if s.metrics != nil {
		s.metrics.AddSkippedChunks(st.Skipped)
	}
	fields := []zap.Field{
		zap.Int("doc_id", id),
		zap.Int("passes", st.Passes),
		zap.Int("calls", st.Calls),
		zap.Int("skipped", st.Skipped),
		zap.Bool("fallback", st.Fallback),
		zap.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		s.log.Error("summary failed", append(fields, zap.Error(err))...)
		return "", err
	}
	s.log.Info("summary complete", fields...)
	return out, nil
}

// Ask answers question from the document's top-k nearest chunks.
func (s *Service) Ask(ctx context.Context, id int, question string) (Answer, error) {
	doc, err := s.repo.Get(id)
	if err != nil {
		return Answer{}, err
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	res, err := s.retriever.Retrieve(ctx, doc, question, s.topK)
	if err != nil {
		return Answer{}, err
	}
	s.log.Debug("context retrieved",
		zap.Int("doc_id", id), zap.Ints("positions", res.Positions), zap.Float64s("distances", res.Distances))

	answer, err := s.answerer.Answer(ctx, question, res.Context)
	if err != nil {
		return Answer{}, fmt.Errorf("%w: %w", domain.ErrQA, err)
	}
	if answer = strings.TrimSpace(answer); answer == "" {
		answer = domain.NoAnswer
	}
	return Answer{
		DocumentID:    id,
		Query:         question,
		Answer:        answer,
		ContextChunks: res.Chunks,
	}, nil
}

// Chunks returns the document's ordered chunks.
func (s *Service) Chunks(id int) ([]string, error) {
	doc, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), doc.Chunks...), nil
}
