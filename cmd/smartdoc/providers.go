package main

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"smartdoc/internal/config"
	"smartdoc/internal/domain"
	"smartdoc/internal/embedding/hashing"
	"smartdoc/internal/embedding/openai"
	"smartdoc/internal/extractor"
	"smartdoc/internal/llm/ollama"
	"smartdoc/internal/qa"
	"smartdoc/internal/service"
	"smartdoc/internal/summarizer"
)

type providers struct {
	extractor  domain.Extractor
	embedder   domain.Embedder
	summarizer domain.Summarizer
	answerer   domain.Answerer
}

func buildProviders(cfg *config.AppConfig) (*providers, error) {
	p := &providers{extractor: extractor.New()}

	// one limiter per Ollama server, shared by every role using it
	var limiter *rate.Limiter
	if cfg.Ollama.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Ollama.RateLimit), 1)
	}
	newOllama := func(model string) (*ollama.Client, error) {
		return ollama.New(ollama.Config{BaseURL: cfg.Ollama.BaseURL, Model: model, Limiter: limiter})
	}

	switch cfg.Embedder.Type {
	case "hashing", "":
		p.embedder = hashing.NewEmbedder(cfg.Embedder.Dimension)
	case "ollama":
		c, err := newOllama(cfg.Embedder.OllamaModel)
		if err != nil {
			return nil, fmt.Errorf("ollama embedder init failed: %w", err)
		}
		p.embedder = c
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			BatchSize: cfg.Embedder.OpenAI.BatchSize,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		p.embedder = client
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}

	switch cfg.Summarizer.Type {
	case "frequency", "":
		p.summarizer = summarizer.NewFrequencySummarizer()
	case "ollama":
		c, err := newOllama(cfg.Summarizer.OllamaModel)
		if err != nil {
			return nil, fmt.Errorf("ollama summarizer init failed: %w", err)
		}
		p.summarizer = c
	default:
		return nil, fmt.Errorf("unknown summarizer: %s", cfg.Summarizer.Type)
	}

	switch cfg.QA.Type {
	case "lexical", "":
		p.answerer = qa.NewLexicalAnswerer()
	case "ollama":
		c, err := newOllama(cfg.QA.OllamaModel)
		if err != nil {
			return nil, fmt.Errorf("ollama answerer init failed: %w", err)
		}
		p.answerer = c
	default:
		return nil, fmt.Errorf("unknown answerer: %s", cfg.QA.Type)
	}
	return p, nil
}

func serviceOptions(cfg *config.AppConfig) service.Options {
	s := cfg.Summarizer
	return service.Options{
		ChunkSize:       cfg.Ingest.ChunkSize,
		TopK:            cfg.Retrieval.TopK,
		ProviderTimeout: cfg.ProviderTimeout(),
		Summary: summarizer.Params{
			Threshold:    s.Threshold,
			MaxLength:    s.MaxLength,
			MinLength:    s.MinLength,
			MaxRecursion: s.MaxRecursion,
			ChunkSize:    s.ChunkSize,
			Concurrency:  s.Concurrency,
		},
	}
}
