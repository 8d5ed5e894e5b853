package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"smartdoc/internal/logger"
)

// ValidationError describes one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate reports every invalid field.
func (c *AppConfig) Validate() []ValidationError {
	var errors []ValidationError
	add := func(field, msg string) {
		errors = append(errors, ValidationError{Field: field, Message: msg})
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		add("server.addr", "listen address is required")
	}
	if c.Server.MaxUploadMB < 1 {
		add("server.max_upload_mb", "max_upload_mb must be positive")
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		add("log.level", "level must be one of debug, info, warn, error")
	}
	if c.Ingest.ChunkSize < 1 {
		add("ingest.chunk_size", "chunk_size must be positive")
	}
	if c.Retrieval.TopK < 1 {
		add("retrieval.top_k", "top_k must be positive")
	}

	if !slices.Contains([]string{"hashing", "ollama", "openai"}, c.Embedder.Type) {
		add("embedder.type", "type must be one of hashing, ollama, openai")
	}
	if c.Embedder.Type == "hashing" && c.Embedder.Dimension < 1 {
		add("embedder.dimension", "dimension must be positive")
	}
	if c.Embedder.Type == "ollama" && c.Embedder.OllamaModel == "" {
		add("embedder.ollama_model", "ollama_model is required for the ollama embedder")
	}

	s := c.Summarizer
	if !slices.Contains([]string{"frequency", "ollama"}, s.Type) {
		add("summarizer.type", "type must be one of frequency, ollama")
	}
	if s.Threshold < 1 {
		add("summarizer.threshold", "threshold must be positive")
	}
	if s.MaxLength < 1 {
		add("summarizer.max_length", "max_length must be positive")
	}
	if s.MinLength < 0 || s.MinLength > s.MaxLength {
		add("summarizer.min_length", "min_length must be between 0 and max_length")
	}
	if s.MaxRecursion < 0 {
		add("summarizer.max_recursion", "max_recursion cannot be negative")
	}
	if s.ChunkSize < 1 {
		add("summarizer.chunk_size", "chunk_size must be positive")
	}
	if s.Concurrency < 1 {
		add("summarizer.concurrency", "concurrency must be positive")
	}
	if s.Type == "ollama" && s.OllamaModel == "" {
		add("summarizer.ollama_model", "ollama_model is required for the ollama summarizer")
	}

	if !slices.Contains([]string{"lexical", "ollama"}, c.QA.Type) {
		add("qa.type", "type must be one of lexical, ollama")
	}
	if c.QA.Type == "ollama" && c.QA.OllamaModel == "" {
		add("qa.ollama_model", "ollama_model is required for the ollama answerer")
	}

	if c.usesOllama() {
		if u, err := url.Parse(c.Ollama.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			add("ollama.base_url", "invalid Ollama base URL")
		}
	}
	if c.Ollama.RateLimit < 0 {
		add("ollama.rate_limit", "rate_limit cannot be negative")
	}
	if c.Providers.TimeoutSecs < 1 {
		add("providers.timeout_secs", "timeout_secs must be positive")
	}

	return errors
}

func (c *AppConfig) usesOllama() bool {
	return c.Embedder.Type == "ollama" || c.Summarizer.Type == "ollama" || c.QA.Type == "ollama"
}
