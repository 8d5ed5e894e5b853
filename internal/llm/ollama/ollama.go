// Package ollama adapts a local Ollama server to the embedding, summarization
// and question-answering provider roles.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	lcollama "github.com/tmc/langchaingo/llms/ollama"
	"golang.org/x/time/rate"

	"smartdoc/internal/domain"
)

const answerPrompt = "Answer the question using only the context below. " +
	"If the context does not contain the answer, reply exactly: %s\n\n" +
	"Context:\n%s\n\nQuestion: %s\nAnswer:"

// backend is the part of the langchaingo Ollama client we call.
type backend interface {
	llms.Model
	CreateEmbedding(ctx context.Context, inputTexts []string) ([][]float32, error)
}

// Config configures one Ollama-backed provider.
type Config struct {
	BaseURL string
	Model   string
	// Limiter throttles requests; share one across providers hitting the same server.
	Limiter *rate.Limiter
}

// Client implements domain.Embedder, domain.Summarizer and domain.Answerer
// against a single Ollama model.
type Client struct {
	model   string
	llm     backend
	limiter *rate.Limiter
}

// New connects a client to the configured Ollama server.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		return nil, errors.New("ollama model is required")
	}
	llm, err := lcollama.New(lcollama.WithModel(cfg.Model), lcollama.WithServerURL(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ollama: %w", err)
	}
	return newWithBackend(cfg, llm), nil
}

func newWithBackend(cfg Config, llm backend) *Client {
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Client{model: cfg.Model, llm: llm, limiter: limiter}
}

// Name returns the identifier of this provider.
func (c *Client) Name() string { return "ollama" }

// Model returns the Ollama model name.
func (c *Client) Model() string { return c.model }

// Embed returns one vector per text.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	vecs, err := c.llm.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("ollama embed: expected %d vectors, got %d", len(texts), len(vecs))
	}
	return vecs, nil
}

// Summarize sends the already templated text as a single prompt. maxLength
// and minLength are passed through as token bounds.
func (c *Client) Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error) {
	opts := []llms.CallOption{llms.WithTemperature(0)}
	if maxLength > 0 {
		opts = append(opts, llms.WithMaxTokens(maxLength))
	}
	if minLength > 0 {
		opts = append(opts, llms.WithMinLength(minLength))
	}
	out, err := c.generate(ctx, text, opts...)
	if err != nil {
		return "", fmt.Errorf("ollama summarize: %w", err)
	}
	return out, nil
}

// Answer asks the model to answer question from context alone.
func (c *Client) Answer(ctx context.Context, question, context string) (string, error) {
	prompt := fmt.Sprintf(answerPrompt, domain.NoAnswer, context, question)
	out, err := c.generate(ctx, prompt, llms.WithTemperature(0))
	if err != nil {
		return "", fmt.Errorf("ollama answer: %w", err)
	}
	return out, nil
}

func (c *Client) generate(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt, opts...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
