package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	MaxUploadMB int      `yaml:"max_upload_mb"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// IngestConfig configures segmentation at upload time.
type IngestConfig struct {
	ChunkSize int `yaml:"chunk_size"`
}

// RetrievalConfig configures question answering context assembly.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type        string                `yaml:"type"`
	Dimension   int                   `yaml:"dimension"`
	OllamaModel string                `yaml:"ollama_model"`
	OpenAI      *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// SummarizerConfig selects the summarization provider and the hierarchical
// summarization parameters.
type SummarizerConfig struct {
	Type         string `yaml:"type"`
	Threshold    int    `yaml:"threshold"`
	MaxLength    int    `yaml:"max_length"`
	MinLength    int    `yaml:"min_length"`
	MaxRecursion int    `yaml:"max_recursion"`
	ChunkSize    int    `yaml:"chunk_size"`
	Concurrency  int    `yaml:"concurrency"`
	OllamaModel  string `yaml:"ollama_model"`
}

// QAConfig selects the question-answering provider.
type QAConfig struct {
	Type        string `yaml:"type"`
	OllamaModel string `yaml:"ollama_model"`
}

// OllamaConfig holds the shared Ollama server settings.
type OllamaConfig struct {
	BaseURL   string  `yaml:"base_url"`
	RateLimit float64 `yaml:"rate_limit"`
}

// ProvidersConfig holds settings common to every provider call.
type ProvidersConfig struct {
	TimeoutSecs int `yaml:"timeout_secs"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	QA         QAConfig         `yaml:"qa"`
	Ollama     OllamaConfig     `yaml:"ollama"`
	Providers  ProvidersConfig  `yaml:"providers"`
}

// ProviderTimeout returns the per-call provider deadline.
func (c *AppConfig) ProviderTimeout() time.Duration {
	return time.Duration(c.Providers.TimeoutSecs) * time.Second
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *AppConfig) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(cfg)
	applyEnv(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/smartdoc/config.yaml.
// If neither exists, it writes defaults to ~/.config/smartdoc/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnv(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "smartdoc", "config.yaml"), nil
}

// Default returns the stock configuration.
func Default() *AppConfig { return defaultConfig() }

func defaultConfig() *AppConfig {
	return &AppConfig{
		Server:    ServerConfig{Addr: ":8000", MaxUploadMB: 32, CORSOrigins: []string{"*"}},
		Log:       LogConfig{Level: "info"},
		Ingest:    IngestConfig{ChunkSize: 500},
		Retrieval: RetrievalConfig{TopK: 7},
		Embedder:  EmbedderConfig{Type: "hashing", Dimension: 384, OllamaModel: "nomic-embed-text"},
		Summarizer: SummarizerConfig{
			Type:         "frequency",
			Threshold:    1000,
			MaxLength:    150,
			MinLength:    40,
			MaxRecursion: 3,
			ChunkSize:    800,
			Concurrency:  4,
			OllamaModel:  "llama3.2",
		},
		QA:        QAConfig{Type: "lexical", OllamaModel: "llama3.2"},
		Ollama:    OllamaConfig{BaseURL: "http://localhost:11434", RateLimit: 5},
		Providers: ProvidersConfig{TimeoutSecs: 60},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.BatchSize == 0 {
			cfg.Embedder.OpenAI.BatchSize = 32
		}
	}
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.Ollama.BaseURL = v
	}
	if v := os.Getenv("SMARTDOC_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SMARTDOC_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
