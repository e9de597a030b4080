// Package config resolves codeexplain settings from a YAML file, a .env file
// and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/codeexplain/internal/llm"
	"github.com/phobologic/codeexplain/internal/logging"
	"github.com/phobologic/codeexplain/internal/prompt"
)

// Environment variables read by ApplyEnv.
const (
	EnvGeminiKey = "GEMINI_API_KEY"
	EnvOpenAIKey = "OPENAI_API_KEY"
	EnvBackend   = "CODEEXPLAIN_BACKEND"
	EnvModel     = "CODEEXPLAIN_MODEL"
	EnvBaseURL   = "CODEEXPLAIN_BASE_URL"
	EnvOllama    = "OLLAMA_HOST"
)

// DefaultFile is the config file looked up when none is given.
const DefaultFile = ".codeexplain.yaml"

// Config is the resolved configuration.
type Config struct {
	Backend     string        `yaml:"backend"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
	Pacing      time.Duration `yaml:"pacing"`
	Temperature float64       `yaml:"temperature"`
	TopK        int           `yaml:"top_k"`
	TopP        float64       `yaml:"top_p"`

	Prompts prompt.Templates `yaml:"prompts"`
	Logging logging.Config   `yaml:"logging"`
	Server  Server           `yaml:"server"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Backend:     llm.BackendGemini,
		Model:       llm.DefaultGeminiModel,
		Timeout:     llm.DefaultTimeout,
		Pacing:      time.Second,
		Temperature: 0.3,
		TopK:        40,
		TopP:        0.95,
		Prompts:     prompt.DefaultTemplates(),
		Logging:     logging.Config{Level: "warn", Format: "text"},
		Server:      Server{Addr: ":8080"},
	}
}

// Load reads path over the defaults. A missing file is an error only when
// required is set; an empty path skips the file entirely.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	// The backend is applied first so a file naming only a backend does not
	// inherit another backend's default model.
	var head struct {
		Backend string `yaml:"backend"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if head.Backend != "" {
		cfg.SetBackend(head.Backend)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.Backend = strings.ToLower(cfg.Backend)
	cfg.Prompts = cfg.Prompts.Merge(prompt.DefaultTemplates())
	return cfg, nil
}

// LoadDotEnv loads the given .env files into the process environment.
// Missing files are skipped; variables already set are left untouched.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg from getenv. The API key is chosen by backend.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvBackend); v != "" {
		c.SetBackend(v)
	}
	if v := getenv(EnvModel); v != "" {
		c.Model = v
	}
	if v := getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	switch c.Backend {
	case llm.BackendGemini:
		if v := getenv(EnvGeminiKey); v != "" {
			c.APIKey = v
		}
	case llm.BackendOpenAI:
		if v := getenv(EnvOpenAIKey); v != "" {
			c.APIKey = v
		}
	case llm.BackendOllama:
		if v := getenv(EnvOllama); v != "" && c.BaseURL == "" {
			c.BaseURL = v
		}
	}
}

// SetBackend switches backend and resets a model name that only made sense
// for the previous one.
func (c *Config) SetBackend(b string) {
	b = strings.ToLower(b)
	if b == c.Backend {
		return
	}
	if c.Model == llm.DefaultGeminiModel || c.Model == llm.DefaultOpenAIModel || c.Model == llm.DefaultOllamaModel {
		c.Model = ""
	}
	c.Backend = b
}

// Validate reports settings that would make every analysis fail.
func (c Config) Validate() error {
	switch c.Backend {
	case llm.BackendGemini, llm.BackendOpenAI:
		if c.APIKey == "" {
			return fmt.Errorf("%w: set %s", llm.ErrMissingCredential, c.keyVar())
		}
	case llm.BackendOllama, llm.BackendOffline:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.Pacing < 0 {
		return errors.New("pacing must not be negative")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %v out of range [0, 2]", c.Temperature)
	}
	if c.TopP < 0 || c.TopP > 1 {
		return fmt.Errorf("top_p %v out of range [0, 1]", c.TopP)
	}
	return nil
}

func (c Config) keyVar() string {
	if c.Backend == llm.BackendOpenAI {
		return EnvOpenAIKey
	}
	return EnvGeminiKey
}

// LLMSettings returns the backend selection for llm.Open.
func (c Config) LLMSettings() llm.Settings {
	return llm.Settings{
		Backend:     c.Backend,
		Model:       c.Model,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Temperature: c.Temperature,
		TopK:        c.TopK,
		TopP:        c.TopP,
	}
}
