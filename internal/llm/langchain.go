package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// DefaultOllamaModel is used when no model is configured.
const DefaultOllamaModel = "llama3.2"

// LangChain adapts any langchaingo model to Model.
type LangChain struct {
	llm         llms.Model
	name        string
	temperature float64
}

// NewLangChain wraps m; name is reported by Name.
func NewLangChain(m llms.Model, name string, temperature float64) *LangChain {
	return &LangChain{llm: m, name: name, temperature: temperature}
}

// Name implements Model.
func (l *LangChain) Name() string { return l.name }

// Query implements Model.
func (l *LangChain) Query(ctx context.Context, prompt string, maxTokens int) (string, error) {
	text, err := llms.GenerateFromSinglePrompt(ctx, l.llm, prompt,
		llms.WithMaxTokens(maxTokens),
		llms.WithTemperature(l.temperature),
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", l.name, err)
	}
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// OllamaConfig configures a local Ollama backend.
type OllamaConfig struct {
	Model       string
	ServerURL   string
	Temperature float64
}

// NewOllama returns a backend served by a local Ollama daemon. No credential
// is needed.
func NewOllama(cfg OllamaConfig) (*LangChain, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	opts := []ollama.Option{ollama.WithModel(cfg.Model)}
	if cfg.ServerURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.ServerURL))
	}
	m, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}
	return NewLangChain(m, cfg.Model, cfg.Temperature), nil
}
