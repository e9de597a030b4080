package llm

import (
	"fmt"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendGemini  = "gemini"
	BackendOpenAI  = "openai"
	BackendOllama  = "ollama"
	BackendOffline = "offline"
)

// Settings selects and configures a backend.
type Settings struct {
	Backend     string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	TopK        int
	TopP        float64
}

// Open constructs the backend named by s.Backend. Credential problems are
// reported here, before any analysis runs.
func Open(s Settings) (Model, error) {
	switch strings.ToLower(s.Backend) {
	case "", BackendGemini:
		return NewGemini(GeminiConfig{
			APIKey:      s.APIKey,
			Model:       s.Model,
			BaseURL:     s.BaseURL,
			Temperature: s.Temperature,
			TopK:        s.TopK,
			TopP:        s.TopP,
		})
	case BackendOpenAI:
		return NewOpenAI(OpenAIConfig{
			APIKey:      s.APIKey,
			Model:       s.Model,
			BaseURL:     s.BaseURL,
			Temperature: s.Temperature,
			TopP:        s.TopP,
		})
	case BackendOllama:
		return NewOllama(OllamaConfig{
			Model:       s.Model,
			ServerURL:   s.BaseURL,
			Temperature: s.Temperature,
		})
	case BackendOffline:
		return Offline{}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", s.Backend)
	}
}
