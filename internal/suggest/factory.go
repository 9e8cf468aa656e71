package suggest

import (
	"fmt"
	"strings"
)

// NewProvider creates a suggestion provider from configuration. An empty
// provider name means suggestions are disabled: (nil, nil).
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown suggestion provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}
