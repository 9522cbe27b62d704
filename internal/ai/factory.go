package ai

import (
	"fmt"
	"strings"

	"github.com/fdg312/meal-e/internal/config"
)

// NewProvider selects the provider for cfg.AIMode.
func NewProvider(cfg *config.Config) (Provider, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.AIMode))
	if mode == "" {
		mode = config.AIModeMock
	}

	if mode == config.AIModeMock {
		return NewMockProvider(), nil
	}

	prompt, err := NewPrompt(cfg.PromptTemplatePath)
	if err != nil {
		return nil, err
	}

	switch mode {
	case config.AIModeGemini:
		return NewGeminiProvider(cfg, prompt), nil
	case config.AIModeOpenAI:
		return NewOpenAIProvider(cfg, prompt), nil
	default:
		return nil, fmt.Errorf("unsupported AI mode: %s", mode)
	}
}
