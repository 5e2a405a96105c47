package ai

import (
	"fmt"

	"github.com/kiranshivaraju/rfpmarket/internal/ai/anthropic"
	"github.com/kiranshivaraju/rfpmarket/internal/ai/ollama"
	"github.com/kiranshivaraju/rfpmarket/internal/ai/openai"
	"github.com/kiranshivaraju/rfpmarket/internal/ai/vllm"
	"github.com/kiranshivaraju/rfpmarket/internal/config"
	"github.com/kiranshivaraju/rfpmarket/pkg/models"
)

// NewProvider constructs the appropriate AI provider based on config.
// Called once at server startup. ProviderNone yields a nil provider.
func NewProvider(cfg config.AIConfig) (models.AIProvider, error) {
	switch cfg.Provider {
	case config.ProviderNone:
		return nil, nil
	case "ollama":
		return ollama.NewProvider(cfg.Ollama), nil
	case "vllm":
		return vllm.NewProvider(cfg.VLLM), nil
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	case "anthropic":
		return anthropic.NewProvider(cfg.Anthropic), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of none, ollama, vllm, openai, anthropic", cfg.Provider)
	}
}
