package vllm

import (
	"strings"

	"github.com/kiranshivaraju/rfpmarket/internal/ai/openai"
	"github.com/kiranshivaraju/rfpmarket/internal/config"
)

// NewProvider returns a client for vLLM's OpenAI-compatible server.
func NewProvider(cfg config.VLLMConfig) *openai.Provider {
	return openai.NewCompatible("vllm", strings.TrimRight(cfg.BaseURL, "/")+"/v1", "", cfg.Model)
}
