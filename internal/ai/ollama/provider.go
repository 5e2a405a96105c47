package ollama

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kiranshivaraju/rfpmarket/internal/ai/transport"
	"github.com/kiranshivaraju/rfpmarket/internal/config"
	"github.com/kiranshivaraju/rfpmarket/pkg/models"
)

// Local models can be slow on first load.
const requestTimeout = 5 * time.Minute

// Provider implements models.AIProvider using Ollama.
type Provider struct {
	model  string
	client *transport.Client
}

func NewProvider(cfg config.OllamaConfig) *Provider {
	return &Provider{
		model:  cfg.Model,
		client: transport.New(strings.TrimRight(cfg.BaseURL, "/"), nil, requestTimeout),
	}
}

func (p *Provider) Name() string { return "ollama" }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Format   string         `json:"format,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Model   string  `json:"model"`
	Message message `json:"message"`
}

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (models.CompletionResponse, error) {
	body := chatRequest{
		Model:   p.model,
		Stream:  false,
		Options: map[string]any{"temperature": req.Temperature},
	}
	if req.MaxTokens > 0 {
		body.Options["num_predict"] = req.MaxTokens
	}
	if req.System != "" {
		body.Messages = append(body.Messages, message{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, message{Role: "user", Content: req.User})
	if req.JSON {
		body.Format = "json"
	}

	var resp chatResponse
	if err := p.client.PostJSON(ctx, "/api/chat", body, &resp); err != nil {
		return models.CompletionResponse{}, err
	}
	if resp.Message.Content == "" {
		return models.CompletionResponse{}, fmt.Errorf("%w: empty message", models.ErrInvalidResponse)
	}

	return models.CompletionResponse{Content: resp.Message.Content, Model: resp.Model}, nil
}

var _ models.AIProvider = (*Provider)(nil)
