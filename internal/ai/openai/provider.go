// Package openai implements models.AIProvider over the OpenAI chat completions API.
// Any OpenAI-compatible server (vLLM, gateways) works through NewCompatible.
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kiranshivaraju/rfpmarket/internal/ai/transport"
	"github.com/kiranshivaraju/rfpmarket/internal/config"
	"github.com/kiranshivaraju/rfpmarket/pkg/models"
)

const requestTimeout = 120 * time.Second

// Provider implements models.AIProvider using OpenAI.
type Provider struct {
	name   string
	model  string
	client *transport.Client
}

func NewProvider(cfg config.OpenAIConfig) *Provider {
	return NewCompatible("openai", cfg.BaseURL, cfg.APIKey, cfg.Model)
}

// NewCompatible targets an OpenAI-compatible endpoint. baseURL includes the
// version prefix (e.g. https://api.openai.com/v1). An empty apiKey sends no
// Authorization header.
func NewCompatible(name, baseURL, apiKey, model string) *Provider {
	headers := map[string]string{}
	if apiKey != "" {
		headers["Authorization"] = "Bearer " + apiKey
	}
	return &Provider{
		name:   name,
		model:  model,
		client: transport.New(strings.TrimRight(baseURL, "/"), headers, requestTimeout),
	}
}

func (p *Provider) Name() string { return p.name }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (models.CompletionResponse, error) {
	body := chatRequest{
		Model:       p.model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.System != "" {
		body.Messages = append(body.Messages, message{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, message{Role: "user", Content: req.User})
	if req.JSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var resp chatResponse
	if err := p.client.PostJSON(ctx, "/chat/completions", body, &resp); err != nil {
		return models.CompletionResponse{}, err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return models.CompletionResponse{}, fmt.Errorf("%w: empty completion", models.ErrInvalidResponse)
	}

	return models.CompletionResponse{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
	}, nil
}

var _ models.AIProvider = (*Provider)(nil)
