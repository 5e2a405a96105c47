package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kiranshivaraju/rfpmarket/internal/ai/transport"
	"github.com/kiranshivaraju/rfpmarket/internal/config"
	"github.com/kiranshivaraju/rfpmarket/pkg/models"
)

const (
	apiVersion       = "2023-06-01"
	defaultMaxTokens = 4096
	requestTimeout   = 120 * time.Second
)

// Provider implements models.AIProvider using the Anthropic messages API.
type Provider struct {
	model  string
	client *transport.Client
}

func NewProvider(cfg config.AnthropicConfig) *Provider {
	return &Provider{
		model: cfg.Model,
		client: transport.New(strings.TrimRight(cfg.BaseURL, "/"), map[string]string{
			"x-api-key":         cfg.APIKey,
			"anthropic-version": apiVersion,
		}, requestTimeout),
	}
}

func (p *Provider) Name() string { return "anthropic" }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type messagesResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (models.CompletionResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	user := req.User
	if req.JSON {
		user += "\n\nRespond with a single JSON object and nothing else."
	}

	var resp messagesResponse
	err := p.client.PostJSON(ctx, "/v1/messages", messagesRequest{
		Model:       p.model,
		System:      req.System,
		Messages:    []message{{Role: "user", Content: user}},
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}, &resp)
	if err != nil {
		return models.CompletionResponse{}, err
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return models.CompletionResponse{}, fmt.Errorf("%w: no text content", models.ErrInvalidResponse)
	}

	return models.CompletionResponse{Content: sb.String(), Model: resp.Model}, nil
}

var _ models.AIProvider = (*Provider)(nil)
