// Package models contains shared data models used across the rfpmarket codebase.
package models

import (
	"context"
	"errors"
)

// AIProvider is the core interface that all AI integrations must implement.
// Never call specific AI providers directly; always inject this interface.
type AIProvider interface {
	// Complete sends a single system+user prompt and returns the model's reply.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	// Name returns the provider identifier (e.g., "ollama", "openai").
	Name() string
}

// CompletionRequest is the input to a single model call.
type CompletionRequest struct {
	System      string
	User        string
	JSON        bool // ask the model for a single JSON object
	Temperature float64
	MaxTokens   int
}

// CompletionResponse is the raw model reply.
type CompletionResponse struct {
	Content string
	Model   string
}

// Errors returned by every AIProvider implementation.
var (
	ErrProviderUnavailable = errors.New("AI provider unavailable")
	ErrInferenceTimeout    = errors.New("AI inference timeout")
	ErrInvalidResponse     = errors.New("AI provider returned invalid response")
	ErrProviderRateLimited = errors.New("AI provider rate limit exceeded")
	ErrCreditsExhausted    = errors.New("AI provider credits exhausted")
)
