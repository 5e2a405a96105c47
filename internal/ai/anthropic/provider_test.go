package anthropic_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiranshivaraju/rfpmarket/internal/ai/anthropic"
	"github.com/kiranshivaraju/rfpmarket/internal/config"
	"github.com/kiranshivaraju/rfpmarket/pkg/models"
)

func TestComplete(t *testing.T) {
	var got map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{"model":"claude-x","content":[{"type":"text","text":"{\"a\":"},{"type":"text","text":"1}"}]}`))
	}))
	defer ts.Close()

	p := anthropic.NewProvider(config.AnthropicConfig{APIKey: "sk-ant-test", Model: "claude-x", BaseURL: ts.URL})
	assert.Equal(t, "anthropic", p.Name())

	resp, err := p.Complete(context.Background(), models.CompletionRequest{System: "sys", User: "usr", JSON: true})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, resp.Content)
	assert.Equal(t, "claude-x", resp.Model)

	assert.Equal(t, "sys", got["system"])
	assert.EqualValues(t, 4096, got["max_tokens"])
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].(map[string]any)["content"], "single JSON object")
}

func TestComplete_NoText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer ts.Close()

	p := anthropic.NewProvider(config.AnthropicConfig{APIKey: "k", Model: "m", BaseURL: ts.URL})
	_, err := p.Complete(context.Background(), models.CompletionRequest{User: "hi"})
	assert.ErrorIs(t, err, models.ErrInvalidResponse)
}

func TestComplete_CreditsExhausted(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer ts.Close()

	p := anthropic.NewProvider(config.AnthropicConfig{APIKey: "k", Model: "m", BaseURL: ts.URL})
	_, err := p.Complete(context.Background(), models.CompletionRequest{User: "hi"})
	assert.ErrorIs(t, err, models.ErrCreditsExhausted)
}
