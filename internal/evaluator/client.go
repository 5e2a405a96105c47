// Package evaluator calls a separately deployed evaluate-adoption endpoint.
package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/kiranshivaraju/rfpmarket/internal/ai"
	"github.com/kiranshivaraju/rfpmarket/pkg/models"
)

// Sentinel errors for evaluator failures.
var (
	ErrUnreachable = errors.New("evaluator unreachable")
	ErrRejected    = errors.New("evaluator rejected request")
	ErrTimeout     = errors.New("evaluator timeout")
)

const evaluatePath = "/api/v1/evaluate-adoption"

// HTTPClient implements ai.Evaluator over HTTP, forwarding the caller's bearer token.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a new evaluator HTTP client.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// errorEnvelope covers both the service's {"error":{"message"}} shape and a
// bare {"error":"..."} string.
type errorEnvelope struct {
	Error json.RawMessage `json:"error"`
}

func (c *HTTPClient) Evaluate(ctx context.Context, params ai.EvaluateParams) (*models.AuditResult, error) {
	body, err := json.Marshal(params.Request)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+evaluatePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if params.BearerToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+params.BearerToken)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, fmt.Errorf("%w: %s", ErrRejected, errorMessage(resp.StatusCode, raw))
	}

	var result models.AuditResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding evaluator response: %w", err)
	}
	if result.AuditID == "" {
		return nil, fmt.Errorf("%w: response has no audit_id", ErrRejected)
	}
	return &result, nil
}

// errorMessage extracts the human readable message from an error body.
func errorMessage(status int, raw []byte) string {
	var env errorEnvelope
	if json.Unmarshal(raw, &env) == nil && len(env.Error) > 0 {
		var msg string
		if json.Unmarshal(env.Error, &msg) == nil && msg != "" {
			return msg
		}
		var obj struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(env.Error, &obj) == nil && obj.Message != "" {
			return obj.Message
		}
	}
	return fmt.Sprintf("status %d", status)
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

var _ ai.Evaluator = (*HTTPClient)(nil)
