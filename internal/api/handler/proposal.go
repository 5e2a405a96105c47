package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kiranshivaraju/rfpmarket/internal/ai"
	"github.com/kiranshivaraju/rfpmarket/internal/api/response"
	"github.com/kiranshivaraju/rfpmarket/pkg/models"
)

// maxRequirements bounds the requirements accepted in one analysis.
const maxRequirements = 200

// ProposalAnalyzer defines the interface the handler depends on.
type ProposalAnalyzer interface {
	Analyze(ctx context.Context, req models.ProposalAnalysisRequest) (*models.ProposalAnalysis, error)
}

// NewAnalyzeProposalHandler returns an http.HandlerFunc for
// POST /api/v1/analyze-proposal.
func NewAnalyzeProposalHandler(svc ProposalAnalyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ProposalAnalysisRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if strings.TrimSpace(req.RFPTitle) == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "rfpTitle is required", nil)
			return
		}
		if len(req.Requirements) > maxRequirements {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Too many requirements", nil)
			return
		}

		analysis, err := svc.Analyze(r.Context(), req)
		if err != nil {
			switch {
			case errors.Is(err, ai.ErrProviderRateLimited):
				response.Error(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED",
					"Rate limit exceeded. Please try again in a moment.", nil)
			case errors.Is(err, ai.ErrCreditsExhausted):
				response.Error(w, http.StatusPaymentRequired, "AI_CREDITS_EXHAUSTED",
					"AI credits exhausted. Please add more credits.", nil)
			case errors.Is(err, ai.ErrInferenceTimeout):
				response.Error(w, http.StatusGatewayTimeout, "AI_INFERENCE_TIMEOUT",
					"AI analysis took too long and was cancelled", nil)
			case errors.Is(err, ai.ErrNoProvider):
				response.Error(w, http.StatusServiceUnavailable, "AI_PROVIDER_UNAVAILABLE",
					"No AI provider is configured", nil)
			case errors.Is(err, ai.ErrProviderUnavailable), errors.Is(err, ai.ErrInvalidResponse):
				slog.Error("proposal analysis failed", "error", err)
				response.Error(w, http.StatusBadGateway, "AI_PROVIDER_UNAVAILABLE",
					"The AI provider is not available", nil)
			default:
				slog.Error("proposal analysis failed", "error", err)
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		response.Plain(w, http.StatusOK, analysis)
	}
}
