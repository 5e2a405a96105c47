package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kiranshivaraju/rfpmarket/internal/adoption"
	"github.com/kiranshivaraju/rfpmarket/internal/cache"
	"github.com/kiranshivaraju/rfpmarket/internal/store"
	"github.com/kiranshivaraju/rfpmarket/pkg/models"
	"github.com/kiranshivaraju/rfpmarket/pkg/prompt"
)

const (
	auditCacheTTL    = 10 * time.Minute
	auditTemperature = 0.7
)

// EvaluateParams holds an audit request and the caller it runs on behalf of.
type EvaluateParams struct {
	ConsultantID uuid.UUID
	// BearerToken is forwarded when evaluation happens in another service.
	BearerToken string
	Request     models.AuditRequest
}

// Evaluator scores an audit request, persists it and returns the result.
type Evaluator interface {
	Evaluate(ctx context.Context, params EvaluateParams) (*models.AuditResult, error)
}

// AuditService evaluates adoption audits in process.
type AuditService struct {
	provider models.AIProvider
	store    store.Store
	cache    cache.Cache
	timeout  time.Duration
	prompts  prompt.Builder
	now      func() time.Time
}

// NewAuditService creates a new AuditService. provider may be nil, in which
// case every audit uses the built-in summary and recommendations.
func NewAuditService(provider models.AIProvider, st store.Store, ca cache.Cache, timeout time.Duration) *AuditService {
	return &AuditService{
		provider: provider,
		store:    st,
		cache:    ca,
		timeout:  timeout,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Evaluate validates and scores the request, asks the model for a narrative
// and stores the audit with its items. A failed or malformed model reply
// falls back to the default texts; validation and storage errors are returned.
func (s *AuditService) Evaluate(ctx context.Context, params EvaluateParams) (*models.AuditResult, error) {
	req := params.Request
	if errs := adoption.ValidateAuditRequest(req); errs != nil {
		return nil, &adoption.ValidationError{Errors: errs}
	}

	scored := adoption.ScoreItems(req.Items)
	overall := adoption.OverallScore(scored)
	summary, suggestions := s.narrate(ctx, req.AirlineName, scored, overall)
	recs := adoption.MergeRecommendations(scored, suggestions)

	now := s.now()
	audit := &models.AdoptionAudit{
		ID:           uuid.New(),
		AirlineName:  req.AirlineName,
		ConsultantID: params.ConsultantID,
		OverallScore: overall,
		Summary:      summary,
		AuditDate:    time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		CreatedAt:    now,
	}
	if req.AirlineID != "" {
		id, err := uuid.Parse(req.AirlineID)
		if err != nil {
			return nil, &adoption.ValidationError{Errors: []adoption.FieldError{{Field: "airline_id", Message: "Invalid airline_id format"}}}
		}
		audit.AirlineID = &id
	}

	audit.Items = make([]*models.AuditItemRecord, len(scored))
	for i, item := range scored {
		audit.Items[i] = &models.AuditItemRecord{
			ID:                uuid.New(),
			AuditID:           audit.ID,
			ToolName:          item.ToolName,
			UtilizationMetric: item.Utilization,
			SentimentScore:    item.Sentiment,
			CalculatedScore:   item.CalculatedScore,
			Recommendation:    recs[i].Recommendation,
		}
	}

	if err := s.store.CreateAudit(ctx, audit); err != nil {
		return nil, fmt.Errorf("saving audit: %w", err)
	}

	slog.Info("adoption audit created",
		"audit_id", audit.ID,
		"consultant_id", params.ConsultantID,
		"items", len(audit.Items),
		"overall_score", overall,
	)

	return &models.AuditResult{
		AuditID:         audit.ID.String(),
		OverallScore:    overall,
		Summary:         summary,
		Recommendations: recs,
	}, nil
}

type auditReply struct {
	Summary         string                  `json:"summary"`
	Recommendations []models.ToolSuggestion `json:"recommendations"`
}

// narrate returns the executive summary and per-tool suggestions. Any
// provider failure yields the default summary and no suggestions.
func (s *AuditService) narrate(ctx context.Context, airline string, scored []models.ScoredItem, overall int) (string, []models.ToolSuggestion) {
	fallback := adoption.DefaultSummary(overall)
	if s.provider == nil {
		return fallback, nil
	}

	lines := make([]prompt.AuditLine, len(scored))
	for i, item := range scored {
		lines[i] = prompt.AuditLine{
			ToolName:    item.ToolName,
			Utilization: item.Utilization,
			Sentiment:   item.Sentiment,
			Score:       item.CalculatedScore,
		}
	}
	p := s.prompts.AdoptionAudit(prompt.AuditParams{
		AirlineName:  airline,
		Lines:        lines,
		OverallScore: overall,
	})

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.provider.Complete(callCtx, models.CompletionRequest{
		System:      p.System,
		User:        p.User,
		JSON:        true,
		Temperature: auditTemperature,
	})
	if err != nil {
		slog.Warn("audit narrative unavailable, using defaults", "provider", s.provider.Name(), "error", err)
		return fallback, nil
	}

	var reply auditReply
	if err := json.Unmarshal([]byte(extractJSON(resp.Content)), &reply); err != nil {
		slog.Warn("audit narrative unparseable, using defaults", "provider", s.provider.Name(), "error", err)
		return fallback, nil
	}

	summary := strings.TrimSpace(reply.Summary)
	if summary == "" {
		summary = fallback
	}
	return summary, reply.Recommendations
}

// GetAudit returns a stored audit with its items and the upload records that
// produced it. Audits never change after creation, so reads are served from
// cache when possible.
func (s *AuditService) GetAudit(ctx context.Context, id, consultantID uuid.UUID) (*models.AdoptionAudit, error) {
	key := cache.AuditKey(id)
	if raw, found, err := s.cache.Get(ctx, key); err == nil && found {
		var cached models.AdoptionAudit
		if json.Unmarshal(raw, &cached) == nil {
			if cached.ConsultantID != consultantID {
				return nil, store.ErrNotFound
			}
			return &cached, nil
		}
	}

	audit, err := s.store.GetAudit(ctx, id, consultantID)
	if err != nil {
		return nil, err
	}
	uploads, err := s.store.ListUploads(ctx, id)
	if err != nil {
		return nil, err
	}
	audit.Uploads = uploads

	if raw, err := json.Marshal(audit); err == nil {
		if err := s.cache.Set(ctx, key, raw, auditCacheTTL); err != nil {
			slog.Warn("caching audit failed", "audit_id", id, "error", err)
		}
	}
	return audit, nil
}

// ListAudits returns a page of the consultant's audits and the total count.
func (s *AuditService) ListAudits(ctx context.Context, filter store.AuditFilter) ([]*models.AdoptionAudit, int, error) {
	return s.store.ListAudits(ctx, filter)
}

// extractJSON strips a surrounding markdown code fence from a model reply.
func extractJSON(content string) string {
	s := strings.TrimSpace(content)
	if start := strings.Index(s, "```"); start >= 0 {
		body := strings.TrimPrefix(s[start+3:], "json")
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}
		return strings.TrimSpace(body)
	}
	return s
}

var _ Evaluator = (*AuditService)(nil)
