package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kiranshivaraju/rfpmarket/internal/adoption"
	"github.com/kiranshivaraju/rfpmarket/internal/store"
	"github.com/kiranshivaraju/rfpmarket/pkg/models"
)

const defaultUploadFileName = "uploaded_data.csv"

// UploadParams holds parsed usage rows and the caller that uploaded them.
type UploadParams struct {
	ConsultantID uuid.UUID
	BearerToken  string
	AirlineName  string
	FileName     string
	Records      []models.UsageRecord
}

// UploadResult is the evaluated audit plus the per-tool aggregates it was built from.
type UploadResult struct {
	Audit            *models.AuditResult
	Tools            []models.ToolUsageAggregate
	RecordsProcessed int
}

// UploadService turns uploaded usage rows into an adoption audit.
type UploadService struct {
	evaluator Evaluator
	store     store.Store
	now       func() time.Time
}

// NewUploadService creates an UploadService that scores audits with evaluator.
func NewUploadService(evaluator Evaluator, st store.Store) *UploadService {
	return &UploadService{
		evaluator: evaluator,
		store:     st,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Process aggregates the rows per tool, evaluates the resulting audit items
// and records the upload. Evaluation failures are wrapped in
// ErrEvaluationFailed; failing to record the upload is logged only, since the
// audit already exists by then.
func (s *UploadService) Process(ctx context.Context, p UploadParams) (*UploadResult, error) {
	if len(p.Records) == 0 {
		return nil, adoption.ErrNoRows
	}

	tools := adoption.Aggregate(p.Records)

	result, err := s.evaluator.Evaluate(ctx, EvaluateParams{
		ConsultantID: p.ConsultantID,
		BearerToken:  p.BearerToken,
		Request: models.AuditRequest{
			AirlineName: p.AirlineName,
			Items:       adoption.ToAuditItems(tools),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEvaluationFailed, err)
	}

	fileName := p.FileName
	if fileName == "" {
		fileName = defaultUploadFileName
	}

	auditID, err := uuid.Parse(result.AuditID)
	if err != nil {
		slog.Warn("evaluator returned unparseable audit id, upload not recorded", "audit_id", result.AuditID)
	} else {
		upload := &models.AdoptionUpload{
			ID:               uuid.New(),
			AuditID:          auditID,
			ConsultantID:     p.ConsultantID,
			FileName:         fileName,
			RecordsProcessed: len(p.Records),
			ToolsProcessed:   len(tools),
			UploadStatus:     models.UploadStatusCompleted,
			ProcessedAt:      s.now(),
		}
		if err := s.store.CreateUpload(ctx, upload); err != nil {
			slog.Error("recording upload failed", "audit_id", auditID, "error", err)
		}
	}

	return &UploadResult{
		Audit:            result,
		Tools:            tools,
		RecordsProcessed: len(p.Records),
	}, nil
}
