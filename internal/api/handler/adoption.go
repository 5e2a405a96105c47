package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kiranshivaraju/rfpmarket/internal/adoption"
	"github.com/kiranshivaraju/rfpmarket/internal/ai"
	mw "github.com/kiranshivaraju/rfpmarket/internal/api/middleware"
	"github.com/kiranshivaraju/rfpmarket/internal/api/response"
	"github.com/kiranshivaraju/rfpmarket/internal/store"
	"github.com/kiranshivaraju/rfpmarket/pkg/models"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

var errMissingFields = errors.New("missing csv_data or airline_name")

// Uploader turns parsed usage rows into an audit.
type Uploader interface {
	Process(ctx context.Context, params ai.UploadParams) (*ai.UploadResult, error)
}

// AuditReader serves stored audits to the consultant who created them.
type AuditReader interface {
	GetAudit(ctx context.Context, id, consultantID uuid.UUID) (*models.AdoptionAudit, error)
	ListAudits(ctx context.Context, filter store.AuditFilter) ([]*models.AdoptionAudit, int, error)
}

type processRequest struct {
	CSVData     json.RawMessage `json:"csv_data"`
	AirlineName string          `json:"airline_name"`
	FileName    string          `json:"file_name"`
}

type processResponse struct {
	Success         bool                    `json:"success"`
	AuditID         string                  `json:"audit_id"`
	OverallScore    int                     `json:"overall_score"`
	Summary         string                  `json:"summary"`
	Recommendations []models.Recommendation `json:"recommendations"`
	ProcessedData   processedData           `json:"processed_data"`
}

type processedData struct {
	ToolsAnalyzed    int                         `json:"tools_analyzed"`
	RecordsProcessed int                         `json:"records_processed"`
	Tools            []models.ToolUsageAggregate `json:"tools"`
}

// NewProcessAdoptionHandler returns an http.HandlerFunc for
// POST /api/v1/process-adoption-csv.
func NewProcessAdoptionHandler(svc Uploader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		var req processRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		records, err := decodeRows(req.CSVData)
		if errors.Is(err, errMissingFields) || strings.TrimSpace(req.AirlineName) == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Missing csv_data or airline_name", nil)
			return
		}
		if err != nil {
			writeRowsError(w, err)
			return
		}

		result, err := svc.Process(r.Context(), ai.UploadParams{
			ConsultantID: userID,
			BearerToken:  mw.GetBearerToken(r),
			AirlineName:  strings.TrimSpace(req.AirlineName),
			FileName:     req.FileName,
			Records:      records,
		})
		if err != nil {
			writeProcessError(w, err)
			return
		}

		response.Plain(w, http.StatusOK, processResponse{
			Success:         true,
			AuditID:         result.Audit.AuditID,
			OverallScore:    result.Audit.OverallScore,
			Summary:         result.Audit.Summary,
			Recommendations: result.Audit.Recommendations,
			ProcessedData: processedData{
				ToolsAnalyzed:    len(result.Tools),
				RecordsProcessed: result.RecordsProcessed,
				Tools:            result.Tools,
			},
		})
	}
}

// decodeRows accepts csv_data as an array of row objects or a CSV document
// string. Falsy values count as missing; any other shape has no rows.
func decodeRows(raw json.RawMessage) ([]models.UsageRecord, error) {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", `""`, "false", "0":
		return nil, errMissingFields
	}

	switch raw[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, adoption.ErrNoRows
		}
		rows := make([]map[string]any, len(elems))
		for i, elem := range elems {
			if len(elem) == 0 || elem[0] != '{' {
				continue
			}
			dec := json.NewDecoder(bytes.NewReader(elem))
			dec.UseNumber()
			var row map[string]any
			if err := dec.Decode(&row); err == nil {
				rows[i] = row
			}
		}
		return adoption.ParseRows(rows)
	case '"':
		var doc string
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, adoption.ErrNoRows
		}
		return adoption.ParseCSV(strings.NewReader(doc))
	default:
		return nil, adoption.ErrNoRows
	}
}

func writeRowsError(w http.ResponseWriter, err error) {
	var verr *adoption.ValidationError
	switch {
	case errors.Is(err, adoption.ErrNoRows):
		response.Error(w, http.StatusBadRequest, "NO_DATA_ROWS", "No data rows found in CSV", nil)
	case errors.Is(err, adoption.ErrMalformedCSV):
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case errors.As(err, &verr):
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", verr.Errors)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}

func writeProcessError(w http.ResponseWriter, err error) {
	var verr *adoption.ValidationError
	switch {
	case errors.Is(err, adoption.ErrNoRows):
		response.Error(w, http.StatusBadRequest, "NO_DATA_ROWS", "No data rows found in CSV", nil)
	case errors.As(err, &verr):
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", verr.Errors)
	case errors.Is(err, ai.ErrEvaluationFailed):
		response.Error(w, http.StatusBadGateway, "EVALUATION_FAILED", err.Error(), nil)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}

// NewEvaluateAdoptionHandler returns an http.HandlerFunc for
// POST /api/v1/evaluate-adoption.
func NewEvaluateAdoptionHandler(svc ai.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		var req models.AuditRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		result, err := svc.Evaluate(r.Context(), ai.EvaluateParams{
			ConsultantID: userID,
			BearerToken:  mw.GetBearerToken(r),
			Request:      req,
		})
		if err != nil {
			var verr *adoption.ValidationError
			if errors.As(err, &verr) {
				response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", verr.Errors)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to evaluate adoption", nil)
			return
		}

		response.Plain(w, http.StatusOK, result)
	}
}

// NewListAuditsHandler returns an http.HandlerFunc for GET /api/v1/audits.
func NewListAuditsHandler(svc AuditReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		q := r.URL.Query()
		page, err := queryInt(q.Get("page"), 1)
		if err != nil || page < 1 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "page must be a positive integer", nil)
			return
		}
		limit, err := queryInt(q.Get("limit"), defaultPageLimit)
		if err != nil || limit < 1 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a positive integer", nil)
			return
		}
		limit = min(limit, maxPageLimit)

		filter := store.AuditFilter{
			ConsultantID: userID,
			AirlineName:  strings.TrimSpace(q.Get("airline_name")),
			Page:         page,
			Limit:        limit,
		}
		if v := q.Get("airline_id"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid airline_id format", nil)
				return
			}
			filter.AirlineID = &id
		}
		if v := q.Get("since"); v != "" {
			since, err := time.Parse(time.RFC3339, v)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "since must be a valid RFC3339 timestamp", nil)
				return
			}
			filter.Since = since
		}

		audits, total, err := svc.ListAudits(r.Context(), filter)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		if audits == nil {
			audits = []*models.AdoptionAudit{}
		}

		response.Collection(w, audits, response.PaginationMeta{
			Page:    page,
			Limit:   limit,
			Total:   total,
			HasNext: page*limit < total,
		})
	}
}

// NewGetAuditHandler returns an http.HandlerFunc for GET /api/v1/audits/{auditID}.
func NewGetAuditHandler(svc AuditReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		auditID, err := uuid.Parse(chi.URLParam(r, "auditID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid audit id", nil)
			return
		}

		audit, err := svc.GetAudit(r.Context(), auditID, userID)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Audit not found", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, audit)
	}
}

func queryInt(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
