package models

import (
	"time"

	"github.com/google/uuid"
)

// Roles a user can hold. Roles are assigned by the identity service;
// this service only reads them.
const (
	RoleAirline    = "airline"
	RoleVendor     = "vendor"
	RoleConsultant = "consultant"
)

// Upload status values.
const (
	UploadStatusCompleted = "completed"
)

// AdoptionAudit is a persisted evaluation of an airline's tool adoption.
type AdoptionAudit struct {
	ID           uuid.UUID          `json:"id" db:"id"`
	AirlineID    *uuid.UUID         `json:"airline_id,omitempty" db:"airline_id"`
	AirlineName  string             `json:"airline_name,omitempty" db:"airline_name"`
	ConsultantID uuid.UUID          `json:"consultant_id" db:"consultant_id"`
	OverallScore int                `json:"overall_score" db:"overall_score"`
	Summary      string             `json:"summary" db:"summary"`
	AuditDate    time.Time          `json:"audit_date" db:"audit_date"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
	Items        []*AuditItemRecord `json:"items,omitempty" db:"-"`
	Uploads      []*AdoptionUpload  `json:"uploads,omitempty" db:"-"`
}

// AuditItemRecord is one scored tool within an audit.
type AuditItemRecord struct {
	ID                uuid.UUID `json:"id" db:"id"`
	AuditID           uuid.UUID `json:"audit_id" db:"audit_id"`
	ToolName          string    `json:"tool_name" db:"tool_name"`
	UtilizationMetric float64   `json:"utilization_metric" db:"utilization_metric"`
	SentimentScore    float64   `json:"sentiment_score" db:"sentiment_score"`
	CalculatedScore   int       `json:"calculated_score" db:"calculated_score"`
	Recommendation    string    `json:"recommendation" db:"recommendation"`
}

// AdoptionUpload records that a usage file was processed into an audit.
// Only counts are kept; uploaded rows are never stored.
type AdoptionUpload struct {
	ID               uuid.UUID `json:"id" db:"id"`
	AuditID          uuid.UUID `json:"audit_id" db:"audit_id"`
	ConsultantID     uuid.UUID `json:"consultant_id" db:"consultant_id"`
	FileName         string    `json:"file_name" db:"file_name"`
	RecordsProcessed int       `json:"records_processed" db:"records_processed"`
	ToolsProcessed   int       `json:"tools_processed" db:"tools_processed"`
	UploadStatus     string    `json:"upload_status" db:"upload_status"`
	ProcessedAt      time.Time `json:"processed_at" db:"processed_at"`
}
