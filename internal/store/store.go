package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kiranshivaraju/rfpmarket/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	GetUserRole(ctx context.Context, userID uuid.UUID) (string, error)

	// CreateAudit persists an audit together with its Items atomically.
	CreateAudit(ctx context.Context, audit *models.AdoptionAudit) error
	GetAudit(ctx context.Context, id uuid.UUID, consultantID uuid.UUID) (*models.AdoptionAudit, error)
	ListAudits(ctx context.Context, filter AuditFilter) ([]*models.AdoptionAudit, int, error)

	CreateUpload(ctx context.Context, upload *models.AdoptionUpload) error
	ListUploads(ctx context.Context, auditID uuid.UUID) ([]*models.AdoptionUpload, error)
}

type AuditFilter struct {
	ConsultantID uuid.UUID
	AirlineID    *uuid.UUID
	AirlineName  string
	Since        time.Time
	Page         int
	Limit        int
}
