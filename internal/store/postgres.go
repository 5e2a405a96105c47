package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kiranshivaraju/rfpmarket/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- User roles ---

func (s *PostgresStore) GetUserRole(ctx context.Context, userID uuid.UUID) (string, error) {
	var role string
	err := s.pool.QueryRow(ctx,
		`SELECT role FROM user_roles WHERE user_id = $1`, userID,
	).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get user role: %w", err)
	}
	return role, nil
}

// --- Audits ---

const auditColumns = `id, airline_id, airline_name, consultant_id, overall_score, summary, audit_date, created_at`

func (s *PostgresStore) CreateAudit(ctx context.Context, audit *models.AdoptionAudit) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO adoption_audits (`+auditColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			audit.ID, audit.AirlineID, nullIfEmpty(audit.AirlineName), audit.ConsultantID,
			audit.OverallScore, audit.Summary, audit.AuditDate, audit.CreatedAt)
		if err != nil {
			return err
		}

		if len(audit.Items) == 0 {
			return nil
		}
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"audit_items"},
			[]string{"id", "audit_id", "tool_name", "utilization_metric", "sentiment_score", "calculated_score", "recommendation"},
			pgx.CopyFromSlice(len(audit.Items), func(i int) ([]any, error) {
				it := audit.Items[i]
				return []any{it.ID, audit.ID, it.ToolName, it.UtilizationMetric, it.SentimentScore, it.CalculatedScore, it.Recommendation}, nil
			}),
		)
		return err
	})
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create audit: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAudit(ctx context.Context, id uuid.UUID, consultantID uuid.UUID) (*models.AdoptionAudit, error) {
	a, err := scanAudit(s.pool.QueryRow(ctx,
		`SELECT `+auditColumns+` FROM adoption_audits WHERE id = $1 AND consultant_id = $2`, id, consultantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get audit: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, audit_id, tool_name, utilization_metric, sentiment_score, calculated_score, recommendation
		 FROM audit_items WHERE audit_id = $1 ORDER BY tool_name`, id)
	if err != nil {
		return nil, fmt.Errorf("get audit items: %w", err)
	}
	defer rows.Close()

	a.Items = []*models.AuditItemRecord{}
	for rows.Next() {
		var it models.AuditItemRecord
		if err := rows.Scan(&it.ID, &it.AuditID, &it.ToolName, &it.UtilizationMetric,
			&it.SentimentScore, &it.CalculatedScore, &it.Recommendation); err != nil {
			return nil, fmt.Errorf("scan audit item: %w", err)
		}
		a.Items = append(a.Items, &it)
	}
	return a, rows.Err()
}

func (s *PostgresStore) ListAudits(ctx context.Context, filter AuditFilter) ([]*models.AdoptionAudit, int, error) {
	// Build WHERE clause dynamically
	conditions := []string{"consultant_id = $1"}
	args := []any{filter.ConsultantID}
	argIdx := 2

	if filter.AirlineID != nil {
		conditions = append(conditions, fmt.Sprintf("airline_id = $%d", argIdx))
		args = append(args, *filter.AirlineID)
		argIdx++
	}
	if filter.AirlineName != "" {
		conditions = append(conditions, fmt.Sprintf("airline_name ILIKE $%d", argIdx))
		args = append(args, filter.AirlineName)
		argIdx++
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, filter.Since)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	// Count query
	var total int
	countQuery := "SELECT COUNT(*) FROM adoption_audits WHERE " + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audits: %w", err)
	}

	// Normalize pagination
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	dataQuery := fmt.Sprintf(
		`SELECT %s FROM adoption_audits WHERE %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		auditColumns, where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audits: %w", err)
	}
	defer rows.Close()

	audits := []*models.AdoptionAudit{}
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan audit: %w", err)
		}
		audits = append(audits, a)
	}
	return audits, total, rows.Err()
}

// --- Uploads ---

func (s *PostgresStore) CreateUpload(ctx context.Context, upload *models.AdoptionUpload) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO adoption_data_uploads (id, audit_id, consultant_id, file_name, records_processed, tools_processed, upload_status, processed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		upload.ID, upload.AuditID, upload.ConsultantID, upload.FileName, upload.RecordsProcessed,
		upload.ToolsProcessed, upload.UploadStatus, upload.ProcessedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create upload: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListUploads(ctx context.Context, auditID uuid.UUID) ([]*models.AdoptionUpload, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, audit_id, consultant_id, file_name, records_processed, tools_processed, upload_status, processed_at
		 FROM adoption_data_uploads WHERE audit_id = $1 ORDER BY processed_at DESC`, auditID)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	uploads := []*models.AdoptionUpload{}
	for rows.Next() {
		var u models.AdoptionUpload
		if err := rows.Scan(&u.ID, &u.AuditID, &u.ConsultantID, &u.FileName, &u.RecordsProcessed,
			&u.ToolsProcessed, &u.UploadStatus, &u.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		uploads = append(uploads, &u)
	}
	return uploads, rows.Err()
}

func scanAudit(row pgx.Row) (*models.AdoptionAudit, error) {
	var (
		a           models.AdoptionAudit
		airlineName *string
	)
	if err := row.Scan(&a.ID, &a.AirlineID, &airlineName, &a.ConsultantID,
		&a.OverallScore, &a.Summary, &a.AuditDate, &a.CreatedAt); err != nil {
		return nil, err
	}
	if airlineName != nil {
		a.AirlineName = *airlineName
	}
	return &a, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
