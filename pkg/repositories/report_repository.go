package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/brandlens-inc/brandlens-engine/pkg/apperrors"
	"github.com/brandlens-inc/brandlens-engine/pkg/database"
	"github.com/brandlens-inc/brandlens-engine/pkg/models"
)

// ReportRepository provides data access for generated reports. Reports are
// append-only: every Insert creates a new row, even for a session id that
// already has reports.
type ReportRepository interface {
	Insert(ctx context.Context, report *models.Report) error
	Get(ctx context.Context, id uuid.UUID) (*models.Report, error)
	ListBySession(ctx context.Context, sessionID string) ([]*models.Report, error)
	ListByEmail(ctx context.Context, email string) ([]*models.Report, error)
	ListByType(ctx context.Context, reportType models.ReportType) ([]*models.Report, error)
	// ListRecent returns reports generated within the trailing window of days.
	ListRecent(ctx context.Context, days int) ([]*models.Report, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.Report, error)
	UpdateEmailSent(ctx context.Context, id uuid.UUID, recipientEmail string) error
}

type reportRepository struct{}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository() ReportRepository {
	return &reportRepository{}
}

var _ ReportRepository = (*reportRepository)(nil)

const reportColumns = `id, session_id, account_id, report_type, report_data,
	email_sent, recipient_email, brand_name, generated_at`

func (r *reportRepository) Insert(ctx context.Context, report *models.Report) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		INSERT INTO reports (
			session_id, account_id, report_type, report_data,
			email_sent, recipient_email, brand_name
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, generated_at`

	// report_data and recipient_email are NOT NULL columns: a report saved
	// before delivery simply has an empty recipient.
	data := report.ReportData
	if data == nil {
		data = map[string]any{}
	}

	err := scope.Conn.QueryRow(ctx, query,
		report.SessionID,
		report.AccountID,
		report.ReportType,
		data,
		report.EmailSent,
		report.RecipientEmail,
		nullString(report.BrandName),
	).Scan(&report.ID, &report.GeneratedAt)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	return nil
}

func (r *reportRepository) Get(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`

	row := scope.Conn.QueryRow(ctx, query, id)
	report, err := scanReport(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Report not found
		}
		return nil, err
	}

	return report, nil
}

func (r *reportRepository) ListBySession(ctx context.Context, sessionID string) ([]*models.Report, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE session_id = $1
		ORDER BY generated_at ASC`
	return r.list(ctx, query, sessionID)
}

func (r *reportRepository) ListByEmail(ctx context.Context, email string) ([]*models.Report, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE recipient_email = $1
		ORDER BY generated_at DESC`
	return r.list(ctx, query, email)
}

func (r *reportRepository) ListByType(ctx context.Context, reportType models.ReportType) ([]*models.Report, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE report_type = $1
		ORDER BY generated_at DESC`
	return r.list(ctx, query, reportType)
}

func (r *reportRepository) ListRecent(ctx context.Context, days int) ([]*models.Report, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE generated_at >= now() - make_interval(days => $1)
		ORDER BY generated_at DESC`
	return r.list(ctx, query, days)
}

func (r *reportRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.Report, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE account_id = $1
		ORDER BY generated_at DESC
		LIMIT $2`
	return r.list(ctx, query, accountID, limit)
}

func (r *reportRepository) UpdateEmailSent(ctx context.Context, id uuid.UUID, recipientEmail string) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		UPDATE reports
		SET email_sent = true,
		    recipient_email = $2
		WHERE id = $1`

	result, err := scope.Conn.Exec(ctx, query, id, recipientEmail)
	if err != nil {
		return fmt.Errorf("failed to mark report email sent: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *reportRepository) list(ctx context.Context, query string, args ...any) ([]*models.Report, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	rows, err := scope.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}

	return reports, nil
}

func scanReport(row pgx.Row) (*models.Report, error) {
	var rep models.Report
	var brandName *string
	var reportData []byte

	err := row.Scan(
		&rep.ID,
		&rep.SessionID,
		&rep.AccountID,
		&rep.ReportType,
		&reportData,
		&rep.EmailSent,
		&rep.RecipientEmail,
		&brandName,
		&rep.GeneratedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}

	if brandName != nil {
		rep.BrandName = *brandName
	}

	if err := scanJSONB(reportData, &rep.ReportData, "report_data"); err != nil {
		return nil, err
	}

	return &rep, nil
}
