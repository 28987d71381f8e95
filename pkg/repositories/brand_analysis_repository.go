package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/brandlens-inc/brandlens-engine/pkg/apperrors"
	"github.com/brandlens-inc/brandlens-engine/pkg/database"
	"github.com/brandlens-inc/brandlens-engine/pkg/models"
)

// BrandAnalysisRepository provides data access for brand analyses.
type BrandAnalysisRepository interface {
	// Upsert saves the analysis keyed purely on session id: a second save
	// for the same session overwrites the prior record in place. The
	// analysis timestamp is refreshed on every save.
	Upsert(ctx context.Context, analysis *models.BrandAnalysis) error
	Get(ctx context.Context, sessionID string) (*models.BrandAnalysis, error)
	// UpdateStatus requires the record to exist; it never creates one.
	// Only the supplied fields are overwritten: a nil resultData leaves the
	// stored result untouched.
	UpdateStatus(ctx context.Context, sessionID string, status models.AnalysisStatus, resultData map[string]any) error
	ListByStatus(ctx context.Context, status models.AnalysisStatus) ([]*models.BrandAnalysis, error)
	// ListByAccount returns up to limit analyses owned by the account,
	// newest first.
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.BrandAnalysis, error)
	ListBySession(ctx context.Context, sessionID string) ([]*models.BrandAnalysis, error)
}

type brandAnalysisRepository struct{}

// NewBrandAnalysisRepository creates a new BrandAnalysisRepository.
func NewBrandAnalysisRepository() BrandAnalysisRepository {
	return &brandAnalysisRepository{}
}

var _ BrandAnalysisRepository = (*brandAnalysisRepository)(nil)

const brandAnalysisColumns = `id, session_id, account_id, brand_name, brand_website,
	brand_country, brand_description, brand_industry, competitors, status,
	result_data, sources, analyzed_at`

func (r *brandAnalysisRepository) Upsert(ctx context.Context, analysis *models.BrandAnalysis) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	now := time.Now()

	query := `
		INSERT INTO brand_analyses (
			session_id, account_id, brand_name, brand_website, brand_country,
			brand_description, brand_industry, competitors, status,
			result_data, sources, analyzed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (session_id) DO UPDATE
		SET account_id = COALESCE(EXCLUDED.account_id, brand_analyses.account_id),
		    brand_name = EXCLUDED.brand_name,
		    brand_website = EXCLUDED.brand_website,
		    brand_country = EXCLUDED.brand_country,
		    brand_description = EXCLUDED.brand_description,
		    brand_industry = EXCLUDED.brand_industry,
		    competitors = EXCLUDED.competitors,
		    status = EXCLUDED.status,
		    result_data = EXCLUDED.result_data,
		    sources = EXCLUDED.sources,
		    analyzed_at = EXCLUDED.analyzed_at
		RETURNING id, analyzed_at`

	err := scope.Conn.QueryRow(ctx, query,
		analysis.SessionID,
		analysis.AccountID,
		analysis.BrandName,
		nullString(analysis.BrandWebsite),
		nullString(analysis.BrandCountry),
		nullString(analysis.BrandDescription),
		nullString(analysis.BrandIndustry),
		jsonbValue(analysis.Competitors),
		analysis.Status,
		jsonbValue(analysis.ResultData),
		jsonbValue(analysis.Sources),
		now,
	).Scan(&analysis.ID, &analysis.AnalyzedAt)
	if err != nil {
		return fmt.Errorf("failed to save brand analysis: %w", err)
	}

	return nil
}

func (r *brandAnalysisRepository) Get(ctx context.Context, sessionID string) (*models.BrandAnalysis, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `SELECT ` + brandAnalysisColumns + ` FROM brand_analyses WHERE session_id = $1`

	row := scope.Conn.QueryRow(ctx, query, sessionID)
	analysis, err := scanBrandAnalysis(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Analysis not found
		}
		return nil, err
	}

	return analysis, nil
}

func (r *brandAnalysisRepository) UpdateStatus(ctx context.Context, sessionID string, status models.AnalysisStatus, resultData map[string]any) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		UPDATE brand_analyses
		SET status = $2,
		    result_data = COALESCE($3, result_data),
		    analyzed_at = now()
		WHERE session_id = $1`

	result, err := scope.Conn.Exec(ctx, query, sessionID, status, jsonbValue(resultData))
	if err != nil {
		return fmt.Errorf("failed to update brand analysis status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *brandAnalysisRepository) ListByStatus(ctx context.Context, status models.AnalysisStatus) ([]*models.BrandAnalysis, error) {
	return r.list(ctx, `SELECT `+brandAnalysisColumns+` FROM brand_analyses WHERE status = $1`, status)
}

func (r *brandAnalysisRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.BrandAnalysis, error) {
	query := `
		SELECT ` + brandAnalysisColumns + `
		FROM brand_analyses
		WHERE account_id = $1
		ORDER BY analyzed_at DESC
		LIMIT $2`
	return r.list(ctx, query, accountID, limit)
}

func (r *brandAnalysisRepository) ListBySession(ctx context.Context, sessionID string) ([]*models.BrandAnalysis, error) {
	return r.list(ctx, `SELECT `+brandAnalysisColumns+` FROM brand_analyses WHERE session_id = $1`, sessionID)
}

func (r *brandAnalysisRepository) list(ctx context.Context, query string, args ...any) ([]*models.BrandAnalysis, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	rows, err := scope.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query brand analyses: %w", err)
	}
	defer rows.Close()

	var analyses []*models.BrandAnalysis
	for rows.Next() {
		analysis, err := scanBrandAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating brand analyses: %w", err)
	}

	return analyses, nil
}

func scanBrandAnalysis(row pgx.Row) (*models.BrandAnalysis, error) {
	var a models.BrandAnalysis
	var website, country, description, industry *string
	var competitors, resultData, sources []byte

	err := row.Scan(
		&a.ID,
		&a.SessionID,
		&a.AccountID,
		&a.BrandName,
		&website,
		&country,
		&description,
		&industry,
		&competitors,
		&a.Status,
		&resultData,
		&sources,
		&a.AnalyzedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan brand analysis: %w", err)
	}

	if website != nil {
		a.BrandWebsite = *website
	}
	if country != nil {
		a.BrandCountry = *country
	}
	if description != nil {
		a.BrandDescription = *description
	}
	if industry != nil {
		a.BrandIndustry = *industry
	}

	if err := scanJSONB(competitors, &a.Competitors, "competitors"); err != nil {
		return nil, err
	}
	if err := scanJSONB(resultData, &a.ResultData, "result_data"); err != nil {
		return nil, err
	}
	if err := scanJSONB(sources, &a.Sources, "sources"); err != nil {
		return nil, err
	}

	return &a, nil
}
