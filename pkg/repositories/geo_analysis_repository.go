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

// GeoProgressUpdate carries the fields of a partial GEO analysis update.
// Nil fields are left untouched in the stored record.
type GeoProgressUpdate struct {
	Progress    int
	Status      *models.GeoStatus
	ResultData  map[string]any
	Suggestions *string
}

// GeoAnalysisRepository provides data access for GEO analyses.
//
// completed_at is stamped inside the SQL as a derived side effect of the
// status transition to completed: COALESCE keeps the first stamp so later
// saves never move or clear it.
type GeoAnalysisRepository interface {
	Upsert(ctx context.Context, analysis *models.GeoAnalysis) error
	Get(ctx context.Context, sessionID string) (*models.GeoAnalysis, error)
	// UpdateProgress requires the record to exist; it never creates one.
	UpdateProgress(ctx context.Context, sessionID string, update *GeoProgressUpdate) error
	ListByStatus(ctx context.Context, status models.GeoStatus) ([]*models.GeoAnalysis, error)
	ListByProgressRange(ctx context.Context, minProgress, maxProgress int) ([]*models.GeoAnalysis, error)
	// ListByAccount orders by completion time descending; analyses that
	// never completed sort as if from the epoch.
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.GeoAnalysis, error)
	ListBySession(ctx context.Context, sessionID string) ([]*models.GeoAnalysis, error)
}

type geoAnalysisRepository struct{}

// NewGeoAnalysisRepository creates a new GeoAnalysisRepository.
func NewGeoAnalysisRepository() GeoAnalysisRepository {
	return &geoAnalysisRepository{}
}

var _ GeoAnalysisRepository = (*geoAnalysisRepository)(nil)

const geoAnalysisColumns = `id, session_id, account_id, brand_name, search_queries,
	competitors, llm_models, optimization_suggestions, progress, status,
	result_data, sources, completed_at`

func (r *geoAnalysisRepository) Upsert(ctx context.Context, analysis *models.GeoAnalysis) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		INSERT INTO geo_analyses (
			session_id, account_id, brand_name, search_queries, competitors,
			llm_models, optimization_suggestions, progress, status,
			result_data, sources, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			CASE WHEN $9 = 'completed' THEN now() END)
		ON CONFLICT (session_id) DO UPDATE
		SET account_id = COALESCE(EXCLUDED.account_id, geo_analyses.account_id),
		    brand_name = EXCLUDED.brand_name,
		    search_queries = EXCLUDED.search_queries,
		    competitors = EXCLUDED.competitors,
		    llm_models = EXCLUDED.llm_models,
		    optimization_suggestions = EXCLUDED.optimization_suggestions,
		    progress = EXCLUDED.progress,
		    status = EXCLUDED.status,
		    result_data = EXCLUDED.result_data,
		    sources = EXCLUDED.sources,
		    completed_at = CASE
		        WHEN EXCLUDED.status = 'completed'
		        THEN COALESCE(geo_analyses.completed_at, now())
		        ELSE geo_analyses.completed_at
		    END
		RETURNING id, completed_at`

	// search_queries is a NOT NULL column; a run saved before query
	// generation has an empty list.
	queries := analysis.SearchQueries
	if queries == nil {
		queries = []string{}
	}

	err := scope.Conn.QueryRow(ctx, query,
		analysis.SessionID,
		analysis.AccountID,
		analysis.BrandName,
		queries,
		jsonbValue(analysis.Competitors),
		jsonbValue(analysis.LLMModels),
		nullString(analysis.OptimizationSuggestions),
		analysis.Progress,
		analysis.Status,
		jsonbValue(analysis.ResultData),
		jsonbValue(analysis.Sources),
	).Scan(&analysis.ID, &analysis.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to save GEO analysis: %w", err)
	}

	return nil
}

func (r *geoAnalysisRepository) Get(ctx context.Context, sessionID string) (*models.GeoAnalysis, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `SELECT ` + geoAnalysisColumns + ` FROM geo_analyses WHERE session_id = $1`

	row := scope.Conn.QueryRow(ctx, query, sessionID)
	analysis, err := scanGeoAnalysis(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Analysis not found
		}
		return nil, err
	}

	return analysis, nil
}

func (r *geoAnalysisRepository) UpdateProgress(ctx context.Context, sessionID string, update *GeoProgressUpdate) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		UPDATE geo_analyses
		SET progress = $2,
		    status = COALESCE($3, status),
		    result_data = COALESCE($4, result_data),
		    optimization_suggestions = COALESCE($5, optimization_suggestions),
		    completed_at = CASE
		        WHEN $3 = 'completed'
		        THEN COALESCE(completed_at, now())
		        ELSE completed_at
		    END
		WHERE session_id = $1`

	result, err := scope.Conn.Exec(ctx, query,
		sessionID,
		update.Progress,
		update.Status,
		jsonbValue(update.ResultData),
		update.Suggestions,
	)
	if err != nil {
		return fmt.Errorf("failed to update GEO analysis progress: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *geoAnalysisRepository) ListByStatus(ctx context.Context, status models.GeoStatus) ([]*models.GeoAnalysis, error) {
	return r.list(ctx, `SELECT `+geoAnalysisColumns+` FROM geo_analyses WHERE status = $1`, status)
}

func (r *geoAnalysisRepository) ListByProgressRange(ctx context.Context, minProgress, maxProgress int) ([]*models.GeoAnalysis, error) {
	query := `
		SELECT ` + geoAnalysisColumns + `
		FROM geo_analyses
		WHERE progress >= $1 AND progress <= $2`
	return r.list(ctx, query, minProgress, maxProgress)
}

func (r *geoAnalysisRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.GeoAnalysis, error) {
	query := `
		SELECT ` + geoAnalysisColumns + `
		FROM geo_analyses
		WHERE account_id = $1
		ORDER BY COALESCE(completed_at, to_timestamp(0)) DESC
		LIMIT $2`
	return r.list(ctx, query, accountID, limit)
}

func (r *geoAnalysisRepository) ListBySession(ctx context.Context, sessionID string) ([]*models.GeoAnalysis, error) {
	return r.list(ctx, `SELECT `+geoAnalysisColumns+` FROM geo_analyses WHERE session_id = $1`, sessionID)
}

func (r *geoAnalysisRepository) list(ctx context.Context, query string, args ...any) ([]*models.GeoAnalysis, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	rows, err := scope.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query GEO analyses: %w", err)
	}
	defer rows.Close()

	var analyses []*models.GeoAnalysis
	for rows.Next() {
		analysis, err := scanGeoAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating GEO analyses: %w", err)
	}

	return analyses, nil
}

func scanGeoAnalysis(row pgx.Row) (*models.GeoAnalysis, error) {
	var a models.GeoAnalysis
	var suggestions *string
	var searchQueries, competitors, llmModels, resultData, sources []byte

	err := row.Scan(
		&a.ID,
		&a.SessionID,
		&a.AccountID,
		&a.BrandName,
		&searchQueries,
		&competitors,
		&llmModels,
		&suggestions,
		&a.Progress,
		&a.Status,
		&resultData,
		&sources,
		&a.CompletedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan GEO analysis: %w", err)
	}

	if suggestions != nil {
		a.OptimizationSuggestions = *suggestions
	}

	if err := scanJSONB(searchQueries, &a.SearchQueries, "search_queries"); err != nil {
		return nil, err
	}
	if err := scanJSONB(competitors, &a.Competitors, "competitors"); err != nil {
		return nil, err
	}
	if err := scanJSONB(llmModels, &a.LLMModels, "llm_models"); err != nil {
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
