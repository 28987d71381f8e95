package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brandlens-inc/brandlens-engine/pkg/logging"
	"github.com/brandlens-inc/brandlens-engine/pkg/models"
	"github.com/brandlens-inc/brandlens-engine/pkg/repositories"
)

// defaultListLimit caps account-scoped list results when the caller does
// not specify one.
const defaultListLimit = 10

// GeoAnalysisService defines the interface for GEO analysis records.
type GeoAnalysisService interface {
	// Save upserts the analysis for its session id, preserving any
	// existing completion time and account link.
	Save(ctx context.Context, analysis *models.GeoAnalysis) error
	Get(ctx context.Context, sessionID string) (*models.GeoAnalysis, error)
	// UpdateProgress patches progress, and optionally status, result data,
	// and suggestions, on an existing record. The completion timestamp is
	// stamped on the first transition to completed and never touched again.
	UpdateProgress(ctx context.Context, sessionID string, update *repositories.GeoProgressUpdate) error
	ListByStatus(ctx context.Context, status models.GeoStatus) ([]*models.GeoAnalysis, error)
	ListInProgress(ctx context.Context) ([]*models.GeoAnalysis, error)
	// ListByAccount returns an empty list for a nil account id. Results
	// order newest-completed first; never-completed analyses sort last.
	ListByAccount(ctx context.Context, accountID *uuid.UUID, limit int) ([]*models.GeoAnalysis, error)
}

type geoAnalysisService struct {
	geoRepo repositories.GeoAnalysisRepository
	logger  *zap.Logger
}

// NewGeoAnalysisService creates a new GEO analysis service.
func NewGeoAnalysisService(geoRepo repositories.GeoAnalysisRepository, logger *zap.Logger) GeoAnalysisService {
	return &geoAnalysisService{
		geoRepo: geoRepo,
		logger:  logger,
	}
}

func (s *geoAnalysisService) Save(ctx context.Context, analysis *models.GeoAnalysis) error {
	if analysis.SessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if analysis.BrandName == "" {
		return fmt.Errorf("brand name is required")
	}
	if analysis.Status == "" {
		analysis.Status = models.GeoPending
	}
	if !models.IsValidGeoStatus(string(analysis.Status)) {
		return fmt.Errorf("invalid geo analysis status: %s", analysis.Status)
	}
	if analysis.Progress < 0 || analysis.Progress > 100 {
		return fmt.Errorf("progress must be between 0 and 100, got %d", analysis.Progress)
	}

	if err := s.geoRepo.Upsert(ctx, analysis); err != nil {
		s.logger.Error("Failed to save geo analysis",
			zap.String("session_id", logging.MaskSessionID(analysis.SessionID)),
			zap.Error(err))
		return fmt.Errorf("failed to save geo analysis: %w", err)
	}
	return nil
}

func (s *geoAnalysisService) Get(ctx context.Context, sessionID string) (*models.GeoAnalysis, error) {
	return s.geoRepo.Get(ctx, sessionID)
}

func (s *geoAnalysisService) UpdateProgress(ctx context.Context, sessionID string, update *repositories.GeoProgressUpdate) error {
	if update.Progress < 0 || update.Progress > 100 {
		return fmt.Errorf("progress must be between 0 and 100, got %d", update.Progress)
	}
	if update.Status != nil && !models.IsValidGeoStatus(string(*update.Status)) {
		return fmt.Errorf("invalid geo analysis status: %s", *update.Status)
	}

	if err := s.geoRepo.UpdateProgress(ctx, sessionID, update); err != nil {
		return fmt.Errorf("failed to update geo analysis progress: %w", err)
	}
	return nil
}

func (s *geoAnalysisService) ListByStatus(ctx context.Context, status models.GeoStatus) ([]*models.GeoAnalysis, error) {
	if !models.IsValidGeoStatus(string(status)) {
		return nil, fmt.Errorf("invalid geo analysis status: %s", status)
	}
	return s.geoRepo.ListByStatus(ctx, status)
}

// ListInProgress returns analyses that have started but not finished,
// whatever their status, using the progress range index.
func (s *geoAnalysisService) ListInProgress(ctx context.Context) ([]*models.GeoAnalysis, error) {
	return s.geoRepo.ListByProgressRange(ctx, 1, 99)
}

func (s *geoAnalysisService) ListByAccount(ctx context.Context, accountID *uuid.UUID, limit int) ([]*models.GeoAnalysis, error) {
	if accountID == nil {
		return []*models.GeoAnalysis{}, nil
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.geoRepo.ListByAccount(ctx, *accountID, limit)
}
