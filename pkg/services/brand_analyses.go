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

// BrandAnalysisService defines the interface for brand analysis records.
type BrandAnalysisService interface {
	// Save upserts the analysis for its session id. The account id, when
	// present, is attached; an existing link is never cleared by an
	// anonymous save.
	Save(ctx context.Context, analysis *models.BrandAnalysis) error
	Get(ctx context.Context, sessionID string) (*models.BrandAnalysis, error)
	// UpdateStatus patches status and optionally result data on an
	// existing record. It fails with ErrNotFound rather than creating one.
	UpdateStatus(ctx context.Context, sessionID string, status models.AnalysisStatus, resultData map[string]any) error
	ListByStatus(ctx context.Context, status models.AnalysisStatus) ([]*models.BrandAnalysis, error)
	// ListByAccount returns an empty list for a nil account id.
	ListByAccount(ctx context.Context, accountID *uuid.UUID, limit int) ([]*models.BrandAnalysis, error)
}

type brandAnalysisService struct {
	brandRepo repositories.BrandAnalysisRepository
	logger    *zap.Logger
}

// NewBrandAnalysisService creates a new brand analysis service.
func NewBrandAnalysisService(brandRepo repositories.BrandAnalysisRepository, logger *zap.Logger) BrandAnalysisService {
	return &brandAnalysisService{
		brandRepo: brandRepo,
		logger:    logger,
	}
}

func (s *brandAnalysisService) Save(ctx context.Context, analysis *models.BrandAnalysis) error {
	if analysis.SessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if analysis.BrandName == "" {
		return fmt.Errorf("brand name is required")
	}
	if analysis.Status == "" {
		analysis.Status = models.AnalysisPending
	}
	if !models.IsValidAnalysisStatus(string(analysis.Status)) {
		return fmt.Errorf("invalid analysis status: %s", analysis.Status)
	}

	if err := s.brandRepo.Upsert(ctx, analysis); err != nil {
		s.logger.Error("Failed to save brand analysis",
			zap.String("session_id", logging.MaskSessionID(analysis.SessionID)),
			zap.Error(err))
		return fmt.Errorf("failed to save brand analysis: %w", err)
	}
	return nil
}

func (s *brandAnalysisService) Get(ctx context.Context, sessionID string) (*models.BrandAnalysis, error) {
	return s.brandRepo.Get(ctx, sessionID)
}

func (s *brandAnalysisService) UpdateStatus(ctx context.Context, sessionID string, status models.AnalysisStatus, resultData map[string]any) error {
	if !models.IsValidAnalysisStatus(string(status)) {
		return fmt.Errorf("invalid analysis status: %s", status)
	}

	if err := s.brandRepo.UpdateStatus(ctx, sessionID, status, resultData); err != nil {
		return fmt.Errorf("failed to update brand analysis status: %w", err)
	}
	return nil
}

func (s *brandAnalysisService) ListByStatus(ctx context.Context, status models.AnalysisStatus) ([]*models.BrandAnalysis, error) {
	if !models.IsValidAnalysisStatus(string(status)) {
		return nil, fmt.Errorf("invalid analysis status: %s", status)
	}
	return s.brandRepo.ListByStatus(ctx, status)
}

func (s *brandAnalysisService) ListByAccount(ctx context.Context, accountID *uuid.UUID, limit int) ([]*models.BrandAnalysis, error) {
	if accountID == nil {
		return []*models.BrandAnalysis{}, nil
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.brandRepo.ListByAccount(ctx, *accountID, limit)
}
