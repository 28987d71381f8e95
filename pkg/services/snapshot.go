package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/brandlens-inc/brandlens-engine/pkg/apperrors"
	"github.com/brandlens-inc/brandlens-engine/pkg/models"
	"github.com/brandlens-inc/brandlens-engine/pkg/repositories"
)

// SnapshotService assembles everything recorded for one session id.
type SnapshotService interface {
	// SessionSnapshot fetches the session row plus all its analyses and
	// reports. The four lookups run without cross-record locking; the
	// snapshot is eventually consistent, not transactional.
	SessionSnapshot(ctx context.Context, sessionID string) (*models.SessionSnapshot, error)
}

type snapshotService struct {
	sessionRepo repositories.SessionRepository
	brandRepo   repositories.BrandAnalysisRepository
	geoRepo     repositories.GeoAnalysisRepository
	reportRepo  repositories.ReportRepository
	logger      *zap.Logger
}

// NewSnapshotService creates a new snapshot service with dependencies.
func NewSnapshotService(
	sessionRepo repositories.SessionRepository,
	brandRepo repositories.BrandAnalysisRepository,
	geoRepo repositories.GeoAnalysisRepository,
	reportRepo repositories.ReportRepository,
	logger *zap.Logger,
) SnapshotService {
	return &snapshotService{
		sessionRepo: sessionRepo,
		brandRepo:   brandRepo,
		geoRepo:     geoRepo,
		reportRepo:  reportRepo,
		logger:      logger,
	}
}

func (s *snapshotService) SessionSnapshot(ctx context.Context, sessionID string) (*models.SessionSnapshot, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}

	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to get session: %w", err)
		}
		// Analyses key on the raw session id, so records can outlive
		// the session row. The snapshot carries on without it.
		session = nil
	}

	brands, err := s.brandRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list brand analyses: %w", err)
	}
	geos, err := s.geoRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list geo analyses: %w", err)
	}
	reports, err := s.reportRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	total := len(brands) + len(geos) + len(reports)

	return &models.SessionSnapshot{
		Session:       session,
		BrandAnalyses: brands,
		GeoAnalyses:   geos,
		Reports:       reports,
		TotalRecords:  total,
		HasData:       total > 0,
	}, nil
}
