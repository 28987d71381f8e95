package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brandlens-inc/brandlens-engine/pkg/apperrors"
	"github.com/brandlens-inc/brandlens-engine/pkg/auth"
	"github.com/brandlens-inc/brandlens-engine/pkg/logging"
	"github.com/brandlens-inc/brandlens-engine/pkg/models"
	"github.com/brandlens-inc/brandlens-engine/pkg/repositories"
)

// AccountService defines the interface for account operations. Mutations
// require a resolved account id and fail with ErrNotAuthenticated without
// one; reads degrade to empty results for anonymous callers instead.
type AccountService interface {
	auth.AccountResolver

	Get(ctx context.Context, accountID *uuid.UUID) (*models.Account, error)
	UpdateProfile(ctx context.Context, accountID *uuid.UUID, update *repositories.AccountProfileUpdate) error
	// IncrementAnalysisCount bumps the usage counter and returns the new
	// value.
	IncrementAnalysisCount(ctx context.Context, accountID *uuid.UUID) (int, error)
	// CombinedHistory merges the account's brand and GEO analyses into one
	// newest-first list. GEO entries sort by completion time; unfinished
	// ones sort last.
	CombinedHistory(ctx context.Context, accountID *uuid.UUID, limit int) ([]*models.HistoryEntry, error)
}

type accountService struct {
	accountRepo repositories.AccountRepository
	brandRepo   repositories.BrandAnalysisRepository
	geoRepo     repositories.GeoAnalysisRepository
	logger      *zap.Logger
}

// NewAccountService creates a new account service with dependencies.
func NewAccountService(
	accountRepo repositories.AccountRepository,
	brandRepo repositories.BrandAnalysisRepository,
	geoRepo repositories.GeoAnalysisRepository,
	logger *zap.Logger,
) AccountService {
	return &accountService{
		accountRepo: accountRepo,
		brandRepo:   brandRepo,
		geoRepo:     geoRepo,
		logger:      logger,
	}
}

// ResolveAccount upserts the account for the authenticated caller and
// returns its id. First sign-in creates the account; later sign-ins refresh
// name, image, and last-active time.
func (s *accountService) ResolveAccount(ctx context.Context, claims *auth.Claims) (uuid.UUID, error) {
	if claims == nil || claims.Email == "" {
		return uuid.Nil, apperrors.ErrNotAuthenticated
	}

	account := &models.Account{
		Email: claims.Email,
		Name:  claims.Name,
		Image: claims.Picture,
	}
	if err := s.accountRepo.UpsertByEmail(ctx, account); err != nil {
		s.logger.Error("Failed to upsert account",
			zap.String("email", logging.MaskEmail(claims.Email)),
			zap.Error(err))
		return uuid.Nil, fmt.Errorf("failed to upsert account: %w", err)
	}

	return account.ID, nil
}

func (s *accountService) Get(ctx context.Context, accountID *uuid.UUID) (*models.Account, error) {
	if accountID == nil {
		return nil, apperrors.ErrNotAuthenticated
	}
	return s.accountRepo.GetByID(ctx, *accountID)
}

func (s *accountService) UpdateProfile(ctx context.Context, accountID *uuid.UUID, update *repositories.AccountProfileUpdate) error {
	if accountID == nil {
		return apperrors.ErrNotAuthenticated
	}
	if update.PlanTier != nil && !models.IsValidPlanTier(string(*update.PlanTier)) {
		return fmt.Errorf("invalid plan tier: %s", *update.PlanTier)
	}

	if err := s.accountRepo.UpdateProfile(ctx, *accountID, update); err != nil {
		return fmt.Errorf("failed to update account profile: %w", err)
	}
	return nil
}

func (s *accountService) IncrementAnalysisCount(ctx context.Context, accountID *uuid.UUID) (int, error) {
	if accountID == nil {
		return 0, apperrors.ErrNotAuthenticated
	}

	count, err := s.accountRepo.IncrementAnalysisCount(ctx, *accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to increment analysis count: %w", err)
	}
	return count, nil
}

func (s *accountService) CombinedHistory(ctx context.Context, accountID *uuid.UUID, limit int) ([]*models.HistoryEntry, error) {
	if accountID == nil {
		return []*models.HistoryEntry{}, nil
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	brands, err := s.brandRepo.ListByAccount(ctx, *accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list brand analyses: %w", err)
	}
	geos, err := s.geoRepo.ListByAccount(ctx, *accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list geo analyses: %w", err)
	}

	entries := make([]*models.HistoryEntry, 0, len(brands)+len(geos))
	for _, b := range brands {
		entries = append(entries, &models.HistoryEntry{
			Kind:      models.HistoryBrand,
			Timestamp: b.AnalyzedAt,
			Brand:     b,
		})
	}
	for _, g := range geos {
		var ts time.Time
		if g.CompletedAt != nil {
			ts = *g.CompletedAt
		}
		entries = append(entries, &models.HistoryEntry{
			Kind:      models.HistoryGeo,
			Timestamp: ts,
			Geo:       g,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
