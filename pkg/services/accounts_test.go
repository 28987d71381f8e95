package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brandlens-inc/brandlens-engine/pkg/apperrors"
	"github.com/brandlens-inc/brandlens-engine/pkg/auth"
	"github.com/brandlens-inc/brandlens-engine/pkg/models"
)

func newAccountServiceForTest() (AccountService, *mockAccountRepo, *mockBrandRepo, *mockGeoRepo) {
	accountRepo := newMockAccountRepo()
	brandRepo := newMockBrandRepo()
	geoRepo := newMockGeoRepo()
	svc := NewAccountService(accountRepo, brandRepo, geoRepo, zap.NewNop())
	return svc, accountRepo, brandRepo, geoRepo
}

func TestAccountService_ResolveAccount(t *testing.T) {
	svc, accountRepo, _, _ := newAccountServiceForTest()

	claims := &auth.Claims{Email: "user@example.com", Name: "User"}

	first, err := svc.ResolveAccount(context.Background(), claims)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, first)

	// Same email resolves to the same account.
	second, err := svc.ResolveAccount(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, accountRepo.accounts, 1)
}

func TestAccountService_ResolveAccount_NoEmail(t *testing.T) {
	svc, _, _, _ := newAccountServiceForTest()

	_, err := svc.ResolveAccount(context.Background(), &auth.Claims{})
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)

	_, err = svc.ResolveAccount(context.Background(), nil)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
}

func TestAccountService_MutationsRequireAccount(t *testing.T) {
	svc, _, _, _ := newAccountServiceForTest()
	ctx := context.Background()

	_, err := svc.Get(ctx, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)

	err = svc.UpdateProfile(ctx, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)

	_, err = svc.IncrementAnalysisCount(ctx, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
}

func TestAccountService_CombinedHistory_AnonymousIsEmpty(t *testing.T) {
	svc, _, _, _ := newAccountServiceForTest()

	entries, err := svc.CombinedHistory(context.Background(), nil, 10)

	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAccountService_CombinedHistory_MergesNewestFirst(t *testing.T) {
	svc, _, brandRepo, geoRepo := newAccountServiceForTest()
	accountID := uuid.New()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	later := base.Add(2 * time.Hour)
	latest := base.Add(4 * time.Hour)

	brandRepo.byAccount = []*models.BrandAnalysis{
		{SessionID: "s1", BrandName: "Acme", AnalyzedAt: later},
	}
	geoRepo.byAccount = []*models.GeoAnalysis{
		{SessionID: "s1", BrandName: "Acme", CompletedAt: &latest},
		{SessionID: "s2", BrandName: "Acme"}, // never completed
	}

	entries, err := svc.CombinedHistory(context.Background(), &accountID, 10)

	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, models.HistoryGeo, entries[0].Kind)
	assert.Equal(t, latest, entries[0].Timestamp)
	assert.Equal(t, models.HistoryBrand, entries[1].Kind)
	// The unfinished GEO analysis sorts last with a zero timestamp.
	assert.Equal(t, models.HistoryGeo, entries[2].Kind)
	assert.True(t, entries[2].Timestamp.IsZero())
}

func TestAccountService_CombinedHistory_Limit(t *testing.T) {
	svc, _, brandRepo, geoRepo := newAccountServiceForTest()
	accountID := uuid.New()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		brandRepo.byAccount = append(brandRepo.byAccount, &models.BrandAnalysis{
			SessionID:  "s",
			AnalyzedAt: ts,
		})
		geoRepo.byAccount = append(geoRepo.byAccount, &models.GeoAnalysis{
			SessionID:   "s",
			CompletedAt: &ts,
		})
	}

	entries, err := svc.CombinedHistory(context.Background(), &accountID, 4)

	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestAccountService_IncrementAnalysisCount(t *testing.T) {
	svc, _, _, _ := newAccountServiceForTest()
	accountID := uuid.New()

	count, err := svc.IncrementAnalysisCount(context.Background(), &accountID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = svc.IncrementAnalysisCount(context.Background(), &accountID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
