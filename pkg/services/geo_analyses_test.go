package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brandlens-inc/brandlens-engine/pkg/models"
	"github.com/brandlens-inc/brandlens-engine/pkg/repositories"
)

func TestGeoAnalysisService_SaveDefaultsToPending(t *testing.T) {
	geoRepo := newMockGeoRepo()
	svc := NewGeoAnalysisService(geoRepo, zap.NewNop())

	analysis := &models.GeoAnalysis{SessionID: "sess_a", BrandName: "Acme"}
	require.NoError(t, svc.Save(context.Background(), analysis))

	assert.Equal(t, models.GeoPending, analysis.Status)
}

func TestGeoAnalysisService_SaveValidation(t *testing.T) {
	svc := NewGeoAnalysisService(newMockGeoRepo(), zap.NewNop())
	ctx := context.Background()

	err := svc.Save(ctx, &models.GeoAnalysis{BrandName: "Acme"})
	require.Error(t, err)

	err = svc.Save(ctx, &models.GeoAnalysis{SessionID: "sess_a"})
	require.Error(t, err)

	err = svc.Save(ctx, &models.GeoAnalysis{SessionID: "sess_a", BrandName: "Acme", Progress: 120})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "progress")

	err = svc.Save(ctx, &models.GeoAnalysis{SessionID: "sess_a", BrandName: "Acme", Status: "bogus"})
	require.Error(t, err)
}

func TestGeoAnalysisService_UpdateProgress(t *testing.T) {
	geoRepo := newMockGeoRepo()
	svc := NewGeoAnalysisService(geoRepo, zap.NewNop())
	ctx := context.Background()

	completed := models.GeoCompleted
	update := &repositories.GeoProgressUpdate{
		Progress: 100,
		Status:   &completed,
	}
	require.NoError(t, svc.UpdateProgress(ctx, "sess_a", update))
	assert.Same(t, update, geoRepo.lastUpdate)

	err := svc.UpdateProgress(ctx, "sess_a", &repositories.GeoProgressUpdate{Progress: -1})
	require.Error(t, err)

	bogus := models.GeoStatus("bogus")
	err = svc.UpdateProgress(ctx, "sess_a", &repositories.GeoProgressUpdate{Progress: 10, Status: &bogus})
	require.Error(t, err)
}

func TestGeoAnalysisService_ListInProgress(t *testing.T) {
	geoRepo := newMockGeoRepo()
	svc := NewGeoAnalysisService(geoRepo, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, geoRepo.Upsert(ctx, &models.GeoAnalysis{SessionID: "s0", Progress: 0}))
	require.NoError(t, geoRepo.Upsert(ctx, &models.GeoAnalysis{SessionID: "s1", Progress: 40}))
	require.NoError(t, geoRepo.Upsert(ctx, &models.GeoAnalysis{SessionID: "s2", Progress: 100}))

	active, err := svc.ListInProgress(ctx)

	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "s1", active[0].SessionID)
}

func TestGeoAnalysisService_ListByAccount_DefaultLimit(t *testing.T) {
	geoRepo := newMockGeoRepo()
	svc := NewGeoAnalysisService(geoRepo, zap.NewNop())
	accountID := uuid.New()

	_, err := svc.ListByAccount(context.Background(), &accountID, 0)

	require.NoError(t, err)
	assert.Equal(t, 10, geoRepo.gotLimit)
}

func TestGeoAnalysisService_ListByAccount_Anonymous(t *testing.T) {
	svc := NewGeoAnalysisService(newMockGeoRepo(), zap.NewNop())

	analyses, err := svc.ListByAccount(context.Background(), nil, 10)

	require.NoError(t, err)
	assert.Empty(t, analyses)
}
