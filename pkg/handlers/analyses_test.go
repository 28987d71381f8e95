package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brandlens-inc/brandlens-engine/pkg/audit"
	"github.com/brandlens-inc/brandlens-engine/pkg/auth"
	"github.com/brandlens-inc/brandlens-engine/pkg/models"
)

func newAnalysesHandler(brand *mockBrandService, geo *mockGeoService) *AnalysesHandler {
	return NewAnalysesHandler(brand, geo, audit.NewSecurityAuditor(zap.NewNop()), zap.NewNop())
}

func TestAnalysesHandler_SaveBrand(t *testing.T) {
	brand := newMockBrandService()
	handler := newAnalysesHandler(brand, newMockGeoService())

	body := `{"session_id": "sess-1", "brand_name": "Acme", "brand_website": "https://acme.test"}`
	req := httptest.NewRequest(http.MethodPost, "/api/brand-analyses", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.SaveBrand(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, brand.analyses, "sess-1")
	assert.Equal(t, "Acme", brand.analyses["sess-1"].BrandName)
	assert.Nil(t, brand.analyses["sess-1"].AccountID)
}

func TestAnalysesHandler_SaveBrand_AttachesAccount(t *testing.T) {
	brand := newMockBrandService()
	handler := newAnalysesHandler(brand, newMockGeoService())
	accountID := uuid.New()

	body := `{"session_id": "sess-1", "brand_name": "Acme", "brand_website": "https://acme.test"}`
	req := httptest.NewRequest(http.MethodPost, "/api/brand-analyses", strings.NewReader(body))
	req = req.WithContext(auth.SetAccountID(req.Context(), accountID))
	rec := httptest.NewRecorder()
	handler.SaveBrand(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, brand.analyses["sess-1"].AccountID)
	assert.Equal(t, accountID, *brand.analyses["sess-1"].AccountID)
}

func TestAnalysesHandler_GetBrand_NotFound(t *testing.T) {
	handler := newAnalysesHandler(newMockBrandService(), newMockGeoService())

	req := httptest.NewRequest(http.MethodGet, "/api/brand-analyses/missing", nil)
	req.SetPathValue("sessionID", "missing")
	rec := httptest.NewRecorder()
	handler.GetBrand(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalysesHandler_UpdateBrandStatus(t *testing.T) {
	brand := newMockBrandService()
	brand.analyses["sess-1"] = &models.BrandAnalysis{SessionID: "sess-1", Status: models.AnalysisPending}
	handler := newAnalysesHandler(brand, newMockGeoService())

	body := `{"status": "completed", "result_data": {"description": "test"}}`
	req := httptest.NewRequest(http.MethodPatch, "/api/brand-analyses/sess-1/status", strings.NewReader(body))
	req.SetPathValue("sessionID", "sess-1")
	rec := httptest.NewRecorder()
	handler.UpdateBrandStatus(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.AnalysisCompleted, brand.analyses["sess-1"].Status)
	assert.Equal(t, "test", brand.analyses["sess-1"].ResultData["description"])
}

func TestAnalysesHandler_UpdateBrandStatus_NotFound(t *testing.T) {
	handler := newAnalysesHandler(newMockBrandService(), newMockGeoService())

	req := httptest.NewRequest(http.MethodPatch, "/api/brand-analyses/missing/status",
		strings.NewReader(`{"status": "completed"}`))
	req.SetPathValue("sessionID", "missing")
	rec := httptest.NewRecorder()
	handler.UpdateBrandStatus(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalysesHandler_ListBrandByStatus_RequiresStatus(t *testing.T) {
	handler := newAnalysesHandler(newMockBrandService(), newMockGeoService())

	req := httptest.NewRequest(http.MethodGet, "/api/brand-analyses", nil)
	rec := httptest.NewRecorder()
	handler.ListBrandByStatus(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysesHandler_SaveGeo(t *testing.T) {
	geo := newMockGeoService()
	handler := newAnalysesHandler(newMockBrandService(), geo)

	body := `{"session_id": "sess-1", "brand_name": "Acme", "search_queries": ["best crm"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/geo-analyses", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.SaveGeo(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, geo.analyses, "sess-1")
	assert.Equal(t, []string{"best crm"}, geo.analyses["sess-1"].SearchQueries)
}

func TestAnalysesHandler_UpdateGeoProgress(t *testing.T) {
	geo := newMockGeoService()
	geo.analyses["sess-1"] = &models.GeoAnalysis{SessionID: "sess-1", Status: models.GeoInProgress}
	handler := newAnalysesHandler(newMockBrandService(), geo)

	body := `{"progress": 85, "status": "completed", "suggestions": "do more"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/geo-analyses/sess-1/progress", strings.NewReader(body))
	req.SetPathValue("sessionID", "sess-1")
	rec := httptest.NewRecorder()
	handler.UpdateGeoProgress(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, geo.updates, 1)
	assert.Equal(t, 85, geo.updates[0].Progress)
	require.NotNil(t, geo.updates[0].Status)
	assert.Equal(t, models.GeoCompleted, *geo.updates[0].Status)
	require.NotNil(t, geo.updates[0].Suggestions)
	assert.Equal(t, "do more", *geo.updates[0].Suggestions)
}

func TestAnalysesHandler_ListGeo_InProgress(t *testing.T) {
	geo := newMockGeoService()
	geo.inProgress = []*models.GeoAnalysis{{SessionID: "sess-1", Progress: 50}}
	handler := newAnalysesHandler(newMockBrandService(), geo)

	req := httptest.NewRequest(http.MethodGet, "/api/geo-analyses?in_progress=true", nil)
	rec := httptest.NewRecorder()
	handler.ListGeo(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var analyses []*models.GeoAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analyses))
	require.Len(t, analyses, 1)
	assert.Equal(t, "sess-1", analyses[0].SessionID)
}

func TestAnalysesHandler_ListGeo_ByStatus(t *testing.T) {
	geo := newMockGeoService()
	geo.analyses["sess-1"] = &models.GeoAnalysis{SessionID: "sess-1", Status: models.GeoCompleted}
	geo.analyses["sess-2"] = &models.GeoAnalysis{SessionID: "sess-2", Status: models.GeoPending}
	handler := newAnalysesHandler(newMockBrandService(), geo)

	req := httptest.NewRequest(http.MethodGet, "/api/geo-analyses?status=completed", nil)
	rec := httptest.NewRecorder()
	handler.ListGeo(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var analyses []*models.GeoAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analyses))
	require.Len(t, analyses, 1)
	assert.Equal(t, "sess-1", analyses[0].SessionID)
}
