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

	"github.com/brandlens-inc/brandlens-engine/pkg/auth"
	"github.com/brandlens-inc/brandlens-engine/pkg/models"
)

func newAccountsHandler(acct *mockAccountService, brand *mockBrandService, geo *mockGeoService, reports *mockReportService) *AccountsHandler {
	return NewAccountsHandler(acct, brand, geo, reports, zap.NewNop())
}

func withAccount(req *http.Request, accountID uuid.UUID) *http.Request {
	return req.WithContext(auth.SetAccountID(req.Context(), accountID))
}

func TestAccountsHandler_Me(t *testing.T) {
	account := &models.Account{ID: uuid.New(), Email: "user@example.com", PlanTier: models.PlanFree}
	acct := &mockAccountService{account: account}
	handler := newAccountsHandler(acct, newMockBrandService(), newMockGeoService(), newMockReportService())

	req := withAccount(httptest.NewRequest(http.MethodGet, "/api/me", nil), account.ID)
	rec := httptest.NewRecorder()
	handler.Me(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got models.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "user@example.com", got.Email)
}

func TestAccountsHandler_Me_Anonymous(t *testing.T) {
	handler := newAccountsHandler(&mockAccountService{}, newMockBrandService(), newMockGeoService(), newMockReportService())

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()
	handler.Me(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAccountsHandler_UpdateProfile(t *testing.T) {
	acct := &mockAccountService{account: &models.Account{ID: uuid.New()}}
	handler := newAccountsHandler(acct, newMockBrandService(), newMockGeoService(), newMockReportService())

	body := `{"name": "New Name", "plan_tier": "pro"}`
	req := withAccount(httptest.NewRequest(http.MethodPatch, "/api/me/profile", strings.NewReader(body)), acct.account.ID)
	rec := httptest.NewRecorder()
	handler.UpdateProfile(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, acct.profileUpd)
	require.NotNil(t, acct.profileUpd.Name)
	assert.Equal(t, "New Name", *acct.profileUpd.Name)
	assert.Nil(t, acct.profileUpd.Image)
	require.NotNil(t, acct.profileUpd.PlanTier)
	assert.Equal(t, models.PlanPro, *acct.profileUpd.PlanTier)
}

func TestAccountsHandler_IncrementAnalysisCount(t *testing.T) {
	acct := &mockAccountService{account: &models.Account{ID: uuid.New()}, count: 2}
	handler := newAccountsHandler(acct, newMockBrandService(), newMockGeoService(), newMockReportService())

	req := withAccount(httptest.NewRequest(http.MethodPost, "/api/me/analysis-count", nil), acct.account.ID)
	rec := httptest.NewRecorder()
	handler.IncrementAnalysisCount(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp["analysis_count"])
}

func TestAccountsHandler_History_AnonymousGetsEmptyList(t *testing.T) {
	acct := &mockAccountService{history: []*models.HistoryEntry{{Kind: models.HistoryBrand}}}
	handler := newAccountsHandler(acct, newMockBrandService(), newMockGeoService(), newMockReportService())

	req := httptest.NewRequest(http.MethodGet, "/api/me/history", nil)
	rec := httptest.NewRecorder()
	handler.History(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestAccountsHandler_History_Limit(t *testing.T) {
	acct := &mockAccountService{
		account: &models.Account{ID: uuid.New()},
		history: []*models.HistoryEntry{
			{Kind: models.HistoryBrand},
			{Kind: models.HistoryGeo},
			{Kind: models.HistoryBrand},
		},
	}
	handler := newAccountsHandler(acct, newMockBrandService(), newMockGeoService(), newMockReportService())

	req := withAccount(httptest.NewRequest(http.MethodGet, "/api/me/history?limit=2", nil), acct.account.ID)
	rec := httptest.NewRecorder()
	handler.History(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var entries []*models.HistoryEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, 2)
}

func TestAccountsHandler_BrandAnalyses(t *testing.T) {
	brand := newMockBrandService()
	brand.byAcct = []*models.BrandAnalysis{{SessionID: "sess-1", BrandName: "Acme"}}
	handler := newAccountsHandler(&mockAccountService{}, brand, newMockGeoService(), newMockReportService())

	req := withAccount(httptest.NewRequest(http.MethodGet, "/api/me/brand-analyses", nil), uuid.New())
	rec := httptest.NewRecorder()
	handler.BrandAnalyses(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var analyses []*models.BrandAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analyses))
	require.Len(t, analyses, 1)
	assert.Equal(t, "Acme", analyses[0].BrandName)
}
