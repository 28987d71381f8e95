package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/brandlens-inc/brandlens-engine/pkg/apperrors"
	"github.com/brandlens-inc/brandlens-engine/pkg/auth"
	"github.com/brandlens-inc/brandlens-engine/pkg/models"
	"github.com/brandlens-inc/brandlens-engine/pkg/repositories"
)

// mockSessionService is a mock for services.SessionService.
type mockSessionService struct {
	sessions map[string]*models.Session
	saveErr  error
	linked   map[string]uuid.UUID
}

func newMockSessionService() *mockSessionService {
	return &mockSessionService{
		sessions: make(map[string]*models.Session),
		linked:   make(map[string]uuid.UUID),
	}
}

func (m *mockSessionService) Save(ctx context.Context, sessionID, email string) (*models.Session, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	s := &models.Session{ID: uuid.New(), SessionID: sessionID, Email: email}
	m.sessions[sessionID] = s
	return s, nil
}

func (m *mockSessionService) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return s, nil
}

func (m *mockSessionService) Touch(ctx context.Context, sessionID string) error {
	if _, ok := m.sessions[sessionID]; !ok {
		return apperrors.ErrNotFound
	}
	return nil
}

func (m *mockSessionService) LinkAccount(ctx context.Context, sessionID, email string, accountID uuid.UUID) error {
	m.linked[sessionID] = accountID
	return nil
}

func (m *mockSessionService) Delete(ctx context.Context, sessionID string) error {
	delete(m.sessions, sessionID)
	return nil
}

// mockBrandService is a mock for services.BrandAnalysisService.
type mockBrandService struct {
	analyses map[string]*models.BrandAnalysis
	byAcct   []*models.BrandAnalysis
	saveErr  error
}

func newMockBrandService() *mockBrandService {
	return &mockBrandService{analyses: make(map[string]*models.BrandAnalysis)}
}

func (m *mockBrandService) Save(ctx context.Context, analysis *models.BrandAnalysis) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.analyses[analysis.SessionID] = analysis
	return nil
}

func (m *mockBrandService) Get(ctx context.Context, sessionID string) (*models.BrandAnalysis, error) {
	a, ok := m.analyses[sessionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return a, nil
}

func (m *mockBrandService) UpdateStatus(ctx context.Context, sessionID string, status models.AnalysisStatus, resultData map[string]any) error {
	a, ok := m.analyses[sessionID]
	if !ok {
		return apperrors.ErrNotFound
	}
	a.Status = status
	if resultData != nil {
		a.ResultData = resultData
	}
	return nil
}

func (m *mockBrandService) ListByStatus(ctx context.Context, status models.AnalysisStatus) ([]*models.BrandAnalysis, error) {
	var out []*models.BrandAnalysis
	for _, a := range m.analyses {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockBrandService) ListByAccount(ctx context.Context, accountID *uuid.UUID, limit int) ([]*models.BrandAnalysis, error) {
	if accountID == nil {
		return []*models.BrandAnalysis{}, nil
	}
	return m.byAcct, nil
}

// mockGeoService is a mock for services.GeoAnalysisService.
type mockGeoService struct {
	analyses   map[string]*models.GeoAnalysis
	byAcct     []*models.GeoAnalysis
	inProgress []*models.GeoAnalysis
	updates    []*repositories.GeoProgressUpdate
	saveErr    error
	updateErr  error
}

func newMockGeoService() *mockGeoService {
	return &mockGeoService{analyses: make(map[string]*models.GeoAnalysis)}
}

func (m *mockGeoService) Save(ctx context.Context, analysis *models.GeoAnalysis) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.analyses[analysis.SessionID] = analysis
	return nil
}

func (m *mockGeoService) Get(ctx context.Context, sessionID string) (*models.GeoAnalysis, error) {
	a, ok := m.analyses[sessionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return a, nil
}

func (m *mockGeoService) UpdateProgress(ctx context.Context, sessionID string, update *repositories.GeoProgressUpdate) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.analyses[sessionID]; !ok {
		return apperrors.ErrNotFound
	}
	m.updates = append(m.updates, update)
	return nil
}

func (m *mockGeoService) ListByStatus(ctx context.Context, status models.GeoStatus) ([]*models.GeoAnalysis, error) {
	var out []*models.GeoAnalysis
	for _, a := range m.analyses {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockGeoService) ListInProgress(ctx context.Context) ([]*models.GeoAnalysis, error) {
	return m.inProgress, nil
}

func (m *mockGeoService) ListByAccount(ctx context.Context, accountID *uuid.UUID, limit int) ([]*models.GeoAnalysis, error) {
	if accountID == nil {
		return []*models.GeoAnalysis{}, nil
	}
	return m.byAcct, nil
}

// mockReportService is a mock for services.ReportService.
type mockReportService struct {
	reports    map[uuid.UUID]*models.Report
	delivered  []string
	saveErr    error
	deliverErr error
	gotDays    int
}

func newMockReportService() *mockReportService {
	return &mockReportService{reports: make(map[uuid.UUID]*models.Report)}
}

func (m *mockReportService) Save(ctx context.Context, report *models.Report) (*models.Report, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	m.reports[report.ID] = report
	return report, nil
}

func (m *mockReportService) Get(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return r, nil
}

func (m *mockReportService) ListBySession(ctx context.Context, sessionID string) ([]*models.Report, error) {
	var out []*models.Report
	for _, r := range m.reports {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockReportService) ListByEmail(ctx context.Context, recipientEmail string) ([]*models.Report, error) {
	var out []*models.Report
	for _, r := range m.reports {
		if r.RecipientEmail == recipientEmail {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockReportService) ListByType(ctx context.Context, reportType models.ReportType) ([]*models.Report, error) {
	var out []*models.Report
	for _, r := range m.reports {
		if r.ReportType == reportType {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockReportService) ListRecent(ctx context.Context, days int) ([]*models.Report, error) {
	m.gotDays = days
	out := make([]*models.Report, 0, len(m.reports))
	for _, r := range m.reports {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockReportService) ListByAccount(ctx context.Context, accountID *uuid.UUID, limit int) ([]*models.Report, error) {
	if accountID == nil {
		return []*models.Report{}, nil
	}
	out := make([]*models.Report, 0, len(m.reports))
	for _, r := range m.reports {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockReportService) Deliver(ctx context.Context, id uuid.UUID, recipient string) error {
	if m.deliverErr != nil {
		return m.deliverErr
	}
	if _, ok := m.reports[id]; !ok {
		return apperrors.ErrNotFound
	}
	m.delivered = append(m.delivered, recipient)
	return nil
}

// mockAccountService is a mock for services.AccountService.
type mockAccountService struct {
	account    *models.Account
	history    []*models.HistoryEntry
	count      int
	getErr     error
	updateErr  error
	profileUpd *repositories.AccountProfileUpdate
}

func (m *mockAccountService) ResolveAccount(ctx context.Context, claims *auth.Claims) (uuid.UUID, error) {
	if claims == nil || claims.Email == "" {
		return uuid.Nil, apperrors.ErrNotAuthenticated
	}
	if m.account == nil {
		return uuid.Nil, apperrors.ErrNotFound
	}
	return m.account.ID, nil
}

func (m *mockAccountService) Get(ctx context.Context, accountID *uuid.UUID) (*models.Account, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if accountID == nil || m.account == nil {
		return nil, apperrors.ErrNotAuthenticated
	}
	return m.account, nil
}

func (m *mockAccountService) UpdateProfile(ctx context.Context, accountID *uuid.UUID, update *repositories.AccountProfileUpdate) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if accountID == nil {
		return apperrors.ErrNotAuthenticated
	}
	m.profileUpd = update
	return nil
}

func (m *mockAccountService) IncrementAnalysisCount(ctx context.Context, accountID *uuid.UUID) (int, error) {
	if accountID == nil {
		return 0, apperrors.ErrNotAuthenticated
	}
	m.count++
	return m.count, nil
}

func (m *mockAccountService) CombinedHistory(ctx context.Context, accountID *uuid.UUID, limit int) ([]*models.HistoryEntry, error) {
	if accountID == nil {
		return []*models.HistoryEntry{}, nil
	}
	if limit > 0 && len(m.history) > limit {
		return m.history[:limit], nil
	}
	return m.history, nil
}

// mockSnapshotService is a mock for services.SnapshotService.
type mockSnapshotService struct {
	snapshot *models.SessionSnapshot
	err      error
}

func (m *mockSnapshotService) SessionSnapshot(ctx context.Context, sessionID string) (*models.SessionSnapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshot, nil
}
