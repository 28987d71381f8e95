package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/brandlens-inc/brandlens-engine/pkg/apperrors"
	"github.com/brandlens-inc/brandlens-engine/pkg/models"
	"github.com/brandlens-inc/brandlens-engine/pkg/repositories"
)

type mockSessionRepo struct {
	sessions map[string]*models.Session

	upsertErr error
	touchErr  error
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*models.Session)}
}

func (m *mockSessionRepo) Upsert(ctx context.Context, session *models.Session) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	existing, ok := m.sessions[session.SessionID]
	if ok {
		existing.Email = session.Email
		return nil
	}
	stored := *session
	stored.ID = uuid.New()
	m.sessions[session.SessionID] = &stored
	return nil
}

func (m *mockSessionRepo) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	return m.sessions[sessionID], nil
}

func (m *mockSessionRepo) Touch(ctx context.Context, sessionID string) error {
	return m.touchErr
}

func (m *mockSessionRepo) LinkAccount(ctx context.Context, sessionID, email string, accountID uuid.UUID) error {
	session, ok := m.sessions[sessionID]
	if !ok {
		session = &models.Session{ID: uuid.New(), SessionID: sessionID}
		m.sessions[sessionID] = session
	}
	session.Email = email
	session.AccountID = &accountID
	return nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, sessionID string) error {
	delete(m.sessions, sessionID)
	return nil
}

type mockBrandRepo struct {
	bySession map[string]*models.BrandAnalysis
	byAccount []*models.BrandAnalysis

	upsertErr error
	listErr   error
	gotLimit  int
}

func newMockBrandRepo() *mockBrandRepo {
	return &mockBrandRepo{bySession: make(map[string]*models.BrandAnalysis)}
}

func (m *mockBrandRepo) Upsert(ctx context.Context, analysis *models.BrandAnalysis) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.bySession[analysis.SessionID] = analysis
	return nil
}

func (m *mockBrandRepo) Get(ctx context.Context, sessionID string) (*models.BrandAnalysis, error) {
	return m.bySession[sessionID], nil
}

func (m *mockBrandRepo) UpdateStatus(ctx context.Context, sessionID string, status models.AnalysisStatus, resultData map[string]any) error {
	analysis, ok := m.bySession[sessionID]
	if !ok {
		return apperrors.ErrNotFound
	}
	analysis.Status = status
	if resultData != nil {
		analysis.ResultData = resultData
	}
	return nil
}

func (m *mockBrandRepo) ListByStatus(ctx context.Context, status models.AnalysisStatus) ([]*models.BrandAnalysis, error) {
	var out []*models.BrandAnalysis
	for _, a := range m.bySession {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockBrandRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.BrandAnalysis, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.gotLimit = limit
	return m.byAccount, nil
}

func (m *mockBrandRepo) ListBySession(ctx context.Context, sessionID string) ([]*models.BrandAnalysis, error) {
	if a, ok := m.bySession[sessionID]; ok {
		return []*models.BrandAnalysis{a}, nil
	}
	return nil, nil
}

type mockGeoRepo struct {
	bySession map[string]*models.GeoAnalysis
	byAccount []*models.GeoAnalysis

	lastUpdate *repositories.GeoProgressUpdate
	updateErr  error
	gotLimit   int
}

func newMockGeoRepo() *mockGeoRepo {
	return &mockGeoRepo{bySession: make(map[string]*models.GeoAnalysis)}
}

func (m *mockGeoRepo) Upsert(ctx context.Context, analysis *models.GeoAnalysis) error {
	m.bySession[analysis.SessionID] = analysis
	return nil
}

func (m *mockGeoRepo) Get(ctx context.Context, sessionID string) (*models.GeoAnalysis, error) {
	return m.bySession[sessionID], nil
}

func (m *mockGeoRepo) UpdateProgress(ctx context.Context, sessionID string, update *repositories.GeoProgressUpdate) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.lastUpdate = update
	return nil
}

func (m *mockGeoRepo) ListByStatus(ctx context.Context, status models.GeoStatus) ([]*models.GeoAnalysis, error) {
	return nil, nil
}

func (m *mockGeoRepo) ListByProgressRange(ctx context.Context, minProgress, maxProgress int) ([]*models.GeoAnalysis, error) {
	var out []*models.GeoAnalysis
	for _, a := range m.bySession {
		if a.Progress >= minProgress && a.Progress <= maxProgress {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockGeoRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.GeoAnalysis, error) {
	m.gotLimit = limit
	return m.byAccount, nil
}

func (m *mockGeoRepo) ListBySession(ctx context.Context, sessionID string) ([]*models.GeoAnalysis, error) {
	if a, ok := m.bySession[sessionID]; ok {
		return []*models.GeoAnalysis{a}, nil
	}
	return nil, nil
}

type mockReportRepo struct {
	reports []*models.Report

	insertErr    error
	emailUpdated bool
	gotDays      int
}

func newMockReportRepo() *mockReportRepo {
	return &mockReportRepo{}
}

func (m *mockReportRepo) Insert(ctx context.Context, report *models.Report) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	report.ID = uuid.New()
	m.reports = append(m.reports, report)
	return nil
}

func (m *mockReportRepo) Get(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	for _, r := range m.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (m *mockReportRepo) ListBySession(ctx context.Context, sessionID string) ([]*models.Report, error) {
	var out []*models.Report
	for _, r := range m.reports {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockReportRepo) ListByEmail(ctx context.Context, email string) ([]*models.Report, error) {
	return nil, nil
}

func (m *mockReportRepo) ListByType(ctx context.Context, reportType models.ReportType) ([]*models.Report, error) {
	return nil, nil
}

func (m *mockReportRepo) ListRecent(ctx context.Context, days int) ([]*models.Report, error) {
	m.gotDays = days
	return m.reports, nil
}

func (m *mockReportRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.Report, error) {
	return m.reports, nil
}

func (m *mockReportRepo) UpdateEmailSent(ctx context.Context, id uuid.UUID, recipientEmail string) error {
	m.emailUpdated = true
	for _, r := range m.reports {
		if r.ID == id {
			r.EmailSent = true
			r.RecipientEmail = recipientEmail
		}
	}
	return nil
}

type mockAccountRepo struct {
	accounts map[string]*models.Account

	upsertErr error
	count     int
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{accounts: make(map[string]*models.Account)}
}

func (m *mockAccountRepo) UpsertByEmail(ctx context.Context, account *models.Account) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	existing, ok := m.accounts[account.Email]
	if ok {
		account.ID = existing.ID
		existing.Name = account.Name
		existing.Image = account.Image
		return nil
	}
	account.ID = uuid.New()
	stored := *account
	m.accounts[account.Email] = &stored
	return nil
}

func (m *mockAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	for _, a := range m.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (m *mockAccountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return m.accounts[email], nil
}

func (m *mockAccountRepo) UpdateProfile(ctx context.Context, id uuid.UUID, update *repositories.AccountProfileUpdate) error {
	return nil
}

func (m *mockAccountRepo) IncrementAnalysisCount(ctx context.Context, id uuid.UUID) (int, error) {
	m.count++
	return m.count, nil
}

func (m *mockAccountRepo) Touch(ctx context.Context, id uuid.UUID) error {
	return nil
}
