package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brandlens-inc/brandlens-engine/pkg/apperrors"
	"github.com/brandlens-inc/brandlens-engine/pkg/email"
	"github.com/brandlens-inc/brandlens-engine/pkg/logging"
	"github.com/brandlens-inc/brandlens-engine/pkg/models"
	"github.com/brandlens-inc/brandlens-engine/pkg/repositories"
)

// ReportService defines the interface for generated reports. Saves are
// strictly additive: every Save creates a new record.
type ReportService interface {
	Save(ctx context.Context, report *models.Report) (*models.Report, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Report, error)
	ListBySession(ctx context.Context, sessionID string) ([]*models.Report, error)
	ListByEmail(ctx context.Context, recipientEmail string) ([]*models.Report, error)
	ListByType(ctx context.Context, reportType models.ReportType) ([]*models.Report, error)
	ListRecent(ctx context.Context, days int) ([]*models.Report, error)
	// ListByAccount returns an empty list for a nil account id.
	ListByAccount(ctx context.Context, accountID *uuid.UUID, limit int) ([]*models.Report, error)
	// Deliver emails the report to recipient and flags it as sent. The
	// sent flag is written only after delivery succeeds.
	Deliver(ctx context.Context, id uuid.UUID, recipient string) error
}

type reportService struct {
	reportRepo repositories.ReportRepository
	sender     email.Sender
	logger     *zap.Logger
}

// NewReportService creates a new report service. sender may be nil when
// email delivery is not configured; Deliver then fails cleanly.
func NewReportService(reportRepo repositories.ReportRepository, sender email.Sender, logger *zap.Logger) ReportService {
	return &reportService{
		reportRepo: reportRepo,
		sender:     sender,
		logger:     logger,
	}
}

func (s *reportService) Save(ctx context.Context, report *models.Report) (*models.Report, error) {
	if report.SessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if !models.IsValidReportType(string(report.ReportType)) {
		return nil, fmt.Errorf("invalid report type: %s", report.ReportType)
	}

	if err := s.reportRepo.Insert(ctx, report); err != nil {
		s.logger.Error("Failed to save report",
			zap.String("session_id", logging.MaskSessionID(report.SessionID)),
			zap.String("report_type", string(report.ReportType)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to save report: %w", err)
	}
	return report, nil
}

func (s *reportService) Get(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	return s.reportRepo.Get(ctx, id)
}

func (s *reportService) ListBySession(ctx context.Context, sessionID string) ([]*models.Report, error) {
	return s.reportRepo.ListBySession(ctx, sessionID)
}

func (s *reportService) ListByEmail(ctx context.Context, recipientEmail string) ([]*models.Report, error) {
	return s.reportRepo.ListByEmail(ctx, recipientEmail)
}

func (s *reportService) ListByType(ctx context.Context, reportType models.ReportType) ([]*models.Report, error) {
	if !models.IsValidReportType(string(reportType)) {
		return nil, fmt.Errorf("invalid report type: %s", reportType)
	}
	return s.reportRepo.ListByType(ctx, reportType)
}

func (s *reportService) ListRecent(ctx context.Context, days int) ([]*models.Report, error) {
	if days <= 0 {
		days = 30
	}
	return s.reportRepo.ListRecent(ctx, days)
}

func (s *reportService) ListByAccount(ctx context.Context, accountID *uuid.UUID, limit int) ([]*models.Report, error) {
	if accountID == nil {
		return []*models.Report{}, nil
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.reportRepo.ListByAccount(ctx, *accountID, limit)
}

func (s *reportService) Deliver(ctx context.Context, id uuid.UUID, recipient string) error {
	if s.sender == nil {
		return fmt.Errorf("email delivery is not configured")
	}
	if recipient == "" {
		return fmt.Errorf("recipient email is required")
	}

	report, err := s.reportRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if report == nil {
		return fmt.Errorf("failed to deliver report %s: %w", id, apperrors.ErrNotFound)
	}

	if err := s.sender.SendReport(ctx, recipient, report); err != nil {
		s.logger.Error("Failed to deliver report",
			zap.String("report_id", id.String()),
			zap.String("recipient", logging.MaskEmail(recipient)),
			zap.Error(err))
		return fmt.Errorf("failed to deliver report: %w", err)
	}

	if err := s.reportRepo.UpdateEmailSent(ctx, id, recipient); err != nil {
		return fmt.Errorf("failed to flag report as sent: %w", err)
	}
	return nil
}
