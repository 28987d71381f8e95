// Package email delivers generated reports to recipients through SendGrid.
package email

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/brandlens-inc/brandlens-engine/pkg/logging"
	"github.com/brandlens-inc/brandlens-engine/pkg/models"
)

// Sender delivers a report to one recipient.
type Sender interface {
	SendReport(ctx context.Context, recipient string, report *models.Report) error
}

// SendGridSender sends report emails through the SendGrid v3 API.
type SendGridSender struct {
	client      *sendgrid.Client
	fromAddress string
	fromName    string
	logger      *zap.Logger
}

var _ Sender = (*SendGridSender)(nil)

// NewSendGridSender creates a SendGrid-backed sender.
func NewSendGridSender(apiKey, fromAddress, fromName string, logger *zap.Logger) *SendGridSender {
	return &SendGridSender{
		client:      sendgrid.NewSendClient(apiKey),
		fromAddress: fromAddress,
		fromName:    fromName,
		logger:      logger,
	}
}

// SendReport emails a report snapshot to recipient. A non-2xx SendGrid
// response is an error; the caller decides whether to flag the report as
// sent.
func (s *SendGridSender) SendReport(ctx context.Context, recipient string, report *models.Report) error {
	if recipient == "" {
		return fmt.Errorf("recipient email is required")
	}

	from := mail.NewEmail(s.fromName, s.fromAddress)
	to := mail.NewEmail(recipient, recipient)
	subject := reportSubject(report)

	message := mail.NewV3Mail()
	message.SetFrom(from)
	message.Subject = subject

	p := mail.NewPersonalization()
	p.AddTos(to)
	message.AddPersonalizations(p)

	message.AddContent(mail.NewContent("text/plain", reportText(report)))
	message.AddContent(mail.NewContent("text/html", reportHTML(report)))

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("failed to send report email: sendgrid status %d", response.StatusCode)
	}

	s.logger.Info("Report email sent",
		zap.String("recipient", logging.MaskEmail(recipient)),
		zap.String("report_type", string(report.ReportType)),
		zap.Int("status", response.StatusCode))

	return nil
}

func reportSubject(report *models.Report) string {
	brand := report.BrandName
	if brand == "" {
		brand = "your brand"
	}

	switch report.ReportType {
	case models.ReportGeoAnalysis:
		return fmt.Sprintf("GEO analysis report for %s", brand)
	case models.ReportCombined:
		return fmt.Sprintf("Complete brand research report for %s", brand)
	default:
		return fmt.Sprintf("Brand analysis report for %s", brand)
	}
}

func reportText(report *models.Report) string {
	data, err := json.MarshalIndent(report.ReportData, "", "  ")
	if err != nil {
		data = []byte("report data unavailable")
	}

	return fmt.Sprintf(
		"Your report is ready.\n\nReport type: %s\nGenerated at: %s\n\n%s\n",
		report.ReportType, report.GeneratedAt.Format("2006-01-02 15:04 MST"), data)
}

func reportHTML(report *models.Report) string {
	data, err := json.MarshalIndent(report.ReportData, "", "  ")
	if err != nil {
		data = []byte("report data unavailable")
	}

	return fmt.Sprintf(
		`<html><body><h2>Your report is ready</h2><p>Report type: %s<br>Generated at: %s</p><pre>%s</pre></body></html>`,
		report.ReportType, report.GeneratedAt.Format("2006-01-02 15:04 MST"), data)
}
