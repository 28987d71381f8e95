package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportType discriminates the kinds of generated reports.
type ReportType string

const (
	ReportBrandAnalysis ReportType = "brand_analysis"
	ReportGeoAnalysis   ReportType = "geo_analysis"
	ReportCombined      ReportType = "combined"
)

// IsValidReportType reports whether s is a known report type.
func IsValidReportType(s string) bool {
	switch ReportType(s) {
	case ReportBrandAnalysis, ReportGeoAnalysis, ReportCombined:
		return true
	}
	return false
}

// Report is a generated report snapshot. Reports are append-only history:
// every save creates a new record, many per session are allowed.
type Report struct {
	ID             uuid.UUID      `json:"id"`
	SessionID      string         `json:"session_id"`
	AccountID      *uuid.UUID     `json:"account_id,omitempty"`
	ReportType     ReportType     `json:"report_type"`
	ReportData     map[string]any `json:"report_data"`
	EmailSent      bool           `json:"email_sent"`
	RecipientEmail string         `json:"recipient_email"`
	BrandName      string         `json:"brand_name,omitempty"`
	GeneratedAt    time.Time      `json:"generated_at"`
}
