package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisStatus is the lifecycle state of a brand analysis.
type AnalysisStatus string

const (
	AnalysisPending   AnalysisStatus = "pending"
	AnalysisCompleted AnalysisStatus = "completed"
	AnalysisFailed    AnalysisStatus = "failed"
)

// IsValidAnalysisStatus reports whether s is a known brand analysis status.
func IsValidAnalysisStatus(s string) bool {
	switch AnalysisStatus(s) {
	case AnalysisPending, AnalysisCompleted, AnalysisFailed:
		return true
	}
	return false
}

// BrandAnalysis is the result of analyzing a brand's web presence.
// At most one active record exists per session id: a second save for the
// same session overwrites the prior record in place.
type BrandAnalysis struct {
	ID               uuid.UUID      `json:"id"`
	SessionID        string         `json:"session_id"`
	AccountID        *uuid.UUID     `json:"account_id,omitempty"`
	BrandName        string         `json:"brand_name"`
	BrandWebsite     string         `json:"brand_website,omitempty"`
	BrandCountry     string         `json:"brand_country,omitempty"`
	BrandDescription string         `json:"brand_description,omitempty"`
	BrandIndustry    string         `json:"brand_industry,omitempty"`
	Competitors      []string       `json:"competitors,omitempty"`
	Status           AnalysisStatus `json:"status"`
	ResultData       map[string]any `json:"result_data,omitempty"`
	Sources          []any          `json:"sources,omitempty"`
	AnalyzedAt       time.Time      `json:"analyzed_at"`
}
