package models

import (
	"time"

	"github.com/google/uuid"
)

// GeoStatus is the lifecycle state of a GEO (generative engine optimization)
// analysis. Unlike brand analyses, GEO analyses report intermediate progress.
type GeoStatus string

const (
	GeoPending    GeoStatus = "pending"
	GeoInProgress GeoStatus = "in_progress"
	GeoCompleted  GeoStatus = "completed"
	GeoFailed     GeoStatus = "failed"
)

// IsValidGeoStatus reports whether s is a known GEO analysis status.
func IsValidGeoStatus(s string) bool {
	switch GeoStatus(s) {
	case GeoPending, GeoInProgress, GeoCompleted, GeoFailed:
		return true
	}
	return false
}

// GeoAnalysis measures how a brand positions in LLM answers across a set of
// search queries and models. One active record per session id, upsert
// semantics as BrandAnalysis. CompletedAt is stamped exactly once, when the
// status first transitions to completed, and is never cleared.
type GeoAnalysis struct {
	ID                      uuid.UUID      `json:"id"`
	SessionID               string         `json:"session_id"`
	AccountID               *uuid.UUID     `json:"account_id,omitempty"`
	BrandName               string         `json:"brand_name"`
	SearchQueries           []string       `json:"search_queries"`
	Competitors             []string       `json:"competitors,omitempty"`
	LLMModels               []string       `json:"llm_models,omitempty"`
	OptimizationSuggestions string         `json:"optimization_suggestions,omitempty"`
	Progress                int            `json:"progress"` // 0-100
	Status                  GeoStatus      `json:"status"`
	ResultData              map[string]any `json:"result_data,omitempty"`
	Sources                 []any          `json:"sources,omitempty"`
	CompletedAt             *time.Time     `json:"completed_at,omitempty"`
}
