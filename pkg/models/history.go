package models

import "time"

// HistoryKind tags entries of the combined analysis history.
type HistoryKind string

const (
	HistoryBrand HistoryKind = "brand"
	HistoryGeo   HistoryKind = "geo"
)

// HistoryEntry is one item of an account's combined analysis history.
// Exactly one of Brand or Geo is set, matching Kind. Timestamp is the brand
// analysis timestamp for brand entries; for geo entries it is the completion
// time, or the zero time when the analysis never completed, so unfinished
// GEO analyses sort as if from the epoch.
type HistoryEntry struct {
	Kind      HistoryKind    `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Brand     *BrandAnalysis `json:"brand,omitempty"`
	Geo       *GeoAnalysis   `json:"geo,omitempty"`
}

// SessionSnapshot aggregates everything recorded for one session id. The
// collections are fetched without cross-record locking and individually
// reflect the store at slightly different points in time.
type SessionSnapshot struct {
	Session       *Session         `json:"session,omitempty"`
	BrandAnalyses []*BrandAnalysis `json:"brand_analyses"`
	GeoAnalyses   []*GeoAnalysis   `json:"geo_analyses"`
	Reports       []*Report        `json:"reports"`
	TotalRecords  int              `json:"total_records"`
	HasData       bool             `json:"has_data"`
}
