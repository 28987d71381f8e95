// Package models defines the persisted entities of brandlens-engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// PlanTier is the subscription level of an account.
type PlanTier string

const (
	PlanFree       PlanTier = "free"
	PlanPro        PlanTier = "pro"
	PlanEnterprise PlanTier = "enterprise"
)

// IsValidPlanTier reports whether s is a known plan tier.
func IsValidPlanTier(s string) bool {
	switch PlanTier(s) {
	case PlanFree, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// Account is an authenticated visitor. Accounts are created on first
// successful sign-in and refreshed (name, image, last_active) on every
// subsequent sign-in. Email uniquely identifies an account.
type Account struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name,omitempty"`
	Image         string    `json:"image,omitempty"`
	PlanTier      PlanTier  `json:"plan_tier"`
	AnalysisCount int       `json:"analysis_count"`
	CreatedAt     time.Time `json:"created_at"`
	LastActiveAt  time.Time `json:"last_active_at"`
}
