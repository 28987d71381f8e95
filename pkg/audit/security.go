// Package audit provides security audit logging for SIEM consumption.
// It logs security-relevant events in structured JSON format for easy parsing
// and integration with security information and event management systems.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/brandlens-inc/brandlens-engine/pkg/auth"
	"github.com/brandlens-inc/brandlens-engine/pkg/logging"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventSQLInjectionAttempt is logged when libinjection detects SQL injection patterns.
	EventSQLInjectionAttempt SecurityEventType = "sql_injection_attempt"
	// EventAuthFailure is logged when a bearer token fails validation.
	EventAuthFailure SecurityEventType = "auth_failure"
)

// SecurityEvent represents an auditable security event with all relevant context
// for SIEM ingestion and analysis.
type SecurityEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	SessionID string            `json:"session_id,omitempty"`
	UserEmail string            `json:"user_email,omitempty"`
	ClientIP  string            `json:"client_ip,omitempty"`
	Details   any               `json:"details"`
	Severity  string            `json:"severity"` // info, warning, critical
}

// InjectionDetails contains specifics of a detected SQL injection attempt.
type InjectionDetails struct {
	FieldName   string `json:"field_name"`
	FieldValue  string `json:"field_value"`
	Fingerprint string `json:"fingerprint"` // libinjection fingerprint for pattern analysis
	Operation   string `json:"operation"`
}

// SecurityAuditor logs security events for SIEM consumption.
// Events are logged in structured JSON format with appropriate severity levels.
type SecurityAuditor struct {
	logger *zap.Logger
}

// NewSecurityAuditor creates a new security auditor with a dedicated logger
// namespace for easy filtering in SIEM systems.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{logger: logger.Named("security_audit")}
}

// LogInjectionAttempt records a detected SQL injection attempt with full context.
// Logged at ERROR level with "critical" severity for immediate alerting.
// Detection does not block the request; parameterized queries make the value
// inert, so this is an audit trail of hostile input.
func (a *SecurityAuditor) LogInjectionAttempt(
	ctx context.Context,
	sessionID string,
	details InjectionDetails,
	clientIP string,
) {
	userEmail := auth.GetEmailFromContext(ctx)

	event := SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventSQLInjectionAttempt,
		SessionID: sessionID,
		UserEmail: userEmail,
		ClientIP:  clientIP,
		Details:   details,
		Severity:  "critical",
	}

	// Ignoring error as marshaling known types should never fail
	eventJSON, _ := json.Marshal(event)

	a.logger.Error("SQL injection attempt detected",
		zap.String("event_json", string(eventJSON)),
		zap.String("session_id", logging.MaskSessionID(sessionID)),
		zap.String("field_name", details.FieldName),
		zap.String("fingerprint", details.Fingerprint),
		zap.String("client_ip", clientIP),
		zap.String("user_email", logging.MaskEmail(userEmail)),
		zap.String("severity", "critical"),
	)
}

// LogAuthFailure records a bearer token that failed validation.
// Logged at WARN level as most failures are expired tokens, not attacks.
func (a *SecurityAuditor) LogAuthFailure(
	ctx context.Context,
	reason string,
	clientIP string,
) {
	event := SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventAuthFailure,
		ClientIP:  clientIP,
		Details: map[string]string{
			"reason": reason,
		},
		Severity: "warning",
	}

	eventJSON, _ := json.Marshal(event)

	a.logger.Warn("Authentication failed",
		zap.String("event_json", string(eventJSON)),
		zap.String("reason", reason),
		zap.String("client_ip", clientIP),
		zap.String("severity", "warning"),
	)
}
