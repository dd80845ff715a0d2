// Package security provides security audit logging for SIEM consumption.
// It logs security-relevant events in structured JSON format for easy parsing
// and integration with security information and event management systems.
package security

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// EventType categorizes security-relevant events for filtering and alerting.
type EventType string

const (
	// EventAuthFailure is logged when a request carries a missing or invalid token.
	EventAuthFailure EventType = "auth_failure"
	// EventTenantMismatch is logged when a token's organization does not match
	// the organization in the URL. The request itself is answered with 404;
	// the probe is only visible here.
	EventTenantMismatch EventType = "tenant_mismatch"
	// EventRateLimited is logged when a caller exceeds the request budget.
	EventRateLimited EventType = "rate_limited"
)

// Event represents an auditable security event with all relevant context
// for SIEM ingestion and analysis.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	EventType EventType `json:"event_type"`
	UserID    string    `json:"user_id,omitempty"`
	OrgID     string    `json:"org_id,omitempty"`
	Path      string    `json:"path,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	Details   any       `json:"details,omitempty"`
	Severity  string    `json:"severity"` // info, warning, critical
}

// Auditor logs security events for SIEM consumption.
// Events are logged in structured JSON format with appropriate severity levels.
type Auditor struct {
	logger *zap.Logger
}

// NewAuditor creates a security auditor with a dedicated logger namespace.
// The logger is automatically configured with "security_audit" namespace for
// easy filtering in SIEM systems.
func NewAuditor(logger *zap.Logger) *Auditor {
	return &Auditor{logger: logger.Named("security_audit")}
}

// LogAuthFailure records a request that failed authentication.
// Logged at WARN level; isolated failures are usually expired tokens, but
// volume spikes indicate credential probing.
func (a *Auditor) LogAuthFailure(path, clientIP, reason string) {
	event := Event{
		Timestamp: time.Now().UTC(),
		EventType: EventAuthFailure,
		Path:      path,
		ClientIP:  clientIP,
		Details:   map[string]string{"reason": reason},
		Severity:  "warning",
	}
	a.log(event, "Authentication failed")
}

// LogTenantMismatch records a cross-tenant access attempt. The caller was
// answered with 404, so this log line is the only place the attempt surfaces.
// Logged at WARN level with the token tenant and the targeted tenant.
func (a *Auditor) LogTenantMismatch(userID, tokenOrgID, urlOrgID, path, clientIP string) {
	event := Event{
		Timestamp: time.Now().UTC(),
		EventType: EventTenantMismatch,
		UserID:    userID,
		OrgID:     tokenOrgID,
		Path:      path,
		ClientIP:  clientIP,
		Details:   map[string]string{"url_org_id": urlOrgID},
		Severity:  "warning",
	}
	a.log(event, "Cross-tenant access attempt")
}

// LogRateLimited records a caller exceeding the request budget.
func (a *Auditor) LogRateLimited(callerKey, path string) {
	event := Event{
		Timestamp: time.Now().UTC(),
		EventType: EventRateLimited,
		Path:      path,
		Details:   map[string]string{"caller": callerKey},
		Severity:  "info",
	}
	a.log(event, "Request rate limited")
}

func (a *Auditor) log(event Event, msg string) {
	// Serialize event to JSON for SIEM ingestion
	// Ignoring error as marshaling known types should never fail
	eventJSON, _ := json.Marshal(event)

	fields := []zap.Field{
		zap.String("event_json", string(eventJSON)),
		zap.String("event_type", string(event.EventType)),
		zap.String("severity", event.Severity),
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.Path != "" {
		fields = append(fields, zap.String("path", event.Path))
	}
	if event.ClientIP != "" {
		fields = append(fields, zap.String("client_ip", event.ClientIP))
	}

	switch event.Severity {
	case "critical":
		a.logger.Error(msg, fields...)
	case "warning":
		a.logger.Warn(msg, fields...)
	default:
		a.logger.Info(msg, fields...)
	}
}
