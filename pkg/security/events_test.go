package security

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// setupTestLogger creates a test logger with an observer to capture log entries.
func setupTestLogger(t *testing.T) (*zap.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, recorded := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	return logger, recorded
}

func TestNewAuditor(t *testing.T) {
	logger, _ := setupTestLogger(t)
	auditor := NewAuditor(logger)

	assert.NotNil(t, auditor)
	assert.NotNil(t, auditor.logger)
}

func TestLogAuthFailure(t *testing.T) {
	logger, recorded := setupTestLogger(t)
	auditor := NewAuditor(logger)

	auditor.LogAuthFailure("/api/orgs/abc/documents", "192.168.1.100", "missing authorization")

	entries := recorded.All()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "Authentication failed", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, string(EventAuthFailure), fields["event_type"])
	assert.Equal(t, "warning", fields["severity"])
	assert.Equal(t, "192.168.1.100", fields["client_ip"])

	var event Event
	require.NoError(t, json.Unmarshal([]byte(fields["event_json"].(string)), &event))
	assert.Equal(t, EventAuthFailure, event.EventType)
	assert.False(t, event.Timestamp.IsZero())
}

func TestLogTenantMismatch(t *testing.T) {
	logger, recorded := setupTestLogger(t)
	auditor := NewAuditor(logger)

	auditor.LogTenantMismatch("user-123", "org-a", "org-b", "/api/orgs/org-b/documents", "10.0.0.5")

	entries := recorded.All()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "Cross-tenant access attempt", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, "user-123", fields["user_id"])

	var event Event
	require.NoError(t, json.Unmarshal([]byte(fields["event_json"].(string)), &event))
	assert.Equal(t, "org-a", event.OrgID)

	details, ok := event.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "org-b", details["url_org_id"])
}

func TestLogRateLimited(t *testing.T) {
	logger, recorded := setupTestLogger(t)
	auditor := NewAuditor(logger)

	auditor.LogRateLimited("ip:10.0.0.5", "/api/orgs/abc/documents")

	entries := recorded.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "Request rate limited", entries[0].Message)
}
