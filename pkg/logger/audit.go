package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditEvent represents a security audit event
type AuditEvent struct {
	EventType     string
	AdminID       string
	IPAddress     string
	UserAgent     string
	Success       bool
	FailureReason string
}

// AuditLogger emits structured security audit records through slog
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// LogAuthAttempt logs login-guard outcomes (failures, lockouts, successes)
func (al *AuditLogger) LogAuthAttempt(event AuditEvent) {
	al.log("auth", event)
}

// LogSubmissionEvent logs gatekeeper decisions worth a security trail
// (honeypot traps, blocklist rejections, rate-limit refusals)
func (al *AuditLogger) LogSubmissionEvent(event AuditEvent) {
	al.log("submission", event)
}

// LogTwoFactorChange logs 2FA enrollment state transitions
func (al *AuditLogger) LogTwoFactorChange(event AuditEvent) {
	al.log("two_factor", event)
}

func (al *AuditLogger) log(auditType string, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", auditType),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.AdminID != "" {
		attrs = append(attrs, slog.String("admin_id", event.AdminID))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.UserAgent != "" {
		attrs = append(attrs, slog.String("user_agent", event.UserAgent))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(context.Background(), level, "audit", attrs...)
}
