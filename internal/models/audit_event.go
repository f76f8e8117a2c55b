package models

import "time"

// Event types recorded in the security audit trail.
const (
	AuditEventLogin              = "login"
	AuditEventLockout            = "lockout"
	AuditEventTwoFactorGenerate  = "2fa_generate"
	AuditEventTwoFactorEnable    = "2fa_enable"
	AuditEventTwoFactorDisable   = "2fa_disable"
	AuditEventSubmissionTrapped  = "submission_trapped"   // honeypot
	AuditEventSubmissionRejected = "submission_rejected"  // blocklist
	AuditEventSubmissionLimited  = "submission_ratelimit" // window exceeded
	AuditEventAPIKeyOp           = "api_key_operation"
)

// AuditEvent is a persisted security event. Rows carry an expiry and are
// pruned by the background cleanup manager.
type AuditEvent struct {
	ID            string    `json:"id"`
	EventType     string    `json:"event_type"`
	ActorID       *string   `json:"actor_id,omitempty"`
	IPAddress     *string   `json:"ip_address,omitempty"`
	Success       bool      `json:"success"`
	FailureReason *string   `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"-"`
}
