package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"walletwatch/internal/captcha"
	"walletwatch/internal/models"
	pkglogger "walletwatch/pkg/logger"
)

// SubmissionRepository defines the interface for wallet-report persistence
type SubmissionRepository interface {
	Create(ctx context.Context, s *models.Submission) (*models.Submission, error)
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	CountByIPSince(ctx context.Context, submitterIP string, since time.Time) (int, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]*models.Submission, error)
	UpdateReview(ctx context.Context, id, status string, adminNotes *string) (*models.Submission, error)
	Delete(ctx context.Context, id string) error
}

// PolicyReader supplies the gatekeeper's per-request policy. Every call
// reads the stored settings fresh.
type PolicyReader interface {
	RecaptchaEnabled(ctx context.Context) bool
	RateLimitPolicy(ctx context.Context) RateLimitPolicy
	Blocklist(ctx context.Context) models.Blocklist
}

// SubmissionInput is the raw public submission before any gate has run.
type SubmissionInput struct {
	WalletAddress    string  `validate:"required,min=20,max=120"`
	CategoryID       string  `validate:"required"`
	CryptocurrencyID string  `validate:"required"`
	WebsiteURL       *string `validate:"omitempty,url,max=500"`
	ReportedOwner    *string `validate:"omitempty,max=200"`
	Reason           *string `validate:"omitempty,max=2000"`

	Honeypot     string // hidden form field, must stay empty
	CaptchaToken string
	SubmitterIP  string
	UserAgent    string
}

// Gate outcomes for an accepted-looking response. Trapped and blocklisted
// rows are persisted as rejected but the submitter sees the same success
// reply as an accepted report.
const (
	OutcomeAccepted    = "accepted"
	OutcomeTrapped     = "trapped"
	OutcomeBlocklisted = "blocklisted"
)

// GatekeeperResult carries the persisted submission and which gate decided.
type GatekeeperResult struct {
	Submission *models.Submission
	Outcome    string
}

// GatekeeperService runs every public submission through the fixed gate
// sequence: honeypot, CAPTCHA, rate limit, schema validation, blocklist.
// The first failing gate decides; later gates never run.
type GatekeeperService struct {
	repo        SubmissionRepository
	policies    PolicyReader
	verifier    captcha.Verifier
	validate    *validator.Validate
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	recorder    AuditRecorder
}

// NewGatekeeperService creates a new GatekeeperService
func NewGatekeeperService(
	repo SubmissionRepository,
	policies PolicyReader,
	verifier captcha.Verifier,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
	recorder AuditRecorder,
) *GatekeeperService {
	return &GatekeeperService{
		repo:        repo,
		policies:    policies,
		verifier:    verifier,
		validate:    validator.New(),
		logger:      logger,
		auditLogger: auditLogger,
		recorder:    recorder,
	}
}

// Evaluate runs the gate sequence and persists the submission when it
// reaches a persisting outcome. Validation errors are returned as
// validator.ValidationErrors for the handler to format.
func (s *GatekeeperService) Evaluate(ctx context.Context, input SubmissionInput) (*GatekeeperResult, error) {
	// Gate 1: honeypot. Bots that fill the hidden field are trapped
	// silently; a well-formed payload is kept as rejected evidence.
	if input.Honeypot != "" {
		return s.trapHoneypot(ctx, input), nil
	}

	// Gate 2: CAPTCHA, only when the feature flag is on. Verification
	// errors and timeouts fail closed.
	if s.policies.RecaptchaEnabled(ctx) {
		ok, err := s.verifier.Verify(ctx, input.CaptchaToken)
		if err != nil {
			if errors.Is(err, captcha.ErrVerificationTimeout) {
				s.logger.Warn("captcha verification timed out",
					slog.String("ip_address", input.SubmitterIP))
			} else {
				s.logger.Error("captcha verification error", slog.Any("error", err))
			}
			return nil, models.ErrCaptchaFailed
		}
		if !ok {
			s.logger.Info("captcha verification rejected",
				slog.String("ip_address", input.SubmitterIP))
			return nil, models.ErrCaptchaFailed
		}
	}

	// Gate 3: trailing-window rate limit over persisted rows. A failed
	// count query fails open.
	policy := s.policies.RateLimitPolicy(ctx)
	since := time.Now().Add(-policy.Window)
	count, err := s.repo.CountByIPSince(ctx, input.SubmitterIP, since)
	if err != nil {
		s.logger.Error("rate limit count failed, allowing request",
			slog.String("ip_address", input.SubmitterIP),
			slog.Any("error", err))
	} else if count >= policy.MaxSubmissions {
		s.auditLogger.LogSubmissionEvent(pkglogger.AuditEvent{
			EventType:     models.AuditEventSubmissionLimited,
			IPAddress:     input.SubmitterIP,
			UserAgent:     input.UserAgent,
			Success:       false,
			FailureReason: "rate_limit_exceeded",
		})
		s.recorder.Record(ctx, models.AuditEvent{
			EventType: models.AuditEventSubmissionLimited,
			IPAddress: &input.SubmitterIP,
			Success:   false,
		})
		return nil, &models.RateLimitError{RetryAfter: policy.Window}
	}

	// Gate 4: schema validation.
	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, verrs
		}
		return nil, models.ErrBadRequest
	}

	// Gate 5: blocklist scan over the free-text reason.
	if input.Reason != nil {
		if rule, matched := s.policies.Blocklist(ctx).MatchesReason(*input.Reason); matched {
			reason := "blocklist match: " + rule.Type + " " + rule.Value
			return s.persistRejected(ctx, input, models.AuditEventSubmissionRejected, OutcomeBlocklisted, reason)
		}
	}

	created, err := s.repo.Create(ctx, s.buildSubmission(input, models.SubmissionStatusPending, nil))
	if err != nil {
		s.logger.Error("failed to persist submission", slog.Any("error", err))
		return nil, models.ErrCouldNotSave
	}

	s.logger.Info("submission accepted",
		slog.String("submission_id", created.ID),
		slog.String("wallet", pkglogger.SanitizedWallet(created.WalletAddress)))

	return &GatekeeperResult{Submission: created, Outcome: OutcomeAccepted}, nil
}

// trapHoneypot handles a filled honeypot field. The caller-visible result is
// the same trapped success no matter what happens here: an invalid payload is
// dropped without persisting, and an insert failure is logged and swallowed.
// Nothing on this path may reveal the trap to the sender.
func (s *GatekeeperService) trapHoneypot(ctx context.Context, input SubmissionInput) *GatekeeperResult {
	reason := "honeypot field filled"

	s.auditLogger.LogSubmissionEvent(pkglogger.AuditEvent{
		EventType:     models.AuditEventSubmissionTrapped,
		IPAddress:     input.SubmitterIP,
		UserAgent:     input.UserAgent,
		Success:       false,
		FailureReason: reason,
	})
	s.recorder.Record(ctx, models.AuditEvent{
		EventType:     models.AuditEventSubmissionTrapped,
		IPAddress:     &input.SubmitterIP,
		Success:       false,
		FailureReason: &reason,
	})

	if err := s.validate.Struct(input); err != nil {
		s.logger.Info("trapped submission payload invalid, dropping",
			slog.String("ip_address", input.SubmitterIP))
		return &GatekeeperResult{Outcome: OutcomeTrapped}
	}

	created, err := s.repo.Create(ctx, s.buildSubmission(input, models.SubmissionStatusRejected, &reason))
	if err != nil {
		s.logger.Error("failed to persist trapped submission", slog.Any("error", err))
		return &GatekeeperResult{Outcome: OutcomeTrapped}
	}

	return &GatekeeperResult{Submission: created, Outcome: OutcomeTrapped}
}

func (s *GatekeeperService) persistRejected(ctx context.Context, input SubmissionInput, eventType, outcome, reason string) (*GatekeeperResult, error) {
	note := reason
	created, err := s.repo.Create(ctx, s.buildSubmission(input, models.SubmissionStatusRejected, &note))
	if err != nil {
		s.logger.Error("failed to persist rejected submission", slog.Any("error", err))
		return nil, models.ErrCouldNotSave
	}

	s.auditLogger.LogSubmissionEvent(pkglogger.AuditEvent{
		EventType:     eventType,
		IPAddress:     input.SubmitterIP,
		UserAgent:     input.UserAgent,
		Success:       false,
		FailureReason: reason,
	})
	s.recorder.Record(ctx, models.AuditEvent{
		EventType:     eventType,
		IPAddress:     &input.SubmitterIP,
		Success:       false,
		FailureReason: &reason,
	})

	return &GatekeeperResult{Submission: created, Outcome: outcome}, nil
}

func (s *GatekeeperService) buildSubmission(input SubmissionInput, status string, adminNotes *string) *models.Submission {
	return &models.Submission{
		WalletAddress:    input.WalletAddress,
		CategoryID:       input.CategoryID,
		CryptocurrencyID: input.CryptocurrencyID,
		WebsiteURL:       input.WebsiteURL,
		ReportedOwner:    input.ReportedOwner,
		Reason:           input.Reason,
		AdminNotes:       adminNotes,
		Status:           status,
		SubmitterIP:      input.SubmitterIP,
	}
}
