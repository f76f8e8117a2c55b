package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletwatch/internal/captcha"
	"walletwatch/internal/models"
)

func newGatekeeper(repo *MockSubmissionRepository, policies *MockPolicyReader, verifier *MockCaptchaVerifier) (*GatekeeperService, *MockAuditRecorder) {
	recorder := &MockAuditRecorder{}
	svc := NewGatekeeperService(repo, policies, verifier, newTestLogger(), newTestAuditLogger(), recorder)
	return svc, recorder
}

func TestGatekeeperHoneypotTrapsSilently(t *testing.T) {
	repo := &MockSubmissionRepository{}
	verifier := &MockCaptchaVerifier{}
	policies := &MockPolicyReader{
		RecaptchaEnabledFunc: func(ctx context.Context) bool { return true },
	}
	svc, recorder := newGatekeeper(repo, policies, verifier)

	input := NewTestSubmissionInput()
	input.Honeypot = "filled by a bot"

	result, err := svc.Evaluate(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, OutcomeTrapped, result.Outcome)
	assert.Equal(t, models.SubmissionStatusRejected, result.Submission.Status)

	// The trap decides before any other gate runs.
	assert.Equal(t, 0, verifier.Calls)

	require.Len(t, repo.Created, 1)
	assert.Equal(t, models.SubmissionStatusRejected, repo.Created[0].Status)

	require.Len(t, recorder.Events, 1)
	assert.Equal(t, models.AuditEventSubmissionTrapped, recorder.Events[0].EventType)
}

func TestGatekeeperHoneypotInvalidPayloadNotPersisted(t *testing.T) {
	repo := &MockSubmissionRepository{}
	svc, recorder := newGatekeeper(repo, &MockPolicyReader{}, &MockCaptchaVerifier{})

	// Bot filled the trap and sent garbage fields. The reply still looks
	// like success but nothing is stored.
	input := NewTestSubmissionInput()
	input.Honeypot = "filled by a bot"
	input.WalletAddress = ""

	result, err := svc.Evaluate(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, OutcomeTrapped, result.Outcome)
	assert.Nil(t, result.Submission)
	assert.Empty(t, repo.Created)

	require.Len(t, recorder.Events, 1)
	assert.Equal(t, models.AuditEventSubmissionTrapped, recorder.Events[0].EventType)
}

func TestGatekeeperHoneypotPersistFailureStaysSilent(t *testing.T) {
	repo := &MockSubmissionRepository{
		CreateFunc: func(ctx context.Context, s *models.Submission) (*models.Submission, error) {
			return nil, errors.New("insert failed")
		},
	}
	svc, _ := newGatekeeper(repo, &MockPolicyReader{}, &MockCaptchaVerifier{})

	input := NewTestSubmissionInput()
	input.Honeypot = "filled by a bot"

	// A database hiccup must not unmask the trap.
	result, err := svc.Evaluate(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, OutcomeTrapped, result.Outcome)
	assert.Nil(t, result.Submission)
}

func TestGatekeeperCaptchaFailsClosed(t *testing.T) {
	tests := []struct {
		name       string
		verifyFunc func(ctx context.Context, token string) (bool, error)
	}{
		{
			name: "verification rejected",
			verifyFunc: func(ctx context.Context, token string) (bool, error) {
				return false, nil
			},
		},
		{
			name: "verification error",
			verifyFunc: func(ctx context.Context, token string) (bool, error) {
				return false, errors.New("siteverify unreachable")
			},
		},
		{
			name: "verification timeout",
			verifyFunc: func(ctx context.Context, token string) (bool, error) {
				return false, captcha.ErrVerificationTimeout
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockSubmissionRepository{}
			policies := &MockPolicyReader{
				RecaptchaEnabledFunc: func(ctx context.Context) bool { return true },
			}
			verifier := &MockCaptchaVerifier{VerifyFunc: tt.verifyFunc}
			svc, _ := newGatekeeper(repo, policies, verifier)

			_, err := svc.Evaluate(context.Background(), NewTestSubmissionInput())

			assert.ErrorIs(t, err, models.ErrCaptchaFailed)
			assert.Empty(t, repo.Created)
		})
	}
}

func TestGatekeeperCaptchaSkippedWhenDisabled(t *testing.T) {
	repo := &MockSubmissionRepository{}
	verifier := &MockCaptchaVerifier{
		VerifyFunc: func(ctx context.Context, token string) (bool, error) {
			return false, errors.New("should not be called")
		},
	}
	policies := &MockPolicyReader{
		RecaptchaEnabledFunc: func(ctx context.Context) bool { return false },
	}
	svc, _ := newGatekeeper(repo, policies, verifier)

	result, err := svc.Evaluate(context.Background(), NewTestSubmissionInput())

	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, result.Outcome)
	assert.Equal(t, 0, verifier.Calls)
}

func TestGatekeeperRateLimitExceeded(t *testing.T) {
	var gotSince time.Time
	repo := &MockSubmissionRepository{
		CountByIPSinceFunc: func(ctx context.Context, ip string, since time.Time) (int, error) {
			gotSince = since
			return 5, nil
		},
	}
	policies := &MockPolicyReader{
		RateLimitPolicyFunc: func(ctx context.Context) RateLimitPolicy {
			return RateLimitPolicy{Window: 15 * time.Minute, MaxSubmissions: 5}
		},
	}
	svc, recorder := newGatekeeper(repo, policies, &MockCaptchaVerifier{})

	_, err := svc.Evaluate(context.Background(), NewTestSubmissionInput())

	assert.ErrorIs(t, err, models.ErrRateLimitExceeded)
	assert.Empty(t, repo.Created)
	assert.WithinDuration(t, time.Now().Add(-15*time.Minute), gotSince, 2*time.Second)

	require.Len(t, recorder.Events, 1)
	assert.Equal(t, models.AuditEventSubmissionLimited, recorder.Events[0].EventType)
}

func TestGatekeeperRateLimitCarriesRetryWindow(t *testing.T) {
	repo := &MockSubmissionRepository{
		CountByIPSinceFunc: func(ctx context.Context, ip string, since time.Time) (int, error) {
			return 5, nil
		},
	}
	policies := &MockPolicyReader{
		RateLimitPolicyFunc: func(ctx context.Context) RateLimitPolicy {
			return RateLimitPolicy{Window: 45 * time.Minute, MaxSubmissions: 5}
		},
	}
	svc, _ := newGatekeeper(repo, policies, &MockCaptchaVerifier{})

	_, err := svc.Evaluate(context.Background(), NewTestSubmissionInput())

	var limitErr *models.RateLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 45*time.Minute, limitErr.RetryAfter)
	assert.Equal(t, 45, limitErr.RetryAfterMinutes())
}

func TestGatekeeperRateLimitFailsOpen(t *testing.T) {
	repo := &MockSubmissionRepository{
		CountByIPSinceFunc: func(ctx context.Context, ip string, since time.Time) (int, error) {
			return 0, errors.New("database unavailable")
		},
	}
	svc, _ := newGatekeeper(repo, &MockPolicyReader{}, &MockCaptchaVerifier{})

	result, err := svc.Evaluate(context.Background(), NewTestSubmissionInput())

	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, result.Outcome)
}

func TestGatekeeperPolicyChangeAppliesImmediately(t *testing.T) {
	maxSubmissions := 5
	repo := &MockSubmissionRepository{
		CountByIPSinceFunc: func(ctx context.Context, ip string, since time.Time) (int, error) {
			return 3, nil
		},
	}
	policies := &MockPolicyReader{
		RateLimitPolicyFunc: func(ctx context.Context) RateLimitPolicy {
			return RateLimitPolicy{Window: 15 * time.Minute, MaxSubmissions: maxSubmissions}
		},
	}
	svc, _ := newGatekeeper(repo, policies, &MockCaptchaVerifier{})

	result, err := svc.Evaluate(context.Background(), NewTestSubmissionInput())
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, result.Outcome)

	// Tighten the policy; the very next request is refused.
	maxSubmissions = 3

	_, err = svc.Evaluate(context.Background(), NewTestSubmissionInput())
	assert.ErrorIs(t, err, models.ErrRateLimitExceeded)
}

func TestGatekeeperValidationRunsAfterRateLimit(t *testing.T) {
	repo := &MockSubmissionRepository{
		CountByIPSinceFunc: func(ctx context.Context, ip string, since time.Time) (int, error) {
			return 10, nil
		},
	}
	svc, _ := newGatekeeper(repo, &MockPolicyReader{}, &MockCaptchaVerifier{})

	// Invalid payload, but the rate limit gate decides first.
	input := NewTestSubmissionInput()
	input.WalletAddress = ""

	_, err := svc.Evaluate(context.Background(), input)
	assert.ErrorIs(t, err, models.ErrRateLimitExceeded)
}

func TestGatekeeperValidationRejectsBadInput(t *testing.T) {
	svc, _ := newGatekeeper(&MockSubmissionRepository{}, &MockPolicyReader{}, &MockCaptchaVerifier{})

	input := NewTestSubmissionInput()
	input.WalletAddress = "short"

	_, err := svc.Evaluate(context.Background(), input)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
}

func TestGatekeeperBlocklistSoftRejects(t *testing.T) {
	repo := &MockSubmissionRepository{}
	policies := &MockPolicyReader{
		BlocklistFunc: func(ctx context.Context) models.Blocklist {
			return models.Blocklist{
				{Type: models.BlocklistTypeKeyword, Value: "FAKE EXCHANGE"},
			}
		},
	}
	svc, recorder := newGatekeeper(repo, policies, &MockCaptchaVerifier{})

	// Reason contains "fake exchange"; matching is case-insensitive.
	result, err := svc.Evaluate(context.Background(), NewTestSubmissionInput())

	require.NoError(t, err)
	assert.Equal(t, OutcomeBlocklisted, result.Outcome)
	assert.Equal(t, models.SubmissionStatusRejected, result.Submission.Status)
	require.NotNil(t, result.Submission.AdminNotes)
	assert.Contains(t, *result.Submission.AdminNotes, "blocklist match")

	require.Len(t, recorder.Events, 1)
	assert.Equal(t, models.AuditEventSubmissionRejected, recorder.Events[0].EventType)
}

func TestGatekeeperDomainRulesIgnoredForReason(t *testing.T) {
	policies := &MockPolicyReader{
		BlocklistFunc: func(ctx context.Context) models.Blocklist {
			return models.Blocklist{
				{Type: models.BlocklistTypeDomain, Value: "fake exchange"},
			}
		},
	}
	svc, _ := newGatekeeper(&MockSubmissionRepository{}, policies, &MockCaptchaVerifier{})

	result, err := svc.Evaluate(context.Background(), NewTestSubmissionInput())

	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, result.Outcome)
}

func TestGatekeeperAcceptsAsPending(t *testing.T) {
	repo := &MockSubmissionRepository{}
	svc, recorder := newGatekeeper(repo, &MockPolicyReader{}, &MockCaptchaVerifier{})

	result, err := svc.Evaluate(context.Background(), NewTestSubmissionInput())

	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, result.Outcome)
	assert.Equal(t, models.SubmissionStatusPending, result.Submission.Status)
	assert.Equal(t, "203.0.113.7", result.Submission.SubmitterIP)
	assert.Empty(t, recorder.Events)
}

func TestGatekeeperPersistFailure(t *testing.T) {
	repo := &MockSubmissionRepository{
		CreateFunc: func(ctx context.Context, s *models.Submission) (*models.Submission, error) {
			return nil, errors.New("insert failed")
		},
	}
	svc, _ := newGatekeeper(repo, &MockPolicyReader{}, &MockCaptchaVerifier{})

	_, err := svc.Evaluate(context.Background(), NewTestSubmissionInput())
	assert.ErrorIs(t, err, models.ErrCouldNotSave)
}
