package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// AlertMailer defines the interface for security alert delivery
type AlertMailer interface {
	SendLockoutAlert(ctx context.Context, username, ipAddress string, lockedUntil time.Time) error
}

// AWSSESAlertMailer sends security alerts using AWS SES
type AWSSESAlertMailer struct {
	sesClient   *ses.Client
	fromAddress string
	toAddress   string
	logger      *slog.Logger
}

// NewAWSSESAlertMailer creates a new AWS SES alert mailer
func NewAWSSESAlertMailer(region, fromAddress, toAddress string, logger *slog.Logger) (*AWSSESAlertMailer, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESAlertMailer{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		toAddress:   toAddress,
		logger:      logger,
	}, nil
}

// SendLockoutAlert notifies the operations address that an admin account was
// locked out after repeated failed logins.
func (s *AWSSESAlertMailer) SendLockoutAlert(ctx context.Context, username, ipAddress string, lockedUntil time.Time) error {
	subject := fmt.Sprintf("Admin account %q locked out", username)

	textBody := fmt.Sprintf(`An administrator account was locked after repeated failed login attempts.

Account:      %s
Source IP:    %s
Locked until: %s

No action is required; the lock expires on its own. If this was not you,
review the audit trail and rotate the account password.
`, username, ipAddress, lockedUntil.UTC().Format(time.RFC3339))

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{s.toAddress},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send lockout alert via SES",
			slog.String("username", username),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("lockout alert sent",
		slog.String("username", username),
		slog.String("message_id", *result.MessageId))

	return nil
}

// NoopAlertMailer discards alerts. Used when email delivery is disabled.
type NoopAlertMailer struct {
	logger *slog.Logger
}

// NewNoopAlertMailer creates a mailer that only logs.
func NewNoopAlertMailer(logger *slog.Logger) *NoopAlertMailer {
	return &NoopAlertMailer{logger: logger}
}

func (s *NoopAlertMailer) SendLockoutAlert(ctx context.Context, username, ipAddress string, lockedUntil time.Time) error {
	s.logger.Info("lockout alert suppressed (email disabled)",
		slog.String("username", username),
		slog.String("ip_address", ipAddress))
	return nil
}
