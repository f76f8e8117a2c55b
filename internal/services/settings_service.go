package services

import (
	"context"
	"log/slog"
	"time"

	"walletwatch/internal/models"
)

// SettingRepository defines the interface for system setting operations
type SettingRepository interface {
	All(ctx context.Context) (models.SystemSettings, error)
	Get(ctx context.Context, key string) (string, error)
	GetMany(ctx context.Context, keys []string) (models.SystemSettings, error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, settings map[string]string) error
	EnsureDefaults(ctx context.Context, defaults map[string]string) error
}

// LoginPolicy is the brute-force policy in effect for a single attempt.
type LoginPolicy struct {
	MaxAttempts     int
	LockoutDuration time.Duration
}

// RateLimitPolicy is the submission rate-limit policy in effect for a
// single request.
type RateLimitPolicy struct {
	Window         time.Duration
	MaxSubmissions int
}

// SettingsService reads and writes the admin-tunable policy settings.
// Reads are always fresh; a policy change applies to the very next request
// with no restart. A failed read falls back to compiled-in defaults so the
// pipeline keeps running.
type SettingsService struct {
	repo   SettingRepository
	logger *slog.Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(repo SettingRepository, logger *slog.Logger) *SettingsService {
	return &SettingsService{repo: repo, logger: logger}
}

// RecaptchaEnabled reports whether CAPTCHA verification is switched on.
func (s *SettingsService) RecaptchaEnabled(ctx context.Context) bool {
	settings, err := s.repo.GetMany(ctx, []string{models.SettingRecaptchaEnabled})
	if err != nil {
		s.logger.Warn("failed to read recaptcha setting, using default", slog.Any("error", err))
		return models.DefaultRecaptchaEnabled
	}
	return settings.GetBool(models.SettingRecaptchaEnabled, models.DefaultRecaptchaEnabled)
}

// LoginPolicy returns the current brute-force thresholds.
func (s *SettingsService) LoginPolicy(ctx context.Context) LoginPolicy {
	settings, err := s.repo.GetMany(ctx, []string{
		models.SettingLoginMaxAttempts,
		models.SettingLoginLockoutMinutes,
	})
	if err != nil {
		s.logger.Warn("failed to read login policy, using defaults", slog.Any("error", err))
		settings = models.SystemSettings{}
	}
	return LoginPolicy{
		MaxAttempts:     settings.GetInt(models.SettingLoginMaxAttempts, models.DefaultLoginMaxAttempts),
		LockoutDuration: time.Duration(settings.GetInt(models.SettingLoginLockoutMinutes, models.DefaultLoginLockoutMinutes)) * time.Minute,
	}
}

// RateLimitPolicy returns the current submission rate-limit thresholds.
func (s *SettingsService) RateLimitPolicy(ctx context.Context) RateLimitPolicy {
	settings, err := s.repo.GetMany(ctx, []string{
		models.SettingRateLimitWindowMinutes,
		models.SettingRateLimitMaxSubmissions,
	})
	if err != nil {
		s.logger.Warn("failed to read rate limit policy, using defaults", slog.Any("error", err))
		settings = models.SystemSettings{}
	}
	return RateLimitPolicy{
		Window:         time.Duration(settings.GetInt(models.SettingRateLimitWindowMinutes, models.DefaultRateLimitWindowMinutes)) * time.Minute,
		MaxSubmissions: settings.GetInt(models.SettingRateLimitMaxSubmissions, models.DefaultRateLimitMaxSubmissions),
	}
}

// Blocklist returns the current auto-reject rules. Malformed stored JSON is
// absorbed as an empty list so a bad edit can never block all submissions.
func (s *SettingsService) Blocklist(ctx context.Context) models.Blocklist {
	raw, err := s.repo.Get(ctx, models.SettingBlocklist)
	if err != nil {
		return models.Blocklist{}
	}

	rules, err := models.ParseBlocklist(raw)
	if err != nil {
		s.logger.Warn("malformed blocklist setting, treating as empty", slog.Any("error", err))
		return models.Blocklist{}
	}
	return rules
}

// UpdateBlocklist replaces the stored rule set.
func (s *SettingsService) UpdateBlocklist(ctx context.Context, rules models.Blocklist) error {
	for _, rule := range rules {
		if rule.Value == "" {
			return models.ErrBadRequest
		}
		switch rule.Type {
		case models.BlocklistTypeKeyword, models.BlocklistTypePhrase, models.BlocklistTypeDomain:
		default:
			return models.ErrBadRequest
		}
	}

	serialized, err := rules.Serialize()
	if err != nil {
		s.logger.Error("failed to serialize blocklist", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.Set(ctx, models.SettingBlocklist, serialized); err != nil {
		s.logger.Error("failed to store blocklist", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("blocklist updated", slog.Int("rule_count", len(rules)))
	return nil
}

// All returns every stored setting.
func (s *SettingsService) All(ctx context.Context) (models.SystemSettings, error) {
	settings, err := s.repo.All(ctx)
	if err != nil {
		s.logger.Error("failed to read settings", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return settings, nil
}

var knownSettingKeys = map[string]bool{
	models.SettingRecaptchaEnabled:        true,
	models.SettingRateLimitWindowMinutes:  true,
	models.SettingRateLimitMaxSubmissions: true,
	models.SettingLoginMaxAttempts:        true,
	models.SettingLoginLockoutMinutes:     true,
	models.SettingBlocklist:               true,
}

// UpdateSettings upserts the given settings in one transaction. Unknown keys
// are rejected so typos cannot silently create dead configuration.
func (s *SettingsService) UpdateSettings(ctx context.Context, updates map[string]string) error {
	if len(updates) == 0 {
		return models.ErrBadRequest
	}
	for key := range updates {
		if !knownSettingKeys[key] {
			return models.ErrBadRequest
		}
	}

	if err := s.repo.SetMany(ctx, updates); err != nil {
		s.logger.Error("failed to update settings", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("settings updated", slog.Int("key_count", len(updates)))
	return nil
}

// EnsureDefaults seeds missing policy settings at startup.
func (s *SettingsService) EnsureDefaults(ctx context.Context) error {
	defaults := map[string]string{
		models.SettingRecaptchaEnabled:        "true",
		models.SettingRateLimitWindowMinutes:  "15",
		models.SettingRateLimitMaxSubmissions: "5",
		models.SettingLoginMaxAttempts:        "5",
		models.SettingLoginLockoutMinutes:     "15",
		models.SettingBlocklist:               "[]",
	}
	return s.repo.EnsureDefaults(ctx, defaults)
}
