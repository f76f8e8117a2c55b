package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"walletwatch/internal/auth"
	"walletwatch/internal/background"
	"walletwatch/internal/captcha"
	"walletwatch/internal/config"
	"walletwatch/internal/database"
	"walletwatch/internal/handlers"
	middlewareCustom "walletwatch/internal/middleware"
	"walletwatch/internal/models"
	"walletwatch/internal/repositories"
	"walletwatch/internal/routes"
	"walletwatch/internal/services"
	pkgauth "walletwatch/pkg/auth"
	pkghttp "walletwatch/pkg/http"
	pkglogger "walletwatch/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	adminRepo := repositories.NewAdminUserRepository(db)
	submissionRepo := repositories.NewSubmissionRepository(db)
	settingRepo := repositories.NewSettingRepository(db)
	apiKeyRepo := repositories.NewAPIKeyRepository(db)
	lookupRepo := repositories.NewLookupRepository(db)
	auditRepo := repositories.NewAuditEventRepository(db)

	// Initialize auth primitives
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionExpiry)
	totpManager := auth.NewTOTPManager("WalletWatch")
	apiKeyManager := auth.NewAPIKeyManager()

	auditLogger := pkglogger.NewAuditLogger(logger)

	// CAPTCHA verification
	verifier := captcha.NewRecaptchaVerifier(
		cfg.Captcha.SecretKey,
		cfg.Captcha.VerifyURL,
		cfg.Captcha.VerifyTimeout,
	)

	// Lockout alert delivery
	var mailer services.AlertMailer
	if cfg.Email.Enabled {
		sesMailer, err := services.NewAWSSESAlertMailer(
			cfg.Email.AWSRegion,
			cfg.Email.FromAddress,
			cfg.Email.AlertTo,
			logger,
		)
		if err != nil {
			logger.Error("failed to initialize alert mailer", slog.Any("error", err))
			os.Exit(1)
		}
		mailer = sesMailer
	} else {
		mailer = services.NewNoopAlertMailer(logger)
	}

	// Initialize services
	auditService := services.NewAuditService(auditRepo, logger)
	settingsService := services.NewSettingsService(settingRepo, logger)
	gatekeeperService := services.NewGatekeeperService(submissionRepo, settingsService, verifier, logger, auditLogger, auditService)
	loginGuardService := services.NewLoginGuardService(adminRepo, settingsService, tokenManager, totpManager, mailer, logger, auditLogger, auditService)
	twoFactorService := services.NewTwoFactorService(adminRepo, totpManager, logger, auditLogger, auditService)
	submissionService := services.NewSubmissionService(submissionRepo, logger)
	accountService := services.NewAccountService(adminRepo, logger)
	apiKeyService := services.NewAPIKeyService(apiKeyRepo, apiKeyManager, logger, auditService)
	lookupService := services.NewLookupService(lookupRepo, logger)

	// Initialize cleanup manager
	cleanupManager := background.NewCleanupManager(auditService, logger, cfg.Auth.CleanupInterval)

	// Seed defaults and bootstrap the first admin account
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := settingsService.EnsureDefaults(bootCtx); err != nil {
		logger.Error("failed to seed default settings", slog.Any("error", err))
	}
	if err := lookupService.SeedDefaults(bootCtx); err != nil {
		logger.Error("failed to seed lookup tables", slog.Any("error", err))
	}
	if err := ensureAdminUser(bootCtx, adminRepo, logger); err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
	}
	bootCancel()

	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}

	// Initialize handlers
	h := routes.Handlers{
		Submissions: handlers.NewSubmissionHandler(gatekeeperService, submissionService, ipConfig),
		Auth:        handlers.NewAuthHandler(loginGuardService, ipConfig),
		Account:     handlers.NewAccountHandler(accountService),
		TwoFactor:   handlers.NewTwoFactorHandler(twoFactorService),
		Settings:    handlers.NewSettingsHandler(settingsService),
		APIKeys:     handlers.NewAPIKeyHandler(apiKeyService),
		Audit:       handlers.NewAuditHandler(auditService),
		Lookups:     handlers.NewLookupHandler(lookupService),
	}

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, h, tokenManager, apiKeyService, routes.DefaultConfig())

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ensureAdminUser creates the first admin account if ADMIN_USERNAME and
// ADMIN_PASSWORD are set
func ensureAdminUser(ctx context.Context, adminRepo *repositories.AdminUserRepository, logger *slog.Logger) error {
	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminUsername == "" || adminPassword == "" {
		logger.Info("no ADMIN_USERNAME or ADMIN_PASSWORD set, skipping admin user creation")
		return nil
	}

	// Check if admin already exists
	_, err := adminRepo.GetByUsername(ctx, adminUsername)
	if err == nil {
		logger.Info("admin user already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}

	if err := pkgauth.ValidatePassword(adminPassword); err != nil {
		return fmt.Errorf("admin password rejected: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.AdminUser{
		Username:     adminUsername,
		PasswordHash: hashedPassword,
	}

	if _, err := adminRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("admin user created successfully")
	return nil
}
