package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"walletwatch/internal/auth"
	"walletwatch/internal/config"
	"walletwatch/internal/database"
	"walletwatch/internal/handlers"
	middlewareCustom "walletwatch/internal/middleware"
	"walletwatch/internal/routes"
	"walletwatch/internal/services"
	pkghttp "walletwatch/pkg/http"
	pkglogger "walletwatch/pkg/logger"
)

// TestServer wraps httptest.Server with database and all dependencies
type TestServer struct {
	Server *httptest.Server
	DB     *database.DB
	Config *config.Config

	// Dependency references for inspection in tests
	Verifier     *services.MockCaptchaVerifier
	Mailer       *services.MockAlertMailer
	TokenManager *auth.TokenManager
	APIKeys      *services.APIKeyService
}

// NewTestServer initializes a complete HTTP server with a real database,
// stubbed CAPTCHA verification, and captured lockout alerts
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-32-characters-long-for-testing",
			SessionExpiry:   8 * time.Hour,
			CleanupInterval: 1 * time.Hour,
		},
		Server: config.ServerConfig{
			Port:           "0",
			Env:            "test",
			AllowedOrigins: []string{},
			TrustedProxies: []string{},
		},
	}

	adminRepo, submissionRepo, settingRepo, apiKeyRepo, lookupRepo, auditRepo :=
		InitializeRepositories(db)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionExpiry)
	totpManager := auth.NewTOTPManager("WalletWatchTest")
	apiKeyManager := auth.NewAPIKeyManager()

	auditLogger := pkglogger.NewAuditLogger(logger)

	verifier := &services.MockCaptchaVerifier{}
	mailer := &services.MockAlertMailer{}

	auditService := services.NewAuditService(auditRepo, logger)
	settingsService := services.NewSettingsService(settingRepo, logger)
	gatekeeperService := services.NewGatekeeperService(submissionRepo, settingsService, verifier, logger, auditLogger, auditService)
	loginGuardService := services.NewLoginGuardService(adminRepo, settingsService, tokenManager, totpManager, mailer, logger, auditLogger, auditService)
	twoFactorService := services.NewTwoFactorService(adminRepo, totpManager, logger, auditLogger, auditService)
	submissionService := services.NewSubmissionService(submissionRepo, logger)
	accountService := services.NewAccountService(adminRepo, logger)
	apiKeyService := services.NewAPIKeyService(apiKeyRepo, apiKeyManager, logger, auditService)
	lookupService := services.NewLookupService(lookupRepo, logger)

	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}

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

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Tests all arrive from 127.0.0.1, so the per-IP edge caps are raised
	// far above anything the suite can hit. The DB-backed submission window
	// and the login lockout stay at their real settings.
	routes.RegisterRoutes(r, h, tokenManager, apiKeyService, routes.Config{
		LoginLimit:  middlewareCustom.RateLimitConfig{RequestsPerMinute: 10000},
		SubmitLimit: middlewareCustom.RateLimitConfig{RequestsPerMinute: 10000},
	})

	server := httptest.NewServer(r)

	return &TestServer{
		Server:       server,
		DB:           db,
		Config:       cfg,
		Verifier:     verifier,
		Mailer:       mailer,
		TokenManager: tokenManager,
		APIKeys:      apiKeyService,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// Request makes an HTTP request to the test server
func (ts *TestServer) Request(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	url := ts.Server.URL + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return http.DefaultClient.Do(req)
}

// RequestWithAuth makes an authenticated HTTP request with a session token
func (ts *TestServer) RequestWithAuth(method, path, sessionToken string, body interface{}) (*http.Response, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + sessionToken,
	}
	return ts.Request(method, path, body, headers)
}

// RequestWithAPIKey makes a read-API request with an API key
func (ts *TestServer) RequestWithAPIKey(method, path, apiKey string) (*http.Response, error) {
	headers := map[string]string{
		"X-API-Key": apiKey,
	}
	return ts.Request(method, path, nil, headers)
}

// ParseJSONResponse parses JSON response body into target struct
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// GetErrorMessage extracts error message from error response
func GetErrorMessage(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	var errResp map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return "", err
	}
	if msg, ok := errResp["message"].(string); ok {
		return msg, nil
	}
	return "", nil
}
