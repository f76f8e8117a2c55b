package integration

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletwatch/internal/models"
)

var (
	testDB     *TestDB
	testServer *TestServer
)

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(0)
	}

	ctx := context.Background()

	db, err := SetupTestDatabase(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up test database: %v\n", err)
		os.Exit(1)
	}
	testDB = db
	testServer = NewTestServer(db.DB)

	code := m.Run()

	testServer.Close()
	testDB.Teardown(ctx)
	os.Exit(code)
}

func resetState(t *testing.T) {
	t.Helper()
	require.NoError(t, testDB.CleanupTables(context.Background()))
	testServer.Mailer.Sent = 0
	testServer.Verifier.Calls = 0
}

func seedLookups(t *testing.T) (categoryID, coinID string) {
	t.Helper()
	ctx := context.Background()

	categoryID, err := SeedCategory(ctx, testDB.Pool, "Scam")
	require.NoError(t, err)
	coinID, err = SeedCryptocurrency(ctx, testDB.Pool, "Bitcoin", "BTC")
	require.NoError(t, err)
	return categoryID, coinID
}

func TestSubmissionAcceptedEndToEnd(t *testing.T) {
	resetState(t)
	categoryID, coinID := seedLookups(t)

	resp, err := testServer.Request(http.MethodPost, "/submissions", SubmissionBody(categoryID, coinID), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, ParseJSONResponse(resp, &body))
	assert.Equal(t, true, body["success"])

	pending, err := CountSubmissionsByStatus(context.Background(), testDB.Pool, models.SubmissionStatusPending)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}

func TestSubmissionHoneypotTrappedSilently(t *testing.T) {
	resetState(t)
	categoryID, coinID := seedLookups(t)

	resp, err := testServer.Request(http.MethodPost, "/submissions", SubmissionBodyWithHoneypot(categoryID, coinID), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, ParseJSONResponse(resp, &body))
	assert.Equal(t, true, body["success"])

	// Trapped rows persist as rejected; the CAPTCHA gate never ran
	rejected, err := CountSubmissionsByStatus(context.Background(), testDB.Pool, models.SubmissionStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 0, testServer.Verifier.Calls)
}

func TestSubmissionRateLimitWindow(t *testing.T) {
	resetState(t)
	categoryID, coinID := seedLookups(t)
	ctx := context.Background()

	require.NoError(t, SetSetting(ctx, testDB.Pool, models.SettingRateLimitMaxSubmissions, "2"))

	for i := 0; i < 2; i++ {
		resp, err := testServer.Request(http.MethodPost, "/submissions", SubmissionBody(categoryID, coinID), nil)
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp, err := testServer.Request(http.MethodPost, "/submissions", SubmissionBody(categoryID, coinID), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	resp.Body.Close()
}

func TestBlocklistedSubmissionPersistsAsRejected(t *testing.T) {
	resetState(t)
	categoryID, coinID := seedLookups(t)
	ctx := context.Background()

	require.NoError(t, SetSetting(ctx, testDB.Pool, models.SettingBlocklist,
		`[{"type":"keyword","value":"fake exchange"}]`))

	resp, err := testServer.Request(http.MethodPost, "/submissions", SubmissionBody(categoryID, coinID), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	rejected, err := CountSubmissionsByStatus(ctx, testDB.Pool, models.SubmissionStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, 1, rejected)
}

func TestAdminLoginLockoutAndRecovery(t *testing.T) {
	resetState(t)
	ctx := context.Background()

	username, password := TestAdminCredentials("lockout")
	_, err := SeedAdmin(ctx, testDB.Pool, username, password)
	require.NoError(t, err)

	// Default policy locks after five failures
	for i := 0; i < 5; i++ {
		resp, err := testServer.Request(http.MethodPost, "/admin/login",
			map[string]string{"username": username, "password": "wrong-password"}, nil)
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, 1, testServer.Mailer.Sent)

	// Correct credentials are still refused while the lock holds
	resp, err := testServer.Request(http.MethodPost, "/admin/login",
		map[string]string{"username": username, "password": password}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminLoginIssuesSessionToken(t *testing.T) {
	resetState(t)
	ctx := context.Background()

	username, password := TestAdminCredentials("session")
	_, err := SeedAdmin(ctx, testDB.Pool, username, password)
	require.NoError(t, err)

	resp, err := testServer.Request(http.MethodPost, "/admin/login",
		map[string]string{"username": username, "password": password}, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, ParseJSONResponse(resp, &body))
	require.NotEmpty(t, body.Token)

	me, err := testServer.RequestWithAuth(http.MethodGet, "/admin/me", body.Token, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, me.StatusCode)
	me.Body.Close()
}

func TestReadAPIHidesUnapprovedSubmissions(t *testing.T) {
	resetState(t)
	categoryID, coinID := seedLookups(t)
	ctx := context.Background()

	resp, err := testServer.Request(http.MethodPost, "/submissions", SubmissionBody(categoryID, coinID), nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	var submissionID string
	require.NoError(t, testDB.Pool.QueryRow(ctx, "SELECT id FROM submissions LIMIT 1").Scan(&submissionID))

	generated, err := testServer.APIKeys.Create(ctx, "integration", models.APIKeyTierLimited)
	require.NoError(t, err)

	// Pending reports read as not found
	resp, err = testServer.RequestWithAPIKey(http.MethodGet, "/api/submissions/"+submissionID, generated.PlainKey)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	_, err = testDB.Pool.Exec(ctx, "UPDATE submissions SET status = $1 WHERE id = $2",
		models.SubmissionStatusApproved, submissionID)
	require.NoError(t, err)

	resp, err = testServer.RequestWithAPIKey(http.MethodGet, "/api/submissions/"+submissionID, generated.PlainKey)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminPasswordChange(t *testing.T) {
	resetState(t)
	ctx := context.Background()

	username, password := TestAdminCredentials("pwchange")
	_, err := SeedAdmin(ctx, testDB.Pool, username, password)
	require.NoError(t, err)

	resp, err := testServer.Request(http.MethodPost, "/admin/login",
		map[string]string{"username": username, "password": password}, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, ParseJSONResponse(resp, &body))

	const newPassword = "EvenStrongerPassword456!"
	resp, err = testServer.RequestWithAuth(http.MethodPut, "/admin/account/password", body.Token,
		map[string]string{"currentPassword": password, "newPassword": newPassword})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Old password no longer works, new one does
	resp, err = testServer.Request(http.MethodPost, "/admin/login",
		map[string]string{"username": username, "password": password}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp, err = testServer.Request(http.MethodPost, "/admin/login",
		map[string]string{"username": username, "password": newPassword}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestReadAPIRequiresKey(t *testing.T) {
	resetState(t)
	ctx := context.Background()

	resp, err := testServer.Request(http.MethodGet, "/api/submissions", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	generated, err := testServer.APIKeys.Create(ctx, "integration", models.APIKeyTierLimited)
	require.NoError(t, err)

	resp, err = testServer.RequestWithAPIKey(http.MethodGet, "/api/submissions", generated.PlainKey)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
