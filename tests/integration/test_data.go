package integration

import (
	"fmt"
	"time"
)

// TestAdminCredentials generates unique admin credentials using timestamp
func TestAdminCredentials(suffix string) (username, password string) {
	ts := time.Now().Unix()
	username = fmt.Sprintf("admin-%d-%s", ts, suffix)
	password = "TestPassword123!"
	return
}

// SubmissionBody builds a valid report payload for the given lookup ids
func SubmissionBody(categoryID, cryptocurrencyID string) map[string]interface{} {
	return map[string]interface{}{
		"walletAddress":    "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh",
		"categoryId":       categoryID,
		"cryptocurrencyId": cryptocurrencyID,
		"reason":           "This address stole my funds through a fake exchange",
		"captchaToken":     "test-token",
	}
}

// SubmissionBodyWithHoneypot builds a payload with the hidden trap field set
func SubmissionBodyWithHoneypot(categoryID, cryptocurrencyID string) map[string]interface{} {
	body := SubmissionBody(categoryID, cryptocurrencyID)
	body["website"] = "https://spam.example"
	return body
}
