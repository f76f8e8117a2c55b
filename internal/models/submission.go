package models

import "time"

// Submission statuses. New submissions default to pending; the gatekeeper
// only ever forces rejected (honeypot, blocklist). Approval is an admin
// review action.
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
	SubmissionStatusRejected = "rejected"
)

// ValidSubmissionStatus reports whether s is a known status value.
func ValidSubmissionStatus(s string) bool {
	switch s {
	case SubmissionStatusPending, SubmissionStatusApproved, SubmissionStatusRejected:
		return true
	}
	return false
}

// Submission is a reported wallet. SubmitterIP holds the source address or
// a sentinel ("unknown", "N/A" for loopback).
type Submission struct {
	ID               string     `json:"id"`
	WalletAddress    string     `json:"walletAddress"`
	CategoryID       string     `json:"categoryId"`
	CryptocurrencyID string     `json:"cryptocurrencyId"`
	WebsiteURL       *string    `json:"websiteUrl,omitempty"`
	ReportedOwner    *string    `json:"reportedOwner,omitempty"`
	Reason           *string    `json:"reason,omitempty"`
	AdminNotes       *string    `json:"adminNotes,omitempty"`
	Status           string     `json:"status"`
	SubmitterIP      string     `json:"-"` // never exposed publicly
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// SubmissionFilter narrows submission listings.
type SubmissionFilter struct {
	Status           string // empty = any
	CategoryID       string
	CryptocurrencyID string
	SearchTerm       string // matched against wallet address and reported owner
	Limit            int
	Offset           int
}
