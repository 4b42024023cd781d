package models

import (
	"time"

	"github.com/google/uuid"
)

// SpeakerRegistration is one accepted speaker sign-up. Rows are never updated.
type SpeakerRegistration struct {
	ID               uuid.UUID `json:"id"`
	FullName         string    `json:"full_name"`
	CompanyName      string    `json:"company_name"`
	Position         string    `json:"position"`
	Email            string    `json:"email"`
	PhoneNumber      *string   `json:"phone_number"` // null when not provided
	PrivacyConsent   bool      `json:"privacy_consent"`
	MarketingConsent bool      `json:"marketing_consent"`
	CreatedAt        time.Time `json:"created_at"`
}

// SubmissionToken is a single-use token gating one submission attempt.
// A row existing in the store is what makes the token valid.
type SubmissionToken struct {
	Token     uuid.UUID `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}
