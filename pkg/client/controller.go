// Package client is the submitting side of the speaker registration form.
//
// It mirrors the server's validation, drops honeypot-filled forms, holds one
// submission token per Load and enforces a local cooldown between successful
// submissions. None of this is trusted by the server; it only saves round
// trips and tokens.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/xynexis/speaker-registration/pkg/validation"
)

// DefaultCooldown is the minimum time between successful submissions.
const DefaultCooldown = 60 * time.Second

const (
	msgTokenMissing    = "Security token missing. Please refresh the page."
	msgTokenFetch      = "Failed to fetch security token"
	msgRegistration    = "Registration failed."
	msgUnexpected      = "An unexpected error occurred."
	msgCooldownPattern = "Please wait %d seconds before submitting again."
)

// Form is what the person filled in. Website is the honeypot and must stay empty.
type Form struct {
	FullName         string
	CompanyName      string
	Email            string
	Phone            string
	Position         string
	Website          string
	PrivacyConsent   bool
	MarketingConsent bool
}

// Outcome describes what Submit did when it returned no error.
type Outcome struct {
	Submitted bool // the server accepted the registration
	Dropped   bool // the honeypot was filled; nothing was sent
}

// FormError is a message meant to be displayed above the form.
type FormError struct {
	Message string
	Field   validation.Field // set for local validation failures
	Status  int              // HTTP status for server rejections, 0 otherwise
	Err     error
}

func (e *FormError) Error() string { return e.Message }

func (e *FormError) Unwrap() error { return e.Err }

// Controller drives one form session against the registration API.
type Controller struct {
	baseURL  string
	http     *http.Client
	cooldown time.Duration
	store    CooldownStore
	now      func() time.Time
	token    string
}

// Option configures a Controller.
type Option func(*Controller)

// WithHTTPClient sets the HTTP client used for both endpoints.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Controller) { c.http = hc }
}

// WithCooldown overrides DefaultCooldown.
func WithCooldown(d time.Duration) Option {
	return func(c *Controller) { c.cooldown = d }
}

// WithCooldownStore sets where the last submission time is kept.
func WithCooldownStore(s CooldownStore) Option {
	return func(c *Controller) { c.store = s }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New creates a controller for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Controller {
	c := &Controller{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 15 * time.Second},
		cooldown: DefaultCooldown,
		store:    &MemoryCooldownStore{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the token held for this session, or "" before a successful Load.
func (c *Controller) Token() string { return c.token }

// Load fetches the session's submission token. Call it once per form session.
func (c *Controller) Load(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/csrf", nil)
	if err != nil {
		return &FormError{Message: msgTokenFetch, Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &FormError{Message: msgTokenFetch, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &FormError{Message: msgTokenFetch, Status: resp.StatusCode}
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Token == "" {
		return &FormError{Message: msgTokenFetch, Status: resp.StatusCode, Err: err}
	}
	c.token = body.Token
	return nil
}

// Submit runs the local checks and, if they pass, sends the registration.
// The order is validation, honeypot, token presence, cooldown, request.
// There is no automatic retry.
func (c *Controller) Submit(ctx context.Context, f Form) (Outcome, error) {
	var phone *string
	if f.Phone != "" {
		phone = &f.Phone
	}
	if fe := validation.Registration(validation.Input{
		FullName:       f.FullName,
		CompanyName:    f.CompanyName,
		Position:       f.Position,
		Email:          f.Email,
		PhoneNumber:    phone,
		PrivacyConsent: f.PrivacyConsent,
	}); fe != nil {
		return Outcome{}, &FormError{Message: fe.Message, Field: fe.Field}
	}

	if f.Website != "" {
		return Outcome{Dropped: true}, nil
	}

	if c.token == "" {
		return Outcome{}, &FormError{Message: msgTokenMissing}
	}

	if wait := c.cooldownRemaining(); wait > 0 {
		secs := int(math.Ceil(wait.Seconds()))
		return Outcome{}, &FormError{Message: fmt.Sprintf(msgCooldownPattern, secs)}
	}

	if err := c.post(ctx, buildPayload(f, c.token)); err != nil {
		return Outcome{}, err
	}

	// Failing to persist only weakens a UX nicety; the submission itself succeeded.
	_ = c.store.SetLastSubmission(c.now())
	return Outcome{Submitted: true}, nil
}

func (c *Controller) cooldownRemaining() time.Duration {
	last, err := c.store.LastSubmission()
	if err != nil || last.IsZero() {
		return 0
	}
	return c.cooldown - c.now().Sub(last)
}

type submitPayload struct {
	FullName         string  `json:"full_name"`
	CompanyName      string  `json:"company_name"`
	Email            string  `json:"email"`
	PhoneNumber      *string `json:"phone_number"`
	Position         string  `json:"position"`
	PrivacyConsent   bool    `json:"privacy_consent"`
	MarketingConsent bool    `json:"marketing_consent"`
	Token            string  `json:"token"`
}

func buildPayload(f Form, token string) submitPayload {
	p := submitPayload{
		FullName:         strings.TrimSpace(f.FullName),
		CompanyName:      strings.TrimSpace(f.CompanyName),
		Email:            strings.ToLower(strings.TrimSpace(f.Email)),
		Position:         strings.TrimSpace(f.Position),
		PrivacyConsent:   f.PrivacyConsent,
		MarketingConsent: f.MarketingConsent,
		Token:            token,
	}
	if f.Phone != "" {
		phone := strings.TrimSpace(f.Phone)
		p.PhoneNumber = &phone
	}
	return p
}

func (c *Controller) post(ctx context.Context, p submitPayload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return &FormError{Message: msgUnexpected, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/submit", bytes.NewReader(body))
	if err != nil {
		return &FormError{Message: msgUnexpected, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &FormError{Message: msgUnexpected, Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var result struct {
		Message string `json:"message"`
	}
	decodeErr := json.Unmarshal(raw, &result)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := result.Message
		if msg == "" {
			msg = msgRegistration
		}
		return &FormError{Message: msg, Status: resp.StatusCode}
	}
	if decodeErr != nil {
		return &FormError{Message: msgUnexpected, Status: resp.StatusCode, Err: decodeErr}
	}
	return nil
}
