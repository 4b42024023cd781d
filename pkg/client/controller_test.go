package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xynexis/speaker-registration/pkg/validation"
)

// fakeAPI serves /api/csrf and /api/submit and records what it received.
type fakeAPI struct {
	mu          sync.Mutex
	csrfCalls   int
	submissions []map[string]interface{}
	status      int
	body        string
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/csrf", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.csrfCalls++
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"3f1c2a9e-0000-4000-8000-000000000001"}`))
	})
	mux.HandleFunc("/api/submit", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		f.mu.Lock()
		f.submissions = append(f.submissions, payload)
		status, body := f.status, f.body
		f.mu.Unlock()
		if status == 0 {
			status, body = http.StatusOK, `{"message":"Success"}`
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
	return mux
}

func (f *fakeAPI) sent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submissions)
}

func (f *fakeAPI) payload(i int) map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submissions[i]
}

func validForm() Form {
	return Form{
		FullName:       " Jane Doe ",
		CompanyName:    "Acme",
		Email:          "Jane@Acme.Test",
		Position:       "CTO",
		PrivacyConsent: true,
	}
}

func newTestController(t *testing.T, api *fakeAPI, opts ...Option) *Controller {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", append([]Option{WithHTTPClient(srv.Client())}, opts...)...)
}

func formErr(t *testing.T, err error) *FormError {
	t.Helper()
	var fe *FormError
	require.True(t, errors.As(err, &fe), "want *FormError, got %v", err)
	return fe
}

func TestLoad(t *testing.T) {
	api := &fakeAPI{}
	c := newTestController(t, api)
	assert.Empty(t, c.Token())

	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, "3f1c2a9e-0000-4000-8000-000000000001", c.Token())
	api.mu.Lock()
	assert.Equal(t, 1, api.csrfCalls)
	api.mu.Unlock()
}

func TestLoad_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Server Configuration Error"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()))
	err := c.Load(context.Background())
	fe := formErr(t, err)
	assert.Equal(t, "Failed to fetch security token", fe.Message)
	assert.Equal(t, http.StatusInternalServerError, fe.Status)
	assert.Empty(t, c.Token())
}

func TestSubmit_Success(t *testing.T) {
	api := &fakeAPI{}
	store := &MemoryCooldownStore{}
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	c := newTestController(t, api, WithCooldownStore(store), WithClock(func() time.Time { return now }))
	require.NoError(t, c.Load(context.Background()))

	out, err := c.Submit(context.Background(), validForm())
	require.NoError(t, err)
	assert.True(t, out.Submitted)

	require.Equal(t, 1, api.sent())
	p := api.payload(0)
	assert.Equal(t, "Jane Doe", p["full_name"])
	assert.Equal(t, "jane@acme.test", p["email"])
	assert.Nil(t, p["phone_number"])
	assert.Contains(t, p, "phone_number")
	assert.Equal(t, true, p["privacy_consent"])
	assert.Equal(t, "3f1c2a9e-0000-4000-8000-000000000001", p["token"])
	assert.NotContains(t, p, "website")

	last, err := store.LastSubmission()
	require.NoError(t, err)
	assert.Equal(t, now, last)
}

func TestSubmit_ValidationFirst(t *testing.T) {
	api := &fakeAPI{}
	c := newTestController(t, api)

	f := validForm()
	f.FullName = "John<script>"
	f.Website = "http://spam.example"
	_, err := c.Submit(context.Background(), f)

	fe := formErr(t, err)
	assert.Equal(t, validation.MsgFullNameInvalid, fe.Message)
	assert.Equal(t, validation.FieldFullName, fe.Field)
	assert.Zero(t, api.sent())
}

func TestSubmit_HoneypotDropsSilently(t *testing.T) {
	api := &fakeAPI{}
	store := &MemoryCooldownStore{}
	c := newTestController(t, api, WithCooldownStore(store))
	require.NoError(t, c.Load(context.Background()))

	f := validForm()
	f.Website = "http://spam.example"
	out, err := c.Submit(context.Background(), f)
	require.NoError(t, err)
	assert.True(t, out.Dropped)
	assert.False(t, out.Submitted)
	assert.Zero(t, api.sent())

	last, _ := store.LastSubmission()
	assert.True(t, last.IsZero())
}

func TestSubmit_TokenMissing(t *testing.T) {
	api := &fakeAPI{}
	c := newTestController(t, api)

	_, err := c.Submit(context.Background(), validForm())
	assert.Equal(t, "Security token missing. Please refresh the page.", formErr(t, err).Message)
	assert.Zero(t, api.sent())
}

func TestSubmit_Cooldown(t *testing.T) {
	api := &fakeAPI{}
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	store := &MemoryCooldownStore{}
	require.NoError(t, store.SetLastSubmission(now.Add(-20*time.Second-300*time.Millisecond)))

	c := newTestController(t, api, WithCooldownStore(store), WithClock(func() time.Time { return now }))
	require.NoError(t, c.Load(context.Background()))

	_, err := c.Submit(context.Background(), validForm())
	assert.Equal(t, "Please wait 40 seconds before submitting again.", formErr(t, err).Message)
	assert.Zero(t, api.sent())

	now = now.Add(40 * time.Second)
	out, err := c.Submit(context.Background(), validForm())
	require.NoError(t, err)
	assert.True(t, out.Submitted)
}

func TestSubmit_ServerMessageShown(t *testing.T) {
	api := &fakeAPI{status: http.StatusConflict, body: `{"message":"This email has already been registered."}`}
	store := &MemoryCooldownStore{}
	c := newTestController(t, api, WithCooldownStore(store))
	require.NoError(t, c.Load(context.Background()))

	_, err := c.Submit(context.Background(), validForm())
	fe := formErr(t, err)
	assert.Equal(t, "This email has already been registered.", fe.Message)
	assert.Equal(t, http.StatusConflict, fe.Status)

	last, _ := store.LastSubmission()
	assert.True(t, last.IsZero(), "failed submissions do not start the cooldown")
}

func TestSubmit_ServerWithoutMessage(t *testing.T) {
	api := &fakeAPI{status: http.StatusBadGateway, body: `<html>bad gateway</html>`}
	c := newTestController(t, api)
	require.NoError(t, c.Load(context.Background()))

	_, err := c.Submit(context.Background(), validForm())
	assert.Equal(t, "Registration failed.", formErr(t, err).Message)
}

func TestSubmit_TransportError(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler())
	c := New(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, c.Load(context.Background()))
	srv.Close()

	_, err := c.Submit(context.Background(), validForm())
	fe := formErr(t, err)
	assert.Equal(t, "An unexpected error occurred.", fe.Message)
	assert.Error(t, fe.Unwrap())
}

func TestSubmit_PhoneSentWhenPresent(t *testing.T) {
	api := &fakeAPI{}
	c := newTestController(t, api)
	require.NoError(t, c.Load(context.Background()))

	f := validForm()
	f.Phone = "+62812345678"
	_, err := c.Submit(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, "+62812345678", api.payload(0)["phone_number"])
}
