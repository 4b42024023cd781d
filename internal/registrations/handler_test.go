package registrations_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xynexis/speaker-registration/internal/registrations"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func (f *fixture) engine() *gin.Engine {
	h := registrations.NewHandler(f.svc, nil)
	r := gin.New()
	r.POST("/api/submit", h.Submit)
	r.GET("/api/admin/speakers", h.List)
	return r
}

func postJSON(r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func submitBody(token string) map[string]interface{} {
	return map[string]interface{}{
		"full_name":         "Jane Doe",
		"company_name":      "Acme",
		"email":             "jane@acme.test",
		"phone_number":      nil,
		"position":          "CTO",
		"privacy_consent":   true,
		"marketing_consent": false,
		"token":             token,
	}
}

func TestHandlerSubmit_Success(t *testing.T) {
	f := newFixture()
	w := postJSON(f.engine(), "/api/submit", submitBody(f.issue(t)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Success"}`, w.Body.String())
}

func TestHandlerSubmit_MissingKeys(t *testing.T) {
	for _, key := range []string{"full_name", "company_name", "email", "position", "token"} {
		t.Run(key, func(t *testing.T) {
			f := newFixture()
			body := submitBody(f.issue(t))
			delete(body, key)

			w := postJSON(f.engine(), "/api/submit", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"message":"Missing required fields"}`, w.Body.String())
		})
	}
}

func TestHandlerSubmit_EmptyStringIsMissing(t *testing.T) {
	f := newFixture()
	body := submitBody(f.issue(t))
	body["company_name"] = ""

	w := postJSON(f.engine(), "/api/submit", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Missing required fields"}`, w.Body.String())
}

func TestHandlerSubmit_MalformedBody(t *testing.T) {
	f := newFixture()
	w := postJSON(f.engine(), "/api/submit", `{"full_name": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Invalid request body"}`, w.Body.String())
}

func TestHandlerSubmit_BodyTooLarge(t *testing.T) {
	f := newFixture()
	tok := f.issue(t)
	body := submitBody(tok)
	body["position"] = strings.Repeat("c", registrations.MaxSubmitBytes)

	w := postJSON(f.engine(), "/api/submit", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t, `{"message":"Request body too large"}`, w.Body.String())
	assert.Zero(t, f.speakers.Len())
	assert.True(t, f.tokens.Has(tok))
}

func TestHandlerSubmit_ConsentMissing(t *testing.T) {
	f := newFixture()
	body := submitBody(f.issue(t))
	delete(body, "privacy_consent")

	w := postJSON(f.engine(), "/api/submit", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"You must agree to the Privacy Notice to register."}`, w.Body.String())
}

func TestHandlerSubmit_InvalidField(t *testing.T) {
	f := newFixture()
	body := submitBody(f.issue(t))
	body["full_name"] = "John<script>"

	w := postJSON(f.engine(), "/api/submit", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Name contains invalid characters (Letters only)"}`, w.Body.String())
}

func TestHandlerSubmit_ReplayAndDuplicate(t *testing.T) {
	f := newFixture()
	r := f.engine()
	tok := f.issue(t)

	require.Equal(t, http.StatusOK, postJSON(r, "/api/submit", submitBody(tok)).Code)

	w := postJSON(r, "/api/submit", submitBody(tok))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message":"Invalid or expired security token. Please refresh the page."}`, w.Body.String())

	w = postJSON(r, "/api/submit", submitBody(f.issue(t)))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"message":"This email has already been registered."}`, w.Body.String())
}

func TestHandlerList(t *testing.T) {
	f := newFixture()
	r := f.engine()
	require.Equal(t, http.StatusOK, postJSON(r, "/api/submit", submitBody(f.issue(t))).Code)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/speakers", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Speakers []map[string]interface{} `json:"speakers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Speakers, 1)
	assert.Equal(t, "jane@acme.test", body.Speakers[0]["email"])
	phone, present := body.Speakers[0]["phone_number"]
	assert.True(t, present)
	assert.Nil(t, phone, "absent phone is stored and returned as null")
}

func TestHandlerList_Empty(t *testing.T) {
	f := newFixture()
	w := httptest.NewRecorder()
	f.engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/speakers", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"speakers":[]}`, w.Body.String())
}

func TestHandlerSubmit_StoreTimeout(t *testing.T) {
	f := newFixture()
	f.speakers.Err = context.DeadlineExceeded
	w := postJSON(f.engine(), "/api/submit", submitBody(f.issue(t)))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Internal Server Error"}`, w.Body.String())
}
