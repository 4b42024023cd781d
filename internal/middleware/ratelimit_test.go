package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockCounter struct {
	mock.Mock
}

func (m *MockCounter) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	args := m.Called(ctx, key, window)
	return args.Get(0).(int64), args.Error(1)
}

func limitedEngine(counter WindowCounter, limit int) *gin.Engine {
	r := gin.New()
	r.GET("/limited", RateLimit(counter, "test", limit, nil), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func hit(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
	return w
}

func TestRateLimit_UnderAndOverLimit(t *testing.T) {
	counter := new(MockCounter)
	counter.On("IncrWindow", mock.Anything, mock.MatchedBy(func(key string) bool {
		return len(key) > len("ratelimit:test:")
	}), time.Minute).Return(int64(3), nil).Once()
	counter.On("IncrWindow", mock.Anything, mock.Anything, time.Minute).Return(int64(4), nil).Once()

	r := limitedEngine(counter, 3)
	assert.Equal(t, http.StatusOK, hit(r).Code)

	w := hit(r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"message":"Too many requests. Please try again later."}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	counter.AssertExpectations(t)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	counter := new(MockCounter)
	counter.On("IncrWindow", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("redis down"))

	assert.Equal(t, http.StatusOK, hit(limitedEngine(counter, 1)).Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	assert.Equal(t, http.StatusOK, hit(limitedEngine(nil, 1)).Code)

	counter := new(MockCounter)
	assert.Equal(t, http.StatusOK, hit(limitedEngine(counter, 0)).Code)
	counter.AssertNotCalled(t, "IncrWindow", mock.Anything, mock.Anything, mock.Anything)
}
