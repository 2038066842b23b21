package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mw "loan-underwriter/internal/api/middleware"
	"loan-underwriter/internal/config"
	"loan-underwriter/internal/domain/loan"
	"loan-underwriter/internal/domain/underwriting"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-test-secret"

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// stubLoanService answers GetRequest; every other method panics.
type stubLoanService struct {
	loan.LoanService
	req *loan.LoanRequest
}

func (s *stubLoanService) GetRequest(_ context.Context, requestID uuid.UUID, _ bool) (*loan.LoanRequest, error) {
	if s.req == nil || s.req.ID != requestID {
		return nil, errors.New("unexpected request id")
	}
	return s.req, nil
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Auth: config.AuthConfig{Enabled: true, JWTSecret: testSecret, TokenTTL: time.Hour},
		},
		Metrics: config.MetricsConfig{Path: "/metrics"},
	}
}

func bearer(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "tester",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func do(router http.Handler, method, target, auth, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSetupRouter_PublicEndpoints(t *testing.T) {
	router := SetupRouter(&stubLoanService{}, nil, nil, testConfig(), logger)

	t.Run("health", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/health", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("metrics", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/metrics", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("swagger redirect", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/swagger", "", "")
		assert.Equal(t, http.StatusMovedPermanently, rec.Code)
		assert.Equal(t, "/swagger/index.html", rec.Header().Get("Location"))
	})

	t.Run("token issuance", func(t *testing.T) {
		rec := do(router, http.MethodPost, "/auth/token", "", `{"username":"officer"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, strings.HasPrefix(resp["token"].(string), "Bearer "))
	})
}

func TestSetupRouter_HealthDegraded(t *testing.T) {
	router := SetupRouter(&stubLoanService{}, failingPinger{}, nil, testConfig(), logger)

	rec := do(router, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSetupRouter_ProtectedRoutes(t *testing.T) {
	requestID := uuid.New()
	svc := &stubLoanService{req: &loan.LoanRequest{
		ID:           requestID,
		ApplicantID:  uuid.New(),
		Amount:       5_000_000,
		TermMonths:   12,
		InterestRate: 1.5,
		Status:       underwriting.StatusInReview,
		RequestedAt:  time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	}}
	router := SetupRouter(svc, nil, nil, testConfig(), logger)

	for _, target := range []string{
		"/loans/" + requestID.String(),
		"/applicants/loans?email=a@b.co",
	} {
		rec := do(router, http.MethodGet, target, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}

	rec := do(router, http.MethodPost, "/installments/"+uuid.NewString()+"/pay", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(router, http.MethodGet, "/loans/"+requestID.String(), bearer(t), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, requestID.String(), resp["id"])
	assert.Equal(t, "in_review", resp["status"])
}

func TestSetupRouter_RateLimited(t *testing.T) {
	limiter := mw.NewRateLimiterMiddleware(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1}, logger)
	t.Cleanup(limiter.Stop)
	router := SetupRouter(&stubLoanService{}, nil, limiter, testConfig(), logger)

	first := do(router, http.MethodGet, "/health", "", "")
	second := do(router, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
