package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expense-service/internal/auth"
	"expense-service/internal/config"
	"expense-service/internal/events"
	"expense-service/internal/handlers"
	"expense-service/internal/storage"
)

func testConfig() config.Config {
	var cfg config.Config
	cfg.App.LogLevel = "debug"
	cfg.HTTP.AllowedOrigins = []string{"*"}
	cfg.Limits.RPS = 100
	cfg.Limits.Burst = 100
	return cfg
}

func TestSetupRouter(t *testing.T) {
	db, err := storage.NewDB(storage.DriverSQLite, ":memory:")
	require.NoError(t, err, "failed to create database")
	defer db.Close()

	issuer, err := auth.NewJWTIssuer("secret", time.Minute)
	require.NoError(t, err)

	var logs bytes.Buffer
	logger := zerolog.New(&logs)
	h := handlers.NewHandlers(db, issuer, events.NopPublisher{}, logger)
	mux := setupRouter(h, testConfig(), logger)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "Liveness",
			method:     "GET",
			path:       "/test",
			wantStatus: http.StatusOK,
		},
		{
			name:       "Login requires fields",
			method:     "POST",
			path:       "/users/login",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "List expenses requires user_id",
			method:     "GET",
			path:       "/expenses",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Report with user_id",
			method:     "GET",
			path:       "/expenses/report?user_id=1",
			wantStatus: http.StatusOK,
		},
		{
			name:       "Unknown route",
			method:     "GET",
			path:       "/nope",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code, "%s %s returned unexpected status", tt.method, tt.path)
		})
	}

	assert.Contains(t, logs.String(), `"url":"/test"`)
	assert.Contains(t, logs.String(), `"req_id"`)
}

func TestSetupRouterCORS(t *testing.T) {
	db, err := storage.NewDB(storage.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer db.Close()
	issuer, err := auth.NewJWTIssuer("secret", time.Minute)
	require.NoError(t, err)

	mux := setupRouter(handlers.NewHandlers(db, issuer, nil, zerolog.Nop()), testConfig(), zerolog.Nop())

	req := httptest.NewRequest(http.MethodOptions, "/expenses", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	cfg.App.LogLevel = "warn"

	logger := newLogger(cfg, &buf)
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"service":"expense-service"`)

	cfg.App.LogLevel = "bogus"
	assert.Equal(t, zerolog.InfoLevel, newLogger(cfg, &buf).GetLevel())
}

func TestSetupRouterRateLimitIgnoresForwardedFor(t *testing.T) {
	db, err := storage.NewDB(storage.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer db.Close()
	issuer, err := auth.NewJWTIssuer("secret", time.Minute)
	require.NoError(t, err)

	login := func(mux http.Handler, forwardedFor string) int {
		req := httptest.NewRequest(http.MethodPost, "/users/login", strings.NewReader(`{"email":"x@y.com","password":"pw"}`))
		req.RemoteAddr = "10.0.0.1:4321"
		req.Header.Set("X-Forwarded-For", forwardedFor)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		return w.Code
	}

	cfg := testConfig()
	cfg.Limits.RPS = 0.001
	cfg.Limits.Burst = 1
	h := handlers.NewHandlers(db, issuer, nil, zerolog.Nop())

	mux := setupRouter(h, cfg, zerolog.Nop())
	codes := make([]int, 0, 5)
	for i := range 5 {
		codes = append(codes, login(mux, fmt.Sprintf("203.0.113.%d", i+1)))
	}
	assert.Equal(t, []int{
		http.StatusNotFound,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
	}, codes)

	cfg.HTTP.TrustProxyHeaders = true
	trusted := setupRouter(h, cfg, zerolog.Nop())
	assert.Equal(t, http.StatusNotFound, login(trusted, "203.0.113.1"))
	assert.Equal(t, http.StatusNotFound, login(trusted, "203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, login(trusted, "203.0.113.1"))
}
