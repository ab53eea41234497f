// cmd/api/middleware_test.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"GopherStarter/internal/ratelimiter"
	"GopherStarter/internal/store"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestApplication(t *testing.T) (*application, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zap.InfoLevel)
	app := &application{
		logger:    zap.New(core).Sugar(),
		rateStore: ratelimiter.NewMemoryStore(),
	}
	return app, logs
}

func withUser(r *http.Request, user *store.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userCtxKey, user))
}

func TestRequestLoggerMiddleware_RedactsSensitiveHeaders(t *testing.T) {
	app, logs := newTestApplication(t)

	h := app.RequestLoggerMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	r := httptest.NewRequest("GET", "/v1/users/me", nil)
	r.Header.Set("Authorization", "Bearer token-super-secreto")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	entries := logs.All()
	assert.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/v1/users/me", fields["path"])
	assert.EqualValues(t, http.StatusNoContent, fields["status"])

	// El valor del token no puede aparecer en el log.
	headers, ok := fields["headers"].(map[string]string)
	assert.True(t, ok)
	assert.Equal(t, "[REDACTED]", headers["Authorization"])
}

func TestRateLimit_UsesSharedStoreAndAppHandler(t *testing.T) {
	app, _ := newTestApplication(t)

	cfg := ratelimiter.DefaultConfig()
	cfg.Limit = 2
	cfg.Handler = app.rateLimitExceededResponse
	h := app.rateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest("GET", "/v1/health", nil)
		r.Header.Set("X-Forwarded-For", "1.2.3.4")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	assert.Equal(t, http.StatusOK, do().Code)
	assert.Equal(t, http.StatusOK, do().Code)

	// El rechazo sale con el sobre de error de la app.
	w := do()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	var body struct {
		Error string `json:"error"`
	}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "límite de peticiones excedido")
}

func TestUserIDFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/users/me", nil)

	_, ok := userIDFromRequest(r)
	assert.False(t, ok)

	id, ok := userIDFromRequest(withUser(r, &store.User{ID: 42}))
	assert.True(t, ok)
	assert.Equal(t, "42", id)
}

func TestSkipForAdmins(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/users/me", nil)

	assert.False(t, skipForAdmins(r))
	assert.False(t, skipForAdmins(withUser(r, &store.User{Role: store.Role{Name: "user"}})))
	assert.True(t, skipForAdmins(withUser(r, &store.User{Role: store.Role{Name: "admin"}})))
}
