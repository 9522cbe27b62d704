package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdg312/meal-e/internal/config"
)

func testConfig(mode string, required bool) *config.Config {
	return &config.Config{
		AuthMode:      mode,
		AuthRequired:  required,
		JWTSecret:     "test-secret-key-for-testing-only",
		JWTIssuer:     "meal-e-test",
		JWTTTLMinutes: 60,
	}
}

func issueDevToken(t *testing.T, svc *Service) string {
	t.Helper()
	w := httptest.NewRecorder()
	NewHandlers(svc).HandleDevAuth(w, httptest.NewRequest(http.MethodPost, "/auth/dev", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp DevAuthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, DevUserID, resp.UserID)
	return resp.AccessToken
}

func TestHandleDevAuth_IssuesVerifiableToken(t *testing.T) {
	svc := NewService(testConfig(config.AuthModeDev, false))
	token := issueDevToken(t, svc)

	sub, err := svc.VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, DevUserID, sub)
}

func TestHandleDevAuth_DisabledMode(t *testing.T) {
	svc := NewService(testConfig(config.AuthModeNone, false))
	w := httptest.NewRecorder()
	NewHandlers(svc).HandleDevAuth(w, httptest.NewRequest(http.MethodPost, "/auth/dev", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "Dev auth is disabled"}`, w.Body.String())
}

func TestVerifyJWT_Rejects(t *testing.T) {
	cfg := testConfig(config.AuthModeDev, false)
	svc := NewService(cfg)

	other := NewService(&config.Config{AuthMode: config.AuthModeDev, JWTSecret: "other", JWTIssuer: cfg.JWTIssuer, JWTTTLMinutes: 60})
	foreign, err := other.generateJWT("someone", time.Hour)
	require.NoError(t, err)

	wrongIssuer := NewService(&config.Config{AuthMode: config.AuthModeDev, JWTSecret: cfg.JWTSecret, JWTIssuer: "elsewhere", JWTTTLMinutes: 60})
	misissued, err := wrongIssuer.generateJWT("someone", time.Hour)
	require.NoError(t, err)

	expired, err := svc.generateJWT("someone", -time.Minute)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x", "iss": cfg.JWTIssuer})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"wrong issuer": misissued,
		"expired":      expired,
		"alg none":     unsigned,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.VerifyJWT(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := GetUserID(r.Context())
		w.Write([]byte(userID))
	})
}

func TestPrincipal_SeesUserFromInnerContext(t *testing.T) {
	ctx, principal := WithPrincipal(context.Background())
	assert.Empty(t, principal.UserID())

	inner := WithUserID(ctx, "user-42")
	userID, ok := GetUserID(inner)
	assert.True(t, ok)
	assert.Equal(t, "user-42", userID)
	assert.Equal(t, "user-42", principal.UserID())

	_, ok = GetUserID(ctx)
	assert.False(t, ok)

	var missing *Principal
	assert.Empty(t, missing.UserID())
}

func TestMiddleware_RequireAuth(t *testing.T) {
	cfg := testConfig(config.AuthModeDev, true)
	svc := NewService(cfg)
	handler := NewMiddleware(cfg, svc, nil).Wrap(echoUser())
	token := issueDevToken(t, svc)

	tests := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{"missing token", "/pantry", "", http.StatusUnauthorized, ""},
		{"bad scheme", "/pantry", "Basic abc", http.StatusUnauthorized, ""},
		{"valid token", "/pantry", "Bearer " + token, http.StatusOK, DevUserID},
		{"healthz is public", "/healthz", "", http.StatusOK, ""},
		{"auth is public", "/auth/dev", "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestMiddleware_OptionalAuth(t *testing.T) {
	cfg := testConfig(config.AuthModeDev, false)
	svc := NewService(cfg)
	handler := NewMiddleware(cfg, svc, nil).Wrap(echoUser())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pantry", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/pantry", nil)
	req.Header.Set("Authorization", "Bearer broken")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error": "Invalid or expired token"}`, w.Body.String())
}
