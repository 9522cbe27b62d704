package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fdg312/meal-e/internal/ai"
	"github.com/fdg312/meal-e/internal/auth"
	"github.com/fdg312/meal-e/internal/blob"
	"github.com/fdg312/meal-e/internal/config"
	"github.com/fdg312/meal-e/internal/mealplans"
	"github.com/fdg312/meal-e/internal/storage/memory"
)

func newTestServer(t *testing.T, cfg *config.Config) (http.Handler, *observer.ObservedLogs) {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{Port: 8080, AuthMode: config.AuthModeNone}
	}
	core, logs := observer.New(zap.InfoLevel)
	srv := New(cfg, Deps{
		Storage:  memory.New(),
		Blobs:    blob.NewMemoryStore(),
		Provider: ai.NewMockProvider(),
		Logger:   zap.New(core),
	})
	t.Cleanup(func() { srv.Close() })
	return srv.Handler(), logs
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	h, _ := newTestServer(t, nil)

	w := do(t, h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestHealthzMethodNotAllowed(t *testing.T) {
	h, _ := newTestServer(t, nil)

	w := do(t, h, http.MethodPost, "/healthz", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestEndToEnd_PantryPreferencesAndPlan(t *testing.T) {
	h, logs := newTestServer(t, nil)

	w := do(t, h, http.MethodGet, "/meal-plan?generate=false", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "Meal plan not found"}`, w.Body.String())

	w = do(t, h, http.MethodPost, "/pantry", `{"name": "Oats", "brand": "Mill", "serving_size": "40 g", "nutrients": {"calories": 150, "protein": 5}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, h, http.MethodGet, "/pantry", "")
	require.Equal(t, http.StatusOK, w.Code)
	var pantry struct {
		Pantry []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"pantry"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&pantry))
	require.Len(t, pantry.Pantry, 1)
	assert.Equal(t, "Oats", pantry.Pantry[0].Name)

	w = do(t, h, http.MethodPut, "/preferences", `{"meals_per_day": 2, "diet": "vegan"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"meals_per_day": 2, "diet": "vegan"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/meal-plan?generate=true", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var plan mealplans.Plan
	require.NoError(t, json.NewDecoder(w.Body).Decode(&plan))
	require.Len(t, plan.Plan, 3)
	for _, day := range plan.Plan {
		require.Len(t, day.Meals, 2)
		for _, meal := range day.Meals {
			assert.NotEmpty(t, meal.Text("name"))
			assert.Equal(t, map[string]string{"Oats": "40 g"}, meal.Ingredients)
			assert.InDelta(t, 150.0, meal.Macros.Calories, 1e-9)
			assert.InDelta(t, 5.0, meal.Macros.Protein, 1e-9)
		}
	}

	w = do(t, h, http.MethodGet, "/meal-plan/export?format=csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, bytes.Count(w.Body.Bytes(), []byte("\n")))

	w = do(t, h, http.MethodDelete, "/pantry?id=1", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, http.MethodGet, "/pantry", "")
	assert.JSONEq(t, `{"pantry": []}`, w.Body.String())

	assert.NotZero(t, logs.FilterMessage("request completed").Len())
}

func TestDevAuthRoute(t *testing.T) {
	cfg := &config.Config{
		Port:          8080,
		AuthMode:      config.AuthModeDev,
		AuthRequired:  true,
		JWTSecret:     "secret",
		JWTIssuer:     "meal-e-test",
		JWTTTLMinutes: 5,
	}
	h, logs := newTestServer(t, cfg)

	w := do(t, h, http.MethodGet, "/pantry", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, h, http.MethodPost, "/auth/dev", "")
	require.Equal(t, http.StatusOK, w.Code)
	var token struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&token))

	req := httptest.NewRequest(http.MethodGet, "/pantry", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	entries := logs.FilterMessage("request completed").FilterField(zap.String("path", "/pantry")).All()
	require.Len(t, entries, 2)
	assert.NotContains(t, entries[0].ContextMap(), "user_id")
	assert.Equal(t, auth.DevUserID, entries[1].ContextMap()["user_id"])
}

func TestDevAuthRouteAbsentWhenAuthDisabled(t *testing.T) {
	h, _ := newTestServer(t, nil)

	w := do(t, h, http.MethodPost, "/auth/dev", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestID_PreservesIncomingHeader(t *testing.T) {
	h, logs := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	entries := logs.FilterField(zap.String("request_id", "abc-123")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/healthz", entries[0].ContextMap()["path"])
}
