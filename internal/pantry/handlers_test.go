package pantry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdg312/meal-e/internal/nutrients"
	"github.com/fdg312/meal-e/internal/storage"
	"github.com/fdg312/meal-e/internal/storage/memory"
)

func ptr(v float64) *float64 { return &v }
func strPtr(s string) *string { return &s }

type brokenStorage struct {
	*memory.MemoryStorage
}

func (brokenStorage) ListPantry(context.Context) ([]storage.PantryItem, error) {
	return nil, errors.New("connection reset")
}

func (brokenStorage) DeletePantryItem(context.Context, int64) error {
	return errors.New("connection reset")
}

func seeded(t *testing.T) (*Handler, *memory.MemoryStorage) {
	t.Helper()
	store := memory.New()
	_, err := store.CreatePantryItem(context.Background(), storage.PantryItem{
		Name:        "Spinach",
		Brand:       "Green Co",
		Quantity:    ptr(200),
		ServingSize: strPtr("30g"),
		Nutrients:   nutrients.Nutrients{Calories: ptr(23), Protein: ptr(2.9)},
	})
	require.NoError(t, err)
	_, err = store.CreatePantryItem(context.Background(), storage.PantryItem{Name: "Chopped Garlic", Brand: "Spice"})
	require.NoError(t, err)
	return NewHandler(NewService(store), nil), store
}

func TestHandleList(t *testing.T) {
	h, _ := seeded(t)

	w := httptest.NewRecorder()
	h.HandleList(w, httptest.NewRequest(http.MethodGet, "/pantry", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Pantry []map[string]any `json:"pantry"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Len(t, body.Pantry, 2)

	first := body.Pantry[0]
	assert.Equal(t, float64(1), first["id"])
	assert.Equal(t, "Spinach", first["name"])
	assert.Equal(t, "30g", first["serving_size"])
	nut, ok := first["nutrients"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, nut, 14)
	assert.Equal(t, 23.0, nut["calories"])
	assert.Nil(t, nut["vitamin_d"])

	second := body.Pantry[1]
	assert.Nil(t, second["quantity"])
	assert.Nil(t, second["serving_size"])
}

func TestHandleList_EmptyPantryIsArray(t *testing.T) {
	h := NewHandler(NewService(memory.New()), nil)

	w := httptest.NewRecorder()
	h.HandleList(w, httptest.NewRequest(http.MethodGet, "/pantry", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"pantry": []}`, w.Body.String())
}

func TestHandleDelete(t *testing.T) {
	h, store := seeded(t)

	w := httptest.NewRecorder()
	h.HandleDelete(w, httptest.NewRequest(http.MethodDelete, "/pantry?id=1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	items, err := store.ListPantry(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Chopped Garlic", items[0].Name)

	w = httptest.NewRecorder()
	h.HandleDelete(w, httptest.NewRequest(http.MethodDelete, "/pantry?id=999", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandleDelete_BadID(t *testing.T) {
	h, _ := seeded(t)

	for _, target := range []string{"/pantry", "/pantry?id=abc", "/pantry?id=1.5"} {
		w := httptest.NewRecorder()
		h.HandleDelete(w, httptest.NewRequest(http.MethodDelete, target, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestHandleCreate(t *testing.T) {
	h, store := seeded(t)

	body := `{"name": " Oats ", "brand": "Mill", "quantity": 500, "serving_size": "40g",
		"expiry_date": "2026-12-01", "nutrients": {"calories": 389, "fiber": 10.6}}`
	w := httptest.NewRecorder()
	h.HandleCreate(w, httptest.NewRequest(http.MethodPost, "/pantry", bytes.NewBufferString(body)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created PantryItemDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.Equal(t, int64(3), created.ID)
	assert.Equal(t, "Oats", created.Name)
	require.NotNil(t, created.ExpiryDate)
	assert.Equal(t, "2026-12-01", *created.ExpiryDate)

	rows, err := store.LookupNutrients(context.Background(), []string{"Oats"})
	require.NoError(t, err)
	require.Contains(t, rows, "Oats")
	fiber, ok := rows["Oats"].Get(nutrients.KeyFiber)
	assert.True(t, ok)
	assert.Equal(t, 10.6, fiber)
}

func TestHandleCreate_Validation(t *testing.T) {
	h, _ := seeded(t)

	tests := map[string]string{
		"missing name":      `{"brand": "x"}`,
		"negative quantity": `{"name": "Rice", "quantity": -1}`,
		"bad date":          `{"name": "Rice", "expiry_date": "01/12/2026"}`,
		"negative nutrient": `{"name": "Rice", "nutrients": {"sodium": -3}}`,
		"not json":          `name=Rice`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.HandleCreate(w, httptest.NewRequest(http.MethodPost, "/pantry", strings.NewReader(body)))
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestStorageFailures(t *testing.T) {
	h := NewHandler(NewService(brokenStorage{memory.New()}), nil)

	w := httptest.NewRecorder()
	h.HandleList(w, httptest.NewRequest(http.MethodGet, "/pantry", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	h.HandleDelete(w, httptest.NewRequest(http.MethodDelete, "/pantry?id=1", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
