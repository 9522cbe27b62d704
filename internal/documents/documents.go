// Package documents persists the preference and meal plan documents as JSON
// objects in a blob.Store.
package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fdg312/meal-e/internal/blob"
)

const (
	PreferencesKey = "preferences.json"
	PlanKey        = "meal_plan.json"

	contentType = "application/json"
)

// ErrNotFound is returned when a document has never been saved.
var ErrNotFound = errors.New("document not found")

type Store struct {
	blobs blob.Store
}

func NewStore(blobs blob.Store) *Store {
	return &Store{blobs: blobs}
}

// LoadPreferences returns the stored preferences. A missing document yields
// ErrNotFound; callers decide whether that means "empty".
func (s *Store) LoadPreferences(ctx context.Context) (map[string]any, error) {
	prefs := make(map[string]any)
	if err := s.load(ctx, PreferencesKey, &prefs); err != nil {
		return nil, err
	}
	if prefs == nil {
		prefs = make(map[string]any)
	}
	return prefs, nil
}

func (s *Store) SavePreferences(ctx context.Context, prefs map[string]any) error {
	return s.save(ctx, PreferencesKey, prefs)
}

// LoadPlan decodes the cached plan document into dst.
func (s *Store) LoadPlan(ctx context.Context, dst any) error {
	return s.load(ctx, PlanKey, dst)
}

func (s *Store) SavePlan(ctx context.Context, plan any) error {
	return s.save(ctx, PlanKey, plan)
}

func (s *Store) load(ctx context.Context, key string, dst any) error {
	data, err := s.blobs.GetObject(ctx, key)
	if errors.Is(err, blob.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	if _, err := s.blobs.PutObject(ctx, key, buf.Bytes(), contentType); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
