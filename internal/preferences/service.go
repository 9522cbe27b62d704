package preferences

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/fdg312/meal-e/internal/documents"
)

// KnownKeys lists the preference keys the client app writes. Other keys are
// stored as-is.
var KnownKeys = map[string]bool{
	"name":                true,
	"age":                 true,
	"household_size":      true,
	"meals_per_day":       true,
	"macro_targets":       true,
	"dietary_restriction": true,
	"allergies":           true,
	"cooking_proficiency": true,
	"cuisine_preferences": true,
}

type DocumentStore interface {
	LoadPreferences(ctx context.Context) (map[string]any, error)
	SavePreferences(ctx context.Context, prefs map[string]any) error
}

// Service reads and merges the preference document.
type Service struct {
	mu     sync.Mutex
	docs   DocumentStore
	logger *zap.Logger
}

func NewService(docs DocumentStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{docs: docs, logger: logger.Named("preferences")}
}

// Get returns the stored preferences, or an empty mapping if none were saved.
func (s *Service) Get(ctx context.Context) (map[string]any, error) {
	prefs, err := s.docs.LoadPreferences(ctx)
	if errors.Is(err, documents.ErrNotFound) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}
	return prefs, nil
}

// Update overwrites the keys present in updates, keeps every other key and
// returns the merged mapping.
func (s *Service) Update(ctx context.Context, updates map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	var unknown []string
	for key, value := range updates {
		if !KnownKeys[key] {
			unknown = append(unknown, key)
		}
		prefs[key] = value
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		s.logger.Debug("storing unrecognized preference keys", zap.Strings("keys", unknown))
	}

	if err := s.docs.SavePreferences(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}
