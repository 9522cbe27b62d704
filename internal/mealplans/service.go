package mealplans

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/fdg312/meal-e/internal/ai"
	"github.com/fdg312/meal-e/internal/documents"
	"github.com/fdg312/meal-e/internal/storage"
)

// ErrPlanNotFound is returned when no plan has been generated yet.
var ErrPlanNotFound = errors.New("meal plan not found")

// UpstreamError wraps a failure of the plan generator or its output.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string { return "plan generation failed: " + e.Err.Error() }
func (e *UpstreamError) Unwrap() error { return e.Err }

type IngredientSource interface {
	ListPlanIngredients(ctx context.Context) ([]storage.PlanIngredient, error)
}

type DocumentStore interface {
	LoadPreferences(ctx context.Context) (map[string]any, error)
	LoadPlan(ctx context.Context, dst any) error
	SavePlan(ctx context.Context, plan any) error
}

// Service handles meal plan generation and the cached plan document.
type Service struct {
	mu        sync.Mutex
	pantry    IngredientSource
	docs      DocumentStore
	provider  ai.Provider
	processor *Processor
	logger    *zap.Logger
}

func NewService(pantry IngredientSource, docs DocumentStore, provider ai.Provider, processor *Processor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		pantry:    pantry,
		docs:      docs,
		provider:  provider,
		processor: processor,
		logger:    logger.Named("mealplans"),
	}
}

// GetCached returns the last generated plan.
func (s *Service) GetCached(ctx context.Context) (Plan, error) {
	var plan Plan
	err := s.docs.LoadPlan(ctx, &plan)
	if errors.Is(err, documents.ErrNotFound) {
		return Plan{}, ErrPlanNotFound
	}
	if err != nil {
		return Plan{}, err
	}
	return plan, nil
}

// Generate builds a new plan from the pantry and preferences, computes macros
// and overwrites the cached plan. Concurrent calls run one at a time.
func (s *Service) Generate(ctx context.Context) (Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pantry, err := s.pantry.ListPlanIngredients(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to load pantry: %w", err)
	}

	prefs, err := s.docs.LoadPreferences(ctx)
	if errors.Is(err, documents.ErrNotFound) {
		prefs = map[string]any{}
	} else if err != nil {
		return Plan{}, fmt.Errorf("failed to load preferences: %w", err)
	}

	text, err := s.provider.GeneratePlan(ctx, ai.PlanRequest{Pantry: pantry, Preferences: prefs})
	if err != nil {
		return Plan{}, &UpstreamError{Err: err}
	}

	days, err := ParseGenerated(text)
	if err != nil {
		s.logger.Warn("generator returned an unusable plan", zap.Error(err), zap.Int("response_bytes", len(text)))
		return Plan{}, &UpstreamError{Err: err}
	}

	plan, err := s.processor.ProcessPlan(ctx, days)
	if err != nil {
		return Plan{}, err
	}

	if err := s.docs.SavePlan(ctx, plan); err != nil {
		return Plan{}, fmt.Errorf("failed to save meal plan: %w", err)
	}

	s.logger.Info("meal plan generated", zap.Int("days", len(plan.Plan)), zap.Int("pantry_items", len(pantry)))
	return plan, nil
}
