package ai

import (
	"context"

	"github.com/fdg312/meal-e/internal/storage"
)

// Provider turns pantry contents and preferences into raw meal plan text.
// The text is expected to be a JSON document of the form {"plan": [...]};
// providers do not validate it.
type Provider interface {
	GeneratePlan(ctx context.Context, req PlanRequest) (string, error)
}

type PlanRequest struct {
	Pantry      []storage.PlanIngredient
	Preferences map[string]any
}
