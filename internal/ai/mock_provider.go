package ai

import (
	"context"
	"encoding/json"
	"fmt"
)

var (
	mockDays      = []string{"Monday", "Tuesday", "Wednesday"}
	mockMealTypes = []string{"breakfast", "lunch", "dinner", "snack"}
)

// MockProvider builds a small deterministic plan from the pantry without
// calling any external service.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

type mockMeal struct {
	Name            string         `json:"name"`
	Type            string         `json:"type"`
	Recipe          string         `json:"recipe"`
	PrepTimeMinutes int            `json:"prep_time_minutes"`
	Difficulty      string         `json:"difficulty"`
	Ingredients     map[string]any `json:"ingredients"`
}

type mockDay struct {
	Day   string     `json:"day"`
	Meals []mockMeal `json:"meals"`
}

func (p *MockProvider) GeneratePlan(ctx context.Context, req PlanRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	mealsPerDay := 3
	if v, ok := req.Preferences["meals_per_day"].(float64); ok && v >= 1 && v <= float64(len(mockMealTypes)) {
		mealsPerDay = int(v)
	}

	days := make([]mockDay, 0, len(mockDays))
	cursor := 0
	for _, dayName := range mockDays {
		day := mockDay{Day: dayName, Meals: make([]mockMeal, 0, mealsPerDay)}
		for m := 0; m < mealsPerDay; m++ {
			mealType := mockMealTypes[m]
			meal := mockMeal{
				Type:            mealType,
				Recipe:          "Combine the ingredients and cook until done.",
				PrepTimeMinutes: 10 + 5*m,
				Difficulty:      "easy",
				Ingredients:     map[string]any{},
			}

			name := "Pantry " + mealType
			for k := 0; k < 2 && len(req.Pantry) > 0; k++ {
				item := req.Pantry[cursor%len(req.Pantry)]
				cursor++
				display := "1 serving"
				if item.ServingSize != nil && *item.ServingSize != "" {
					display = *item.ServingSize
				}
				meal.Ingredients[item.Name] = []any{1.0, display}
				if k == 0 {
					name = fmt.Sprintf("%s %s", item.Name, mealType)
				}
			}
			meal.Name = name
			day.Meals = append(day.Meals, meal)
		}
		days = append(days, day)
	}

	out, err := json.Marshal(map[string]any{"plan": days})
	if err != nil {
		return "", err
	}
	return string(out), nil
}
