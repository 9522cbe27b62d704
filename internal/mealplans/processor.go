package mealplans

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fdg312/meal-e/internal/nutrients"
)

// ErrMalformedPlan marks generator output that is not a usable plan document.
var ErrMalformedPlan = errors.New("malformed meal plan")

// ParseGenerated decodes generator output of the form {"plan": [...]}.
// Surrounding whitespace and a markdown code fence are tolerated.
func ParseGenerated(text string) ([]RawDay, error) {
	body := stripCodeFence(strings.TrimSpace(text))

	var doc struct {
		Plan *[]RawDay `json:"plan"`
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPlan, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after plan document", ErrMalformedPlan)
	}
	if doc.Plan == nil {
		return nil, fmt.Errorf("%w: missing \"plan\"", ErrMalformedPlan)
	}
	return *doc.Plan, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		return s
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// Processor attaches computed macros to generated meals.
type Processor struct {
	aggregator *nutrients.Aggregator
}

func NewProcessor(aggregator *nutrients.Aggregator) *Processor {
	return &Processor{aggregator: aggregator}
}

// ProcessMeal computes macros from the ingredient multipliers and replaces the
// ingredient pairs with their display strings.
func (p *Processor) ProcessMeal(ctx context.Context, raw RawMeal) (Meal, error) {
	quantities := make(map[string]float64, len(raw.Ingredients))
	display := make(map[string]string, len(raw.Ingredients))
	for name, ref := range raw.Ingredients {
		quantities[name] = ref.Quantity
		display[name] = ref.Display
	}

	macros, err := p.aggregator.Compute(ctx, quantities)
	if err != nil {
		return Meal{}, err
	}

	return Meal{
		Fields:      raw.Fields,
		Ingredients: display,
		Macros:      macros,
	}, nil
}

// ProcessPlan drops any generated macros and processes every meal, keeping
// day and meal order.
func (p *Processor) ProcessPlan(ctx context.Context, days []RawDay) (Plan, error) {
	plan := Plan{Plan: make([]Day, 0, len(days))}
	for _, rawDay := range days {
		day := Day{Day: rawDay.Day, Meals: make([]Meal, 0, len(rawDay.Meals))}
		for _, rawMeal := range rawDay.Meals {
			rawMeal.Macros = nil
			meal, err := p.ProcessMeal(ctx, rawMeal)
			if err != nil {
				return Plan{}, fmt.Errorf("failed to process meal %q: %w", rawMeal.Text("name"), err)
			}
			day.Meals = append(day.Meals, meal)
		}
		plan.Plan = append(plan.Plan, day)
	}
	return plan, nil
}
