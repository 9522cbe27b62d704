package mealplans

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fdg312/meal-e/internal/nutrients"
)

// IngredientRef is one generated ingredient entry, encoded on the wire as the
// pair [multiplier, "display"].
type IngredientRef struct {
	Quantity float64
	Display  string
}

func (r *IngredientRef) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("ingredient must be a [quantity, display] pair: %w", err)
	}
	if len(pair) < 1 || len(pair) > 2 {
		return fmt.Errorf("ingredient pair must have 1 or 2 elements, got %d", len(pair))
	}

	var ref IngredientRef
	if err := json.Unmarshal(pair[0], &ref.Quantity); err != nil {
		return fmt.Errorf("ingredient quantity must be a number: %w", err)
	}
	if len(pair) == 2 {
		if err := json.Unmarshal(pair[1], &ref.Display); err != nil {
			return fmt.Errorf("ingredient display must be a string: %w", err)
		}
	}

	*r = ref
	return nil
}

func (r IngredientRef) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{r.Quantity, r.Display})
}

// Meal field keys the processor treats specially. Every other key the
// generator returns is carried through untouched.
const (
	fieldIngredients = "ingredients"
	fieldMacros      = "macros"
)

// RawMeal is a meal as returned by the generator, before post-processing.
// Only ingredients are typed; Fields keeps every other key verbatim.
// Macros is whatever the generator put there and is never trusted.
type RawMeal struct {
	Fields      map[string]json.RawMessage
	Ingredients map[string]IngredientRef
	Macros      json.RawMessage
}

func (m *RawMeal) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("meal must be an object: %w", err)
	}

	var meal RawMeal
	if raw, ok := fields[fieldIngredients]; ok {
		if err := json.Unmarshal(raw, &meal.Ingredients); err != nil {
			return fmt.Errorf("meal ingredients: %w", err)
		}
		delete(fields, fieldIngredients)
	}
	if raw, ok := fields[fieldMacros]; ok {
		meal.Macros = raw
		delete(fields, fieldMacros)
	}
	meal.Fields = fields

	*m = meal
	return nil
}

// Text renders a passthrough field for display.
func (m RawMeal) Text(key string) string {
	return fieldText(m.Fields[key])
}

type RawDay struct {
	Day   string    `json:"day"`
	Meals []RawMeal `json:"meals"`
}

// Meal is a post-processed meal: ingredients map to display strings and
// macros are computed from the nutrient table. Fields holds the remaining
// generator keys (name, recipe, prep_time_minutes and so on) as they came.
type Meal struct {
	Fields      map[string]json.RawMessage
	Ingredients map[string]string
	Macros      nutrients.Totals
}

func (m Meal) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Fields)+2)
	for key, raw := range m.Fields {
		out[key] = raw
	}
	ingredients := m.Ingredients
	if ingredients == nil {
		ingredients = map[string]string{}
	}
	out[fieldIngredients] = ingredients
	out[fieldMacros] = m.Macros
	return json.Marshal(out)
}

func (m *Meal) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var meal Meal
	if raw, ok := fields[fieldIngredients]; ok {
		if err := json.Unmarshal(raw, &meal.Ingredients); err != nil {
			return fmt.Errorf("meal ingredients: %w", err)
		}
		delete(fields, fieldIngredients)
	}
	if raw, ok := fields[fieldMacros]; ok {
		if err := json.Unmarshal(raw, &meal.Macros); err != nil {
			return fmt.Errorf("meal macros: %w", err)
		}
		delete(fields, fieldMacros)
	}
	meal.Fields = fields

	*m = meal
	return nil
}

// Text renders a passthrough field for display. Strings come back unquoted,
// lists are joined with "; " and missing or null fields are empty.
func (m Meal) Text(key string) string {
	return fieldText(m.Fields[key])
}

func fieldText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			if text := fieldText(item); text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, "; ")
	}

	return string(raw)
}

type Day struct {
	Day   string `json:"day"`
	Meals []Meal `json:"meals"`
}

// Plan is the cached meal plan document.
type Plan struct {
	Plan []Day `json:"plan"`
}

type errorResponse struct {
	Error string `json:"error"`
}
