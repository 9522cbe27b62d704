// Package nutrients computes nutrient totals for a set of ingredients.
//
// Every nutrient is addressed by its JSON key through a fixed field table;
// nothing relies on column positions of the lookup source.
package nutrients

import (
	"context"
	"fmt"
	"sort"
)

const (
	KeyCalories      = "calories"
	KeyCarbohydrates = "carbohydrates"
	KeyProtein       = "protein"
	KeyFat           = "fat"
	KeySaturatedFat  = "saturated_fat"
	KeyTransFat      = "trans_fat"
	KeySugar         = "sugar"
	KeyAddedSugar    = "added_sugar"
	KeyFiber         = "fiber"
	KeySodium        = "sodium"
	KeyIron          = "iron"
	KeyCalcium       = "calcium"
	KeyPotassium     = "potassium"
	KeyVitaminD      = "vitamin_d"
)

// Nutrients is one ingredient's nutrient row. A nil field means the value
// is unknown.
type Nutrients struct {
	Calories      *float64 `json:"calories"`
	Carbohydrates *float64 `json:"carbohydrates"`
	Protein       *float64 `json:"protein"`
	Fat           *float64 `json:"fat"`
	SaturatedFat  *float64 `json:"saturated_fat"`
	TransFat      *float64 `json:"trans_fat"`
	Sugar         *float64 `json:"sugar"`
	AddedSugar    *float64 `json:"added_sugar"`
	Fiber         *float64 `json:"fiber"`
	Sodium        *float64 `json:"sodium"`
	Iron          *float64 `json:"iron"`
	Calcium       *float64 `json:"calcium"`
	Potassium     *float64 `json:"potassium"`
	VitaminD      *float64 `json:"vitamin_d"`
}

// Totals is the summed nutrient vector of a meal. All keys are always present.
type Totals struct {
	Calories      float64 `json:"calories"`
	Carbohydrates float64 `json:"carbohydrates"`
	Protein       float64 `json:"protein"`
	Fat           float64 `json:"fat"`
	SaturatedFat  float64 `json:"saturated_fat"`
	TransFat      float64 `json:"trans_fat"`
	Sugar         float64 `json:"sugar"`
	AddedSugar    float64 `json:"added_sugar"`
	Fiber         float64 `json:"fiber"`
	Sodium        float64 `json:"sodium"`
	Iron          float64 `json:"iron"`
	Calcium       float64 `json:"calcium"`
	Potassium     float64 `json:"potassium"`
	VitaminD      float64 `json:"vitamin_d"`
}

type field struct {
	key    string
	row    func(*Nutrients) **float64
	totals func(*Totals) *float64
}

var fields = []field{
	{KeyCalories, func(n *Nutrients) **float64 { return &n.Calories }, func(t *Totals) *float64 { return &t.Calories }},
	{KeyCarbohydrates, func(n *Nutrients) **float64 { return &n.Carbohydrates }, func(t *Totals) *float64 { return &t.Carbohydrates }},
	{KeyProtein, func(n *Nutrients) **float64 { return &n.Protein }, func(t *Totals) *float64 { return &t.Protein }},
	{KeyFat, func(n *Nutrients) **float64 { return &n.Fat }, func(t *Totals) *float64 { return &t.Fat }},
	{KeySaturatedFat, func(n *Nutrients) **float64 { return &n.SaturatedFat }, func(t *Totals) *float64 { return &t.SaturatedFat }},
	{KeyTransFat, func(n *Nutrients) **float64 { return &n.TransFat }, func(t *Totals) *float64 { return &t.TransFat }},
	{KeySugar, func(n *Nutrients) **float64 { return &n.Sugar }, func(t *Totals) *float64 { return &t.Sugar }},
	{KeyAddedSugar, func(n *Nutrients) **float64 { return &n.AddedSugar }, func(t *Totals) *float64 { return &t.AddedSugar }},
	{KeyFiber, func(n *Nutrients) **float64 { return &n.Fiber }, func(t *Totals) *float64 { return &t.Fiber }},
	{KeySodium, func(n *Nutrients) **float64 { return &n.Sodium }, func(t *Totals) *float64 { return &t.Sodium }},
	{KeyIron, func(n *Nutrients) **float64 { return &n.Iron }, func(t *Totals) *float64 { return &t.Iron }},
	{KeyCalcium, func(n *Nutrients) **float64 { return &n.Calcium }, func(t *Totals) *float64 { return &t.Calcium }},
	{KeyPotassium, func(n *Nutrients) **float64 { return &n.Potassium }, func(t *Totals) *float64 { return &t.Potassium }},
	{KeyVitaminD, func(n *Nutrients) **float64 { return &n.VitaminD }, func(t *Totals) *float64 { return &t.VitaminD }},
}

// Keys returns the nutrient keys in canonical order.
func Keys() []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	return keys
}

func lookupField(key string) (field, bool) {
	for _, f := range fields {
		if f.key == key {
			return f, true
		}
	}
	return field{}, false
}

// Get returns the value for key and whether it is known.
func (n Nutrients) Get(key string) (float64, bool) {
	f, ok := lookupField(key)
	if !ok {
		return 0, false
	}
	v := *f.row(&n)
	if v == nil {
		return 0, false
	}
	return *v, true
}

// Set stores v under key. Unknown keys return an error.
func (n *Nutrients) Set(key string, v *float64) error {
	f, ok := lookupField(key)
	if !ok {
		return fmt.Errorf("unknown nutrient %q", key)
	}
	*f.row(n) = v
	return nil
}

// Values returns the nutrient values in canonical order, for row inserts.
func (n Nutrients) Values() []any {
	out := make([]any, len(fields))
	for i, f := range fields {
		out[i] = *f.row(&n)
	}
	return out
}

// Get returns the total for key. Unknown keys read as zero.
func (t Totals) Get(key string) float64 {
	f, ok := lookupField(key)
	if !ok {
		return 0
	}
	return *f.totals(&t)
}

// Lookup fetches nutrient rows for a batch of ingredient names. Names with no
// row are simply absent from the result.
type Lookup interface {
	LookupNutrients(ctx context.Context, names []string) (map[string]Nutrients, error)
}

// Aggregate sums value*multiplier over every row and every known, non-zero
// value. A row whose name is not in quantities counts once.
func Aggregate(quantities map[string]float64, rows map[string]Nutrients) Totals {
	var totals Totals
	for name, row := range rows {
		multiplier, ok := quantities[name]
		if !ok {
			multiplier = 1.0
		}
		for _, f := range fields {
			v := *f.row(&row)
			if v == nil || *v == 0 {
				continue
			}
			*f.totals(&totals) += *v * multiplier
		}
	}
	return totals
}

// Aggregator computes totals against a Lookup.
type Aggregator struct {
	lookup Lookup
}

func NewAggregator(lookup Lookup) *Aggregator {
	return &Aggregator{lookup: lookup}
}

// Compute fetches rows for every name in quantities with one lookup call and
// aggregates them.
func (a *Aggregator) Compute(ctx context.Context, quantities map[string]float64) (Totals, error) {
	if len(quantities) == 0 {
		return Totals{}, nil
	}

	names := make([]string, 0, len(quantities))
	for name := range quantities {
		names = append(names, name)
	}
	sort.Strings(names)

	rows, err := a.lookup.LookupNutrients(ctx, names)
	if err != nil {
		return Totals{}, fmt.Errorf("failed to lookup nutrients: %w", err)
	}

	return Aggregate(quantities, rows), nil
}
