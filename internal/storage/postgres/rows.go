package postgres

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/fdg312/meal-e/internal/nutrients"
	"github.com/fdg312/meal-e/internal/storage"
)

// Строки читаются через pgx.RowToMap и разбираются по именам колонок,
// поэтому переопределённые запросы могут менять порядок колонок
// и возвращать лишние (например, SELECT *).

const dateLayout = "2006-01-02"

func pantryItemFromRow(row map[string]any) (storage.PantryItem, error) {
	var item storage.PantryItem
	var err error

	id, ok := row["id"]
	if !ok {
		return item, fmt.Errorf("missing column %q", "id")
	}
	if item.ID, err = toInt64(id); err != nil {
		return item, fmt.Errorf("column id: %w", err)
	}

	ing, err := planIngredientFromRow(row)
	if err != nil {
		return item, err
	}
	item.Name = ing.Name
	item.Brand = ing.Brand
	item.Quantity = ing.Quantity
	item.ServingSize = ing.ServingSize
	item.ExpiryDate = ing.ExpiryDate

	if item.Nutrients, err = nutrientsFromRow(row); err != nil {
		return item, err
	}
	return item, nil
}

func planIngredientFromRow(row map[string]any) (storage.PlanIngredient, error) {
	var ing storage.PlanIngredient
	var err error

	if ing.Name, err = requiredName(row); err != nil {
		return ing, err
	}
	brand, err := toText(row["brand"])
	if err != nil {
		return ing, fmt.Errorf("column brand: %w", err)
	}
	if brand != nil {
		ing.Brand = *brand
	}
	if ing.Quantity, err = toFloat(row["quantity"]); err != nil {
		return ing, fmt.Errorf("column quantity: %w", err)
	}
	if ing.ServingSize, err = toText(row["serving_size"]); err != nil {
		return ing, fmt.Errorf("column serving_size: %w", err)
	}
	if ing.ExpiryDate, err = toText(row["expiry_date"]); err != nil {
		return ing, fmt.Errorf("column expiry_date: %w", err)
	}
	return ing, nil
}

// nutrientsFromRow fills every nutrient whose column is present. Absent
// columns stay unknown.
func nutrientsFromRow(row map[string]any) (nutrients.Nutrients, error) {
	var n nutrients.Nutrients
	for _, key := range nutrients.Keys() {
		v, err := toFloat(row[key])
		if err != nil {
			return n, fmt.Errorf("column %s: %w", key, err)
		}
		if err := n.Set(key, v); err != nil {
			return n, err
		}
	}
	return n, nil
}

func requiredName(row map[string]any) (string, error) {
	name, err := toText(row["name"])
	if err != nil {
		return "", fmt.Errorf("column name: %w", err)
	}
	if name == nil {
		return "", fmt.Errorf("missing column %q", "name")
	}
	return *name, nil
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int:
		return int64(x), nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

func toFloat(v any) (*float64, error) {
	var f float64
	switch x := v.(type) {
	case nil:
		return nil, nil
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case int16:
		f = float64(x)
	case pgtype.Numeric:
		f8, err := x.Float64Value()
		if err != nil {
			return nil, err
		}
		if !f8.Valid {
			return nil, nil
		}
		f = f8.Float64
	default:
		return nil, fmt.Errorf("unexpected type %T", v)
	}
	return &f, nil
}

func toText(v any) (*string, error) {
	var s string
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		s = x
	case []byte:
		s = string(x)
	case time.Time:
		s = x.Format(dateLayout)
	default:
		return nil, fmt.Errorf("unexpected type %T", v)
	}
	return &s, nil
}
