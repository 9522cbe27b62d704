package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fdg312/meal-e/internal/config"
	"github.com/fdg312/meal-e/internal/nutrients"
	"github.com/fdg312/meal-e/internal/storage"
)

const registerNutrientsQuery = `INSERT INTO ingredient_nutrients (name,
	calories, carbohydrates, protein, fat, saturated_fat, trans_fat, sugar, added_sugar,
	fiber, sodium, iron, calcium, potassium, vitamin_d)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
ON CONFLICT (name) DO NOTHING`

// PostgresStorage - Postgres реализация storage.Storage.
// Тексты запросов приходят из конфигурации и могут быть переопределены через env.
type PostgresStorage struct {
	pool    *pgxpool.Pool
	queries config.QueryConfig
}

func New(ctx context.Context, databaseURL string, queries config.QueryConfig) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStorage{pool: pool, queries: queries}, nil
}

func (s *PostgresStorage) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStorage) ListPantry(ctx context.Context) ([]storage.PantryItem, error) {
	rows, err := s.pool.Query(ctx, s.queries.Pantry)
	if err != nil {
		return nil, fmt.Errorf("failed to list pantry: %w", err)
	}

	collected, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("failed to read pantry: %w", err)
	}

	items := make([]storage.PantryItem, 0, len(collected))
	for _, row := range collected {
		item, err := pantryItemFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("failed to map pantry item: %w", err)
		}
		items = append(items, item)
	}

	return items, nil
}

func (s *PostgresStorage) ListPlanIngredients(ctx context.Context) ([]storage.PlanIngredient, error) {
	rows, err := s.pool.Query(ctx, s.queries.Ingredients)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan ingredients: %w", err)
	}

	collected, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan ingredients: %w", err)
	}

	out := make([]storage.PlanIngredient, 0, len(collected))
	for _, row := range collected {
		ing, err := planIngredientFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("failed to map plan ingredient: %w", err)
		}
		out = append(out, ing)
	}

	return out, nil
}

func (s *PostgresStorage) CreatePantryItem(ctx context.Context, item storage.PantryItem) (storage.PantryItem, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storage.PantryItem{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	args := []any{item.Name, item.Brand, item.Quantity, item.ServingSize, item.ExpiryDate}
	args = append(args, item.Nutrients.Values()...)

	if err := tx.QueryRow(ctx, s.queries.Insert, args...).Scan(&item.ID); err != nil {
		return storage.PantryItem{}, fmt.Errorf("failed to insert pantry item: %w", err)
	}

	nutrientArgs := append([]any{item.Name}, item.Nutrients.Values()...)
	if _, err := tx.Exec(ctx, registerNutrientsQuery, nutrientArgs...); err != nil {
		return storage.PantryItem{}, fmt.Errorf("failed to register nutrients: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storage.PantryItem{}, fmt.Errorf("failed to commit pantry item: %w", err)
	}

	return item, nil
}

func (s *PostgresStorage) DeletePantryItem(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, s.queries.Delete, id); err != nil {
		return fmt.Errorf("failed to delete pantry item: %w", err)
	}
	return nil
}

func (s *PostgresStorage) LookupNutrients(ctx context.Context, names []string) (map[string]nutrients.Nutrients, error) {
	out := make(map[string]nutrients.Nutrients, len(names))
	if len(names) == 0 {
		return out, nil
	}

	rows, err := s.pool.Query(ctx, s.queries.Nutrients, names)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup nutrients: %w", err)
	}

	collected, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("failed to read nutrients: %w", err)
	}

	for _, row := range collected {
		name, err := requiredName(row)
		if err != nil {
			return nil, fmt.Errorf("failed to map nutrients: %w", err)
		}
		values, err := nutrientsFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("failed to map nutrients for %q: %w", name, err)
		}
		out[name] = values
	}
	return out, nil
}
