package storage

import (
	"context"

	"github.com/fdg312/meal-e/internal/nutrients"
)

// PantryItem - строка из pantry_items
type PantryItem struct {
	ID          int64
	Name        string
	Brand       string
	Quantity    *float64
	ServingSize *string
	ExpiryDate  *string // YYYY-MM-DD
	Nutrients   nutrients.Nutrients
}

// PlanIngredient - облегчённая проекция pantry_items для промпта генерации
type PlanIngredient struct {
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Quantity    *float64 `json:"quantity"`
	ServingSize *string  `json:"serving_size"`
	ExpiryDate  *string  `json:"expiry_date"`
}

// PantryStorage - интерфейс для работы с кладовой и таблицей нутриентов
type PantryStorage interface {
	nutrients.Lookup

	// ListPantry возвращает все продукты кладовой, упорядоченные по id
	ListPantry(ctx context.Context) ([]PantryItem, error)

	// ListPlanIngredients возвращает проекцию кладовой для генерации плана
	ListPlanIngredients(ctx context.Context) ([]PlanIngredient, error)

	// CreatePantryItem добавляет продукт и регистрирует его нутриенты по имени
	CreatePantryItem(ctx context.Context, item PantryItem) (PantryItem, error)

	// DeletePantryItem удаляет продукт; отсутствующий id не является ошибкой
	DeletePantryItem(ctx context.Context, id int64) error
}

// Storage - всё хранилище приложения
type Storage interface {
	PantryStorage

	// Close закрывает соединение (для Postgres)
	Close() error
}
