package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/fdg312/meal-e/internal/nutrients"
	"github.com/fdg312/meal-e/internal/storage"
)

// MemoryStorage - in-memory реализация storage.Storage
type MemoryStorage struct {
	mu        sync.RWMutex
	nextID    int64
	pantry    map[int64]storage.PantryItem
	nutrients map[string]nutrients.Nutrients
}

func New() *MemoryStorage {
	return &MemoryStorage{
		nextID:    1,
		pantry:    make(map[int64]storage.PantryItem),
		nutrients: make(map[string]nutrients.Nutrients),
	}
}

// PutNutrients заполняет таблицу нутриентов напрямую (перезаписывает строку)
func (m *MemoryStorage) PutNutrients(name string, n nutrients.Nutrients) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nutrients[name] = n
}

func (m *MemoryStorage) ListPantry(ctx context.Context) ([]storage.PantryItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]storage.PantryItem, 0, len(m.pantry))
	for _, item := range m.pantry {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *MemoryStorage) ListPlanIngredients(ctx context.Context) ([]storage.PlanIngredient, error) {
	items, err := m.ListPantry(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]storage.PlanIngredient, 0, len(items))
	for _, item := range items {
		out = append(out, storage.PlanIngredient{
			Name:        item.Name,
			Brand:       item.Brand,
			Quantity:    item.Quantity,
			ServingSize: item.ServingSize,
			ExpiryDate:  item.ExpiryDate,
		})
	}
	return out, nil
}

func (m *MemoryStorage) CreatePantryItem(ctx context.Context, item storage.PantryItem) (storage.PantryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item.ID = m.nextID
	m.nextID++
	m.pantry[item.ID] = item

	if _, ok := m.nutrients[item.Name]; !ok {
		m.nutrients[item.Name] = item.Nutrients
	}
	return item, nil
}

func (m *MemoryStorage) DeletePantryItem(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pantry, id)
	return nil
}

func (m *MemoryStorage) LookupNutrients(ctx context.Context, names []string) (map[string]nutrients.Nutrients, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]nutrients.Nutrients, len(names))
	for _, name := range names {
		if row, ok := m.nutrients[name]; ok {
			out[name] = row
		}
	}
	return out, nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
