package pantry

import (
	"context"
	"fmt"

	"github.com/fdg312/meal-e/internal/storage"
)

// Service handles pantry business logic.
type Service struct {
	storage storage.PantryStorage
}

func NewService(storage storage.PantryStorage) *Service {
	return &Service{storage: storage}
}

func (s *Service) List(ctx context.Context) ([]PantryItemDTO, error) {
	items, err := s.storage.ListPantry(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]PantryItemDTO, len(items))
	for i, item := range items {
		dtos[i] = toDTO(item)
	}
	return dtos, nil
}

func (s *Service) Add(ctx context.Context, req CreatePantryItemRequest) (PantryItemDTO, error) {
	if err := req.Validate(); err != nil {
		return PantryItemDTO{}, fmt.Errorf("validation failed: %w", err)
	}

	item, err := s.storage.CreatePantryItem(ctx, storage.PantryItem{
		Name:        req.Name,
		Brand:       req.Brand,
		Quantity:    req.Quantity,
		ServingSize: req.ServingSize,
		ExpiryDate:  req.ExpiryDate,
		Nutrients:   req.Nutrients,
	})
	if err != nil {
		return PantryItemDTO{}, err
	}
	return toDTO(item), nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.storage.DeletePantryItem(ctx, id)
}
