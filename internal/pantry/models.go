package pantry

import (
	"fmt"
	"strings"
	"time"

	"github.com/fdg312/meal-e/internal/nutrients"
	"github.com/fdg312/meal-e/internal/storage"
)

type PantryItemDTO struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Brand       string              `json:"brand"`
	Quantity    *float64            `json:"quantity"`
	ServingSize *string             `json:"serving_size"`
	ExpiryDate  *string             `json:"expiry_date"`
	Nutrients   nutrients.Nutrients `json:"nutrients"`
}

type ListPantryResponse struct {
	Pantry []PantryItemDTO `json:"pantry"`
}

type CreatePantryItemRequest struct {
	Name        string              `json:"name"`
	Brand       string              `json:"brand"`
	Quantity    *float64            `json:"quantity"`
	ServingSize *string             `json:"serving_size"`
	ExpiryDate  *string             `json:"expiry_date"`
	Nutrients   nutrients.Nutrients `json:"nutrients"`
}

func (r *CreatePantryItemRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Brand = strings.TrimSpace(r.Brand)
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(r.Name) > 200 {
		return fmt.Errorf("name must be at most 200 characters")
	}
	if r.Quantity != nil && *r.Quantity < 0 {
		return fmt.Errorf("quantity must not be negative")
	}
	if r.ExpiryDate != nil {
		if _, err := time.Parse("2006-01-02", *r.ExpiryDate); err != nil {
			return fmt.Errorf("expiry_date must be YYYY-MM-DD")
		}
	}
	for _, key := range nutrients.Keys() {
		if v, ok := r.Nutrients.Get(key); ok && v < 0 {
			return fmt.Errorf("nutrients.%s must not be negative", key)
		}
	}
	return nil
}

func toDTO(item storage.PantryItem) PantryItemDTO {
	return PantryItemDTO{
		ID:          item.ID,
		Name:        item.Name,
		Brand:       item.Brand,
		Quantity:    item.Quantity,
		ServingSize: item.ServingSize,
		ExpiryDate:  item.ExpiryDate,
		Nutrients:   item.Nutrients,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}
