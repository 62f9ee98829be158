package service

import (
	"context"

	"pantry/internal/models"
	"pantry/internal/repository"
	"pantry/internal/validation"
)

type IngredientService struct {
	repo repository.IngredientRepository
}

func NewIngredientService(repo repository.IngredientRepository) *IngredientService {
	return &IngredientService{repo: repo}
}

func (s *IngredientService) List(ctx context.Context, ownerID uint, assignedOnly bool) ([]models.Ingredient, error) {
	return s.repo.List(ctx, ownerID, assignedOnly)
}

func (s *IngredientService) Create(ctx context.Context, ownerID uint, name string) (*models.Ingredient, error) {
	name, err := validation.ValidateName(name)
	if err != nil {
		return nil, models.NewFieldValidationError("name", err.Error())
	}
	ingredient := &models.Ingredient{Name: name, UserID: ownerID}
	if err := s.repo.Create(ctx, ingredient); err != nil {
		return nil, err
	}
	return ingredient, nil
}

func (s *IngredientService) Update(ctx context.Context, ownerID, id uint, name string) (*models.Ingredient, error) {
	name, err := validation.ValidateName(name)
	if err != nil {
		return nil, models.NewFieldValidationError("name", err.Error())
	}
	return s.repo.Rename(ctx, ownerID, id, name)
}

func (s *IngredientService) Delete(ctx context.Context, ownerID, id uint) error {
	return s.repo.Delete(ctx, ownerID, id)
}
