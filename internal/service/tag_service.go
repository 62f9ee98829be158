package service

import (
	"context"

	"pantry/internal/models"
	"pantry/internal/repository"
	"pantry/internal/validation"
)

type TagService struct {
	repo repository.TagRepository
}

func NewTagService(repo repository.TagRepository) *TagService {
	return &TagService{repo: repo}
}

func (s *TagService) List(ctx context.Context, ownerID uint, assignedOnly bool) ([]models.Tag, error) {
	return s.repo.List(ctx, ownerID, assignedOnly)
}

func (s *TagService) Create(ctx context.Context, ownerID uint, name string) (*models.Tag, error) {
	name, err := validation.ValidateName(name)
	if err != nil {
		return nil, models.NewFieldValidationError("name", err.Error())
	}
	tag := &models.Tag{Name: name, UserID: ownerID}
	if err := s.repo.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *TagService) Update(ctx context.Context, ownerID, id uint, name string) (*models.Tag, error) {
	name, err := validation.ValidateName(name)
	if err != nil {
		return nil, models.NewFieldValidationError("name", err.Error())
	}
	return s.repo.Rename(ctx, ownerID, id, name)
}

func (s *TagService) Delete(ctx context.Context, ownerID, id uint) error {
	return s.repo.Delete(ctx, ownerID, id)
}
