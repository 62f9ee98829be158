package repository

import (
	"context"
	"errors"

	"pantry/internal/models"

	"gorm.io/gorm"
)

// TagRepository defines owner-scoped persistence operations for tags.
type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	GetForOwner(ctx context.Context, ownerID, id uint) (*models.Tag, error)
	Rename(ctx context.Context, ownerID, id uint, name string) (*models.Tag, error)
	Delete(ctx context.Context, ownerID, id uint) error
	List(ctx context.Context, ownerID uint, assignedOnly bool) ([]models.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository returns a new TagRepository implementation.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tagRepository) GetForOwner(ctx context.Context, ownerID, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Tag", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &tag, nil
}

func (r *tagRepository) Rename(ctx context.Context, ownerID, id uint, name string) (*models.Tag, error) {
	tag, err := r.GetForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(tag).Update("name", name).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tag, nil
}

func (r *tagRepository) Delete(ctx context.Context, ownerID, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Tag
		if err := tx.Select("id").Where("id = ? AND user_id = ?", id, ownerID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Tag", id)
			}
			return err
		}
		if err := tagTable.deleteJunctionRows(tx, id); err != nil {
			return err
		}
		return tx.Delete(&models.Tag{}, id).Error
	})
	return wrapTxError(err)
}

func (r *tagRepository) List(ctx context.Context, ownerID uint, assignedOnly bool) ([]models.Tag, error) {
	var tags []models.Tag
	if err := tagTable.listScope(r.db.WithContext(ctx), ownerID, assignedOnly).Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

// wrapTxError passes AppErrors through and wraps anything else as internal.
func wrapTxError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}
