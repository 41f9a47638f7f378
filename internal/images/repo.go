package images

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anacreonhq/anacreon-backend/pkg/db/models"
)

// Repository manages persistence for item images.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, image *models.ItemImage) error
	GetByID(ctx context.Context, itemID, imageID uuid.UUID) (*models.ItemImage, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]models.ItemImage, error)
	Delete(ctx context.Context, itemID, imageID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an image repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, image *models.ItemImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *repository) GetByID(ctx context.Context, itemID, imageID uuid.UUID) (*models.ItemImage, error) {
	var image models.ItemImage
	if err := r.db.WithContext(ctx).
		Where("item_id = ? AND id = ?", itemID, imageID).
		First(&image).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *repository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]models.ItemImage, error) {
	var list []models.ItemImage
	if err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) Delete(ctx context.Context, itemID, imageID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("item_id = ? AND id = ?", itemID, imageID).
		Delete(&models.ItemImage{}).Error
}
