package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anacreonhq/anacreon-backend/pkg/db/models"
)

// Repository manages persistence for the category hierarchy.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, businessID, categoryID uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context, businessID uuid.UUID) ([]models.Category, error)
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, businessID, categoryID uuid.UUID) error
	CreateSubCategory(ctx context.Context, sub *models.SubCategory) error
	GetSubCategory(ctx context.Context, categoryID, subID uuid.UUID) (*models.SubCategory, error)
	DeleteSubCategory(ctx context.Context, categoryID, subID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *repository) GetCategory(ctx context.Context, businessID, categoryID uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).
		Preload("SubCategories").
		Where("business_id = ? AND id = ?", businessID, categoryID).
		First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) ListCategories(ctx context.Context, businessID uuid.UUID) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).
		Preload("SubCategories").
		Where("business_id = ?", businessID).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) UpdateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *repository) DeleteCategory(ctx context.Context, businessID, categoryID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Delete(&models.SubCategory{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, categoryID).
		Delete(&models.Category{}).Error
}

func (r *repository) CreateSubCategory(ctx context.Context, sub *models.SubCategory) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *repository) GetSubCategory(ctx context.Context, categoryID, subID uuid.UUID) (*models.SubCategory, error) {
	var sub models.SubCategory
	if err := r.db.WithContext(ctx).
		Where("category_id = ? AND id = ?", categoryID, subID).
		First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repository) DeleteSubCategory(ctx context.Context, categoryID, subID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("category_id = ? AND id = ?", categoryID, subID).
		Delete(&models.SubCategory{}).Error
}
