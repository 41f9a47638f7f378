package expenditures

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anacreonhq/anacreon-backend/pkg/db/models"
	"github.com/anacreonhq/anacreon-backend/pkg/pagination"
)

// Repository manages persistence for expenditure records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, exp *models.Expenditure) error
	GetByID(ctx context.Context, businessID, expID uuid.UUID) (*models.Expenditure, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID, category string, page pagination.Params) ([]models.Expenditure, int64, error)
	Delete(ctx context.Context, businessID, expID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an expenditure repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, exp *models.Expenditure) error {
	return r.db.WithContext(ctx).Create(exp).Error
}

func (r *repository) GetByID(ctx context.Context, businessID, expID uuid.UUID) (*models.Expenditure, error) {
	var exp models.Expenditure
	if err := r.db.WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, expID).
		First(&exp).Error; err != nil {
		return nil, err
	}
	return &exp, nil
}

func (r *repository) ListByBusiness(ctx context.Context, businessID uuid.UUID, category string, page pagination.Params) ([]models.Expenditure, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Expenditure{}).
		Where("business_id = ?", businessID)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var exps []models.Expenditure
	if err := query.
		Order("spent_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&exps).Error; err != nil {
		return nil, 0, err
	}
	return exps, total, nil
}

func (r *repository) Delete(ctx context.Context, businessID, expID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, expID).
		Delete(&models.Expenditure{}).Error
}
