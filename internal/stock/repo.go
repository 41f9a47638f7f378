package stock

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anacreonhq/anacreon-backend/pkg/db/models"
	"github.com/anacreonhq/anacreon-backend/pkg/pagination"
)

// Repository manages persistence for stock snapshots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, snapshot *models.Stock) error
	GetByID(ctx context.Context, snapshotID uuid.UUID) (*models.Stock, error)
	Latest(ctx context.Context, itemID uuid.UUID) (*models.Stock, error)
	ListByItem(ctx context.Context, itemID uuid.UUID, page pagination.Params) ([]models.Stock, int64, error)
	Update(ctx context.Context, snapshot *models.Stock) error
	Delete(ctx context.Context, snapshotID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a stock repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, snapshot *models.Stock) error {
	return r.db.WithContext(ctx).Create(snapshot).Error
}

func (r *repository) GetByID(ctx context.Context, snapshotID uuid.UUID) (*models.Stock, error) {
	var snapshot models.Stock
	if err := r.db.WithContext(ctx).
		Where("id = ?", snapshotID).
		First(&snapshot).Error; err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *repository) Latest(ctx context.Context, itemID uuid.UUID) (*models.Stock, error) {
	var snapshot models.Stock
	if err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("recorded_at DESC").
		First(&snapshot).Error; err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *repository) ListByItem(ctx context.Context, itemID uuid.UUID, page pagination.Params) ([]models.Stock, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Stock{}).
		Where("item_id = ?", itemID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var snapshots []models.Stock
	if err := query.
		Order("recorded_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&snapshots).Error; err != nil {
		return nil, 0, err
	}
	return snapshots, total, nil
}

func (r *repository) Update(ctx context.Context, snapshot *models.Stock) error {
	return r.db.WithContext(ctx).Save(snapshot).Error
}

func (r *repository) Delete(ctx context.Context, snapshotID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", snapshotID).
		Delete(&models.Stock{}).Error
}
