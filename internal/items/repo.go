package items

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/anacreonhq/anacreon-backend/pkg/db/models"
	"github.com/anacreonhq/anacreon-backend/pkg/pagination"
)

// ListFilter narrows an item listing. Zero values mean "no constraint".
type ListFilter struct {
	CategoryID    uuid.UUID
	SubCategoryID uuid.UUID
	Search        string
}

// Repository manages persistence for catalog items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, businessID, itemID uuid.UUID) (*models.Item, error)
	GetBySKU(ctx context.Context, businessID uuid.UUID, sku string) (*models.Item, error)
	List(ctx context.Context, businessID uuid.UUID, filter ListFilter, page pagination.Params) ([]models.Item, int64, error)
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, businessID, itemID uuid.UUID) error
	FindByProperty(ctx context.Context, businessID uuid.UUID, key string, value any, page pagination.Params) ([]models.Item, int64, error)
	ReserveQuantity(ctx context.Context, itemID uuid.UUID, quantity int, sellingPrice decimal.Decimal) (bool, error)
	ReleaseQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	SetQuantity(ctx context.Context, itemID uuid.UUID, quantity int, costPrice, sellingPrice decimal.Decimal) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an item repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) GetByID(ctx context.Context, businessID, itemID uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).
		Preload("Images").
		Where("business_id = ? AND id = ?", businessID, itemID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) GetBySKU(ctx context.Context, businessID uuid.UUID, sku string) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).
		Where("business_id = ? AND sku = ?", businessID, sku).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) List(ctx context.Context, businessID uuid.UUID, filter ListFilter, page pagination.Params) ([]models.Item, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("business_id = ?", businessID)
	if filter.CategoryID != uuid.Nil {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.SubCategoryID != uuid.Nil {
		query = query.Where("sub_category_id = ?", filter.SubCategoryID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR sku LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Item
	if err := query.
		Order("weight DESC, name ASC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repository) Update(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) Delete(ctx context.Context, businessID, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, itemID).
		Delete(&models.Item{}).Error
}

// FindByProperty matches items whose property store contains key with the
// given value. Postgres uses jsonb containment so the gin index applies;
// other dialects fall back to json_extract.
func (r *repository) FindByProperty(ctx context.Context, businessID uuid.UUID, key string, value any, page pagination.Params) ([]models.Item, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("business_id = ?", businessID)

	if r.db.Dialector.Name() == "postgres" {
		probe, err := json.Marshal(map[string]any{key: value})
		if err != nil {
			return nil, 0, err
		}
		query = query.Where("properties @> ?", string(probe))
	} else {
		query = query.Where(fmt.Sprintf("json_extract(properties, '$.%s') = ?", key), value)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Item
	if err := query.
		Order("name ASC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ReserveQuantity atomically decrements stock, bumps the popularity weight,
// and records the sale price iff enough units remain. Returns false when the
// guard fails, which callers treat as insufficient stock or a lost race.
func (r *repository) ReserveQuantity(ctx context.Context, itemID uuid.UUID, quantity int, sellingPrice decimal.Decimal) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ? AND quantity >= ?", itemID, quantity).
		Updates(map[string]any{
			"quantity":           gorm.Expr("quantity - ?", quantity),
			"weight":             gorm.Expr("weight + ?", quantity),
			"last_selling_price": sellingPrice,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ReleaseQuantity returns previously reserved units to stock.
func (r *repository) ReleaseQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", itemID).
		Updates(map[string]any{
			"quantity": gorm.Expr("quantity + ?", quantity),
			"weight":   gorm.Expr("weight - ?", quantity),
		}).Error
}

// SetQuantity overwrites the item's quantity and prices from a stock snapshot.
func (r *repository) SetQuantity(ctx context.Context, itemID uuid.UUID, quantity int, costPrice, sellingPrice decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", itemID).
		Updates(map[string]any{
			"quantity":           quantity,
			"cost_price":         costPrice,
			"last_selling_price": sellingPrice,
		}).Error
}
