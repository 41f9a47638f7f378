package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/anacreonhq/anacreon-backend/pkg/db/models"
	"github.com/anacreonhq/anacreon-backend/pkg/enums"
	"github.com/anacreonhq/anacreon-backend/pkg/pagination"
)

// Repository manages persistence for orders and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, businessID, orderID uuid.UUID) (*models.Order, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID, status enums.OrderStatus, page pagination.Params) ([]models.Order, int64, error)
	UpdateTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error
	TransitionStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus, at time.Time) (bool, error)
	MarkLineReserved(ctx context.Context, lineID uuid.UUID, reserved bool) error
	Delete(ctx context.Context, businessID, orderID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an order repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) GetByID(ctx context.Context, businessID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Item").
		Where("business_id = ? AND id = ?", businessID, orderID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByBusiness(ctx context.Context, businessID uuid.UUID, status enums.OrderStatus, page pagination.Params) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("business_id = ?", businessID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := query.
		Preload("Items").
		Order("placed_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) UpdateTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("total", total).Error
}

// TransitionStatus moves the order from one status to another with a guard on
// the current status, stamping the matching timestamp column. Returns false
// when the order was not in the expected status, which callers treat as a
// lost race or an illegal transition.
func (r *repository) TransitionStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus, at time.Time) (bool, error) {
	updates := map[string]any{"status": to}
	switch to {
	case enums.OrderStatusCompleted:
		updates["completed_at"] = at
	case enums.OrderStatusCancelled:
		updates["cancelled_at"] = at
	}

	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) MarkLineReserved(ctx context.Context, lineID uuid.UUID, reserved bool) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", lineID).
		Update("reserved", reserved).Error
}

// Delete removes the order and its lines. Lines are deleted explicitly so the
// behavior does not depend on the dialect enforcing cascades.
func (r *repository) Delete(ctx context.Context, businessID, orderID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, orderID).
		Delete(&models.Order{}).Error
}
