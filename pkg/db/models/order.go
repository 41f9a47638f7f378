package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/anacreonhq/anacreon-backend/pkg/enums"
)

// Order is a customer transaction against one or more items. CompletedAt is
// set iff status is completed; CancelledAt iff status is cancelled.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	BusinessID  uuid.UUID         `gorm:"column:business_id;type:uuid;not null;index:idx_orders_business_status"`
	Status      enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending';index:idx_orders_business_status"`
	PlacedAt    time.Time         `gorm:"column:placed_at;autoCreateTime"`
	CompletedAt *time.Time        `gorm:"column:completed_at"`
	CancelledAt *time.Time        `gorm:"column:cancelled_at"`
	PlacedBy    *uuid.UUID        `gorm:"column:placed_by;type:uuid"`
	CustomerID  *uuid.UUID        `gorm:"column:customer_id;type:uuid"`
	Notes       string            `gorm:"column:notes;not null;default:''"`
	Total       decimal.Decimal   `gorm:"column:total;type:numeric(14,2);not null;default:0"`
	Items       []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem is one order line. SellingPrice snapshots the price at order time
// so historical orders stay accurate when item pricing changes. Reserved
// tracks whether processing actually decremented stock for this line, so
// cancellation only restocks what was taken.
type OrderItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID      uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ItemID       uuid.UUID       `gorm:"column:item_id;type:uuid;not null"`
	Quantity     int             `gorm:"column:quantity;not null;check:quantity > 0"`
	SellingPrice decimal.Decimal `gorm:"column:selling_price;type:numeric(12,2);not null"`
	Reserved     bool            `gorm:"column:reserved;not null;default:false"`
	Item         *Item           `gorm:"foreignKey:ItemID"`
}
