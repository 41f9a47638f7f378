package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stock is a point-in-time snapshot of quantity/cost/selling price for an
// item. Current stock is the most recently recorded row; no running total is
// maintained.
type Stock struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ItemID       uuid.UUID       `gorm:"column:item_id;type:uuid;not null;index:idx_stocks_item_recorded_at"`
	Quantity     int             `gorm:"column:quantity;not null"`
	CostPrice    decimal.Decimal `gorm:"column:cost_price;type:numeric(12,2);not null"`
	SellingPrice decimal.Decimal `gorm:"column:selling_price;type:numeric(12,2);not null"`
	RecordedBy   *uuid.UUID      `gorm:"column:recorded_by;type:uuid"`
	RecordedAt   time.Time       `gorm:"column:recorded_at;autoCreateTime;index:idx_stocks_item_recorded_at"`
}
