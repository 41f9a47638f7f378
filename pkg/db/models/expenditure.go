package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expenditure records spending owned by a business. Immutable after creation
// in normal flow.
type Expenditure struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	BusinessID  uuid.UUID       `gorm:"column:business_id;type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Description string          `gorm:"column:description;not null"`
	Category    string          `gorm:"column:category;not null"`
	SpentBy     *uuid.UUID      `gorm:"column:spent_by;type:uuid"`
	SpentAt     time.Time       `gorm:"column:spent_at;autoCreateTime"`
}
