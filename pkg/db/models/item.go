package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/anacreonhq/anacreon-backend/pkg/types"
)

// Item is a catalog entry. Quantity never goes below zero after a committed
// transition; weight is a popularity counter incremented per unit sold.
type Item struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	BusinessID       uuid.UUID       `gorm:"column:business_id;type:uuid;not null;index"`
	CategoryID       *uuid.UUID      `gorm:"column:category_id;type:uuid"`
	SubCategoryID    *uuid.UUID      `gorm:"column:sub_category_id;type:uuid"`
	Name             string          `gorm:"column:name;not null"`
	Description      string          `gorm:"column:description;not null;default:''"`
	SKU              string          `gorm:"column:sku;not null;uniqueIndex"`
	Properties       types.JSONMap   `gorm:"column:properties;type:jsonb;serializer:json"`
	CostPrice        decimal.Decimal `gorm:"column:cost_price;type:numeric(12,2);not null;default:0"`
	LastSellingPrice decimal.Decimal `gorm:"column:last_selling_price;type:numeric(12,2);not null;default:0"`
	Quantity         int             `gorm:"column:quantity;not null;default:0;check:quantity >= 0"`
	Weight           int             `gorm:"column:weight;not null;default:0"`
	CreatedBy        *uuid.UUID      `gorm:"column:created_by;type:uuid"`
	ModifiedBy       *uuid.UUID      `gorm:"column:modified_by;type:uuid"`
	Images           []ItemImage     `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// ItemImage stores a base64-encoded image payload owned by exactly one item.
type ItemImage struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ItemID   uuid.UUID `gorm:"column:item_id;type:uuid;not null;index"`
	Image    string    `gorm:"column:image;not null"`
	Mimetype string    `gorm:"column:mimetype;not null"`
	Color    string    `gorm:"column:color;not null;default:''"`
}
