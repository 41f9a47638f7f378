package models

import "github.com/google/uuid"

// Category tags items within a business.
type Category struct {
	ID            uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	BusinessID    uuid.UUID     `gorm:"column:business_id;type:uuid;not null;index"`
	Name          string        `gorm:"column:name;not null"`
	Description   string        `gorm:"column:description;not null;default:''"`
	SubCategories []SubCategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

// SubCategory is the second tagging level under a category.
type SubCategory struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CategoryID  uuid.UUID `gorm:"column:category_id;type:uuid;not null;index"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description;not null;default:''"`
}
