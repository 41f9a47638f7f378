package models

import (
	"time"

	"github.com/google/uuid"
)

// Business is the tenant root owning catalog, orders, and finances.
// Deactivation is soft; rows are never hard-deleted in normal flow.
type Business struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Name        string         `gorm:"column:name;not null"`
	Description string         `gorm:"column:description;not null;default:''"`
	IsActive    bool           `gorm:"column:is_active;not null;default:true"`
	CreatedBy   *uuid.UUID     `gorm:"column:created_by;type:uuid"`
	ModifiedBy  *uuid.UUID     `gorm:"column:modified_by;type:uuid"`
	Users       []BusinessUser `gorm:"foreignKey:BusinessID;constraint:OnDelete:CASCADE"`
	Categories  []Category     `gorm:"foreignKey:BusinessID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// BusinessUser associates a user identity with a business. The (user,
// business) pair is unique.
type BusinessUser struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_business_users_user_business"`
	BusinessID uuid.UUID `gorm:"column:business_id;type:uuid;not null;uniqueIndex:uq_business_users_user_business"`
	IsAdmin    bool      `gorm:"column:is_admin;not null;default:false"`
	JoinedAt   time.Time `gorm:"column:joined_at;autoCreateTime"`
}
