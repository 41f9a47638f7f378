package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/anacreonhq/anacreon-backend/pkg/enums"
	"github.com/anacreonhq/anacreon-backend/pkg/types"
)

// AuditLog is an append-only record of a domain mutation. Application logic
// never updates or deletes rows. The JSON field names are a compatibility
// contract with downstream audit viewers and compliance exports.
type AuditLog struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"-"`
	BusinessID uuid.UUID         `gorm:"column:business_id;type:uuid;not null;index:idx_audit_logs_business_ts" json:"business"`
	UserID     *uuid.UUID        `gorm:"column:user_id;type:uuid" json:"user"`
	Action     enums.AuditAction `gorm:"column:action;type:text;not null" json:"action"`
	Model      string            `gorm:"column:model;not null;index:idx_audit_logs_object" json:"model"`
	ObjectID   uuid.UUID         `gorm:"column:object_id;type:uuid;not null;index:idx_audit_logs_object" json:"object_id"`
	Details    types.JSONMap     `gorm:"column:details;type:jsonb;serializer:json" json:"details"`
	Timestamp  time.Time         `gorm:"column:timestamp;autoCreateTime;index:idx_audit_logs_business_ts" json:"timestamp"`
}
