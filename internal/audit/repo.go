package audit

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anacreonhq/anacreon-backend/pkg/db/models"
	"github.com/anacreonhq/anacreon-backend/pkg/pagination"
)

// Filter narrows an audit listing. Zero values mean "no constraint".
type Filter struct {
	Model    string
	ObjectID uuid.UUID
	UserID   uuid.UUID
}

// Repository manages persistence for audit logs. Append is the only write;
// rows are never updated or deleted.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, entry *models.AuditLog) error
	ListByBusiness(ctx context.Context, businessID uuid.UUID, filter Filter, page pagination.Params) ([]models.AuditLog, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an audit repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Append(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByBusiness(ctx context.Context, businessID uuid.UUID, filter Filter, page pagination.Params) ([]models.AuditLog, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.AuditLog{}).
		Where("business_id = ?", businessID)
	if filter.Model != "" {
		query = query.Where("model = ?", filter.Model)
	}
	if filter.ObjectID != uuid.Nil {
		query = query.Where("object_id = ?", filter.ObjectID)
	}
	if filter.UserID != uuid.Nil {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	if err := query.
		Order("timestamp DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
