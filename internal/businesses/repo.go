package businesses

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anacreonhq/anacreon-backend/pkg/db/models"
	"github.com/anacreonhq/anacreon-backend/pkg/pagination"
)

// Repository manages persistence for businesses and their memberships.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, business *models.Business) error
	GetByID(ctx context.Context, businessID uuid.UUID) (*models.Business, error)
	ListForUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]models.Business, int64, error)
	Update(ctx context.Context, business *models.Business) error
	AddMember(ctx context.Context, member *models.BusinessUser) error
	GetMembership(ctx context.Context, userID, businessID uuid.UUID) (*models.BusinessUser, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a business repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, business *models.Business) error {
	return r.db.WithContext(ctx).Create(business).Error
}

func (r *repository) GetByID(ctx context.Context, businessID uuid.UUID) (*models.Business, error) {
	var business models.Business
	if err := r.db.WithContext(ctx).
		Where("id = ?", businessID).
		First(&business).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]models.Business, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Business{}).
		Joins("JOIN business_users ON business_users.business_id = businesses.id").
		Where("business_users.user_id = ? AND businesses.is_active = ?", userID, true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.Business
	if err := query.
		Order("businesses.created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *repository) Update(ctx context.Context, business *models.Business) error {
	return r.db.WithContext(ctx).Save(business).Error
}

func (r *repository) AddMember(ctx context.Context, member *models.BusinessUser) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *repository) GetMembership(ctx context.Context, userID, businessID uuid.UUID) (*models.BusinessUser, error) {
	var member models.BusinessUser
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND business_id = ?", userID, businessID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}
