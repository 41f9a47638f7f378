package businesses

import (
	"context"
	"fmt"
	"strings"

	stderrors "errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anacreonhq/anacreon-backend/internal/audit"
	"github.com/anacreonhq/anacreon-backend/pkg/db"
	"github.com/anacreonhq/anacreon-backend/pkg/db/models"
	"github.com/anacreonhq/anacreon-backend/pkg/enums"
	"github.com/anacreonhq/anacreon-backend/pkg/errors"
	"github.com/anacreonhq/anacreon-backend/pkg/pagination"
	"github.com/anacreonhq/anacreon-backend/pkg/types"
)

// Service defines tenant lifecycle operations. Businesses are soft
// deactivated, never hard-deleted.
type Service interface {
	Create(ctx context.Context, input CreateBusinessInput) (*models.Business, error)
	Get(ctx context.Context, businessID uuid.UUID) (*models.Business, error)
	ListForUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]models.Business, int64, error)
	Update(ctx context.Context, input UpdateBusinessInput) (*models.Business, error)
	Deactivate(ctx context.Context, businessID uuid.UUID, actorID *uuid.UUID) (*models.Business, error)
	AddMember(ctx context.Context, businessID, userID uuid.UUID, isAdmin bool) (*models.BusinessUser, error)
	IsMember(ctx context.Context, userID, businessID uuid.UUID) (bool, error)
}

// CreateBusinessInput captures a new tenant. When ActorID is set, the creator
// is bound as an administrator membership in the same transaction.
type CreateBusinessInput struct {
	Name        string
	Description string
	ActorID     *uuid.UUID
}

// UpdateBusinessInput carries a partial update; nil pointers leave fields alone.
type UpdateBusinessInput struct {
	BusinessID  uuid.UUID
	Name        *string
	Description *string
	ActorID     *uuid.UUID
}

type service struct {
	client   *db.Client
	repo     Repository
	recorder *audit.Recorder
}

// NewService wires a business service with its dependencies.
func NewService(client *db.Client, repo Repository, recorder *audit.Recorder) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("business repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{client: client, repo: repo, recorder: recorder}, nil
}

func (s *service) Create(ctx context.Context, input CreateBusinessInput) (*models.Business, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.New(errors.CodeValidation, "business name is required")
	}

	business := &models.Business{
		Name:        name,
		Description: input.Description,
		IsActive:    true,
		CreatedBy:   input.ActorID,
		ModifiedBy:  input.ActorID,
	}
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, business); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "failed to create business")
		}
		if input.ActorID != nil {
			member := &models.BusinessUser{
				UserID:     *input.ActorID,
				BusinessID: business.ID,
				IsAdmin:    true,
			}
			if err := repo.AddMember(ctx, member); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "failed to bind creator to business")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, audit.Entry{
		BusinessID: business.ID,
		UserID:     input.ActorID,
		Action:     enums.AuditActionCreate,
		Model:      audit.ModelBusiness,
		ObjectID:   business.ID,
		Details:    types.JSONMap{"name": business.Name, "description": business.Description},
	})
	return business, nil
}

func (s *service) Get(ctx context.Context, businessID uuid.UUID) (*models.Business, error) {
	business, err := s.repo.GetByID(ctx, businessID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "business not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load business")
	}
	return business, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]models.Business, int64, error) {
	if userID == uuid.Nil {
		return nil, 0, errors.New(errors.CodeValidation, "user id is required")
	}
	list, total, err := s.repo.ListForUser(ctx, userID, page)
	if err != nil {
		return nil, 0, errors.Wrap(errors.CodeInternal, err, "failed to list businesses")
	}
	return list, total, nil
}

func (s *service) Update(ctx context.Context, input UpdateBusinessInput) (*models.Business, error) {
	business, err := s.Get(ctx, input.BusinessID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, errors.New(errors.CodeValidation, "business name cannot be empty")
		}
		business.Name = name
	}
	if input.Description != nil {
		business.Description = *input.Description
	}
	business.ModifiedBy = input.ActorID

	if err := s.repo.Update(ctx, business); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to update business")
	}

	s.recorder.Record(ctx, audit.Entry{
		BusinessID: business.ID,
		UserID:     input.ActorID,
		Action:     enums.AuditActionUpdate,
		Model:      audit.ModelBusiness,
		ObjectID:   business.ID,
		Details:    types.JSONMap{"name": business.Name, "description": business.Description},
	})
	return business, nil
}

// Deactivate soft-disables the tenant. Data stays in place.
func (s *service) Deactivate(ctx context.Context, businessID uuid.UUID, actorID *uuid.UUID) (*models.Business, error) {
	business, err := s.Get(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if !business.IsActive {
		return business, nil
	}
	business.IsActive = false
	business.ModifiedBy = actorID
	if err := s.repo.Update(ctx, business); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to deactivate business")
	}

	s.recorder.Record(ctx, audit.Entry{
		BusinessID: business.ID,
		UserID:     actorID,
		Action:     enums.AuditActionUpdate,
		Model:      audit.ModelBusiness,
		ObjectID:   business.ID,
		Details:    types.JSONMap{"name": business.Name, "is_active": false},
	})
	return business, nil
}

func (s *service) AddMember(ctx context.Context, businessID, userID uuid.UUID, isAdmin bool) (*models.BusinessUser, error) {
	if _, err := s.Get(ctx, businessID); err != nil {
		return nil, err
	}
	member := &models.BusinessUser{
		UserID:     userID,
		BusinessID: businessID,
		IsAdmin:    isAdmin,
	}
	if err := s.repo.AddMember(ctx, member); err != nil {
		if db.IsUniqueViolation(err, "uq_business_users_user_business") {
			return nil, errors.New(errors.CodeConflict, "user already belongs to business")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to add business member")
	}
	return member, nil
}

func (s *service) IsMember(ctx context.Context, userID, businessID uuid.UUID) (bool, error) {
	if _, err := s.repo.GetMembership(ctx, userID, businessID); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, errors.Wrap(errors.CodeInternal, err, "failed to check business membership")
	}
	return true, nil
}
