package catalog

import (
	"context"
	"fmt"
	"strings"

	stderrors "errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anacreonhq/anacreon-backend/pkg/db/models"
	"github.com/anacreonhq/anacreon-backend/pkg/errors"
)

// Service defines operations over the Business -> Category -> SubCategory
// tagging hierarchy.
type Service interface {
	CreateCategory(ctx context.Context, businessID uuid.UUID, name, description string) (*models.Category, error)
	GetCategory(ctx context.Context, businessID, categoryID uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context, businessID uuid.UUID) ([]models.Category, error)
	UpdateCategory(ctx context.Context, businessID, categoryID uuid.UUID, name, description *string) (*models.Category, error)
	DeleteCategory(ctx context.Context, businessID, categoryID uuid.UUID) error
	CreateSubCategory(ctx context.Context, businessID, categoryID uuid.UUID, name, description string) (*models.SubCategory, error)
	DeleteSubCategory(ctx context.Context, businessID, categoryID, subID uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService wires a catalog service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateCategory(ctx context.Context, businessID uuid.UUID, name, description string) (*models.Category, error) {
	if businessID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "business id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New(errors.CodeValidation, "category name is required")
	}
	category := &models.Category{
		BusinessID:  businessID,
		Name:        name,
		Description: description,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to create category")
	}
	return category, nil
}

func (s *service) GetCategory(ctx context.Context, businessID, categoryID uuid.UUID) (*models.Category, error) {
	category, err := s.repo.GetCategory(ctx, businessID, categoryID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "category not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load category")
	}
	return category, nil
}

func (s *service) ListCategories(ctx context.Context, businessID uuid.UUID) ([]models.Category, error) {
	if businessID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "business id is required")
	}
	categories, err := s.repo.ListCategories(ctx, businessID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to list categories")
	}
	return categories, nil
}

func (s *service) UpdateCategory(ctx context.Context, businessID, categoryID uuid.UUID, name, description *string) (*models.Category, error) {
	category, err := s.GetCategory(ctx, businessID, categoryID)
	if err != nil {
		return nil, err
	}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, errors.New(errors.CodeValidation, "category name cannot be empty")
		}
		category.Name = trimmed
	}
	if description != nil {
		category.Description = *description
	}
	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to update category")
	}
	return category, nil
}

func (s *service) DeleteCategory(ctx context.Context, businessID, categoryID uuid.UUID) error {
	if _, err := s.GetCategory(ctx, businessID, categoryID); err != nil {
		return err
	}
	if err := s.repo.DeleteCategory(ctx, businessID, categoryID); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to delete category")
	}
	return nil
}

func (s *service) CreateSubCategory(ctx context.Context, businessID, categoryID uuid.UUID, name, description string) (*models.SubCategory, error) {
	if _, err := s.GetCategory(ctx, businessID, categoryID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New(errors.CodeValidation, "sub-category name is required")
	}
	sub := &models.SubCategory{
		CategoryID:  categoryID,
		Name:        name,
		Description: description,
	}
	if err := s.repo.CreateSubCategory(ctx, sub); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to create sub-category")
	}
	return sub, nil
}

func (s *service) DeleteSubCategory(ctx context.Context, businessID, categoryID, subID uuid.UUID) error {
	if _, err := s.GetCategory(ctx, businessID, categoryID); err != nil {
		return err
	}
	if _, err := s.repo.GetSubCategory(ctx, categoryID, subID); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New(errors.CodeNotFound, "sub-category not found")
		}
		return errors.Wrap(errors.CodeInternal, err, "failed to load sub-category")
	}
	if err := s.repo.DeleteSubCategory(ctx, categoryID, subID); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to delete sub-category")
	}
	return nil
}
