package items

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	stderrors "errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/anacreonhq/anacreon-backend/internal/audit"
	"github.com/anacreonhq/anacreon-backend/pkg/db"
	"github.com/anacreonhq/anacreon-backend/pkg/db/models"
	"github.com/anacreonhq/anacreon-backend/pkg/enums"
	"github.com/anacreonhq/anacreon-backend/pkg/errors"
	"github.com/anacreonhq/anacreon-backend/pkg/pagination"
	"github.com/anacreonhq/anacreon-backend/pkg/types"
)

// propertyKeyPattern restricts keys to identifier-safe characters so they can
// be embedded in dialect-specific JSON path expressions.
var propertyKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Service defines catalog item operations, including the free-form property
// store attached to each item.
type Service interface {
	Create(ctx context.Context, input CreateItemInput) (*models.Item, error)
	Get(ctx context.Context, businessID, itemID uuid.UUID) (*models.Item, error)
	GetBySKU(ctx context.Context, businessID uuid.UUID, sku string) (*models.Item, error)
	List(ctx context.Context, businessID uuid.UUID, filter ListFilter, page pagination.Params) ([]models.Item, int64, error)
	Update(ctx context.Context, input UpdateItemInput) (*models.Item, error)
	Delete(ctx context.Context, businessID, itemID uuid.UUID, actorID *uuid.UUID) error

	GetProperty(ctx context.Context, businessID, itemID uuid.UUID, key string, fallback any) (any, error)
	SetProperty(ctx context.Context, businessID, itemID uuid.UUID, key string, value any, actorID *uuid.UUID) (*models.Item, error)
	MergeProperties(ctx context.Context, businessID, itemID uuid.UUID, props map[string]any, actorID *uuid.UUID) (*models.Item, error)
	DeleteProperty(ctx context.Context, businessID, itemID uuid.UUID, key string, actorID *uuid.UUID) (*models.Item, error)
	FindByProperty(ctx context.Context, businessID uuid.UUID, key string, value any, page pagination.Params) ([]models.Item, int64, error)
}

type service struct {
	client   *db.Client
	repo     Repository
	recorder *audit.Recorder
}

// CreateItemInput captures the fields required to register a catalog item.
type CreateItemInput struct {
	BusinessID    uuid.UUID
	CategoryID    *uuid.UUID
	SubCategoryID *uuid.UUID
	Name          string
	Description   string
	SKU           string
	Properties    types.JSONMap
	CostPrice     decimal.Decimal
	SellingPrice  decimal.Decimal
	Quantity      int
	ActorID       *uuid.UUID
}

// UpdateItemInput carries a partial update; nil pointers leave fields alone.
type UpdateItemInput struct {
	BusinessID    uuid.UUID
	ItemID        uuid.UUID
	CategoryID    *uuid.UUID
	SubCategoryID *uuid.UUID
	Name          *string
	Description   *string
	CostPrice     *decimal.Decimal
	SellingPrice  *decimal.Decimal
	ActorID       *uuid.UUID
}

// NewService wires an item service with its dependencies.
func NewService(client *db.Client, repo Repository, recorder *audit.Recorder) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{client: client, repo: repo, recorder: recorder}, nil
}

func (s *service) Create(ctx context.Context, input CreateItemInput) (*models.Item, error) {
	if input.BusinessID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "business id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.New(errors.CodeValidation, "item name is required")
	}
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		return nil, errors.New(errors.CodeValidation, "sku is required")
	}
	if input.Quantity < 0 {
		return nil, errors.New(errors.CodeValidation, "quantity cannot be negative")
	}
	if input.CostPrice.IsNegative() || input.SellingPrice.IsNegative() {
		return nil, errors.New(errors.CodeValidation, "prices cannot be negative")
	}

	item := &models.Item{
		BusinessID:       input.BusinessID,
		CategoryID:       input.CategoryID,
		SubCategoryID:    input.SubCategoryID,
		Name:             name,
		Description:      input.Description,
		SKU:              sku,
		Properties:       input.Properties,
		CostPrice:        input.CostPrice,
		LastSellingPrice: input.SellingPrice,
		Quantity:         input.Quantity,
		CreatedBy:        input.ActorID,
		ModifiedBy:       input.ActorID,
	}
	if item.Properties == nil {
		item.Properties = types.JSONMap{}
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if db.IsUniqueViolation(err, "items_sku") {
			return nil, errors.New(errors.CodeConflict, "sku already in use")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to create item")
	}

	s.recorder.Record(ctx, audit.Entry{
		BusinessID: item.BusinessID,
		UserID:     input.ActorID,
		Action:     enums.AuditActionCreate,
		Model:      audit.ModelItem,
		ObjectID:   item.ID,
		Details:    audit.ItemDetails(item),
	})
	return item, nil
}

func (s *service) Get(ctx context.Context, businessID, itemID uuid.UUID) (*models.Item, error) {
	item, err := s.repo.GetByID(ctx, businessID, itemID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "item not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load item")
	}
	return item, nil
}

func (s *service) GetBySKU(ctx context.Context, businessID uuid.UUID, sku string) (*models.Item, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, errors.New(errors.CodeValidation, "sku is required")
	}
	item, err := s.repo.GetBySKU(ctx, businessID, sku)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "item not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load item")
	}
	return item, nil
}

func (s *service) List(ctx context.Context, businessID uuid.UUID, filter ListFilter, page pagination.Params) ([]models.Item, int64, error) {
	if businessID == uuid.Nil {
		return nil, 0, errors.New(errors.CodeValidation, "business id is required")
	}
	items, total, err := s.repo.List(ctx, businessID, filter, page)
	if err != nil {
		return nil, 0, errors.Wrap(errors.CodeInternal, err, "failed to list items")
	}
	return items, total, nil
}

func (s *service) Update(ctx context.Context, input UpdateItemInput) (*models.Item, error) {
	item, err := s.Get(ctx, input.BusinessID, input.ItemID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, errors.New(errors.CodeValidation, "item name cannot be empty")
		}
		item.Name = name
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.CategoryID != nil {
		item.CategoryID = input.CategoryID
	}
	if input.SubCategoryID != nil {
		item.SubCategoryID = input.SubCategoryID
	}
	if input.CostPrice != nil {
		if input.CostPrice.IsNegative() {
			return nil, errors.New(errors.CodeValidation, "cost price cannot be negative")
		}
		item.CostPrice = *input.CostPrice
	}
	if input.SellingPrice != nil {
		if input.SellingPrice.IsNegative() {
			return nil, errors.New(errors.CodeValidation, "selling price cannot be negative")
		}
		item.LastSellingPrice = *input.SellingPrice
	}
	item.ModifiedBy = input.ActorID

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to update item")
	}

	s.recorder.Record(ctx, audit.Entry{
		BusinessID: item.BusinessID,
		UserID:     input.ActorID,
		Action:     enums.AuditActionUpdate,
		Model:      audit.ModelItem,
		ObjectID:   item.ID,
		Details:    audit.ItemDetails(item),
	})
	return item, nil
}

func (s *service) Delete(ctx context.Context, businessID, itemID uuid.UUID, actorID *uuid.UUID) error {
	item, err := s.Get(ctx, businessID, itemID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, businessID, itemID); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to delete item")
	}

	s.recorder.Record(ctx, audit.Entry{
		BusinessID: businessID,
		UserID:     actorID,
		Action:     enums.AuditActionDelete,
		Model:      audit.ModelItem,
		ObjectID:   itemID,
		Details:    audit.ItemDetails(item),
	})
	return nil
}

func (s *service) GetProperty(ctx context.Context, businessID, itemID uuid.UUID, key string, fallback any) (any, error) {
	if err := validatePropertyKey(key); err != nil {
		return nil, err
	}
	item, err := s.Get(ctx, businessID, itemID)
	if err != nil {
		return nil, err
	}
	return item.Properties.Get(key, fallback), nil
}

func (s *service) SetProperty(ctx context.Context, businessID, itemID uuid.UUID, key string, value any, actorID *uuid.UUID) (*models.Item, error) {
	if err := validatePropertyKey(key); err != nil {
		return nil, err
	}
	return s.mutateProperties(ctx, businessID, itemID, actorID, func(item *models.Item) {
		if item.Properties == nil {
			item.Properties = types.JSONMap{}
		}
		item.Properties[key] = value
	})
}

func (s *service) MergeProperties(ctx context.Context, businessID, itemID uuid.UUID, props map[string]any, actorID *uuid.UUID) (*models.Item, error) {
	if len(props) == 0 {
		return nil, errors.New(errors.CodeValidation, "properties payload is empty")
	}
	for key := range props {
		if err := validatePropertyKey(key); err != nil {
			return nil, err
		}
	}
	return s.mutateProperties(ctx, businessID, itemID, actorID, func(item *models.Item) {
		item.Properties = item.Properties.Merge(props)
	})
}

func (s *service) DeleteProperty(ctx context.Context, businessID, itemID uuid.UUID, key string, actorID *uuid.UUID) (*models.Item, error) {
	if err := validatePropertyKey(key); err != nil {
		return nil, err
	}
	return s.mutateProperties(ctx, businessID, itemID, actorID, func(item *models.Item) {
		delete(item.Properties, key)
	})
}

func (s *service) FindByProperty(ctx context.Context, businessID uuid.UUID, key string, value any, page pagination.Params) ([]models.Item, int64, error) {
	if businessID == uuid.Nil {
		return nil, 0, errors.New(errors.CodeValidation, "business id is required")
	}
	if err := validatePropertyKey(key); err != nil {
		return nil, 0, err
	}
	items, total, err := s.repo.FindByProperty(ctx, businessID, key, value, page)
	if err != nil {
		return nil, 0, errors.Wrap(errors.CodeInternal, err, "failed to search items by property")
	}
	return items, total, nil
}

// mutateProperties loads the item, applies the mutation, and saves it inside
// one transaction so concurrent property writes cannot interleave a stale map.
func (s *service) mutateProperties(ctx context.Context, businessID, itemID uuid.UUID, actorID *uuid.UUID, mutate func(item *models.Item)) (*models.Item, error) {
	var item *models.Item
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := repo.GetByID(ctx, businessID, itemID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New(errors.CodeNotFound, "item not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "failed to load item")
		}
		mutate(loaded)
		loaded.ModifiedBy = actorID
		if err := repo.Update(ctx, loaded); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "failed to update item properties")
		}
		item = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, audit.Entry{
		BusinessID: item.BusinessID,
		UserID:     actorID,
		Action:     enums.AuditActionUpdate,
		Model:      audit.ModelItem,
		ObjectID:   item.ID,
		Details:    audit.ItemDetails(item).Merge(map[string]any{"properties": map[string]any(item.Properties)}),
	})
	return item, nil
}

func validatePropertyKey(key string) error {
	if !propertyKeyPattern.MatchString(key) {
		return errors.New(errors.CodeValidation, "property key must contain only letters, digits, underscores, or hyphens")
	}
	return nil
}
